// Package providers holds the optional YAML-driven provider table used to
// register self-hosted and OpenAI-compatible proxy endpoints without
// writing Go code for each one.
package providers

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/taipm/agentic/agent"
	"github.com/taipm/agentic/agent/providers/openai"
)

// StaticProviderConfig describes one OpenAI-wire-compatible provider
// entirely in data: a base URL, the environment variable holding its key,
// and the capabilities it supports. It exists for proxies and self-hosted
// gateways that aren't worth a dedicated Go package — vLLM, LiteLLM,
// LocalAI, a company-internal gateway.
type StaticProviderConfig struct {
	Name         string   `yaml:"name"`
	DisplayName  string   `yaml:"displayName"`
	BaseURL      string   `yaml:"baseUrl"`
	APIKeyName   string   `yaml:"apiKeyName"`
	DefaultChat  string   `yaml:"defaultChat"`
	DefaultEmbed string   `yaml:"defaultEmbed"`
	Capabilities []string `yaml:"capabilities"`
	Aliases      []string `yaml:"aliases"`
}

// StaticProviderTable is the top-level shape of a provider table YAML
// file: a flat list under a "providers" key.
type StaticProviderTable struct {
	Providers []StaticProviderConfig `yaml:"providers"`
}

// LoadProviderTable reads a YAML file at path and registers each entry
// against reg as an OpenAI-wire-compatible provider.
func LoadProviderTable(path string, reg *agent.Registry) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("agent/providers: failed to read provider table: %w", err)
	}

	var table StaticProviderTable
	if err := yaml.Unmarshal(data, &table); err != nil {
		return fmt.Errorf("agent/providers: failed to parse provider table: %w", err)
	}

	for _, entry := range table.Providers {
		if err := entry.validate(); err != nil {
			return fmt.Errorf("agent/providers: invalid entry %q: %w", entry.Name, err)
		}
		reg.Register(entry.toProvider())
	}
	return nil
}

func (c StaticProviderConfig) validate() error {
	if c.Name == "" {
		return fmt.Errorf("name is required")
	}
	if c.BaseURL == "" {
		return fmt.Errorf("baseUrl is required")
	}
	return nil
}

func (c StaticProviderConfig) toProvider() agent.Provider {
	displayName := c.DisplayName
	if displayName == "" {
		displayName = c.Name
	}

	caps := make([]agent.Capability, 0, len(c.Capabilities))
	for _, raw := range c.Capabilities {
		caps = append(caps, agent.Capability(raw))
	}

	p := agent.Provider{
		Name:         c.Name,
		DisplayName:  displayName,
		Aliases:      c.Aliases,
		APIKeyName:   c.APIKeyName,
		BaseURL:      c.BaseURL,
		DefaultChat:  c.DefaultChat,
		DefaultEmbed: c.DefaultEmbed,
		Capabilities: caps,
		NewChatModel: openai.NewChatModel,
	}
	if c.hasEmbeddings() {
		p.NewEmbeddingsModel = openai.NewEmbeddingsModel
	}
	return p
}

func (c StaticProviderConfig) hasEmbeddings() bool {
	for _, cap := range c.Capabilities {
		if agent.Capability(cap) == agent.CapabilityEmbeddings {
			return true
		}
	}
	return false
}
