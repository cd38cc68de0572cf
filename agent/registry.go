package agent

import (
	"fmt"
	"strings"
	"sync"
)

// Registry is the process-wide, read-mostly table of registered Providers.
// Provider packages self-register with Register (database/sql-style,
// typically from an init() behind a blank import) so the core agent
// package never has to import a concrete provider package directly.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
	aliases   map[string]string
}

var defaultRegistry = NewRegistry()

// Providers is the process-wide default Registry. Provider packages call
// agent.Providers.Register in their init(); applications call
// agent.Providers.Get/AllWith to discover what's available.
var Providers = defaultRegistry

// NewRegistry returns an empty Registry. Most callers want the process-wide
// Providers registry; NewRegistry exists for tests that need isolation.
func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[string]Provider),
		aliases:   make(map[string]string),
	}
}

// Register adds p to the registry under p.Name and every entry in
// p.Aliases. Registering the same name twice is a programmer error and
// panics, matching the database/sql driver-registration convention
// providers imitate.
func (r *Registry) Register(p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	name := strings.ToLower(p.Name)
	if _, exists := r.providers[name]; exists {
		panic(fmt.Sprintf("agent: Register called twice for provider %q", name))
	}
	r.providers[name] = p
	for _, alias := range p.Aliases {
		r.aliases[strings.ToLower(alias)] = name
	}
}

// resolve maps a name or alias (already lowercased by the caller) to a
// canonical provider name.
func (r *Registry) resolve(name string) string {
	if canonical, ok := r.aliases[name]; ok {
		return canonical
	}
	return name
}

// Get returns the provider registered under name (resolving aliases like
// "claude"→"anthropic", "gemini"→"google"), or a ConfigurationError if no
// such provider is registered.
func (r *Registry) Get(name string) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	canonical := r.resolve(strings.ToLower(name))
	p, ok := r.providers[canonical]
	if !ok {
		return Provider{}, &ConfigurationError{
			Message: fmt.Sprintf("unknown provider %q", name),
			Fix:     "check the model string's provider name, or blank-import the provider package that registers it",
		}
	}
	return p, nil
}

// All returns every registered provider, in no particular order.
func (r *Registry) All() []Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Provider, 0, len(r.providers))
	for _, p := range r.providers {
		out = append(out, p)
	}
	return out
}

// AllWith returns every registered provider that declares every capability
// in caps.
func (r *Registry) AllWith(caps ...Capability) []Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Provider, 0, len(r.providers))
	for _, p := range r.providers {
		if hasAllCapabilities(p, caps) {
			out = append(out, p)
		}
	}
	return out
}

func hasAllCapabilities(p Provider, caps []Capability) bool {
	for _, c := range caps {
		if !p.HasCapability(c) {
			return false
		}
	}
	return true
}
