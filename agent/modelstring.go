package agent

import (
	"fmt"
	"strings"
)

// ModelString is the parsed form of a model identifier:
//
//	model   := provider
//	         | provider ':' name
//	         | provider '/' path
//	         | provider '?' query
//	query   := kv ('&' kv)*
//	kv      := ('chat'|'embeddings'|'other') '=' value
//
// Examples: "openai", "openai:gpt-4o", "openai/gpt-4o",
// "openai?chat=gpt-4o&embeddings=text-embedding-3-large".
type ModelString struct {
	Provider    string
	ChatModel   string
	EmbedModel  string
	OtherModel  string
}

// ParseModelString parses a model string per the grammar above. The
// provider name is lowercased; alias resolution is the caller's
// responsibility (see Registry.Get).
func ParseModelString(s string) (ModelString, error) {
	if s == "" {
		return ModelString{}, &ConfigurationError{
			Message: "empty model string",
			Fix:     `supply a model string such as "openai" or "openai:gpt-4o"`,
		}
	}

	if i := strings.IndexByte(s, '?'); i >= 0 {
		provider := strings.ToLower(s[:i])
		if provider == "" {
			return ModelString{}, invalidModelString(s)
		}
		ms := ModelString{Provider: provider}
		query := s[i+1:]
		for _, pair := range strings.Split(query, "&") {
			if pair == "" {
				continue
			}
			k, v, ok := strings.Cut(pair, "=")
			if !ok {
				return ModelString{}, invalidModelString(s)
			}
			switch k {
			case "chat":
				ms.ChatModel = v
			case "embeddings":
				ms.EmbedModel = v
			case "other":
				ms.OtherModel = v
			default:
				return ModelString{}, invalidModelString(s)
			}
		}
		return ms, nil
	}

	if i := strings.IndexByte(s, ':'); i >= 0 {
		provider := strings.ToLower(s[:i])
		name := s[i+1:]
		if provider == "" || name == "" {
			return ModelString{}, invalidModelString(s)
		}
		return ModelString{Provider: provider, ChatModel: name}, nil
	}

	if i := strings.IndexByte(s, '/'); i >= 0 {
		provider := strings.ToLower(s[:i])
		path := s[i+1:]
		if provider == "" || path == "" {
			return ModelString{}, invalidModelString(s)
		}
		return ModelString{Provider: provider, ChatModel: path}, nil
	}

	return ModelString{Provider: strings.ToLower(s)}, nil
}

func invalidModelString(s string) error {
	return &ConfigurationError{
		Message: fmt.Sprintf("invalid model string %q", s),
		Fix:     `use "provider", "provider:name", "provider/path", or "provider?chat=x&embeddings=y"`,
	}
}
