// Package schema implements the subset of JSON Schema draft 2020-12 that
// tool descriptors and typed-output requests are expressed in: object,
// array, string, number, integer, and boolean types with properties,
// required, enum, description, nullable, format, and $ref/$defs.
//
// Validation is delegated to github.com/santhosh-tekuri/jsonschema/v6 so the
// same draft-2020-12 semantics the provider SDKs expect are enforced rather
// than re-implemented by hand.
package schema

import (
	"encoding/json"
	"fmt"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v6"
)

// Type is one of the draft 2020-12 primitive types this subset supports.
type Type string

const (
	TypeObject  Type = "object"
	TypeArray   Type = "array"
	TypeString  Type = "string"
	TypeNumber  Type = "number"
	TypeInteger Type = "integer"
	TypeBoolean Type = "boolean"
)

// Schema is the in-memory representation of a tool's input schema or a
// typed-output response schema. It round-trips to/from JSON Schema via its
// MarshalJSON/UnmarshalJSON methods so it can be embedded directly in a
// Tool descriptor or handed to a provider mapper.
type Schema struct {
	Type        Type
	Description string
	Properties  map[string]*Schema
	Required    []string
	Items       *Schema
	Enum        []any
	Format      string
	Nullable    bool
	Ref         string
	Defs        map[string]*Schema
}

// schemaJSON mirrors Schema's shape but with JSON Schema's actual field
// names, since "$ref"/"$defs" are not valid Go identifiers.
type schemaJSON struct {
	Type        Type                   `json:"type,omitempty"`
	Description string                 `json:"description,omitempty"`
	Properties  map[string]*Schema     `json:"properties,omitempty"`
	Required    []string               `json:"required,omitempty"`
	Items       *Schema                `json:"items,omitempty"`
	Enum        []any                  `json:"enum,omitempty"`
	Format      string                 `json:"format,omitempty"`
	Nullable    bool                   `json:"nullable,omitempty"`
	Ref         string                 `json:"$ref,omitempty"`
	Defs        map[string]*Schema     `json:"$defs,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (s *Schema) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("null"), nil
	}
	return json.Marshal(schemaJSON(*s))
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *Schema) UnmarshalJSON(data []byte) error {
	var raw schemaJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = Schema(raw)
	return nil
}

// Object is a convenience constructor for an object schema with the given
// properties; required marks which of those properties are mandatory. Per
// the core spec's invariant, a required property is non-nullable whatever
// its own Nullable flag says (see IsPropertyNullable).
func Object(properties map[string]*Schema, required ...string) *Schema {
	return &Schema{Type: TypeObject, Properties: properties, Required: required}
}

// String is a convenience constructor for a string schema.
func String(description string) *Schema {
	return &Schema{Type: TypeString, Description: description}
}

// Number is a convenience constructor for a number schema.
func Number(description string) *Schema {
	return &Schema{Type: TypeNumber, Description: description}
}

// Integer is a convenience constructor for an integer schema.
func Integer(description string) *Schema {
	return &Schema{Type: TypeInteger, Description: description}
}

// Boolean is a convenience constructor for a boolean schema.
func Boolean(description string) *Schema {
	return &Schema{Type: TypeBoolean, Description: description}
}

// Array is a convenience constructor for an array schema.
func Array(items *Schema, description string) *Schema {
	return &Schema{Type: TypeArray, Items: items, Description: description}
}

// Enum is a convenience constructor for a string enum schema.
func Enum(description string, values ...string) *Schema {
	vals := make([]any, len(values))
	for i, v := range values {
		vals[i] = v
	}
	return &Schema{Type: TypeString, Description: description, Enum: vals}
}

// IsPropertyNullable reports whether a named property may be null: required
// properties are never nullable, even if their sub-schema sets Nullable;
// optional properties follow the Nullable flag on their own sub-schema.
func (s *Schema) IsPropertyNullable(name string) bool {
	if s == nil || s.Properties == nil {
		return false
	}
	prop, ok := s.Properties[name]
	if !ok {
		return false
	}
	for _, r := range s.Required {
		if r == name {
			return false
		}
	}
	return prop.Nullable
}

// Compile validates that the schema is well-formed draft-2020-12 by
// round-tripping it through santhosh-tekuri/jsonschema/v6. It resolves
// $ref/$defs internally, so a malformed reference surfaces here rather than
// at the provider boundary.
func Compile(s *Schema) (*jsonschema.Schema, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("schema: marshal: %w", err)
	}
	doc, err := jsonschema.UnmarshalJSON(bytesReader(raw))
	if err != nil {
		return nil, fmt.Errorf("schema: decode: %w", err)
	}
	c := jsonschema.NewCompiler()
	const resourceURL = "mem://tool-schema.json"
	if err := c.AddResource(resourceURL, doc); err != nil {
		return nil, fmt.Errorf("schema: add resource: %w", err)
	}
	compiled, err := c.Compile(resourceURL)
	if err != nil {
		return nil, fmt.Errorf("schema: compile: %w", err)
	}
	return compiled, nil
}

// Validate checks a decoded JSON value (as produced by encoding/json, e.g.
// map[string]any) against the schema.
func Validate(s *Schema, value any) error {
	compiled, err := Compile(s)
	if err != nil {
		return err
	}
	if err := compiled.Validate(value); err != nil {
		return fmt.Errorf("schema: validation failed: %w", err)
	}
	return nil
}

// ResolveRef walks $ref/$defs pointers within a schema tree, returning the
// dereferenced schema. Providers (notably Google) that cannot consume
// "$ref" directly call this before translating to their native format.
func ResolveRef(root, node *Schema) *Schema {
	if node == nil || node.Ref == "" {
		return node
	}
	name := refName(node.Ref)
	if root == nil || root.Defs == nil {
		return node
	}
	def, ok := root.Defs[name]
	if !ok {
		return node
	}
	return ResolveRef(root, def)
}

func refName(ref string) string {
	const prefix = "#/$defs/"
	if len(ref) > len(prefix) && ref[:len(prefix)] == prefix {
		return ref[len(prefix):]
	}
	return ref
}

type byteReader struct {
	b   []byte
	pos int
}

func bytesReader(b []byte) *byteReader { return &byteReader{b: b} }

func (r *byteReader) Read(p []byte) (int, error) {
	if r.pos >= len(r.b) {
		return 0, fmt.Errorf("EOF")
	}
	n := copy(p, r.b[r.pos:])
	r.pos += n
	return n, nil
}
