package structgen

import (
	"fmt"
	"sort"
	"strings"
)

type Type string

const (
	TypeObject Type = "object"
	TypeArray  Type = "array"
	TypeString Type = "string"
)

// Schema is a provider-neutral description of an output shape. Providers
// translate it into their own constrained-decoding format.
type Schema struct {
	Type        Type
	Description string
	Properties  map[string]*Schema
	Required    []string
	Items       *Schema
	MinItems    int
	// Nullable properties may be absent or null even if listed in Required.
	Nullable bool
}

func String(desc string) *Schema { return &Schema{Type: TypeString, Description: desc} }

func Array(desc string, items *Schema, minItems int) *Schema {
	return &Schema{Type: TypeArray, Description: desc, Items: items, MinItems: minItems}
}

// Object builds an object schema whose properties are all required.
func Object(desc string, props map[string]*Schema) *Schema {
	required := make([]string, 0, len(props))
	for name := range props {
		required = append(required, name)
	}
	sort.Strings(required)
	return &Schema{Type: TypeObject, Description: desc, Properties: props, Required: required}
}

// PropertyNames returns property names in a stable order.
func (s *Schema) PropertyNames() []string {
	names := make([]string, 0, len(s.Properties))
	for name := range s.Properties {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate checks a decoded JSON value against the schema. Required strings
// must be non-blank; required arrays must meet MinItems.
func (s *Schema) Validate(v any) error {
	return s.validate("$", v)
}

func (s *Schema) validate(path string, v any) error {
	if s == nil {
		return nil
	}
	if v == nil {
		if s.Nullable {
			return nil
		}
		return fmt.Errorf("%s: value is missing", path)
	}

	switch s.Type {
	case TypeString:
		str, ok := v.(string)
		if !ok {
			return fmt.Errorf("%s: expected string, got %T", path, v)
		}
		if strings.TrimSpace(str) == "" {
			return fmt.Errorf("%s: string is empty", path)
		}
	case TypeArray:
		arr, ok := v.([]any)
		if !ok {
			return fmt.Errorf("%s: expected array, got %T", path, v)
		}
		if len(arr) < s.MinItems {
			return fmt.Errorf("%s: expected at least %d items, got %d", path, s.MinItems, len(arr))
		}
		for i, item := range arr {
			if err := s.Items.validate(fmt.Sprintf("%s[%d]", path, i), item); err != nil {
				return err
			}
		}
	case TypeObject:
		obj, ok := v.(map[string]any)
		if !ok {
			return fmt.Errorf("%s: expected object, got %T", path, v)
		}
		for _, name := range s.Required {
			prop := s.Properties[name]
			val, present := obj[name]
			if !present && (prop == nil || !prop.Nullable) {
				return fmt.Errorf("%s.%s: required property missing", path, name)
			}
			if err := prop.validate(path+"."+name, val); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("%s: unsupported schema type %q", path, s.Type)
	}
	return nil
}
