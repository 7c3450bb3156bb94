package toolkit

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"
)

// The registry validates arguments against a deliberate subset of JSON
// Schema: an object root with properties, required, and per-property type,
// enum, minimum and maximum. Handlers can therefore assume well-formed,
// correctly typed input. Anything the subset cannot express (non-empty
// strings, cross-field rules) stays a handler concern.

type schemaDoc struct {
	Type       string                `json:"type"`
	Properties map[string]schemaProp `json:"properties"`
	Required   []string              `json:"required"`
}

type schemaProp struct {
	Type    string      `json:"type"`
	Enum    []string    `json:"enum"`
	Minimum *float64    `json:"minimum"`
	Maximum *float64    `json:"maximum"`
	Items   *schemaProp `json:"items"`
}

// parseSchema validates the schema document itself. Called once at registry
// construction so Dispatch never sees a malformed schema.
func parseSchema(raw json.RawMessage) (*schemaDoc, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("schema is required")
	}
	var doc schemaDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse schema: %w", err)
	}
	if doc.Type != "object" {
		return nil, fmt.Errorf("schema root type must be \"object\", got %q", doc.Type)
	}
	for name, p := range doc.Properties {
		switch p.Type {
		case "string", "number", "integer", "boolean", "array", "object":
		default:
			return nil, fmt.Errorf("property %q: unsupported type %q", name, p.Type)
		}
		if p.Type == "array" && p.Items == nil {
			return nil, fmt.Errorf("property %q: array requires items", name)
		}
	}
	for _, req := range doc.Required {
		if _, ok := doc.Properties[req]; !ok {
			return nil, fmt.Errorf("required property %q is not declared", req)
		}
	}
	return &doc, nil
}

// validateArgs checks raw arguments against the parsed schema. Every
// violation is reported as KindInvalidArgs with the offending property named.
func (doc *schemaDoc) validateArgs(raw json.RawMessage) error {
	if len(raw) == 0 {
		raw = []byte("{}")
	}
	var args map[string]any
	if err := json.Unmarshal(raw, &args); err != nil {
		return Errorf(KindInvalidArgs, "arguments must be a JSON object: %v", err)
	}
	for _, req := range doc.Required {
		if _, ok := args[req]; !ok {
			return Errorf(KindInvalidArgs, "missing required argument %q", req)
		}
	}
	// Reject unknown keys so typos surface as errors instead of silently
	// falling back to defaults.
	unknown := make([]string, 0)
	for key := range args {
		if _, ok := doc.Properties[key]; !ok {
			unknown = append(unknown, key)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return Errorf(KindInvalidArgs, "unknown argument(s): %s", strings.Join(unknown, ", "))
	}
	for key, val := range args {
		prop := doc.Properties[key]
		if err := checkValue(key, prop, val); err != nil {
			return err
		}
	}
	return nil
}

func checkValue(name string, prop schemaProp, val any) error {
	switch prop.Type {
	case "string":
		s, ok := val.(string)
		if !ok {
			return Errorf(KindInvalidArgs, "argument %q must be a string", name)
		}
		if len(prop.Enum) > 0 && !containsString(prop.Enum, s) {
			return Errorf(KindInvalidArgs, "argument %q must be one of %s", name, strings.Join(prop.Enum, ", "))
		}
	case "boolean":
		if _, ok := val.(bool); !ok {
			return Errorf(KindInvalidArgs, "argument %q must be a boolean", name)
		}
	case "number", "integer":
		f, ok := val.(float64)
		if !ok {
			return Errorf(KindInvalidArgs, "argument %q must be a number", name)
		}
		if prop.Type == "integer" && f != math.Trunc(f) {
			return Errorf(KindInvalidArgs, "argument %q must be an integer", name)
		}
		if prop.Minimum != nil && f < *prop.Minimum {
			return Errorf(KindInvalidArgs, "argument %q must be >= %v", name, *prop.Minimum)
		}
		if prop.Maximum != nil && f > *prop.Maximum {
			return Errorf(KindInvalidArgs, "argument %q must be <= %v", name, *prop.Maximum)
		}
	case "array":
		items, ok := val.([]any)
		if !ok {
			return Errorf(KindInvalidArgs, "argument %q must be an array", name)
		}
		for i, item := range items {
			if err := checkValue(fmt.Sprintf("%s[%d]", name, i), *prop.Items, item); err != nil {
				return err
			}
		}
	case "object":
		if _, ok := val.(map[string]any); !ok {
			return Errorf(KindInvalidArgs, "argument %q must be an object", name)
		}
	}
	return nil
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
