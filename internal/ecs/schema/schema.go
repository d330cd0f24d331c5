// Package schema implements the small, draft-07-flavored JSON Schema subset
// the component registry needs to validate component payloads (spec.md
// section 4.1). No third-party JSON-Schema validator appears anywhere in
// the reference pack, so this is a deliberately narrow, hand-rolled
// compiler/validator rather than an adopted library: type, required,
// properties, items, enum, minimum/maximum, minLength/maxLength.
package schema

import (
	"fmt"
	"sort"
)

// Schema is a compiled node of the supported JSON Schema subset.
type Schema struct {
	raw map[string]interface{}

	typ        string
	required   []string
	properties map[string]*Schema
	items      *Schema
	enum       []interface{}

	hasMinimum bool
	minimum    float64
	hasMaximum bool
	maximum    float64

	hasMinLength bool
	minLength    int
	hasMaxLength bool
	maxLength    int
}

// Compile compiles a raw JSON-Schema-shaped map into a Schema, validating
// the schema itself is well-formed (e.g. minimum <= maximum).
func Compile(raw map[string]interface{}) (*Schema, error) {
	s, err := compileNode(raw)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func compileNode(raw map[string]interface{}) (*Schema, error) {
	s := &Schema{raw: raw}

	if t, ok := raw["type"].(string); ok {
		s.typ = t
	}

	if req, ok := raw["required"].([]interface{}); ok {
		for _, r := range req {
			if str, ok := r.(string); ok {
				s.required = append(s.required, str)
			}
		}
	}

	if props, ok := raw["properties"].(map[string]interface{}); ok {
		s.properties = make(map[string]*Schema, len(props))
		for name, p := range props {
			pm, ok := p.(map[string]interface{})
			if !ok {
				return nil, fmt.Errorf("property %q: not an object", name)
			}
			child, err := compileNode(pm)
			if err != nil {
				return nil, fmt.Errorf("property %q: %w", name, err)
			}
			s.properties[name] = child
		}
	}

	if items, ok := raw["items"].(map[string]interface{}); ok {
		child, err := compileNode(items)
		if err != nil {
			return nil, fmt.Errorf("items: %w", err)
		}
		s.items = child
	}

	if enum, ok := raw["enum"].([]interface{}); ok {
		s.enum = enum
	}

	if min, ok := toFloat(raw["minimum"]); ok {
		s.hasMinimum = true
		s.minimum = min
	}
	if max, ok := toFloat(raw["maximum"]); ok {
		s.hasMaximum = true
		s.maximum = max
	}
	if s.hasMinimum && s.hasMaximum && s.minimum > s.maximum {
		return nil, fmt.Errorf("minimum %v is greater than maximum %v", s.minimum, s.maximum)
	}

	if minLen, ok := toFloat(raw["minLength"]); ok {
		s.hasMinLength = true
		s.minLength = int(minLen)
	}
	if maxLen, ok := toFloat(raw["maxLength"]); ok {
		s.hasMaxLength = true
		s.maxLength = int(maxLen)
	}

	return s, nil
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

// Validate validates a decoded JSON value (as produced by encoding/json with
// UseNumber disabled, i.e. numbers as float64, objects as
// map[string]interface{}, arrays as []interface{}) against the schema.
// Returns every violation found, comma-joinable by the caller.
func (s *Schema) Validate(value interface{}) []string {
	var violations []string
	s.validate("", value, &violations)
	return violations
}

func (s *Schema) validate(path string, value interface{}, out *[]string) {
	if s == nil {
		return
	}

	if len(s.enum) > 0 && !containsValue(s.enum, value) {
		*out = append(*out, fmt.Sprintf("%s: value not in enum", label(path)))
	}

	switch s.typ {
	case "object":
		obj, ok := value.(map[string]interface{})
		if !ok {
			*out = append(*out, fmt.Sprintf("%s: expected object", label(path)))
			return
		}
		missing := make([]string, 0)
		for _, req := range s.required {
			if _, present := obj[req]; !present {
				missing = append(missing, req)
			}
		}
		sort.Strings(missing)
		for _, m := range missing {
			*out = append(*out, fmt.Sprintf("%s: missing required property %q", label(path), m))
		}
		for name, child := range s.properties {
			if v, present := obj[name]; present {
				child.validate(joinPath(path, name), v, out)
			}
		}
	case "array":
		arr, ok := value.([]interface{})
		if !ok {
			*out = append(*out, fmt.Sprintf("%s: expected array", label(path)))
			return
		}
		if s.items != nil {
			for i, v := range arr {
				s.items.validate(fmt.Sprintf("%s[%d]", path, i), v, out)
			}
		}
	case "string":
		str, ok := value.(string)
		if !ok {
			*out = append(*out, fmt.Sprintf("%s: expected string", label(path)))
			return
		}
		if s.hasMinLength && len(str) < s.minLength {
			*out = append(*out, fmt.Sprintf("%s: length below minLength %d", label(path), s.minLength))
		}
		if s.hasMaxLength && len(str) > s.maxLength {
			*out = append(*out, fmt.Sprintf("%s: length above maxLength %d", label(path), s.maxLength))
		}
	case "number", "integer":
		num, ok := toFloat(value)
		if !ok {
			*out = append(*out, fmt.Sprintf("%s: expected number", label(path)))
			return
		}
		if s.typ == "integer" && num != float64(int64(num)) {
			*out = append(*out, fmt.Sprintf("%s: expected integer", label(path)))
		}
		if s.hasMinimum && num < s.minimum {
			*out = append(*out, fmt.Sprintf("%s: %v is below minimum %v", label(path), num, s.minimum))
		}
		if s.hasMaximum && num > s.maximum {
			*out = append(*out, fmt.Sprintf("%s: %v is above maximum %v", label(path), num, s.maximum))
		}
	case "boolean":
		if _, ok := value.(bool); !ok {
			*out = append(*out, fmt.Sprintf("%s: expected boolean", label(path)))
		}
	case "":
		// No type constraint declared: only enum/property constraints apply.
	}
}

func containsValue(candidates []interface{}, v interface{}) bool {
	for _, c := range candidates {
		if fmt.Sprint(c) == fmt.Sprint(v) {
			return true
		}
	}
	return false
}

func label(path string) string {
	if path == "" {
		return "(root)"
	}
	return path
}

func joinPath(path, name string) string {
	if path == "" {
		return name
	}
	return path + "." + name
}
