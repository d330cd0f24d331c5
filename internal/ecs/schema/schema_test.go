package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileRejectsMinGreaterThanMax(t *testing.T) {
	_, err := Compile(map[string]interface{}{
		"type":    "number",
		"minimum": 10.0,
		"maximum": 5.0,
	})
	require.Error(t, err)
}

func TestValidateRequiredProperties(t *testing.T) {
	s, err := Compile(map[string]interface{}{
		"type":     "object",
		"required": []interface{}{"current", "max"},
		"properties": map[string]interface{}{
			"current": map[string]interface{}{"type": "number"},
			"max":     map[string]interface{}{"type": "number"},
		},
	})
	require.NoError(t, err)

	violations := s.Validate(map[string]interface{}{"current": 1.0})
	require.Len(t, violations, 1)
	assert.Contains(t, violations[0], `missing required property "max"`)

	violations = s.Validate(map[string]interface{}{"current": 1.0, "max": 10.0})
	assert.Empty(t, violations)
}

func TestValidateMinMax(t *testing.T) {
	s, err := Compile(map[string]interface{}{
		"type":    "number",
		"minimum": 0.0,
		"maximum": 10.0,
	})
	require.NoError(t, err)

	assert.Empty(t, s.Validate(5.0))
	assert.NotEmpty(t, s.Validate(-1.0))
	assert.NotEmpty(t, s.Validate(11.0))
}

func TestValidateArrayItems(t *testing.T) {
	s, err := Compile(map[string]interface{}{
		"type": "array",
		"items": map[string]interface{}{
			"type": "string",
		},
	})
	require.NoError(t, err)

	assert.Empty(t, s.Validate([]interface{}{"a", "b"}))
	assert.NotEmpty(t, s.Validate([]interface{}{"a", 2.0}))
}

func TestValidateEnum(t *testing.T) {
	s, err := Compile(map[string]interface{}{
		"enum": []interface{}{"idle", "working", "moving"},
	})
	require.NoError(t, err)

	assert.Empty(t, s.Validate("idle"))
	assert.NotEmpty(t, s.Validate("sleeping"))
}
