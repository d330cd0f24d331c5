package engineerr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSchemaValidationFailedJoinsViolations(t *testing.T) {
	err := SchemaValidationFailed("Health", []string{"current: required", "max: must be >= 0"})
	assert.Contains(t, err.Error(), "current: required, max: must be >= 0")
}

func TestIsMatchesCode(t *testing.T) {
	err := JobNotFound("job-1")
	assert.True(t, Is(err, CodeJobNotFound))
	assert.False(t, Is(err, CodeHandlerNotFound))
}

func TestWrapUnwraps(t *testing.T) {
	cause := errors.New("boom")
	wrapped := Wrap(CodeDeserialization, "bad json", cause)
	assert.ErrorIs(t, wrapped, cause)
}

func TestWithDetailsChains(t *testing.T) {
	err := New(CodeInvalidSchema, "bad").WithDetails("a", 1).WithDetails("b", 2)
	assert.Equal(t, 1, err.Details["a"])
	assert.Equal(t, 2, err.Details["b"])
}
