package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScript(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "script.js")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestRunReturnsZeroOnSuccess(t *testing.T) {
	path := writeScript(t, `function main(input) { return { ok: true }; }`)
	assert.Equal(t, 0, run([]string{path}))
}

func TestRunReturnsOneOnMissingScript(t *testing.T) {
	assert.Equal(t, 1, run([]string{filepath.Join(t.TempDir(), "missing.js")}))
}

func TestRunReturnsOneOnScriptError(t *testing.T) {
	path := writeScript(t, `function main(input) { throw new Error("boom"); }`)
	assert.Equal(t, 1, run([]string{path}))
}

func TestRunReturnsOneWithoutScriptArgument(t *testing.T) {
	assert.Equal(t, 1, run([]string{}))
}

func TestRunWithCustomEntryPointAndInput(t *testing.T) {
	path := writeScript(t, `function double(input) { return { doubled: input.value * 2 }; }`)
	assert.Equal(t, 0, run([]string{"-entrypoint", "double", "-input", `{"value": 5}`, path}))
}
