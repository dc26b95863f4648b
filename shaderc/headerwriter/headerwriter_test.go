package headerwriter

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/ashaderc/shaderc/layout"
)

func TestWriter_EmitsConstants(t *testing.T) {
	assert := assert.New(t)

	dir := t.TempDir()
	hw, err := New(dir, "bindings.h", "shaders")
	require.NoError(t, err)
	require.True(t, hw.Enabled())

	hw.BeginTechnique("Basic")
	hw.WriteDescriptor(layout.Descriptor{Binding: 0, Name: "globals"}, 0)
	hw.WriteDescriptor(layout.Descriptor{Binding: 2, Name: "albedo"}, 1)
	hw.EndTechnique()
	require.NoError(t, hw.Finalize())

	data, err := os.ReadFile(filepath.Join(dir, "bindings.h"))
	require.NoError(t, err)
	out := string(data)
	assert.Contains(out, "#pragma once")
	assert.Contains(out, "namespace shaders {")
	assert.Contains(out, "namespace Basic {")
	assert.Contains(out, "constexpr int globals_Set = 0;")
	assert.Contains(out, "constexpr int globals_Binding = 0;")
	assert.Contains(out, "constexpr int albedo_Set = 1;")
	assert.Contains(out, "constexpr int albedo_Binding = 2;")
	assert.Contains(out, "} // namespace shaders")
}

func TestWriter_NoNamespace(t *testing.T) {
	dir := t.TempDir()
	hw, err := New(dir, "bindings.h", "")
	require.NoError(t, err)
	hw.BeginTechnique("Basic")
	hw.EndTechnique()
	require.NoError(t, hw.Finalize())

	data, err := os.ReadFile(filepath.Join(dir, "bindings.h"))
	require.NoError(t, err)
	assert.NotContains(t, string(data), "namespace  {")
	assert.Contains(t, string(data), "namespace Basic {")
}

func TestWriter_NoOpWithoutPath(t *testing.T) {
	dir := t.TempDir()
	hw, err := New(dir, "", "shaders")
	require.NoError(t, err)
	assert.False(t, hw.Enabled())
	assert.Empty(t, hw.Path())

	// Every call must be a safe no-op.
	hw.BeginTechnique("Basic")
	hw.WriteDescriptor(layout.Descriptor{Binding: 1, Name: "tex"}, 0)
	hw.EndTechnique()
	require.NoError(t, hw.Finalize())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSanitizeIdentifier(t *testing.T) {
	assert := assert.New(t)
	assert.Equal("tex_map", sanitizeIdentifier("tex-map"))
	assert.Equal("_2d_tex", sanitizeIdentifier("2d tex"))
	assert.Equal("_", sanitizeIdentifier(""))
	assert.Equal("plain_name", sanitizeIdentifier("plain_name"))
}
