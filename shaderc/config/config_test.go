package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	assert := assert.New(t)

	path := filepath.Join(t.TempDir(), "build.toml")
	manifest := `
input = "shaders/scene.hlsl"
output_dir = "out"
targets = ["gl430", "spv"]
header_path = "shader_bindings.h"
header_namespace = "shaders"
watch = true
`
	require.NoError(t, os.WriteFile(path, []byte(manifest), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal("shaders/scene.hlsl", cfg.Input)
	assert.Equal("out", cfg.OutputDir)
	assert.Equal([]string{"gl430", "spv"}, cfg.Targets)
	assert.Equal("shader_bindings.h", cfg.HeaderPath)
	assert.Equal("shaders", cfg.HeaderNamespace)
	assert.True(cfg.Watch)
}

func TestLoad_DefaultsOutputDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "build.toml")
	require.NoError(t, os.WriteFile(path, []byte(`input = "a.hlsl"`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ".", cfg.OutputDir)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestLoad_MalformedTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "build.toml")
	require.NoError(t, os.WriteFile(path, []byte("targets = [\n"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	assert := assert.New(t)

	cfg := Default()
	assert.Error(cfg.Validate())

	cfg.Input = "a.hlsl"
	assert.Error(cfg.Validate())

	cfg.Targets = []string{"spv"}
	assert.NoError(cfg.Validate())
}
