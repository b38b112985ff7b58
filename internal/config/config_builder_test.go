package config

import (
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── helpers ───────────────────────────────────────────────────────────────────

func writeTempJSONConfig(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	f, err := os.CreateTemp(t.TempDir(), "config-*.json")
	require.NoError(t, err)
	_, err = f.Write(data)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	return f.Name()
}

// ── newConfigBuilder ──────────────────────────────────────────────────────────

// TestNewConfigBuilder_InitialState verifies that a freshly created builder
// has no error and an empty configs slice.
func TestNewConfigBuilder_InitialState(t *testing.T) {
	b := newConfigBuilder()
	require.NotNil(t, b)
	assert.NoError(t, b.err)
	assert.Empty(t, b.configs)
}

// ── build ─────────────────────────────────────────────────────────────────────

// TestBuild_EmptyBuilder verifies that building with no configs returns a
// zero-value StructuredConfig.
func TestBuild_EmptyBuilder(t *testing.T) {
	b := newConfigBuilder()
	cfg, err := b.build()

	require.NoError(t, err)
	assert.Equal(t, &StructuredConfig{}, cfg)
}

// TestBuild_MergePriority verifies that earlier configs win over later ones
// for fields they both set (mergo keeps existing non-zero values).
func TestBuild_MergePriority(t *testing.T) {
	b := newConfigBuilder()
	b.configs = append(b.configs,
		&StructuredConfig{Identity: Identity{URL: "https://first.example/auth/v1"}},
		&StructuredConfig{
			Identity: Identity{URL: "https://second.example/auth/v1", APIKey: "anon"},
			Server:   Server{HTTPAddress: "localhost:9000"},
		},
	)

	cfg, err := b.build()

	require.NoError(t, err)
	assert.Equal(t, "https://first.example/auth/v1", cfg.Identity.URL)
	assert.Equal(t, "anon", cfg.Identity.APIKey)
	assert.Equal(t, "localhost:9000", cfg.Server.HTTPAddress)
}

// ── withJSON ──────────────────────────────────────────────────────────────────

// TestWithJSON_FileApplied verifies that a JSON file referenced by an earlier
// source is parsed and merged with lower priority.
func TestWithJSON_FileApplied(t *testing.T) {
	jsonBody := map[string]any{
		"identity": map[string]any{"url": "https://json.example/auth/v1"},
		"server":   map[string]any{"http_address": "localhost:8000", "request_timeout": "30s"},
	}
	path := writeTempJSONConfig(t, jsonBody)

	b := newConfigBuilder()
	b.configs = append(b.configs, &StructuredConfig{JSONFilePath: path})
	cfg, err := b.withJSON().build()

	require.NoError(t, err)
	assert.Equal(t, "https://json.example/auth/v1", cfg.Identity.URL)
	assert.Equal(t, "localhost:8000", cfg.Server.HTTPAddress)
	assert.Equal(t, 30*time.Second, cfg.Server.RequestTimeout)
}

// TestWithJSON_MissingFile verifies that referencing a nonexistent JSON file
// surfaces an error from build.
func TestWithJSON_MissingFile(t *testing.T) {
	b := newConfigBuilder()
	b.configs = append(b.configs, &StructuredConfig{JSONFilePath: "/definitely/not/there.json"})

	_, err := b.withJSON().build()
	require.Error(t, err)
}

// TestWithJSON_NoPath verifies that the JSON stage is a no-op when no earlier
// source specified a file path.
func TestWithJSON_NoPath(t *testing.T) {
	b := newConfigBuilder()
	b.configs = append(b.configs, &StructuredConfig{})

	cfg, err := b.withJSON().build()
	require.NoError(t, err)
	assert.Equal(t, &StructuredConfig{}, cfg)
}
