package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "openai", cfg.Model.Provider)
	assert.Equal(t, "TechnicalDocument", cfg.Weaviate.ClassName)
	assert.Equal(t, 5, cfg.Weaviate.Limit)
	assert.Equal(t, 5, cfg.Graph.MaxToolCycles)
	assert.Empty(t, cfg.Session.DataDir)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("ASKDOCS_SERVER_ADDR", ":9999")
	t.Setenv("ASKDOCS_MODEL_PROVIDER", "anthropic")
	t.Setenv("ASKDOCS_MODEL_NAME", "claude-3-5-sonnet-20241022")
	t.Setenv("ASKDOCS_WEAVIATE_CLASS_NAME", "KnowledgeChunk")
	t.Setenv("ASKDOCS_GRAPH_MAX_TOOL_CYCLES", "3")
	t.Setenv("ASKDOCS_SESSION_DATA_DIR", "/tmp/askdocs")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9999", cfg.Server.Addr)
	assert.Equal(t, "anthropic", cfg.Model.Provider)
	assert.Equal(t, "claude-3-5-sonnet-20241022", cfg.Model.Name)
	assert.Equal(t, "KnowledgeChunk", cfg.Weaviate.ClassName)
	assert.Equal(t, 3, cfg.Graph.MaxToolCycles)
	assert.Equal(t, "/tmp/askdocs", cfg.Session.DataDir)
}

func TestLoad_UnknownVariablesAreIgnored(t *testing.T) {
	t.Setenv("ASKDOCS_TOTALLY_UNKNOWN", "value")

	_, err := Load()
	assert.NoError(t, err)
}

func TestLoad_RejectsUnknownProvider(t *testing.T) {
	t.Setenv("ASKDOCS_MODEL_PROVIDER", "gemini")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown model provider")
}

func TestLoad_RejectsInvalidToolCycles(t *testing.T) {
	t.Setenv("ASKDOCS_GRAPH_MAX_TOOL_CYCLES", "0")

	_, err := Load()
	require.Error(t, err)
}
