// Package config loads the assistant configuration from environment
// variables. Variables use the ASKDOCS_ prefix with underscores separating
// nesting levels, e.g. ASKDOCS_WEAVIATE_URL maps to weaviate.url.
package config

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "ASKDOCS_"

// Config is the full runtime configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Model    ModelConfig    `koanf:"model"`
	Weaviate WeaviateConfig `koanf:"weaviate"`
	Session  SessionConfig  `koanf:"session"`
	Graph    GraphConfig    `koanf:"graph"`
	Log      LogConfig      `koanf:"log"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr string `koanf:"addr"`
}

// ModelConfig selects and configures the generation provider.
type ModelConfig struct {
	// Provider is "openai" or "anthropic".
	Provider string `koanf:"provider"`
	// Name is the provider-specific model identifier.
	Name string `koanf:"name"`
	// APIKey overrides the provider SDK's own environment lookup when set.
	APIKey string `koanf:"api_key"`
	// Temperature applies to generation requests.
	Temperature float64 `koanf:"temperature"`
}

// WeaviateConfig configures the retrieval backend.
type WeaviateConfig struct {
	// URL is the Weaviate endpoint, e.g. http://localhost:8080.
	URL string `koanf:"url"`
	// ClassName is the schema class holding the document chunks.
	ClassName string `koanf:"class_name"`
	// Limit is the number of chunks retrieved per search.
	Limit int `koanf:"limit"`
}

// SessionConfig configures history persistence.
type SessionConfig struct {
	// DataDir is the BadgerDB directory. Empty selects the in-memory store.
	DataDir string `koanf:"data_dir"`
}

// GraphConfig tunes the orchestration engine.
type GraphConfig struct {
	MaxToolCycles    int `koanf:"max_tool_cycles"`
	MaxParallelTools int `koanf:"max_parallel_tools"`
}

// LogConfig configures logging output.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `koanf:"level"`
}

// Default returns the configuration used when no environment overrides exist.
func Default() Config {
	return Config{
		Server: ServerConfig{Addr: ":8080"},
		Model: ModelConfig{
			Provider:    "openai",
			Name:        "gpt-4o-mini",
			Temperature: 0,
		},
		Weaviate: WeaviateConfig{
			URL:       "http://localhost:8080",
			ClassName: "TechnicalDocument",
			Limit:     5,
		},
		Graph: GraphConfig{
			MaxToolCycles:    5,
			MaxParallelTools: 4,
		},
		Log: LogConfig{Level: "info"},
	}
}

// envMappings maps environment variable names (without prefix) to config
// paths. Multi-word leaf keys cannot be derived mechanically from the
// variable name, so every supported variable is listed.
var envMappings = map[string]string{
	"SERVER_ADDR":              "server.addr",
	"MODEL_PROVIDER":           "model.provider",
	"MODEL_NAME":               "model.name",
	"MODEL_API_KEY":            "model.api_key",
	"MODEL_TEMPERATURE":        "model.temperature",
	"WEAVIATE_URL":             "weaviate.url",
	"WEAVIATE_CLASS_NAME":      "weaviate.class_name",
	"WEAVIATE_LIMIT":           "weaviate.limit",
	"SESSION_DATA_DIR":         "session.data_dir",
	"GRAPH_MAX_TOOL_CYCLES":    "graph.max_tool_cycles",
	"GRAPH_MAX_PARALLEL_TOOLS": "graph.max_parallel_tools",
	"LOG_LEVEL":                "log.level",
}

// Load builds the configuration from defaults overlaid with ASKDOCS_*
// environment variables.
func Load() (Config, error) {
	k := koanf.New(".")

	if err := k.Load(env.Provider(".", env.Opt{
		Prefix: envPrefix,
		TransformFunc: func(key, value string) (string, any) {
			path, ok := envMappings[strings.TrimPrefix(key, envPrefix)]
			if !ok {
				return "", nil
			}
			return path, value
		},
	}), nil); err != nil {
		return Config{}, fmt.Errorf("load environment: %w", err)
	}

	cfg := Default()
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Model.Provider {
	case "openai", "anthropic":
	default:
		return fmt.Errorf("config: unknown model provider %q", c.Model.Provider)
	}
	if c.Weaviate.URL == "" {
		return fmt.Errorf("config: weaviate url must not be empty")
	}
	if c.Graph.MaxToolCycles < 1 {
		return fmt.Errorf("config: max tool cycles must be at least 1")
	}
	return nil
}
