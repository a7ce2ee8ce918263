// Package config holds memelord's construction-time defaults and ambient
// settings: the YAML-backed knobs a deployment can override, layered under
// environment variables and finally the store's required constructor
// arguments (dbPath, sessionId, embed), which are never read from this file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"memelord/internal/logging"
)

// Config holds memelord's tunable defaults.
type Config struct {
	// DataDir is the root of the per-project data directory, default ".memelord".
	// Overridden by MEMELORD_DIR.
	DataDir string `yaml:"data_dir"`

	Store     StoreConfig     `yaml:"store"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Scoring   ScoringConfig   `yaml:"scoring"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// StoreConfig configures the vector column and retrieval fan-out.
type StoreConfig struct {
	// VectorType names the SQL vector primitive: vector32|vector64|vector8|vector1.
	// Only vector32 is implemented; anything else fails validation.
	VectorType string `yaml:"vector_type"`
	Dimensions int     `yaml:"dimensions"`
	TopK       int     `yaml:"top_k"`
}

// EmbeddingConfig selects and configures the embedding backend.
type EmbeddingConfig struct {
	Provider       string `yaml:"provider"` // ollama, genai, deterministic
	OllamaEndpoint string `yaml:"ollama_endpoint"`
	OllamaModel    string `yaml:"ollama_model"`
	GenAIAPIKey    string `yaml:"genai_api_key"`
	GenAIModel     string `yaml:"genai_model"`
	TaskType       string `yaml:"task_type"`
}

// ScoringConfig holds the credit-assignment / decay constants.
type ScoringConfig struct {
	LearningRate float64 `yaml:"learning_rate"` // EMA alpha for weight updates
	DecayRate    float64 `yaml:"decay_rate"`    // daily decay + retrieval-recency base
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		DataDir: ".memelord",

		Store: StoreConfig{
			VectorType: "vector32",
			Dimensions: 384,
			TopK:       5,
		},

		Embedding: EmbeddingConfig{
			Provider:       "ollama",
			OllamaEndpoint: "http://localhost:11434",
			OllamaModel:    "embeddinggemma",
			GenAIModel:     "gemini-embedding-001",
			TaskType:       "SEMANTIC_SIMILARITY",
		},

		Scoring: ScoringConfig{
			LearningRate: 0.1,
			DecayRate:    0.995,
		},

		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load loads configuration from a YAML file, falling back to defaults
// if the file doesn't exist, then applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	logging.BootDebug("loading config from: %s", path)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logging.Boot("config file not found, using defaults: %s", path)
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		logging.BootError("failed to read config file %s: %v", path, err)
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		logging.BootError("failed to parse config file %s: %v", path, err)
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	logging.Boot("config loaded: data_dir=%s vector_type=%s dimensions=%d", cfg.DataDir, cfg.Store.VectorType, cfg.Store.Dimensions)

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if dir := os.Getenv("MEMELORD_DIR"); dir != "" {
		c.DataDir = dir
	}

	// Embedding configuration from environment
	if key := os.Getenv("GENAI_API_KEY"); key != "" {
		c.Embedding.GenAIAPIKey = key
		if c.Embedding.Provider == "" || c.Embedding.Provider == "ollama" {
			c.Embedding.Provider = "genai"
		}
	} else if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.Embedding.GenAIAPIKey = key
		if c.Embedding.Provider == "" || c.Embedding.Provider == "ollama" {
			c.Embedding.Provider = "genai"
		}
	}
	if endpoint := os.Getenv("OLLAMA_ENDPOINT"); endpoint != "" {
		c.Embedding.OllamaEndpoint = endpoint
	}
	if model := os.Getenv("OLLAMA_EMBEDDING_MODEL"); model != "" {
		c.Embedding.OllamaModel = model
	}
}

// DBPath returns the default memory database path under DataDir.
func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, "memory.db")
}

// SessionsDir returns the default session-file directory under DataDir.
func (c *Config) SessionsDir() string {
	return filepath.Join(c.DataDir, "sessions")
}

// ValidVectorTypes lists the vector primitive names accepted on the wire;
// only vector32 is actually implemented (see Validate).
var ValidVectorTypes = []string{"vector32", "vector64", "vector8", "vector1"}

// Validate checks the configuration for internal consistency.
func (c *Config) Validate() error {
	known := false
	for _, v := range ValidVectorTypes {
		if c.Store.VectorType == v {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("unknown vector type: %s (valid: %v)", c.Store.VectorType, ValidVectorTypes)
	}
	if c.Store.VectorType != "vector32" {
		return fmt.Errorf("vector type %s is not implemented, only vector32 is supported", c.Store.VectorType)
	}
	if c.Store.Dimensions <= 0 {
		return fmt.Errorf("dimensions must be positive, got %d", c.Store.Dimensions)
	}
	if c.Store.TopK < 0 {
		return fmt.Errorf("top_k must not be negative, got %d", c.Store.TopK)
	}
	return nil
}
