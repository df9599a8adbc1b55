package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds application configuration.
type Config struct {
	Ollama struct {
		BaseURL    string `yaml:"base_url"`
		ChatModel  string `yaml:"chat_model"`
		EmbedModel string `yaml:"embed_model"`
	} `yaml:"ollama"`
	Embeddings struct {
		// Provider selects the embedding implementation: "local" for the
		// offline hashing embedder, "ollama" for a model-backed one.
		Provider  string `yaml:"provider"`
		Dimension int    `yaml:"dimension"`
	} `yaml:"embeddings"`
	Index struct {
		// Backend selects the vector index: "memory" or "postgres".
		Backend          string `yaml:"backend"`
		ConnectionString string `yaml:"connection_string"`
	} `yaml:"index"`
	Chunking struct {
		MaxChunkSize   int `yaml:"max_chunk_size"`
		SentenceWindow int `yaml:"sentence_window"`
	} `yaml:"chunking"`
	Retrieval struct {
		TopK            int     `yaml:"top_k"`
		SimilarityFloor float64 `yaml:"similarity_floor"`
		ContextBudget   int     `yaml:"context_budget"`
	} `yaml:"retrieval"`
	Evaluation struct {
		WindowSize int `yaml:"window_size"`
	} `yaml:"evaluation"`
	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

// Path returns the location of the configuration file.
func Path() string {
	return filepath.Join(os.Getenv("HOME"), ".docquery", "config.yaml")
}

// Load loads configuration from ~/.docquery/config.yaml or returns
// defaults when no file exists.
func Load() (*Config, error) {
	cfg := Default()

	configPath := Path()
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// Save writes the configuration to ~/.docquery/config.yaml.
func (c *Config) Save() error {
	configDir := filepath.Join(os.Getenv("HOME"), ".docquery")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return os.WriteFile(Path(), data, 0644)
}

// Default returns default configuration.
func Default() *Config {
	cfg := &Config{}

	cfg.Ollama.BaseURL = "http://localhost:11434"
	cfg.Ollama.ChatModel = ""
	cfg.Ollama.EmbedModel = "nomic-embed-text"
	cfg.Embeddings.Provider = "local"
	cfg.Embeddings.Dimension = 384
	cfg.Index.Backend = "memory"
	cfg.Index.ConnectionString = "postgres://postgres@localhost/postgres?sslmode=disable"
	cfg.Chunking.MaxChunkSize = 500
	cfg.Chunking.SentenceWindow = 3
	cfg.Retrieval.TopK = 5
	cfg.Retrieval.SimilarityFloor = 0.3
	cfg.Retrieval.ContextBudget = 4000
	cfg.Evaluation.WindowSize = 100
	cfg.Logging.Level = "info"

	return cfg
}
