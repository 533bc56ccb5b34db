/*
Package config handles loading, saving, and validating contextweave configuration.

Configuration is stored in ~/.contextweave.json; on-disk state (the entry
database and the performance event log) lives under ~/.contextweave/.

Schema:

	{
	  "dbPath": "/home/user/.contextweave/context.db",
	  "eventLogPath": "/home/user/.contextweave/events.db",
	  "modelPath": "/home/user/.contextweave/model.onnx",
	  "tokenizerPath": "/home/user/.contextweave/tokenizer.json",
	  "dimensions": 384,
	  "maxEntries": 1000,
	  "similarityThreshold": 0.7,
	  "maxContextResults": 3
	}
*/
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Default values applied when fields are absent from the config file.
const (
	DefaultDimensions          = 384
	DefaultMaxEntries          = 1000
	DefaultSimilarityThreshold = 0.7
	DefaultMaxContextResults   = 3
)

// Config enumerates every recognized option. It is validated once at load;
// components receive the struct and never re-check option presence.
type Config struct {
	// DBPath is the SQLite database holding context entries.
	DBPath string `json:"dbPath"`

	// EventLogPath is the bbolt database holding performance events.
	EventLogPath string `json:"eventLogPath"`

	// ModelPath is the ONNX sentence-embedding model. Optional: when empty or
	// unloadable the deterministic hash embedder is used instead.
	ModelPath string `json:"modelPath,omitempty"`

	// TokenizerPath is the tokenizer.json accompanying the model.
	TokenizerPath string `json:"tokenizerPath,omitempty"`

	// Dimensions is the embedding vector size. Fixed per store instance.
	Dimensions int `json:"dimensions"`

	// MaxEntries is the hard cap on stored context entries. On overflow the
	// oldest entries are evicted.
	MaxEntries int `json:"maxEntries"`

	// SimilarityThreshold is the default minimum score for retrieved context.
	SimilarityThreshold float64 `json:"similarityThreshold"`

	// MaxContextResults is how many context fragments are spliced into a prompt.
	MaxContextResults int `json:"maxContextResults"`
}

// Default returns a configuration with every field set to its default,
// with on-disk state rooted under the user's home directory.
func Default() *Config {
	dataDir := ""
	if home, err := os.UserHomeDir(); err == nil {
		dataDir = filepath.Join(home, ".contextweave")
	}

	return &Config{
		DBPath:              filepath.Join(dataDir, "context.db"),
		EventLogPath:        filepath.Join(dataDir, "events.db"),
		Dimensions:          DefaultDimensions,
		MaxEntries:          DefaultMaxEntries,
		SimilarityThreshold: DefaultSimilarityThreshold,
		MaxContextResults:   DefaultMaxContextResults,
	}
}

// GetDefaultConfigPath returns the path to ~/.contextweave.json
func GetDefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".contextweave.json"), nil
}

// Load reads the configuration from the default path, falling back to
// defaults when no config file exists.
func Load() (*Config, error) {
	configPath, err := GetDefaultConfigPath()
	if err != nil {
		return nil, err
	}

	cfg, err := LoadFrom(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}
	return cfg, nil
}

// LoadFrom reads and validates the configuration from a specific path.
// Missing fields are filled with defaults before validation.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes the configuration to the specified path.
func Save(cfg *Config, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}
