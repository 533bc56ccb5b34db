package config

import "fmt"

// Validate checks that every configured option is usable.
// Called once at load; components trust a validated Config.
func (c *Config) Validate() error {
	if c.DBPath == "" {
		return fmt.Errorf("dbPath must not be empty")
	}
	if c.EventLogPath == "" {
		return fmt.Errorf("eventLogPath must not be empty")
	}
	if c.Dimensions <= 0 {
		return fmt.Errorf("dimensions must be positive, got %d", c.Dimensions)
	}
	if c.MaxEntries <= 0 {
		return fmt.Errorf("maxEntries must be positive, got %d", c.MaxEntries)
	}
	if c.SimilarityThreshold < -1 || c.SimilarityThreshold > 1 {
		return fmt.Errorf("similarityThreshold must be in [-1, 1], got %g", c.SimilarityThreshold)
	}
	if c.MaxContextResults <= 0 {
		return fmt.Errorf("maxContextResults must be positive, got %d", c.MaxContextResults)
	}
	if (c.ModelPath == "") != (c.TokenizerPath == "") {
		return fmt.Errorf("modelPath and tokenizerPath must be set together")
	}
	return nil
}
