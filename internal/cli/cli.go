/*
Package cli implements the contextweave commands.

Every command follows the same shape: load configuration, assemble an engine,
run one operation, release the engine. Commands that mutate state print what
they did; query commands support --json for scripting.
*/
package cli

import (
	"fmt"

	"github.com/contextweave/contextweave/internal/config"
	"github.com/contextweave/contextweave/internal/engine"
)

// loadConfig loads the config file at path, or the default location when
// path is empty.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Load()
	}
	return config.LoadFrom(path)
}

// withEngine assembles an engine from the config at path, runs fn, and
// releases the engine.
func withEngine(configPath string, fn func(*engine.Engine) error) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	e, err := engine.New(cfg)
	if err != nil {
		return fmt.Errorf("assemble engine: %w", err)
	}
	defer e.Close()

	return fn(e)
}

// parseMetadata splits KEY=VALUE pairs into a map.
func parseMetadata(pairs []string) map[string]string {
	if len(pairs) == 0 {
		return nil
	}
	meta := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value := splitPair(pair)
		if key != "" {
			meta[key] = value
		}
	}
	return meta
}

// splitPair splits "KEY=VALUE" into key and value.
func splitPair(s string) (string, string) {
	for i, c := range s {
		if c == '=' {
			return s[:i], s[i+1:]
		}
	}
	return s, ""
}
