package config

import (
	"fmt"
	"os"

	"github.com/yndnr/artifact-go/internal/infra/confloader"
)

// Load builds the configuration from defaults, the config file, ARTIFACT_
// environment variables and flags, in increasing priority. flags maps
// dotted keys (storage.engine) to values.
//
// An explicit path must exist. With an empty path the default file is
// read when present.
func Load(path string, flags map[string]any) (*Config, error) {
	cfg := Default()
	// Slices decode element-wise into existing values, so the default
	// reserved list is applied only when no source sets one.
	cfg.Naming.Reserved = nil

	opt := confloader.WithConfigFile(path)
	if path == "" {
		path = DefaultConfigPath()
		opt = confloader.WithOptionalConfigFile(path)
	}

	loader := confloader.NewLoader(opt)
	if err := loader.Load(cfg); err != nil {
		return nil, err
	}

	if len(flags) > 0 {
		if err := loader.LoadMap(flags); err != nil {
			return nil, err
		}
		if err := loader.Unmarshal(cfg); err != nil {
			return nil, fmt.Errorf("unmarshal flags: %w", err)
		}
	}

	if loader.Get("naming.reserved") == nil {
		cfg.Naming.Reserved = Default().Naming.Reserved
	}
	if _, err := os.Stat(path); err == nil {
		cfg.Path = path
	}
	cfg.Naming.Reserved = normalizeReserved(cfg.Naming.Reserved)

	if err := Verify(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
