package config

import (
	"os"
	"path/filepath"

	"github.com/yndnr/artifact-go/internal/core/domain"
	"github.com/yndnr/artifact-go/internal/storage"
)

// Default configuration values.
const (
	DefaultDirName     = ".artifact"
	DefaultConfigName  = "cli.yaml"
	DefaultHistoryName = "history"

	DefaultEngine   = storage.EngineBadger
	DefaultAlphabet = "standard"

	DefaultLogLevel  = "warn"
	DefaultLogFormat = "text"

	DefaultOutput     = "table"
	DefaultMetricsJob = "artifact-cli"
)

// BaseDir returns the per-user artifact directory.
func BaseDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return DefaultDirName
	}
	return filepath.Join(home, DefaultDirName)
}

// DefaultConfigPath returns the default CLI config file path.
func DefaultConfigPath() string {
	return filepath.Join(BaseDir(), DefaultConfigName)
}

// Default returns the default CLI configuration.
func Default() *Config {
	base := BaseDir()
	store := storage.DefaultConfig(filepath.Join(base, "data"))

	return &Config{
		Storage: StorageSection{
			Engine:  DefaultEngine,
			DataDir: store.DataDir,
			Badger: BadgerSection{
				GCInterval:       store.Badger.GCInterval,
				GCThreshold:      store.Badger.GCThreshold,
				CacheSize:        store.Badger.CacheSize,
				ValueLogFileSize: store.Badger.ValueLogFileSize,
				NumMemtables:     store.Badger.NumMemtables,
				SyncWrites:       store.Badger.SyncWrites,
			},
			Pebble: PebbleSection{
				SyncWrites: store.Pebble.SyncWrites,
				CacheSize:  store.Pebble.CacheSize,
			},
			SQL: SQLSection{
				Driver:        store.SQL.Driver,
				SSLMode:       store.SQL.SSLMode,
				FilePath:      store.SQL.FilePath,
				MaxIdleConns:  store.SQL.MaxIdleConns,
				MaxOpenConns:  store.SQL.MaxOpenConns,
				SlowThreshold: store.SQL.SlowThreshold,
			},
		},
		Naming: NamingSection{
			Alphabet: DefaultAlphabet,
			Reserved: append([]string(nil), domain.DefaultReserved...),
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
		Metrics: MetricsSection{
			Job: DefaultMetricsJob,
		},
		CLI: CLISection{
			Output:      DefaultOutput,
			HistoryFile: filepath.Join(base, DefaultHistoryName),
		},
	}
}

// StorageConfig converts the storage section to the storage package's
// configuration.
func (c *Config) StorageConfig() storage.Config {
	s := c.Storage
	return storage.Config{
		Engine:  s.Engine,
		DataDir: s.DataDir,
		Badger: storage.BadgerConfig{
			GCInterval:       s.Badger.GCInterval,
			GCThreshold:      s.Badger.GCThreshold,
			CacheSize:        s.Badger.CacheSize,
			ValueLogFileSize: s.Badger.ValueLogFileSize,
			NumMemtables:     s.Badger.NumMemtables,
			SyncWrites:       s.Badger.SyncWrites,
		},
		Pebble: storage.PebbleConfig{
			SyncWrites: s.Pebble.SyncWrites,
			CacheSize:  s.Pebble.CacheSize,
		},
		SQL: storage.SQLConfig{
			Driver:          s.SQL.Driver,
			DSN:             s.SQL.DSN,
			Host:            s.SQL.Host,
			Port:            s.SQL.Port,
			User:            s.SQL.User,
			Password:        s.SQL.Password,
			DBName:          s.SQL.DBName,
			SSLMode:         s.SQL.SSLMode,
			FilePath:        s.SQL.FilePath,
			MaxIdleConns:    s.SQL.MaxIdleConns,
			MaxOpenConns:    s.SQL.MaxOpenConns,
			ConnMaxLifetime: s.SQL.ConnMaxLifetime,
			SlowThreshold:   s.SQL.SlowThreshold,
		},
	}
}

// NamingConfig builds the naming scheme configuration. The length rules
// are fixed; only the alphabet and extra reserved names are configurable.
// domain.DefaultReserved always applies.
func (c *Config) NamingConfig() (domain.NamingConfig, error) {
	cfg := domain.DefaultNamingConfig()

	alphabet, ok := numeralAlphabet(c.Naming.Alphabet)
	if !ok {
		return cfg, domain.ErrInvalidArgument.WithDetails("unknown alphabet " + c.Naming.Alphabet)
	}
	cfg.Alphabet = alphabet

	cfg.Reserved = normalizeReserved(c.Naming.Reserved)
	return cfg, nil
}
