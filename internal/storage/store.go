package storage

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/yndnr/artifact-go/internal/core/service"
	"github.com/yndnr/artifact-go/internal/storage/memory"
	"github.com/yndnr/artifact-go/internal/telemetry/logger"
)

// Engine names.
const (
	EngineMemory = "memory"
	EngineBadger = "badger"
	EnginePebble = "pebble"
	EngineSQL    = "sql"
)

// Engines lists every supported engine name.
var Engines = []string{EngineBadger, EnginePebble, EngineSQL, EngineMemory}

// Common errors
var (
	ErrClosed        = errors.New("token store closed")
	ErrUnknownEngine = errors.New("unknown storage engine")
	ErrCorruptValue  = errors.New("corrupt token record")
)

// Store is a token store usable by the registration workflow.
//
// Implementations must be safe for concurrent use and must make Upsert
// atomic per name.
type Store interface {
	service.TokenStore
	service.TokenUpserter
	service.TokenReader

	// Close releases the underlying engine.
	Close() error
}

// MetricsRegisterer is implemented by stores that export engine metrics.
type MetricsRegisterer interface {
	RegisterMetrics(reg prometheus.Registerer) error
}

// Config selects and configures a storage engine.
type Config struct {
	// Engine is one of "badger", "pebble", "sql", "memory".
	// Default: "badger"
	Engine string

	// DataDir is the base directory for on-disk engines. Badger and
	// pebble use a subdirectory named after the engine.
	DataDir string

	Badger BadgerConfig
	Pebble PebbleConfig
	SQL    SQLConfig
}

// DefaultConfig returns the default storage configuration.
func DefaultConfig(dataDir string) Config {
	return Config{
		Engine:  EngineBadger,
		DataDir: dataDir,
		Badger:  DefaultBadgerConfig(),
		Pebble:  DefaultPebbleConfig(),
		SQL:     DefaultSQLConfig(),
	}
}

// Open opens the configured engine.
func Open(cfg Config, log logger.Logger) (Store, error) {
	if log == nil {
		log = logger.Default()
	}
	log = log.With("engine", cfg.Engine)

	switch cfg.Engine {
	case EngineMemory:
		log.Debug("using in-memory token store")
		return memory.New(), nil

	case EngineBadger, "":
		s, err := NewBadgerStore(filepath.Join(cfg.DataDir, EngineBadger), cfg.Badger, log)
		if err != nil {
			return nil, err
		}
		return s, nil

	case EnginePebble:
		s, err := NewPebbleStore(filepath.Join(cfg.DataDir, EnginePebble), cfg.Pebble, log)
		if err != nil {
			return nil, err
		}
		return s, nil

	case EngineSQL:
		db, err := OpenSQL(cfg.SQL, cfg.DataDir, log)
		if err != nil {
			return nil, err
		}
		s, err := NewSQLStore(db, log)
		if err != nil {
			return nil, err
		}
		return s, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, cfg.Engine)
	}
}
