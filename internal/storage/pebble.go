package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/cockroachdb/pebble"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/yndnr/artifact-go/internal/core/domain"
	"github.com/yndnr/artifact-go/internal/telemetry/logger"
)

// PebbleConfig contains Pebble-specific tuning parameters.
type PebbleConfig struct {
	// SyncWrites fsyncs the WAL on every write.
	// Default: true
	SyncWrites bool

	// CacheSize is the block cache size in bytes.
	// Default: 64MB
	CacheSize int64
}

// DefaultPebbleConfig returns the default Pebble configuration.
func DefaultPebbleConfig() PebbleConfig {
	return PebbleConfig{
		SyncWrites: true,
		CacheSize:  64 << 20,
	}
}

// PebbleStore is a token store on cockroachdb/pebble.
//
// Pebble has no transactions, so read-modify-write operations are
// serialized by a store-wide mutex. Every operation holds state for
// reading while it uses db; Close holds it for writing.
type PebbleStore struct {
	db     *pebble.DB
	write  *pebble.WriteOptions
	logger logger.Logger

	mu        sync.Mutex
	state     sync.RWMutex
	closed    bool
	closeOnce sync.Once
}

// NewPebbleStore opens (or creates) a Pebble database in dir.
func NewPebbleStore(dir string, cfg PebbleConfig, log logger.Logger) (*PebbleStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("pebble: dir is required")
	}
	if log == nil {
		log = logger.Default()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("pebble: create dir: %w", err)
	}

	opts := &pebble.Options{
		Logger: &pebbleLogger{logger: log},
	}
	var cache *pebble.Cache
	if cfg.CacheSize > 0 {
		cache = pebble.NewCache(cfg.CacheSize)
		opts.Cache = cache
	}

	db, err := pebble.Open(dir, opts)
	if cache != nil {
		// Open takes its own reference.
		cache.Unref()
	}
	if err != nil {
		return nil, fmt.Errorf("pebble: open db: %w", err)
	}

	write := pebble.NoSync
	if cfg.SyncWrites {
		write = pebble.Sync
	}

	log.Info("pebble store opened", "dir", dir, "sync_writes", cfg.SyncWrites)

	return &PebbleStore{
		db:     db,
		write:  write,
		logger: log,
	}, nil
}

// Exists reports whether name is stored.
func (s *PebbleStore) Exists(ctx context.Context, name string) (bool, error) {
	release, err := s.acquire(ctx)
	if err != nil {
		return false, err
	}
	defer release()

	_, err = s.get(name)
	switch {
	case errors.Is(err, pebble.ErrNotFound):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("pebble: exists: %w", err)
	}
	return true, nil
}

// Insert stores a new record.
func (s *PebbleStore) Insert(ctx context.Context, name string, flags domain.Flags) error {
	release, err := s.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.get(name)
	switch {
	case err == nil:
		return domain.ErrTokenExists.WithDetails(name)
	case !errors.Is(err, pebble.ErrNotFound):
		return fmt.Errorf("pebble: insert: %w", err)
	}
	return s.set(name, flags)
}

// UpdateFlags replaces the flags of a stored record.
func (s *PebbleStore) UpdateFlags(ctx context.Context, name string, flags domain.Flags) error {
	release, err := s.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.get(name); err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return domain.ErrTokenNotFound.WithDetails(name)
		}
		return fmt.Errorf("pebble: update: %w", err)
	}
	return s.set(name, flags)
}

// Upsert inserts or updates the record for name.
func (s *PebbleStore) Upsert(ctx context.Context, name string, flags domain.Flags) (bool, error) {
	release, err := s.acquire(ctx)
	if err != nil {
		return false, err
	}
	defer release()

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.get(name)
	if err != nil && !errors.Is(err, pebble.ErrNotFound) {
		return false, fmt.Errorf("pebble: upsert: %w", err)
	}
	created := err != nil

	if err := s.set(name, flags); err != nil {
		return false, err
	}
	return created, nil
}

// Get retrieves a record by name.
func (s *PebbleStore) Get(ctx context.Context, name string) (*domain.TokenRecord, error) {
	release, err := s.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	flags, err := s.get(name)
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, domain.ErrTokenNotFound.WithDetails(name)
		}
		return nil, fmt.Errorf("pebble: get: %w", err)
	}
	return &domain.TokenRecord{Name: name, Flags: flags}, nil
}

// List iterates over records whose name starts with prefix, in name order.
// fn must not call Close.
func (s *PebbleStore) List(ctx context.Context, prefix string, fn func(domain.TokenRecord) bool) error {
	release, err := s.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	lower := tokenKey(prefix)
	iter, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: lower,
		UpperBound: prefixUpperBound(lower),
	})
	if err != nil {
		return fmt.Errorf("pebble: list: %w", err)
	}
	defer iter.Close()

	for iter.First(); iter.Valid(); iter.Next() {
		if err := ctx.Err(); err != nil {
			return err
		}
		flags, err := decodeFlags(iter.Value())
		if err != nil {
			return fmt.Errorf("pebble: list: %w", err)
		}
		if !fn(domain.TokenRecord{Name: nameFromKey(iter.Key()), Flags: flags}) {
			break
		}
	}
	if err := iter.Error(); err != nil {
		return fmt.Errorf("pebble: list: %w", err)
	}
	return nil
}

func (s *PebbleStore) get(name string) (domain.Flags, error) {
	value, closer, err := s.db.Get(tokenKey(name))
	if err != nil {
		return 0, err
	}
	defer closer.Close()
	return decodeFlags(value)
}

func (s *PebbleStore) set(name string, flags domain.Flags) error {
	if err := s.db.Set(tokenKey(name), encodeFlags(flags), s.write); err != nil {
		return fmt.Errorf("pebble: set: %w", err)
	}
	return nil
}

// acquire holds state for reading until release is called, so Close
// cannot close db underneath the caller.
func (s *PebbleStore) acquire(ctx context.Context) (release func(), err error) {
	s.state.RLock()
	if s.closed {
		s.state.RUnlock()
		return nil, ErrClosed
	}
	if err := ctx.Err(); err != nil {
		s.state.RUnlock()
		return nil, err
	}
	return s.state.RUnlock, nil
}

// DiskUsage returns the bytes used on disk by the database, or 0 once
// the store is closed.
func (s *PebbleStore) DiskUsage() uint64 {
	s.state.RLock()
	defer s.state.RUnlock()
	if s.closed {
		return 0
	}
	return s.db.Metrics().DiskSpaceUsage()
}

// RegisterMetrics registers Pebble disk usage.
func (s *PebbleStore) RegisterMetrics(reg prometheus.Registerer) error {
	c := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "artifact",
		Subsystem: "pebble",
		Name:      "disk_usage_bytes",
		Help:      "Pebble on-disk size in bytes",
	}, func() float64 {
		return float64(s.DiskUsage())
	})
	if err := reg.Register(c); err != nil {
		return fmt.Errorf("pebble: register metrics: %w", err)
	}
	return nil
}

// Close flushes and closes the database. It is safe to call more than once.
func (s *PebbleStore) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.logger.Info("closing pebble store")

		s.state.Lock()
		defer s.state.Unlock()
		s.closed = true

		if cerr := s.db.Close(); cerr != nil {
			err = fmt.Errorf("pebble: close db: %w", cerr)
		}
	})
	return err
}

// pebbleLogger adapts logger.Logger to pebble.Logger.
type pebbleLogger struct {
	logger logger.Logger
}

func (l *pebbleLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func (l *pebbleLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *pebbleLogger) Fatalf(format string, args ...interface{}) {
	l.logger.Error("fatal pebble error", "error", fmt.Sprintf(format, args...))
	os.Exit(1)
}
