// Package storage provides token store implementations.
package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/badger/v3"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/yndnr/artifact-go/internal/core/domain"
	"github.com/yndnr/artifact-go/internal/telemetry/logger"
)

// maxConflictRetries bounds the retries of a transaction that lost a
// write conflict.
const maxConflictRetries = 10

// BadgerConfig contains Badger-specific tuning parameters.
type BadgerConfig struct {
	// GCInterval is the interval between automatic value log GC runs.
	// An empty value or "0" disables the GC loop.
	// Default: 10m
	GCInterval string

	// GCThreshold is the GC discard ratio threshold (0.0-1.0).
	// Default: 0.5 (run GC when 50% of data is stale)
	GCThreshold float64

	// CacheSize is the block cache size in bytes.
	// Default: 64MB
	CacheSize int64

	// ValueLogFileSize is the max value log file size in bytes.
	// Default: 256MB
	ValueLogFileSize int64

	// NumMemtables is the number of memtables.
	// Default: 2
	NumMemtables int

	// SyncWrites enables sync writes (fsync after each write).
	// Default: true
	SyncWrites bool
}

// DefaultBadgerConfig returns the default Badger configuration.
func DefaultBadgerConfig() BadgerConfig {
	return BadgerConfig{
		GCInterval:       "10m",
		GCThreshold:      0.5,
		CacheSize:        64 << 20,  // 64MB
		ValueLogFileSize: 256 << 20, // 256MB
		NumMemtables:     2,
		SyncWrites:       true,
	}
}

// BadgerStats contains Badger storage statistics.
type BadgerStats struct {
	LSMSize      int64
	ValueLogSize int64
	LastGCTime   int64 // Unix milliseconds
	GCRuns       uint64
}

// BadgerStore is a token store on Badger v3. Upsert runs inside a
// read-write transaction with conflict detection, so it is atomic per
// name.
type BadgerStore struct {
	db     *badger.DB
	cfg    BadgerConfig
	logger logger.Logger

	lastGCTime atomic.Int64
	gcRuns     atomic.Uint64

	// state is held for reading while db is in use and for writing by Close.
	state     sync.RWMutex
	closed    bool
	closeOnce sync.Once
	stopCh    chan struct{}
	doneCh    chan struct{}
}

// NewBadgerStore opens (or creates) a Badger database in dir.
func NewBadgerStore(dir string, cfg BadgerConfig, log logger.Logger) (*BadgerStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("badger: dir is required")
	}
	if log == nil {
		log = logger.Default()
	}

	opts := badger.DefaultOptions(dir)
	opts.Logger = &badgerLogger{logger: log}
	opts.DetectConflicts = true
	opts.SyncWrites = cfg.SyncWrites
	if cfg.CacheSize > 0 {
		opts.BlockCacheSize = cfg.CacheSize
	}
	if cfg.ValueLogFileSize > 0 {
		opts.ValueLogFileSize = cfg.ValueLogFileSize
	}
	if cfg.NumMemtables > 0 {
		opts.NumMemtables = cfg.NumMemtables
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("badger: open db: %w", err)
	}

	s := &BadgerStore{
		db:     db,
		cfg:    cfg,
		logger: log,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}

	interval, err := parseGCInterval(cfg.GCInterval)
	if err != nil {
		log.Warn("invalid gc_interval, using default 10m", "error", err)
		interval = 10 * time.Minute
	}
	if interval > 0 {
		go s.gcLoop(interval)
	} else {
		close(s.doneCh)
	}

	log.Info("badger store opened",
		"dir", dir,
		"cache_size", opts.BlockCacheSize,
		"gc_interval", interval)

	return s, nil
}

func parseGCInterval(v string) (time.Duration, error) {
	if v == "" || v == "0" {
		return 0, nil
	}
	return time.ParseDuration(v)
}

// Exists reports whether name is stored.
func (s *BadgerStore) Exists(ctx context.Context, name string) (bool, error) {
	release, err := s.acquire(ctx)
	if err != nil {
		return false, err
	}
	defer release()

	var exists bool
	err = s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(tokenKey(name))
		switch {
		case errors.Is(err, badger.ErrKeyNotFound):
			return nil
		case err != nil:
			return err
		}
		exists = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("badger: exists: %w", err)
	}
	return exists, nil
}

// Insert stores a new record. It fails with domain.ErrTokenExists if
// name is already stored.
func (s *BadgerStore) Insert(ctx context.Context, name string, flags domain.Flags) error {
	release, err := s.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	err = s.update(func(txn *badger.Txn) error {
		_, err := txn.Get(tokenKey(name))
		switch {
		case err == nil:
			return domain.ErrTokenExists.WithDetails(name)
		case !errors.Is(err, badger.ErrKeyNotFound):
			return err
		}
		return txn.Set(tokenKey(name), encodeFlags(flags))
	})
	if err != nil {
		return wrapBadger("insert", err)
	}
	return nil
}

// UpdateFlags replaces the flags of a stored record. It fails with
// domain.ErrTokenNotFound if name is not stored.
func (s *BadgerStore) UpdateFlags(ctx context.Context, name string, flags domain.Flags) error {
	release, err := s.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	err = s.update(func(txn *badger.Txn) error {
		if _, err := txn.Get(tokenKey(name)); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return domain.ErrTokenNotFound.WithDetails(name)
			}
			return err
		}
		return txn.Set(tokenKey(name), encodeFlags(flags))
	})
	if err != nil {
		return wrapBadger("update", err)
	}
	return nil
}

// Upsert inserts or updates the record in a single transaction.
func (s *BadgerStore) Upsert(ctx context.Context, name string, flags domain.Flags) (bool, error) {
	release, err := s.acquire(ctx)
	if err != nil {
		return false, err
	}
	defer release()

	var created bool
	err = s.update(func(txn *badger.Txn) error {
		_, err := txn.Get(tokenKey(name))
		switch {
		case errors.Is(err, badger.ErrKeyNotFound):
			created = true
		case err != nil:
			return err
		default:
			created = false
		}
		return txn.Set(tokenKey(name), encodeFlags(flags))
	})
	if err != nil {
		return false, wrapBadger("upsert", err)
	}
	return created, nil
}

// Get retrieves a record by name.
func (s *BadgerStore) Get(ctx context.Context, name string) (*domain.TokenRecord, error) {
	release, err := s.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	var flags domain.Flags
	err = s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(tokenKey(name))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return domain.ErrTokenNotFound.WithDetails(name)
			}
			return err
		}
		return item.Value(func(val []byte) error {
			flags, err = decodeFlags(val)
			return err
		})
	})
	if err != nil {
		return nil, wrapBadger("get", err)
	}

	return &domain.TokenRecord{Name: name, Flags: flags}, nil
}

// List iterates over records whose name starts with prefix, in name order.
// fn must not call Close.
func (s *BadgerStore) List(ctx context.Context, prefix string, fn func(domain.TokenRecord) bool) error {
	release, err := s.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	err = s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = tokenKey(prefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			item := it.Item()
			value, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			flags, err := decodeFlags(value)
			if err != nil {
				return err
			}

			if !fn(domain.TokenRecord{Name: nameFromKey(item.Key()), Flags: flags}) {
				break
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("badger: list: %w", err)
	}
	return nil
}

// update runs fn in a read-write transaction, retrying when another
// transaction committed a conflicting write first.
func (s *BadgerStore) update(fn func(txn *badger.Txn) error) error {
	for attempt := 0; ; attempt++ {
		err := s.db.Update(fn)
		if errors.Is(err, badger.ErrConflict) && attempt < maxConflictRetries {
			s.logger.Debug("badger transaction conflict, retrying", "attempt", attempt+1)
			continue
		}
		return err
	}
}

func (s *BadgerStore) acquire(ctx context.Context) (release func(), err error) {
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

// wrapBadger leaves domain errors untouched so callers can match them.
func wrapBadger(op string, err error) error {
	var de *domain.DomainError
	if errors.As(err, &de) {
		return err
	}
	return fmt.Errorf("badger: %s: %w", op, err)
}

// GC runs value log garbage collection until nothing more is reclaimed.
// Returns the number of value log files rewritten.
func (s *BadgerStore) GC(ctx context.Context) (int, error) {
	release, err := s.acquire(ctx)
	if err != nil {
		return 0, err
	}
	defer release()

	startTime := time.Now()

	runs := 0
	for ctx.Err() == nil {
		err := s.db.RunValueLogGC(s.cfg.GCThreshold)
		if err != nil {
			if errors.Is(err, badger.ErrNoRewrite) || errors.Is(err, badger.ErrRejected) {
				break
			}
			return runs, fmt.Errorf("badger: gc: %w", err)
		}
		runs++
	}

	s.lastGCTime.Store(time.Now().UnixMilli())
	s.gcRuns.Add(uint64(runs))

	s.logger.Info("gc completed",
		"rewrites", runs,
		"elapsed", time.Since(startTime))

	return runs, nil
}

// Stats returns storage statistics. Sizes read 0 once the store is closed.
func (s *BadgerStore) Stats() BadgerStats {
	stats := BadgerStats{
		LastGCTime: s.lastGCTime.Load(),
		GCRuns:     s.gcRuns.Load(),
	}

	s.state.RLock()
	defer s.state.RUnlock()
	if !s.closed {
		stats.LSMSize, stats.ValueLogSize = s.db.Size()
	}
	return stats
}

// RegisterMetrics registers Badger size and GC metrics. The values are
// read on every scrape.
func (s *BadgerStore) RegisterMetrics(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "artifact",
			Subsystem: "badger",
			Name:      "lsm_size_bytes",
			Help:      "Badger LSM tree size in bytes",
		}, func() float64 { return float64(s.Stats().LSMSize) }),

		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "artifact",
			Subsystem: "badger",
			Name:      "value_log_size_bytes",
			Help:      "Badger value log size in bytes",
		}, func() float64 { return float64(s.Stats().ValueLogSize) }),

		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "artifact",
			Subsystem: "badger",
			Name:      "last_gc_timestamp_seconds",
			Help:      "Unix timestamp of the last Badger GC run",
		}, func() float64 { return float64(s.lastGCTime.Load()) / 1000.0 }),

		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: "artifact",
			Subsystem: "badger",
			Name:      "gc_rewrites_total",
			Help:      "Total value log files rewritten by Badger GC",
		}, func() float64 { return float64(s.gcRuns.Load()) }),
	}

	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return fmt.Errorf("badger: register metrics: %w", err)
		}
	}
	return nil
}

// Close stops the GC loop and closes the database. It is safe to call
// more than once.
func (s *BadgerStore) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.logger.Info("closing badger store")

		close(s.stopCh)
		<-s.doneCh

		s.state.Lock()
		defer s.state.Unlock()
		s.closed = true

		if cerr := s.db.Close(); cerr != nil {
			err = fmt.Errorf("badger: close db: %w", cerr)
		}
	})
	return err
}

// gcLoop runs periodic garbage collection.
func (s *BadgerStore) gcLoop(interval time.Duration) {
	defer close(s.doneCh)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			if _, err := s.GC(ctx); err != nil {
				s.logger.Error("auto gc failed", "error", err)
			}
			cancel()

		case <-s.stopCh:
			return
		}
	}
}

// badgerLogger adapts logger.Logger to Badger's Logger interface.
// Badger's info output is chatty, so it is logged at debug.
type badgerLogger struct {
	logger logger.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}
