package memory

import (
	"context"
	"strings"
	"sync/atomic"

	"github.com/yndnr/artifact-go/internal/core/domain"
	"github.com/yndnr/artifact-go/pkg/cmap"
)

// Store is an in-memory token store. Records live in a sharded map keyed
// by token name; every mutation is atomic per name.
type Store struct {
	tokens *cmap.Map[string, domain.Flags]
	closed atomic.Bool
}

// Option configures the Store.
type Option func(*Store)

// WithShards sets the number of map shards.
func WithShards(n int) Option {
	return func(s *Store) {
		s.tokens = cmap.NewWithShards[string, domain.Flags](n)
	}
}

// New creates a new in-memory store.
func New(opts ...Option) *Store {
	s := &Store{
		tokens: cmap.New[string, domain.Flags](),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Exists reports whether name is stored.
func (s *Store) Exists(ctx context.Context, name string) (bool, error) {
	if err := s.check(ctx); err != nil {
		return false, err
	}
	return s.tokens.Has(name), nil
}

// Insert stores a new record.
func (s *Store) Insert(ctx context.Context, name string, flags domain.Flags) error {
	if err := s.check(ctx); err != nil {
		return err
	}
	if !s.tokens.SetIfAbsent(name, flags) {
		return domain.ErrTokenExists.WithDetails(name)
	}
	return nil
}

// UpdateFlags replaces the flags of a stored record.
func (s *Store) UpdateFlags(ctx context.Context, name string, flags domain.Flags) error {
	if err := s.check(ctx); err != nil {
		return err
	}
	if !s.tokens.SetIfPresent(name, flags) {
		return domain.ErrTokenNotFound.WithDetails(name)
	}
	return nil
}

// Upsert inserts or updates the record for name.
func (s *Store) Upsert(ctx context.Context, name string, flags domain.Flags) (bool, error) {
	if err := s.check(ctx); err != nil {
		return false, err
	}
	_, loaded := s.tokens.Swap(name, flags)
	return !loaded, nil
}

// Get retrieves a record by name.
func (s *Store) Get(ctx context.Context, name string) (*domain.TokenRecord, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}
	flags, ok := s.tokens.Get(name)
	if !ok {
		return nil, domain.ErrTokenNotFound.WithDetails(name)
	}
	return &domain.TokenRecord{Name: name, Flags: flags}, nil
}

// List calls fn for every record whose name starts with prefix, in name
// order. Records written during the call may or may not be seen.
func (s *Store) List(ctx context.Context, prefix string, fn func(domain.TokenRecord) bool) error {
	if err := s.check(ctx); err != nil {
		return err
	}

	names := cmap.SortedKeys(s.tokens, func(name string) bool {
		return strings.HasPrefix(name, prefix)
	})
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return err
		}
		flags, ok := s.tokens.Get(name)
		if !ok {
			continue
		}
		if !fn(domain.TokenRecord{Name: name, Flags: flags}) {
			break
		}
	}
	return nil
}

// Count returns the number of stored records.
func (s *Store) Count() int {
	return s.tokens.Count()
}

// Close marks the store closed. Data is discarded.
func (s *Store) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	s.tokens.Clear()
	return nil
}

func (s *Store) check(ctx context.Context) error {
	if s.closed.Load() {
		return ErrClosed
	}
	return ctx.Err()
}
