// Package service provides domain services for token registration.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/yndnr/artifact-go/internal/core/domain"
	"github.com/yndnr/artifact-go/internal/telemetry/logger"
)

// TokenStore is the minimal persistence contract the registration
// workflow needs. Implementations key records by token name.
type TokenStore interface {
	// Exists reports whether a record for name is stored.
	Exists(ctx context.Context, name string) (bool, error)

	// Insert stores a new record.
	Insert(ctx context.Context, name string, flags domain.Flags) error

	// UpdateFlags replaces the flags of an existing record.
	UpdateFlags(ctx context.Context, name string, flags domain.Flags) error
}

// TokenUpserter is implemented by stores offering an atomic
// insert-or-update keyed by name. When available the workflow uses it
// instead of the Exists/Insert/UpdateFlags sequence.
type TokenUpserter interface {
	Upsert(ctx context.Context, name string, flags domain.Flags) (created bool, err error)
}

// TokenReader is implemented by stores that support read paths.
type TokenReader interface {
	// Get returns domain.ErrTokenNotFound when name is not stored.
	Get(ctx context.Context, name string) (*domain.TokenRecord, error)

	// List calls fn for every record whose name starts with prefix, in
	// name order, until fn returns false.
	List(ctx context.Context, prefix string, fn func(domain.TokenRecord) bool) error
}

// Registration outcomes reported to Metrics.
const (
	OutcomeCreated  = "created"
	OutcomeUpdated  = "updated"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
)

// Metrics receives workflow observations. All methods must be safe for
// concurrent use.
type Metrics interface {
	ObserveRegistration(outcome string)
	ObserveViolation(code string)
	ObserveStore(op string, d time.Duration, err error)
}

type noopMetrics struct{}

func (noopMetrics) ObserveRegistration(string) {}

func (noopMetrics) ObserveViolation(string) {}

func (noopMetrics) ObserveStore(string, time.Duration, error) {}

// RegistrationService turns token ids into validated names and records
// them in the token store.
//
// The service holds no mutable state. When the store does not implement
// TokenUpserter, concurrent registrations of the same name race between
// the existence check and the mutation; callers must serialize them.
type RegistrationService struct {
	naming  *domain.Naming
	store   TokenStore
	metrics Metrics
}

// Option configures a RegistrationService.
type Option func(*RegistrationService)

// WithMetrics sets the metrics sink.
func WithMetrics(m Metrics) Option {
	return func(s *RegistrationService) {
		if m != nil {
			s.metrics = m
		}
	}
}

// NewRegistrationService creates a RegistrationService.
func NewRegistrationService(naming *domain.Naming, store TokenStore, opts ...Option) *RegistrationService {
	s := &RegistrationService{
		naming:  naming,
		store:   store,
		metrics: noopMetrics{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Naming returns the naming scheme used by the service.
func (s *RegistrationService) Naming() *domain.Naming {
	return s.naming
}

// ============================================================================
// Registration
// ============================================================================

// Register validates id, decodes it and creates or updates the record.
//
// Steps 1-3 (range, decode, rule chain) never touch the store. On success
// exactly one store mutation has been performed. Calling Register twice
// with the same arguments leaves the same stored state.
func (s *RegistrationService) Register(ctx context.Context, id uint64, flags domain.Flags) (*domain.Registration, error) {
	name, err := s.naming.NameForID(id)
	if err != nil {
		s.reject(ctx, err, "id", id)
		return nil, err
	}

	created, err := s.write(ctx, name, flags)
	if err != nil {
		s.metrics.ObserveRegistration(OutcomeFailed)
		logger.L(ctx).Error("token registration failed", "token", name, "id", id, "error", err)
		return nil, err
	}

	outcome := OutcomeUpdated
	if created {
		outcome = OutcomeCreated
	}
	s.metrics.ObserveRegistration(outcome)
	logger.L(ctx).Debug("token registered",
		"token", name,
		"id", id,
		"flags", flags.String(),
		"created", created,
	)

	return &domain.Registration{
		ID:      id,
		Name:    name,
		Flags:   flags,
		Created: created,
	}, nil
}

// RegisterName validates and encodes name, then registers the id.
func (s *RegistrationService) RegisterName(ctx context.Context, name string, flags domain.Flags) (*domain.Registration, error) {
	id, err := s.naming.IDForName(name)
	if err != nil {
		s.reject(ctx, err, "token", name)
		return nil, err
	}
	return s.Register(ctx, id, flags)
}

// SetFlags replaces the flags of a registered token. It returns
// domain.ErrTokenNotFound if name was never registered.
func (s *RegistrationService) SetFlags(ctx context.Context, name string, flags domain.Flags) (*domain.Registration, error) {
	id, err := s.naming.IDForName(name)
	if err != nil {
		s.reject(ctx, err, "token", name)
		return nil, err
	}

	exists, err := s.exists(ctx, name)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, domain.ErrTokenNotFound.WithDetails(name)
	}

	return s.Register(ctx, id, flags)
}

// write performs the single store mutation of a registration.
func (s *RegistrationService) write(ctx context.Context, name string, flags domain.Flags) (bool, error) {
	if u, ok := s.store.(TokenUpserter); ok {
		start := time.Now()
		created, err := u.Upsert(ctx, name, flags)
		s.metrics.ObserveStore("upsert", time.Since(start), err)
		if err != nil {
			return false, storeError(err)
		}
		return created, nil
	}

	exists, err := s.exists(ctx, name)
	if err != nil {
		return false, err
	}

	if !exists {
		start := time.Now()
		err = s.store.Insert(ctx, name, flags)
		s.metrics.ObserveStore("insert", time.Since(start), err)
		if err != nil {
			return false, storeError(err)
		}
		return true, nil
	}

	start := time.Now()
	err = s.store.UpdateFlags(ctx, name, flags)
	s.metrics.ObserveStore("update", time.Since(start), err)
	if err != nil {
		return false, storeError(err)
	}
	return false, nil
}

func (s *RegistrationService) exists(ctx context.Context, name string) (bool, error) {
	start := time.Now()
	exists, err := s.store.Exists(ctx, name)
	s.metrics.ObserveStore("exists", time.Since(start), err)
	if err != nil {
		return false, storeError(err)
	}
	return exists, nil
}

func (s *RegistrationService) reject(ctx context.Context, err error, key string, value any) {
	code := domain.GetErrorCode(err)
	s.metrics.ObserveRegistration(OutcomeRejected)
	s.metrics.ObserveViolation(code)
	logger.L(ctx).Warn("token rejected", key, value, "code", code, "error", err)
}

// ============================================================================
// Read paths
// ============================================================================

// Lookup returns the stored record for name. Inadmissible names are
// rejected without a store round trip.
func (s *RegistrationService) Lookup(ctx context.Context, name string) (*domain.TokenRecord, error) {
	if err := s.naming.Validate(name); err != nil {
		return nil, err
	}

	r, err := s.reader()
	if err != nil {
		return nil, err
	}

	start := time.Now()
	rec, err := r.Get(ctx, name)
	s.metrics.ObserveStore("get", time.Since(start), err)
	if err != nil {
		if errors.Is(err, domain.ErrTokenNotFound) {
			return nil, err
		}
		return nil, storeError(err)
	}
	return rec, nil
}

// List returns every stored record whose name starts with prefix.
func (s *RegistrationService) List(ctx context.Context, prefix string) ([]domain.TokenRecord, error) {
	r, err := s.reader()
	if err != nil {
		return nil, err
	}

	var records []domain.TokenRecord
	start := time.Now()
	err = r.List(ctx, prefix, func(rec domain.TokenRecord) bool {
		records = append(records, rec)
		return true
	})
	s.metrics.ObserveStore("list", time.Since(start), err)
	if err != nil {
		return nil, storeError(err)
	}
	return records, nil
}

func (s *RegistrationService) reader() (TokenReader, error) {
	r, ok := s.store.(TokenReader)
	if !ok {
		return nil, domain.ErrInvalidArgument.WithDetails("token store does not support reads")
	}
	return r, nil
}

// storeError wraps a store error as domain.ErrStoreFailure. The original
// error stays reachable through errors.Is and errors.As.
func storeError(err error) error {
	var de *domain.DomainError
	if errors.As(err, &de) && de.Code == domain.ErrStoreFailure.Code {
		return err
	}
	return domain.ErrStoreFailure.WithCause(err)
}
