// Package service provides domain services for token registration.
//
// Domain services orchestrate the pure naming model in package domain
// and the token store. They define interfaces for storage dependencies,
// allowing for dependency injection and testability.
//
// This package contains:
//
//   - RegistrationService: id range check, decode, rule chain and an
//     idempotent create-or-update of the token record
//   - TokenStore, TokenUpserter, TokenReader: storage contracts
//   - Metrics: observation hooks for outcomes and store latency
//
// Services are stateless and safe for concurrent use.
package service
