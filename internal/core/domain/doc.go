// Package domain defines the core domain model for token naming.
//
// Domain models are pure values without IO dependencies. This package
// contains:
//
//   - Flags: administrative bitmask attached to a token record
//   - RuleChain: ordered admissibility rules for token names
//   - IDRange: fast numeric pre-check for token ids
//   - Naming: one alphabet, codec, rule chain and id range bundled
//     from a single NamingConfig
//   - Errors: structured domain errors with stable codes
//
// Everything here is safe for concurrent use.
package domain
