// Package main provides the entry point for artifact-cli.
//
// artifact-cli registers artifact tokens from their numeric ids and
// manages the token records in a local store:
//
//   - Token registration, flag updates and lookups
//   - Name and id conversion without touching the store
//   - Bulk registration from id files
//   - Configuration inspection
//
// Usage:
//
//	artifact-cli [global flags] command [flags] [args]
//	artifact-cli token register --flags LOCKED 2966
//	artifact-cli --engine pebble -o json token list
//	artifact-cli shell
package main
