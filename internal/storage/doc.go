// Package storage provides the persistent token stores.
//
// Every engine maps a canonical token name to its flags:
//
//   - badger: embedded LSM store (dgraph-io/badger), the default
//   - pebble: embedded LSM store (cockroachdb/pebble)
//   - sql: relational table through gorm (sqlite, postgres, mysql)
//   - memory: non-persistent map, see package memory
//
// Open selects an engine from Config. All stores implement Store and
// return domain.ErrTokenNotFound and domain.ErrTokenExists for missing
// and duplicate names.
package storage
