// Package memory provides an in-memory token store.
//
// Records are kept in a sharded concurrent map (pkg/cmap) and are lost
// when the process exits. The store is used by tests and by the "memory"
// storage engine for dry runs.
//
// All operations are safe for concurrent use.
package memory

import "errors"

// ErrClosed is returned by operations on a closed Store.
var ErrClosed = errors.New("memory store closed")
