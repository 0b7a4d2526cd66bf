// Package kv provides the key-value storage the task list is mirrored into.
//
// Values are opaque byte slices. Three backends exist:
//   - [File]: one file per key in a directory, written atomically under a lock
//   - [SQLite]: a single table in a sqlite database
//   - [Memory]: a process-local map
package kv

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// Store is the contract every backend satisfies.
type Store interface {
	// Get returns the value stored under key, or an error matching
	// [ErrNotFound] if there is none.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set replaces the value stored under key.
	Set(ctx context.Context, key string, value []byte) error

	// Close releases resources held by the backend.
	Close() error
}

// Errors returned by backends.
var (
	ErrNotFound       = errors.New("key not found")
	ErrInvalidKey     = errors.New("invalid key")
	ErrUnknownBackend = errors.New("unknown backend")
)

// Backend names accepted by [Open].
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Backends returns the names accepted by [Open].
func Backends() []string {
	return []string{BackendFile, BackendSQLite, BackendMemory}
}

// sqliteFileName is the database file used by the sqlite backend inside Dir.
const sqliteFileName = "todo.db"

// Options configures [Open].
type Options struct {
	Backend string
	Dir     string
	Logger  *zap.Logger
}

// Open opens the backend named by opts.Backend rooted at opts.Dir.
func Open(ctx context.Context, opts Options) (Store, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	switch opts.Backend {
	case BackendFile, "":
		return NewFile(opts.Dir, logger), nil
	case BackendSQLite:
		return OpenSQLite(ctx, filepath.Join(opts.Dir, sqliteFileName), logger)
	case BackendMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("%w: %q (want one of %s)", ErrUnknownBackend, opts.Backend, strings.Join(Backends(), ", "))
	}
}

// validateKey rejects keys that cannot be used as a plain file name.
func validateKey(key string) error {
	if key == "" || key == "." || key == ".." || strings.ContainsAny(key, `/\`) || strings.HasPrefix(key, ".") {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}

	return nil
}
