package kv

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/natefinch/atomic"
	"go.uber.org/zap"
)

const (
	dirPerms  = 0o750
	filePerms = 0o600
)

// File stores each key as <dir>/<key>.json.
//
// Writes go to a temp file that is renamed over the target, so a reader
// never sees a half written value. Concurrent writers from different
// processes are serialized with an flock.
type File struct {
	dir         string
	lockTimeout time.Duration
	log         *zap.Logger
}

// NewFile returns a File backend rooted at dir. The directory is created on
// first write.
func NewFile(dir string, logger *zap.Logger) *File {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &File{dir: dir, lockTimeout: LockTimeout, log: logger}
}

// Path returns the file a key is stored in.
func (f *File) Path(key string) string {
	return filepath.Join(f.dir, key+".json")
}

// Get reads the file for key.
func (f *File) Get(_ context.Context, key string) ([]byte, error) {
	err := validateKey(key)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(f.Path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}

		return nil, fmt.Errorf("reading %s: %w", key, err)
	}

	return data, nil
}

// Set atomically replaces the file for key.
func (f *File) Set(ctx context.Context, key string, value []byte) error {
	err := validateKey(key)
	if err != nil {
		return err
	}

	err = ctx.Err()
	if err != nil {
		return err
	}

	err = os.MkdirAll(f.dir, dirPerms)
	if err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}

	path := f.Path(key)

	return withLock(path, f.lockTimeout, func() error {
		writeErr := atomic.WriteFile(path, bytes.NewReader(value))
		if writeErr != nil {
			return fmt.Errorf("writing %s: %w", key, writeErr)
		}

		f.log.Debug("wrote entry", zap.String("key", key), zap.String("path", path), zap.Int("bytes", len(value)))

		return nil
	})
}

// Close is a no-op; File holds no open handles between calls.
func (*File) Close() error {
	return nil
}
