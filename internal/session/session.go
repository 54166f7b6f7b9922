// Package session guards an editing session's single active submission
// across processes with an advisory file lock.
package session

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"

	"vidgen/internal/config"
	"vidgen/internal/logging"
	"vidgen/internal/services"
)

// Lock is a held session lock.
type Lock struct {
	path   string
	lock   *flock.Flock
	logger *slog.Logger
	once   sync.Once
}

// Acquire takes the session lock at the configured path without blocking.
// A lock held by another process yields services.ErrSubmissionActive.
func Acquire(cfg *config.Config, logger *slog.Logger) (*Lock, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return AcquirePath(cfg.SessionLockPath(), logger)
}

// AcquirePath takes the lock stored at path.
func AcquirePath(path string, logger *slog.Logger) (*Lock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}
	fl := flock.New(path)
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, services.Wrap(services.ErrSubmissionActive, "session", "acquire",
			"another vidgen process holds "+path, nil)
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	l := &Lock{path: path, lock: fl, logger: logging.NewComponentLogger(logger, "session")}
	l.logger.Debug("session lock acquired", logging.String("lock", path))
	return l, nil
}

// Path returns the lock file location.
func (l *Lock) Path() string { return l.path }

// Release drops the lock. It is safe to call more than once.
func (l *Lock) Release() {
	if l == nil {
		return
	}
	l.once.Do(func() {
		if err := l.lock.Unlock(); err != nil {
			l.logger.Warn("failed to release session lock",
				logging.String("lock", l.path),
				logging.Error(err),
			)
			return
		}
		l.logger.Debug("session lock released", logging.String("lock", l.path))
	})
}
