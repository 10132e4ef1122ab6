package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// staleLockAge is how old a lock file must be before another process may break it
const staleLockAge = 2 * time.Minute

var ErrLockTimeout = errors.New("timed out waiting for file lock")

// FileLock is an advisory lock on path, held by creating path+".lock" exclusively.
// It serialises writers of the settings directory across processes.
type FileLock struct {
	path     string
	lockPath string
	file     *os.File
}

// LockConfig holds configuration for file locking behavior
type LockConfig struct {
	Timeout    time.Duration
	RetryDelay time.Duration
}

func DefaultLockConfig() LockConfig {
	return LockConfig{
		Timeout:    5 * time.Second,
		RetryDelay: 25 * time.Millisecond,
	}
}

func NewFileLock(path string) *FileLock {
	return &FileLock{path: path, lockPath: path + ".lock"}
}

// Lock retries until the lock file can be created or cfg.Timeout passes
func (fl *FileLock) Lock(cfg LockConfig) error {
	if fl.file != nil {
		return fmt.Errorf("%s is already locked", fl.path)
	}
	if err := os.MkdirAll(filepath.Dir(fl.lockPath), 0755); err != nil {
		return fmt.Errorf("failed to create lock directory: %w", err)
	}

	deadline := time.Now().Add(cfg.Timeout)
	for {
		file, err := os.OpenFile(fl.lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600)
		if err == nil {
			fmt.Fprintf(file, "pid:%d\ntime:%s\n", os.Getpid(), time.Now().Format(time.RFC3339))
			fl.file = file
			return nil
		}
		if !errors.Is(err, os.ErrExist) {
			return fmt.Errorf("failed to create lock file: %w", err)
		}

		stale := fl.isStale()
		if stale {
			os.Remove(fl.lockPath)
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("%w: %s", ErrLockTimeout, fl.path)
		}
		if !stale {
			time.Sleep(cfg.RetryDelay)
		}
	}
}

func (fl *FileLock) isStale() bool {
	info, err := os.Stat(fl.lockPath)
	if err != nil {
		return false
	}
	return time.Since(info.ModTime()) > staleLockAge
}

// Unlock releases the lock; unlocking twice is a no-op
func (fl *FileLock) Unlock() error {
	if fl.file == nil {
		return nil
	}

	closeErr := fl.file.Close()
	fl.file = nil
	if err := os.Remove(fl.lockPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove lock file: %w", err)
	}
	return closeErr
}

func (fl *FileLock) IsLocked() bool {
	return fl.file != nil
}

// WithLock runs fn while holding the lock on path
func WithLock(path string, cfg LockConfig, fn func() error) (err error) {
	lock := NewFileLock(path)
	if err := lock.Lock(cfg); err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}
	defer func() {
		if unlockErr := lock.Unlock(); unlockErr != nil && err == nil {
			err = unlockErr
		}
	}()
	return fn()
}

// ReplaceFile writes data to a temporary sibling and renames it over path,
// so readers never observe a partial file. Callers that race with other
// writers should hold the lock.
func ReplaceFile(path string, data []byte, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write temporary file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temporary file: %w", err)
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}
	return nil
}
