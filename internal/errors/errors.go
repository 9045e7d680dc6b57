package errors

import (
	"errors"
	"fmt"
	"os"

	"github.com/julianstephens/tendwell/internal/logger"
)

var (
	// ErrNotFound is returned by stores when a key has no value.
	ErrNotFound = errors.New("key not found")
	// ErrCorrupt is returned when a stored value cannot be decoded.
	ErrCorrupt = errors.New("stored record is corrupt")
)

// PersistenceError reports that engine state was changed in memory but could
// not be written to (or read from) the store. The in-memory state remains
// authoritative for the rest of the session.
type PersistenceError struct {
	Op  string
	Key string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Persist wraps err as a PersistenceError. It returns nil when err is nil.
func Persist(op, key string, err error) error {
	if err == nil {
		return nil
	}
	return &PersistenceError{Op: op, Key: key, Err: err}
}

// IsPersistence reports whether err (or anything it wraps) is a PersistenceError.
func IsPersistence(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe)
}

// Format formats an error message with a consistent "Error: " prefix
func Format(err error) string {
	if err == nil {
		return ""
	}
	if IsPersistence(err) {
		return fmt.Sprintf("Error: %v (changes kept for this session only)", err)
	}
	return fmt.Sprintf("Error: %v", err)
}

// Fatal logs err, prints it to stderr and exits with status 1. A nil err is
// ignored.
func Fatal(err error) {
	if err != nil {
		logger.Error("Command failed", "error", err)
		fmt.Fprintf(os.Stderr, "%s\n", Format(err))
		os.Exit(1)
	}
}
