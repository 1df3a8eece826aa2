package store

import (
	"errors"
	"fmt"
	"strings"
)

// Infrastructure tags. Repository methods never return a raw driver error:
// they wrap it with one of these sentinels (or return it wrapped with a
// plain context message when no tag applies) so the executor can map it to
// a stable client code.
var (
	ErrConflict    = errors.New("storage-conflict")
	ErrConstraint  = errors.New("storage-constraint")
	ErrUnavailable = errors.New("storage-unavailable")
	ErrAuthFailure = errors.New("storage-auth")
	ErrBusy        = errors.New("storage-busy")
)

// classify wraps a sqlite driver error with the matching tag. Detection is
// by message because modernc.org/sqlite surfaces SQLITE_* results as plain
// error strings.
func classify(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed"):
		return fmt.Errorf("%w: %v", ErrConflict, err)
	case strings.Contains(msg, "constraint failed"):
		return fmt.Errorf("%w: %v", ErrConstraint, err)
	case strings.Contains(msg, "database is locked"), strings.Contains(msg, "busy"):
		return fmt.Errorf("%w: %v", ErrBusy, err)
	case strings.Contains(msg, "unable to open database"), strings.Contains(msg, "no such table"):
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	case strings.Contains(msg, "access denied"), strings.Contains(msg, "authorization denied"):
		return fmt.Errorf("%w: %v", ErrAuthFailure, err)
	}
	return err
}
