package store

import (
	"errors"
	"fmt"
)

// ErrorKind classifies persistence failures.
type ErrorKind string

const (
	// KindCorrupt means the file exists but cannot be parsed as expected.
	KindCorrupt ErrorKind = "corrupt"
	// KindIO means the underlying filesystem operation failed.
	KindIO ErrorKind = "io"
)

// Error is a persistence failure tied to a concrete file.
type Error struct {
	Kind ErrorKind
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("store %s: %s: %v", e.Kind, e.Path, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// IsCorrupt reports whether err carries a corrupt-store failure.
func IsCorrupt(err error) bool {
	var se *Error
	return errors.As(err, &se) && se.Kind == KindCorrupt
}

func corruptErr(path string, err error) error {
	return &Error{Kind: KindCorrupt, Path: path, Err: err}
}

func ioErr(path string, err error) error {
	return &Error{Kind: KindIO, Path: path, Err: err}
}
