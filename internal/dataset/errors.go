package dataset

import (
	"errors"
	"fmt"
)

// ErrLoad marks any startup dataset failure. The process must not serve
// requests after seeing it.
var ErrLoad = errors.New("dataset load failed")

// LoadError wraps a missing file, malformed row, or incompatible header.
type LoadError struct {
	Path string
	Msg  string
}

func (e *LoadError) Error() string {
	if e == nil {
		return ""
	}
	if e.Path == "" {
		return fmt.Sprintf("%s: %s", ErrLoad.Error(), e.Msg)
	}
	return fmt.Sprintf("%s: %s: %s", ErrLoad.Error(), e.Path, e.Msg)
}

func (e *LoadError) Unwrap() error { return ErrLoad }

func loadErrf(path, format string, args ...any) error {
	return &LoadError{Path: path, Msg: fmt.Sprintf(format, args...)}
}
