package conform

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration marks malformed input geometry or misuse of the
	// model. There is no recovery path for it.
	ErrConfiguration = errors.New("configuration error")

	// ErrLookup marks an out-of-range accessor index.
	ErrLookup = errors.New("lookup error")
)

// ConfigurationError reports input the engine cannot build a box
// complex from.
type ConfigurationError struct {
	Op  string
	Msg string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("conform: %s: %s", e.Op, e.Msg)
}

func (e *ConfigurationError) Unwrap() error { return ErrConfiguration }

func configErrorf(op, format string, args ...any) error {
	return &ConfigurationError{Op: op, Msg: fmt.Sprintf(format, args...)}
}

// LookupError reports an index outside an accessor's range.
type LookupError struct {
	Kind  string
	Index int
	Len   int
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("conform: %s index %d out of range [0,%d)", e.Kind, e.Index, e.Len)
}

func (e *LookupError) Unwrap() error { return ErrLookup }
