// Package auditerr defines the error taxonomy shared by the orgaudit packages.
//
// Fatal conditions are reported as *Error values wrapping one of the sentinel
// errors below, so callers can branch with errors.Is. Recoverable input
// problems are not errors; they are collected as diag.Diagnostic values.
package auditerr

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
)

// Sentinel errors for fatal conditions.
var (
	// ErrSourceUnreadable indicates the record source could not be opened or
	// read. No analysis is attempted.
	ErrSourceUnreadable = errors.New("record source unreadable")

	// ErrInvalidConfig indicates the provided configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrSinkFailed indicates a finding could not be written to the sink.
	ErrSinkFailed = errors.New("sink failed")
)

// Error kinds categorize errors by their origin.
const (
	// KindSource represents errors reading the record source.
	KindSource = "source"

	// KindConfiguration represents errors related to configuration.
	KindConfiguration = "configuration"

	// KindOutput represents errors writing findings.
	KindOutput = "output"

	// KindInternal represents internal errors.
	KindInternal = "internal"
)

// Error is a structured error that wraps an underlying error with the
// operation that failed and the kind of failure.
//
//	err := &auditerr.Error{
//		Op:   "source.LoadFile",
//		Kind: auditerr.KindSource,
//		Err:  auditerr.ErrSourceUnreadable,
//	}
type Error struct {
	// Op is the operation that failed (e.g., "source.LoadFile").
	Op string

	// Kind categorizes the error (e.g., KindSource).
	Kind string

	// Err is the underlying error.
	Err error

	// Context holds additional debugging information such as a file path.
	Context map[string]any
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("orgaudit: %s: %s", e.Op, e.Kind)
	}
	if len(e.Context) > 0 {
		return fmt.Sprintf("orgaudit: %s (%s): %v [context: %+v]", e.Op, e.Kind, e.Err, e.Context)
	}
	return fmt.Sprintf("orgaudit: %s (%s): %v", e.Op, e.Kind, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error by Kind (and Op, when the target sets one), and
// otherwise delegates to the wrapped error.
func (e *Error) Is(target error) bool {
	if target == nil {
		return false
	}
	if t, ok := target.(*Error); ok {
		if t.Kind != "" && e.Kind == t.Kind {
			if t.Op == "" || e.Op == t.Op {
				return true
			}
		}
	}
	return errors.Is(e.Err, target)
}

// WithContext returns a copy of e with ctx merged into its context.
func (e *Error) WithContext(ctx map[string]any) *Error {
	newErr := *e
	newErr.Context = make(map[string]any, len(e.Context)+len(ctx))
	for k, v := range e.Context {
		newErr.Context[k] = v
	}
	for k, v := range ctx {
		newErr.Context[k] = v
	}
	return &newErr
}

// NewSourceError wraps cause as an ErrSourceUnreadable failure of op.
func NewSourceError(op string, cause error) *Error {
	return &Error{
		Op:   op,
		Kind: KindSource,
		Err:  join(ErrSourceUnreadable, cause),
	}
}

// NewConfigurationError wraps cause as an ErrInvalidConfig failure of op.
func NewConfigurationError(op string, cause error) *Error {
	return &Error{
		Op:   op,
		Kind: KindConfiguration,
		Err:  join(ErrInvalidConfig, cause),
	}
}

// NewOutputError wraps cause as an ErrSinkFailed failure of op.
func NewOutputError(op string, cause error) *Error {
	return &Error{
		Op:   op,
		Kind: KindOutput,
		Err:  join(ErrSinkFailed, cause),
	}
}

func join(sentinel, cause error) error {
	switch {
	case cause == nil:
		return sentinel
	case errors.Is(cause, sentinel):
		return cause
	default:
		return fmt.Errorf("%w: %w", sentinel, cause)
	}
}

// CloseWithLog closes the resource and logs any error at warning level.
// If logger is nil, slog.Default() is used.
//
//	defer auditerr.CloseWithLog(file, logger, "record source")
func CloseWithLog(closer io.Closer, logger *slog.Logger, name string) {
	if closer == nil {
		return
	}
	if logger == nil {
		logger = slog.Default()
	}
	if err := closer.Close(); err != nil {
		logger.Warn("failed to close resource",
			"resource", name,
			"error", err)
	}
}
