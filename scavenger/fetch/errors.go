package fetch

import (
	"errors"
	"fmt"

	"github.com/samgozman/morning-thread/pkg/errlvl"
)

var (
	ErrNetwork  = errors.New("network error")          // connection failure or timeout
	ErrProtocol = errors.New("unexpected status code") // upstream answered with a non-2xx status
	ErrParse    = errors.New("malformed payload")      // body could not be decoded
	ErrSchema   = errors.New("expected field absent")  // body decoded but a required field is missing
)

// Error is the error type returned by every data source.
type Error struct {
	level  errlvl.Lvl // severity level of the error
	kind   error      // one of ErrNetwork, ErrProtocol, ErrParse, ErrSchema
	err    error      // the real error
	source string     // name of the source that failed (e.g. "cbr:daily")
}

func (e *Error) Error() string {
	return e.getWrappedError().Error()
}

func (e *Error) Unwrap() error {
	return e.getWrappedError()
}

// Source returns the name of the source that produced the error.
func (e *Error) Source() string {
	return e.source
}

func (e *Error) getWrappedError() error {
	return errlvl.Wrap(fmt.Errorf("source %s: %w: %w", e.source, e.kind, e.err), e.level)
}

// NetworkError wraps a transport failure.
func NetworkError(source string, err error) *Error {
	return &Error{level: errlvl.WARN, kind: ErrNetwork, err: err, source: source}
}

// ProtocolError reports a non-success status code.
func ProtocolError(source string, code int, status string) *Error {
	return &Error{
		level:  errlvl.WARN,
		kind:   ErrProtocol,
		err:    fmt.Errorf("status %d (%s)", code, status),
		source: source,
	}
}

// ParseError wraps a decoding failure.
func ParseError(source string, err error) *Error {
	return &Error{level: errlvl.ERROR, kind: ErrParse, err: err, source: source}
}

// SchemaError reports a missing field.
func SchemaError(source, field string) *Error {
	return &Error{
		level:  errlvl.ERROR,
		kind:   ErrSchema,
		err:    fmt.Errorf("field %q", field),
		source: source,
	}
}

// Kind returns a short label of the error category, used for metrics.
func Kind(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNetwork):
		return "network"
	case errors.Is(err, ErrProtocol):
		return "protocol"
	case errors.Is(err, ErrParse):
		return "parse"
	case errors.Is(err, ErrSchema):
		return "schema"
	default:
		return "unknown"
	}
}
