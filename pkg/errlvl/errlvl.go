package errlvl

import (
	"errors"
	"fmt"
)

// Lvl is the severity of an error. Zero value means "not set".
type Lvl uint8

const (
	DEBUG Lvl = iota + 1
	INFO
	WARN
	ERROR
	FATAL
)

// String returns the short upper-case name of the level.
func (l Lvl) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	case FATAL:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

// ErrorLevel is a type that represents the severity of an error in the application.
//
// This is the global error levels that should be used throughout the application to determine the severity of the error.
type ErrorLevel error

var (
	ErrDebug ErrorLevel = errors.New("[DEBUG]") // ErrDebug marks errors that are only interesting while debugging.
	ErrInfo  ErrorLevel = errors.New("[INFO]")  // ErrInfo marks expected, self-healing failures.
	ErrWarn  ErrorLevel = errors.New("[WARN]")  // ErrWarn marks upstream failures that degrade a report.
	ErrError ErrorLevel = errors.New("[ERROR]") // ErrError marks broken contracts (bad payloads, missing fields).
	ErrFatal ErrorLevel = errors.New("[FATAL]") // ErrFatal marks errors the process cannot continue after.
)

// Wrap wraps the given error with the given level.
// An error that already carries a level is returned untouched.
func Wrap(err error, level Lvl) error {
	if hasLevel(err) {
		return err
	}

	switch level {
	case DEBUG:
		return fmt.Errorf("%w %w", ErrDebug, err)
	case INFO:
		return fmt.Errorf("%w %w", ErrInfo, err)
	case WARN:
		return fmt.Errorf("%w %w", ErrWarn, err)
	case ERROR:
		return fmt.Errorf("%w %w", ErrError, err)
	case FATAL:
		return fmt.Errorf("%w %w", ErrFatal, err)
	default:
		return fmt.Errorf("%w %w", ErrError, err)
	}
}

// Of returns the level carried by err, ERROR for errors without a level and 0 for nil.
// The most severe level wins when joined errors carry several.
func Of(err error) Lvl {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrFatal):
		return FATAL
	case errors.Is(err, ErrError):
		return ERROR
	case errors.Is(err, ErrWarn):
		return WARN
	case errors.Is(err, ErrInfo):
		return INFO
	case errors.Is(err, ErrDebug):
		return DEBUG
	default:
		return ERROR
	}
}

// hasLevel checks if the given error has a level set already.
func hasLevel(err error) bool {
	return errors.Is(err, ErrDebug) || errors.Is(err, ErrInfo) || errors.Is(err, ErrWarn) || errors.Is(err, ErrError) || errors.Is(err, ErrFatal)
}
