package composer

import (
	"errors"
	"fmt"

	"github.com/samgozman/morning-thread/pkg/errlvl"
)

var (
	errSectionFailed = errors.New("section source failed")
	errSectionPanic  = errors.New("panic in section source")
)

// Error is an error that occurs while composing a report section.
type Error struct {
	level   errlvl.Lvl // severity level of the error
	err     error      // errors stack (preferably generic error + the real error)
	fnName  string     // Name of the function that caused the error
	section string     // section of the report that failed
}

func (e *Error) Error() string {
	return e.wrapped().Error()
}

func (e *Error) Unwrap() error {
	return e.wrapped()
}

func (e *Error) wrapped() error {
	return errlvl.Wrap(fmt.Errorf("[%s] error in section %s: %w", e.fnName, e.section, e.err), e.level)
}

// newError creates a new Error instance with the given error and section.
func newError(err error, level errlvl.Lvl, name, section string) *Error {
	return &Error{
		level:   level,
		fnName:  name,
		err:     err,
		section: section,
	}
}
