package utils

import (
	"github.com/getsentry/sentry-go"
	"github.com/samgozman/morning-thread/pkg/errlvl"
)

type sentryHub interface {
	CaptureException(exception error) *sentry.EventID
	WithScope(callback func(scope *sentry.Scope))
}

// CaptureSentryException captures err in Sentry under the given exception type name.
// Sentry names the exception after the Go error type (*errors.joinError and the like), which says nothing.
func CaptureSentryException(name string, hub sentryHub, err error) {
	level := errorsLevelMatcher(err)
	hub.WithScope(func(scope *sentry.Scope) {
		scope.AddEventProcessor(func(e *sentry.Event, _ *sentry.EventHint) *sentry.Event {
			// the last element of e.Exception is the outermost error
			if len(e.Exception) > 0 {
				e.Exception[len(e.Exception)-1].Type = name
			}
			e.Level = level
			return e
		})
		hub.CaptureException(err)
	})
}

// errorsLevelMatcher returns the Sentry level for the given error.
func errorsLevelMatcher(err error) sentry.Level {
	switch errlvl.Of(err) {
	case errlvl.FATAL:
		return sentry.LevelFatal
	case errlvl.ERROR:
		return sentry.LevelError
	case errlvl.WARN:
		return sentry.LevelWarning
	case errlvl.INFO:
		return sentry.LevelInfo
	default:
		return sentry.LevelDebug
	}
}
