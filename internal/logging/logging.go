// Package logging provides an injectable verbose sink, defaulting to
// no-op. It is a thin wrapper over github.com/tliron/commonlog.
package logging

import "github.com/tliron/commonlog"

// Sink is the logging surface consumed by the database and the
// call-tree builder. Nil-safe: a zero Sink logs nothing.
type Sink struct {
	logger commonlog.Logger
}

// NewNoop returns a Sink that discards everything.
func NewNoop() Sink {
	return Sink{}
}

// NewCommonLog returns a Sink backed by a named commonlog logger. Callers
// are expected to have called commonlog.Configure once at process
// startup (cliapp does this).
func NewCommonLog(name string) Sink {
	return Sink{logger: commonlog.GetLoggerf(name)}
}

func (s Sink) Infof(format string, args ...any) {
	if s.logger != nil {
		s.logger.Infof(format, args...)
	}
}

func (s Sink) Warningf(format string, args ...any) {
	if s.logger != nil {
		s.logger.Warningf(format, args...)
	}
}

func (s Sink) Debugf(format string, args ...any) {
	if s.logger != nil {
		s.logger.Debugf(format, args...)
	}
}
