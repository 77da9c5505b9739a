package logging

import "github.com/vvka-141/kettlegraph/pkg/kettle"

// NullLogger discards every message.
type NullLogger struct{}

// NewNullLogger creates a new NullLogger.
func NewNullLogger() *NullLogger {
	return &NullLogger{}
}

func (l *NullLogger) Verbose(format string, args ...interface{}) {}
func (l *NullLogger) Info(format string, args ...interface{})    {}
func (l *NullLogger) Error(format string, args ...interface{})   {}

var _ kettle.Logger = (*NullLogger)(nil)
