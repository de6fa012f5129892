// Public domain.

// Package logging sets up the structured logger shared by the analysis
// commands.  Loggers are logr.Logger values backed by zap and are passed
// explicitly to the code that logs.
package logging

import (
	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Verbosity levels for logger.V.
const (
	DEFAULT = 0
	VERBOSE = 3
	DEBUG   = 4
	TRACE   = 5
)

// New returns a logger that emits messages up to the given verbosity.
// Development mode gives console output with caller information, otherwise
// output is JSON.
func New(verbosity int, dev bool) (logr.Logger, error) {
	var cfg zap.Config
	if dev {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
		cfg.Sampling = nil
	}
	cfg.Level = zap.NewAtomicLevelAt(zapcore.Level(-verbosity))
	zl, err := cfg.Build()
	if err != nil {
		return logr.Discard(), err
	}
	return zapr.NewLogger(zl), nil
}

// NewTestLogger creates a new Zap logger using the dev mode.
func NewTestLogger() logr.Logger {
	l, err := New(TRACE, true)
	if err != nil {
		return logr.Discard()
	}
	return l
}
