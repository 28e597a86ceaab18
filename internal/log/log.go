// Package log provides the process-wide zap logger used by flowerclock commands.
package log

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	baseLogger *zap.Logger
	log        *zap.SugaredLogger
	// helpers skips the package's own frame so callers are reported correctly
	helpers *zap.SugaredLogger
)

// Init initializes the package-level logger. Debug mode uses zap's
// development encoder and enables debug-level output.
func Init(debug bool) error {
	var cfg zap.Config
	if debug {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
		cfg.Encoding = "console"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	// stdout carries the summary table and, with -out -, the SVG itself
	cfg.OutputPaths = []string{"stderr"}

	zapLogger, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("can't initialize zap logger: %v", err)
	}

	SetLogger(zapLogger)
	return nil
}

// SetLogger replaces the package-level logger
func SetLogger(l *zap.Logger) {
	baseLogger = l
	log = l.Sugar()
	helpers = l.WithOptions(zap.AddCallerSkip(1)).Sugar()
}

// GetSugaredLogger returns the sugared logger for passing to other packages.
// Entries logged through it report the caller's own file and line.
func GetSugaredLogger() *zap.SugaredLogger {
	ensure()
	return log
}

func ensure() {
	if log == nil {
		// Fallback logger if not initialized
		SetLogger(zap.NewNop())
	}
}

// Sync flushes any buffered log entries
func Sync() {
	if baseLogger != nil {
		_ = baseLogger.Sync()
	}
}

func Infof(template string, args ...interface{}) {
	ensure()
	helpers.Infof(template, args...)
}

func Errorf(template string, args ...interface{}) {
	ensure()
	helpers.Errorf(template, args...)
}

func Fatalf(template string, args ...interface{}) {
	ensure()
	helpers.Errorf(template, args...)
	Sync()
	os.Exit(1)
}
