package log

import (
	"path/filepath"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestSetLoggerRoutesPackageHelpers(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	SetLogger(zap.New(core))
	defer SetLogger(zap.NewNop())

	Infof("wrote %s", "clock.svg")
	Errorf("failed: %v", "boom")
	GetSugaredLogger().Debugw("summarized group", "group", "day", "n", 3)

	entries := logs.All()
	if len(entries) != 3 {
		t.Fatalf("got %d log entries, expected 3", len(entries))
	}
	if entries[0].Message != "wrote clock.svg" {
		t.Errorf("message = %q", entries[0].Message)
	}
	if entries[1].Level != zap.ErrorLevel {
		t.Errorf("level = %v, expected error", entries[1].Level)
	}
	if got := entries[2].ContextMap()["group"]; got != "day" {
		t.Errorf("group field = %v, expected day", got)
	}
}

func TestCallerIsTheLoggingSite(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	SetLogger(zap.New(core, zap.AddCaller()))
	defer SetLogger(zap.NewNop())

	Infof("through the package helper")
	GetSugaredLogger().Infow("through the shared logger")
	GetSugaredLogger().Named("analysis").Warnw("through a derived logger")

	entries := logs.All()
	if len(entries) != 3 {
		t.Fatalf("got %d log entries, expected 3", len(entries))
	}
	for _, e := range entries {
		if !e.Caller.Defined {
			t.Errorf("%q: caller not recorded", e.Message)
			continue
		}
		if got := filepath.Base(e.Caller.File); got != "log_test.go" {
			t.Errorf("%q: caller = %s, expected log_test.go", e.Message, e.Caller.TrimmedPath())
		}
	}
}

func TestGetSugaredLoggerFallsBack(t *testing.T) {
	log = nil
	baseLogger = nil
	helpers = nil

	if GetSugaredLogger() == nil {
		t.Fatal("expected fallback logger")
	}
	Infof("dropped by the nop logger")
	Sync()
}
