package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name    string
		level   log.Level
		debug   bool
		wantLog bool
	}{
		{"info at info level", log.InfoLevel, false, true},
		{"debug at info level", log.InfoLevel, true, false},
		{"debug at debug level", log.DebugLevel, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := newLogger(&buf, tt.level)
			if tt.debug {
				logger.Debug("cache hit")
			} else {
				logger.Info("cache hit")
			}
			if got := buf.Len() > 0; got != tt.wantLog {
				t.Errorf("logged = %v, want %v", got, tt.wantLog)
			}
		})
	}
}

func TestProgressDone(t *testing.T) {
	var buf bytes.Buffer
	prog := newProgress(newLogger(&buf, log.InfoLevel))
	time.Sleep(5 * time.Millisecond)
	prog.done("enumerated state space", "states", 4)

	out := buf.String()
	for _, want := range []string{"enumerated state space", "elapsed=", "states=4"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q lacks %q", out, want)
		}
	}
	if prog.elapsed() < 5*time.Millisecond {
		t.Errorf("elapsed = %v, want at least 5ms", prog.elapsed())
	}
}

func TestLoggerFromContext(t *testing.T) {
	if loggerFromContext(context.Background()) != log.Default() {
		t.Error("a bare context should yield the default logger")
	}

	var buf bytes.Buffer
	custom := newLogger(&buf, log.InfoLevel)
	ctx := withLogger(context.Background(), custom)
	if loggerFromContext(ctx) != custom {
		t.Fatal("loggerFromContext should return the attached logger")
	}
	loggerFromContext(ctx).Info("packed graph")
	if !strings.Contains(buf.String(), "packed graph") {
		t.Error("attached logger should write to its buffer")
	}
}
