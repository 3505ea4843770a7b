package cli

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestNewLoggerFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, LogInfo)
	logger.With("row", 3).Warn("refset unavailable, row degraded", "refset", "abc")

	line := strings.TrimSpace(buf.String())
	if ok, _ := regexp.MatchString(`^\d{2}:\d{2}:\d{2}\.\d{2} WARN`, line); !ok {
		t.Errorf("line %q does not start with an HH:MM:SS.ms timestamp and level", line)
	}
	for _, want := range []string{"row=3", "refset=abc"} {
		if !strings.Contains(line, want) {
			t.Errorf("line %q missing %q", line, want)
		}
	}
}

func TestSetLogLevel(t *testing.T) {
	var buf bytes.Buffer
	c := New(&buf, LogInfo)
	c.Logger.Debug("hidden")
	if buf.Len() != 0 {
		t.Fatalf("debug written at info level: %q", buf.String())
	}

	c.SetLogLevel(LogDebug)
	c.Logger.Debug("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("debug not written after SetLogLevel: %q", buf.String())
	}
}

func TestRootAttachesLogger(t *testing.T) {
	var buf bytes.Buffer
	c := New(&buf, LogDebug)
	root := c.RootCommand()
	root.SetOut(io.Discard)
	root.SetArgs([]string{"--config", filepath.Join(t.TempDir(), "none.toml"), "config", "path"})
	if err := root.Execute(); err != nil {
		t.Fatalf("config path: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"config loaded", "config file does not exist yet"} {
		if !strings.Contains(out, want) {
			t.Errorf("log missing %q:\n%s", want, out)
		}
	}
}

func TestProgressDone(t *testing.T) {
	var buf bytes.Buffer
	prog := newProgress(newLogger(&buf, LogInfo))
	time.Sleep(5 * time.Millisecond)
	if d := prog.elapsed(); d < 5*time.Millisecond {
		t.Errorf("elapsed() = %v, want at least 5ms", d)
	}

	prog.done("Loaded 2 rows")
	if ok, _ := regexp.MatchString(`INFO Loaded 2 rows \([0-9.]+m?s\)`, buf.String()); !ok {
		t.Errorf("done() output = %q", buf.String())
	}
}

func TestLoggerFromContext(t *testing.T) {
	custom := newLogger(io.Discard, LogInfo)

	tests := []struct {
		name string
		ctx  context.Context
		want *log.Logger
	}{
		{"attached", withLogger(context.Background(), custom), custom},
		{"missing", context.Background(), log.Default()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := loggerFromContext(tt.ctx); got != tt.want {
				t.Errorf("loggerFromContext() = %p, want %p", got, tt.want)
			}
		})
	}
}
