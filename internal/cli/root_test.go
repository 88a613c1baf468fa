package cli

import (
	"context"
	"io"
	"testing"

	"github.com/charmbracelet/log"
)

func TestVerboseFlag(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	c := New(io.Discard, LogInfo)
	root := newRootCommand(c)
	root.SetOut(io.Discard)
	root.SetArgs([]string{"-v", "cache", "path"})
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatal(err)
	}
	if c.Logger.GetLevel() != log.DebugLevel {
		t.Errorf("level = %v, want debug", c.Logger.GetLevel())
	}
}

func TestBadConfigFails(t *testing.T) {
	root := newRootCommand(New(io.Discard, LogInfo))
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"--config", "/nonexistent/config.toml", "cache", "path"})
	if err := root.ExecuteContext(context.Background()); err == nil {
		t.Error("a missing explicit config should fail the command")
	}
}
