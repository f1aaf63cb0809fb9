package cmd

import (
	"io"
	"os"
	"testing"

	"github.com/ritual-sh/ritual/internal/cal"
	"github.com/ritual-sh/ritual/internal/store"
	"github.com/ritual-sh/ritual/internal/task"
)

// configTestEnv points every path the CLI touches at a throwaway dir.
func configTestEnv(t *testing.T) {
	t.Helper()
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir+"/config")
	t.Setenv("XDG_DATA_HOME", tmpDir+"/data")
	t.Setenv("XDG_STATE_HOME", tmpDir+"/state")
	t.Setenv("RITUAL_CONFIG_DIR", "")
	t.Setenv("RITUAL_DATA_DIR", "")
}

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe: %v", err)
	}
	os.Stdout = w

	fn()

	w.Close()
	os.Stdout = old
	out, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("reading captured stdout: %v", err)
	}
	return string(out)
}

// seedRitual adds a task straight through the domain store.
func seedRitual(t *testing.T, title string, rule task.Rule) task.Task {
	t.Helper()
	db, err := store.Open()
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	defer db.Close()

	tk, err := task.NewStore(db.Conn()).Add(title, "", rule, cal.Today(), nil)
	if err != nil {
		t.Fatalf("Add(%q): %v", title, err)
	}
	return tk
}
