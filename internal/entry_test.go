package internal

import (
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestNewSession_RequiresConfig(t *testing.T) {
	if _, _, err := NewSession(WithLogOutput(io.Discard)); err == nil {
		t.Fatal("expected error without config")
	}
}

func TestNewSession_JournalDisabled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Journal.Enabled = false

	svc, closeFn, err := NewSession(WithConfig(cfg), WithLogOutput(io.Discard))
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	defer closeFn()

	rows, total, err := svc.History(0, 0)
	if err != nil || total != 0 || len(rows) != 0 {
		t.Errorf("History = %v, %d, %v", rows, total, err)
	}
}

func TestNewSession_CreatesJournal(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Journal.Path = filepath.Join(t.TempDir(), "redate.db")

	_, closeFn, err := NewSession(WithConfig(cfg), WithLogOutput(io.Discard))
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	closeFn()

	if _, err := os.Stat(cfg.Journal.Path); err != nil {
		t.Errorf("journal file: %v", err)
	}
}
