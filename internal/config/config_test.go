package config

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("MAX_HEADING_DEPTH", "")
	t.Setenv("WORKER_COUNT", "0")
	t.Setenv("DOCUMENT_TTL", "not-a-duration")

	cfg := Load()
	if cfg.MaxHeadingDepth != DefaultMaxHeadingDepth {
		t.Errorf("expected max depth %d, got %d", DefaultMaxHeadingDepth, cfg.MaxHeadingDepth)
	}
	if cfg.WorkerCount != 4 {
		t.Errorf("expected 4 workers, got %d", cfg.WorkerCount)
	}
	if cfg.DocumentTTL != 2*time.Hour {
		t.Errorf("expected default TTL, got %s", cfg.DocumentTTL)
	}
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("MAX_HEADING_DEPTH", "2")
	t.Setenv("OUTLINE_API_KEY", "secret")
	t.Setenv("PDF_FALLBACK_PDFTOTEXT", "false")

	cfg := Load()
	if cfg.MaxHeadingDepth != 2 {
		t.Errorf("expected max depth 2, got %d", cfg.MaxHeadingDepth)
	}
	if cfg.PDFFallbackPdftotext {
		t.Error("expected pdftotext fallback disabled")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected validation error: %v", err)
	}
}

func TestValidate(t *testing.T) {
	if err := (Config{}).Validate(); err == nil {
		t.Error("expected error without api key")
	}
	if err := (Config{APIKey: "k", WebhookURL: "http://x"}).Validate(); err == nil {
		t.Error("expected error for webhook without key")
	}
}

func TestLoadFileAndApply(t *testing.T) {
	path := filepath.Join(t.TempDir(), "outline.yaml")
	if err := os.WriteFile(path, []byte("max_heading_depth: 3\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	fs, err := LoadFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cfg := Config{MaxHeadingDepth: 4}
	cfg.Apply(fs)
	if cfg.MaxHeadingDepth != 3 {
		t.Errorf("expected max depth 3, got %d", cfg.MaxHeadingDepth)
	}

	cfg.Apply(FileSettings{})
	if cfg.MaxHeadingDepth != 3 {
		t.Errorf("expected zero setting to be ignored, got %d", cfg.MaxHeadingDepth)
	}
}

func TestLoadFile_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "outline.yaml")
	if err := os.WriteFile(path, []byte("max_heading_depth: [oops"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Error("expected parse error")
	}
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected read error")
	}
}

func TestWatchFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "outline.yaml")
	if err := os.WriteFile(path, []byte("max_heading_depth: 3\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan FileSettings, 8)
	log := slog.New(slog.DiscardHandler)
	if err := WatchFile(ctx, path, log, func(fs FileSettings) { changes <- fs }); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := os.WriteFile(path, []byte("max_heading_depth: 6\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	deadline := time.After(5 * time.Second)
	for {
		select {
		case fs := <-changes:
			if fs.MaxHeadingDepth == 6 {
				return
			}
		case <-deadline:
			t.Fatal("timed out waiting for config change")
		}
	}
}
