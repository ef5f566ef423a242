package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", nil)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.NotesDir == "" || cfg.HistoryDir == "" {
		t.Error("expected default directories to be populated")
	}
	if cfg.ToLearnPath == "" {
		t.Error("expected a default to-learn path")
	}
	if cfg.DefaultPattern != "moderate" {
		t.Errorf("expected default pattern 'moderate', got %q", cfg.DefaultPattern)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("expected default log level 'info', got %q", cfg.LogLevel)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := "notes_dir: /srv/notes\nhistory_dir: /srv/history\nlog_level: debug\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path, nil)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.NotesDir != "/srv/notes" {
		t.Errorf("expected notes_dir from file, got %q", cfg.NotesDir)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("expected log_level debug, got %q", cfg.LogLevel)
	}
	if cfg.DefaultPattern != "moderate" {
		t.Error("expected unset keys to keep their defaults")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), nil); err == nil {
		t.Error("expected an error for a missing config file")
	}
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("notes_dir: /srv/notes\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("LEARNBASE_NOTES_DIR", "/env/notes")
	t.Setenv("LEARNBASE_LOG_LEVEL", "warn")

	cfg, err := Load(path, nil)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.NotesDir != "/env/notes" {
		t.Errorf("expected env to win over file, got %q", cfg.NotesDir)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("expected log_level warn, got %q", cfg.LogLevel)
	}
}

func TestFlagsOverrideEnv(t *testing.T) {
	t.Setenv("LEARNBASE_NOTES_DIR", "/env/notes")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("notes_dir", "", "")
	if err := flags.Parse([]string{"--notes_dir", "/flag/notes"}); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load("", flags)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.NotesDir != "/flag/notes" {
		t.Errorf("expected flags to win over env, got %q", cfg.NotesDir)
	}
}

func TestLoadRejectsBadLogLevel(t *testing.T) {
	t.Setenv("LEARNBASE_LOG_LEVEL", "loud")
	if _, err := Load("", nil); err == nil {
		t.Error("expected an invalid log level to be rejected")
	}
}
