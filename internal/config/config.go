// Package config loads engine configuration from defaults, an optional
// YAML file, LEARNBASE_-prefixed environment variables, and command
// line flags, in that order of increasing precedence.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

const envPrefix = "LEARNBASE_"

// Config holds every tunable of the engine.
type Config struct {
	// NotesDir is where note markdown files live.
	NotesDir string `koanf:"notes_dir" validate:"required"`
	// HistoryDir is where per-session JSON records live.
	HistoryDir string `koanf:"history_dir" validate:"required"`
	// IndexPath is the SQLite session index; empty disables indexing.
	IndexPath string `koanf:"index_path"`
	// ToLearnPath is the markdown file holding the to-learn topic queue.
	ToLearnPath string `koanf:"to_learn_path" validate:"required"`
	// DefaultPattern is the schedule pattern for scheduled notes that
	// carry none of their own. Accepts a preset name or a raw pattern.
	DefaultPattern string `koanf:"default_pattern"`
	// GitRemote, when set, backs the notes directory with a git
	// repository that is synced before runs and committed to after.
	GitRemote string `koanf:"git_remote"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `koanf:"log_level" validate:"oneof=debug info warn error"`
}

// Load assembles the configuration. path may be empty (no file);
// flags may be nil (no flag overrides).
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	for key, value := range defaults() {
		if err := k.Set(key, value); err != nil {
			return nil, fmt.Errorf("config: setting default %s: %w", key, err)
		}
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("config: loading %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("config: loading environment: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
			return nil, fmt.Errorf("config: loading flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshaling: %w", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config: invalid configuration: %w", err)
	}
	return &cfg, nil
}

func defaults() map[string]any {
	base := baseDir()
	return map[string]any{
		"notes_dir":       filepath.Join(base, "notes"),
		"history_dir":     filepath.Join(base, "history"),
		"index_path":      filepath.Join(base, "sessions.db"),
		"to_learn_path":   filepath.Join(base, "to_learn.md"),
		"default_pattern": "moderate",
		"log_level":       "info",
	}
}

func baseDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".learnbase"
	}
	return filepath.Join(home, ".learnbase")
}
