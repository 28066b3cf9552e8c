package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestAuthorFromConfigFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("author: Config Author\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := cfg.Author(); got != "Config Author" {
		t.Errorf("Author: got %q, want %q", got, "Config Author")
	}
}

func TestAuthorFromEnv(t *testing.T) {
	t.Setenv("GNEW_AUTHOR", "Env Author")

	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := cfg.Author(); got != "Env Author" {
		t.Errorf("Author: got %q, want %q", got, "Env Author")
	}
}

func TestAuthorFallsBackToUser(t *testing.T) {
	t.Setenv("GNEW_AUTHOR", "")
	t.Setenv("USER", "shelluser")

	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := cfg.Author(); got != "shelluser" {
		t.Errorf("Author: got %q, want %q", got, "shelluser")
	}
}

func TestAuthorDefaultsToUnknown(t *testing.T) {
	t.Setenv("GNEW_AUTHOR", "")
	t.Setenv("USER", "")

	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := cfg.Author(); got != "unknown" {
		t.Errorf("Author: got %q, want unknown", got)
	}
}

func TestMissingConfigFileIsFine(t *testing.T) {
	if _, err := Load(t.TempDir()); err != nil {
		t.Errorf("Load without config.yaml: %v", err)
	}
}
