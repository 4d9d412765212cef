package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CONFIG_PATH", filepath.Join(dir, "does-not-exist.toml"))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Batch.StartSize != Default().Batch.StartSize {
		t.Errorf("expected default batch start size, got %d", cfg.Batch.StartSize)
	}
}

func TestLoadUnknownSectionIsFatal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "crawld.toml")
	contents := "[nosuchsection]\nfoo = \"bar\"\n"
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONFIG_PATH", path)

	if _, err := Load(); err == nil {
		t.Error("expected error for unrecognized top-level section")
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "crawld.toml")
	contents := "[batch]\nstart_size = 10\nmax_size = 200\n"
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONFIG_PATH", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Batch.StartSize != 10 || cfg.Batch.MaxSize != 200 {
		t.Errorf("expected overridden batch config, got %+v", cfg.Batch)
	}
}
