package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileGivesZeroConfig(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "ry.yaml"))
	if err != nil {
		t.Fatalf("a missing file must not be an error: %v", err)
	}
	if len(cfg.ModulePaths) != 0 || cfg.HistoryFile != "" {
		t.Errorf("expected the zero configuration, got %+v", cfg)
	}
}

func TestLoadFromDir(t *testing.T) {
	dir := t.TempDir()
	content := `
module_paths:
  - ./vendor/ry
  - /opt/ry/modules
history_file: /tmp/ry_history
`
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromDir(dir)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(cfg.ModulePaths) != 2 || cfg.ModulePaths[0] != "./vendor/ry" {
		t.Errorf("unexpected module paths: %v", cfg.ModulePaths)
	}
	if cfg.HistoryFile != "/tmp/ry_history" {
		t.Errorf("unexpected history file: %q", cfg.HistoryFile)
	}
}

func TestLoadRejectsBadYAML(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte("module_paths: ["), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFromDir(dir); err == nil {
		t.Fatal("expected an error for malformed YAML")
	}
}
