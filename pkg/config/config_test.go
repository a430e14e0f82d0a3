package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFileDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: 9090\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.LLM.Model != "gpt-4o" {
		t.Errorf("LLM.Model = %q, want gpt-4o", cfg.LLM.Model)
	}
	if cfg.Storage.UploadDir != "uploaded_files" {
		t.Errorf("Storage.UploadDir = %q", cfg.Storage.UploadDir)
	}
	if cfg.Images.ProbeTimeoutSec != 5 {
		t.Errorf("Images.ProbeTimeoutSec = %d, want 5", cfg.Images.ProbeTimeoutSec)
	}
	if cfg.Exports.Driver != "fs" {
		t.Errorf("Exports.Driver = %q, want fs", cfg.Exports.Driver)
	}
}

func TestLoadFileMissingExplicitPath(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}
