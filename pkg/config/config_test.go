package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Namespace != "" {
		t.Fatalf("expected zero-value config, got %+v", cfg)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := "namespace: survival/medical\npublisher_id: \"@acme\"\npublisher_name: Acme Publishing\nkey_path: /etc/axm/key.hex\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Namespace != "survival/medical" {
		t.Fatalf("Namespace = %q, want survival/medical", cfg.Namespace)
	}
	if cfg.PublisherID != "@acme" {
		t.Fatalf("PublisherID = %q, want @acme", cfg.PublisherID)
	}
}

func TestStringOr(t *testing.T) {
	if got := StringOr("explicit", "fallback"); got != "explicit" {
		t.Fatalf("StringOr() = %q, want explicit", got)
	}
	if got := StringOr("", "fallback"); got != "fallback" {
		t.Fatalf("StringOr() = %q, want fallback", got)
	}
}
