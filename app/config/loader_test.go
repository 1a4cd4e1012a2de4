package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeDomainsFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "domains.yml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write domains file: %v", err)
	}
	return path
}

func TestLoader_Load(t *testing.T) {
	path := writeDomainsFile(t, `domains:
  - host: www.Platformer.News
    verified: true
  - host: thedispatch.com
`)

	config, err := NewLoader(path).Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(config.Domains) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(config.Domains))
	}
	if config.Domains[0].Host != "platformer.news" {
		t.Errorf("Host should be normalized, got %q", config.Domains[0].Host)
	}
	if !config.Domains[0].Verified {
		t.Error("Verified flag lost")
	}
	if config.Domains[1].Verified {
		t.Error("Unverified entry must stay unverified")
	}
}

func TestLoader_MissingFileIsEmpty(t *testing.T) {
	config, err := NewLoader(filepath.Join(t.TempDir(), "nope.yml")).Load()
	if err != nil {
		t.Fatalf("Missing file must not error: %v", err)
	}
	if len(config.Domains) != 0 {
		t.Errorf("Expected empty config, got %d entries", len(config.Domains))
	}
}

func TestLoader_EmptyPathIsEmpty(t *testing.T) {
	config, err := NewLoader("").Load()
	if err != nil {
		t.Fatalf("Unset path must not error: %v", err)
	}
	if len(config.Domains) != 0 {
		t.Errorf("Expected empty config, got %d entries", len(config.Domains))
	}
}

func TestLoader_RejectsBlankHost(t *testing.T) {
	path := writeDomainsFile(t, `domains:
  - verified: true
`)

	if _, err := NewLoader(path).Load(); err == nil {
		t.Error("Entry without host must be rejected")
	}
}
