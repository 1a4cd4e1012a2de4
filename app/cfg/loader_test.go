package cfg

import (
	"testing"
)

func TestGetVersion(t *testing.T) {
	// Test default version
	if GetVersion() == "" {
		t.Error("GetVersion should never return empty string")
	}

	version := GetVersion()
	if version != "dev" && version != "unknown" {
		// This is fine, version could be set at build time
		t.Logf("Version: %s", version)
	}
}

func TestConfigFields(t *testing.T) {
	cfg := &Cfg{
		APIKey:       "test-zotero-key",
		LibraryID:    "123456",
		LibraryType:  "user",
		DryRun:       true,
		Force:        false,
		ReportFile:   "Changes.md",
		DomainsFile:  "./domains.yml",
		WorkerCount:  5,
		Stream:       true,
		PollInterval: 60,
		Port:         "8080",
		APIAccessKey: "test-key",
		DBPath:       "./zot-comb.db",
		FetchTimeout: 15,
		RateLimit:    2,
		UserAgent:    "Test Agent",
		Timezone:     "UTC",
		Debug:        true,
		Version:      "test-version",
	}

	if cfg.APIKey != "test-zotero-key" {
		t.Errorf("Expected API key 'test-zotero-key', got '%s'", cfg.APIKey)
	}
	if cfg.LibraryID != "123456" {
		t.Errorf("Expected library ID '123456', got '%s'", cfg.LibraryID)
	}
	if cfg.LibraryType != "user" {
		t.Errorf("Expected library type 'user', got '%s'", cfg.LibraryType)
	}
	if !cfg.DryRun {
		t.Error("Expected dry run to be enabled")
	}
	if cfg.ReportFile != "Changes.md" {
		t.Errorf("Expected report file 'Changes.md', got '%s'", cfg.ReportFile)
	}
	if cfg.DomainsFile != "./domains.yml" {
		t.Errorf("Expected domains file './domains.yml', got '%s'", cfg.DomainsFile)
	}
	if cfg.WorkerCount != 5 {
		t.Errorf("Expected worker count 5, got %d", cfg.WorkerCount)
	}
	if !cfg.Stream {
		t.Error("Expected stream mode to be enabled")
	}
	if cfg.PollInterval != 60 {
		t.Errorf("Expected poll interval 60, got %d", cfg.PollInterval)
	}
	if cfg.Port != "8080" {
		t.Errorf("Expected port '8080', got '%s'", cfg.Port)
	}
	if cfg.APIAccessKey != "test-key" {
		t.Errorf("Expected API access key 'test-key', got '%s'", cfg.APIAccessKey)
	}
	if cfg.DBPath != "./zot-comb.db" {
		t.Errorf("Expected DB path './zot-comb.db', got '%s'", cfg.DBPath)
	}
	if cfg.FetchTimeout != 15 {
		t.Errorf("Expected fetch timeout 15, got %f", cfg.FetchTimeout)
	}
	if cfg.RateLimit != 2 {
		t.Errorf("Expected rate limit 2, got %f", cfg.RateLimit)
	}
	if cfg.UserAgent != "Test Agent" {
		t.Errorf("Expected user agent 'Test Agent', got '%s'", cfg.UserAgent)
	}
	if cfg.Timezone != "UTC" {
		t.Errorf("Expected timezone 'UTC', got '%s'", cfg.Timezone)
	}
	if !cfg.Debug {
		t.Error("Expected debug to be enabled")
	}
	if cfg.Version != "test-version" {
		t.Errorf("Expected version 'test-version', got '%s'", cfg.Version)
	}
}
