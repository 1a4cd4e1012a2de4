package config

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/lysyi3m/zot-comb/app/substack"
)

// Loader handles loading and validation of the domains seed file.
type Loader struct {
	path string
}

func NewLoader(path string) *Loader {
	return &Loader{path: path}
}

// Load reads the seed file. A missing or unset path yields an empty
// config: the seed file is optional.
func (l *Loader) Load() (*DomainsConfig, error) {
	if l.path == "" {
		return &DomainsConfig{}, nil
	}
	if _, err := os.Stat(l.path); os.IsNotExist(err) {
		slog.Warn("Domains file not found, skipping", "path", l.path)
		return &DomainsConfig{}, nil
	}

	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read domains file: %w", err)
	}

	var config DomainsConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := l.normalize(&config); err != nil {
		return nil, fmt.Errorf("invalid domains file %s: %w", l.path, err)
	}

	slog.Info("Domains file loaded", "path", l.path, "entries", len(config.Domains))
	return &config, nil
}

// normalize lowercases hosts, strips www prefixes and rejects entries
// that do not parse as a host at all.
func (l *Loader) normalize(config *DomainsConfig) error {
	for i := range config.Domains {
		entry := &config.Domains[i]
		if entry.Host == "" {
			return fmt.Errorf("entry %d: host is required", i)
		}

		host := substack.Host(entry.Host)
		if host == "" {
			return fmt.Errorf("entry %d: invalid host %q", i, entry.Host)
		}
		entry.Host = host
	}
	return nil
}
