package config

// DomainsConfig is the seed file listing custom domains that host (or
// may host) Substack publications.
type DomainsConfig struct {
	Domains []DomainEntry `yaml:"domains"`
}

// DomainEntry is one candidate host. Verified entries are trusted
// as-is; the rest are confirmed through their RSS feed before use.
type DomainEntry struct {
	Host     string `yaml:"host"`
	Verified bool   `yaml:"verified"`
}
