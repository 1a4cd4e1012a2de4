package cfg

import (
	"cmp"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Zotero configuration
	APIKey      string `long:"api-key" env:"ZOTERO_API_KEY" description:"Zotero Web API key (required)" required:"true"`
	LibraryID   string `long:"library-id" env:"ZOTERO_LIBRARY_ID" description:"Zotero library ID (required)" required:"true"`
	LibraryType string `long:"library-type" env:"ZOTERO_LIBRARY_TYPE" default:"user" choice:"user" choice:"group" description:"Zotero library type"`

	// Processing configuration
	DryRun      bool   `long:"dry-run" env:"DRY_RUN" description:"Report what would change without writing to the library"`
	Force       bool   `long:"force" env:"FORCE" description:"Reprocess items already marked as processed"`
	NoSubstack  bool   `long:"no-substack" env:"NO_SUBSTACK" description:"Skip Substack detection"`
	NoLinkedIn  bool   `long:"no-linkedin" env:"NO_LINKEDIN" description:"Skip LinkedIn detection"`
	ReportFile  string `long:"report" env:"REPORT_FILE" description:"Markdown report path (default Changes_YYYYMMDD.md)"`
	DomainsFile string `long:"domains-file" env:"DOMAINS_FILE" description:"YAML file with candidate custom domains to verify"`
	WorkerCount int    `long:"worker-count" env:"WORKER_COUNT" default:"5" description:"Number of background workers for item processing"`

	// Streaming configuration
	Stream       bool   `long:"stream" env:"STREAM" description:"Keep running and process library changes as they happen"`
	PollInterval int    `long:"poll-interval" env:"POLL_INTERVAL" default:"60" description:"Library polling interval in seconds (stream mode)"`
	Port         string `long:"port" env:"PORT" default:"8080" description:"HTTP server port (stream mode)"`
	APIAccessKey string `long:"api-access-key" env:"API_ACCESS_KEY" description:"API access key for authentication (optional)"`

	// Storage configuration
	DBPath string `long:"db-path" env:"DB_PATH" default:"./zot-comb.db" description:"Path to the local state database"`

	// Fetch configuration
	FetchTimeout float64 `long:"fetch-timeout" env:"FETCH_TIMEOUT" default:"15" description:"Page fetch timeout in seconds"`
	RateLimit    float64 `long:"rate-limit" env:"RATE_LIMIT" default:"2" description:"Maximum page fetches per second"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" description:"User agent string for HTTP requests (default browser-like)"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, America/New_York)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	if raw.NoSubstack && raw.NoLinkedIn {
		return nil, fmt.Errorf("--no-substack and --no-linkedin together leave nothing to do")
	}

	cfg := &Cfg{
		APIKey:       raw.APIKey,
		LibraryID:    raw.LibraryID,
		LibraryType:  raw.LibraryType,
		DryRun:       raw.DryRun,
		Force:        raw.Force,
		NoSubstack:   raw.NoSubstack,
		NoLinkedIn:   raw.NoLinkedIn,
		ReportFile:   raw.ReportFile,
		DomainsFile:  raw.DomainsFile,
		WorkerCount:  raw.WorkerCount,
		Stream:       raw.Stream,
		PollInterval: raw.PollInterval,
		Port:         raw.Port,
		APIAccessKey: raw.APIAccessKey,
		DBPath:       raw.DBPath,
		FetchTimeout: raw.FetchTimeout,
		RateLimit:    raw.RateLimit,
		UserAgent:    raw.UserAgent,
		Timezone:     raw.Timezone,
		Debug:        raw.Debug,
		Version:      GetVersion(),
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
			fmt.Printf("Timezone configured: %s\n", timezone)
		}
	}
	return nil
}
