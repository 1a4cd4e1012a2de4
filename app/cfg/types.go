package cfg

type Cfg struct {
	// Zotero configuration
	APIKey      string
	LibraryID   string
	LibraryType string

	// Processing configuration
	DryRun      bool
	Force       bool
	NoSubstack  bool
	NoLinkedIn  bool
	ReportFile  string
	DomainsFile string
	WorkerCount int

	// Streaming configuration
	Stream       bool
	PollInterval int
	Port         string
	APIAccessKey string

	// Storage configuration
	DBPath string

	// Fetch configuration
	FetchTimeout float64
	RateLimit    float64

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
