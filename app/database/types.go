package database

import (
	"time"
)

// KnownDomain is a custom domain confirmed to host a Substack
// publication, with how it was confirmed ("content-marker", "feed",
// "seed-file").
type KnownDomain struct {
	Host        string
	Source      string
	ConfirmedAt time.Time
}

// Run is one batch or streaming session with its counters.
type Run struct {
	ID            string
	Mode          string // "batch" or "stream"
	StartedAt     time.Time
	FinishedAt    *time.Time
	Processed     int
	SubstackFound int
	LinkedInFound int
	URLsCleaned   int
	Updated       int
	Errors        int
}

// Change is one journaled item update, the raw material for markdown
// reports and the /changes endpoint.
type Change struct {
	ID          int64
	RunID       string
	ItemKey     string
	WebsiteType string // "Substack Newsletter", "LinkedIn", or "" for URL-only cleanups
	Publication string
	Title       string
	URL         string
	ItemType    string
	Date        string
	Authors     string
	Applied     bool
	CreatedAt   time.Time
}
