package database

// DomainRepository is the persistent allow-list of confirmed custom
// Substack domains. Read-mostly append-only: safe for concurrent
// reads with single-writer appends.
type DomainRepository interface {
	Contains(host string) bool
	Add(host, source string) error
	All() ([]KnownDomain, error)
	Count() (int, error)
}

// RunRepository tracks processing sessions and their counters.
type RunRepository interface {
	StartRun(mode string) (string, error)
	FinishRun(id string, stats RunStats) error
	GetRun(id string) (*Run, error)
}

// ChangeRepository journals item updates.
type ChangeRepository interface {
	RecordChange(change Change) error
	RecentChanges(limit int) ([]Change, error)
	ChangesForRun(runID string) ([]Change, error)
}

// RunStats are the counters accumulated over one session.
type RunStats struct {
	Processed     int
	SubstackFound int
	LinkedInFound int
	URLsCleaned   int
	Updated       int
	Errors        int
}
