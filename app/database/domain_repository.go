package database

import (
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
)

var _ DomainRepository = (*SQLDomainRepository)(nil)

// SQLDomainRepository persists confirmed custom Substack domains so a
// domain confirmed once (by content markers or its RSS feed) never
// needs re-confirmation in later runs.
type SQLDomainRepository struct {
	db *DB
}

func NewDomainRepository(db *DB) *SQLDomainRepository {
	return &SQLDomainRepository{db: db}
}

// Contains reports whether a host has been confirmed. A lookup miss
// is not an error: it just means "not confirmed yet".
func (r *SQLDomainRepository) Contains(host string) bool {
	host = normalizeHost(host)
	if host == "" {
		return false
	}

	var one int
	err := r.db.QueryRow(`SELECT 1 FROM known_domains WHERE host = ?`, host).Scan(&one)
	if err == sql.ErrNoRows {
		return false
	}
	if err != nil {
		slog.Warn("Known-domain lookup failed", "host", host, "error", err)
		return false
	}
	return true
}

// Add confirms a host. Re-confirming is a no-op.
func (r *SQLDomainRepository) Add(host, source string) error {
	host = normalizeHost(host)
	if host == "" {
		return fmt.Errorf("empty host")
	}

	_, err := r.db.Exec(`
		INSERT INTO known_domains (host, source) VALUES (?, ?)
		ON CONFLICT(host) DO NOTHING
	`, host, source)
	if err != nil {
		return fmt.Errorf("failed to add known domain %s: %w", host, err)
	}
	return nil
}

func (r *SQLDomainRepository) All() ([]KnownDomain, error) {
	rows, err := r.db.Query(`SELECT host, source, confirmed_at FROM known_domains ORDER BY host`)
	if err != nil {
		return nil, fmt.Errorf("failed to list known domains: %w", err)
	}
	defer rows.Close()

	var domains []KnownDomain
	for rows.Next() {
		var d KnownDomain
		if err := rows.Scan(&d.Host, &d.Source, &d.ConfirmedAt); err != nil {
			return nil, fmt.Errorf("failed to scan known domain: %w", err)
		}
		domains = append(domains, d)
	}
	return domains, rows.Err()
}

func (r *SQLDomainRepository) Count() (int, error) {
	var count int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM known_domains`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count known domains: %w", err)
	}
	return count, nil
}

func normalizeHost(host string) string {
	host = strings.ToLower(strings.TrimSpace(host))
	return strings.TrimPrefix(host, "www.")
}
