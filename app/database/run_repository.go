package database

import (
	"database/sql"
	"fmt"
	"math/rand"
	"time"
)

var _ RunRepository = (*SQLRunRepository)(nil)

type SQLRunRepository struct {
	db *DB
}

func NewRunRepository(db *DB) *SQLRunRepository {
	return &SQLRunRepository{db: db}
}

func (r *SQLRunRepository) StartRun(mode string) (string, error) {
	id := fmt.Sprintf("%d-%04d", time.Now().UnixNano(), rand.Intn(10000))

	_, err := r.db.Exec(`INSERT INTO runs (id, mode) VALUES (?, ?)`, id, mode)
	if err != nil {
		return "", fmt.Errorf("failed to start run: %w", err)
	}
	return id, nil
}

func (r *SQLRunRepository) FinishRun(id string, stats RunStats) error {
	_, err := r.db.Exec(`
		UPDATE runs
		SET finished_at = CURRENT_TIMESTAMP,
		    processed = ?, substack_found = ?, linkedin_found = ?,
		    urls_cleaned = ?, updated = ?, errors = ?
		WHERE id = ?
	`, stats.Processed, stats.SubstackFound, stats.LinkedInFound,
		stats.URLsCleaned, stats.Updated, stats.Errors, id)
	if err != nil {
		return fmt.Errorf("failed to finish run %s: %w", id, err)
	}
	return nil
}

func (r *SQLRunRepository) GetRun(id string) (*Run, error) {
	var run Run
	err := r.db.QueryRow(`
		SELECT id, mode, started_at, finished_at,
		       processed, substack_found, linkedin_found,
		       urls_cleaned, updated, errors
		FROM runs WHERE id = ?
	`, id).Scan(&run.ID, &run.Mode, &run.StartedAt, &run.FinishedAt,
		&run.Processed, &run.SubstackFound, &run.LinkedInFound,
		&run.URLsCleaned, &run.Updated, &run.Errors)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run %s: %w", id, err)
	}
	return &run, nil
}
