package database

import (
	"fmt"
)

var _ ChangeRepository = (*SQLChangeRepository)(nil)

type SQLChangeRepository struct {
	db *DB
}

func NewChangeRepository(db *DB) *SQLChangeRepository {
	return &SQLChangeRepository{db: db}
}

func (r *SQLChangeRepository) RecordChange(change Change) error {
	_, err := r.db.Exec(`
		INSERT INTO changes (run_id, item_key, website_type, publication,
		                     title, url, item_type, date, authors, applied)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, change.RunID, change.ItemKey, change.WebsiteType, change.Publication,
		change.Title, change.URL, change.ItemType, change.Date, change.Authors,
		boolToInt(change.Applied))
	if err != nil {
		return fmt.Errorf("failed to record change for item %s: %w", change.ItemKey, err)
	}
	return nil
}

func (r *SQLChangeRepository) RecentChanges(limit int) ([]Change, error) {
	if limit <= 0 {
		limit = 50
	}
	return r.query(`
		SELECT id, run_id, item_key, website_type, publication,
		       title, url, item_type, date, authors, applied, created_at
		FROM changes ORDER BY id DESC LIMIT ?
	`, limit)
}

func (r *SQLChangeRepository) ChangesForRun(runID string) ([]Change, error) {
	return r.query(`
		SELECT id, run_id, item_key, website_type, publication,
		       title, url, item_type, date, authors, applied, created_at
		FROM changes WHERE run_id = ? ORDER BY id
	`, runID)
}

func (r *SQLChangeRepository) query(q string, args ...any) ([]Change, error) {
	rows, err := r.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query changes: %w", err)
	}
	defer rows.Close()

	var changes []Change
	for rows.Next() {
		var c Change
		var applied int
		if err := rows.Scan(&c.ID, &c.RunID, &c.ItemKey, &c.WebsiteType,
			&c.Publication, &c.Title, &c.URL, &c.ItemType, &c.Date,
			&c.Authors, &applied, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan change: %w", err)
		}
		c.Applied = applied != 0
		changes = append(changes, c)
	}
	return changes, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
