package database

import (
	"path/filepath"
	"testing"
)

func testDB(t *testing.T) *DB {
	t.Helper()

	db, err := NewConnection(filepath.Join(t.TempDir(), "state.db"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, _, err := RunMigrations(db); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}
	return db
}

func TestDomainRepository_AddAndContains(t *testing.T) {
	repo := NewDomainRepository(testDB(t))

	if repo.Contains("platformer.news") {
		t.Error("Fresh store should not contain any domain")
	}

	if err := repo.Add("www.Platformer.News", "content-marker"); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	if !repo.Contains("platformer.news") {
		t.Error("Host should be found after adding")
	}
	if !repo.Contains("www.platformer.news") {
		t.Error("www-prefixed lookup should normalize to the bare host")
	}
	if repo.Contains("other.example") {
		t.Error("Unknown host should not be found")
	}
}

func TestDomainRepository_AddIsIdempotent(t *testing.T) {
	repo := NewDomainRepository(testDB(t))

	if err := repo.Add("platformer.news", "feed"); err != nil {
		t.Fatalf("First add failed: %v", err)
	}
	if err := repo.Add("platformer.news", "content-marker"); err != nil {
		t.Fatalf("Re-adding a domain must not error: %v", err)
	}

	count, err := repo.Count()
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 domain after duplicate add, got %d", count)
	}

	domains, err := repo.All()
	if err != nil {
		t.Fatalf("All failed: %v", err)
	}
	if len(domains) != 1 || domains[0].Source != "feed" {
		t.Errorf("Original confirmation should be kept: %+v", domains)
	}
}

func TestRunAndChangeRepositories(t *testing.T) {
	db := testDB(t)
	runs := NewRunRepository(db)
	changes := NewChangeRepository(db)

	runID, err := runs.StartRun("batch")
	if err != nil {
		t.Fatalf("StartRun failed: %v", err)
	}

	change := Change{
		RunID:       runID,
		ItemKey:     "ABCD1234",
		WebsiteType: "Substack Newsletter",
		Publication: "Astral Codex Ten",
		Title:       "AI Sleeper Agents",
		URL:         "https://astralcodexten.substack.com/p/ai-sleeper-agents",
		ItemType:    "blogPost",
		Date:        "2024-01-29",
		Authors:     "Scott Alexander",
		Applied:     true,
	}
	if err := changes.RecordChange(change); err != nil {
		t.Fatalf("RecordChange failed: %v", err)
	}

	forRun, err := changes.ChangesForRun(runID)
	if err != nil {
		t.Fatalf("ChangesForRun failed: %v", err)
	}
	if len(forRun) != 1 || forRun[0].ItemKey != "ABCD1234" || !forRun[0].Applied {
		t.Errorf("Unexpected journaled change: %+v", forRun)
	}

	recent, err := changes.RecentChanges(10)
	if err != nil {
		t.Fatalf("RecentChanges failed: %v", err)
	}
	if len(recent) != 1 {
		t.Errorf("Expected 1 recent change, got %d", len(recent))
	}

	stats := RunStats{Processed: 5, SubstackFound: 2, Updated: 1, Errors: 0}
	if err := runs.FinishRun(runID, stats); err != nil {
		t.Fatalf("FinishRun failed: %v", err)
	}

	run, err := runs.GetRun(runID)
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if run == nil || run.Processed != 5 || run.SubstackFound != 2 || run.FinishedAt == nil {
		t.Errorf("Unexpected run record: %+v", run)
	}
}
