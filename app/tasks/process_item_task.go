package tasks

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"

	"github.com/lysyi3m/zot-comb/app/database"
	"github.com/lysyi3m/zot-comb/app/reconcile"
	"github.com/lysyi3m/zot-comb/app/zotero"
)

type ProcessItemTask struct {
	Task
	item       zotero.Item
	reconciler ItemReconciler
	client     ItemUpdater
	changes    database.ChangeRepository
	stats      *Stats
	runID      string
	dryRun     bool
}

func NewProcessItemTask(item zotero.Item, reconciler ItemReconciler, client ItemUpdater, changes database.ChangeRepository, stats *Stats, runID string, dryRun bool) *ProcessItemTask {
	return &ProcessItemTask{
		Task:       NewTask(TaskTypeProcessItem, item.Key),
		item:       item,
		reconciler: reconciler,
		client:     client,
		changes:    changes,
		stats:      stats,
		runID:      runID,
		dryRun:     dryRun,
	}
}

func (t *ProcessItemTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	// Counters are bumped on the first attempt only so a retried task
	// is not counted twice.
	if t.GetRetryCount() == 0 {
		t.stats.AddProcessed()
	}

	res, err := t.reconciler.Run(ctx, t.item)
	if err != nil {
		if !t.CanRetry() {
			t.stats.AddError()
		}
		return fmt.Errorf("failed to reconcile item: %w", err)
	}

	if res == nil {
		slog.Debug("Item needs no changes", "item_key", t.item.Key)
		return nil
	}

	if t.GetRetryCount() == 0 {
		switch res.WebsiteType {
		case reconcile.WebsiteTypeSubstack:
			t.stats.AddSubstackFound()
		case reconcile.WebsiteTypeLinkedIn:
			t.stats.AddLinkedInFound()
		}
		if res.URLCleaned {
			t.stats.AddURLCleaned()
		}
	}

	if res.Update == nil {
		return nil
	}

	applied := false
	if t.dryRun {
		slog.Info("Dry run, update not applied", "item_key", t.item.Key, "item_type", res.Update.ItemType)
	} else {
		if err := t.client.UpdateItem(ctx, *res.Update); err != nil {
			if !t.CanRetry() {
				t.stats.AddError()
			}
			return fmt.Errorf("failed to update item: %w", err)
		}
		applied = true
	}

	t.journal(res, applied)
	t.stats.AddUpdated()

	slog.Info("Task completed",
		"type", "ProcessItem",
		"item_key", t.item.Key,
		"duration", t.GetDuration(),
		"website_type", res.WebsiteType,
		"item_type", res.Update.ItemType,
		"applied", applied)

	return nil
}

// journal records the change for reports and the API. A journal
// failure is logged but never fails the task: the library update
// already happened.
func (t *ProcessItemTask) journal(res *reconcile.Result, applied bool) {
	change := database.Change{
		RunID:       t.runID,
		ItemKey:     t.item.Key,
		WebsiteType: res.WebsiteType,
		Publication: res.Publication,
		Title:       res.Title,
		URL:         cmp.Or(res.Update.URL, t.item.Data.URL),
		ItemType:    cmp.Or(res.Update.ItemType, t.item.Data.ItemType),
		Date:        res.Date,
		Authors:     res.Authors,
		Applied:     applied,
	}

	if err := t.changes.RecordChange(change); err != nil {
		slog.Warn("Failed to journal change", "item_key", t.item.Key, "error", err)
	}
}
