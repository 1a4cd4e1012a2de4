package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lysyi3m/zot-comb/app/zotero"
)

// DefaultItemTypes are the item types worth inspecting: mis-filed
// entries are almost always webpages, but already converted items are
// included so forced reruns can re-verify them.
var DefaultItemTypes = []string{"webpage", "blogPost", "forumPost"}

type SyncLibraryTask struct {
	Task
	client      ItemLister
	scheduler   TaskSchedulerInterface
	newItemTask func(item zotero.Item) TaskInterface
	itemTypes   []string
}

func NewSyncLibraryTask(client ItemLister, scheduler TaskSchedulerInterface, newItemTask func(item zotero.Item) TaskInterface, itemTypes []string) *SyncLibraryTask {
	if len(itemTypes) == 0 {
		itemTypes = DefaultItemTypes
	}
	return &SyncLibraryTask{
		Task:        NewTask(TaskTypeSyncLibrary, "library"),
		client:      client,
		scheduler:   scheduler,
		newItemTask: newItemTask,
		itemTypes:   itemTypes,
	}
}

func (t *SyncLibraryTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	items, err := t.client.AllItems(ctx, t.itemTypes...)
	if err != nil {
		return fmt.Errorf("failed to list library items: %w", err)
	}

	enqueued := 0
	for _, item := range items {
		if err := t.scheduler.EnqueueTask(t.newItemTask(item)); err != nil {
			slog.Warn("Failed to enqueue ProcessItemTask", "item_key", item.Key, "error", err)
			continue
		}
		enqueued++
	}

	slog.Info("Task completed",
		"type", "SyncLibrary",
		"duration", t.GetDuration(),
		"total", len(items),
		"enqueued", enqueued)

	return nil
}
