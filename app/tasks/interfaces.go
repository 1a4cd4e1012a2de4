package tasks

import (
	"context"

	"github.com/lysyi3m/zot-comb/app/reconcile"
	"github.com/lysyi3m/zot-comb/app/zotero"
)

// TaskSchedulerInterface defines the interface for task scheduling
// operations. Used by the main application to manage background task
// processing.
// Example usage:
//
//	scheduler := NewScheduler(workerCount)
//	scheduler.Start()
//	defer scheduler.Stop()
//	scheduler.EnqueueTask(NewProcessItemTask(...))
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
	Drain(ctx context.Context) error
}

// ItemLister pages library items by item type.
type ItemLister interface {
	AllItems(ctx context.Context, itemTypes ...string) ([]zotero.Item, error)
}

// ItemUpdater applies a partial item update to the library.
type ItemUpdater interface {
	UpdateItem(ctx context.Context, data zotero.ItemData) error
}

// ItemReconciler decides what, if anything, to change on an item.
type ItemReconciler interface {
	Run(ctx context.Context, item zotero.Item) (*reconcile.Result, error)
}

// DomainConfirmer checks whether a host serves a Substack publication.
type DomainConfirmer interface {
	Confirm(ctx context.Context, host string) bool
}

// DomainStore persists confirmed custom domains.
type DomainStore interface {
	Contains(host string) bool
	Add(host, source string) error
}
