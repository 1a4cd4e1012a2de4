package tasks

import (
	"context"
	"log/slog"
)

// DiscoverDomainTask verifies one candidate custom domain through its
// RSS feed and persists it on confirmation. Seed-file hosts are
// enqueued as these tasks at startup.
type DiscoverDomainTask struct {
	Task
	host       string
	source     string
	discoverer DomainConfirmer
	domains    DomainStore
}

func NewDiscoverDomainTask(host, source string, discoverer DomainConfirmer, domains DomainStore) *DiscoverDomainTask {
	return &DiscoverDomainTask{
		Task:       NewTask(TaskTypeDiscoverDomain, host),
		host:       host,
		source:     source,
		discoverer: discoverer,
		domains:    domains,
	}
}

func (t *DiscoverDomainTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if t.domains.Contains(t.host) {
		slog.Debug("Domain already confirmed", "host", t.host)
		return nil
	}

	// An unconfirmed candidate is not an error: the host may simply
	// not be a Substack publication.
	if !t.discoverer.Confirm(ctx, t.host) {
		slog.Info("Candidate domain not confirmed", "host", t.host)
		return nil
	}

	if err := t.domains.Add(t.host, t.source); err != nil {
		return err
	}

	slog.Info("Task completed",
		"type", "DiscoverDomain",
		"host", t.host,
		"duration", t.GetDuration(),
		"source", t.source)

	return nil
}
