package zotero

import (
	"context"
	"log/slog"
	"time"
)

const (
	defaultPollInterval = 30 * time.Second
	maxBackoff          = 10 * time.Minute
)

// Poller follows library changes through the API's incremental-sync
// contract: it remembers the last seen library version and asks for
// items modified since it. Failures back off exponentially; a
// successful poll resets the delay. The reconciliation downstream is
// stateless, so a missed or duplicated delivery is harmless.
type Poller struct {
	client      *Client
	interval    time.Duration
	lastVersion int
}

func NewPoller(client *Client, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	return &Poller{client: client, interval: interval}
}

// Run polls until the context is cancelled, sending changed items to
// out. The channel is closed on return.
func (p *Poller) Run(ctx context.Context, out chan<- Item) error {
	defer close(out)

	version, err := p.client.Version(ctx)
	if err != nil {
		return err
	}
	p.lastVersion = version
	slog.Info("Following library changes", "since_version", version, "interval", p.interval.String())

	delay := p.interval

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}

		items, newVersion, err := p.client.ChangedItems(ctx, p.lastVersion)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			delay = backoff(delay)
			slog.Warn("Change poll failed, backing off", "error", err, "retry_in", delay.String())
			continue
		}
		delay = p.interval

		if len(items) == 0 {
			continue
		}

		slog.Info("Library changed", "items", len(items), "version", newVersion)
		for _, item := range items {
			select {
			case out <- item:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		p.lastVersion = newVersion
	}
}

func backoff(current time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}
