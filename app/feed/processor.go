package feed

import (
	"context"
	"log/slog"
)

// FeedFetcher retrieves a feed's current items.
type FeedFetcher interface {
	Fetch(ctx context.Context, url string) ([]*RawItem, error)
}

// Dispatcher delivers a payload to a webhook endpoint.
type Dispatcher interface {
	Send(ctx context.Context, url string, payload any) error
}

// Processor runs one feed's poll cycle: fetch, filter against the delivery
// history and fan out payloads to the feed's webhook targets.
type Processor struct {
	fetcher FeedFetcher
	sender  Dispatcher
}

func NewProcessor(fetcher FeedFetcher, sender Dispatcher) *Processor {
	return &Processor{fetcher: fetcher, sender: sender}
}

// Run processes a single cycle for one feed. All errors are handled
// internally: a fetch failure abandons this feed's cycle without touching
// the delivery history, and a dispatch failure for one target never blocks
// other targets or items.
//
// Each item is checked and marked in a single IsNew call before any dispatch
// attempt, so a crash mid-dispatch can never replay the item on restart.
// A marked item whose dispatch fails is not retried: at-most-once delivery
// wins over guaranteed delivery.
func (p *Processor) Run(ctx context.Context, def *Definition) {
	rawItems, err := p.fetcher.Fetch(ctx, def.URL)
	if err != nil {
		slog.Error("Feed fetch failed, cycle abandoned", "feed", def.Name, "url", def.URL, "error", err)
		return
	}

	newCount := 0
	dispatched := 0
	failed := 0

	for _, raw := range rawItems {
		item := def.Normalize(raw)

		if !def.IsNew(Identity(raw), true) {
			continue
		}
		newCount++

		for _, target := range def.Webhooks {
			if target.URL == "" {
				continue
			}

			payload := target.Builder.Build(item)
			if err := p.sender.Send(ctx, target.URL, payload); err != nil {
				failed++
				slog.Error("Webhook dispatch failed", "feed", def.Name, "item", Identity(raw), "error", err)
				continue
			}
			dispatched++
		}
	}

	slog.Info("Feed cycle completed",
		"feed", def.Name,
		"total", len(rawItems),
		"new", newCount,
		"dispatched", dispatched,
		"failed", failed)
}
