package feed

import (
	"fmt"
)

// HistoryStore is the durable record of delivered item identities.
type HistoryStore interface {
	WasDelivered(feedKey, itemID string) bool
	MarkDelivered(feedKey, itemID string)
}

// NewDefinition validates and assembles a feed definition. Required fields
// missing here are configuration errors and abort startup; nothing is
// validated again at runtime.
func NewDefinition(name, url, cadence string, normalize Normalizer, webhooks []WebhookTarget, store HistoryStore) (*Definition, error) {
	if name == "" {
		return nil, fmt.Errorf("feed name is required")
	}
	if url == "" {
		return nil, fmt.Errorf("feed URL is required for %s", name)
	}
	if cadence == "" {
		return nil, fmt.Errorf("cadence expression is required for %s", name)
	}
	if normalize == nil {
		return nil, fmt.Errorf("normalizer is required for %s", name)
	}
	if store == nil {
		return nil, fmt.Errorf("history store is required for %s", name)
	}

	return &Definition{
		Name:      name,
		URL:       url,
		Cadence:   cadence,
		Webhooks:  webhooks,
		normalize: normalize,
		isNew: func(itemID string, mark bool) bool {
			// An item without a stable identity cannot be deduplicated;
			// skip it rather than deliver it on every cycle.
			if itemID == "" {
				return false
			}
			if store.WasDelivered(name, itemID) {
				return false
			}
			if mark {
				store.MarkDelivered(name, itemID)
			}
			return true
		},
	}, nil
}
