package feed

import (
	"time"
)

// Item is the normalized representation of one raw feed entry. Fields the
// source does not provide stay zero valued; normalization never fails.
type Item struct {
	GUID        string
	Title       string
	Description string
	Link        string
	Categories  []string
	PublishedAt *time.Time
}

// Payload is the outbound webhook message body.
type Payload struct {
	Content         string           `json:"content"`
	ThreadName      string           `json:"thread_name,omitempty"`
	AppliedTags     []string         `json:"applied_tags,omitempty"`
	AllowedMentions *AllowedMentions `json:"allowed_mentions,omitempty"`
}

type AllowedMentions struct {
	Roles []string `json:"roles"`
}

// Builder renders a normalized item into a webhook payload. Implementations
// are pure: no I/O, and partial items degrade to a best-effort payload.
type Builder interface {
	Build(item Item) Payload
}

// WebhookTarget pairs an endpoint with the builder that formats payloads for
// it. A blank URL is tolerated and skipped at dispatch time, since a
// deployment may omit the credentials for a given target.
type WebhookTarget struct {
	URL     string
	Builder Builder
}

// Definition describes one feed: where to fetch it, how often, how to
// normalize its items and where to deliver them. Definitions are built once
// at startup and never mutated.
type Definition struct {
	Name     string
	URL      string
	Cadence  string
	Webhooks []WebhookTarget

	normalize Normalizer
	isNew     func(itemID string, mark bool) bool
}

// Normalize extracts this feed's fields from a raw item.
func (d *Definition) Normalize(raw *RawItem) Item {
	return d.normalize(raw)
}

// IsNew reports whether the identity has not been delivered yet for this
// feed, optionally recording it as delivered in the same call. This is the
// only point where the delivery history is touched.
func (d *Definition) IsNew(itemID string, mark bool) bool {
	return d.isNew(itemID, mark)
}
