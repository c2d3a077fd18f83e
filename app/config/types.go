package config

import (
	"feedrelay/app/payload"
)

// File is the top-level feeds configuration document.
type File struct {
	Feeds []FeedSpec `yaml:"feeds"`
}

// FeedSpec declares one feed: where to poll, how often and where to deliver.
type FeedSpec struct {
	Name       string        `yaml:"name"`
	URL        string        `yaml:"url"`
	Cron       string        `yaml:"cron"`
	Normalizer string        `yaml:"normalizer"`
	Webhooks   []WebhookSpec `yaml:"webhooks"`
}

// WebhookSpec declares one delivery target. The endpoint comes either from
// URL directly or from the environment variable named by URLEnv; deployments
// without the variable set simply skip the target.
type WebhookSpec struct {
	URL     string          `yaml:"url"`
	URLEnv  string          `yaml:"url_env"`
	Builder string          `yaml:"builder"`
	Options payload.Options `yaml:"options"`
}
