package config

import (
	"cmp"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"feedrelay/app/feed"
	"feedrelay/app/payload"
)

// Load reads and validates the feeds configuration file. Any invalid feed
// spec fails the whole load: configuration errors are fatal at startup, not
// at runtime.
func Load(path string) ([]FeedSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read feeds file: %w", err)
	}

	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse feeds file: %w", err)
	}

	for i := range file.Feeds {
		spec := &file.Feeds[i]
		spec.Normalizer = cmp.Or(spec.Normalizer, "default")

		if err := validate(spec); err != nil {
			return nil, fmt.Errorf("invalid feed spec %q: %w", spec.Name, err)
		}
	}

	return file.Feeds, nil
}

func validate(spec *FeedSpec) error {
	if spec.Name == "" {
		return fmt.Errorf("name is required")
	}
	if spec.URL == "" {
		return fmt.Errorf("url is required")
	}
	if spec.Cron == "" {
		return fmt.Errorf("cron is required")
	}

	for i, webhook := range spec.Webhooks {
		if webhook.Builder == "" {
			return fmt.Errorf("webhook at index %d: builder is required", i)
		}
		if webhook.URL != "" && webhook.URLEnv != "" {
			return fmt.Errorf("webhook at index %d: url and url_env are mutually exclusive", i)
		}
	}

	return nil
}

// BuildDefinitions assembles immutable feed definitions from validated
// specs, resolving normalizers, payload builders and webhook endpoints.
func BuildDefinitions(specs []FeedSpec, store feed.HistoryStore) ([]*feed.Definition, error) {
	defs := make([]*feed.Definition, 0, len(specs))

	for _, spec := range specs {
		normalizer, err := feed.NormalizerByName(spec.Normalizer)
		if err != nil {
			return nil, fmt.Errorf("feed %q: %w", spec.Name, err)
		}

		targets := make([]feed.WebhookTarget, 0, len(spec.Webhooks))
		for i, webhook := range spec.Webhooks {
			builder, err := payload.New(webhook.Builder, webhook.Options)
			if err != nil {
				return nil, fmt.Errorf("feed %q webhook %d: %w", spec.Name, i, err)
			}

			url := webhook.URL
			if webhook.URLEnv != "" {
				url = os.Getenv(webhook.URLEnv)
			}

			targets = append(targets, feed.WebhookTarget{URL: url, Builder: builder})
		}

		def, err := feed.NewDefinition(spec.Name, spec.URL, spec.Cron, normalizer, targets, store)
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}

	return defs, nil
}
