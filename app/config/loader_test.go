package config

import (
	"os"
	"path/filepath"
	"testing"
)

// mockStore implements feed.HistoryStore
type mockStore struct{}

func (mockStore) WasDelivered(feedKey, itemID string) bool { return false }
func (mockStore) MarkDelivered(feedKey, itemID string)     {}

func writeFeedsFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "feeds.yml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write feeds file: %v", err)
	}
	return path
}

func TestLoadValidConfig(t *testing.T) {
	path := writeFeedsFile(t, `
feeds:
  - name: dennikn
    url: https://dennikn.sk/feed
    cron: "* * * * *"
    webhooks:
      - url_env: DENNIKN_WEBHOOK
        builder: forum
        options:
          mention_role: "1437881478506610828"
          tags:
            komentare: "1437883640921985035"
  - name: zssk
    url: https://mastodon.social/@zssk_mimoriadne.rss
    cron: "* * * * *"
    webhooks:
      - url: https://hooks.example.com/zssk
        builder: announce
`)

	specs, err := Load(path)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if len(specs) != 2 {
		t.Fatalf("Expected 2 feed specs, got: %d", len(specs))
	}
	if specs[0].Name != "dennikn" {
		t.Errorf("Expected name 'dennikn', got: %s", specs[0].Name)
	}
	if specs[0].Normalizer != "default" {
		t.Errorf("Expected normalizer default applied, got: %s", specs[0].Normalizer)
	}
	if specs[0].Webhooks[0].Options.MentionRole != "1437881478506610828" {
		t.Errorf("Expected mention role carried through, got: %s", specs[0].Webhooks[0].Options.MentionRole)
	}
	if specs[1].Webhooks[0].URL != "https://hooks.example.com/zssk" {
		t.Errorf("Expected literal webhook URL, got: %s", specs[1].Webhooks[0].URL)
	}
}

func TestLoadMissingRequiredFields(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"missing name", "feeds:\n  - url: https://example.com/feed\n    cron: \"* * * * *\"\n"},
		{"missing url", "feeds:\n  - name: a\n    cron: \"* * * * *\"\n"},
		{"missing cron", "feeds:\n  - name: a\n    url: https://example.com/feed\n"},
		{"missing builder", "feeds:\n  - name: a\n    url: https://example.com/feed\n    cron: \"* * * * *\"\n    webhooks:\n      - url: https://hooks.example.com/a\n"},
		{"url and url_env", "feeds:\n  - name: a\n    url: https://example.com/feed\n    cron: \"* * * * *\"\n    webhooks:\n      - url: https://hooks.example.com/a\n        url_env: A_WEBHOOK\n        builder: announce\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFeedsFile(t, tt.content)
			if _, err := Load(path); err == nil {
				t.Error("Expected validation error")
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yml")); err == nil {
		t.Error("Expected error for missing feeds file")
	}
}

func TestLoadMalformedYAML(t *testing.T) {
	path := writeFeedsFile(t, "feeds:\n  - name: [unclosed\n")
	if _, err := Load(path); err == nil {
		t.Error("Expected error for malformed YAML")
	}
}

func TestBuildDefinitions(t *testing.T) {
	t.Setenv("TEST_FEED_WEBHOOK", "https://hooks.example.com/from-env")

	specs := []FeedSpec{
		{
			Name:       "a",
			URL:        "https://example.com/feed",
			Cron:       "* * * * *",
			Normalizer: "default",
			Webhooks: []WebhookSpec{
				{URLEnv: "TEST_FEED_WEBHOOK", Builder: "announce"},
				{URLEnv: "TEST_FEED_WEBHOOK_UNSET", Builder: "announce"},
			},
		},
	}

	defs, err := BuildDefinitions(specs, mockStore{})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if len(defs) != 1 {
		t.Fatalf("Expected 1 definition, got: %d", len(defs))
	}
	if defs[0].Webhooks[0].URL != "https://hooks.example.com/from-env" {
		t.Errorf("Expected endpoint resolved from environment, got: %s", defs[0].Webhooks[0].URL)
	}
	// Unset variable leaves the target blank; dispatch skips it silently.
	if defs[0].Webhooks[1].URL != "" {
		t.Errorf("Expected blank endpoint for unset variable, got: %s", defs[0].Webhooks[1].URL)
	}
}

func TestBuildDefinitionsUnknownBuilder(t *testing.T) {
	specs := []FeedSpec{
		{
			Name:       "a",
			URL:        "https://example.com/feed",
			Cron:       "* * * * *",
			Normalizer: "default",
			Webhooks:   []WebhookSpec{{URL: "https://hooks.example.com/a", Builder: "bogus"}},
		},
	}

	if _, err := BuildDefinitions(specs, mockStore{}); err == nil {
		t.Error("Expected error for unknown builder")
	}
}

func TestBuildDefinitionsUnknownNormalizer(t *testing.T) {
	specs := []FeedSpec{
		{Name: "a", URL: "https://example.com/feed", Cron: "* * * * *", Normalizer: "bogus"},
	}

	if _, err := BuildDefinitions(specs, mockStore{}); err == nil {
		t.Error("Expected error for unknown normalizer")
	}
}
