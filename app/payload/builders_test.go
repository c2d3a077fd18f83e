package payload

import (
	"strings"
	"testing"

	"feedrelay/app/feed"
)

func TestForumBuilder(t *testing.T) {
	builder, err := New("forum", Options{
		MentionRole: "1437881478506610828",
		Tags: map[string]string{
			"komentare": "1437883640921985035",
			"rusko":     "1437883756018012171",
		},
	})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	payload := builder.Build(feed.Item{
		Title:       "Test Title",
		Description: "Test Description",
		Link:        "https://example.com/item1",
		Categories:  []string{"Komentáre", "Šport"},
	})

	if payload.ThreadName != "Test Title" {
		t.Errorf("Expected thread name 'Test Title', got: %s", payload.ThreadName)
	}
	if !strings.HasPrefix(payload.Content, "## Test Title\n\n") {
		t.Errorf("Expected markdown heading, got: %s", payload.Content)
	}
	if !strings.Contains(payload.Content, "Test Description") {
		t.Errorf("Expected description in content, got: %s", payload.Content)
	}
	if !strings.HasSuffix(payload.Content, "https://example.com/item1 <@&1437881478506610828>") {
		t.Errorf("Expected link and mention at end, got: %s", payload.Content)
	}
	if len(payload.AppliedTags) != 1 || payload.AppliedTags[0] != "1437883640921985035" {
		t.Errorf("Expected diacritic-folded category to map to one tag, got: %v", payload.AppliedTags)
	}
	if payload.AllowedMentions == nil || len(payload.AllowedMentions.Roles) != 1 {
		t.Fatalf("Expected one allowed role mention, got: %+v", payload.AllowedMentions)
	}
}

func TestForumBuilderTruncatesThreadName(t *testing.T) {
	builder, _ := New("forum", Options{})

	title := strings.Repeat("x", 120)
	payload := builder.Build(feed.Item{Title: title, Link: "https://example.com"})

	if len([]rune(payload.ThreadName)) != 100 {
		t.Errorf("Expected thread name of 100 runes, got: %d", len([]rune(payload.ThreadName)))
	}
	if !strings.HasSuffix(payload.ThreadName, "...") {
		t.Errorf("Expected ellipsis suffix, got: %s", payload.ThreadName)
	}
	if !strings.HasPrefix(payload.ThreadName, strings.Repeat("x", 97)) {
		t.Errorf("Expected 97 title runes before the ellipsis, got: %s", payload.ThreadName)
	}
}

func TestForumBuilderPartialItem(t *testing.T) {
	builder, _ := New("forum", Options{})

	payload := builder.Build(feed.Item{Link: "https://example.com/item1"})

	if payload.ThreadName != "" {
		t.Errorf("Expected empty thread name for untitled item, got: %s", payload.ThreadName)
	}
	if payload.Content != "https://example.com/item1" {
		t.Errorf("Expected best-effort content of just the link, got: %s", payload.Content)
	}
	if payload.AllowedMentions != nil {
		t.Error("Expected no allowed mentions without a configured role")
	}
}

func TestAnnounceBuilder(t *testing.T) {
	builder, err := New("announce", Options{MentionRole: "1437202276392501369"})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	payload := builder.Build(feed.Item{
		Description: "Service disruption",
		Link:        "https://example.com/status",
	})

	want := "Service disruption\n\nhttps://example.com/status <@&1437202276392501369>"
	if payload.Content != want {
		t.Errorf("Expected content %q, got: %q", want, payload.Content)
	}
	if payload.ThreadName != "" {
		t.Errorf("Expected no thread name, got: %s", payload.ThreadName)
	}
}

func TestUnknownBuilder(t *testing.T) {
	if _, err := New("carrier-pigeon", Options{}); err == nil {
		t.Error("Expected error for unknown builder")
	}
}

func TestFoldCategory(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Komentáre", "komentare"},
		{"Ficova vláda", "ficova vlada"},
		{"RUSKO", "rusko"},
		{"školstvo", "skolstvo"},
		{"plain", "plain"},
	}

	for _, tt := range tests {
		if got := foldCategory(tt.in); got != tt.want {
			t.Errorf("foldCategory(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
