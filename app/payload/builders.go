package payload

import (
	"fmt"
	"strings"

	"feedrelay/app/feed"
)

const maxThreadNameLen = 100

// Options carries the per-feed builder configuration.
type Options struct {
	// MentionRole is a role ID appended as a mention and allowed in
	// allowed_mentions. Empty disables mentions.
	MentionRole string `yaml:"mention_role"`
	// Tags maps diacritic-folded lowercase category labels to forum tag IDs.
	Tags map[string]string `yaml:"tags"`
}

// New resolves a configured builder by name. Unknown names are configuration
// errors and abort startup.
func New(name string, opts Options) (feed.Builder, error) {
	switch name {
	case "forum":
		return &ForumBuilder{opts: opts}, nil
	case "announce":
		return &AnnounceBuilder{opts: opts}, nil
	default:
		return nil, fmt.Errorf("unknown payload builder: %s", name)
	}
}

// ForumBuilder renders an item as a forum-channel post: a thread named after
// the title, markdown content and category-derived tags.
type ForumBuilder struct {
	opts Options
}

func (b *ForumBuilder) Build(item feed.Item) feed.Payload {
	var content strings.Builder
	if item.Title != "" {
		fmt.Fprintf(&content, "## %s\n\n", item.Title)
	}
	if item.Description != "" {
		content.WriteString(item.Description)
		content.WriteString("\n\n")
	}
	content.WriteString(item.Link)
	if b.opts.MentionRole != "" {
		fmt.Fprintf(&content, " <@&%s>", b.opts.MentionRole)
	}

	return feed.Payload{
		ThreadName:      truncateThreadName(item.Title),
		Content:         strings.TrimSpace(content.String()),
		AppliedTags:     b.appliedTags(item.Categories),
		AllowedMentions: allowedMentions(b.opts.MentionRole),
	}
}

func (b *ForumBuilder) appliedTags(categories []string) []string {
	var tags []string
	for _, category := range categories {
		if tag, ok := b.opts.Tags[foldCategory(category)]; ok && tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// AnnounceBuilder renders an item as a plain channel message of description
// and link.
type AnnounceBuilder struct {
	opts Options
}

func (b *AnnounceBuilder) Build(item feed.Item) feed.Payload {
	var content strings.Builder
	if item.Description != "" {
		content.WriteString(item.Description)
		content.WriteString("\n\n")
	}
	content.WriteString(item.Link)
	if b.opts.MentionRole != "" {
		fmt.Fprintf(&content, " <@&%s>", b.opts.MentionRole)
	}

	return feed.Payload{
		Content:         strings.TrimSpace(content.String()),
		AllowedMentions: allowedMentions(b.opts.MentionRole),
	}
}

func allowedMentions(role string) *feed.AllowedMentions {
	if role == "" {
		return nil
	}
	return &feed.AllowedMentions{Roles: []string{role}}
}

func truncateThreadName(title string) string {
	runes := []rune(title)
	if len(runes) <= maxThreadNameLen {
		return title
	}
	return string(runes[:maxThreadNameLen-3]) + "..."
}
