package feed

import (
	"cmp"
	"fmt"

	"github.com/mmcdole/gofeed"
)

// RawItem is a parsed syndication entry as returned by the retrieval client.
type RawItem = gofeed.Item

// Normalizer extracts the fields one feed cares about from a raw item.
type Normalizer func(raw *RawItem) Item

// Identity returns the stable per-item key used for deduplication, falling
// back to the link when the source omits a GUID.
func Identity(raw *RawItem) string {
	if raw == nil {
		return ""
	}
	return cmp.Or(raw.GUID, raw.Link)
}

// DefaultNormalizer extracts the conventional syndication fields.
func DefaultNormalizer(raw *RawItem) Item {
	if raw == nil {
		return Item{}
	}

	item := Item{
		GUID:        Identity(raw),
		Title:       raw.Title,
		Description: cmp.Or(raw.Description, raw.Content),
		Link:        raw.Link,
		PublishedAt: raw.PublishedParsed,
	}

	if raw.Categories != nil {
		item.Categories = raw.Categories
	}

	return item
}

var normalizers = map[string]Normalizer{
	"default": DefaultNormalizer,
}

// NormalizerByName resolves a configured normalizer. Unknown names are
// configuration errors.
func NormalizerByName(name string) (Normalizer, error) {
	n, ok := normalizers[cmp.Or(name, "default")]
	if !ok {
		return nil, fmt.Errorf("unknown normalizer: %s", name)
	}
	return n, nil
}
