package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// JSONBackend keeps the delivery record as a single JSON file mapping feed
// key to a set of delivered item identities. Every write loads the full
// record, adds the mark and replaces the file through a temp-file rename, so
// a crash mid-write leaves the previous record intact.
type JSONBackend struct {
	path string
}

func NewJSONBackend(path string) *JSONBackend {
	return &JSONBackend{path: path}
}

func (b *JSONBackend) Has(feedKey, itemID string) (bool, error) {
	record := b.load()
	return record[feedKey][itemID], nil
}

func (b *JSONBackend) Add(feedKey, itemID string) error {
	record := b.load()

	if record[feedKey] == nil {
		record[feedKey] = make(map[string]bool)
	}
	record[feedKey][itemID] = true

	return b.replace(record)
}

func (b *JSONBackend) Counts() (map[string]int, error) {
	record := b.load()

	counts := make(map[string]int, len(record))
	for feedKey, items := range record {
		counts[feedKey] = len(items)
	}
	return counts, nil
}

func (b *JSONBackend) Close() error {
	return nil
}

// load reads the full record. An absent or corrupt file reads as empty:
// losing history is recoverable (items re-deliver once), failing the caller
// is not.
func (b *JSONBackend) load() map[string]map[string]bool {
	record := make(map[string]map[string]bool)

	data, err := os.ReadFile(b.path)
	if err != nil {
		return record
	}

	if err := json.Unmarshal(data, &record); err != nil {
		return make(map[string]map[string]bool)
	}

	return record
}

func (b *JSONBackend) replace(record map[string]map[string]bool) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode delivery record: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(b.path), 0o755); err != nil {
		return fmt.Errorf("failed to create history directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(b.path), ".sent-items-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write delivery record: %w", err)
	}

	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to flush delivery record: %w", err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), b.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace delivery record: %w", err)
	}

	return nil
}
