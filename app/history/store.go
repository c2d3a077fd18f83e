package history

import (
	"fmt"
	"log/slog"
	"sync"
)

// Backend is the durable medium for delivered-item records. Implementations
// do not need to be safe for concurrent use; Store serializes all access.
type Backend interface {
	Has(feedKey, itemID string) (bool, error)
	Add(feedKey, itemID string) error
	Counts() (map[string]int, error)
	Close() error
}

// Store records which item identities have already been delivered per feed.
// Reads never fail the caller: a missing or unreadable backend reads as
// "nothing seen yet". Write failures are logged and swallowed so a broken
// store degrades to possible re-delivery instead of a stalled cycle.
type Store struct {
	mu      sync.Mutex
	backend Backend
}

func NewStore(backend Backend) *Store {
	return &Store{backend: backend}
}

// Open builds a store for the configured backend.
func Open(backend, path string) (*Store, error) {
	switch backend {
	case "json":
		return NewStore(NewJSONBackend(path)), nil
	case "sqlite":
		b, err := NewSQLiteBackend(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite history: %w", err)
		}
		return NewStore(b), nil
	default:
		return nil, fmt.Errorf("unknown history backend: %s", backend)
	}
}

func (s *Store) WasDelivered(feedKey, itemID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen, err := s.backend.Has(feedKey, itemID)
	if err != nil {
		slog.Warn("Delivery history read failed, treating item as unseen", "feed", feedKey, "item", itemID, "error", err)
		return false
	}
	return seen
}

func (s *Store) MarkDelivered(feedKey, itemID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.backend.Add(feedKey, itemID); err != nil {
		slog.Error("Failed to persist delivery mark", "feed", feedKey, "item", itemID, "error", err)
	}
}

// Stats returns per-feed delivered counts. Empty on backend failure.
func (s *Store) Stats() map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()

	counts, err := s.backend.Counts()
	if err != nil {
		slog.Warn("Failed to read delivery history stats", "error", err)
		return map[string]int{}
	}
	return counts
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.backend.Close()
}
