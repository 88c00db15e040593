// Package pins keeps the user's pinned locations and the active selection.
//
// The pinned list is persisted as JSON under a single key after every
// mutation. Storage is best-effort: read failures start from an empty list
// and write failures are logged, while the in-memory state stays
// authoritative for the session.
package pins

import (
	"encoding/json"
	"errors"
	"log"
	"sync"

	"github.com/i474232898/weather-dashboard/internal/store"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

// StorageKey is the fixed key the pinned list is stored under.
const StorageKey = "weather.pinnedLocations"

// Backend is the durable storage the store writes through to.
type Backend interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
}

// Store holds pinned locations (most recent first) and the active selection.
type Store struct {
	mu       sync.RWMutex
	backend  Backend
	pinned   []weather.Location
	active   weather.Location
	fallback weather.Location
}

// Open loads the pinned list from backend. The active selection starts at
// fallback.
func Open(backend Backend, fallback weather.Location) *Store {
	s := &Store{
		backend:  backend,
		fallback: fallback.Clone(),
		active:   fallback.Clone(),
	}
	s.pinned = s.load()
	return s
}

func (s *Store) load() []weather.Location {
	if s.backend == nil {
		return nil
	}
	raw, err := s.backend.Get(StorageKey)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			log.Printf("WARN: pins: could not read stored locations: %v", err)
		}
		return nil
	}

	var stored []weather.Location
	if err := json.Unmarshal(raw, &stored); err != nil {
		log.Printf("WARN: pins: stored locations are malformed, starting empty: %v", err)
		return nil
	}

	// Drop entries a hand-edited or older record may carry that Pin would
	// never have accepted.
	out := make([]weather.Location, 0, len(stored))
	seen := make(map[string]struct{}, len(stored))
	for _, loc := range stored {
		if !pinnable(loc) {
			continue
		}
		if _, dup := seen[loc.ID]; dup {
			continue
		}
		seen[loc.ID] = struct{}{}
		out = append(out, loc)
	}
	return out
}

func (s *Store) persistLocked() {
	if s.backend == nil {
		return
	}
	raw, err := json.Marshal(s.pinned)
	if err != nil {
		log.Printf("WARN: pins: encode failed: %v", err)
		return
	}
	if err := s.backend.Set(StorageKey, raw); err != nil {
		log.Printf("WARN: pins: write failed, keeping in-memory state: %v", err)
	}
}

// IsPinned reports whether id is pinned.
func (s *Store) IsPinned(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.indexLocked(id) >= 0
}

// Pin prepends a copy of loc. It is a no-op, returning false, when loc lacks
// an id or coordinates or is already pinned.
func (s *Store) Pin(loc weather.Location) bool {
	if !pinnable(loc) {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexLocked(loc.ID) >= 0 {
		return false
	}
	s.pinned = append([]weather.Location{loc.Clone()}, s.pinned...)
	s.persistLocked()
	return true
}

// Unpin removes id. If it was the active selection, the selection falls back
// to the fallback location. Reports whether anything was removed.
func (s *Store) Unpin(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return false
	}
	s.pinned = append(s.pinned[:i:i], s.pinned[i+1:]...)
	if s.active.ID == id {
		s.active = s.fallback.Clone()
	}
	s.persistLocked()
	return true
}

// SetActive replaces the active selection. loc need not be pinned.
func (s *Store) SetActive(loc weather.Location) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = loc.Clone()
}

// Active returns the current selection.
func (s *Store) Active() weather.Location {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active.Clone()
}

// Fallback returns the location used when nothing else is selected.
func (s *Store) Fallback() weather.Location {
	return s.fallback.Clone()
}

// Pinned returns a copy of the pinned list, most recent first.
func (s *Store) Pinned() []weather.Location {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]weather.Location, 0, len(s.pinned))
	for _, loc := range s.pinned {
		out = append(out, loc.Clone())
	}
	return out
}

// Len returns the number of pinned locations.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.pinned)
}

func (s *Store) indexLocked(id string) int {
	for i, loc := range s.pinned {
		if loc.ID == id {
			return i
		}
	}
	return -1
}

func pinnable(loc weather.Location) bool {
	return loc.ID != "" && loc.HasCoordinates()
}
