// Package history keeps the bounded, newest-first log of completed
// translations and persists it as one JSON blob.
package history

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/valpere/glosstran/internal/kv"
	"github.com/valpere/glosstran/internal/language"
)

const (
	// Capacity is the number of entries retained; older ones are evicted.
	Capacity = 50

	// Key is the blob key the list is stored under.
	Key = "glosstran.history"
)

// Entry records one completed translation. Entries are never mutated.
type Entry struct {
	ID             string            `json:"id"`
	Timestamp      time.Time         `json:"timestamp"`
	SourceLang     language.Language `json:"sourceLang"`
	TargetLang     language.Language `json:"targetLang"`
	OriginalText   string            `json:"originalText"`
	TranslatedText string            `json:"translatedText"`
	Style          language.Style    `json:"style"`
}

// Store is safe for concurrent use. Storage problems never surface as
// errors: corrupt data reads as an empty history, and an unreachable blob
// store switches the session to memory only.
type Store struct {
	mu       sync.Mutex
	blob     kv.Blob
	logger   zerolog.Logger
	entries  []Entry
	loaded   bool
	degraded bool
	now      func() time.Time
}

// New returns a store persisting into blob. A nil blob keeps history in
// memory only.
func New(blob kv.Blob, logger zerolog.Logger) *Store {
	return &Store{
		blob:   blob,
		logger: logger.With().Str("component", "history").Logger(),
		now:    time.Now,
	}
}

// LoadAll returns the entries, newest first.
func (s *Store) LoadAll(ctx context.Context) []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.load(ctx)
	return append([]Entry(nil), s.entries...)
}

// Get returns the entry with the given ID.
func (s *Store) Get(ctx context.Context, id string) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.load(ctx)
	for _, e := range s.entries {
		if e.ID == id {
			return e, true
		}
	}
	return Entry{}, false
}

// Append prepends e, evicts beyond Capacity and persists the whole list.
// A missing ID or timestamp is filled in; the stored entry is returned.
func (s *Store) Append(ctx context.Context, e Entry) Entry {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = s.now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.load(ctx)

	entries := make([]Entry, 0, len(s.entries)+1)
	entries = append(entries, e)
	entries = append(entries, s.entries...)
	if len(entries) > Capacity {
		entries = entries[:Capacity]
	}
	s.entries = entries
	s.persist(ctx)
	return e
}

// Clear drops every entry.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loaded = true
	s.entries = nil
	s.persist(ctx)
}

// Degraded reports whether the store has fallen back to memory only.
func (s *Store) Degraded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.degraded
}

func (s *Store) load(ctx context.Context) {
	if s.loaded {
		return
	}
	s.loaded = true
	if s.blob == nil {
		return
	}

	data, found, err := s.blob.Get(ctx, Key)
	if err != nil {
		s.degraded = true
		s.logger.Warn().Err(err).Msg("history storage unavailable, keeping history in memory")
		return
	}
	if !found || len(data) == 0 {
		return
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		s.logger.Warn().Err(err).Msg("stored history is corrupt, starting empty")
		return
	}
	if len(entries) > Capacity {
		entries = entries[:Capacity]
	}
	s.entries = entries
}

func (s *Store) persist(ctx context.Context) {
	if s.blob == nil || s.degraded {
		return
	}
	entries := s.entries
	if entries == nil {
		entries = []Entry{}
	}
	data, err := json.Marshal(entries)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to encode history")
		return
	}
	if err := s.blob.Set(ctx, Key, data); err != nil {
		s.degraded = true
		s.logger.Warn().Err(err).Msg("history storage unavailable, keeping history in memory")
	}
}
