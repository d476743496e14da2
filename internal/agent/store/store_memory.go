package store

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"

	"credwallet/internal/credential/models"
	"credwallet/pkg/platform/sentinel"
)

// InMemoryStore keeps entries in process memory. Records do not survive a
// restart; use RedisStore when they must.
type InMemoryStore struct {
	mu          sync.RWMutex
	entries     map[string]Entry
	threads     map[string][]string
	connections map[string]models.Connection
}

// NewInMemory creates an empty in-memory store.
func NewInMemory() *InMemoryStore {
	return &InMemoryStore{
		entries:     make(map[string]Entry),
		threads:     make(map[string][]string),
		connections: make(map[string]models.Connection),
	}
}

func (s *InMemoryStore) Create(_ context.Context, entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := entry.Record.ID
	if _, ok := s.entries[id]; ok {
		return fmt.Errorf("credential %s: %w", id, sentinel.ErrConflict)
	}
	s.entries[id] = entry.Clone()
	s.indexLocked(entry.Record)
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id string) (Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[id]
	if !ok {
		return Entry{}, fmt.Errorf("credential %s: %w", id, sentinel.ErrNotFound)
	}
	return e.Clone(), nil
}

// ListAll returns every entry ordered by record id.
func (s *InMemoryStore) ListAll(_ context.Context) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Entry, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e.Clone())
	}
	sortEntries(out)
	return out, nil
}

func (s *InMemoryStore) ListByThread(_ context.Context, threadID string) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.threads[threadID]
	out := make([]Entry, 0, len(ids))
	for _, id := range ids {
		if e, ok := s.entries[id]; ok {
			out = append(out, e.Clone())
		}
	}
	sortEntries(out)
	return out, nil
}

func (s *InMemoryStore) Execute(_ context.Context, id string, validate func(*Entry) error, mutate func(*Entry)) (Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.entries[id]
	if !ok {
		return Entry{}, fmt.Errorf("credential %s: %w", id, sentinel.ErrNotFound)
	}
	e := current.Clone()
	if err := validate(&e); err != nil {
		return Entry{}, err
	}
	mutate(&e)
	s.entries[id] = e.Clone()
	s.indexLocked(e.Record)
	return e, nil
}

func (s *InMemoryStore) SaveConnection(_ context.Context, conn models.Connection) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connections[conn.ID] = conn
	return nil
}

func (s *InMemoryStore) FindConnection(_ context.Context, id string) (models.Connection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conn, ok := s.connections[id]
	if !ok {
		return models.Connection{}, fmt.Errorf("connection %s: %w", id, sentinel.ErrNotFound)
	}
	return conn, nil
}

// indexLocked must be called with s.mu held.
func (s *InMemoryStore) indexLocked(r models.CredentialRecord) {
	if r.ThreadID == "" || slices.Contains(s.threads[r.ThreadID], r.ID) {
		return
	}
	s.threads[r.ThreadID] = append(s.threads[r.ThreadID], r.ID)
}

func sortEntries(entries []Entry) {
	slices.SortFunc(entries, func(a, b Entry) int {
		return cmp.Compare(a.Record.ID, b.Record.ID)
	})
}
