package transcript

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryStore keeps transcripts in process memory. Used by tests and by
// runs that do not ask for persistence.
type MemoryStore struct {
	mu      sync.Mutex
	nextSeq int64
	entries map[string][]Entry
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: map[string][]Entry{}}
}

func (s *MemoryStore) Append(_ context.Context, sessionID, role, text string) error {
	if strings.TrimSpace(sessionID) == "" {
		return fmt.Errorf("transcript: session id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSeq++
	s.entries[sessionID] = append(s.entries[sessionID], Entry{
		Seq:       s.nextSeq,
		SessionID: sessionID,
		Role:      role,
		Text:      text,
		At:        time.Now(),
	})
	return nil
}

func (s *MemoryStore) List(_ context.Context, sessionID string) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Entry(nil), s.entries[sessionID]...), nil
}

func (s *MemoryStore) Sessions(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.entries))
	for id := range s.entries {
		out = append(out, id)
	}
	sort.Strings(out)
	return out, nil
}

func (s *MemoryStore) Close() error {
	return nil
}
