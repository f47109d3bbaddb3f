package notes

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryStore implements NoteStore with in-memory storage
type InMemoryStore struct {
	mu    sync.RWMutex
	notes map[uuid.UUID]*Note
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{notes: make(map[uuid.UUID]*Note)}
}

func (s *InMemoryStore) ListNotes(ctx context.Context) ([]*Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	notes := make([]*Note, 0, len(s.notes))
	for _, n := range s.notes {
		cp := *n
		notes = append(notes, &cp)
	}
	sort.SliceStable(notes, func(i, j int) bool {
		return notes[i].CreatedAt.After(notes[j].CreatedAt)
	})
	return notes, nil
}

func (s *InMemoryStore) CreateNote(ctx context.Context, note *Note) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if note.ID == uuid.Nil {
		note.ID = uuid.New()
	}
	now := time.Now()
	note.CreatedAt = now
	note.UpdatedAt = now

	cp := *note
	s.notes[note.ID] = &cp
	return nil
}

func (s *InMemoryStore) DeleteNote(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.notes[id]; !exists {
		return ErrNoteNotFound
	}
	delete(s.notes, id)
	return nil
}

func (s *InMemoryStore) UserHasNotes(ctx context.Context, userID uuid.UUID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, n := range s.notes {
		if n.User == userID {
			return true, nil
		}
	}
	return false, nil
}
