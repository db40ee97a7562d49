// Package memory keeps every repository in process memory. It backs the
// "memory" database driver and the service tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"cortex-ai-be/internal/entity"
	"cortex-ai-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type Store struct {
	mu            sync.RWMutex
	conversations map[uuid.UUID]*entity.Conversation
	messages      map[uuid.UUID][]*entity.Message
	references    map[uuid.UUID][]*entity.ContextReference
	notes         map[uuid.UUID]*entity.Note
	folders       map[uuid.UUID]*entity.Folder
	files         map[uuid.UUID]*entity.File

	referenceWriteErr error
}

func NewStore() *Store {
	return &Store{
		conversations: make(map[uuid.UUID]*entity.Conversation),
		messages:      make(map[uuid.UUID][]*entity.Message),
		references:    make(map[uuid.UUID][]*entity.ContextReference),
		notes:         make(map[uuid.UUID]*entity.Note),
		folders:       make(map[uuid.UUID]*entity.Folder),
		files:         make(map[uuid.UUID]*entity.File),
	}
}

// FailReferenceWrites makes every context reference write fail with err until reset with nil.
func (s *Store) FailReferenceWrites(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.referenceWriteErr = err
}

func (s *Store) PutNote(n entity.Note) *entity.Note {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n.Id == uuid.Nil {
		n.Id = uuid.New()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	if n.UpdatedAt == nil {
		t := n.CreatedAt
		n.UpdatedAt = &t
	}
	s.notes[n.Id] = &n
	out := n
	return &out
}

func (s *Store) PutFolder(f entity.Folder) *entity.Folder {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f.Id == uuid.Nil {
		f.Id = uuid.New()
	}
	if f.CreatedAt.IsZero() {
		f.CreatedAt = time.Now()
	}
	if f.UpdatedAt == nil {
		t := f.CreatedAt
		f.UpdatedAt = &t
	}
	s.folders[f.Id] = &f
	out := f
	return &out
}

func (s *Store) PutFile(f entity.File) *entity.File {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f.Id == uuid.Nil {
		f.Id = uuid.New()
	}
	if f.CreatedAt.IsZero() {
		f.CreatedAt = time.Now()
	}
	s.files[f.Id] = &f
	out := f
	return &out
}

// DeleteNote removes a workspace note, leaving any references to it dangling.
func (s *Store) DeleteNote(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.notes, id)
}

type RepositoryFactory struct {
	store *Store
}

func NewRepositoryFactory(store *Store) unitofwork.RepositoryFactory {
	return &RepositoryFactory{store: store}
}

func (f *RepositoryFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &unitOfWork{store: f.store}
}

func matches(value, query string) bool {
	return strings.Contains(strings.ToLower(value), strings.ToLower(query))
}

func timeOr(t *time.Time, fallback time.Time) time.Time {
	if t != nil {
		return *t
	}
	return fallback
}

// newerFirst orders by (at desc, id desc).
func newerFirst(atI, atJ time.Time, idI, idJ uuid.UUID) bool {
	if !atI.Equal(atJ) {
		return atI.After(atJ)
	}
	return idI.String() > idJ.String()
}

// olderFirst orders by (at asc, id asc).
func olderFirst(atI, atJ time.Time, idI, idJ uuid.UUID) bool {
	if !atI.Equal(atJ) {
		return atI.Before(atJ)
	}
	return idI.String() < idJ.String()
}

func limitSlice[T any](items []T, limit int) []T {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}

func sortSlice[T any](items []T, less func(a, b T) bool) {
	sort.SliceStable(items, func(i, j int) bool { return less(items[i], items[j]) })
}
