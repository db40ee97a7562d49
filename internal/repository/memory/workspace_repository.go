package memory

import (
	"context"

	"cortex-ai-be/internal/entity"

	"github.com/google/uuid"
)

type noteRepository struct {
	store *Store
}

func (r *noteRepository) FindOwned(ctx context.Context, id uuid.UUID, userId uuid.UUID) (*entity.Note, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.notes[id]
	if !ok || n.UserId != userId {
		return nil, nil
	}
	out := *n
	return &out, nil
}

func (r *noteRepository) SearchByTitle(ctx context.Context, userId uuid.UUID, query string, limit int) ([]*entity.Note, error) {
	notes := r.filter(userId, func(n *entity.Note) bool { return matches(n.Title, query) })
	sortSlice(notes, func(a, b *entity.Note) bool {
		return newerFirst(timeOr(a.UpdatedAt, a.CreatedAt), timeOr(b.UpdatedAt, b.CreatedAt), a.Id, b.Id)
	})
	return limitSlice(notes, limit), nil
}

func (r *noteRepository) FindByFolder(ctx context.Context, userId uuid.UUID, folderId uuid.UUID) ([]*entity.Note, error) {
	notes := r.filter(userId, func(n *entity.Note) bool { return n.FolderId != nil && *n.FolderId == folderId })
	sortSlice(notes, func(a, b *entity.Note) bool {
		return olderFirst(a.CreatedAt, b.CreatedAt, a.Id, b.Id)
	})
	return notes, nil
}

func (r *noteRepository) FindRecent(ctx context.Context, userId uuid.UUID, limit int) ([]*entity.Note, error) {
	notes := r.filter(userId, func(*entity.Note) bool { return true })
	sortSlice(notes, func(a, b *entity.Note) bool {
		return newerFirst(timeOr(a.UpdatedAt, a.CreatedAt), timeOr(b.UpdatedAt, b.CreatedAt), a.Id, b.Id)
	})
	return limitSlice(notes, limit), nil
}

func (r *noteRepository) filter(userId uuid.UUID, keep func(*entity.Note) bool) []*entity.Note {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*entity.Note, 0)
	for _, n := range s.notes {
		if n.UserId == userId && keep(n) {
			cp := *n
			out = append(out, &cp)
		}
	}
	return out
}

type folderRepository struct {
	store *Store
}

func (r *folderRepository) FindOwned(ctx context.Context, id uuid.UUID, userId uuid.UUID) (*entity.Folder, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, ok := s.folders[id]
	if !ok || f.UserId != userId {
		return nil, nil
	}
	out := *f
	return &out, nil
}

func (r *folderRepository) SearchByName(ctx context.Context, userId uuid.UUID, query string, limit int) ([]*entity.Folder, error) {
	s := r.store
	s.mu.RLock()
	out := make([]*entity.Folder, 0)
	for _, f := range s.folders {
		if f.UserId == userId && matches(f.Name, query) {
			cp := *f
			out = append(out, &cp)
		}
	}
	s.mu.RUnlock()

	sortSlice(out, func(a, b *entity.Folder) bool {
		return newerFirst(timeOr(a.UpdatedAt, a.CreatedAt), timeOr(b.UpdatedAt, b.CreatedAt), a.Id, b.Id)
	})
	return limitSlice(out, limit), nil
}

type fileRepository struct {
	store *Store
}

func (r *fileRepository) FindOwned(ctx context.Context, id uuid.UUID, userId uuid.UUID) (*entity.File, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, ok := s.files[id]
	if !ok || f.UserId != userId {
		return nil, nil
	}
	out := *f
	return &out, nil
}

func (r *fileRepository) SearchByName(ctx context.Context, userId uuid.UUID, query string, limit int) ([]*entity.File, error) {
	s := r.store
	s.mu.RLock()
	out := make([]*entity.File, 0)
	for _, f := range s.files {
		if f.UserId == userId && matches(f.Name, query) {
			cp := *f
			out = append(out, &cp)
		}
	}
	s.mu.RUnlock()

	sortSlice(out, func(a, b *entity.File) bool {
		return newerFirst(a.CreatedAt, b.CreatedAt, a.Id, b.Id)
	})
	return limitSlice(out, limit), nil
}
