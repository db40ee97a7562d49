package contract

import (
	"context"

	"cortex-ai-be/internal/entity"

	"github.com/google/uuid"
)

// Workspace entities are owned by the notes service; only read paths live here.

type NoteRepository interface {
	FindOwned(ctx context.Context, id uuid.UUID, userId uuid.UUID) (*entity.Note, error)
	// SearchByTitle matches title case-insensitively, most recently updated first.
	SearchByTitle(ctx context.Context, userId uuid.UUID, query string, limit int) ([]*entity.Note, error)
	// FindByFolder returns the direct children of a folder, oldest first.
	FindByFolder(ctx context.Context, userId uuid.UUID, folderId uuid.UUID) ([]*entity.Note, error)
	FindRecent(ctx context.Context, userId uuid.UUID, limit int) ([]*entity.Note, error)
}

type FolderRepository interface {
	FindOwned(ctx context.Context, id uuid.UUID, userId uuid.UUID) (*entity.Folder, error)
	SearchByName(ctx context.Context, userId uuid.UUID, query string, limit int) ([]*entity.Folder, error)
}

type FileRepository interface {
	FindOwned(ctx context.Context, id uuid.UUID, userId uuid.UUID) (*entity.File, error)
	// SearchByName matches name case-insensitively, newest upload first.
	SearchByName(ctx context.Context, userId uuid.UUID, query string, limit int) ([]*entity.File, error)
}
