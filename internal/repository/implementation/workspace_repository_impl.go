package implementation

import (
	"context"
	"errors"

	"cortex-ai-be/internal/entity"
	"cortex-ai-be/internal/mapper"
	"cortex-ai-be/internal/model"
	"cortex-ai-be/internal/repository/contract"
	"cortex-ai-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NoteRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.WorkspaceMapper
}

func NewNoteRepository(db *gorm.DB) contract.NoteRepository {
	return &NoteRepositoryImpl{
		db:     db,
		mapper: mapper.NewWorkspaceMapper(),
	}
}

func (r *NoteRepositoryImpl) FindOwned(ctx context.Context, id uuid.UUID, userId uuid.UUID) (*entity.Note, error) {
	var m model.Note
	query := applySpecifications(r.db.WithContext(ctx), specification.ByID{ID: id}, specification.UserOwnedBy{UserID: userId})
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.NoteToEntity(&m), nil
}

func (r *NoteRepositoryImpl) SearchByTitle(ctx context.Context, userId uuid.UUID, query string, limit int) ([]*entity.Note, error) {
	return r.findAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.Contains{Field: "title", Value: query},
		specification.OrderByMany(
			specification.OrderBy{Field: "updated_at", Desc: true},
			specification.OrderBy{Field: "id", Desc: true},
		),
		specification.Pagination{Limit: limit},
	)
}

func (r *NoteRepositoryImpl) FindByFolder(ctx context.Context, userId uuid.UUID, folderId uuid.UUID) ([]*entity.Note, error) {
	return r.findAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.ByFolderID{FolderID: folderId},
		specification.OrderByMany(
			specification.OrderBy{Field: "created_at"},
			specification.OrderBy{Field: "id"},
		),
	)
}

func (r *NoteRepositoryImpl) FindRecent(ctx context.Context, userId uuid.UUID, limit int) ([]*entity.Note, error) {
	return r.findAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.OrderByMany(
			specification.OrderBy{Field: "updated_at", Desc: true},
			specification.OrderBy{Field: "id", Desc: true},
		),
		specification.Pagination{Limit: limit},
	)
}

func (r *NoteRepositoryImpl) findAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Note, error) {
	var models []*model.Note
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.NotesToEntities(models), nil
}

type FolderRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.WorkspaceMapper
}

func NewFolderRepository(db *gorm.DB) contract.FolderRepository {
	return &FolderRepositoryImpl{
		db:     db,
		mapper: mapper.NewWorkspaceMapper(),
	}
}

func (r *FolderRepositoryImpl) FindOwned(ctx context.Context, id uuid.UUID, userId uuid.UUID) (*entity.Folder, error) {
	var m model.Folder
	query := applySpecifications(r.db.WithContext(ctx), specification.ByID{ID: id}, specification.UserOwnedBy{UserID: userId})
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.FolderToEntity(&m), nil
}

func (r *FolderRepositoryImpl) SearchByName(ctx context.Context, userId uuid.UUID, query string, limit int) ([]*entity.Folder, error) {
	var models []*model.Folder
	q := applySpecifications(r.db.WithContext(ctx),
		specification.UserOwnedBy{UserID: userId},
		specification.Contains{Field: "name", Value: query},
		specification.OrderByMany(
			specification.OrderBy{Field: "updated_at", Desc: true},
			specification.OrderBy{Field: "id", Desc: true},
		),
		specification.Pagination{Limit: limit},
	)
	if err := q.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.FoldersToEntities(models), nil
}

type FileRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.WorkspaceMapper
}

func NewFileRepository(db *gorm.DB) contract.FileRepository {
	return &FileRepositoryImpl{
		db:     db,
		mapper: mapper.NewWorkspaceMapper(),
	}
}

func (r *FileRepositoryImpl) FindOwned(ctx context.Context, id uuid.UUID, userId uuid.UUID) (*entity.File, error) {
	var m model.File
	query := applySpecifications(r.db.WithContext(ctx), specification.ByID{ID: id}, specification.UserOwnedBy{UserID: userId})
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.FileToEntity(&m)
}

func (r *FileRepositoryImpl) SearchByName(ctx context.Context, userId uuid.UUID, query string, limit int) ([]*entity.File, error) {
	var models []*model.File
	q := applySpecifications(r.db.WithContext(ctx),
		specification.UserOwnedBy{UserID: userId},
		specification.Contains{Field: "name", Value: query},
		specification.OrderByMany(
			specification.OrderBy{Field: "created_at", Desc: true},
			specification.OrderBy{Field: "id", Desc: true},
		),
		specification.Pagination{Limit: limit},
	)
	if err := q.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.FilesToEntities(models)
}
