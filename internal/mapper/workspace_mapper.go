package mapper

import (
	"encoding/json"
	"fmt"
	"time"

	"cortex-ai-be/internal/entity"
	"cortex-ai-be/internal/model"
)

type WorkspaceMapper struct{}

func NewWorkspaceMapper() *WorkspaceMapper {
	return &WorkspaceMapper{}
}

func (m *WorkspaceMapper) NoteToEntity(n *model.Note) *entity.Note {
	if n == nil {
		return nil
	}

	var deletedAt *time.Time
	if n.DeletedAt.Valid {
		t := n.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !n.UpdatedAt.IsZero() {
		t := n.UpdatedAt
		updatedAt = &t
	}

	return &entity.Note{
		Id:        n.Id,
		Title:     n.Title,
		Content:   n.Content,
		Tags:      []string(n.Tags),
		FolderId:  n.FolderId,
		UserId:    n.UserId,
		CreatedAt: n.CreatedAt,
		UpdatedAt: updatedAt,
		DeletedAt: deletedAt,
		IsDeleted: n.DeletedAt.Valid,
	}
}

func (m *WorkspaceMapper) NotesToEntities(notes []*model.Note) []*entity.Note {
	out := make([]*entity.Note, 0, len(notes))
	for _, n := range notes {
		out = append(out, m.NoteToEntity(n))
	}
	return out
}

func (m *WorkspaceMapper) FolderToEntity(f *model.Folder) *entity.Folder {
	if f == nil {
		return nil
	}

	var updatedAt *time.Time
	if !f.UpdatedAt.IsZero() {
		t := f.UpdatedAt
		updatedAt = &t
	}

	return &entity.Folder{
		Id:        f.Id,
		Name:      f.Name,
		ParentId:  f.ParentId,
		UserId:    f.UserId,
		CreatedAt: f.CreatedAt,
		UpdatedAt: updatedAt,
		IsDeleted: f.DeletedAt.Valid,
	}
}

func (m *WorkspaceMapper) FoldersToEntities(folders []*model.Folder) []*entity.Folder {
	out := make([]*entity.Folder, 0, len(folders))
	for _, f := range folders {
		out = append(out, m.FolderToEntity(f))
	}
	return out
}

func (m *WorkspaceMapper) FileToEntity(f *model.File) (*entity.File, error) {
	if f == nil {
		return nil, nil
	}

	metadata := map[string]interface{}{}
	if len(f.Metadata) > 0 {
		if err := json.Unmarshal(f.Metadata, &metadata); err != nil {
			return nil, fmt.Errorf("decode metadata of file %s: %w", f.Id, err)
		}
	}

	return &entity.File{
		Id:        f.Id,
		Name:      f.Name,
		Type:      f.Type,
		Size:      f.Size,
		Url:       f.Url,
		Metadata:  metadata,
		FolderId:  f.FolderId,
		UserId:    f.UserId,
		CreatedAt: f.CreatedAt,
		IsDeleted: f.DeletedAt.Valid,
	}, nil
}

func (m *WorkspaceMapper) FilesToEntities(files []*model.File) ([]*entity.File, error) {
	out := make([]*entity.File, 0, len(files))
	for _, f := range files {
		e, err := m.FileToEntity(f)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}
