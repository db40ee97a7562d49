package entity

import (
	"time"

	"github.com/google/uuid"
)

type Note struct {
	Id        uuid.UUID
	Title     string
	Content   string
	Tags      []string
	FolderId  *uuid.UUID
	UserId    uuid.UUID
	CreatedAt time.Time
	UpdatedAt *time.Time
	DeletedAt *time.Time
	IsDeleted bool
}

type Folder struct {
	Id        uuid.UUID
	Name      string
	ParentId  *uuid.UUID
	UserId    uuid.UUID
	CreatedAt time.Time
	UpdatedAt *time.Time
	DeletedAt *time.Time
	IsDeleted bool
}

type File struct {
	Id        uuid.UUID
	Name      string
	Type      string
	Size      int64
	Url       string
	Metadata  map[string]interface{}
	FolderId  *uuid.UUID
	UserId    uuid.UUID
	CreatedAt time.Time
	DeletedAt *time.Time
	IsDeleted bool
}
