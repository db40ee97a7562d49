package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Note struct {
	Id        uuid.UUID                   `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Title     string                      `gorm:"type:varchar(255);not null"`
	Content   string                      `gorm:"type:text"`
	Tags      datatypes.JSONSlice[string] `gorm:"type:jsonb"`
	FolderId  *uuid.UUID                  `gorm:"type:uuid;index"`
	UserId    uuid.UUID                   `gorm:"type:uuid;not null;index"`
	CreatedAt time.Time                   `gorm:"autoCreateTime"`
	UpdatedAt time.Time                   `gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt              `gorm:"index"`
}

func (Note) TableName() string {
	return "notes"
}

type Folder struct {
	Id        uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name      string         `gorm:"type:varchar(255);not null"`
	ParentId  *uuid.UUID     `gorm:"type:uuid;index"`
	UserId    uuid.UUID      `gorm:"type:uuid;not null;index"`
	CreatedAt time.Time      `gorm:"autoCreateTime"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (Folder) TableName() string {
	return "folders"
}

type File struct {
	Id        uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name      string         `gorm:"type:varchar(255);not null"`
	Type      string         `gorm:"type:varchar(255)"`
	Size      int64          `gorm:"not null;default:0"`
	Url       string         `gorm:"type:text"`
	Metadata  datatypes.JSON `gorm:"type:jsonb"`
	FolderId  *uuid.UUID     `gorm:"type:uuid;index"`
	UserId    uuid.UUID      `gorm:"type:uuid;not null;index"`
	CreatedAt time.Time      `gorm:"autoCreateTime"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (File) TableName() string {
	return "files"
}
