package specification

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserOwnedBy struct {
	UserID uuid.UUID
}

func (s UserOwnedBy) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("user_id = ?", s.UserID)
}

type ByFolderID struct {
	FolderID uuid.UUID
}

func (s ByFolderID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("folder_id = ?", s.FolderID)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Contains is a case-insensitive substring match on Field.
// LIKE wildcards in Value are matched literally.
type Contains struct {
	Field string
	Value string
}

func (s Contains) Apply(db *gorm.DB) *gorm.DB {
	pattern := "%" + likeEscaper.Replace(s.Value) + "%"
	return db.Where(s.Field+` ILIKE ? ESCAPE '\'`, pattern)
}
