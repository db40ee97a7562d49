// Package contextref models the typed references a conversation holds to
// workspace entities and keeps an optimistic per-conversation view of them.
package contextref

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

type EntityType string

const (
	EntityNote   EntityType = "note"
	EntityFolder EntityType = "folder"
	EntityFile   EntityType = "file"
)

func ParseEntityType(s string) (EntityType, error) {
	switch EntityType(strings.ToLower(strings.TrimSpace(s))) {
	case EntityNote:
		return EntityNote, nil
	case EntityFolder:
		return EntityFolder, nil
	case EntityFile:
		return EntityFile, nil
	default:
		return "", fmt.Errorf("unknown entity type %q", s)
	}
}

// Reference is a closed union: only NoteRef, FolderRef and FileRef implement it.
type Reference interface {
	Type() EntityType
	ID() uuid.UUID
	isReference()
}

type NoteRef struct{ Id uuid.UUID }

type FolderRef struct{ Id uuid.UUID }

type FileRef struct{ Id uuid.UUID }

func (r NoteRef) Type() EntityType { return EntityNote }

func (r NoteRef) ID() uuid.UUID { return r.Id }

func (NoteRef) isReference() {}

func (r FolderRef) Type() EntityType { return EntityFolder }

func (r FolderRef) ID() uuid.UUID { return r.Id }

func (FolderRef) isReference() {}

func (r FileRef) Type() EntityType { return EntityFile }

func (r FileRef) ID() uuid.UUID { return r.Id }

func (FileRef) isReference() {}

// New builds the variant matching entityType.
func New(entityType EntityType, id uuid.UUID) (Reference, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("entity id is required")
	}
	switch entityType {
	case EntityNote:
		return NoteRef{Id: id}, nil
	case EntityFolder:
		return FolderRef{Id: id}, nil
	case EntityFile:
		return FileRef{Id: id}, nil
	default:
		return nil, fmt.Errorf("unknown entity type %q", entityType)
	}
}

// Parse builds a reference from its wire form.
func Parse(entityType, entityId string) (Reference, error) {
	t, err := ParseEntityType(entityType)
	if err != nil {
		return nil, err
	}
	id, err := uuid.Parse(entityId)
	if err != nil {
		return nil, fmt.Errorf("invalid entity id %q", entityId)
	}
	return New(t, id)
}

// Key is the uniqueness key of a reference.
type Key struct {
	Type EntityType
	Id   uuid.UUID
}

func KeyOf(r Reference) Key {
	return Key{Type: r.Type(), Id: r.ID()}
}

func (k Key) String() string {
	return string(k.Type) + ":" + k.Id.String()
}
