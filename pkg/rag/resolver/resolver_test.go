package resolver

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"cortex-ai-be/internal/entity"
	"cortex-ai-be/internal/pkg/logger"
	"cortex-ai-be/internal/repository/memory"
	"cortex-ai-be/pkg/contextref"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuggestAcrossTypes(t *testing.T) {
	store := memory.NewStore()
	userId := uuid.New()
	note := store.PutNote(entity.Note{UserId: userId, Title: "Project plan", Content: "Ship   it\n\nsoon"})
	folder := store.PutFolder(entity.Folder{UserId: userId, Name: "PROJECTS"})
	file := store.PutFile(entity.File{UserId: userId, Name: "project.pdf", Type: "application/pdf"})
	store.PutNote(entity.Note{UserId: userId, Title: "Groceries"})
	store.PutNote(entity.Note{UserId: uuid.New(), Title: "Project of someone else"})

	r := NewResolver(memory.NewRepositoryFactory(store), 8, 0, logger.NewNopLogger())

	got, err := r.Suggest(context.Background(), userId, "  project ")
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, Suggestion{EntityType: contextref.EntityNote, EntityId: note.Id, Title: "Project plan", Subtitle: "Ship it soon"}, got[0])
	assert.Equal(t, Suggestion{EntityType: contextref.EntityFolder, EntityId: folder.Id, Title: "PROJECTS", Subtitle: "Folder"}, got[1])
	assert.Equal(t, Suggestion{EntityType: contextref.EntityFile, EntityId: file.Id, Title: "project.pdf", Subtitle: "application/pdf"}, got[2])
}

func TestSuggestLimitsEachType(t *testing.T) {
	store := memory.NewStore()
	userId := uuid.New()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 12; i++ {
		updated := base.Add(time.Duration(i) * time.Minute)
		store.PutNote(entity.Note{UserId: userId, Title: fmt.Sprintf("note %02d", i), UpdatedAt: &updated})
		store.PutFolder(entity.Folder{UserId: userId, Name: fmt.Sprintf("folder %02d", i)})
	}

	r := NewResolver(memory.NewRepositoryFactory(store), 8, 0, logger.NewNopLogger())
	got, err := r.Suggest(context.Background(), userId, "")
	require.NoError(t, err)

	counts := map[contextref.EntityType]int{}
	for _, s := range got {
		counts[s.EntityType]++
	}
	assert.Equal(t, 8, counts[contextref.EntityNote])
	assert.Equal(t, 8, counts[contextref.EntityFolder])
	assert.Equal(t, "note 11", got[0].Title, "most recently updated note first")
}

func TestSuggestForFlagsAttached(t *testing.T) {
	store := memory.NewStore()
	userId := uuid.New()
	a := store.PutNote(entity.Note{UserId: userId, Title: "alpha"})
	store.PutNote(entity.Note{UserId: userId, Title: "alphabet"})

	r := NewResolver(memory.NewRepositoryFactory(store), 8, time.Minute, logger.NewNopLogger())
	attached := contextref.NewSet(contextref.NoteRef{Id: a.Id})

	got, err := r.SuggestFor(context.Background(), userId, attached, "alpha")
	require.NoError(t, err)
	require.Len(t, got, 2)
	for _, s := range got {
		assert.Equal(t, s.EntityId == a.Id, s.Attached, s.Title)
	}

	// Cached results are not tainted by the attached flag.
	plain, err := r.Suggest(context.Background(), userId, "alpha")
	require.NoError(t, err)
	for _, s := range plain {
		assert.False(t, s.Attached)
	}
}

func TestNoteSubtitle(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{name: "empty", content: "", want: "Note content unavailable"},
		{name: "collapses whitespace", content: "a \t\n b", want: "a b"},
		{name: "truncates", content: strings.Repeat("é", 130), want: strings.Repeat("é", 120)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NoteSubtitle(tt.content))
		})
	}
}
