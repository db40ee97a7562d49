package summarizer

import (
	"context"
	"fmt"
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

func newTestSummarizer(store *memory.Store) *Summarizer {
	return NewSummarizer(memory.NewRepositoryFactory(store), 5, logger.NewNopLogger())
}

func TestSummarizeNote(t *testing.T) {
	store := memory.NewStore()
	userId := uuid.New()
	note := store.PutNote(entity.Note{UserId: userId, Title: "Roadmap", Content: "Q3 goals"})

	got, err := newTestSummarizer(store).Summarize(context.Background(), userId, []contextref.Reference{
		contextref.NoteRef{Id: note.Id},
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Note: Roadmap", got[0].Title)
	assert.Equal(t, "Q3 goals", got[0].Body)
	assert.Equal(t, contextref.EntityNote, got[0].EntityType)
}

func TestSummarizeFolder(t *testing.T) {
	store := memory.NewStore()
	userId := uuid.New()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	folder := store.PutFolder(entity.Folder{UserId: userId, Name: "F"})
	store.PutNote(entity.Note{UserId: userId, Title: "A", Content: "hi", FolderId: &folder.Id, CreatedAt: base})
	store.PutNote(entity.Note{UserId: userId, Title: "B", Content: "bye", FolderId: &folder.Id, CreatedAt: base.Add(time.Minute)})
	store.PutNote(entity.Note{UserId: userId, Title: "Elsewhere", Content: "no"})

	got, err := newTestSummarizer(store).Summarize(context.Background(), userId, []contextref.Reference{
		contextref.FolderRef{Id: folder.Id},
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Folder: F", got[0].Title)
	assert.Contains(t, got[0].Body, "- A\nhi")
	assert.Contains(t, got[0].Body, "- B\nbye")
	assert.Equal(t, "- A\nhi\n\n- B\nbye", got[0].Body)
}

func TestSummarizeEmptyFolder(t *testing.T) {
	store := memory.NewStore()
	userId := uuid.New()
	folder := store.PutFolder(entity.Folder{UserId: userId, Name: "Empty"})

	got, err := newTestSummarizer(store).Summarize(context.Background(), userId, []contextref.Reference{
		contextref.FolderRef{Id: folder.Id},
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Folder: Empty", got[0].Title)
	assert.Equal(t, "", got[0].Body)
}

func TestSummarizeFile(t *testing.T) {
	store := memory.NewStore()
	userId := uuid.New()

	tests := []struct {
		name     string
		metadata map[string]interface{}
		want     string
	}{
		{
			name:     "with description",
			metadata: map[string]interface{}{"description": "Quarterly <report>", "pages": 3},
			want:     "Metadata: {\n  \"description\": \"Quarterly <report>\",\n  \"pages\": 3\n}\nQuarterly <report>",
		},
		{
			name:     "no metadata",
			metadata: nil,
			want:     "Metadata: {}\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			file := store.PutFile(entity.File{UserId: userId, Name: "report.pdf", Type: "application/pdf", Metadata: tt.metadata})

			got, err := newTestSummarizer(store).Summarize(context.Background(), userId, []contextref.Reference{
				contextref.FileRef{Id: file.Id},
			})
			require.NoError(t, err)
			require.Len(t, got, 1)
			assert.Equal(t, "File: report.pdf", got[0].Title)
			assert.Equal(t, tt.want, got[0].Body)
		})
	}
}

func TestSummarizeSkipsMissingEntities(t *testing.T) {
	store := memory.NewStore()
	userId := uuid.New()
	kept := store.PutNote(entity.Note{UserId: userId, Title: "Kept", Content: "x"})
	gone := store.PutNote(entity.Note{UserId: userId, Title: "Gone", Content: "y"})
	store.DeleteNote(gone.Id)
	foreign := store.PutNote(entity.Note{UserId: uuid.New(), Title: "Not yours", Content: "z"})

	got, err := newTestSummarizer(store).Summarize(context.Background(), userId, []contextref.Reference{
		contextref.NoteRef{Id: gone.Id},
		contextref.NoteRef{Id: kept.Id},
		contextref.NoteRef{Id: foreign.Id},
		contextref.FolderRef{Id: uuid.New()},
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Note: Kept", got[0].Title)
}

func TestSummarizeFallsBackToRecentNotes(t *testing.T) {
	store := memory.NewStore()
	userId := uuid.New()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 7; i++ {
		updated := base.Add(time.Duration(i) * time.Hour)
		store.PutNote(entity.Note{UserId: userId, Title: fmt.Sprintf("n%d", i), CreatedAt: base, UpdatedAt: &updated})
	}

	tests := []struct {
		name string
		refs []contextref.Reference
	}{
		{name: "no references", refs: nil},
		{name: "only dangling references", refs: []contextref.Reference{contextref.NoteRef{Id: uuid.New()}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := newTestSummarizer(store).Summarize(context.Background(), userId, tt.refs)
			require.NoError(t, err)
			require.Len(t, got, 5)
			titles := make([]string, len(got))
			for i, s := range got {
				titles[i] = s.Title
			}
			assert.Equal(t, []string{"Note: n6", "Note: n5", "Note: n4", "Note: n3", "Note: n2"}, titles)
		})
	}
}

func TestSummarizeWithEmptyWorkspace(t *testing.T) {
	got, err := newTestSummarizer(memory.NewStore()).Summarize(context.Background(), uuid.New(), nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}
