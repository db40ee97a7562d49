package summarizer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"cortex-ai-be/internal/constant"
	"cortex-ai-be/internal/entity"
	"cortex-ai-be/internal/pkg/logger"
	"cortex-ai-be/internal/repository/unitofwork"
	"cortex-ai-be/pkg/contextref"

	"github.com/google/uuid"
)

// ContextSummary is the rendered text of one resolved reference. It is derived on
// every send and never stored.
type ContextSummary struct {
	EntityType contextref.EntityType `json:"entity_type"`
	EntityId   uuid.UUID             `json:"entity_id"`
	Title      string                `json:"title"`
	Body       string                `json:"body"`
}

// Summarizer expands references into context blocks for the prompt.
type Summarizer struct {
	uowFactory    unitofwork.RepositoryFactory
	fallbackCount int
	logger        logger.ILogger
}

func NewSummarizer(uowFactory unitofwork.RepositoryFactory, fallbackCount int, log logger.ILogger) *Summarizer {
	if fallbackCount <= 0 {
		fallbackCount = constant.FallbackNoteCount
	}
	return &Summarizer{
		uowFactory:    uowFactory,
		fallbackCount: fallbackCount,
		logger:        log,
	}
}

// Summarize resolves refs in order. References whose entity is gone are skipped.
// When nothing resolves, the user's most recently updated notes are used instead.
func (s *Summarizer) Summarize(ctx context.Context, userId uuid.UUID, refs []contextref.Reference) ([]ContextSummary, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	summaries := make([]ContextSummary, 0, len(refs))
	for _, ref := range refs {
		summary, ok, err := s.summarizeOne(ctx, uow, userId, ref)
		if err != nil {
			return nil, fmt.Errorf("summarize %s: %w", contextref.KeyOf(ref), err)
		}
		if !ok {
			s.logger.Debug("Summarizer", "Skipping unavailable reference", map[string]interface{}{
				"user_id":   userId,
				"reference": contextref.KeyOf(ref).String(),
			})
			continue
		}
		summaries = append(summaries, summary)
	}

	if len(summaries) > 0 {
		return summaries, nil
	}

	recent, err := uow.NoteRepository().FindRecent(ctx, userId, s.fallbackCount)
	if err != nil {
		return nil, fmt.Errorf("load fallback notes: %w", err)
	}
	for _, note := range recent {
		summaries = append(summaries, noteSummary(note))
	}
	return summaries, nil
}

func (s *Summarizer) summarizeOne(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID, ref contextref.Reference) (ContextSummary, bool, error) {
	switch r := ref.(type) {
	case contextref.NoteRef:
		note, err := uow.NoteRepository().FindOwned(ctx, r.Id, userId)
		if err != nil || note == nil {
			return ContextSummary{}, false, err
		}
		return noteSummary(note), true, nil

	case contextref.FolderRef:
		folder, err := uow.FolderRepository().FindOwned(ctx, r.Id, userId)
		if err != nil || folder == nil {
			return ContextSummary{}, false, err
		}
		children, err := uow.NoteRepository().FindByFolder(ctx, userId, folder.Id)
		if err != nil {
			return ContextSummary{}, false, err
		}
		return folderSummary(folder, children), true, nil

	case contextref.FileRef:
		file, err := uow.FileRepository().FindOwned(ctx, r.Id, userId)
		if err != nil || file == nil {
			return ContextSummary{}, false, err
		}
		body, err := fileBody(file.Metadata)
		if err != nil {
			return ContextSummary{}, false, err
		}
		return ContextSummary{
			EntityType: contextref.EntityFile,
			EntityId:   file.Id,
			Title:      "File: " + file.Name,
			Body:       body,
		}, true, nil
	}
	return ContextSummary{}, false, fmt.Errorf("unknown reference type %T", ref)
}

func noteSummary(note *entity.Note) ContextSummary {
	return ContextSummary{
		EntityType: contextref.EntityNote,
		EntityId:   note.Id,
		Title:      "Note: " + note.Title,
		Body:       note.Content,
	}
}

func folderSummary(folder *entity.Folder, children []*entity.Note) ContextSummary {
	parts := make([]string, 0, len(children))
	for _, note := range children {
		parts = append(parts, "- "+note.Title+"\n"+note.Content)
	}
	return ContextSummary{
		EntityType: contextref.EntityFolder,
		EntityId:   folder.Id,
		Title:      "Folder: " + folder.Name,
		Body:       strings.Join(parts, "\n\n"),
	}
}

// fileBody renders "Metadata: <indented json>\n<description>".
func fileBody(metadata map[string]interface{}) (string, error) {
	if metadata == nil {
		metadata = map[string]interface{}{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(metadata); err != nil {
		return "", err
	}

	description := ""
	switch d := metadata["description"].(type) {
	case nil:
	case string:
		description = d
	default:
		description = fmt.Sprint(d)
	}

	return "Metadata: " + strings.TrimRight(buf.String(), "\n") + "\n" + description, nil
}
