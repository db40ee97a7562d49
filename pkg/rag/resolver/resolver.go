package resolver

import (
	"context"
	"strings"
	"time"
	"unicode"

	"cortex-ai-be/internal/constant"
	"cortex-ai-be/internal/entity"
	"cortex-ai-be/internal/pkg/logger"
	"cortex-ai-be/internal/repository/unitofwork"
	"cortex-ai-be/pkg/contextref"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/errgroup"
)

// Suggestion is one candidate entity for an @mention.
type Suggestion struct {
	EntityType contextref.EntityType `json:"entity_type"`
	EntityId   uuid.UUID             `json:"entity_id"`
	Title      string                `json:"title"`
	Subtitle   string                `json:"subtitle"`
	Attached   bool                  `json:"attached"`
}

func (s Suggestion) Reference() contextref.Reference {
	ref, _ := contextref.New(s.EntityType, s.EntityId)
	return ref
}

// Resolver finds workspace entities whose title or name contains a query.
type Resolver struct {
	uowFactory unitofwork.RepositoryFactory
	limit      int
	results    *cache.Cache
	logger     logger.ILogger
}

func NewResolver(uowFactory unitofwork.RepositoryFactory, limit int, cacheTTL time.Duration, log logger.ILogger) *Resolver {
	if limit <= 0 {
		limit = constant.SuggestionLimitPerType
	}
	var results *cache.Cache
	if cacheTTL > 0 {
		results = cache.New(cacheTTL, 2*cacheTTL)
	}
	return &Resolver{
		uowFactory: uowFactory,
		limit:      limit,
		results:    results,
		logger:     log,
	}
}

// Suggest returns notes, then folders, then files matching query, at most limit of each.
func (r *Resolver) Suggest(ctx context.Context, userId uuid.UUID, query string) ([]Suggestion, error) {
	query = strings.TrimSpace(query)
	cacheKey := userId.String() + "|" + strings.ToLower(query)
	if r.results != nil {
		if x, ok := r.results.Get(cacheKey); ok {
			return cloneSuggestions(x.([]Suggestion)), nil
		}
	}

	var (
		notes   []*entity.Note
		folders []*entity.Folder
		files   []*entity.File
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		notes, err = r.uowFactory.NewUnitOfWork(gctx).NoteRepository().SearchByTitle(gctx, userId, query, r.limit)
		return err
	})
	g.Go(func() (err error) {
		folders, err = r.uowFactory.NewUnitOfWork(gctx).FolderRepository().SearchByName(gctx, userId, query, r.limit)
		return err
	})
	g.Go(func() (err error) {
		files, err = r.uowFactory.NewUnitOfWork(gctx).FileRepository().SearchByName(gctx, userId, query, r.limit)
		return err
	})
	if err := g.Wait(); err != nil {
		r.logger.Error("EntityResolver", "Suggestion lookup failed", map[string]interface{}{
			"user_id": userId,
			"query":   query,
			"error":   err.Error(),
		})
		return nil, err
	}

	suggestions := make([]Suggestion, 0, len(notes)+len(folders)+len(files))
	for _, n := range notes {
		suggestions = append(suggestions, Suggestion{
			EntityType: contextref.EntityNote,
			EntityId:   n.Id,
			Title:      n.Title,
			Subtitle:   NoteSubtitle(n.Content),
		})
	}
	for _, f := range folders {
		suggestions = append(suggestions, Suggestion{
			EntityType: contextref.EntityFolder,
			EntityId:   f.Id,
			Title:      f.Name,
			Subtitle:   constant.FolderSubtitle,
		})
	}
	for _, f := range files {
		suggestions = append(suggestions, Suggestion{
			EntityType: contextref.EntityFile,
			EntityId:   f.Id,
			Title:      f.Name,
			Subtitle:   f.Type,
		})
	}

	if r.results != nil {
		r.results.SetDefault(cacheKey, cloneSuggestions(suggestions))
	}
	return suggestions, nil
}

// SuggestFor is Suggest with every suggestion already in attached flagged.
func (r *Resolver) SuggestFor(ctx context.Context, userId uuid.UUID, attached contextref.Set, query string) ([]Suggestion, error) {
	suggestions, err := r.Suggest(ctx, userId, query)
	if err != nil {
		return nil, err
	}
	for i := range suggestions {
		if ref := suggestions[i].Reference(); ref != nil && attached.Contains(ref) {
			suggestions[i].Attached = true
		}
	}
	return suggestions, nil
}

// NoteSubtitle collapses whitespace runs in content and keeps the first runes.
func NoteSubtitle(content string) string {
	var b strings.Builder
	count := 0
	inSpace := false
	for _, r := range content {
		if count >= constant.SuggestionSubtitleRunes {
			break
		}
		if unicode.IsSpace(r) {
			if inSpace {
				continue
			}
			inSpace = true
			r = ' '
		} else {
			inSpace = false
		}
		b.WriteRune(r)
		count++
	}
	if b.Len() == 0 {
		return constant.NoteSubtitleUnavailable
	}
	return b.String()
}

func cloneSuggestions(in []Suggestion) []Suggestion {
	out := make([]Suggestion, len(in))
	copy(out, in)
	return out
}
