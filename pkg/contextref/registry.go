package contextref

import (
	"context"
	"errors"
	"time"

	"cortex-ai-be/internal/pkg/logger"
	"cortex-ai-be/pkg/apperror"
	"cortex-ai-be/pkg/lock"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// Store persists the reference set of each conversation.
//
// Add may report apperror.ErrDuplicateReference; Remove reports
// apperror.ErrNotFound when nothing was deleted.
type Store interface {
	List(ctx context.Context, conversationId uuid.UUID) ([]Reference, error)
	Add(ctx context.Context, conversationId uuid.UUID, ref Reference) error
	Remove(ctx context.Context, conversationId uuid.UUID, ref Reference) error
}

// Registry keeps an optimistic local view of every conversation's reference set.
// Mutations update the view first and roll it back if the store rejects them.
type Registry struct {
	store  Store
	views  *cache.Cache
	locker lock.Locker
	logger logger.ILogger
}

func NewRegistry(store Store, locker lock.Locker, viewTTL time.Duration, log logger.ILogger) *Registry {
	if viewTTL <= 0 {
		viewTTL = 5 * time.Minute
	}
	return &Registry{
		store:  store,
		views:  cache.New(viewTTL, 2*viewTTL),
		locker: locker,
		logger: log,
	}
}

func lockKey(conversationId uuid.UUID) string {
	return "conversation:" + conversationId.String() + ":context"
}

// Add attaches ref. Attaching an already present reference succeeds without change.
func (r *Registry) Add(ctx context.Context, conversationId uuid.UUID, ref Reference) error {
	return r.mutate(ctx, conversationId, Mutation{Kind: OpAdd, Ref: ref})
}

// Remove detaches ref, or returns a NotFound error leaving the set unchanged.
func (r *Registry) Remove(ctx context.Context, conversationId uuid.UUID, ref Reference) error {
	return r.mutate(ctx, conversationId, Mutation{Kind: OpRemove, Ref: ref})
}

func (r *Registry) mutate(ctx context.Context, conversationId uuid.UUID, m Mutation) error {
	unlock, err := r.locker.Lock(ctx, lockKey(conversationId))
	if err != nil {
		return err
	}
	defer unlock()

	view, err := r.load(ctx, conversationId)
	if err != nil {
		return err
	}

	next, applied := Apply(view, m)
	if !applied.Applied() {
		if m.Kind == OpRemove {
			return apperror.NotFound("context reference not found")
		}
		return nil
	}
	r.views.SetDefault(conversationId.String(), next)

	if m.Kind == OpAdd {
		err = r.store.Add(ctx, conversationId, m.Ref)
	} else {
		err = r.store.Remove(ctx, conversationId, m.Ref)
	}

	switch {
	case err == nil:
		return nil
	case m.Kind == OpAdd && errors.Is(err, apperror.ErrDuplicateReference):
		// Already persisted; the optimistic view matches the store.
		return nil
	case m.Kind == OpRemove && errors.Is(err, apperror.ErrNotFound):
		// Gone from the store already; keep the view in line with it.
		return apperror.NotFound("context reference not found")
	}

	r.views.SetDefault(conversationId.String(), Compensate(next, applied))
	r.logger.Warn("ContextRegistry", "Rolled back reference mutation", map[string]interface{}{
		"conversation_id": conversationId,
		"reference":       KeyOf(m.Ref).String(),
		"op":              m.Kind,
		"error":           err.Error(),
	})
	return err
}

// Contains reports, without I/O, whether ref is in the cached view.
// Conversations without a warm view report false; call List to warm it.
func (r *Registry) Contains(conversationId uuid.UUID, ref Reference) bool {
	x, ok := r.views.Get(conversationId.String())
	if !ok {
		return false
	}
	return x.(Set).Contains(ref)
}

// List reads the authoritative set from the store and refreshes the view.
func (r *Registry) List(ctx context.Context, conversationId uuid.UUID) (Set, error) {
	return r.load(ctx, conversationId)
}

// Forget drops the view of a conversation, e.g. after it was deleted.
func (r *Registry) Forget(conversationId uuid.UUID) {
	r.views.Delete(conversationId.String())
}

func (r *Registry) load(ctx context.Context, conversationId uuid.UUID) (Set, error) {
	refs, err := r.store.List(ctx, conversationId)
	if err != nil {
		return Set{}, err
	}
	view := NewSet(refs...)
	r.views.SetDefault(conversationId.String(), view)
	return view, nil
}
