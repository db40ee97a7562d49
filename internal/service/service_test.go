package service

import (
	"context"
	"sync"
	"time"

	"cortex-ai-be/internal/pkg/logger"
	"cortex-ai-be/internal/repository/memory"
	"cortex-ai-be/internal/repository/unitofwork"
	"cortex-ai-be/pkg/contextref"
	"cortex-ai-be/pkg/events"
	"cortex-ai-be/pkg/llm"
	"cortex-ai-be/pkg/lock"
	"cortex-ai-be/pkg/rag/access"
	"cortex-ai-be/pkg/rag/resolver"
	"cortex-ai-be/pkg/rag/summarizer"
)

type stubProvider struct {
	mu      sync.Mutex
	reply   string
	err     error
	prompts []string
}

func (p *stubProvider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	return p.Generate(ctx, "", options...)
}

func (p *stubProvider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.prompts = append(p.prompts, prompt)
	return p.reply, p.err
}

func (p *stubProvider) lastPrompt() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.prompts) == 0 {
		return ""
	}
	return p.prompts[len(p.prompts)-1]
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(ctx context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.EventType())
	}
	return out
}

type harness struct {
	store      *memory.Store
	uowFactory unitofwork.RepositoryFactory
	registry   *contextref.Registry
	provider   *stubProvider
	publisher  *recordingPublisher
	chat       IChatbotService
	context    IContextService
}

func newHarness() *harness {
	store := memory.NewStore()
	uowFactory := memory.NewRepositoryFactory(store)
	log := logger.NewNopLogger()
	locker := lock.NewMemoryLocker()
	registry := contextref.NewRegistry(NewContextReferenceStore(uowFactory), locker, time.Minute, log)
	provider := &stubProvider{reply: "Here is the answer."}
	publisher := &recordingPublisher{}

	chat := NewChatbotService(
		uowFactory,
		registry,
		summarizer.NewSummarizer(uowFactory, 5, log),
		llm.NewGateway(provider, time.Second),
		access.NewLimiter(1000, 1000),
		locker,
		publisher,
		log,
	)
	ctxService := NewContextService(
		uowFactory,
		registry,
		resolver.NewResolver(uowFactory, 8, 0, log),
		publisher,
		log,
	)

	return &harness{
		store:      store,
		uowFactory: uowFactory,
		registry:   registry,
		provider:   provider,
		publisher:  publisher,
		chat:       chat,
		context:    ctxService,
	}
}

// newTightLimiter allows a single send and then refuses.
func newTightLimiter() *access.Limiter {
	return access.NewLimiter(0.0001, 1)
}
