package bootstrap

import (
	"context"
	"log"

	"cortex-ai-be/internal/config"
	"cortex-ai-be/internal/constant"
	"cortex-ai-be/internal/controller"
	"cortex-ai-be/internal/handler"
	"cortex-ai-be/internal/pkg/logger"
	"cortex-ai-be/internal/repository/memory"
	"cortex-ai-be/internal/repository/unitofwork"
	"cortex-ai-be/internal/service"
	"cortex-ai-be/internal/websocket"
	"cortex-ai-be/pkg/contextref"
	"cortex-ai-be/pkg/llm"
	"cortex-ai-be/pkg/llm/factory"
	"cortex-ai-be/pkg/lock"
	"cortex-ai-be/pkg/rag/access"
	"cortex-ai-be/pkg/rag/resolver"
	"cortex-ai-be/pkg/rag/summarizer"

	pktNats "cortex-ai-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	ChatbotController controller.IChatbotController
	ContextController controller.IContextController

	// Background Services (started by Start)
	ConsumerService service.IConsumerService
	RelayService    *service.RelayService

	// WebSockets
	ComposerHandler *handler.ComposerHandler
	WebSocketHub    *websocket.Hub

	Logger *logger.ZapLogger

	natsConn *nats.Conn
	natsSub  *pktNats.Subscriber
	rdb      *redis.Client
}

// NewContainer wires the application. A nil db selects the in-memory store.
// NATS and Redis are optional: without them events are delivered in-process
// and conversation locks are local to this instance.
func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())

	var uowFactory unitofwork.RepositoryFactory
	if db != nil {
		uowFactory = unitofwork.NewRepositoryFactory(db)
	} else {
		log.Println("[WARN] No database configured, using in-memory storage")
		uowFactory = memory.NewRepositoryFactory(memory.NewStore())
	}

	// 2. Event Bus
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermill.NewStdLogger(false, false),
	)

	// 3. Infrastructure
	c := &Container{Logger: sysLogger}

	var forwarder service.EventForwarder
	if nc, err := pktNats.Connect(cfg.App.NatsURL); err != nil {
		log.Printf("[WARN] Failed to connect to NATS: %v", err)
	} else {
		c.natsConn = nc
		if pub, err := pktNats.NewPublisher(nc, sysLogger); err != nil {
			log.Printf("[WARN] Failed to create NATS publisher: %v", err)
		} else {
			forwarder = pub
		}
		if sub, err := pktNats.NewSubscriber(nc, sysLogger); err != nil {
			log.Printf("[WARN] Failed to create NATS subscriber: %v", err)
		} else {
			c.natsSub = sub
		}
	}

	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{Addr: cfg.App.RedisURL}
	}
	rdb := redis.NewClient(opt)
	var locker lock.Locker
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v. Using local locks", err)
		_ = rdb.Close()
		rdb = nil
		locker = lock.NewMemoryLocker()
	} else {
		c.rdb = rdb
		locker = lock.NewRedisLocker(rdb, cfg.Chat.LockTTL)
	}

	wsLogger := logger.NewIsolatedLogger("logs/websocket.log")
	c.WebSocketHub = websocket.NewHub(rdb, wsLogger)

	// 4. Engines
	llmProvider, err := factory.NewLLMProvider(context.Background(), factory.ProviderConfig{
		Provider: cfg.Ai.LLMProvider,
		Model:    cfg.Ai.LLMModel,
		BaseURL:  cfg.Ai.OllamaBaseURL,
		APIKey:   cfg.Ai.GeminiAPIKey,
	})
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	registry := contextref.NewRegistry(
		service.NewContextReferenceStore(uowFactory),
		locker,
		cfg.Chat.ContextViewTTL,
		sysLogger,
	)
	entityResolver := resolver.NewResolver(uowFactory, cfg.Chat.SuggestionLimit, cfg.Chat.SuggestionCacheTTL, sysLogger)
	contextSummarizer := summarizer.NewSummarizer(uowFactory, cfg.Chat.FallbackNoteCount, sysLogger)
	gateway := llm.NewGateway(llmProvider, cfg.Ai.GenerationTimeout, cfg.Ai.GenerationOptions()...)
	limiter := access.NewLimiter(cfg.Ai.RateLimitRPS, cfg.Ai.RateLimitBurst)

	// 5. Services
	publisherService := service.NewPublisherService(constant.ConversationEventsTopic, pubSub)
	c.ConsumerService = service.NewConsumerService(
		pubSub,
		constant.ConversationEventsTopic,
		forwarder,
		c.WebSocketHub,
		sysLogger,
	)
	if c.natsSub != nil {
		c.RelayService = service.NewRelayService(c.natsSub, c.WebSocketHub, sysLogger)
	}

	chatbotService := service.NewChatbotService(
		uowFactory,
		registry,
		contextSummarizer,
		gateway,
		limiter,
		locker,
		publisherService,
		sysLogger,
	)
	contextService := service.NewContextService(uowFactory, registry, entityResolver, publisherService, sysLogger)

	// 6. Controllers
	c.ChatbotController = controller.NewChatbotController(chatbotService)
	c.ContextController = controller.NewContextController(contextService)
	c.ComposerHandler = handler.NewComposerHandler(contextService, c.WebSocketHub, cfg.App.JWTSecret, wsLogger)

	return c
}

// Start runs the hub and the event workers until ctx is done.
func (c *Container) Start(ctx context.Context) {
	go c.WebSocketHub.Run(ctx)

	go func() {
		log.Println("Background: Starting Consumer Service...")
		if err := c.ConsumerService.Consume(ctx); err != nil {
			log.Printf("Background Consumer Error: %v", err)
		}
	}()

	if c.RelayService != nil {
		if err := c.RelayService.Start(ctx); err != nil {
			log.Printf("Background Relay Error: %v", err)
		}
	}
}

func (c *Container) Close() {
	if c.natsSub != nil {
		c.natsSub.Close()
	}
	if c.natsConn != nil {
		c.natsConn.Close()
	}
	if c.rdb != nil {
		_ = c.rdb.Close()
	}
	_ = c.Logger.Sync()
}
