package bootstrap

import (
	"context"
	"log"
	"time"

	"admissions-rag-be/internal/config"
	"admissions-rag-be/internal/controller"
	"admissions-rag-be/internal/pkg/logger"
	"admissions-rag-be/internal/service"
	"admissions-rag-be/internal/websocket"
	"admissions-rag-be/pkg/chat"
	"admissions-rag-be/pkg/embedding"
	"admissions-rag-be/pkg/events"
	"admissions-rag-be/pkg/llm/factory"
	"admissions-rag-be/pkg/persistence"
	"admissions-rag-be/pkg/persistence/gormstore"
	"admissions-rag-be/pkg/persistence/redisstore"
	"admissions-rag-be/pkg/rag/analyzer"
	"admissions-rag-be/pkg/rag/ood"
	"admissions-rag-be/pkg/rag/orchestrator"
	"admissions-rag-be/pkg/rag/prompt"
	"admissions-rag-be/pkg/retrieval"
	pgvstore "admissions-rag-be/pkg/retrieval/pgvector"

	pktNats "admissions-rag-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	ChatController  controller.IChatController
	AdminController controller.IAdminController

	// Services exposed for routing and background work
	ChatService     service.IChatService
	RecorderService service.IRecorderService

	// WebSockets
	WebSocketHub *websocket.Hub

	Logger logger.ILogger

	natsSub   *pktNats.Subscriber
	sweepStop chan struct{}
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. AI Providers
	embeddingProvider, err := embedding.NewEmbeddingProvider(
		cfg.Ai.EmbeddingProvider,
		cfg.Keys.GoogleGemini,
		cfg.Ai.OllamaBaseURL,
		cfg.Ai.OllamaEmbeddingModel,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize Embedding Provider: %v", err)
	}
	log.Printf("[INFO] Using Embedding Provider: %s", cfg.Ai.EmbeddingProvider)

	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Keys.GoogleGemini,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// 4. Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}

	// Redis
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	redisAvailable := true
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
		redisAvailable = false
	}

	// 5. Chat State
	sessions := chat.NewRegistry(time.Duration(cfg.Chat.SessionTimeoutMinutes) * time.Minute)
	contexts := chat.NewCache(
		cfg.Chat.ContextMaxLength,
		time.Duration(cfg.Chat.ContextWindowMinutes)*time.Minute,
		time.Duration(cfg.Chat.CacheTimeoutMinutes)*time.Minute,
	)

	// 6. Retrieval over pgvector, memoized for repeated questions
	var searcher retrieval.Searcher = pgvstore.NewStore(db, embeddingProvider)
	searcher = retrieval.NewCachedSearcher(searcher, time.Duration(cfg.Chat.RetrievalCacheTTLMin)*time.Minute)

	// 7. RAG Pipeline
	gate := ood.NewGate(cfg.Chat.OODThreshold, cfg.Chat.OODEnabled)
	assembler := prompt.NewAssembler(prompt.Persona{
		Name:  cfg.Chat.BotName,
		Style: cfg.Chat.PersonalityStyle,
	}, prompt.DefaultContact())

	publisherService := service.NewPublisherService(cfg.Keys.RecordTurnTopic, pubSub)
	enqueuer := service.NewTurnEnqueuer(publisherService)

	pipeline := orchestrator.New(
		sessions,
		contexts,
		analyzer.New(),
		gate,
		assembler,
		searcher,
		llmProvider,
		orchestrator.WithTopK(cfg.Chat.TopK),
		orchestrator.WithStreamDelay(time.Duration(cfg.Chat.StreamDelayMs)*time.Millisecond),
		orchestrator.WithLogger(sysLogger),
		orchestrator.WithEnqueuer(enqueuer),
	)

	// 8. Turn recording: durable in Postgres, mirrored in Redis
	var mirror persistence.Recorder
	if redisAvailable {
		mirror = redisstore.NewStore(rdb)
	}
	recorderService := service.NewRecorderService(
		pubSub,
		cfg.Keys.RecordTurnTopic,
		gormstore.NewStore(db),
		mirror,
		natsPub,
		sysLogger,
	)

	// 9. Services
	chatService := service.NewChatService(pipeline, sessions, contexts, natsPub, sysLogger)
	configService := service.NewConfigService(
		cfg,
		config.NewRemoteLoader(cfg.App.AdminAPIURL),
		assembler,
		natsPub,
		sysLogger,
	)

	// WebSocket Hub
	wsLogger := logger.NewIsolatedLogger("logs/chat_ws.log")
	var hubRedis *redis.Client
	if redisAvailable {
		hubRedis = rdb
	}
	wsHub := websocket.NewHub(hubRedis, wsLogger)
	go wsHub.Run()

	// Bus events fan out to connected websocket clients as notices.
	var natsSub *pktNats.Subscriber
	if natsPub != nil {
		natsSub, err = pktNats.NewSubscriber(cfg.App.NatsURL)
		if err != nil {
			sysLogger.Warn("bootstrap", "failed to connect NATS subscriber", map[string]interface{}{
				"error": err.Error(),
			})
			natsSub = nil
		} else {
			subscribeHubNotices(natsSub, wsHub, sysLogger)
		}
	}

	c := &Container{
		ChatController:  controller.NewChatController(chatService),
		AdminController: controller.NewAdminController(configService),
		ChatService:     chatService,
		RecorderService: recorderService,
		WebSocketHub:    wsHub,
		Logger:          sysLogger,
		natsSub:         natsSub,
		sweepStop:       make(chan struct{}),
	}

	go c.runSweeper(chatService)

	return c
}

// runSweeper drops expired sessions and idle contexts every 10 minutes.
func (c *Container) runSweeper(chatService service.IChatService) {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			chatService.Sweep()
		case <-c.sweepStop:
			return
		}
	}
}

// subscribeHubNotices pushes session-clear and config-reload events to the
// websocket clients they concern.
func subscribeHubNotices(sub *pktNats.Subscriber, hub *websocket.Hub, sysLogger logger.ILogger) {
	ctx := context.Background()

	err := sub.Subscribe(ctx, "events."+events.TypeSessionCleared, "ws-session-notices",
		func(ctx context.Context, evt events.Event) error {
			if userKey, ok := evt.Payload()["user_key"].(string); ok && userKey != "" {
				hub.Notify(userKey, map[string]interface{}{"event": "session_cleared"})
			}
			return nil
		})
	if err != nil {
		sysLogger.Warn("bootstrap", "failed to subscribe to session-cleared events", map[string]interface{}{
			"error": err.Error(),
		})
	}

	err = sub.Subscribe(ctx, "events."+events.TypeConfigReloaded, "ws-config-notices",
		func(ctx context.Context, evt events.Event) error {
			hub.Broadcast(map[string]interface{}{"event": "config_reloaded"})
			return nil
		})
	if err != nil {
		sysLogger.Warn("bootstrap", "failed to subscribe to config-reloaded events", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

func (c *Container) Shutdown() {
	close(c.sweepStop)
	if c.natsSub != nil {
		c.natsSub.Close()
	}
	_ = c.Logger.Sync()
}
