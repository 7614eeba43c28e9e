package bootstrap

import (
	"context"
	"log"

	"marketing-assistant-be/internal/config"
	"marketing-assistant-be/internal/controller"
	"marketing-assistant-be/internal/handler"
	"marketing-assistant-be/internal/pkg/logger"
	"marketing-assistant-be/internal/repository/memory"
	"marketing-assistant-be/internal/repository/unitofwork"
	"marketing-assistant-be/internal/service"
	"marketing-assistant-be/internal/websocket"
	"marketing-assistant-be/pkg/chatbot"
	"marketing-assistant-be/pkg/database"
	"marketing-assistant-be/pkg/delivery"
	"marketing-assistant-be/pkg/events"
	pktNats "marketing-assistant-be/pkg/nats"
	"marketing-assistant-be/pkg/orchestrator"
	"marketing-assistant-be/pkg/rag/retrieval"
	"marketing-assistant-be/pkg/session"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	Logger logger.ILogger

	ChatController     controller.IChatController
	ScrapeController   controller.IScrapeController
	DocumentController controller.IDocumentController
	SessionController  controller.ISessionController
	HealthController   controller.IHealthController
	ChatWsHandler      *handler.ChatWsHandler
	WebSocketHub       *websocket.Hub

	ConsumerService   service.IConsumerService
	ChatBridgeService service.IChatBridgeService // nil when NATS is unavailable

	Orchestrator   *orchestrator.Orchestrator
	Index          *retrieval.Index
	Guard          *delivery.Guard
	Sessions       *session.Registry
	Conversation   service.IConversationService
	EventPublisher events.Publisher

	cfg     *config.Config
	redis   *redis.Client
	closers []func()
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	c := &Container{Logger: sysLogger, cfg: cfg}

	// 2. Ingestion Queue
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)
	c.closers = append(c.closers, func() { _ = pubSub.Close() })

	// 3. Infrastructure
	// NATS
	var eventPublisher events.Publisher = events.NopPublisher{}
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	} else {
		eventPublisher = natsPub
		c.closers = append(c.closers, natsPub.Close)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	} else {
		c.closers = append(c.closers, natsSub.Close)
	}
	c.EventPublisher = eventPublisher

	// Delivery ledger: Redis when configured and reachable, otherwise process memory
	c.Guard = delivery.NewGuard(newLedger(cfg, c), delivery.SystemClock{}, cfg.Guard.TTL, sysLogger)

	// 4. AI Core
	core, err := NewCore(cfg, service.NewDocumentStore(uowFactory), sysLogger)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize AI core: %v", err)
	}
	c.Orchestrator = core.Orchestrator
	c.Index = core.Index

	// 5. Services
	c.Conversation = service.NewConversationService(uowFactory)
	c.Sessions = session.NewRegistry(c.Conversation, memory.NewSessionCache(cfg.Session.CacheTTL), sysLogger)

	publisherService := service.NewPublisherService(cfg.App.IngestTopic, pubSub)
	documentService := service.NewDocumentService(core.Index, publisherService, eventPublisher, sysLogger)
	c.ConsumerService = service.NewConsumerService(pubSub, pubSub, service.ConsumerConfig{
		Topic:           cfg.App.IngestTopic,
		PoisonTopic:     cfg.App.IngestPoisonTopic,
		MaxRetries:      cfg.App.IngestMaxRetries,
		InitialInterval: cfg.App.IngestRetryBackoff,
	}, documentService, watermillLogger)

	scrapeService := service.NewScrapeService(core.Scraper, documentService, sysLogger)
	chatService := service.NewChatService(c.Conversation, core.Orchestrator, eventPublisher, cfg.Session.HistoryLimit, sysLogger)

	if natsSub != nil && natsPub != nil {
		bridgeHandler := c.NewChatHandler(service.NewEventTransport(natsPub), "nats", sysLogger)
		c.ChatBridgeService = service.NewChatBridgeService(natsSub, cfg.App.InboundChatSubject, bridgeHandler, sysLogger)
	}

	// WebSocket Hub
	c.WebSocketHub = websocket.NewHub(sysLogger)
	go c.WebSocketHub.Run()

	// 6. Controllers
	c.ChatController = controller.NewChatController(chatService)
	c.ScrapeController = controller.NewScrapeController(scrapeService)
	c.DocumentController = controller.NewDocumentController(documentService, cfg.App.JwtSecret)
	c.SessionController = controller.NewSessionController(c.Conversation, cfg.Session.HistoryLimit, cfg.App.JwtSecret)
	healthChecks := map[string]controller.HealthCheck{
		"database": func(ctx context.Context) error { return database.Ping(ctx, db) },
	}
	if c.redis != nil {
		healthChecks["redis"] = func(ctx context.Context) error { return c.redis.Ping(ctx).Err() }
	}
	c.HealthController = controller.NewHealthController(healthChecks)
	c.ChatWsHandler = handler.NewChatWsHandler(chatService, c.WebSocketHub, sysLogger)

	return c
}

// NewChatHandler builds a chat-platform front door over transport. All
// front doors share one guard, session registry and orchestrator.
func (c *Container) NewChatHandler(transport chatbot.Transport, channel string, log logger.ILogger) *chatbot.Handler {
	return chatbot.NewHandler(
		transport,
		c.Guard,
		c.Sessions,
		c.Conversation,
		c.Orchestrator,
		c.EventPublisher,
		chatbot.Config{
			Channel:      channel,
			Prefix:       c.cfg.Discord.TriggerPrefix,
			HistoryLimit: c.cfg.Session.HistoryLimit,
		},
		log,
	)
}

// Close releases bus connections and flushes the logger.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	_ = c.Logger.Sync()
}

func newLedger(cfg *config.Config, c *Container) delivery.Ledger {
	if cfg.Guard.Backend != "redis" {
		return delivery.NewMemoryLedger()
	}

	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v. Using in-memory delivery ledger", err)
		_ = rdb.Close()
		return delivery.NewMemoryLedger()
	}

	c.redis = rdb
	c.closers = append(c.closers, func() { _ = rdb.Close() })
	log.Printf("[INFO] Using Redis delivery ledger")
	return delivery.NewRedisLedger(rdb, cfg.Guard.TTL)
}
