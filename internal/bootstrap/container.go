package bootstrap

import (
	"context"
	"log"

	"voice-agent-be/internal/config"
	"voice-agent-be/internal/controller"
	"voice-agent-be/internal/handler"
	"voice-agent-be/internal/pkg/logger"
	"voice-agent-be/internal/service"
	"voice-agent-be/pkg/dialogue"
	"voice-agent-be/pkg/interaction"
	"voice-agent-be/pkg/lease"

	pktNats "voice-agent-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
)

type Container struct {
	// Controllers
	ChatController controller.IChatController

	// Voice sessions
	SessionHandler *handler.SessionHandler
	SessionService service.ISessionService

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	Logger logger.ILogger

	closers []func()
}

func NewContainer(cfg *config.Config) *Container {
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	sessionLogger := logger.NewIsolatedLogger(cfg.App.SessionLogFilePath)
	return NewContainerWithLoggers(cfg, sysLogger, sessionLogger)
}

// NewContainerWithLoggers wires everything with the given loggers. sessionLog
// receives the per-turn traffic of live sessions.
func NewContainerWithLoggers(cfg *config.Config, sysLogger, sessionLog logger.ILogger) *Container {
	c := &Container{Logger: sysLogger}

	// 1. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)
	c.closers = append(c.closers, func() { _ = pubSub.Close() })

	// 2. Infrastructure
	// NATS (optional)
	var forwarder service.EventForwarder
	if cfg.App.NatsURL != "" {
		natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		} else {
			forwarder = natsPub
			c.closers = append(c.closers, natsPub.Close)
		}
	}

	// Session lease: Redis when configured, otherwise in memory
	var sessionLease lease.Lease = lease.NewMemoryLease()
	if cfg.App.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.App.RedisURL)
		if err != nil {
			log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
			opt = &redis.Options{
				Addr: cfg.App.RedisURL,
			}
		}
		rdb := redis.NewClient(opt)
		if _, err := rdb.Ping(context.Background()).Result(); err != nil {
			log.Printf("[WARN] Failed to connect to Redis: %v", err)
		}
		sessionLease = lease.NewRedisLease(rdb, lease.DefaultRedisKey)
		c.closers = append(c.closers, func() { _ = rdb.Close() })
	}

	// 3. Services
	publisherService := service.NewPublisherService(cfg.App.EventTopic, pubSub)
	c.ConsumerService = service.NewConsumerService(pubSub, cfg.App.EventTopic, forwarder, sysLogger)

	chatService := service.NewChatService(dialogue.NewEngine(), cfg.Agent.Persona, sysLogger)

	c.SessionService = service.NewSessionService(
		interactionConfig(cfg),
		cfg.Session.TTL,
		chatService, // In-process replier
		sessionLease,
		publisherService,
		sessionLog,
	)
	// Sessions must end before the bus they publish to closes
	c.closers = append([]func(){c.SessionService.CloseAll}, c.closers...)

	// 4. Controllers & Handlers
	c.ChatController = controller.NewChatController(chatService, sysLogger)
	c.SessionHandler = handler.NewSessionHandler(c.SessionService, cfg.App.JwtSecret, sessionLog)

	return c
}

func interactionConfig(cfg *config.Config) interaction.Config {
	ic := interaction.DefaultConfig()
	ic.Locale = cfg.Agent.Locale
	ic.Prosody = interaction.Prosody{
		Rate:   cfg.Agent.Rate,
		Pitch:  cfg.Agent.Pitch,
		Volume: cfg.Agent.Volume,
	}
	ic.CaptureTimeout = cfg.Session.CaptureTimeout
	ic.ReplyTimeout = cfg.Session.ReplyTimeout
	ic.PlaybackTimeout = cfg.Session.PlaybackTimeout
	return ic
}

// Close ends live sessions and releases infrastructure connections.
func (c *Container) Close() {
	for _, closeFn := range c.closers {
		closeFn()
	}
	_ = c.Logger.Sync()
}
