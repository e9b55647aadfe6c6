package di

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/prohmpiriya/sportify-web/internal/apiclient"
	"github.com/prohmpiriya/sportify-web/internal/bookingflow"
	"github.com/prohmpiriya/sportify-web/internal/events"
	"github.com/prohmpiriya/sportify-web/internal/handler"
	"github.com/prohmpiriya/sportify-web/internal/middleware"
	"github.com/prohmpiriya/sportify-web/internal/session"
	"github.com/prohmpiriya/sportify-web/pkg/config"
	"github.com/prohmpiriya/sportify-web/pkg/logger"
	pkgredis "github.com/prohmpiriya/sportify-web/pkg/redis"
)

// Container holds all dependencies of the web front-end
type Container struct {
	Config *config.Config
	Logger *logger.Logger

	// Infrastructure
	Redis     *pkgredis.Client
	Store     session.Store
	Publisher events.Publisher
	Activity  *events.AsyncPublisher

	// Backend access and per-session state
	API   *apiclient.Client
	Flows *bookingflow.Registry

	// HTTP
	Limiter middleware.Limiter
	Handler *handler.Handler
	Router  *gin.Engine

	closers []func() error
}

// NewContainer connects the infrastructure and builds the router. Redis is
// only dialed when sessions or rate limiting need it; Kafka only when enabled.
func NewContainer(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Container, error) {
	c := &Container{Config: cfg, Logger: log}

	if cfg.Session.Store == "redis" || cfg.RateLimit.Enabled {
		redis, err := pkgredis.NewClient(ctx, redisConfig(cfg))
		switch {
		case err == nil:
			c.Redis = redis
			c.closers = append(c.closers, redis.Close)
			log.Info("Redis connected", zap.String("addr", cfg.Redis.Addr()))
		case cfg.Session.Store == "redis":
			return nil, fmt.Errorf("session store: %w", err)
		default:
			log.Warn("Redis unavailable, rate limiting falls back to local buckets", zap.Error(err))
		}
	}

	if cfg.Session.Store == "redis" {
		c.Store = session.NewRedisStore(c.Redis, cfg.Session.TTL)
	} else {
		c.Store = session.NewMemoryStore(cfg.Session.TTL)
		log.Warn("Using in-memory sessions, they are lost on restart")
	}

	c.Publisher = events.NewNoOpPublisher()
	if cfg.Kafka.Enabled {
		publisher, err := events.NewKafkaPublisher(ctx, &events.Config{
			Brokers:     cfg.Kafka.Brokers,
			Topic:       cfg.Kafka.Topic,
			ClientID:    cfg.Kafka.ClientID,
			ServiceName: cfg.App.Name,
		})
		if err != nil {
			log.Warn("Kafka unavailable, activity events are dropped", zap.Error(err))
		} else {
			c.Publisher = publisher
			log.Info("Kafka publisher ready", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.Topic))
		}
	}
	// drains in-flight events before the Kafka client closes
	c.Activity = events.NewAsyncPublisher(c.Publisher)
	c.closers = append(c.closers, c.Activity.Close)

	c.API = apiclient.New(apiclient.Config{BaseURL: cfg.Backend.BaseURL, Timeout: cfg.Backend.Timeout})
	c.Flows = bookingflow.NewRegistry(cfg.App.PublicOrigin)

	checks := map[string]handler.HealthChecker{}
	if c.Redis != nil {
		checks["redis"] = c.Redis
	}

	c.Handler = handler.New(handler.Config{
		API:      c.API,
		Flows:    c.Flows,
		Store:    c.Store,
		Activity: c.Activity,
		Session: middleware.SessionConfig{
			CookieName: cfg.Session.CookieName,
			TTL:        cfg.Session.TTL,
			Secure:     cfg.Session.Secure,
		},
		Origin:      cfg.App.PublicOrigin,
		ServiceName: cfg.App.Name,
		Version:     cfg.App.Version,
		Logger:      log,
		Checks:      checks,
	})

	var throttle gin.HandlerFunc
	if cfg.RateLimit.Enabled {
		rl := middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			BurstSize:         cfg.RateLimit.BurstSize,
			KeyPrefix:         "auth:",
		}
		if c.Redis != nil {
			c.Limiter = middleware.NewRedisRateLimiter(c.Redis, rl)
			log.Info("Rate limiting enabled (Redis-backed, distributed)")
		} else {
			local := middleware.NewLocalRateLimiter(rl)
			c.closers = append(c.closers, func() error { local.Stop(); return nil })
			c.Limiter = local
			log.Info("Rate limiting enabled (local, non-distributed)")
		}
		throttle = middleware.RateLimit(c.Limiter, rl, log)
	} else {
		log.Warn("Rate limiting DISABLED (RATE_LIMIT_ENABLED=false)")
	}

	var idempotency gin.HandlerFunc
	if c.Redis != nil {
		idempotency = middleware.Idempotency(middleware.IdempotencyConfig{Redis: c.Redis.Client()}, log)
	}

	c.Router = c.Handler.Router(handler.RouterOptions{Throttle: throttle, Idempotency: idempotency})
	return c, nil
}

// RunJanitor evicts booking flows left idle for half an hour; it blocks
// until ctx is done
func (c *Container) RunJanitor(ctx context.Context) {
	c.Flows.RunJanitor(ctx, time.Minute, 30*time.Minute)
}

// Close releases infrastructure in reverse order of creation
func (c *Container) Close() error {
	var first error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func redisConfig(cfg *config.Config) *pkgredis.Config {
	return &pkgredis.Config{
		Host:          cfg.Redis.Host,
		Port:          cfg.Redis.Port,
		Password:      cfg.Redis.Password,
		DB:            cfg.Redis.DB,
		PoolSize:      cfg.Redis.PoolSize,
		MinIdleConns:  cfg.Redis.MinIdleConns,
		DialTimeout:   cfg.Redis.DialTimeout,
		ReadTimeout:   cfg.Redis.ReadTimeout,
		WriteTimeout:  cfg.Redis.WriteTimeout,
		MaxRetries:    3,
		RetryInterval: 2 * time.Second,
	}
}
