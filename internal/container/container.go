// Package container wires the application together with samber/do.
// Each concern registers through its own Package function so the
// server and the consumer binaries can assemble only what they need.
package container

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/VictorEZCodes/BouncerLink/internal/analytics"
	"github.com/VictorEZCodes/BouncerLink/internal/auth"
	"github.com/VictorEZCodes/BouncerLink/internal/handlers"
	"github.com/VictorEZCodes/BouncerLink/internal/link"
	"github.com/VictorEZCodes/BouncerLink/internal/messaging"
	"github.com/VictorEZCodes/BouncerLink/internal/middleware"
	"github.com/VictorEZCodes/BouncerLink/internal/notify"
	"github.com/VictorEZCodes/BouncerLink/internal/ratelimit"
	"github.com/VictorEZCodes/BouncerLink/internal/resolve"
	"github.com/VictorEZCodes/BouncerLink/internal/shortcode"
	"github.com/VictorEZCodes/BouncerLink/internal/store"
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	_ "github.com/danielgtaylor/huma/v2/formats/cbor" // CBOR format support for huma
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"go.uber.org/zap"
)

// consumerGroupName identifies this service on the Redis streams.
const consumerGroupName = "bouncerlink"

// LoggerPackage provides the zap logger.
func LoggerPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*zap.Logger, error) {
		options := do.MustInvoke[*Options](i)

		if options.LogFormat == "json" {
			return zap.NewProduction()
		}

		return zap.NewDevelopment()
	})
}

// RedisPackage provides the Redis client.
func RedisPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*redis.Client, error) {
		options := do.MustInvoke[*Options](i)

		return redis.NewClient(&redis.Options{
			Addr: options.RedisAddr,
		}), nil
	})
}

// PostgresPackage provides the connection pool and applies the schema.
func PostgresPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*pgxpool.Pool, error) {
		options := do.MustInvoke[*Options](i)

		pool, err := pgxpool.New(context.Background(), options.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("postgres pool: %w", err)
		}

		if err := store.Migrate(context.Background(), pool); err != nil {
			return nil, fmt.Errorf("migrate: %w", err)
		}

		return pool, nil
	})
}

// RepositoryPackage provides the link store (Postgres behind a Redis
// read cache), the visit log, and the rate limit store.
func RepositoryPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*store.PostgresStore, error) {
		return store.NewPostgresStore(do.MustInvoke[*pgxpool.Pool](i)), nil
	})

	do.Provide(injector, func(i *do.Injector) (link.Store, error) {
		options := do.MustInvoke[*Options](i)
		pg := do.MustInvoke[*store.PostgresStore](i)

		ttl := time.Duration(options.CacheTTL) * time.Second
		if ttl <= 0 {
			return pg, nil
		}

		return store.NewRedisCacheStore(pg, do.MustInvoke[*redis.Client](i), ttl), nil
	})

	do.Provide(injector, func(i *do.Injector) (link.VisitLog, error) {
		return do.MustInvoke[*store.PostgresStore](i), nil
	})

	do.Provide(injector, func(i *do.Injector) (ratelimit.Store, error) {
		return store.NewRateLimitRedisStore(do.MustInvoke[*redis.Client](i)), nil
	})
}

// PublisherGroupPackage provides the watermill publisher backed by
// Redis streams.
func PublisherGroupPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*messaging.PublisherGroup, error) {
		publisher, err := redisstream.NewPublisher(redisstream.PublisherConfig{
			Client: do.MustInvoke[*redis.Client](i),
		}, watermill.NewStdLogger(false, false))
		if err != nil {
			return nil, fmt.Errorf("redis stream publisher: %w", err)
		}

		return messaging.NewPublisherGroup(publisher), nil
	})
}

// EnginePackage provides the short code generator and the resolution
// engine.
func EnginePackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*shortcode.Generator, error) {
		options := do.MustInvoke[*Options](i)

		newCode, err := shortcode.NewRandomCode(options.CodeLength)
		if err != nil {
			return nil, err
		}

		return shortcode.NewGenerator(do.MustInvoke[link.Store](i), newCode), nil
	})

	do.Provide(injector, func(i *do.Injector) (*resolve.Engine, error) {
		group := do.MustInvoke[*messaging.PublisherGroup](i)

		return resolve.NewEngine(
			do.MustInvoke[link.Store](i),
			do.MustInvoke[link.VisitLog](i),
			messaging.NewPublishFunc[notify.Event](group.Publisher(), notify.TopicNotificationRequested),
			messaging.NewPublishFunc[analytics.LinkVisitedEvent](group.Publisher(), analytics.TopicLinkVisited),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})
}

// HTTPPackage provides the router and the huma API with all routes
// and middleware registered.
func HTTPPackage(injector *do.Injector) {
	do.Provide(injector, func(_ *do.Injector) (*chi.Mux, error) {
		return chi.NewMux(), nil
	})

	do.Provide(injector, func(i *do.Injector) (huma.API, error) {
		options := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)
		group := do.MustInvoke[*messaging.PublisherGroup](i)
		linkStore := do.MustInvoke[link.Store](i)

		api := humachi.New(do.MustInvoke[*chi.Mux](i), huma.DefaultConfig("BouncerLink", "1.0.0"))

		api.UseMiddleware(
			middleware.RequestMeta(api),
			middleware.Authenticate(api, auth.NewVerifier(options.JWTSecret)),
			middleware.RateLimiter(api, do.MustInvoke[ratelimit.Store](i), logger),
		)

		linkHandler := handlers.NewLinkHandler(
			do.MustInvoke[*shortcode.Generator](i),
			linkStore,
			options.BaseURL,
			messaging.NewPublishFunc[analytics.LinkCreatedEvent](group.Publisher(), analytics.TopicLinkCreated),
			logger,
		)

		resolveHandler := handlers.NewResolveHandler(
			do.MustInvoke[*resolve.Engine](i),
			linkStore,
			logger,
		)

		analyticsHandler := handlers.NewAnalyticsHandler(
			linkStore,
			do.MustInvoke[link.VisitLog](i),
			logger,
		)

		healthHandler := handlers.NewHealthHandler(
			handlers.NewRedisHealthChecker(do.MustInvoke[*redis.Client](i)),
			handlers.NewPostgresHealthChecker(do.MustInvoke[*pgxpool.Pool](i)),
		)

		handlers.RegisterRoutes(api, linkHandler, resolveHandler, analyticsHandler, healthHandler)

		return api, nil
	})
}

// ConsumerGroupPackage provides the consumer group running the
// notification sender and the analytics event sink.
func ConsumerGroupPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*messaging.ConsumerGroup, error) {
		options := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)

		subscriber, err := redisstream.NewSubscriber(redisstream.SubscriberConfig{
			Client:        do.MustInvoke[*redis.Client](i),
			ConsumerGroup: consumerGroupName,
		}, watermill.NewStdLogger(false, false))
		if err != nil {
			return nil, fmt.Errorf("redis stream subscriber: %w", err)
		}

		sender, err := notify.NewSMTPSender(notify.SMTPConfig{
			Host:     options.SMTPHost,
			Port:     options.SMTPPort,
			Username: options.SMTPUsername,
			Password: options.SMTPPassword,
			From:     options.SMTPFrom,
		}, time.Duration(options.NotifyTimeout)*time.Second)
		if err != nil {
			return nil, err
		}

		sink := analytics.NewLogStore(logger)

		group := messaging.NewConsumerGroup(subscriber, logger)
		group.Add(messaging.NewConsumer[notify.Event](subscriber, notify.TopicNotificationRequested,
			notify.NewHandler(sender, logger), logger))
		group.Add(messaging.NewConsumer[analytics.LinkCreatedEvent](subscriber, analytics.TopicLinkCreated,
			sink.SaveLinkCreated, logger))
		group.Add(messaging.NewConsumer[analytics.LinkVisitedEvent](subscriber, analytics.TopicLinkVisited,
			sink.SaveLinkVisited, logger))

		return group, nil
	})
}
