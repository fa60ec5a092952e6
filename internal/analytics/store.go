package analytics

import (
	"context"

	"go.uber.org/zap"
)

// Store defines the interface for persisting analytics events
// consumed off the event stream.
type Store interface {
	SaveLinkCreated(ctx context.Context, event *LinkCreatedEvent) error
	SaveLinkVisited(ctx context.Context, event *LinkVisitedEvent) error
}

// LogStore is a Store that only logs events. It backs the consumer
// when no analytics sink is configured.
type LogStore struct {
	logger *zap.Logger
}

// NewLogStore creates a logging analytics store.
func NewLogStore(logger *zap.Logger) *LogStore {
	return &LogStore{logger: logger}
}

func (s *LogStore) SaveLinkCreated(_ context.Context, event *LinkCreatedEvent) error {
	s.logger.Info("link created event received",
		zap.String("code", event.Code),
		zap.String("destinationUrl", event.DestinationURL),
		zap.Bool("anonymous", event.Anonymous),
		zap.Time("createdAt", event.CreatedAt),
	)

	return nil
}

func (s *LogStore) SaveLinkVisited(_ context.Context, event *LinkVisitedEvent) error {
	s.logger.Info("link visited event received",
		zap.String("code", event.Code),
		zap.Time("visitedAt", event.VisitedAt),
	)

	return nil
}

var _ Store = (*LogStore)(nil)
