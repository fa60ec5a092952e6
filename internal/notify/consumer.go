package notify

import (
	"context"

	"github.com/VictorEZCodes/BouncerLink/internal/messaging"
	"go.uber.org/zap"
)

// NewHandler returns an event handler that delivers notifications via
// the sender. Delivery errors are logged and swallowed so the message
// is Acked; a dead notification never blocks the stream.
func NewHandler(sender Sender, logger *zap.Logger) messaging.Handler[Event] {
	return func(ctx context.Context, event *Event) error {
		if err := sender.Send(ctx, event); err != nil {
			logger.Error("failed to send notification",
				zap.String("recipient", event.Recipient),
				zap.String("code", event.Code),
				zap.Error(err),
			)
		}

		return nil
	}
}
