package worker

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/portfolio-service/internal/events"
)

// StartAuditWorker subscribes a structured-log audit trail to all project and
// session lifecycle events.
func StartAuditWorker(dispatcher events.Dispatcher, logger *zap.Logger) {
	if dispatcher == nil {
		return
	}

	log := func(ctx context.Context, event events.Event) error {
		logger.Info("audit",
			zap.String("event_id", event.ID),
			zap.String("type", string(event.Type)),
			zap.String("actor_id", event.ActorID),
			zap.Time("at", event.Timestamp),
			zap.Any("payload", event.Payload),
		)
		return nil
	}

	for _, t := range []events.EventType{
		events.EventProjectCreated,
		events.EventProjectUpdated,
		events.EventProjectDeleted,
		events.EventAdminLoggedIn,
		events.EventSessionExpired,
	} {
		dispatcher.Subscribe(t, log)
	}
}
