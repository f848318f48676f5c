package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/hotelbot/pkg/domain"
)

// LoggingHooks writes every lifecycle event to logger.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStageChange: func(ctx context.Context, e *domain.StageEvent) {
			logger.InfoContext(ctx, "stage_change",
				"session_id", e.SessionID,
				"from", e.From,
				"to", e.To,
				"source", e.Source,
			)
		},
		OnMessage: func(ctx context.Context, e *domain.MessageEvent) {
			logger.DebugContext(ctx, "message",
				"session_id", e.SessionID,
				"sender", e.Message.Sender,
				"text", e.Message.Text,
			)
		},
		OnExchange: func(ctx context.Context, e *domain.ExchangeEvent) {
			logger.InfoContext(ctx, "backend_exchange",
				"session_id", e.SessionID,
				"endpoint", e.Endpoint,
				"outcome", e.Outcome,
				"duration", e.Duration,
			)
		},
		OnReset: func(ctx context.Context, e *domain.ResetEvent) {
			logger.InfoContext(ctx, "conversation_reset",
				"session_id", e.SessionID,
				"generation", e.Conversation.Generation,
			)
		},
	}
}
