package runtime

import (
	"context"
	"time"

	"github.com/aretw0/hotelbot/pkg/domain"
)

func (e *Engine) base(t domain.EventType, conv *domain.Conversation) domain.EventBase {
	return domain.EventBase{
		Timestamp: time.Now(),
		Type:      t,
		SessionID: conv.SessionID,
	}
}

func (e *Engine) emitStageChange(ctx context.Context, conv *domain.Conversation, from, to domain.Stage, source string) {
	if e.hooks.OnStageChange == nil {
		return
	}
	e.hooks.OnStageChange(ctx, &domain.StageEvent{
		EventBase: e.base(domain.EventStageChange, conv),
		From:      from,
		To:        to,
		Source:    source,
	})
}

func (e *Engine) emitMessage(ctx context.Context, conv *domain.Conversation, msg domain.Message) {
	if e.hooks.OnMessage == nil {
		return
	}
	e.hooks.OnMessage(ctx, &domain.MessageEvent{
		EventBase: e.base(domain.EventMessage, conv),
		Message:   msg,
	})
}

func (e *Engine) emitExchange(ctx context.Context, conv *domain.Conversation, stage domain.Stage, endpoint string, d time.Duration, outcome string) {
	if e.hooks.OnExchange == nil {
		return
	}
	e.hooks.OnExchange(ctx, &domain.ExchangeEvent{
		EventBase: e.base(domain.EventExchange, conv),
		Stage:     stage,
		Endpoint:  endpoint,
		Duration:  d,
		Outcome:   outcome,
	})
}
