package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventStageChange EventType = "stage_change"
	EventMessage     EventType = "message"
	EventExchange    EventType = "exchange"
	EventReset       EventType = "reset"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id,omitempty"`
}

// StageEvent records a stage transition.
type StageEvent struct {
	EventBase
	From   Stage  `json:"from"`
	To     Stage  `json:"to"`
	Source string `json:"source"` // "hint", "reply" or "reset"
}

// MessageEvent records a message appended to the history.
type MessageEvent struct {
	EventBase
	Message Message `json:"message"`
}

// ExchangeEvent records one round trip to the backend.
type ExchangeEvent struct {
	EventBase
	Stage    Stage         `json:"stage"`
	Endpoint string        `json:"endpoint"`
	Duration time.Duration `json:"duration"`
	Outcome  string        `json:"outcome"` // "ok", "app_error" or "transport_error"
}

// ResetEvent records a conversation returning to its initial state.
type ResetEvent struct {
	EventBase
	Conversation *Conversation `json:"conversation"`
}

// Exchange outcomes.
const (
	OutcomeOK             = "ok"
	OutcomeAppError       = "app_error"
	OutcomeTransportError = "transport_error"
)

// Stage change sources.
const (
	SourceHint  = "hint"
	SourceReply = "reply"
	SourceReset = "reset"
)

// LifecycleHooks defines callbacks for conversation observability.
// Any hook may be nil.
type LifecycleHooks struct {
	OnStageChange func(context.Context, *StageEvent)
	OnMessage     func(context.Context, *MessageEvent)
	OnExchange    func(context.Context, *ExchangeEvent)
	OnReset       func(context.Context, *ResetEvent)
}

// Merge returns hooks that call h first and then other.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnStageChange: chain(h.OnStageChange, other.OnStageChange),
		OnMessage:     chain(h.OnMessage, other.OnMessage),
		OnExchange:    chain(h.OnExchange, other.OnExchange),
		OnReset:       chain(h.OnReset, other.OnReset),
	}
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}
