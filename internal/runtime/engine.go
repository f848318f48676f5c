package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aretw0/hotelbot/internal/logging"
	"github.com/aretw0/hotelbot/pkg/domain"
	"github.com/aretw0/hotelbot/pkg/ports"
)

// Engine is the conversation state machine.
// It is stateless: every call receives the conversation snapshot and returns a new one.
type Engine struct {
	backend  ports.Backend
	handlers map[domain.Stage]stageHandler
	hooks    domain.LifecycleHooks
	logger   *slog.Logger
}

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// NewEngine creates an engine that talks to backend.
func NewEngine(backend ports.Backend, opts ...EngineOption) *Engine {
	e := &Engine{
		backend:  backend,
		handlers: defaultHandlers(),
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Endpoint resolves the backend path for a stage.
func (e *Engine) Endpoint(stage domain.Stage) (string, error) {
	h, ok := e.handlers[stage]
	if !ok {
		return "", fmt.Errorf("%w: %q", domain.ErrNoEndpoint, stage)
	}
	return h.endpoint, nil
}

// Submit runs one exchange: it records the user's text, calls the endpoint of the
// current stage and interprets the reply. The input conversation is not modified.
//
// Whitespace-only text returns the input unchanged with domain.ErrEmptyInput.
// A stage without endpoint returns the conversation with the user message and
// domain.ErrNoEndpoint. Backend failures are reported in the history, not as errors.
func (e *Engine) Submit(ctx context.Context, conv *domain.Conversation, text string) (*domain.Conversation, error) {
	if strings.TrimSpace(text) == "" {
		return conv, domain.ErrEmptyInput
	}

	prev := conv.Stage
	next := conv.Clone()
	next.PendingInput = text
	e.appendMessages(ctx, next, domain.UserMessage(text))

	handler, ok := e.handlers[prev]
	if !ok {
		e.logger.Error("No endpoint determined", "stage", prev, "session_id", conv.SessionID)
		return next, fmt.Errorf("%w: %q", domain.ErrNoEndpoint, prev)
	}

	start := time.Now()
	reply, err := e.backend.Send(ctx, handler.endpoint, text)
	elapsed := time.Since(start)

	if err != nil {
		e.logger.Warn("Backend unreachable", "endpoint", handler.endpoint, "session_id", conv.SessionID, "err", err)
		e.emitExchange(ctx, next, prev, handler.endpoint, elapsed, domain.OutcomeTransportError)
		e.appendMessages(ctx, next, domain.WarningMessage(domain.ConnectionWarning))
		next.PendingInput = ""
		return next, nil
	}

	e.logger.Debug("Backend reply", "endpoint", handler.endpoint, "session_id", conv.SessionID, "reply", reply.Raw)

	if reply.HasError() {
		e.emitExchange(ctx, next, prev, handler.endpoint, elapsed, domain.OutcomeAppError)
		e.appendMessages(ctx, next, domain.WarningMessage(reply.Error))
		return next, nil
	}
	e.emitExchange(ctx, next, prev, handler.endpoint, elapsed, domain.OutcomeOK)

	// Interpretation always uses the stage the exchange started in.
	out := handler.interpret(reply)
	e.appendMessages(ctx, next, out.messages...)
	if out.next != "" {
		e.transition(ctx, next, out.next, domain.SourceReply)
	}

	// A valid server hint has the last word.
	if hint, ok := reply.Hint(); ok {
		e.transition(ctx, next, hint, domain.SourceHint)
	} else if reply.NextStage != "" {
		e.logger.Warn("Ignoring unknown next_stage", "next_stage", reply.NextStage, "session_id", conv.SessionID)
	}

	next.PendingInput = ""
	return next, nil
}

// Reset returns a copy of conv restored to the booking stage with the welcome-back message.
func (e *Engine) Reset(ctx context.Context, conv *domain.Conversation) *domain.Conversation {
	next := conv.Clone()
	from := next.Stage
	next.Reset()

	if from != next.Stage {
		e.logStageChange(next.SessionID, from, next.Stage)
		e.emitStageChange(ctx, next, from, next.Stage, domain.SourceReset)
	}
	if e.hooks.OnReset != nil {
		e.hooks.OnReset(ctx, &domain.ResetEvent{
			EventBase:    e.base(domain.EventReset, next),
			Conversation: next.Clone(),
		})
	}
	for _, msg := range next.Messages {
		e.emitMessage(ctx, next, msg)
	}
	return next
}

func (e *Engine) transition(ctx context.Context, conv *domain.Conversation, to domain.Stage, source string) {
	from := conv.Stage
	if from == to {
		return
	}
	conv.Stage = to
	e.logStageChange(conv.SessionID, from, to)
	e.emitStageChange(ctx, conv, from, to, source)
}

func (e *Engine) logStageChange(sessionID string, from, to domain.Stage) {
	e.logger.Info("Stage changed", "from", from, "to", to, "session_id", sessionID)
}

func (e *Engine) appendMessages(ctx context.Context, conv *domain.Conversation, msgs ...domain.Message) {
	conv.Append(msgs...)
	for _, msg := range msgs {
		e.emitMessage(ctx, conv, msg)
	}
}
