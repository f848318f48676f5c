package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/aretw0/hotelbot/internal/logging"
	"github.com/aretw0/hotelbot/pkg/domain"
	"github.com/aretw0/hotelbot/pkg/session"
)

// DefaultSessionID is used when no session is selected.
const DefaultSessionID = "cli"

// Commands understood by the runner instead of being sent to the backend.
const (
	CommandQuit  = "/quit"
	CommandReset = "/reset"
)

// Runner drives one conversation from a terminal or pipe.
type Runner struct {
	// Handler is the strategy for IO. If nil, a TextHandler over Stdin/Stdout is used.
	Handler IOHandler

	// Logger is used for internal debug logging.
	// If nil, a no-op logger is used.
	Logger *slog.Logger

	SessionID string
	Renderer  ContentRenderer

	signals bool
}

// NewRunner creates a Runner with the given options.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		Logger:    logging.NewNop(),
		SessionID: DefaultSessionID,
		signals:   true,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.Logger == nil {
		r.Logger = logging.NewNop()
	}
	return r
}

// Run loops until the user quits, input ends, or ctx is cancelled.
// Interruption and end of input are a normal exit and return nil.
func (r *Runner) Run(ctx context.Context, manager *session.Manager) error {
	handler := r.resolveHandler()

	if r.signals {
		signals := NewSignalManager(ctx)
		defer signals.Stop()
		ctx = signals.Context()
	}

	conv, err := manager.LoadOrStart(ctx, r.SessionID)
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	if err := handler.Output(ctx, conv.Stage, conv.Messages); err != nil {
		return fmt.Errorf("output error: %w", err)
	}

	// Resets happen outside the loop (timer or another client); print them as they land.
	stopWatch := manager.Watch(func(ctx context.Context, old, next *domain.Conversation) {
		if next.SessionID != r.SessionID || next.Generation == old.Generation {
			return
		}
		if err := handler.Output(ctx, next.Stage, next.Messages); err != nil {
			r.Logger.Warn("Failed to print reset", "err", err)
		}
	})
	defer stopWatch()

	for {
		text, err := handler.Input(ctx)
		if err != nil {
			if errors.Is(err, ErrInputTooLarge) || errors.Is(err, ErrInvalidUTF8) {
				_ = handler.SystemOutput(ctx, err.Error())
				continue
			}
			if errors.Is(err, io.EOF) || ctx.Err() != nil {
				r.Logger.Debug("Runner stopped", "session_id", r.SessionID, "err", err)
				return nil
			}
			return fmt.Errorf("input error: %w", err)
		}

		switch strings.ToLower(text) {
		case CommandQuit, "/exit", "exit", "quit":
			return nil
		case CommandReset:
			if _, err := manager.Reset(ctx, r.SessionID); err != nil {
				return fmt.Errorf("reset failed: %w", err)
			}
			continue
		}

		if err := r.submit(ctx, manager, handler, text); err != nil {
			return err
		}
	}
}

func (r *Runner) submit(ctx context.Context, manager *session.Manager, handler IOHandler, text string) error {
	before, err := manager.LoadOrStart(ctx, r.SessionID)
	if err != nil {
		return err
	}

	after, err := manager.Submit(ctx, r.SessionID, text)
	switch {
	case errors.Is(err, domain.ErrEmptyInput):
		return nil
	case errors.Is(err, domain.ErrNoEndpoint):
		_ = handler.SystemOutput(ctx, "This booking is complete. A new conversation starts shortly, or type "+CommandReset+".")
		return nil
	case err != nil:
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("submit failed: %w", err)
	}

	diff := domain.Diff(before, after)
	if diff == nil || diff.Replaced {
		// Replaced histories are printed by the reset watcher.
		return nil
	}
	// The user's own line is already on screen.
	replies := make([]domain.Message, 0, len(diff.Appended))
	for _, msg := range diff.Appended {
		if msg.Sender != domain.SenderUser {
			replies = append(replies, msg)
		}
	}
	return handler.Output(ctx, after.Stage, replies)
}

func (r *Runner) resolveHandler() IOHandler {
	if r.Handler != nil {
		return r.Handler
	}
	r.Handler = NewTextHandler(os.Stdin, os.Stdout, WithTextHandlerRenderer(r.Renderer))
	return r.Handler
}
