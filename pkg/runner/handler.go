package runner

import (
	"context"

	"github.com/aretw0/hotelbot/pkg/domain"
)

// IOHandler defines the strategy for interacting with the user.
// Implementations must be safe for concurrent Output and SystemOutput calls,
// since resets are printed from the timer goroutine.
type IOHandler interface {
	// Output presents messages appended to the conversation.
	Output(ctx context.Context, stage domain.Stage, msgs []domain.Message) error

	// Input reads the next line from the user.
	Input(ctx context.Context) (string, error)

	// SystemOutput presents a meta-message that is not part of the chat.
	SystemOutput(ctx context.Context, msg string) error
}

// ContentRenderer is a function that transforms bot text before it is printed.
// This allows for TUI rendering (markdown to ANSI) without coupling the core package.
type ContentRenderer func(string) (string, error)
