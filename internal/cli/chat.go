package cli

import (
	"context"
	"io"
	"os"

	"github.com/aretw0/hotelbot/internal/presentation/tui"
	"github.com/aretw0/hotelbot/pkg/domain"
	"github.com/aretw0/hotelbot/pkg/runner"
	"golang.org/x/term"
)

// ChatOptions selects how the terminal chat talks to the user.
type ChatOptions struct {
	SessionID string
	JSON      bool
	In        io.Reader
	Out       io.Writer
}

// Chat runs an interactive conversation until the user quits or ctx ends.
func Chat(ctx context.Context, app *App, opts ChatOptions) error {
	in, out := opts.In, opts.Out
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}
	sessionID := opts.SessionID
	if sessionID == "" {
		sessionID = runner.DefaultSessionID
	}

	runnerOpts := []runner.Option{
		runner.WithLogger(app.Logger),
		runner.WithSessionID(sessionID),
		// The caller's context already carries the signal handling.
		runner.WithSignals(false),
	}

	if opts.JSON {
		runnerOpts = append(runnerOpts, runner.WithInputHandler(runner.NewJSONHandler(in, out)))
	} else {
		var handlerOpts []runner.TextHandlerOption
		if IsTerminal(out) {
			tui.PrintBanner(out)
			handlerOpts = append(handlerOpts,
				runner.WithTextHandlerRenderer(tui.NewRenderer()),
				runner.WithTextHandlerLabels(func(s domain.Sender) string {
					return tui.Speaker(s == domain.SenderBot)
				}),
			)
		}
		runnerOpts = append(runnerOpts, runner.WithInputHandler(runner.NewTextHandler(in, out, handlerOpts...)))
	}

	return runner.NewRunner(runnerOpts...).Run(ctx, app.Client.Manager())
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
