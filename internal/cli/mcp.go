package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/aretw0/hotelbot"
	mcpadapter "github.com/aretw0/hotelbot/pkg/adapters/mcp"
)

// MCP transports.
const (
	TransportStdio = "stdio"
	TransportSSE   = "sse"
)

// ServeMCP exposes the conversation tools over the chosen transport.
// stdio blocks until the client disconnects; sse runs until ctx is cancelled.
func ServeMCP(ctx context.Context, app *App, transport, addr string) error {
	srv := mcpadapter.NewServer(app.Client.Manager(), hotelbot.Version, mcpadapter.WithLogger(app.Logger))

	switch transport {
	case TransportStdio, "":
		app.Logger.Info("Starting hotelbot MCP server (stdio)")
		return srv.ServeStdio()
	case TransportSSE:
		app.Logger.Info("Starting hotelbot MCP server (SSE)", "addr", addr)
		err := srv.ServeSSE(ctx, addr, baseURL(addr))
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	default:
		return fmt.Errorf("unknown transport %q (supported: %s, %s)", transport, TransportStdio, TransportSSE)
	}
}

func baseURL(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "http://localhost" + addr
	}
	return "http://" + addr
}
