package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/aretw0/hotelbot"
	httpadapter "github.com/aretw0/hotelbot/pkg/adapters/http"
)

// ShutdownTimeout bounds how long in-flight requests may run after a stop signal.
const ShutdownTimeout = 5 * time.Second

// NewWebServer builds the web chat server from the app configuration.
func NewWebServer(app *App) *httpadapter.Server {
	cfg := app.Config.Server
	return httpadapter.NewServer(app.Client.Manager(),
		httpadapter.WithLogger(app.Logger),
		httpadapter.WithAllowedOrigins(cfg.AllowedOrigins...),
		httpadapter.WithRateLimit(cfg.RateLimit, cfg.RateBurst),
		httpadapter.WithMetricsHandler(app.Metrics.Handler()),
		httpadapter.WithInfo(hotelbot.Version, app.Config.Backend.URL),
	)
}

// Serve runs the web chat on addr until ctx is cancelled.
func Serve(ctx context.Context, app *App, addr string) error {
	handler := NewWebServer(app)
	defer handler.Close()

	srv := httpadapter.NewHTTPServer(addr, handler)

	// Open SSE streams only end when their request context does.
	streams, stopStreams := context.WithCancel(context.Background())
	defer stopStreams()
	srv.BaseContext = func(net.Listener) context.Context { return streams }
	srv.RegisterOnShutdown(stopStreams)

	serverErrors := make(chan error, 1)
	go func() {
		app.Logger.Info("Starting hotelbot server", "addr", addr, "backend", app.Config.Backend.URL)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)

	case <-ctx.Done():
		app.Logger.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			closeErr := srv.Close()
			return errors.Join(fmt.Errorf("graceful shutdown did not complete in %v: %w", ShutdownTimeout, err), closeErr)
		}
		app.Logger.Info("Server stopped gracefully")
		return nil
	}
}
