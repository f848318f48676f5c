package hotelbot

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/hotelbot/internal/runtime"
	"github.com/aretw0/hotelbot/pkg/adapters/backend"
	"github.com/aretw0/hotelbot/pkg/adapters/memory"
	"github.com/aretw0/hotelbot/pkg/domain"
	"github.com/aretw0/hotelbot/pkg/ports"
	"github.com/aretw0/hotelbot/pkg/session"
)

// Client is the high-level entry point for the library.
// It wires a backend, a store and the stage engine behind a session manager.
type Client struct {
	manager *session.Manager
	engine  *runtime.Engine
	backend ports.Backend
	store   ports.ConversationStore

	baseURL    string
	timeout    time.Duration
	validate   bool
	locker     ports.DistributedLocker
	resetDelay *time.Duration
	hooks      domain.LifecycleHooks
	logger     *slog.Logger
}

// Option defines a functional option for configuring the Client.
type Option func(*Client)

// WithBaseURL points the default HTTP backend at another booking service.
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = url
	}
}

// WithBackend replaces the HTTP backend, e.g. with a ports.BackendFunc in tests.
func WithBackend(b ports.Backend) Option {
	return func(c *Client) {
		c.backend = b
	}
}

// WithStore sets where conversations are kept (default: in memory).
func WithStore(store ports.ConversationStore) Option {
	return func(c *Client) {
		c.store = store
	}
}

// WithLocker enables cross-process session locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(c *Client) {
		c.locker = locker
	}
}

// WithTimeout bounds every backend request. Zero waits forever.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithContractValidation checks backend replies against the embedded OpenAPI document.
func WithContractValidation(enabled bool) Option {
	return func(c *Client) {
		c.validate = enabled
	}
}

// WithResetDelay changes how long a finished booking stays on screen.
// A non-positive delay disables the automatic reset.
func WithResetDelay(d time.Duration) Option {
	return func(c *Client) {
		c.resetDelay = &d
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(c *Client) {
		c.hooks = hooks
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New builds a Client. Without options it talks to backend.DefaultBaseURL and
// keeps conversations in memory.
func New(opts ...Option) (*Client, error) {
	c := &Client{baseURL: backend.DefaultBaseURL}
	for _, opt := range opts {
		opt(c)
	}

	if c.logger == nil {
		c.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	if c.backend == nil {
		clientOpts := []backend.Option{backend.WithLogger(c.logger)}
		if c.timeout > 0 {
			clientOpts = append(clientOpts, backend.WithTimeout(c.timeout))
		}
		if c.validate {
			contract, err := backend.LoadContract(c.baseURL)
			if err != nil {
				return nil, fmt.Errorf("failed to load backend contract: %w", err)
			}
			clientOpts = append(clientOpts, backend.WithContract(contract))
		}
		c.backend = backend.New(c.baseURL, clientOpts...)
	}

	if c.store == nil {
		c.store = memory.NewStore()
	}

	c.engine = runtime.NewEngine(c.backend,
		runtime.WithLogger(c.logger),
		runtime.WithLifecycleHooks(c.hooks),
	)

	managerOpts := []session.Option{session.WithLogger(c.logger)}
	if c.locker != nil {
		managerOpts = append(managerOpts, session.WithLocker(c.locker))
	}
	if c.resetDelay != nil {
		managerOpts = append(managerOpts, session.WithResetDelay(*c.resetDelay))
	}
	c.manager = session.NewManager(c.store, c.engine, managerOpts...)

	return c, nil
}

// Submit sends one user message in the given session.
// It returns domain.ErrEmptyInput for blank text and domain.ErrNoEndpoint once
// the booking is done.
func (c *Client) Submit(ctx context.Context, sessionID, text string) (*domain.Conversation, error) {
	return c.manager.Submit(ctx, sessionID, text)
}

// Conversation returns the session's conversation, starting it if needed.
func (c *Client) Conversation(ctx context.Context, sessionID string) (*domain.Conversation, error) {
	return c.manager.LoadOrStart(ctx, sessionID)
}

// Reset returns the session to the welcome message.
func (c *Client) Reset(ctx context.Context, sessionID string) (*domain.Conversation, error) {
	return c.manager.Reset(ctx, sessionID)
}

// Delete forgets a session.
func (c *Client) Delete(ctx context.Context, sessionID string) error {
	return c.manager.Delete(ctx, sessionID)
}

// Sessions lists the stored session IDs.
func (c *Client) Sessions(ctx context.Context) ([]string, error) {
	return c.manager.List(ctx)
}

// Manager exposes the session manager for hosts (runner, HTTP, MCP).
func (c *Client) Manager() *session.Manager {
	return c.manager
}

// Engine exposes the stage engine.
func (c *Client) Engine() *runtime.Engine {
	return c.engine
}

// Close stops pending reset timers.
func (c *Client) Close() {
	c.manager.Close()
}
