// Package cli wires configuration, storage and the conversation core into the
// hosts started by cmd/hotelbot.
package cli

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/aretw0/hotelbot"
	"github.com/aretw0/hotelbot/internal/config"
	"github.com/aretw0/hotelbot/internal/logging"
	"github.com/aretw0/hotelbot/pkg/adapters/file"
	"github.com/aretw0/hotelbot/pkg/adapters/memory"
	redisstore "github.com/aretw0/hotelbot/pkg/adapters/redis"
	"github.com/aretw0/hotelbot/pkg/observability"
	"github.com/aretw0/hotelbot/pkg/persistence/middleware"
	"github.com/aretw0/hotelbot/pkg/ports"
)

// App holds everything a command needs after startup.
type App struct {
	Config  *config.Config
	Logger  *slog.Logger
	Client  *hotelbot.Client
	Metrics *observability.Metrics

	closeStore func() error
}

// NewApp builds the store, metrics and client described by cfg.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = logging.NewNop()
	}

	store, locker, closeStore, err := OpenStore(cfg.Store)
	if err != nil {
		return nil, err
	}

	metrics := observability.NewMetrics()
	hooks := metrics.Hooks()
	if cfg.Debug {
		hooks = hooks.Merge(observability.LoggingHooks(logger))
	}

	opts := []hotelbot.Option{
		hotelbot.WithBaseURL(cfg.Backend.URL),
		hotelbot.WithTimeout(cfg.Backend.Timeout),
		hotelbot.WithContractValidation(cfg.Backend.ValidateContract),
		hotelbot.WithStore(store),
		hotelbot.WithResetDelay(cfg.ResetDelay),
		hotelbot.WithLifecycleHooks(hooks),
		hotelbot.WithLogger(logger),
	}
	if locker != nil {
		opts = append(opts, hotelbot.WithLocker(locker))
	}

	client, err := hotelbot.New(opts...)
	if err != nil {
		return nil, errors.Join(err, closeStore())
	}

	return &App{
		Config:     cfg,
		Logger:     logger,
		Client:     client,
		Metrics:    metrics,
		closeStore: closeStore,
	}, nil
}

// Close stops pending timers and releases the store.
func (a *App) Close() error {
	a.Client.Close()
	return a.closeStore()
}

// OpenStore returns the conversation store selected by cfg, wrapped with the
// configured redaction and encryption. The redis store also provides a
// distributed locker; the other kinds return a nil locker.
func OpenStore(cfg config.StoreConfig) (ports.ConversationStore, ports.DistributedLocker, func() error, error) {
	store, locker, closeFn, err := openBaseStore(cfg)
	if err != nil {
		return nil, nil, nil, err
	}

	mws, err := storeMiddleware(cfg)
	if err != nil {
		return nil, nil, nil, errors.Join(err, closeFn())
	}
	return middleware.Chain(store, mws...), locker, closeFn, nil
}

func storeMiddleware(cfg config.StoreConfig) ([]middleware.Middleware, error) {
	var mws []middleware.Middleware
	if len(cfg.Redact) > 0 {
		pii, err := middleware.NewPIIMiddleware(cfg.Redact)
		if err != nil {
			return nil, err
		}
		mws = append(mws, pii)
	}

	key, err := cfg.Key()
	if err != nil {
		return nil, err
	}
	if key != nil {
		enc, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key})
		if err != nil {
			return nil, err
		}
		mws = append(mws, enc)
	}
	return mws, nil
}

func openBaseStore(cfg config.StoreConfig) (ports.ConversationStore, ports.DistributedLocker, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Kind {
	case config.StoreMemory, "":
		return memory.NewStore(), nil, noop, nil
	case config.StoreFile:
		return file.New(cfg.Dir), nil, noop, nil
	case config.StoreRedis:
		prefix := cfg.RedisPrefix
		if prefix == "" {
			prefix = redisstore.DefaultPrefix
		}
		opts := []redisstore.Option{redisstore.WithPrefix(prefix)}
		if cfg.TTL > 0 {
			opts = append(opts, redisstore.WithTTL(cfg.TTL))
		}
		store, err := redisstore.New(cfg.RedisURL, opts...)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to open redis store: %w", err)
		}
		locker := redisstore.NewLocker(store.Client(), prefix)
		return store, locker, store.Close, nil
	default:
		return nil, nil, nil, fmt.Errorf("unknown store kind %q", cfg.Kind)
	}
}

// NewLogger configures the application logger.
// Interactive chats stay quiet unless debug is on, so logs don't mix with the conversation.
func NewLogger(cfg *config.Config, interactive bool) *slog.Logger {
	if cfg.Debug {
		return logging.New(slog.LevelDebug)
	}
	if interactive {
		return logging.NewNop()
	}
	return logging.New(logging.ParseLevel(cfg.LogLevel))
}
