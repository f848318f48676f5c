package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"log/slog"

	"github.com/aretw0/hotelbot/internal/logging"
	"github.com/aretw0/hotelbot/internal/runtime"
	"github.com/aretw0/hotelbot/pkg/domain"
	"github.com/aretw0/hotelbot/pkg/ports"
)

// DefaultLockTTL bounds how long a distributed session lock is held.
const DefaultLockTTL = 30 * time.Second

// AfterFunc schedules f to run once after d. The returned function cancels it
// and reports whether the call was prevented.
type AfterFunc func(d time.Duration, f func()) (stop func() bool)

// UpdateFunc observes a persisted change of a conversation.
// It runs while the session lock is held and must not call back into the Manager
// for the same session.
type UpdateFunc func(ctx context.Context, old, new *domain.Conversation)

func timeAfterFunc(d time.Duration, f func()) func() bool {
	return time.AfterFunc(d, f).Stop
}

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager owns conversations by session ID.
// It serializes operations per session and uses reference counting to garbage collect unused locks.
type Manager struct {
	store  ports.ConversationStore
	engine *runtime.Engine

	mu    sync.Mutex
	locks map[string]*lockEntry

	timersMu sync.Mutex
	timers   map[string]func() bool

	watchMu  sync.RWMutex
	watchers map[int]UpdateFunc
	nextID   int

	locker     ports.DistributedLocker
	lockTTL    time.Duration
	resetDelay time.Duration
	afterFunc  AfterFunc
	logger     *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL overrides DefaultLockTTL.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.lockTTL = ttl
		}
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithResetDelay sets how long a finished booking stays on screen before the
// conversation starts over. Zero or negative disables the automatic reset.
func WithResetDelay(d time.Duration) Option {
	return func(m *Manager) {
		m.resetDelay = d
	}
}

// WithAfterFunc replaces time.AfterFunc for the reset timer.
func WithAfterFunc(fn AfterFunc) Option {
	return func(m *Manager) {
		if fn != nil {
			m.afterFunc = fn
		}
	}
}

// WithUpdateFunc registers an observer at construction time.
func WithUpdateFunc(fn UpdateFunc) Option {
	return func(m *Manager) {
		m.watch(fn)
	}
}

// NewManager creates a Session Manager running engine over store.
func NewManager(store ports.ConversationStore, engine *runtime.Engine, opts ...Option) *Manager {
	m := &Manager{
		store:      store,
		engine:     engine,
		locks:      make(map[string]*lockEntry),
		timers:     make(map[string]func() bool),
		watchers:   make(map[int]UpdateFunc),
		lockTTL:    DefaultLockTTL,
		resetDelay: domain.DefaultResetDelay,
		afterFunc:  timeAfterFunc,
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(sessionID) after unlocking.
func (m *Manager) acquire(sessionID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		entry = &lockEntry{}
		m.locks[sessionID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, sessionID)
	}
}

// Watch registers fn for every persisted change and returns a function that removes it.
func (m *Manager) Watch(fn UpdateFunc) (cancel func()) {
	id := m.watch(fn)
	return func() {
		m.watchMu.Lock()
		delete(m.watchers, id)
		m.watchMu.Unlock()
	}
}

func (m *Manager) watch(fn UpdateFunc) int {
	m.watchMu.Lock()
	defer m.watchMu.Unlock()
	m.nextID++
	m.watchers[m.nextID] = fn
	return m.nextID
}

func (m *Manager) notify(ctx context.Context, old, new *domain.Conversation) {
	m.watchMu.RLock()
	defer m.watchMu.RUnlock()
	for _, fn := range m.watchers {
		fn(ctx, old, new)
	}
}

// Load retrieves an existing conversation from the store.
func (m *Manager) Load(ctx context.Context, sessionID string) (*domain.Conversation, error) {
	var conv *domain.Conversation
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		var err error
		conv, err = m.store.Load(ctx, sessionID)
		return err
	})
	return conv, err
}

// LoadOrStart loads a conversation, creating and persisting a fresh one when it does not exist.
func (m *Manager) LoadOrStart(ctx context.Context, sessionID string) (*domain.Conversation, error) {
	var conv *domain.Conversation
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		var err error
		conv, err = m.loadOrStart(ctx, sessionID)
		return err
	})
	return conv, err
}

func (m *Manager) loadOrStart(ctx context.Context, sessionID string) (*domain.Conversation, error) {
	conv, err := m.store.Load(ctx, sessionID)
	if err == nil {
		return conv, nil
	}
	if !errors.Is(err, domain.ErrSessionNotFound) {
		return nil, fmt.Errorf("failed to check session existence: %w", err)
	}

	conv = domain.NewConversation(sessionID)
	if err := m.store.Save(ctx, sessionID, conv); err != nil {
		return nil, fmt.Errorf("failed to initialize session: %w", err)
	}
	m.logger.Debug("Session started", "session_id", sessionID)
	return conv, nil
}

// Submit sends text on behalf of the session and persists the outcome.
// When the exchange completes the booking, the conversation is reset after the reset delay.
//
// Empty input returns the stored conversation with domain.ErrEmptyInput and changes nothing.
// domain.ErrNoEndpoint is returned together with the persisted conversation.
func (m *Manager) Submit(ctx context.Context, sessionID, text string) (*domain.Conversation, error) {
	var next *domain.Conversation
	var submitErr error
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		conv, err := m.loadOrStart(ctx, sessionID)
		if err != nil {
			return err
		}

		next, submitErr = m.engine.Submit(ctx, conv, text)
		if errors.Is(submitErr, domain.ErrEmptyInput) {
			return nil
		}

		if err := m.store.Save(ctx, sessionID, next); err != nil {
			return fmt.Errorf("failed to save session: %w", err)
		}
		m.notify(ctx, conv, next)

		if next.Stage == domain.StageDone && conv.Stage != domain.StageDone {
			m.armReset(sessionID, next.Generation)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return next, submitErr
}

// Reset returns the session to the booking stage with the welcome-back message.
func (m *Manager) Reset(ctx context.Context, sessionID string) (*domain.Conversation, error) {
	var next *domain.Conversation
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		conv, err := m.loadOrStart(ctx, sessionID)
		if err != nil {
			return err
		}
		next, err = m.reset(ctx, sessionID, conv)
		return err
	})
	if err != nil {
		return nil, err
	}
	m.disarm(sessionID)
	return next, nil
}

func (m *Manager) reset(ctx context.Context, sessionID string, conv *domain.Conversation) (*domain.Conversation, error) {
	next := m.engine.Reset(ctx, conv)
	if err := m.store.Save(ctx, sessionID, next); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}
	m.notify(ctx, conv, next)
	return next, nil
}

// armReset schedules the post-booking reset for the given generation.
func (m *Manager) armReset(sessionID string, generation int) {
	if m.resetDelay <= 0 {
		return
	}

	m.timersMu.Lock()
	defer m.timersMu.Unlock()
	if stop, ok := m.timers[sessionID]; ok {
		stop()
	}
	m.timers[sessionID] = m.afterFunc(m.resetDelay, func() {
		m.expire(sessionID, generation)
	})
}

func (m *Manager) disarm(sessionID string) {
	m.timersMu.Lock()
	defer m.timersMu.Unlock()
	if stop, ok := m.timers[sessionID]; ok {
		stop()
		delete(m.timers, sessionID)
	}
}

// expire resets the session if it is still the finished conversation the timer was armed for.
func (m *Manager) expire(sessionID string, generation int) {
	m.timersMu.Lock()
	delete(m.timers, sessionID)
	m.timersMu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), m.lockTTL)
	defer cancel()

	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		conv, err := m.store.Load(ctx, sessionID)
		if err != nil {
			return err
		}
		if conv.Stage != domain.StageDone || conv.Generation != generation {
			m.logger.Debug("Skipping stale reset", "session_id", sessionID, "generation", generation)
			return nil
		}
		_, err = m.reset(ctx, sessionID, conv)
		return err
	})
	if err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
		m.logger.Error("Scheduled reset failed", "session_id", sessionID, "err", err)
	}
}

// Delete removes the session from the store.
func (m *Manager) Delete(ctx context.Context, sessionID string) error {
	m.disarm(sessionID)
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		return m.store.Delete(ctx, sessionID)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying conversation store.
func (m *Manager) Store() ports.ConversationStore {
	return m.store
}

// Close cancels pending reset timers.
func (m *Manager) Close() {
	m.timersMu.Lock()
	defer m.timersMu.Unlock()
	for id, stop := range m.timers {
		stop()
		delete(m.timers, id)
	}
}

// WithLock executes a function while holding the lock for the session.
func (m *Manager) WithLock(ctx context.Context, sessionID string, fn func(context.Context) error) error {
	entry := m.acquire(sessionID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(sessionID)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, sessionID, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"session_id", sessionID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}
