package http

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// minLimiterIdle is the shortest time a limiter is kept after its last use.
const minLimiterIdle = time.Minute

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// limiterStore holds a token bucket per session.
// Buckets idle long enough to have refilled are dropped.
type limiterStore struct {
	limit rate.Limit
	burst int
	idle  time.Duration
	now   func() time.Time

	mu        sync.Mutex
	limiters  map[string]*limiterEntry
	lastSweep time.Time
}

func newLimiterStore(perSecond float64, burst int) *limiterStore {
	if burst < 1 {
		burst = 1
	}
	idle := minLimiterIdle
	if perSecond > 0 {
		if refill := time.Duration(float64(burst) / perSecond * float64(time.Second)); refill > idle {
			idle = refill
		}
	}
	return &limiterStore{
		limit:    rate.Limit(perSecond),
		burst:    burst,
		idle:     idle,
		now:      time.Now,
		limiters: make(map[string]*limiterEntry),
	}
}

func (s *limiterStore) allow(sessionID string) bool {
	if s.limit <= 0 {
		return true
	}

	s.mu.Lock()
	now := s.now()
	s.sweep(now)
	entry, ok := s.limiters[sessionID]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(s.limit, s.burst)}
		s.limiters[sessionID] = entry
	}
	entry.lastSeen = now
	s.mu.Unlock()

	return entry.limiter.AllowN(now, 1)
}

// sweep drops idle limiters at most once per idle period. Callers hold mu.
func (s *limiterStore) sweep(now time.Time) {
	if now.Sub(s.lastSweep) < s.idle {
		return
	}
	s.lastSweep = now
	for id, entry := range s.limiters {
		if now.Sub(entry.lastSeen) >= s.idle {
			delete(s.limiters, id)
		}
	}
}

func (s *limiterStore) forget(sessionID string) {
	s.mu.Lock()
	delete(s.limiters, sessionID)
	s.mu.Unlock()
}

func (s *limiterStore) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.limiters)
}
