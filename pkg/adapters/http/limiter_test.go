package http

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLimiterStore_EvictsIdleSessions(t *testing.T) {
	clock := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	ls := newLimiterStore(1, 2)
	ls.now = func() time.Time { return clock }

	for i := 0; i < 100; i++ {
		assert.True(t, ls.allow(fmt.Sprintf("s%d", i)))
	}
	assert.Equal(t, 100, ls.size())

	clock = clock.Add(minLimiterIdle + time.Second)
	assert.True(t, ls.allow("fresh"))
	assert.Equal(t, 1, ls.size())
}

func TestLimiterStore_KeepsActiveSessions(t *testing.T) {
	clock := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	ls := newLimiterStore(1, 1)
	ls.now = func() time.Time { return clock }

	assert.True(t, ls.allow("busy"))
	assert.False(t, ls.allow("busy"))

	clock = clock.Add(minLimiterIdle / 2)
	assert.True(t, ls.allow("busy"))

	clock = clock.Add(minLimiterIdle/2 + time.Second)
	ls.allow("other")
	assert.Equal(t, 2, ls.size(), "a limiter used within the idle window survives a sweep")
}

func TestLimiterStore_Disabled(t *testing.T) {
	ls := newLimiterStore(0, 0)
	for i := 0; i < 10; i++ {
		assert.True(t, ls.allow("s"))
	}
	assert.Equal(t, 0, ls.size())
}
