package observability_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/hotelbot/internal/logging"
	"github.com/aretw0/hotelbot/internal/runtime"
	"github.com/aretw0/hotelbot/pkg/domain"
	"github.com/aretw0/hotelbot/pkg/observability"
	"github.com/aretw0/hotelbot/pkg/ports"
)

func TestMetrics_Hooks(t *testing.T) {
	metrics := observability.NewMetrics()

	replies := []struct {
		reply domain.Reply
		err   error
	}{
		{domain.Reply{Results: "Hotel: A"}, nil},
		{domain.Reply{Error: "sold out"}, nil},
		{domain.Reply{}, errors.New("refused")},
	}
	i := 0
	backend := ports.BackendFunc(func(context.Context, string, string) (domain.Reply, error) {
		r := replies[i]
		i++
		return r.reply, r.err
	})
	engine := runtime.NewEngine(backend, runtime.WithLifecycleHooks(metrics.Hooks()))

	ctx := context.Background()
	conv := domain.NewConversation("s1")
	var err error
	for _, text := range []string{"Rome", "A", "B"} {
		conv, err = engine.Submit(ctx, conv, text)
		require.NoError(t, err)
	}
	engine.Reset(ctx, conv)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.StageTransitions.WithLabelValues("booking", "selecting", domain.SourceReply)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.StageTransitions.WithLabelValues("selecting", "booking", domain.SourceReset)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Exchanges.WithLabelValues(ports.EndpointRequestHotel, domain.OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Exchanges.WithLabelValues(ports.EndpointSelectHotel, domain.OutcomeAppError)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Exchanges.WithLabelValues(ports.EndpointSelectHotel, domain.OutcomeTransportError)))
	assert.Equal(t, 3.0, testutil.ToFloat64(metrics.Messages.WithLabelValues("user")))
	// bot: results, error warning, connection warning, welcome back
	assert.Equal(t, 4.0, testutil.ToFloat64(metrics.Messages.WithLabelValues("bot")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Resets))
}

func TestMetrics_Handler(t *testing.T) {
	metrics := observability.NewMetrics()
	metrics.Resets.Inc()

	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "hotelbot_conversation_resets_total 1")
	assert.Contains(t, string(body), "go_goroutines")
}

func TestLoggingHooks(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewWithWriter(&buf, slog.LevelInfo)

	hooks := observability.LoggingHooks(logger)
	hooks.OnStageChange(context.Background(), &domain.StageEvent{
		EventBase: domain.EventBase{SessionID: "s1"},
		From:      domain.StageBooking,
		To:        domain.StageSelecting,
		Source:    domain.SourceReply,
	})

	out := buf.String()
	assert.Contains(t, out, "stage_change")
	assert.Contains(t, out, "session_id=s1")
	assert.Contains(t, out, "to=selecting")
}
