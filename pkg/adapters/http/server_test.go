package http

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/hotelbot/internal/runtime"
	"github.com/aretw0/hotelbot/pkg/adapters/memory"
	"github.com/aretw0/hotelbot/pkg/domain"
	"github.com/aretw0/hotelbot/pkg/ports"
	"github.com/aretw0/hotelbot/pkg/session"
)

func fakeBackend() ports.Backend {
	return ports.BackendFunc(func(_ context.Context, endpoint, message string) (domain.Reply, error) {
		switch endpoint {
		case ports.EndpointRequestHotel:
			return domain.Reply{Summary: "Found 1", Results: "Hotel: A"}, nil
		case ports.EndpointSelectHotel:
			return domain.Reply{Message: "Confirm?"}, nil
		default:
			return domain.Reply{Message: "Booked!"}, nil
		}
	})
}

func newTestServer(t *testing.T, opts ...Option) *Server {
	t.Helper()
	manager := session.NewManager(memory.NewStore(), runtime.NewEngine(fakeBackend()),
		session.WithAfterFunc(func(time.Duration, func()) func() bool { return func() bool { return false } }),
	)
	s := NewServer(manager, opts...)
	t.Cleanup(s.Close)
	return s
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeConversation(t *testing.T, w *httptest.ResponseRecorder) domain.Conversation {
	t.Helper()
	var conv domain.Conversation
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &conv))
	return conv
}

func TestServer_SessionLifecycle(t *testing.T) {
	s := newTestServer(t)

	w := do(t, s, "POST", "/api/sessions", `{"session_id":"abc"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "/api/sessions/abc", w.Header().Get("Location"))
	conv := decodeConversation(t, w)
	assert.Equal(t, domain.StageBooking, conv.Stage)
	require.Len(t, conv.Messages, 1)
	assert.Equal(t, domain.WelcomeText, conv.Messages[0].Text)

	w = do(t, s, "POST", "/api/sessions/abc/messages", `{"message":"Rome"}`)
	require.Equal(t, http.StatusOK, w.Code)
	conv = decodeConversation(t, w)
	assert.Equal(t, domain.StageSelecting, conv.Stage)
	assert.Equal(t, "Found 1\n\nHotel: A", conv.Messages[2].Text)

	w = do(t, s, "GET", "/api/sessions/abc", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeConversation(t, w).Messages, 3)

	w = do(t, s, "GET", "/api/sessions", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"sessions":["abc"]}`, w.Body.String())

	w = do(t, s, "POST", "/api/sessions/abc/reset", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, decodeConversation(t, w).Generation)

	w = do(t, s, "DELETE", "/api/sessions/abc", "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, s, "GET", "/api/sessions/abc", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServer_CreateSessionGeneratesID(t *testing.T) {
	s := newTestServer(t)

	w := do(t, s, "POST", "/api/sessions", "")
	require.Equal(t, http.StatusCreated, w.Code)
	conv := decodeConversation(t, w)
	assert.Len(t, conv.SessionID, 36)
}

func TestServer_PostMessage_Errors(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name string
		body string
		want int
	}{
		{"malformed", `{"message":`, http.StatusBadRequest},
		{"blank", `{"message":"   "}`, http.StatusBadRequest},
		{"wrong type", `{"message":42}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, s, "POST", "/api/sessions/x/messages", tt.body)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestServer_PostMessage_DoneConflicts(t *testing.T) {
	s := newTestServer(t)

	for _, text := range []string{"Rome", "A", "yes"} {
		w := do(t, s, "POST", "/api/sessions/d/messages", `{"message":"`+text+`"}`)
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := do(t, s, "POST", "/api/sessions/d/messages", `{"message":"more"}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Conversation)
	assert.Equal(t, domain.StageDone, resp.Conversation.Stage)
}

func TestServer_RateLimit(t *testing.T) {
	s := newTestServer(t, WithRateLimit(0.001, 2))

	codes := []int{}
	for i := 0; i < 3; i++ {
		codes = append(codes, do(t, s, "POST", "/api/sessions/r/messages", `{"message":"hi"}`).Code)
	}
	assert.Equal(t, []int{200, 200, 429}, codes)

	// Other sessions have their own bucket.
	assert.Equal(t, http.StatusOK, do(t, s, "POST", "/api/sessions/other/messages", `{"message":"hi"}`).Code)
}

func TestServer_HealthInfoPage(t *testing.T) {
	s := newTestServer(t,
		WithInfo("1.2.3", "http://127.0.0.1:8000"),
		WithMetricsHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("metric 1\n"))
		})),
	)

	w := do(t, s, "GET", "/health", "")
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = do(t, s, "GET", "/info", "")
	assert.JSONEq(t, `{"app":"hotelbot","version":"1.2.3","backend":"http://127.0.0.1:8000"}`, w.Body.String())

	w = do(t, s, "GET", "/metrics", "")
	assert.Equal(t, "metric 1\n", w.Body.String())

	w = do(t, s, "GET", "/", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "<title>Hotel Bot</title>")
	// Bot replies are markdown; the page escapes them before adding markup.
	assert.Contains(t, w.Body.String(), "escapeHTML(text)")
	assert.Contains(t, w.Body.String(), "div.innerHTML = markdown(m.text)")
}

func TestServer_CORS(t *testing.T) {
	s := newTestServer(t, WithAllowedOrigins("http://app.local"))

	req := httptest.NewRequest("OPTIONS", "/api/sessions", nil)
	req.Header.Set("Origin", "http://app.local")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)

	assert.Equal(t, "http://app.local", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestServer_Events(t *testing.T) {
	s := newTestServer(t)
	ts := httptest.NewServer(s)
	defer ts.Close()

	require.Equal(t, http.StatusCreated, do(t, s, "POST", "/api/sessions", `{"session_id":"sse"}`).Code)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, "GET", ts.URL+"/api/sessions/sse/events?watch=stage", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	readData := func() string {
		for {
			line, err := reader.ReadString('\n')
			require.NoError(t, err)
			if strings.HasPrefix(line, "data: ") {
				return strings.TrimSpace(strings.TrimPrefix(line, "data: "))
			}
		}
	}

	var snapshot domain.ConversationDiff
	require.NoError(t, json.Unmarshal([]byte(readData()), &snapshot))
	require.NotNil(t, snapshot.Stage)
	assert.Equal(t, domain.StageBooking, *snapshot.Stage)
	assert.Len(t, snapshot.Appended, 1)

	require.Eventually(t, func() bool { return s.streams.Subscribers("sse") == 1 }, time.Second, 5*time.Millisecond)
	w := do(t, s, "POST", "/api/sessions/sse/messages", `{"message":"Rome"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var diff domain.ConversationDiff
	require.NoError(t, json.Unmarshal([]byte(readData()), &diff))
	require.NotNil(t, diff.Stage)
	assert.Equal(t, domain.StageSelecting, *diff.Stage)
	assert.Len(t, diff.Appended, 2)
}

// loadHookStore runs onLoad inside Load, after the record was read.
type loadHookStore struct {
	ports.ConversationStore
	onLoad atomic.Pointer[func()]
}

func (s *loadHookStore) Load(ctx context.Context, sessionID string) (*domain.Conversation, error) {
	conv, err := s.ConversationStore.Load(ctx, sessionID)
	if fn := s.onLoad.Swap(nil); fn != nil {
		(*fn)()
	}
	return conv, err
}

func TestServer_EventsKeepsUpdatesDuringSnapshot(t *testing.T) {
	store := &loadHookStore{ConversationStore: memory.NewStore()}
	manager := session.NewManager(store, runtime.NewEngine(fakeBackend()))
	s := NewServer(manager)
	t.Cleanup(s.Close)
	ts := httptest.NewServer(s)
	defer ts.Close()

	require.Equal(t, http.StatusCreated, do(t, s, "POST", "/api/sessions", `{"session_id":"race"}`).Code)

	// An update published while the snapshot is being read.
	update := func() { s.streams.Broadcast("race", `{"stage":"selecting"}`) }
	store.onLoad.Store(&update)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, "GET", ts.URL+"/api/sessions/race/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	reader := bufio.NewReader(resp.Body)
	var data []string
	for len(data) < 2 {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		if strings.HasPrefix(line, "data: ") {
			data = append(data, strings.TrimSpace(strings.TrimPrefix(line, "data: ")))
		}
	}
	assert.Contains(t, data[0], `"appended"`)
	assert.Equal(t, `{"stage":"selecting"}`, data[1])
}

func TestServer_EventsUnknownSession(t *testing.T) {
	s := newTestServer(t)
	w := do(t, s, "GET", "/api/sessions/ghost/events", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStreamManager(t *testing.T) {
	sm := NewStreamManager()
	ch, cancel := sm.Subscribe("s")

	sm.Broadcast("s", "one")
	sm.Broadcast("other", "ignored")
	assert.Equal(t, "one", <-ch)

	for i := 0; i < 20; i++ {
		sm.Broadcast("s", "flood")
	}
	assert.Len(t, ch, 10, "slow clients drop messages instead of blocking")

	sm.Close("s")
	assert.Equal(t, 0, sm.Subscribers("s"))
	cancel() // safe after Close
}

func TestMatchesWatch(t *testing.T) {
	stage := domain.StageDone
	withStage, _ := json.Marshal(domain.ConversationDiff{Stage: &stage})
	withMessages, _ := json.Marshal(domain.ConversationDiff{Appended: []domain.Message{domain.BotMessage("x")}})

	assert.True(t, matchesWatch(string(withStage), []string{"stage"}))
	assert.False(t, matchesWatch(string(withMessages), []string{"stage"}))
	assert.True(t, matchesWatch(string(withMessages), []string{"pending", " messages"}))
	assert.True(t, matchesWatch("not json", []string{"stage"}))
}

