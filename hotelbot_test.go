package hotelbot_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/hotelbot"
	"github.com/aretw0/hotelbot/pkg/adapters/memory"
	"github.com/aretw0/hotelbot/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// bookingService mimics the three endpoints of the booking backend.
func bookingService(t *testing.T) (*httptest.Server, *[]string) {
	t.Helper()
	var (
		mu    sync.Mutex
		paths []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		paths = append(paths, r.URL.Path)
		mu.Unlock()

		var body map[string]string
		switch r.URL.Path {
		case "/request_hotel":
			body = map[string]string{"summary": "1 hotel found", "results": "Hotel: A"}
		case "/select_hotel":
			body = map[string]string{"message": "Confirm Hotel A?"}
		case "/book_hotel":
			body = map[string]string{"message": "Booked!"}
		default:
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(srv.Close)
	return srv, &paths
}

func TestClient_BookingFlow(t *testing.T) {
	srv, paths := bookingService(t)
	client, err := hotelbot.New(
		hotelbot.WithBaseURL(srv.URL),
		hotelbot.WithTimeout(5*time.Second),
		hotelbot.WithResetDelay(10*time.Millisecond),
	)
	require.NoError(t, err)
	defer client.Close()

	ctx := context.Background()

	conv, err := client.Submit(ctx, "s1", "Lisbon, 2 nights")
	require.NoError(t, err)
	assert.Equal(t, domain.StageSelecting, conv.Stage)
	assert.Equal(t, "1 hotel found\n\nHotel: A", conv.Messages[len(conv.Messages)-1].Text)

	conv, err = client.Submit(ctx, "s1", "Hotel A")
	require.NoError(t, err)
	assert.Equal(t, domain.StageConfirming, conv.Stage)

	conv, err = client.Submit(ctx, "s1", "yes")
	require.NoError(t, err)
	assert.Equal(t, domain.StageDone, conv.Stage)
	assert.Equal(t, "Booked!", conv.Messages[len(conv.Messages)-1].Text)

	assert.Equal(t, []string{"/request_hotel", "/select_hotel", "/book_hotel"}, *paths)

	require.Eventually(t, func() bool {
		c, err := client.Conversation(ctx, "s1")
		return err == nil && c.Stage == domain.StageBooking && len(c.Messages) == 1
	}, time.Second, 5*time.Millisecond)

	c, err := client.Conversation(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, domain.WelcomeBackText, c.Messages[0].Text)
	assert.Equal(t, 1, c.Generation)
}

func TestClient_BackendDown(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client, err := hotelbot.New(hotelbot.WithBaseURL(url))
	require.NoError(t, err)
	defer client.Close()

	conv, err := client.Submit(context.Background(), "s1", "hello")
	require.NoError(t, err)
	assert.Equal(t, domain.StageBooking, conv.Stage)
	last := conv.Messages[len(conv.Messages)-1]
	assert.Equal(t, domain.SenderBot, last.Sender)
	assert.Equal(t, domain.WarningMarker+domain.ConnectionWarning, last.Text)
}

func TestClient_SessionsUseGivenStore(t *testing.T) {
	store := memory.NewStore()
	client, err := hotelbot.New(hotelbot.WithStore(store))
	require.NoError(t, err)
	defer client.Close()

	ctx := context.Background()
	_, err = client.Conversation(ctx, "a")
	require.NoError(t, err)
	_, err = client.Conversation(ctx, "b")
	require.NoError(t, err)

	ids, err := client.Sessions(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b"}, ids)

	require.NoError(t, client.Delete(ctx, "a"))
	_, err = store.Load(ctx, "a")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestClient_EmptyInput(t *testing.T) {
	client, err := hotelbot.New()
	require.NoError(t, err)
	defer client.Close()

	_, err = client.Submit(context.Background(), "s1", "   ")
	assert.ErrorIs(t, err, domain.ErrEmptyInput)
}

func TestVersion(t *testing.T) {
	assert.NotEmpty(t, hotelbot.Version)
	assert.NotContains(t, hotelbot.Version, "\n")
}

func TestClient_UnknownHintWithContractValidation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results":"Hotel: A","next_stage":"paying"}`))
	}))
	defer srv.Close()

	for _, validate := range []bool{false, true} {
		t.Run(fmt.Sprintf("validate=%v", validate), func(t *testing.T) {
			client, err := hotelbot.New(hotelbot.WithBaseURL(srv.URL), hotelbot.WithContractValidation(validate))
			require.NoError(t, err)
			defer client.Close()

			conv, err := client.Submit(context.Background(), "s1", "Lisbon")
			require.NoError(t, err)
			assert.Equal(t, domain.StageSelecting, conv.Stage)
			assert.Equal(t, "\n\nHotel: A", conv.Messages[len(conv.Messages)-1].Text)
		})
	}
}
