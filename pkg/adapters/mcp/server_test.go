package mcp

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/hotelbot/internal/runtime"
	"github.com/aretw0/hotelbot/pkg/adapters/memory"
	"github.com/aretw0/hotelbot/pkg/domain"
	"github.com/aretw0/hotelbot/pkg/ports"
	"github.com/aretw0/hotelbot/pkg/session"
)

func newTestServer(backend ports.Backend) *Server {
	manager := session.NewManager(memory.NewStore(), runtime.NewEngine(backend),
		session.WithAfterFunc(func(time.Duration, func()) func() bool { return func() bool { return false } }),
	)
	return NewServer(manager, "test")
}

func flowBackend() ports.Backend {
	return ports.BackendFunc(func(_ context.Context, endpoint, _ string) (domain.Reply, error) {
		switch endpoint {
		case ports.EndpointRequestHotel:
			return domain.Reply{Reply: "Hotel A or Hotel B?", Results: "A, B"}, nil
		case ports.EndpointSelectHotel:
			return domain.Reply{Message: "Confirm Hotel A?"}, nil
		default:
			return domain.Reply{Message: "Booked!"}, nil
		}
	})
}

func TestServer_SendMessage(t *testing.T) {
	s := newTestServer(flowBackend())
	ctx := context.Background()

	res, err := s.handleSend(ctx, mcp.CallToolRequest{}, sendArgs{SessionID: "agent", Message: "Rome"})
	require.NoError(t, err)
	assert.Equal(t, domain.StageSelecting, res.Stage)
	require.Len(t, res.Replies, 1)
	assert.Equal(t, "Hotel A or Hotel B?", res.Replies[0].Text)

	res, err = s.handleSend(ctx, mcp.CallToolRequest{}, sendArgs{SessionID: "agent", Message: "A"})
	require.NoError(t, err)
	assert.Equal(t, domain.StageConfirming, res.Stage)

	res, err = s.handleSend(ctx, mcp.CallToolRequest{}, sendArgs{SessionID: "agent", Message: "yes"})
	require.NoError(t, err)
	assert.Equal(t, domain.StageDone, res.Stage)

	res, err = s.handleSend(ctx, mcp.CallToolRequest{}, sendArgs{SessionID: "agent", Message: "again"})
	require.NoError(t, err)
	assert.Contains(t, res.Notice, "reset_conversation")
}

func TestServer_SendMessage_Validation(t *testing.T) {
	s := newTestServer(flowBackend())
	ctx := context.Background()

	_, err := s.handleSend(ctx, mcp.CallToolRequest{}, sendArgs{Message: "hi"})
	assert.Error(t, err)

	res, err := s.handleSend(ctx, mcp.CallToolRequest{}, sendArgs{SessionID: "a", Message: "  "})
	require.NoError(t, err)
	assert.Contains(t, res.Notice, "empty")
	assert.Equal(t, domain.StageBooking, res.Stage)
}

func TestServer_SendMessage_BackendDown(t *testing.T) {
	s := newTestServer(ports.BackendFunc(func(context.Context, string, string) (domain.Reply, error) {
		return domain.Reply{}, errors.New("refused")
	}))

	res, err := s.handleSend(context.Background(), mcp.CallToolRequest{}, sendArgs{SessionID: "a", Message: "Rome"})
	require.NoError(t, err)
	assert.Equal(t, domain.StageBooking, res.Stage)
	require.Len(t, res.Replies, 1)
	assert.Equal(t, domain.WarningMarker+domain.ConnectionWarning, res.Replies[0].Text)
}

func TestServer_GetAndReset(t *testing.T) {
	s := newTestServer(flowBackend())
	ctx := context.Background()

	_, err := s.handleGet(ctx, mcp.CallToolRequest{}, sessionArgs{SessionID: "missing"})
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	_, err = s.handleSend(ctx, mcp.CallToolRequest{}, sendArgs{SessionID: "a", Message: "Rome"})
	require.NoError(t, err)

	res, err := s.handleGet(ctx, mcp.CallToolRequest{}, sessionArgs{SessionID: "a"})
	require.NoError(t, err)
	assert.Len(t, res.Messages, 3)

	res, err = s.handleReset(ctx, mcp.CallToolRequest{}, sessionArgs{SessionID: "a"})
	require.NoError(t, err)
	assert.Equal(t, domain.StageBooking, res.Stage)
	require.Len(t, res.Replies, 1)
	assert.Equal(t, domain.WelcomeBackText, res.Replies[0].Text)
}

func TestServer_StructuredHandler(t *testing.T) {
	s := newTestServer(flowBackend())

	req := mcp.CallToolRequest{}
	req.Params.Name = "send_message"
	req.Params.Arguments = map[string]any{"session_id": "tool", "message": "Rome"}

	result, err := mcp.NewStructuredToolHandler(s.handleSend)(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.False(t, result.IsError)

	out, ok := result.StructuredContent.(ConversationResult)
	require.True(t, ok)
	assert.Equal(t, domain.StageSelecting, out.Stage)
}
