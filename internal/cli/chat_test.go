package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/aretw0/hotelbot/pkg/domain"
	"github.com/aretw0/hotelbot/pkg/runner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChat_JSON(t *testing.T) {
	app := testApp(t, backendStub(t).URL)

	var out bytes.Buffer
	err := Chat(context.Background(), app, ChatOptions{
		SessionID: "json",
		JSON:      true,
		In:        strings.NewReader(`{"message":"Lisbon"}` + "\n"),
		Out:       &out,
	})
	require.NoError(t, err)

	var events []runner.JSONEvent
	dec := json.NewDecoder(&out)
	for dec.More() {
		var ev runner.JSONEvent
		require.NoError(t, dec.Decode(&ev))
		events = append(events, ev)
	}
	require.Len(t, events, 2)
	assert.Equal(t, domain.WelcomeText, events[0].Message.Text)
	assert.Equal(t, domain.StageSelecting, events[1].Stage)
	assert.Equal(t, "Found Hotel A", events[1].Message.Text)
}

func TestChat_PlainText(t *testing.T) {
	app := testApp(t, backendStub(t).URL)

	var out bytes.Buffer
	err := Chat(context.Background(), app, ChatOptions{
		In:  strings.NewReader("Lisbon\n/quit\n"),
		Out: &out,
	})
	require.NoError(t, err)
	assert.Contains(t, out.String(), domain.WelcomeText)
	assert.Contains(t, out.String(), "Found Hotel A")

	conv, err := app.Client.Manager().Load(context.Background(), runner.DefaultSessionID)
	require.NoError(t, err)
	assert.Equal(t, domain.StageSelecting, conv.Stage)
}

func TestIsTerminal(t *testing.T) {
	assert.False(t, IsTerminal(&bytes.Buffer{}))
}
