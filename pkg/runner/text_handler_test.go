package runner

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/hotelbot/pkg/domain"
)

func TestTextHandler_Output(t *testing.T) {
	out := &bytes.Buffer{}
	handler := NewTextHandler(strings.NewReader(""), out,
		WithTextHandlerRenderer(func(s string) (string, error) {
			return "Rendered: " + s, nil
		}),
		WithTextHandlerLabels(func(s domain.Sender) string { return string(s) + ":" }),
	)

	err := handler.Output(context.Background(), domain.StageBooking, []domain.Message{
		domain.UserMessage("Rome"),
		domain.BotMessage("Hotel A"),
		domain.WarningMessage(domain.ConnectionWarning),
	})
	require.NoError(t, err)

	got := out.String()
	assert.Contains(t, got, "user:\nRome\n")
	assert.Contains(t, got, "bot:\nRendered: Hotel A\n")
	assert.Contains(t, got, "⚠️ Could not connect to backend.", "warnings are printed verbatim")
	assert.NotContains(t, got, "Rendered: Rome")
}

func TestTextHandler_Input(t *testing.T) {
	out := &bytes.Buffer{}
	handler := NewTextHandler(strings.NewReader("  my user input  \n"), out)

	val, err := handler.Input(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "my user input", val)
	assert.Equal(t, "> ", out.String())

	_, err = handler.Input(context.Background())
	assert.ErrorIs(t, err, io.EOF)
}

func TestTextHandler_InputRetriesOnInvalid(t *testing.T) {
	t.Setenv(EnvMaxInputSize, "5")
	out := &bytes.Buffer{}
	handler := NewTextHandler(strings.NewReader("far too long\nok\n"), out)

	val, err := handler.Input(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ok", val)
	assert.Contains(t, out.String(), "Please try again")
}

func TestTextHandler_InputCancelled(t *testing.T) {
	r, w := io.Pipe()
	defer w.Close()
	handler := NewTextHandler(r, io.Discard)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := handler.Input(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
