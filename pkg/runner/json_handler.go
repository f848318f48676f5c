package runner

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/aretw0/hotelbot/pkg/domain"
)

// JSONEvent is one line written by the JSONHandler.
type JSONEvent struct {
	Type    string          `json:"type"` // "message" or "system"
	Stage   domain.Stage    `json:"stage,omitempty"`
	Message *domain.Message `json:"message,omitempty"`
	Text    string          `json:"text,omitempty"`
}

// JSONHandler implements the IOHandler interface for JSON-Lines communication.
//
// Input lines may be a JSON string, an object with a "message" field, or plain text.
type JSONHandler struct {
	Reader *bufio.Reader

	mu      sync.Mutex
	encoder *json.Encoder
}

// NewJSONHandler creates a handler for JSON IO.
func NewJSONHandler(r io.Reader, w io.Writer) *JSONHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return &JSONHandler{
		Reader:  bufio.NewReader(r),
		encoder: enc,
	}
}

func (h *JSONHandler) Output(ctx context.Context, stage domain.Stage, msgs []domain.Message) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i := range msgs {
		if err := h.encoder.Encode(JSONEvent{Type: "message", Stage: stage, Message: &msgs[i]}); err != nil {
			return err
		}
	}
	return nil
}

func (h *JSONHandler) Input(ctx context.Context) (string, error) {
	for {
		line, err := h.Reader.ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			return "", err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			if err == io.EOF {
				return "", err
			}
			continue
		}

		text := line
		var s string
		var obj struct {
			Message string `json:"message"`
		}
		if json.Unmarshal([]byte(line), &s) == nil {
			text = s
		} else if json.Unmarshal([]byte(line), &obj) == nil {
			text = obj.Message
		}
		return SanitizeInput(text)
	}
}

func (h *JSONHandler) SystemOutput(ctx context.Context, msg string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.encoder.Encode(JSONEvent{Type: "system", Text: msg})
}
