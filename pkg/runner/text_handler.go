package runner

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/aretw0/hotelbot/pkg/domain"
)

// DefaultPrompt is printed before every read.
const DefaultPrompt = "> "

// TextHandler implements the interactive terminal interface.
type TextHandler struct {
	Reader   *bufio.Reader
	Writer   io.Writer
	Renderer ContentRenderer
	Label    func(domain.Sender) string
	Prompt   string

	mu        sync.Mutex
	prompting bool

	inputChan chan inputResult
	startOnce sync.Once
}

type inputResult struct {
	text string
	err  error
}

// TextHandlerOption defines configuration for TextHandler.
type TextHandlerOption func(*TextHandler)

// WithTextHandlerRenderer configures the content renderer for bot messages.
func WithTextHandlerRenderer(renderer ContentRenderer) TextHandlerOption {
	return func(h *TextHandler) {
		h.Renderer = renderer
	}
}

// WithTextHandlerLabels configures the speaker label printed before each message.
func WithTextHandlerLabels(label func(domain.Sender) string) TextHandlerOption {
	return func(h *TextHandler) {
		h.Label = label
	}
}

// NewTextHandler creates a handler for standard text IO.
func NewTextHandler(r io.Reader, w io.Writer, opts ...TextHandlerOption) *TextHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	h := &TextHandler{
		Reader: bufio.NewReader(r),
		Writer: w,
		Prompt: DefaultPrompt,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *TextHandler) initPump() {
	h.startOnce.Do(func() {
		h.inputChan = make(chan inputResult)
		go h.pump()
	})
}

// pump reads lines in the background so Input can honor context cancellation.
func (h *TextHandler) pump() {
	for {
		text, err := h.Reader.ReadString('\n')
		if text != "" {
			h.inputChan <- inputResult{text: text}
		}
		if err != nil {
			if err != io.EOF {
				h.inputChan <- inputResult{err: err}
			}
			close(h.inputChan)
			return
		}
	}
}

// Output prints messages, rendering bot text when a Renderer is set.
func (h *TextHandler) Output(ctx context.Context, stage domain.Stage, msgs []domain.Message) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	printed := false
	for _, msg := range msgs {
		if !printed && h.prompting {
			// Async output while waiting at the prompt.
			fmt.Fprintln(h.Writer)
		}
		printed = true

		text := msg.Text
		if h.Renderer != nil && msg.Sender == domain.SenderBot && !strings.HasPrefix(text, domain.WarningMarker) {
			if rendered, err := h.Renderer(text); err == nil {
				text = rendered
			}
		}
		if h.Label != nil {
			fmt.Fprintln(h.Writer, h.Label(msg.Sender))
		}
		fmt.Fprintln(h.Writer, strings.TrimSpace(text))
	}

	if printed && h.prompting {
		fmt.Fprint(h.Writer, h.Prompt)
	}
	return nil
}

// Input prompts and waits for a line, a closed input (io.EOF) or ctx cancellation.
func (h *TextHandler) Input(ctx context.Context) (string, error) {
	h.initPump()

	for {
		h.mu.Lock()
		if ctx.Err() != nil {
			h.mu.Unlock()
			return "", ctx.Err()
		}
		fmt.Fprint(h.Writer, h.Prompt)
		h.prompting = true
		h.mu.Unlock()

		var res inputResult
		var ok bool
		select {
		case <-ctx.Done():
			h.setPrompting(false)
			return "", ctx.Err()
		case res, ok = <-h.inputChan:
			h.setPrompting(false)
		}
		if !ok {
			return "", io.EOF
		}
		if res.err != nil {
			return "", res.err
		}

		clean, err := SanitizeInput(strings.TrimSpace(res.text))
		if err != nil {
			h.mu.Lock()
			fmt.Fprintf(h.Writer, "Error: %v. Please try again.\n", err)
			h.mu.Unlock()
			continue
		}
		return clean, nil
	}
}

func (h *TextHandler) setPrompting(v bool) {
	h.mu.Lock()
	h.prompting = v
	h.mu.Unlock()
}

func (h *TextHandler) SystemOutput(ctx context.Context, msg string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	fmt.Fprintf(h.Writer, "[System] %s\n", msg)
	return nil
}
