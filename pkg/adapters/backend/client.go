// Package backend implements ports.Backend over HTTP for the hotel booking service.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/hotelbot/internal/dto"
	"github.com/aretw0/hotelbot/internal/logging"
	"github.com/aretw0/hotelbot/pkg/domain"
)

// DefaultBaseURL is where the booking service listens during local development.
const DefaultBaseURL = "http://127.0.0.1:8000"

// maxReplySize bounds how much of a response body is read.
const maxReplySize = 1 << 20

var (
	// ErrTransport wraps failures to reach the backend.
	ErrTransport = errors.New("backend transport failure")
	// ErrDecode wraps responses that are not a JSON object.
	ErrDecode = errors.New("backend reply is not valid JSON")
)

// Client sends chat messages to the booking service.
type Client struct {
	baseURL  string
	http     *http.Client
	contract *Contract
	logger   *slog.Logger
}

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithTimeout bounds each request. Zero means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http.Timeout = d
	}
}

// WithContract enables response validation against the backend contract.
func WithContract(contract *Contract) Option {
	return func(c *Client) {
		c.contract = contract
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates a Client for the service at baseURL.
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the service root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

type chatRequest struct {
	Message string `json:"message"`
}

// Send POSTs {"message": message} to endpoint and decodes the reply.
//
// Application errors (an "error" field, or FastAPI's "detail" on a non-2xx status) are returned in
// Reply.Error with a nil error. A non-nil error means the exchange itself failed.
func (c *Client) Send(ctx context.Context, endpoint string, message string) (domain.Reply, error) {
	body, err := json.Marshal(chatRequest{Message: message})
	if err != nil {
		return domain.Reply{}, fmt.Errorf("failed to encode request: %w", err)
	}

	url := c.baseURL + endpoint
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return domain.Reply{}, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("Backend request", "url", url)

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.Reply{}, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxReplySize))
	if err != nil {
		return domain.Reply{}, fmt.Errorf("%w: reading body: %v", ErrTransport, err)
	}

	c.logger.Debug("Backend response", "url", url, "status", resp.StatusCode, "body", string(data))

	if c.contract != nil {
		if err := c.contract.ValidateResponse(ctx, req, resp.StatusCode, resp.Header, data); err != nil {
			return domain.Reply{}, err
		}
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil || raw == nil {
		return domain.Reply{}, fmt.Errorf("%w: status=%d", ErrDecode, resp.StatusCode)
	}

	reply, err := dto.DecodeReply(raw)
	if err != nil {
		return domain.Reply{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	// Other non-2xx bodies are read like any reply.
	if resp.StatusCode >= 300 && !reply.HasError() && reply.Detail != "" {
		reply.Error = reply.Detail
	}

	return reply, nil
}
