package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/cors"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/aretw0/hotelbot/internal/logging"
	"github.com/aretw0/hotelbot/pkg/domain"
	"github.com/aretw0/hotelbot/pkg/runner"
	"github.com/aretw0/hotelbot/pkg/session"
)

// ConversationResult is the structured output of every tool.
type ConversationResult struct {
	SessionID string           `json:"session_id" jsonschema_description:"The conversation this result belongs to"`
	Stage     domain.Stage     `json:"stage" jsonschema_description:"Current stage: booking, selecting, confirming or done"`
	Replies   []domain.Message `json:"replies,omitempty" jsonschema_description:"Messages added by this call"`
	Messages  []domain.Message `json:"messages,omitempty" jsonschema_description:"Full history, for get_conversation"`
	Notice    string           `json:"notice,omitempty" jsonschema_description:"Hint for the caller when the message was not sent"`
}

type sendArgs struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

type sessionArgs struct {
	SessionID string `json:"session_id"`
}

// Server exposes hotel booking conversations as MCP tools.
type Server struct {
	manager   *session.Manager
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(manager *session.Manager, version string, opts ...Option) *Server {
	s := &Server{
		manager:   manager,
		mcpServer: server.NewMCPServer("hotelbot-mcp", version, server.WithToolCapabilities(false)),
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying mcp-go server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves the SSE transport on addr until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, addr, baseURL string) error {
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())

	httpServer := &http.Server{
		Addr: addr,
		Handler: cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Content-Type", "Authorization", "X-Requested-With"},
		})(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("send_message",
		mcp.WithDescription("Send a message to the hotel booking assistant. The conversation moves through booking (search), selecting (pick a hotel), confirming and done."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Conversation ID; a new conversation is started if it does not exist")),
		mcp.WithString("message", mcp.Required(), mcp.Description("What the user says")),
		mcp.WithOutputSchema[ConversationResult](),
	), mcp.NewStructuredToolHandler(s.handleSend))

	s.mcpServer.AddTool(mcp.NewTool("get_conversation",
		mcp.WithDescription("Get the full history and the current stage of a conversation."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Conversation ID")),
		mcp.WithOutputSchema[ConversationResult](),
	), mcp.NewStructuredToolHandler(s.handleGet))

	s.mcpServer.AddTool(mcp.NewTool("reset_conversation",
		mcp.WithDescription("Start the conversation over from the booking stage."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Conversation ID")),
		mcp.WithOutputSchema[ConversationResult](),
	), mcp.NewStructuredToolHandler(s.handleReset))
}

func (s *Server) handleSend(ctx context.Context, _ mcp.CallToolRequest, args sendArgs) (ConversationResult, error) {
	if args.SessionID == "" {
		return ConversationResult{}, errors.New("session_id is required")
	}
	clean, err := runner.SanitizeInput(args.Message)
	if err != nil {
		s.logger.Warn("MCP send_message: Input rejected", "err", err, "size", len(args.Message))
		return ConversationResult{}, fmt.Errorf("input rejected: %w", err)
	}

	before, err := s.manager.LoadOrStart(ctx, args.SessionID)
	if err != nil {
		return ConversationResult{}, err
	}

	after, err := s.manager.Submit(ctx, args.SessionID, clean)
	switch {
	case errors.Is(err, domain.ErrEmptyInput):
		return ConversationResult{SessionID: args.SessionID, Stage: before.Stage, Notice: "message is empty, nothing was sent"}, nil
	case errors.Is(err, domain.ErrNoEndpoint):
		return ConversationResult{SessionID: args.SessionID, Stage: after.Stage, Notice: "booking is complete; call reset_conversation to book again"}, nil
	case err != nil:
		return ConversationResult{}, err
	}

	res := ConversationResult{SessionID: args.SessionID, Stage: after.Stage}
	if diff := domain.Diff(before, after); diff != nil {
		for _, msg := range diff.Appended {
			if msg.Sender == domain.SenderBot {
				res.Replies = append(res.Replies, msg)
			}
		}
	}
	return res, nil
}

func (s *Server) handleGet(ctx context.Context, _ mcp.CallToolRequest, args sessionArgs) (ConversationResult, error) {
	conv, err := s.manager.Load(ctx, args.SessionID)
	if err != nil {
		return ConversationResult{}, err
	}
	return ConversationResult{SessionID: conv.SessionID, Stage: conv.Stage, Messages: conv.Messages}, nil
}

func (s *Server) handleReset(ctx context.Context, _ mcp.CallToolRequest, args sessionArgs) (ConversationResult, error) {
	conv, err := s.manager.Reset(ctx, args.SessionID)
	if err != nil {
		return ConversationResult{}, err
	}
	return ConversationResult{SessionID: conv.SessionID, Stage: conv.Stage, Replies: conv.Messages}, nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource("hotelbot://sessions", "Active conversations",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		ids, err := s.manager.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list sessions: %w", err)
		}
		jsonBytes, _ := json.Marshal(ids)

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "hotelbot://sessions",
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
