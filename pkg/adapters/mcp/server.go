// Package mcp exposes the assistant as Model Context Protocol tools.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/banktalk/banktalk"
	"github.com/banktalk/banktalk/internal/logging"
	"github.com/banktalk/banktalk/pkg/domain"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// SessionsURI is the resource listing stored session ids.
const SessionsURI = "banktalk://sessions"

// Assistant is the subset of *banktalk.Assistant the MCP server needs.
type Assistant interface {
	Chat(ctx context.Context, sessionID, message string) (*banktalk.Response, error)
	Session(ctx context.Context, sessionID string) (*domain.ConversationState, error)
	Reset(ctx context.Context, sessionID string) error
	Sessions(ctx context.Context) ([]string, error)
}

// ChatResult is the structured output of the chat tool.
type ChatResult struct {
	SessionID     string   `json:"session_id" jsonschema_description:"Session to pass back on the next call"`
	Reply         string   `json:"reply" jsonschema_description:"Assistant reply in markdown"`
	Route         string   `json:"route" jsonschema_description:"Which handler answered: reset, emi, loan, resume_completed or rag"`
	ActiveFlow    string   `json:"active_flow,omitempty" jsonschema_description:"Form in progress (EMI or LOAN), empty when idle"`
	AwaitingField string   `json:"awaiting_field,omitempty" jsonschema_description:"Field the form is waiting for"`
	Sources       []domain.Source `json:"sources,omitempty" jsonschema_description:"Documents that grounded a RAG answer"`
}

// Server wraps the Assistant and exposes it as an MCP Server.
type Server struct {
	assistant Assistant
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// NewServer creates a new MCP Server instance.
func NewServer(assistant Assistant, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Server{
		assistant: assistant,
		mcpServer: server.NewMCPServer("banktalk-mcp", strings.TrimSpace(banktalk.Version)),
		logger:    logger.With("component", "mcp"),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE and stops when ctx ends.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
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

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	chatTool := mcp.NewTool("chat",
		mcp.WithDescription("Send one message to the banking assistant. It calculates EMIs, checks home loan eligibility and answers product questions. Reuse session_id to continue a conversation."),
		mcp.WithString("message", mcp.Required(), mcp.Description("The user's message")),
		mcp.WithString("session_id", mcp.Description("Conversation id; a new one is issued when omitted")),
		mcp.WithOutputSchema[ChatResult](),
	)
	s.mcpServer.AddTool(chatTool, mcp.NewStructuredToolHandler(s.handleChat))

	s.mcpServer.AddTool(mcp.NewTool("reset_session",
		mcp.WithDescription("Clear the form state of a session, like typing 'reset'."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Conversation id")),
	), s.handleReset)

	s.mcpServer.AddTool(mcp.NewTool("get_session",
		mcp.WithDescription("Return the stored conversation state of a session as JSON."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Conversation id")),
	), s.handleGetSession)
}

func (s *Server) handleChat(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (ChatResult, error) {
	message, _ := args["message"].(string)
	sessionID, _ := args["session_id"].(string)
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	resp, err := s.assistant.Chat(ctx, sessionID, message)
	if err != nil {
		s.logger.Warn("MCP chat failed", "session_id", sessionID, "err", err)
		return ChatResult{}, fmt.Errorf("chat failed: %w", err)
	}

	return ChatResult{
		SessionID:     resp.SessionID,
		Reply:         resp.Reply,
		Route:         string(resp.Route),
		ActiveFlow:    string(resp.ActiveFlow),
		AwaitingField: resp.AwaitingField,
		Sources:       resp.Sources,
	}, nil
}

func (s *Server) handleReset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := request.GetString("session_id", "")
	if sessionID == "" {
		return mcp.NewToolResultError("session_id is required"), nil
	}
	if err := s.assistant.Reset(ctx, sessionID); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("reset failed: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Session %s has been reset.", sessionID)), nil
}

func (s *Server) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := request.GetString("session_id", "")
	state, err := s.assistant.Session(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("session %q not found", sessionID)), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("load failed: %v", err)), nil
	}
	jsonBytes, _ := json.Marshal(state)
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(SessionsURI, "Stored Sessions",
		mcp.WithMIMEType("application/json"),
	), s.readSessions)
}

func (s *Server) readSessions(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	ids, err := s.assistant.Sessions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	if ids == nil {
		ids = []string{}
	}
	jsonBytes, _ := json.Marshal(ids)

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      SessionsURI,
			MIMEType: "application/json",
			Text:     string(jsonBytes),
		},
	}, nil
}
