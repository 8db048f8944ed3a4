package backend

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// MCPSampler dispatches prompts to the connected MCP client via
// sampling/createMessage. The client session is a single process-wide
// handle, swapped on connect and disconnect; callers without a bound
// session get ErrNoSession.
type MCPSampler struct {
	mu      sync.RWMutex
	srv     *server.MCPServer
	session server.ClientSession
}

// NewMCPSampler creates an MCPSampler. Attach must be called with the
// MCP server before the first CreateMessage.
func NewMCPSampler() *MCPSampler {
	return &MCPSampler{}
}

// Attach binds the MCP server used to route sampling requests.
func (s *MCPSampler) Attach(srv *server.MCPServer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.srv = srv
}

// BindSession installs the client session sampling requests are sent to.
// A reconnecting client replaces the previous handle.
func (s *MCPSampler) BindSession(session server.ClientSession) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = session
	slog.Info("mcp client session bound", "session_id", session.SessionID())
}

// UnbindSession clears the handle if it still refers to the given
// session. A stale disconnect never clobbers a newer session.
func (s *MCPSampler) UnbindSession(session server.ClientSession) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session != nil && s.session.SessionID() == session.SessionID() {
		s.session = nil
		slog.Info("mcp client session unbound", "session_id", session.SessionID())
	}
}

// CreateMessage sends a sampling request to the bound client session and
// extracts the text of the response content block.
func (s *MCPSampler) CreateMessage(ctx context.Context, messages []Message, maxTokens int) (*Result, error) {
	s.mu.RLock()
	srv, session := s.srv, s.session
	s.mu.RUnlock()

	if srv == nil || session == nil {
		return nil, ErrNoSession
	}

	request := mcp.CreateMessageRequest{
		CreateMessageParams: mcp.CreateMessageParams{
			Messages:  make([]mcp.SamplingMessage, 0, len(messages)),
			MaxTokens: maxTokens,
		},
	}
	for _, m := range messages {
		request.CreateMessageParams.Messages = append(request.CreateMessageParams.Messages, mcp.SamplingMessage{
			Role:    mcp.Role(m.Role),
			Content: mcp.NewTextContent(m.Text),
		})
	}

	response, err := srv.RequestSampling(srv.WithContext(ctx, session), request)
	if err != nil {
		return nil, fmt.Errorf("sampling request: %w", err)
	}

	result := &Result{Model: response.Model}
	switch content := response.Content.(type) {
	case mcp.TextContent:
		result.Text = content.Text
		result.IsText = true
	case *mcp.TextContent:
		result.Text = content.Text
		result.IsText = true
	}
	return result, nil
}
