// Package backend defines the response-generation contract and its MCP
// sampling implementation.
package backend

import (
	"context"
	"errors"
)

// ErrNoSession indicates that no MCP client is connected to serve
// sampling requests.
var ErrNoSession = errors.New("no active client session")

// Message is one role-tagged text block of a prompt.
type Message struct {
	Role string
	Text string
}

// Result is the backend's response. IsText is false when the client
// returned a non-text content block; callers treat that as an empty
// response.
type Result struct {
	Model  string
	Text   string
	IsText bool
}

// Backend generates a response for an ordered list of prompt messages
// within a token budget. Implementations may block for the full network
// round trip; no timeout is imposed here.
type Backend interface {
	CreateMessage(ctx context.Context, messages []Message, maxTokens int) (*Result, error)
}
