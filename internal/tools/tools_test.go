package tools

import (
	"context"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
)

// Parameter validation happens before any Bot API call, so a nil service
// is safe for these cases.
func callRequest(args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func TestToolHandlers_MissingParameters(t *testing.T) {
	tests := []struct {
		name    string
		handler func() (*mcp.CallToolResult, error)
	}{
		{
			name: "send_message without chat_id",
			handler: func() (*mcp.CallToolResult, error) {
				return sendMessageHandler(nil)(context.Background(), callRequest(map[string]any{"message": "hi"}))
			},
		},
		{
			name: "send_message without message",
			handler: func() (*mcp.CallToolResult, error) {
				return sendMessageHandler(nil)(context.Background(), callRequest(map[string]any{"chat_id": "-100"}))
			},
		},
		{
			name: "get_channel_info without chat_id",
			handler: func() (*mcp.CallToolResult, error) {
				return channelInfoHandler(nil)(context.Background(), callRequest(nil))
			},
		},
		{
			name: "forward_message without message_id",
			handler: func() (*mcp.CallToolResult, error) {
				return forwardMessageHandler(nil)(context.Background(), callRequest(map[string]any{
					"to_chat_id":   "-100",
					"from_chat_id": "-200",
				}))
			},
		},
		{
			name: "pin_message without message_id",
			handler: func() (*mcp.CallToolResult, error) {
				return pinMessageHandler(nil)(context.Background(), callRequest(map[string]any{"chat_id": "-100"}))
			},
		},
		{
			name: "get_channel_members without chat_id",
			handler: func() (*mcp.CallToolResult, error) {
				return channelMembersHandler(nil)(context.Background(), callRequest(nil))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := tt.handler()
			if err != nil {
				t.Fatalf("handler returned protocol error %v, want tool-level error", err)
			}
			if result == nil || !result.IsError {
				t.Error("result.IsError = false, want a validation error result")
			}
		})
	}
}
