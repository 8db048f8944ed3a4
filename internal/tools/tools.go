// Package tools registers the Telegram admin tools on the MCP server.
package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/nextlevelbuilder/tgsampler/internal/channels/telegram"
)

// Register adds the Telegram tools to the MCP server, all backed by the
// given service.
func Register(srv *server.MCPServer, svc *telegram.Service) {
	srv.AddTool(sendMessageTool(), sendMessageHandler(svc))
	srv.AddTool(channelInfoTool(), channelInfoHandler(svc))
	srv.AddTool(forwardMessageTool(), forwardMessageHandler(svc))
	srv.AddTool(pinMessageTool(), pinMessageHandler(svc))
	srv.AddTool(channelMembersTool(), channelMembersHandler(svc))
}

func sendMessageTool() mcp.Tool {
	return mcp.NewTool("send_message",
		mcp.WithDescription("Send a text message to a Telegram chat"),
		mcp.WithString("chat_id",
			mcp.Required(),
			mcp.Description("Target chat: numeric chat ID or @username"),
		),
		mcp.WithString("message",
			mcp.Required(),
			mcp.Description("Message text to send"),
		),
	)
}

func sendMessageHandler(svc *telegram.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		chatRef, err := req.RequireString("chat_id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		message, err := req.RequireString("message")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		info, err := svc.SendMessage(ctx, chatRef, message)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(info)
	}
}

func channelInfoTool() mcp.Tool {
	return mcp.NewTool("get_channel_info",
		mcp.WithDescription("Get metadata about a Telegram chat, including member count for groups"),
		mcp.WithString("chat_id",
			mcp.Required(),
			mcp.Description("Target chat: numeric chat ID or @username"),
		),
	)
}

func channelInfoHandler(svc *telegram.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		chatRef, err := req.RequireString("chat_id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		info, err := svc.GetChatInfo(ctx, chatRef)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(info)
	}
}

func forwardMessageTool() mcp.Tool {
	return mcp.NewTool("forward_message",
		mcp.WithDescription("Forward a message from one Telegram chat to another"),
		mcp.WithString("to_chat_id",
			mcp.Required(),
			mcp.Description("Destination chat: numeric chat ID or @username"),
		),
		mcp.WithString("from_chat_id",
			mcp.Required(),
			mcp.Description("Source chat: numeric chat ID or @username"),
		),
		mcp.WithNumber("message_id",
			mcp.Required(),
			mcp.Description("ID of the message to forward"),
		),
	)
}

func forwardMessageHandler(svc *telegram.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		toChat, err := req.RequireString("to_chat_id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		fromChat, err := req.RequireString("from_chat_id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		messageID := req.GetInt("message_id", 0)
		if messageID == 0 {
			return mcp.NewToolResultError("message_id is required"), nil
		}

		info, err := svc.ForwardMessage(ctx, toChat, fromChat, messageID)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(info)
	}
}

func pinMessageTool() mcp.Tool {
	return mcp.NewTool("pin_message",
		mcp.WithDescription("Pin a message in a Telegram chat"),
		mcp.WithString("chat_id",
			mcp.Required(),
			mcp.Description("Target chat: numeric chat ID or @username"),
		),
		mcp.WithNumber("message_id",
			mcp.Required(),
			mcp.Description("ID of the message to pin"),
		),
		mcp.WithBoolean("disable_notification",
			mcp.Description("Pin silently without notifying chat members"),
		),
	)
}

func pinMessageHandler(svc *telegram.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		chatRef, err := req.RequireString("chat_id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		messageID := req.GetInt("message_id", 0)
		if messageID == 0 {
			return mcp.NewToolResultError("message_id is required"), nil
		}
		silent := req.GetBool("disable_notification", false)

		if err := svc.PinMessage(ctx, chatRef, messageID, silent); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Message %d pinned", messageID)), nil
	}
}

func channelMembersTool() mcp.Tool {
	return mcp.NewTool("get_channel_members",
		mcp.WithDescription("List the administrators of a Telegram group or channel"),
		mcp.WithString("chat_id",
			mcp.Required(),
			mcp.Description("Target chat: numeric chat ID or @username"),
		),
	)
}

func channelMembersHandler(svc *telegram.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		chatRef, err := req.RequireString("chat_id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		members, err := svc.GetChatAdministrators(ctx, chatRef)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(members)
	}
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
