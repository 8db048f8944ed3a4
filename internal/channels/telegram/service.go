package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"
)

// Service exposes the Bot API operations behind the admin tools. It
// shares the channel's bot client, so tools work whether or not the
// event pipeline is running.
type Service struct {
	bot *telego.Bot
}

// NewService creates a Service on the channel's bot client.
func (c *Channel) NewService() *Service {
	return &Service{bot: c.bot}
}

// MessageInfo describes a message acted on by an admin tool.
type MessageInfo struct {
	MessageID int   `json:"message_id"`
	ChatID    int64 `json:"chat_id"`
	Date      int64 `json:"date"`
}

// ChatInfo describes a chat for the info tool.
type ChatInfo struct {
	ID          int64  `json:"id"`
	Type        string `json:"type"`
	Title       string `json:"title,omitempty"`
	Username    string `json:"username,omitempty"`
	Description string `json:"description,omitempty"`
	MemberCount int    `json:"member_count,omitempty"`
}

// MemberInfo describes one chat administrator.
type MemberInfo struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username,omitempty"`
	Name     string `json:"name"`
	Status   string `json:"status"`
	IsBot    bool   `json:"is_bot"`
}

// resolveChatID accepts a numeric chat ID or a @username reference.
func resolveChatID(ref string) telego.ChatID {
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		return tu.ID(id)
	}
	if !strings.HasPrefix(ref, "@") {
		ref = "@" + ref
	}
	return tu.Username(ref)
}

// SendMessage sends a plain text message to a chat.
func (s *Service) SendMessage(ctx context.Context, chatRef, text string) (*MessageInfo, error) {
	msg, err := s.bot.SendMessage(ctx, &telego.SendMessageParams{
		ChatID: resolveChatID(chatRef),
		Text:   text,
	})
	if err != nil {
		return nil, fmt.Errorf("send message to %s: %w", chatRef, err)
	}
	return &MessageInfo{
		MessageID: msg.MessageID,
		ChatID:    msg.Chat.ID,
		Date:      msg.Date,
	}, nil
}

// ForwardMessage forwards an existing message between chats.
func (s *Service) ForwardMessage(ctx context.Context, toChatRef, fromChatRef string, messageID int) (*MessageInfo, error) {
	msg, err := s.bot.ForwardMessage(ctx, &telego.ForwardMessageParams{
		ChatID:     resolveChatID(toChatRef),
		FromChatID: resolveChatID(fromChatRef),
		MessageID:  messageID,
	})
	if err != nil {
		return nil, fmt.Errorf("forward message %d from %s to %s: %w", messageID, fromChatRef, toChatRef, err)
	}
	return &MessageInfo{
		MessageID: msg.MessageID,
		ChatID:    msg.Chat.ID,
		Date:      msg.Date,
	}, nil
}

// PinMessage pins a message in a chat.
func (s *Service) PinMessage(ctx context.Context, chatRef string, messageID int, disableNotification bool) error {
	err := s.bot.PinChatMessage(ctx, &telego.PinChatMessageParams{
		ChatID:              resolveChatID(chatRef),
		MessageID:           messageID,
		DisableNotification: disableNotification,
	})
	if err != nil {
		return fmt.Errorf("pin message %d in %s: %w", messageID, chatRef, err)
	}
	return nil
}

// GetChatInfo fetches chat metadata plus the member count for groups.
func (s *Service) GetChatInfo(ctx context.Context, chatRef string) (*ChatInfo, error) {
	chat, err := s.bot.GetChat(ctx, &telego.GetChatParams{ChatID: resolveChatID(chatRef)})
	if err != nil {
		return nil, fmt.Errorf("get chat %s: %w", chatRef, err)
	}

	info := &ChatInfo{
		ID:          chat.ID,
		Type:        chat.Type,
		Title:       chat.Title,
		Username:    chat.Username,
		Description: chat.Description,
	}

	if chat.Type != telego.ChatTypePrivate {
		count, err := s.bot.GetChatMemberCount(ctx, &telego.GetChatMemberCountParams{ChatID: tu.ID(chat.ID)})
		if err == nil && count != nil {
			info.MemberCount = *count
		}
	}

	return info, nil
}

// GetChatAdministrators lists the administrators of a group chat.
func (s *Service) GetChatAdministrators(ctx context.Context, chatRef string) ([]MemberInfo, error) {
	admins, err := s.bot.GetChatAdministrators(ctx, &telego.GetChatAdministratorsParams{ChatID: resolveChatID(chatRef)})
	if err != nil {
		return nil, fmt.Errorf("get administrators of %s: %w", chatRef, err)
	}

	members := make([]MemberInfo, 0, len(admins))
	for _, admin := range admins {
		user := admin.MemberUser()
		name := strings.TrimSpace(user.FirstName + " " + user.LastName)
		members = append(members, MemberInfo{
			UserID:   user.ID,
			Username: user.Username,
			Name:     name,
			Status:   admin.MemberStatus(),
			IsBot:    user.IsBot,
		})
	}
	return members, nil
}
