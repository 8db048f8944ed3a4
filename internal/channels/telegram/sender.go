package telegram

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"
	"golang.org/x/time/rate"
)

// typingInterval matches Telegram's typing indicator lifetime: the
// indicator shows for about five seconds, so refreshing faster is wasted
// API traffic.
const typingInterval = 4 * time.Second

// typingThrottle rate limits typing actions per chat.
type typingThrottle struct {
	mu    sync.Mutex
	chats map[int64]*rate.Limiter
}

func newTypingThrottle() *typingThrottle {
	return &typingThrottle{chats: make(map[int64]*rate.Limiter)}
}

func (t *typingThrottle) allow(chatID int64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	lim, ok := t.chats[chatID]
	if !ok {
		lim = rate.NewLimiter(rate.Every(typingInterval), 1)
		t.chats[chatID] = lim
	}
	return lim.Allow()
}

// SendReply sends text to a chat, threading onto replyTo when non-zero
// and routing into a forum topic when topicID is a real topic.
func (c *Channel) SendReply(ctx context.Context, chatID int64, text string, topicID, replyTo int) error {
	params := tu.Message(tu.ID(chatID), text)
	if threadID := resolveThreadIDForSend(topicID); threadID > 0 {
		params.MessageThreadID = threadID
	}
	if replyTo > 0 {
		params.ReplyParameters = &telego.ReplyParameters{MessageID: replyTo}
	}

	if _, err := c.bot.SendMessage(ctx, params); err != nil {
		return fmt.Errorf("send message to chat %d: %w", chatID, err)
	}
	return nil
}

// SendTyping shows the typing indicator in a chat. Calls are throttled
// per chat; a throttled call is a silent no-op.
func (c *Channel) SendTyping(ctx context.Context, chatID int64, topicID int) error {
	if !c.typing.allow(chatID) {
		return nil
	}

	params := tu.ChatAction(tu.ID(chatID), telego.ChatActionTyping)
	if threadID := resolveThreadIDForSend(topicID); threadID > 0 {
		params.MessageThreadID = threadID
	}

	if err := c.bot.SendChatAction(ctx, params); err != nil {
		return fmt.Errorf("send chat action to chat %d: %w", chatID, err)
	}
	return nil
}
