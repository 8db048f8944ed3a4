package config

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// FlexibleStringSlice accepts both ["str"] and [123] in JSON.
// Chat lists mix numeric IDs and @usernames; JSON5 configs tend to
// write the numeric ones unquoted.
type FlexibleStringSlice []string

func (f *FlexibleStringSlice) UnmarshalJSON(data []byte) error {
	var ss []string
	if err := json.Unmarshal(data, &ss); err == nil {
		*f = ss
		return nil
	}
	var raw []interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	result := make([]string, 0, len(raw))
	for _, v := range raw {
		switch val := v.(type) {
		case string:
			result = append(result, val)
		case float64:
			result = append(result, fmt.Sprintf("%.0f", val))
		default:
			result = append(result, fmt.Sprintf("%v", val))
		}
	}
	*f = result
	return nil
}

// Config is the root configuration for the tgsampler bot.
type Config struct {
	Telegram  TelegramConfig  `json:"telegram"`
	Sampling  SamplingConfig  `json:"sampling"`
	Server    ServerConfig    `json:"server,omitempty"`
	Telemetry TelemetryConfig `json:"telemetry,omitempty"`
}

// TelegramConfig configures the Telegram transport.
// Token is NEVER read from the config file (secret) — only from env
// TGSAMPLER_TELEGRAM_TOKEN.
type TelegramConfig struct {
	Token       string `json:"-"`
	Proxy       string `json:"proxy,omitempty"`        // optional HTTP proxy URL for the Bot API
	PollTimeout int    `json:"poll_timeout,omitempty"` // long polling timeout in seconds (default 30)
}

// ServerConfig configures the MCP server identity.
type ServerConfig struct {
	Name    string `json:"name,omitempty"`
	Version string `json:"version,omitempty"`
}

// TelemetryConfig configures OpenTelemetry trace export.
// When enabled, pipeline spans are exported to an OTLP-compatible backend.
type TelemetryConfig struct {
	Enabled     bool              `json:"enabled,omitempty"`
	Endpoint    string            `json:"endpoint,omitempty"`     // OTLP endpoint (e.g. "localhost:4317")
	Protocol    string            `json:"protocol,omitempty"`     // "grpc" (default) or "http"
	Insecure    bool              `json:"insecure,omitempty"`     // skip TLS (local collectors)
	ServiceName string            `json:"service_name,omitempty"` // OTEL service name (default "tgsampler")
	Headers     map[string]string `json:"headers,omitempty"`      // extra headers (auth tokens etc.)
}

// SamplingConfig is the admission-pipeline policy. Loaded once at startup,
// read-only afterwards.
type SamplingConfig struct {
	Enabled *bool `json:"enabled,omitempty"` // master switch (default true)

	// Response triggers
	MentionOnly  *bool `json:"mention_only,omitempty"`   // groups require @botname (default true)
	RespondToDMs *bool `json:"respond_to_dms,omitempty"` // default true

	// Access control. Chat lists accept numeric IDs and @usernames;
	// user lists are numeric IDs only. Non-empty allow lists are
	// restrictive; block lists always win.
	AllowedChats FlexibleStringSlice `json:"allowed_chats,omitempty"`
	BlockedChats FlexibleStringSlice `json:"blocked_chats,omitempty"`
	AllowedUsers []int64             `json:"allowed_users,omitempty"`
	BlockedUsers []int64             `json:"blocked_users,omitempty"`
	AdminUsers   []int64             `json:"admin_users,omitempty"` // declared capability, not enforced by the pipeline

	// Per-kind listener enablement. Text defaults on, everything else off.
	Listeners map[string]bool `json:"listeners,omitempty"`

	// Response behaviour
	MaxTokens  int   `json:"max_tokens,omitempty"`  // sampling token budget (default 1000)
	ShowTyping *bool `json:"show_typing,omitempty"` // default true
	SilentMode bool  `json:"silent_mode,omitempty"` // suppress every outbound reply

	// Rate limiting (fixed 60s windows, independent key spaces)
	RateLimitPerUser int `json:"rate_limit_per_user,omitempty"` // default 10
	RateLimitPerChat int `json:"rate_limit_per_chat,omitempty"` // default 20

	// Text filters
	MinMessageLength int      `json:"min_message_length,omitempty"` // default 1
	MaxMessageLength int      `json:"max_message_length,omitempty"` // default 1000
	KeywordTriggers  []string `json:"keyword_triggers,omitempty"`
	IgnoreCommands   *bool    `json:"ignore_commands,omitempty"` // drop "/..." messages (default true)

	// Template overrides, merged over the built-in registry (key = kind or "fallback").
	Templates map[string]string `json:"templates,omitempty"`
}

// IsEnabled reports the master sampling switch.
func (s *SamplingConfig) IsEnabled() bool {
	return s.Enabled == nil || *s.Enabled
}

// IsMentionOnly reports whether group messages require a bot mention.
func (s *SamplingConfig) IsMentionOnly() bool {
	return s.MentionOnly == nil || *s.MentionOnly
}

// RespondsToDMs reports whether direct messages are answered.
func (s *SamplingConfig) RespondsToDMs() bool {
	return s.RespondToDMs == nil || *s.RespondToDMs
}

// TypingEnabled reports whether the typing indicator is shown.
func (s *SamplingConfig) TypingEnabled() bool {
	return s.ShowTyping == nil || *s.ShowTyping
}

// IgnoresCommands reports whether "/" messages are filtered out.
func (s *SamplingConfig) IgnoresCommands() bool {
	return s.IgnoreCommands == nil || *s.IgnoreCommands
}

// ListenerEnabled reports whether events of the given kind are processed.
// Unknown kinds are disabled.
func (s *SamplingConfig) ListenerEnabled(kind string) bool {
	return s.Listeners[kind]
}

// UserBlocked reports membership in the user block list.
func (s *SamplingConfig) UserBlocked(userID int64) bool {
	return containsInt64(s.BlockedUsers, userID)
}

// UserAllowed applies the user allow list: empty list allows everyone.
func (s *SamplingConfig) UserAllowed(userID int64) bool {
	if len(s.AllowedUsers) == 0 {
		return true
	}
	return containsInt64(s.AllowedUsers, userID)
}

// ChatBlocked reports membership in the chat block list.
func (s *SamplingConfig) ChatBlocked(chatID int64, chatUsername string) bool {
	return chatInList(s.BlockedChats, chatID, chatUsername)
}

// ChatAllowed applies the chat allow list: empty list allows every chat.
func (s *SamplingConfig) ChatAllowed(chatID int64, chatUsername string) bool {
	if len(s.AllowedChats) == 0 {
		return true
	}
	return chatInList(s.AllowedChats, chatID, chatUsername)
}

// chatInList matches a chat against a mixed ID/username list.
// A numeric entry matches only the chat ID; a string entry matches the
// chat username with a leading "@" stripped from both sides. A chat with
// no username never matches a string entry.
func chatInList(list []string, chatID int64, chatUsername string) bool {
	for _, entry := range list {
		if id, err := strconv.ParseInt(entry, 10, 64); err == nil {
			if id == chatID {
				return true
			}
			continue
		}
		if chatUsername == "" {
			continue
		}
		if trimAt(entry) == trimAt(chatUsername) {
			return true
		}
	}
	return false
}

func trimAt(s string) string {
	if len(s) > 0 && s[0] == '@' {
		return s[1:]
	}
	return s
}

func containsInt64(list []int64, v int64) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
