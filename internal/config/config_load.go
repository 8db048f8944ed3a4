package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/titanous/json5"
)

// Default returns a Config with sensible defaults, matching the bot's
// documented environment defaults: text listener on, everything else off,
// mention-only groups, open DMs.
func Default() *Config {
	return &Config{
		Telegram: TelegramConfig{
			PollTimeout: 30,
		},
		Sampling: SamplingConfig{
			Listeners: map[string]bool{
				"text":       true,
				"photo":      false,
				"document":   false,
				"voice":      false,
				"video":      false,
				"sticker":    false,
				"location":   false,
				"contact":    false,
				"poll":       false,
				"new_member": false,
			},
			MaxTokens:        1000,
			RateLimitPerUser: 10,
			RateLimitPerChat: 20,
			MinMessageLength: 1,
			MaxMessageLength: 1000,
		},
		Server: ServerConfig{
			Name:    "Telegram MCP Server",
			Version: "0.1.0",
		},
	}
}

// Load reads config from a JSON5 file, then overlays env vars.
// A missing file is not an error: defaults plus env apply.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := json5.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// applyEnvOverrides overlays env vars onto the config.
// Env vars take precedence over file values.
func (c *Config) applyEnvOverrides() {
	envStr := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	envBool := func(key string, dst *bool) {
		if v := os.Getenv(key); v != "" {
			b := v == "true" || v == "1"
			*dst = b
		}
	}
	envBoolPtr := func(key string, dst **bool) {
		if v := os.Getenv(key); v != "" {
			b := v == "true" || v == "1"
			*dst = &b
		}
	}
	envInt := func(key string, dst *int) {
		if v := os.Getenv(key); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}

	envStr("TGSAMPLER_TELEGRAM_TOKEN", &c.Telegram.Token)
	envStr("TGSAMPLER_PROXY", &c.Telegram.Proxy)

	envBoolPtr("TGSAMPLER_SAMPLING_ENABLED", &c.Sampling.Enabled)
	envBoolPtr("TGSAMPLER_MENTION_ONLY", &c.Sampling.MentionOnly)
	envBoolPtr("TGSAMPLER_RESPOND_TO_DMS", &c.Sampling.RespondToDMs)
	envBoolPtr("TGSAMPLER_SHOW_TYPING", &c.Sampling.ShowTyping)
	envBoolPtr("TGSAMPLER_IGNORE_COMMANDS", &c.Sampling.IgnoreCommands)
	envBool("TGSAMPLER_SILENT_MODE", &c.Sampling.SilentMode)

	envInt("TGSAMPLER_MAX_TOKENS", &c.Sampling.MaxTokens)
	envInt("TGSAMPLER_RATE_LIMIT_USER", &c.Sampling.RateLimitPerUser)
	envInt("TGSAMPLER_RATE_LIMIT_CHAT", &c.Sampling.RateLimitPerChat)
	envInt("TGSAMPLER_MIN_MESSAGE_LENGTH", &c.Sampling.MinMessageLength)
	envInt("TGSAMPLER_MAX_MESSAGE_LENGTH", &c.Sampling.MaxMessageLength)

	if v := os.Getenv("TGSAMPLER_ALLOWED_CHATS"); v != "" {
		c.Sampling.AllowedChats = splitList(v)
	}
	if v := os.Getenv("TGSAMPLER_BLOCKED_CHATS"); v != "" {
		c.Sampling.BlockedChats = splitList(v)
	}
	if v := os.Getenv("TGSAMPLER_ALLOWED_USERS"); v != "" {
		c.Sampling.AllowedUsers = splitIDList(v)
	}
	if v := os.Getenv("TGSAMPLER_BLOCKED_USERS"); v != "" {
		c.Sampling.BlockedUsers = splitIDList(v)
	}
	if v := os.Getenv("TGSAMPLER_ADMIN_USERS"); v != "" {
		c.Sampling.AdminUsers = splitIDList(v)
	}
	if v := os.Getenv("TGSAMPLER_KEYWORD_TRIGGERS"); v != "" {
		c.Sampling.KeywordTriggers = splitList(v)
	}

	// Per-kind listener toggles: TGSAMPLER_ENABLE_PHOTO=true etc.
	for kind := range c.Sampling.Listeners {
		key := "TGSAMPLER_ENABLE_" + strings.ToUpper(kind)
		if v := os.Getenv(key); v != "" {
			c.Sampling.Listeners[kind] = v == "true" || v == "1"
		}
	}

	// Telemetry
	envStr("TGSAMPLER_TELEMETRY_ENDPOINT", &c.Telemetry.Endpoint)
	envStr("TGSAMPLER_TELEMETRY_PROTOCOL", &c.Telemetry.Protocol)
	envStr("TGSAMPLER_TELEMETRY_SERVICE_NAME", &c.Telemetry.ServiceName)
	envBool("TGSAMPLER_TELEMETRY_ENABLED", &c.Telemetry.Enabled)
	envBool("TGSAMPLER_TELEMETRY_INSECURE", &c.Telemetry.Insecure)
}

// splitList parses a comma-separated list, trimming blanks.
func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// splitIDList parses a comma-separated list of numeric IDs, dropping
// anything that does not parse.
func splitIDList(v string) []int64 {
	parts := strings.Split(v, ",")
	out := make([]int64, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err == nil {
			out = append(out, id)
		}
	}
	return out
}

const secretMask = "***"

// MaskedCopy returns a deep copy of the config with secret fields masked.
// Used by the doctor command so token values never reach the terminal.
func (c *Config) MaskedCopy() *Config {
	data, err := json.Marshal(c)
	if err != nil {
		return &Config{}
	}
	cp := Default()
	if err := json.Unmarshal(data, cp); err != nil {
		return &Config{}
	}
	if c.Telegram.Token != "" {
		cp.Telegram.Token = secretMask
	}
	return cp
}
