package sampling

import (
	"strings"
	"unicode/utf8"

	"github.com/nextlevelbuilder/tgsampler/internal/config"
)

// ValidateText applies the content filter to a text event's content.
// Length bounds are measured in characters, not bytes. Pure.
func ValidateText(content string, policy *config.SamplingConfig) bool {
	length := utf8.RuneCountInString(content)
	if length < policy.MinMessageLength || length > policy.MaxMessageLength {
		return false
	}

	if policy.IgnoresCommands() && strings.HasPrefix(content, "/") {
		return false
	}

	if len(policy.KeywordTriggers) > 0 {
		lower := strings.ToLower(content)
		for _, keyword := range policy.KeywordTriggers {
			if strings.Contains(lower, strings.ToLower(keyword)) {
				return true
			}
		}
		return false
	}

	return true
}
