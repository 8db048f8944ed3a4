package sampling

import (
	"strings"

	"github.com/nextlevelbuilder/tgsampler/internal/config"
)

// Admit runs the ordered access checks for a canonical event.
// Every check is a hard veto; the first failing check rejects. Pure.
//
// botHandle is the bot's own username without the leading "@"; an empty
// handle makes the mention gate fail closed.
func Admit(ev *Event, policy *config.SamplingConfig, botHandle string) bool {
	if !policy.ListenerEnabled(string(ev.Kind)) {
		return false
	}
	if ev.UserID == 0 {
		return false
	}

	// Block lists dominate allow lists.
	if policy.UserBlocked(ev.UserID) || policy.ChatBlocked(ev.ChatID, ev.ChatUsername) {
		return false
	}
	if !policy.UserAllowed(ev.UserID) {
		return false
	}
	if !policy.ChatAllowed(ev.ChatID, ev.ChatUsername) {
		return false
	}

	if !ev.IsDM() && policy.IsMentionOnly() {
		// System events respond without a mention.
		if ev.Kind == KindNewMember {
			return true
		}
		if ev.Text != "" {
			return mentioned(ev.Text, ev.Mentions, botHandle)
		}
		if ev.Caption != "" {
			return mentioned(ev.Caption, ev.Mentions, botHandle)
		}
		return false
	}

	if ev.IsDM() && !policy.RespondsToDMs() {
		return false
	}

	return true
}

// mentioned checks for a literal @handle substring or a mention entity
// whose referenced substring equals @handle. Either is sufficient.
func mentioned(text string, mentions []string, botHandle string) bool {
	if botHandle == "" {
		return false
	}
	at := "@" + botHandle
	if strings.Contains(text, at) {
		return true
	}
	for _, m := range mentions {
		if m == at {
			return true
		}
	}
	return false
}
