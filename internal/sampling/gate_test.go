package sampling

import (
	"testing"

	"github.com/nextlevelbuilder/tgsampler/internal/config"
)

func boolPtr(b bool) *bool { return &b }

// openPolicy returns a policy with the text listener on and every other
// restriction relaxed.
func openPolicy() *config.SamplingConfig {
	return &config.SamplingConfig{
		Listeners:   map[string]bool{"text": true, "new_member": true},
		MentionOnly: boolPtr(false),
	}
}

func textEvent(userID, chatID int64) *Event {
	return &Event{
		Kind:    KindText,
		UserID:  userID,
		ChatID:  chatID,
		Text:    "hello",
		Content: "hello",
	}
}

func TestAdmit_ListenerGate(t *testing.T) {
	policy := openPolicy()
	ev := textEvent(1, -100)
	ev.Kind = KindPhoto

	if Admit(ev, policy, "mybot") {
		t.Error("Admit() = true for a disabled listener kind")
	}
}

func TestAdmit_AnonymousSenderRejected(t *testing.T) {
	policy := openPolicy()
	if Admit(textEvent(0, -100), policy, "mybot") {
		t.Error("Admit() = true for userID 0")
	}
}

func TestAdmit_BlockDominatesAllow(t *testing.T) {
	policy := openPolicy()
	policy.AllowedUsers = []int64{42}
	policy.BlockedUsers = []int64{42}

	if Admit(textEvent(42, -100), policy, "mybot") {
		t.Error("Admit() = true for a user on both lists, block must win")
	}
}

func TestAdmit_UserAllowList(t *testing.T) {
	tests := []struct {
		name    string
		allowed []int64
		userID  int64
		want    bool
	}{
		{name: "empty list allows anyone", allowed: nil, userID: 5, want: true},
		{name: "listed user admitted", allowed: []int64{5}, userID: 5, want: true},
		{name: "unlisted user rejected", allowed: []int64{5}, userID: 6, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			policy := openPolicy()
			policy.AllowedUsers = tt.allowed
			if got := Admit(textEvent(tt.userID, -100), policy, "mybot"); got != tt.want {
				t.Errorf("Admit() = %t, want %t", got, tt.want)
			}
		})
	}
}

func TestAdmit_ChatLists(t *testing.T) {
	tests := []struct {
		name         string
		allowed      []string
		blocked      []string
		chatID       int64
		chatUsername string
		want         bool
	}{
		{
			name:    "numeric entry matches chat ID",
			allowed: []string{"-100"},
			chatID:  -100,
			want:    true,
		},
		{
			name:    "numeric entry never matches by username",
			allowed: []string{"123"},
			chatID:  -100, chatUsername: "123",
			want: false,
		},
		{
			name:    "username entry matches with @ stripped",
			allowed: []string{"@devs"},
			chatID:  -100, chatUsername: "devs",
			want: true,
		},
		{
			name:    "chat without username never matches string entry",
			allowed: []string{"devs"},
			chatID:  -100,
			want:    false,
		},
		{
			name:    "blocked chat rejected",
			blocked: []string{"-100"},
			chatID:  -100,
			want:    false,
		},
		{
			name:    "blocked by username",
			blocked: []string{"@devs"},
			chatID:  -100, chatUsername: "devs",
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			policy := openPolicy()
			policy.AllowedChats = tt.allowed
			policy.BlockedChats = tt.blocked
			ev := textEvent(1, tt.chatID)
			ev.ChatUsername = tt.chatUsername
			if got := Admit(ev, policy, "mybot"); got != tt.want {
				t.Errorf("Admit() = %t, want %t", got, tt.want)
			}
		})
	}
}

func TestAdmit_MentionOnly(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		caption  string
		mentions []string
		kind     Kind
		handle   string
		want     bool
	}{
		{
			name:   "group text with literal mention",
			text:   "hey @mybot help",
			kind:   KindText,
			handle: "mybot",
			want:   true,
		},
		{
			name:   "group text without mention",
			text:   "hey everyone",
			kind:   KindText,
			handle: "mybot",
			want:   false,
		},
		{
			name:     "entity mention matches exactly",
			text:     "hey bot",
			mentions: []string{"@mybot"},
			kind:     KindText,
			handle:   "mybot",
			want:     true,
		},
		{
			name:     "entity mention of another bot",
			text:     "hey bot",
			mentions: []string{"@otherbot"},
			kind:     KindText,
			handle:   "mybot",
			want:     false,
		},
		{
			name:    "caption carries the mention",
			caption: "look @mybot",
			kind:    KindPhoto,
			handle:  "mybot",
			want:    true,
		},
		{
			name:   "no text and no caption fails",
			kind:   KindSticker,
			handle: "mybot",
			want:   false,
		},
		{
			name:   "new member exempt from mention gate",
			kind:   KindNewMember,
			handle: "mybot",
			want:   true,
		},
		{
			name:   "empty handle fails closed",
			text:   "hey @mybot",
			kind:   KindText,
			handle: "",
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			policy := openPolicy()
			policy.MentionOnly = boolPtr(true)
			policy.Listeners[string(tt.kind)] = true

			ev := &Event{
				Kind:     tt.kind,
				UserID:   1,
				ChatID:   -100, // group: chatID != userID
				Text:     tt.text,
				Caption:  tt.caption,
				Mentions: tt.mentions,
			}
			if got := Admit(ev, policy, tt.handle); got != tt.want {
				t.Errorf("Admit() = %t, want %t", got, tt.want)
			}
		})
	}
}

func TestAdmit_DMsBypassMentionGate(t *testing.T) {
	policy := openPolicy()
	policy.MentionOnly = boolPtr(true)

	if !Admit(textEvent(7, 7), policy, "mybot") {
		t.Error("Admit() = false for a DM without mention, DMs bypass the mention gate")
	}
}

func TestAdmit_DMPolicy(t *testing.T) {
	policy := openPolicy()
	policy.RespondToDMs = boolPtr(false)

	if Admit(textEvent(7, 7), policy, "mybot") {
		t.Error("Admit() = true for a DM with respond_to_dms disabled")
	}
	if !Admit(textEvent(7, -100), policy, "mybot") {
		t.Error("Admit() = false for a group message, DM policy must not apply")
	}
}
