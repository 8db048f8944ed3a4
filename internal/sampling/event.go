// Package sampling implements the message admission and dispatch pipeline:
// canonicalization of Telegram events, access gating, content filtering,
// dual-key rate limiting, prompt templating, and dispatch to the sampling
// backend.
package sampling

// Kind discriminates the canonical event variants.
type Kind string

const (
	KindText      Kind = "text"
	KindPhoto     Kind = "photo"
	KindDocument  Kind = "document"
	KindVoice     Kind = "voice"
	KindVideo     Kind = "video"
	KindSticker   Kind = "sticker"
	KindLocation  Kind = "location"
	KindContact   Kind = "contact"
	KindPoll      Kind = "poll"
	KindNewMember Kind = "new_member"
)

// Event is the canonical record produced from one inbound transport event.
// It is created once per message, never mutated, and discarded after
// dispatch completes or the pipeline rejects it.
type Event struct {
	Kind      Kind
	UserID    int64
	ChatID    int64
	MessageID int

	// TopicID identifies the forum topic the message arrived in (0 = none).
	TopicID int

	// ChatUsername is the chat's public handle, used for allow/block list
	// matching. Empty for chats without a username.
	ChatUsername string

	// Text and Caption carry the raw message text for mention detection.
	// Mentions holds the substrings referenced by mention entities of
	// whichever of the two is populated.
	Text     string
	Caption  string
	Mentions []string

	// Content is the human-readable summary, never empty.
	Content string

	// Attrs are the stringified template attributes for this kind.
	Attrs map[string]string
}

// IsDM reports whether the event came from a one-to-one conversation.
// Telegram private chats use the user's ID as the chat ID.
func (e *Event) IsDM() bool {
	return e.ChatID == e.UserID
}
