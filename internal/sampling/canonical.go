package sampling

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mymmrac/telego"
)

// KindOf detects the event kind from the message payload.
// Returns "" for messages that carry none of the recognized payloads
// (service messages like pins and title changes).
func KindOf(msg *telego.Message) Kind {
	switch {
	case msg.Text != "":
		return KindText
	case msg.Photo != nil:
		return KindPhoto
	case msg.Document != nil:
		return KindDocument
	case msg.Voice != nil:
		return KindVoice
	case msg.Video != nil:
		return KindVideo
	case msg.Sticker != nil:
		return KindSticker
	case msg.Location != nil:
		return KindLocation
	case msg.Contact != nil:
		return KindContact
	case msg.Poll != nil:
		return KindPoll
	case len(msg.NewChatMembers) > 0:
		return KindNewMember
	default:
		return ""
	}
}

// FromMessage canonicalizes one Telegram message into an Event.
// Returns ok=false when the message lacks the shape its kind requires
// (no sender, no recognized payload); such messages are dropped silently.
func FromMessage(msg *telego.Message) (*Event, bool) {
	if msg == nil || msg.From == nil {
		return nil, false
	}
	kind := KindOf(msg)
	if kind == "" {
		return nil, false
	}

	ev := &Event{
		Kind:         kind,
		UserID:       msg.From.ID,
		ChatID:       msg.Chat.ID,
		MessageID:    msg.MessageID,
		TopicID:      msg.MessageThreadID,
		ChatUsername: msg.Chat.Username,
		Text:         msg.Text,
		Caption:      msg.Caption,
	}

	// Mention entities come from the text for text messages and from the
	// caption for media messages, matching which of the two carries content.
	if msg.Text != "" {
		ev.Mentions = entityMentions(msg.Text, msg.Entities)
	} else if msg.Caption != "" {
		ev.Mentions = entityMentions(msg.Caption, msg.CaptionEntities)
	}

	switch kind {
	case KindText:
		ev.Content = msg.Text

	case KindPhoto:
		// Highest resolution variant is last in the Bot API ordering.
		photo := msg.Photo[len(msg.Photo)-1]
		ev.Content = captionOr(msg.Caption, "[Photo without caption]")
		ev.Attrs = map[string]string{
			"caption":   msg.Caption,
			"photoInfo": fmt.Sprintf("%dx%d, %d bytes", photo.Width, photo.Height, photo.FileSize),
		}

	case KindDocument:
		doc := msg.Document
		fileName := doc.FileName
		if fileName == "" {
			fileName = "unnamed"
		}
		mimeType := doc.MimeType
		if mimeType == "" {
			mimeType = "unknown"
		}
		ev.Content = captionOr(msg.Caption, "[Document without caption]")
		ev.Attrs = map[string]string{
			"caption":  msg.Caption,
			"fileName": fileName,
			"mimeType": mimeType,
		}

	case KindVoice:
		ev.Content = "[Voice message]"
		ev.Attrs = map[string]string{
			"duration": strconv.Itoa(msg.Voice.Duration),
		}

	case KindVideo:
		ev.Content = captionOr(msg.Caption, "[Video without caption]")
		ev.Attrs = map[string]string{
			"caption":  msg.Caption,
			"duration": strconv.Itoa(msg.Video.Duration),
		}

	case KindSticker:
		emoji := msg.Sticker.Emoji
		if emoji == "" {
			ev.Content = "[Sticker: no emoji]"
		} else {
			ev.Content = "[Sticker: " + emoji + "]"
		}
		ev.Attrs = map[string]string{
			"stickerEmoji":   msg.Sticker.Emoji,
			"stickerSetName": msg.Sticker.SetName,
		}

	case KindLocation:
		lat := formatCoord(msg.Location.Latitude)
		lng := formatCoord(msg.Location.Longitude)
		ev.Content = "[Location: " + lat + ", " + lng + "]"
		ev.Attrs = map[string]string{
			"latitude":  lat,
			"longitude": lng,
		}

	case KindContact:
		name := strings.TrimSpace(msg.Contact.FirstName + " " + msg.Contact.LastName)
		ev.Content = "[Contact: " + name + "]"
		ev.Attrs = map[string]string{
			"contactName": name,
			"phoneNumber": msg.Contact.PhoneNumber,
		}

	case KindPoll:
		options := make([]string, len(msg.Poll.Options))
		for i, opt := range msg.Poll.Options {
			options[i] = opt.Text
		}
		ev.Content = "[Poll: " + msg.Poll.Question + "]"
		ev.Attrs = map[string]string{
			"pollQuestion": msg.Poll.Question,
			"pollOptions":  strings.Join(options, ", "),
		}

	case KindNewMember:
		names := make([]string, len(msg.NewChatMembers))
		for i, u := range msg.NewChatMembers {
			names[i] = memberName(u)
		}
		joined := strings.Join(names, ", ")
		ev.Content = "[New members: " + joined + "]"
		ev.Attrs = map[string]string{
			"newMembers": joined,
		}
	}

	if ev.Attrs == nil {
		ev.Attrs = make(map[string]string, 6)
	}
	ev.Attrs["content"] = ev.Content
	ev.Attrs["userId"] = strconv.FormatInt(ev.UserID, 10)
	ev.Attrs["chatId"] = strconv.FormatInt(ev.ChatID, 10)
	ev.Attrs["isDM"] = strconv.FormatBool(ev.IsDM())
	ev.Attrs["messageId"] = strconv.Itoa(ev.MessageID)
	ev.Attrs["messageType"] = string(kind)
	if ev.TopicID > 0 {
		ev.Attrs["topicId"] = strconv.Itoa(ev.TopicID)
	}

	return ev, true
}

// entityMentions extracts the referenced substrings of mention entities.
// Offsets are clamped: Telegram counts UTF-16 units, so a multi-byte text
// can put an entity range past the Go byte length.
func entityMentions(text string, entities []telego.MessageEntity) []string {
	var mentions []string
	for _, entity := range entities {
		if entity.Type != "mention" {
			continue
		}
		start, end := entity.Offset, entity.Offset+entity.Length
		if start < 0 || end > len(text) || start >= end {
			continue
		}
		mentions = append(mentions, text[start:end])
	}
	return mentions
}

func captionOr(caption, placeholder string) string {
	if caption != "" {
		return caption
	}
	return placeholder
}

// formatCoord renders a coordinate with minimal digits, matching the
// shortest-round-trip formatting the templates expect.
func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func memberName(u telego.User) string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" && u.Username != "" {
		name = "@" + u.Username
	}
	if name == "" {
		name = strconv.FormatInt(u.ID, 10)
	}
	return name
}
