package sampling

import "regexp"

// fallbackKey selects the template used for kinds without a dedicated one.
const fallbackKey = "fallback"

// defaultTemplates are the built-in prompt templates, one per kind plus
// the fallback. Placeholders use {name} syntax over the event attributes.
var defaultTemplates = map[string]string{
	"text": `NEW TELEGRAM MESSAGE FROM:
user_id: {userId}
chat_id: {chatId}
isDM: {isDM}
message_id: {messageId}
message_type: text
content: {content}`,

	"photo": `NEW PHOTO MESSAGE FROM:
user_id: {userId}
chat_id: {chatId}
isDM: {isDM}
message_id: {messageId}
message_type: photo
caption: {caption}
photo_info: {photoInfo}`,

	"document": `NEW DOCUMENT MESSAGE FROM:
user_id: {userId}
chat_id: {chatId}
isDM: {isDM}
message_id: {messageId}
message_type: document
filename: {fileName}
mime_type: {mimeType}
caption: {caption}`,

	"voice": `NEW VOICE MESSAGE FROM:
user_id: {userId}
chat_id: {chatId}
isDM: {isDM}
message_id: {messageId}
message_type: voice
duration: {duration}s`,

	"video": `NEW VIDEO MESSAGE FROM:
user_id: {userId}
chat_id: {chatId}
isDM: {isDM}
message_id: {messageId}
message_type: video
caption: {caption}
duration: {duration}s`,

	"sticker": `NEW STICKER MESSAGE FROM:
user_id: {userId}
chat_id: {chatId}
isDM: {isDM}
message_id: {messageId}
message_type: sticker
emoji: {stickerEmoji}
set_name: {stickerSetName}`,

	"location": `NEW LOCATION MESSAGE FROM:
user_id: {userId}
chat_id: {chatId}
isDM: {isDM}
message_id: {messageId}
message_type: location
latitude: {latitude}
longitude: {longitude}`,

	"contact": `NEW CONTACT MESSAGE FROM:
user_id: {userId}
chat_id: {chatId}
isDM: {isDM}
message_id: {messageId}
message_type: contact
contact_name: {contactName}
phone_number: {phoneNumber}`,

	"poll": `NEW POLL MESSAGE FROM:
user_id: {userId}
chat_id: {chatId}
isDM: {isDM}
message_id: {messageId}
message_type: poll
question: {pollQuestion}
options: {pollOptions}`,

	fallbackKey: `NEW MESSAGE FROM:
user_id: {userId}
chat_id: {chatId}
isDM: {isDM}
message_id: {messageId}
message_type: {messageType}
content: {content}`,
}

var placeholderPattern = regexp.MustCompile(`\{(\w+)\}`)

// Registry maps message kinds to prompt templates. Immutable after
// construction.
type Registry struct {
	templates map[string]string
}

// NewRegistry builds a Registry from the built-in templates with the
// given overrides merged on top (key = kind name or "fallback").
func NewRegistry(overrides map[string]string) *Registry {
	templates := make(map[string]string, len(defaultTemplates))
	for k, v := range defaultTemplates {
		templates[k] = v
	}
	for k, v := range overrides {
		templates[k] = v
	}
	return &Registry{templates: templates}
}

// Lookup returns the template for a kind, or the fallback template when
// the kind has no dedicated one.
func (r *Registry) Lookup(kind Kind) string {
	if t, ok := r.templates[string(kind)]; ok {
		return t
	}
	return r.templates[fallbackKey]
}

// Render substitutes every {name} placeholder with the matching
// attribute. Placeholders with no matching attribute are left verbatim.
func Render(template string, attrs map[string]string) string {
	return placeholderPattern.ReplaceAllStringFunc(template, func(match string) string {
		key := match[1 : len(match)-1]
		if v, ok := attrs[key]; ok {
			return v
		}
		return match
	})
}
