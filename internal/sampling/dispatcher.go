package sampling

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/nextlevelbuilder/tgsampler/internal/backend"
	"github.com/nextlevelbuilder/tgsampler/internal/config"
)

// State is the terminal outcome of dispatching one event.
type State string

const (
	// StateReplied means a message was sent back to the chat, including
	// the empty-response apology.
	StateReplied State = "replied"

	// StateSuppressed means the event was dropped with no outbound
	// traffic of any kind.
	StateSuppressed State = "suppressed"

	// StateFailed means the backend or transport failed with outbound
	// traffic in play; under silent mode failures terminate as
	// StateSuppressed instead.
	StateFailed State = "failed"
)

// Apology texts sent in place of a real response. Sent as plain chat
// messages, never as errors to the user.
const (
	apologyEmpty     = "I'm sorry, I couldn't generate a response."
	apologyError     = "Sorry, I encountered an error while processing your request. Please try again."
	apologyNoSession = "Sorry, the AI service is not available right now."
)

// Sender delivers outbound chat traffic for the dispatcher.
type Sender interface {
	// SendReply sends text to a chat. topicID routes to a forum topic
	// when >0; replyTo threads onto a message when >0.
	SendReply(ctx context.Context, chatID int64, text string, topicID, replyTo int) error

	// SendTyping shows a typing indicator in the chat. Best effort.
	SendTyping(ctx context.Context, chatID int64, topicID int) error
}

// Dispatcher runs one canonical event through the admission pipeline and,
// when admitted, through the backend and back out to the chat.
//
// Stage order is fixed: access checks, content validation (text only),
// rate limiting, template rendering, backend call, reply. Any stage may
// short-circuit to StateSuppressed without side effects visible to the
// chat.
type Dispatcher struct {
	policy    *config.SamplingConfig
	templates *Registry
	limiter   *Limiter
	backend   backend.Backend
	sender    Sender
	identity  *IdentityResolver
	tracer    trace.Tracer
}

// NewDispatcher wires a Dispatcher. All collaborators are required.
func NewDispatcher(policy *config.SamplingConfig, templates *Registry, limiter *Limiter, be backend.Backend, sender Sender, identity *IdentityResolver) *Dispatcher {
	return &Dispatcher{
		policy:    policy,
		templates: templates,
		limiter:   limiter,
		backend:   be,
		sender:    sender,
		identity:  identity,
		tracer:    otel.Tracer("tgsampler/dispatch"),
	}
}

// Dispatch processes one event to a terminal state. The returned error is
// non-nil only for StateFailed and carries the underlying cause; callers
// log it, nothing is surfaced to the chat beyond the apology.
func (d *Dispatcher) Dispatch(ctx context.Context, ev *Event) (State, error) {
	eventID := uuid.NewString()
	log := slog.With("event_id", eventID, "kind", ev.Kind, "chat_id", ev.ChatID, "user_id", ev.UserID)

	ctx, span := d.tracer.Start(ctx, "dispatch",
		trace.WithAttributes(
			attribute.String("event.id", eventID),
			attribute.String("event.kind", string(ev.Kind)),
			attribute.Int64("event.chat_id", ev.ChatID),
		))
	var state State
	defer func() {
		span.SetAttributes(attribute.String("event.state", string(state)))
		span.End()
	}()

	botHandle, err := d.identity.Handle(ctx)
	if err != nil {
		// An unknown identity only weakens the mention gate, which fails
		// closed on an empty handle.
		log.Warn("bot identity unresolved", "error", err)
		botHandle = ""
	}

	if !Admit(ev, d.policy, botHandle) {
		log.Debug("event rejected by access checks")
		state = StateSuppressed
		return state, nil
	}

	if ev.Kind == KindText && !ValidateText(ev.Content, d.policy) {
		log.Debug("event rejected by content filter")
		state = StateSuppressed
		return state, nil
	}

	if !d.limiter.Allow(ev.UserID, ev.ChatID) {
		log.Debug("event rejected by rate limiter")
		state = StateSuppressed
		return state, nil
	}

	prompt := Render(d.templates.Lookup(ev.Kind), ev.Attrs)

	if d.policy.TypingEnabled() {
		if err := d.sender.SendTyping(ctx, ev.ChatID, ev.TopicID); err != nil {
			log.Debug("typing indicator failed", "error", err)
		}
	}

	result, err := d.backend.CreateMessage(ctx, []backend.Message{{Role: "user", Text: prompt}}, d.policy.MaxTokens)
	if err != nil {
		log.Error("backend request failed", "error", err)
		// Silent mode swallows the failure entirely, apology included.
		if d.policy.SilentMode {
			state = StateSuppressed
			return state, nil
		}
		state = StateFailed
		apology := apologyError
		if errors.Is(err, backend.ErrNoSession) {
			apology = apologyNoSession
		}
		if sendErr := d.sender.SendReply(ctx, ev.ChatID, apology, ev.TopicID, d.replyTarget(ev)); sendErr != nil {
			log.Error("apology delivery failed", "error", sendErr)
		}
		return state, err
	}

	text := result.Text
	if !result.IsText || text == "" {
		// Counted as a reply: the backend answered, just not usably.
		text = apologyEmpty
	} else {
		log.Info("response generated", "model", result.Model, "chars", len(text))
	}

	if d.policy.SilentMode {
		log.Debug("silent mode suppressed outbound reply")
		state = StateSuppressed
		return state, nil
	}

	if err := d.sender.SendReply(ctx, ev.ChatID, text, ev.TopicID, d.replyTarget(ev)); err != nil {
		state = StateFailed
		return state, fmt.Errorf("send reply: %w", err)
	}

	state = StateReplied
	return state, nil
}

// replyTarget picks the message to thread the reply onto. Join events
// have no message worth threading to, so they get a plain send.
func (d *Dispatcher) replyTarget(ev *Event) int {
	if ev.Kind == KindNewMember {
		return 0
	}
	return ev.MessageID
}
