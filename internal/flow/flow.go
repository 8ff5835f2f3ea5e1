package flow

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// WelcomeText is the synthetic assistant greeting that opens every fresh
// session.
const WelcomeText = "Hi, I'm Eva. How can I help you today?"

// HistoryPageSize is the number of messages requested on a history load.
const HistoryPageSize = 50

// SendResult is the gateway's answer to a send: the server-issued ids and
// the assistant's reply text.
type SendResult struct {
	MessageID      string
	ConversationID string
	Reply          string
	Timestamp      time.Time
}

// HistoryEntry is one stored message as the gateway returns it.
type HistoryEntry struct {
	MessageID string
	Content   string
	Role      string
	Timestamp time.Time
}

// Gateway is the chat backend as the flow sees it. Every dispatch performs
// exactly one gateway call.
type Gateway interface {
	SendMessage(ctx context.Context, text, conversationID string) (SendResult, error)
	CreateConversation(ctx context.Context, title string) (string, error)
	History(ctx context.Context, conversationID string, limit int) ([]HistoryEntry, error)
}

// Dispatch performs the network half of an operation and returns the Outcome
// to feed back into the flow. The caller runs it off the update loop
// (typically inside a tea.Cmd) and applies the outcome back on the loop, so
// the session only ever has a single writer.
type Dispatch func(ctx context.Context) Outcome

// Outcome is a completed network exchange waiting to be reconciled into the
// session via Apply.
type Outcome interface {
	apply(f *Flow)
}

// Flow is the single-writer state holder for the active conversation.
// Mutating methods and Apply must be called from one goroutine; dispatches
// may run anywhere.
type Flow struct {
	gw      Gateway
	now     func() time.Time
	newID   func() string
	session Session
}

// New creates a flow over the given gateway with a fresh session.
func New(gw Gateway) *Flow {
	f := &Flow{
		gw:    gw,
		now:   time.Now,
		newID: uuid.NewString,
	}
	f.Initialize()
	return f
}

// Initialize replaces the session with a fresh one containing only the
// welcome message. No network call is made.
func (f *Flow) Initialize() {
	f.session = Session{
		Messages: []Message{{
			ID:        f.newID(),
			Content:   WelcomeText,
			Origin:    OriginAssistant,
			CreatedAt: f.now(),
			Delivery:  DeliveryConfirmed,
		}},
	}
}

// Snapshot returns a copy of the session safe for the screen layer to read
// while the flow keeps mutating its own state.
func (f *Flow) Snapshot() Session {
	s := f.session
	s.Messages = make([]Message, len(f.session.Messages))
	copy(s.Messages, f.session.Messages)
	return s
}

// Apply reconciles a completed dispatch into the session.
func (f *Flow) Apply(o Outcome) {
	if o != nil {
		o.apply(f)
	}
}

// SendMessage optimistically appends a pending user message and flips the
// composing flag, then returns the dispatch that performs the single gateway
// call. Blank input (after trimming) is a no-op and returns false. The
// optimistic message's id is assigned before dispatch so a retry can
// reference it while the call is still in flight.
func (f *Flow) SendMessage(text string) (Dispatch, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, false
	}

	msg := Message{
		ID:        f.newID(),
		Content:   text,
		Origin:    OriginUser,
		CreatedAt: f.now(),
		Delivery:  DeliveryPending,
	}
	f.session.Messages = append(f.session.Messages, msg)
	f.session.AssistantComposing = true

	conversationID := f.session.ConversationID
	return func(ctx context.Context) Outcome {
		res, err := f.gw.SendMessage(ctx, text, conversationID)
		return sendOutcome{pendingID: msg.ID, result: res, err: err}
	}, true
}

// RetryMessage removes the identified message and re-sends its content as a
// fresh pending message appended at the end of the list. The retried message
// does not keep its original position relative to interleaved messages.
// Unknown ids are a no-op.
func (f *Flow) RetryMessage(id string) (Dispatch, bool) {
	idx := -1
	for i, m := range f.session.Messages {
		if m.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, false
	}
	content := f.session.Messages[idx].Content
	f.session.Messages = append(f.session.Messages[:idx], f.session.Messages[idx+1:]...)
	return f.SendMessage(content)
}

// StartNewConversation resets to a fresh session (welcome message, no
// conversation id) and returns a dispatch that asks the server to create a
// conversation in the background. The local reset stands whether or not the
// create succeeds; on failure the id stays empty and the next send asks the
// server to assign one.
func (f *Flow) StartNewConversation() Dispatch {
	f.session = Session{}
	f.Initialize()
	return func(ctx context.Context) Outcome {
		id, err := f.gw.CreateConversation(ctx, "")
		return createOutcome{conversationID: id, err: err}
	}
}

// LoadConversation marks the session loading and returns the dispatch that
// fetches the conversation's history.
func (f *Flow) LoadConversation(conversationID string) Dispatch {
	f.session.Load = LoadLoading
	return func(ctx context.Context) Outcome {
		entries, err := f.gw.History(ctx, conversationID, HistoryPageSize)
		return loadOutcome{conversationID: conversationID, entries: entries, err: err}
	}
}

type sendOutcome struct {
	pendingID string
	result    SendResult
	err       error
}

func (o sendOutcome) apply(f *Flow) {
	f.session.AssistantComposing = false

	idx := -1
	for i, m := range f.session.Messages {
		if m.ID == o.pendingID {
			idx = i
			break
		}
	}

	if o.err != nil {
		if idx >= 0 {
			f.session.Messages[idx].Delivery = DeliveryFailed
		}
		f.session.Messages = append(f.session.Messages, Message{
			ID:        f.newID(),
			Content:   fmt.Sprintf("Sorry, I couldn't process that message: %s", o.err),
			Origin:    OriginAssistant,
			CreatedAt: f.now(),
			Delivery:  DeliveryConfirmed,
		})
		return
	}

	// The server may assign a conversation id even when none was sent.
	f.session.ConversationID = o.result.ConversationID
	if idx >= 0 {
		f.session.Messages[idx].Delivery = DeliveryConfirmed
	}
	created := o.result.Timestamp
	if created.IsZero() {
		created = f.now()
	}
	f.session.Messages = append(f.session.Messages, Message{
		ID:        o.result.MessageID,
		Content:   o.result.Reply,
		Origin:    OriginAssistant,
		CreatedAt: created,
		Delivery:  DeliveryConfirmed,
	})
}

type createOutcome struct {
	conversationID string
	err            error
}

func (o createOutcome) apply(f *Flow) {
	// Adopt the id only if the session is still unbound; the user may have
	// switched to another conversation while the create was in flight.
	if o.err == nil && f.session.ConversationID == "" {
		f.session.ConversationID = o.conversationID
	}
}

type loadOutcome struct {
	conversationID string
	entries        []HistoryEntry
	err            error
}

func (o loadOutcome) apply(f *Flow) {
	if o.err != nil {
		f.session.Load = LoadErrored
		f.session.LoadError = o.err.Error()
		return
	}

	msgs := make([]Message, 0, len(o.entries))
	for _, e := range o.entries {
		origin := OriginAssistant
		if e.Role == "user" {
			origin = OriginUser
		}
		msgs = append(msgs, Message{
			ID:        e.MessageID,
			Content:   e.Content,
			Origin:    origin,
			CreatedAt: e.Timestamp,
			Delivery:  DeliveryConfirmed,
		})
	}
	f.session.ConversationID = o.conversationID
	f.session.Messages = msgs
	f.session.Load = LoadLoaded
	f.session.LoadError = ""
}
