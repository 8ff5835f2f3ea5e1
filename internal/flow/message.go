// Package flow owns the in-memory state of the active conversation: the
// ordered message list, the composing flag, and the active conversation id.
// It mediates between user intents and the chat gateway, applying optimistic
// updates before dispatch and reconciling them when the gateway answers.
package flow

import "time"

// Origin identifies who produced a message.
type Origin int

const (
	OriginUser Origin = iota
	OriginAssistant
)

// DeliveryState tracks a user message through its round trip to the server.
// Assistant messages are always DeliveryConfirmed.
type DeliveryState int

const (
	DeliveryPending DeliveryState = iota
	DeliveryConfirmed
	DeliveryFailed
)

// Message is one turn in the transcript. Optimistic user messages carry a
// locally generated id until the server confirms the send; the assistant
// reply arrives with the server-issued id.
type Message struct {
	ID        string
	Content   string
	Origin    Origin
	CreatedAt time.Time
	Delivery  DeliveryState
}

// LoadState is the history-load indicator, distinct from per-message
// delivery state. Transitions: Loading->Loaded on success, Loading->Errored
// on failure, Loaded/Errored->Loading on a new load.
type LoadState int

const (
	LoadLoaded LoadState = iota
	LoadLoading
	LoadErrored
)

// Session is the active conversation. An empty ConversationID means the
// conversation has not been created on the server yet; the next send asks
// the server to assign one.
type Session struct {
	ConversationID     string
	Messages           []Message
	AssistantComposing bool
	Load               LoadState
	LoadError          string
}

// LastFailed returns the id of the most recent failed user message, if any.
func (s Session) LastFailed() (string, bool) {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		m := s.Messages[i]
		if m.Origin == OriginUser && m.Delivery == DeliveryFailed {
			return m.ID, true
		}
	}
	return "", false
}
