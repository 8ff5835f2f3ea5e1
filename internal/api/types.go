// Package api is the HTTP client for the Eva backend. It covers the auth
// exchange (identity token in, access token out) and the chat surface
// (messages, conversations, current user, health).
package api

import "time"

// AuthRequest exchanges a Google identity token for a backend session.
type AuthRequest struct {
	IDToken  string `json:"id_token"`
	DeviceID string `json:"device_id,omitempty"`
}

// User is the backend's view of the signed-in account.
type User struct {
	UID         string `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	PictureURL  string `json:"picture_url"`
}

// AuthResponse carries the bearer token used on every chat call.
type AuthResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	User        User   `json:"user"`
}

// SendRequest posts one user message. An empty ConversationID asks the
// server to create a conversation and return its id.
type SendRequest struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversation_id,omitempty"`
}

// SendResponse is the assistant's turn.
type SendResponse struct {
	MessageID       string    `json:"message_id"`
	ConversationID  string    `json:"conversation_id"`
	Response        string    `json:"response"`
	Timestamp       time.Time `json:"timestamp"`
	EmotionDetected string    `json:"emotion_detected,omitempty"`
}

// HistoryMessage is one stored message in a conversation's history.
type HistoryMessage struct {
	MessageID string    `json:"message_id"`
	Content   string    `json:"content"`
	Role      string    `json:"role"`
	Timestamp time.Time `json:"timestamp"`
}

// NewConversationRequest creates an empty conversation.
type NewConversationRequest struct {
	Title string `json:"title,omitempty"`
}

// Conversation is one entry in the user's conversation list.
type Conversation struct {
	ConversationID string    `json:"conversation_id"`
	Title          string    `json:"title"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	MessageCount   int       `json:"message_count"`
}

// DeleteResponse acknowledges a conversation delete.
type DeleteResponse struct {
	Message string `json:"message"`
}

// HealthResponse reports backend liveness.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}
