package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// SendMessage posts one user message and waits for the assistant's reply.
func (c *Client) SendMessage(ctx context.Context, req SendRequest) (SendResponse, error) {
	var resp SendResponse
	err := c.do(ctx, http.MethodPost, "/api/chat/send", req, &resp, true)
	return resp, err
}

// History returns up to limit messages of a conversation, oldest first.
func (c *Client) History(ctx context.Context, conversationID string, limit int) ([]HistoryMessage, error) {
	path := fmt.Sprintf("/api/chat/history/%s?limit=%d", url.PathEscape(conversationID), limit)
	var msgs []HistoryMessage
	err := c.do(ctx, http.MethodGet, path, nil, &msgs, true)
	return msgs, err
}

// NewConversation creates an empty conversation and returns it.
func (c *Client) NewConversation(ctx context.Context, title string) (Conversation, error) {
	var conv Conversation
	err := c.do(ctx, http.MethodPost, "/api/chat/new", NewConversationRequest{Title: title}, &conv, true)
	return conv, err
}

// ListConversations returns the user's conversations, most recent first.
func (c *Client) ListConversations(ctx context.Context) ([]Conversation, error) {
	var convs []Conversation
	err := c.do(ctx, http.MethodGet, "/api/chat/conversations", nil, &convs, true)
	return convs, err
}

// DeleteConversation removes a conversation and its messages, returning the
// backend's acknowledgment.
func (c *Client) DeleteConversation(ctx context.Context, conversationID string) (DeleteResponse, error) {
	path := "/api/chat/" + url.PathEscape(conversationID)
	var resp DeleteResponse
	err := c.do(ctx, http.MethodDelete, path, nil, &resp, true)
	return resp, err
}
