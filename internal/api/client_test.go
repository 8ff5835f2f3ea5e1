package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(DefaultConfig(srv.URL), StaticToken("tok-123"))
}

func TestSendMessage_RoundTrip(t *testing.T) {
	t.Parallel()
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/chat/send", r.URL.Path)
		require.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req SendRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "hello", req.Message)
		assert.Equal(t, "c1", req.ConversationID)

		json.NewEncoder(w).Encode(SendResponse{
			MessageID:      "m1",
			ConversationID: "c1",
			Response:       "hi there",
			Timestamp:      time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		})
	}))

	resp, err := c.SendMessage(context.Background(), SendRequest{Message: "hello", ConversationID: "c1"})
	require.NoError(t, err)
	assert.Equal(t, "m1", resp.MessageID)
	assert.Equal(t, "hi there", resp.Response)
}

func TestSendMessage_OmitsEmptyConversationID(t *testing.T) {
	t.Parallel()
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var raw map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		_, present := raw["conversation_id"]
		assert.False(t, present, "empty conversation_id should be omitted")
		json.NewEncoder(w).Encode(SendResponse{MessageID: "m1", ConversationID: "c-new", Response: "ok"})
	}))

	resp, err := c.SendMessage(context.Background(), SendRequest{Message: "hello"})
	require.NoError(t, err)
	assert.Equal(t, "c-new", resp.ConversationID)
}

func TestErrorMapping(t *testing.T) {
	t.Parallel()
	cases := []struct {
		status   int
		detail   string
		contains string
	}{
		{http.StatusUnauthorized, "", "session expired"},
		{http.StatusForbidden, "", "access denied"},
		{http.StatusNotFound, "User not found", "not found: User not found"},
		{http.StatusInternalServerError, "", "server error"},
		{http.StatusTeapot, "", "status 418"},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(http.StatusText(tc.status), func(t *testing.T) {
			t.Parallel()
			c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				if tc.detail != "" {
					json.NewEncoder(w).Encode(map[string]string{"detail": tc.detail})
				}
			}))

			_, err := c.SendMessage(context.Background(), SendRequest{Message: "x"})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.contains)

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tc.status, apiErr.StatusCode)
		})
	}
}

func TestLogin_NotFoundIsDetectable(t *testing.T) {
	t.Parallel()
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/auth/login", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"), "auth exchange must not send a bearer token")
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"detail": "User not found"})
	}))

	_, err := c.Login(context.Background(), AuthRequest{IDToken: "idt"})
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.False(t, IsUnauthorized(err))
}

func TestRegister_ReturnsSession(t *testing.T) {
	t.Parallel()
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/auth/register", r.URL.Path)
		var req AuthRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "idt", req.IDToken)
		assert.Equal(t, "dev-1", req.DeviceID)
		json.NewEncoder(w).Encode(AuthResponse{
			AccessToken: "at",
			TokenType:   "bearer",
			User:        User{UID: "u1", Email: "a@b.c", DisplayName: "A"},
		})
	}))

	resp, err := c.Register(context.Background(), AuthRequest{IDToken: "idt", DeviceID: "dev-1"})
	require.NoError(t, err)
	assert.Equal(t, "at", resp.AccessToken)
	assert.Equal(t, "u1", resp.User.UID)
}

func TestHistory_PathAndQuery(t *testing.T) {
	t.Parallel()
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/chat/history/c1", r.URL.Path)
		require.Equal(t, "50", r.URL.Query().Get("limit"))
		json.NewEncoder(w).Encode([]HistoryMessage{
			{MessageID: "m1", Content: "hey", Role: "user"},
			{MessageID: "m2", Content: "hello", Role: "assistant"},
		})
	}))

	msgs, err := c.History(context.Background(), "c1", 50)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "user", msgs[0].Role)
}

func TestConversations_ListNewDelete(t *testing.T) {
	t.Parallel()
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Exactly the documented routes; anything else is a contract break.
		switch r.Method + " " + r.URL.Path {
		case "GET /api/chat/conversations":
			json.NewEncoder(w).Encode([]Conversation{{ConversationID: "c1", Title: "First", MessageCount: 4}})
		case "POST /api/chat/new":
			var req NewConversationRequest
			json.NewDecoder(r.Body).Decode(&req)
			json.NewEncoder(w).Encode(Conversation{ConversationID: "c2", Title: req.Title})
		case "DELETE /api/chat/c1":
			json.NewEncoder(w).Encode(DeleteResponse{Message: "Conversation deleted"})
		default:
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))

	ctx := context.Background()

	convs, err := c.ListConversations(ctx)
	require.NoError(t, err)
	require.Len(t, convs, 1)
	assert.Equal(t, 4, convs[0].MessageCount)

	conv, err := c.NewConversation(ctx, "Fresh")
	require.NoError(t, err)
	assert.Equal(t, "c2", conv.ConversationID)
	assert.Equal(t, "Fresh", conv.Title)

	ack, err := c.DeleteConversation(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "Conversation deleted", ack.Message)
}

func TestMe_And_Health(t *testing.T) {
	t.Parallel()
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/users/me":
			require.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
			json.NewEncoder(w).Encode(User{UID: "u1", Email: "a@b.c"})
		case "/api/health":
			assert.Empty(t, r.Header.Get("Authorization"))
			json.NewEncoder(w).Encode(HealthResponse{Status: "healthy"})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))

	u, err := c.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "u1", u.UID)

	h, err := c.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "healthy", h.Status)
}
