package chat

import (
	"context"

	"evachat/internal/api"
	"evachat/internal/cache"
	"evachat/internal/flow"
	"evachat/internal/logging"

	"golang.org/x/sync/errgroup"
)

// Gateway adapts the backend client to what the conversation flow and the
// drawer need, with a read-through cache in front of the list and history
// endpoints.
type Gateway struct {
	client *api.Client
	cache  *cache.Cache
}

// NewGateway wires the client and cache together.
func NewGateway(client *api.Client, c *cache.Cache) *Gateway {
	return &Gateway{client: client, cache: c}
}

// SendMessage implements flow.Gateway.
func (g *Gateway) SendMessage(ctx context.Context, text, conversationID string) (flow.SendResult, error) {
	log := logging.Get(logging.CategoryAPI)
	resp, err := g.client.SendMessage(ctx, api.SendRequest{Message: text, ConversationID: conversationID})
	if err != nil {
		log.Error("send failed conv=%s: %v", conversationID, err)
		return flow.SendResult{}, err
	}
	log.Info("sent conv=%s msg=%s", resp.ConversationID, resp.MessageID)

	// A new message lands in the conversation, so its cached page and the
	// list ordering are both stale.
	if g.cache != nil {
		g.cache.InvalidateHistory(resp.ConversationID)
		g.cache.InvalidateConversations()
	}
	return flow.SendResult{
		MessageID:      resp.MessageID,
		ConversationID: resp.ConversationID,
		Reply:          resp.Response,
		Timestamp:      resp.Timestamp,
	}, nil
}

// CreateConversation implements flow.Gateway.
func (g *Gateway) CreateConversation(ctx context.Context, title string) (string, error) {
	conv, err := g.client.NewConversation(ctx, title)
	if err != nil {
		return "", err
	}
	if g.cache != nil {
		g.cache.InvalidateConversations()
	}
	return conv.ConversationID, nil
}

// History implements flow.Gateway.
func (g *Gateway) History(ctx context.Context, conversationID string, limit int) ([]flow.HistoryEntry, error) {
	var msgs []api.HistoryMessage
	if g.cache != nil {
		if cached, ok := g.cache.History(conversationID); ok {
			logging.Get(logging.CategoryStore).Debug("history cache hit conv=%s", conversationID)
			msgs = cached
		}
	}
	if msgs == nil {
		var err error
		msgs, err = g.client.History(ctx, conversationID, limit)
		if err != nil {
			return nil, err
		}
		if g.cache != nil {
			g.cache.SetHistory(conversationID, msgs)
		}
	}

	entries := make([]flow.HistoryEntry, 0, len(msgs))
	for _, m := range msgs {
		entries = append(entries, flow.HistoryEntry{
			MessageID: m.MessageID,
			Content:   m.Content,
			Role:      m.Role,
			Timestamp: m.Timestamp,
		})
	}
	return entries, nil
}

// DrawerData is what the conversation drawer shows.
type DrawerData struct {
	Conversations []api.Conversation
	User          api.User
}

// FetchDrawer loads the conversation list and the current user concurrently.
// The list goes through the cache; the profile is cheap and always fresh.
func (g *Gateway) FetchDrawer(ctx context.Context) (DrawerData, error) {
	var data DrawerData

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		if g.cache != nil {
			if convs, ok := g.cache.Conversations(); ok {
				data.Conversations = convs
				return nil
			}
		}
		convs, err := g.client.ListConversations(ctx)
		if err != nil {
			return err
		}
		if g.cache != nil {
			g.cache.SetConversations(convs)
		}
		data.Conversations = convs
		return nil
	})
	eg.Go(func() error {
		user, err := g.client.Me(ctx)
		if err != nil {
			return err
		}
		data.User = user
		return nil
	})

	if err := eg.Wait(); err != nil {
		return DrawerData{}, err
	}
	return data, nil
}

// DeleteConversation removes a conversation and drops its cache entries.
func (g *Gateway) DeleteConversation(ctx context.Context, id string) error {
	ack, err := g.client.DeleteConversation(ctx, id)
	if err != nil {
		return err
	}
	logging.Get(logging.CategoryAPI).Info("deleted conv=%s: %s", id, ack.Message)
	if g.cache != nil {
		g.cache.InvalidateConversations()
		g.cache.InvalidateHistory(id)
	}
	return nil
}
