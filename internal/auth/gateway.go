// Package auth owns sign-in: it exchanges a Google identity token for a
// backend session and keeps the resulting credential in the session store.
package auth

import (
	"context"
	"fmt"

	"evachat/internal/api"
	"evachat/internal/session"
)

// Exchanger is the slice of the backend client the gateway needs.
type Exchanger interface {
	Login(ctx context.Context, req api.AuthRequest) (api.AuthResponse, error)
	Register(ctx context.Context, req api.AuthRequest) (api.AuthResponse, error)
}

// Gateway performs the auth exchange and persists the outcome.
type Gateway struct {
	client Exchanger
	store  *session.Store
}

// NewGateway wires the exchange client to the session store.
func NewGateway(client Exchanger, store *session.Store) *Gateway {
	return &Gateway{client: client, store: store}
}

// Authenticate exchanges the identity token: login first, register when the
// backend has never seen the account. The credential is persisted before the
// user is returned, so a caller that sees a success can rely on the session
// surviving a restart.
func (g *Gateway) Authenticate(ctx context.Context, identityToken string) (api.User, error) {
	deviceID, err := g.store.DeviceID()
	if err != nil {
		return api.User{}, fmt.Errorf("failed to resolve device id: %w", err)
	}
	req := api.AuthRequest{IDToken: identityToken, DeviceID: deviceID}

	resp, err := g.client.Login(ctx, req)
	if api.IsNotFound(err) {
		resp, err = g.client.Register(ctx, req)
	}
	if err != nil {
		return api.User{}, fmt.Errorf("auth exchange failed: %w", err)
	}

	cred := session.Credential{
		AccessToken: resp.AccessToken,
		UserID:      resp.User.UID,
		Email:       resp.User.Email,
		DisplayName: resp.User.DisplayName,
		PictureURL:  resp.User.PictureURL,
	}
	if err := g.store.SaveCredential(cred); err != nil {
		return api.User{}, fmt.Errorf("failed to persist session: %w", err)
	}
	return resp.User, nil
}

// LoggedIn reports whether a persisted session exists.
func (g *Gateway) LoggedIn() (bool, error) {
	return g.store.LoggedIn()
}

// Logout clears the local session. The backend token is not revoked; it
// simply ages out server-side.
func (g *Gateway) Logout() error {
	return g.store.Clear()
}
