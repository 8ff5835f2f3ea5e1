package auth

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
)

// googleEndpoint is spelled out here rather than imported so the package
// does not drag in the full Google API surface for three URLs.
var googleEndpoint = oauth2.Endpoint{
	AuthURL:       "https://accounts.google.com/o/oauth2/auth",
	TokenURL:      "https://oauth2.googleapis.com/token",
	DeviceAuthURL: "https://oauth2.googleapis.com/device/code",
}

// DeviceFlow obtains a Google identity token without a local browser: the
// user visits a short URL on any device and enters a code while we poll.
type DeviceFlow struct {
	config *oauth2.Config
}

// NewDeviceFlow creates the flow for the given OAuth client. The scopes ask
// for an OpenID identity token carrying email and profile claims, which is
// what the backend exchange verifies.
func NewDeviceFlow(clientID, clientSecret string) *DeviceFlow {
	return &DeviceFlow{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint:     googleEndpoint,
			Scopes:       []string{"openid", "email", "profile"},
		},
	}
}

// Prompt is what the user must act on to approve the sign-in.
type Prompt struct {
	VerificationURL string
	UserCode        string
}

// Start requests a device code. The returned poll function blocks until the
// user approves (or ctx expires) and yields the Google identity token for
// Authenticate.
func (f *DeviceFlow) Start(ctx context.Context) (Prompt, func(context.Context) (string, error), error) {
	da, err := f.config.DeviceAuth(ctx)
	if err != nil {
		return Prompt{}, nil, fmt.Errorf("failed to start device authorization: %w", err)
	}

	prompt := Prompt{VerificationURL: da.VerificationURI, UserCode: da.UserCode}
	poll := func(ctx context.Context) (string, error) {
		token, err := f.config.DeviceAccessToken(ctx, da)
		if err != nil {
			return "", fmt.Errorf("device authorization failed: %w", err)
		}
		idToken, ok := token.Extra("id_token").(string)
		if !ok || idToken == "" {
			return "", fmt.Errorf("no identity token in Google response")
		}
		return idToken, nil
	}
	return prompt, poll, nil
}
