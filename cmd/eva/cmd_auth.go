package main

import (
	"context"
	"fmt"

	"evachat/internal/auth"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// loginCmd signs in via the Google device flow.
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in with your Google account",
	Long: `Starts a Google device authorization: visit the printed URL on any
device, enter the code, and eva completes the sign-in once you approve.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, store, client, err := openStack()
		if err != nil {
			return err
		}
		defer store.Close()

		if cfg.OAuth.ClientID == "" {
			return fmt.Errorf("no OAuth client configured, set oauth.client_id in %s or EVA_OAUTH_CLIENT_ID", "config.yaml")
		}

		flow := auth.NewDeviceFlow(cfg.OAuth.ClientID, cfg.OAuth.ClientSecret)
		prompt, poll, err := flow.Start(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Printf("Visit %s and enter code: %s\n", prompt.VerificationURL, prompt.UserCode)
		fmt.Println("Waiting for approval...")

		idToken, err := poll(cmd.Context())
		if err != nil {
			return err
		}

		gate := auth.NewGateway(client, store)
		user, err := gate.Authenticate(cmd.Context(), idToken)
		if err != nil {
			return err
		}
		logger.Info("signed in", zap.String("uid", user.UID), zap.String("email", user.Email))
		fmt.Printf("Signed in as %s <%s>\n", user.DisplayName, user.Email)
		return nil
	},
}

// logoutCmd clears the local session.
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out locally",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, store, client, err := openStack()
		if err != nil {
			return err
		}
		defer store.Close()

		gate := auth.NewGateway(client, store)
		if err := gate.Logout(); err != nil {
			return err
		}
		fmt.Println("Signed out.")
		return nil
	},
}

// whoamiCmd shows the signed-in account, verified against the backend.
var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in account",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, store, client, err := openStack()
		if err != nil {
			return err
		}
		defer store.Close()

		loggedIn, err := store.LoggedIn()
		if err != nil {
			return err
		}
		if !loggedIn {
			return fmt.Errorf("not signed in")
		}

		user, err := client.Me(context.Background())
		if err != nil {
			return err
		}
		fmt.Printf("%s <%s>\nuid: %s\n", user.DisplayName, user.Email, user.UID)
		return nil
	},
}
