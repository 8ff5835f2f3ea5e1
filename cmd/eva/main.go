package main

import (
	"context"
	"fmt"
	"os"

	"evachat/cmd/eva/chat"
	"evachat/internal/api"
	"evachat/internal/auth"
	"evachat/internal/cache"
	"evachat/internal/config"
	"evachat/internal/flow"
	"evachat/internal/logging"
	"evachat/internal/session"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Global flags
	verbose bool
	baseURL string

	// Logger for non-interactive commands
	logger *zap.Logger
)

// rootCmd represents the base command.
var rootCmd = &cobra.Command{
	Use:   "eva",
	Short: "eva - terminal client for the Eva assistant",
	Long: `eva is a terminal chat client for the Eva assistant backend.

Run without arguments to start the interactive chat interface.
Sign in first with "eva login".`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip logger init for interactive mode (it has its own UI)
		if cmd.Use == "eva" && cmd.CalledAs() == "eva" {
			return nil
		}

		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInteractiveChat()
	},
}

// loadConfig resolves config with the --server flag on top.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(config.Path())
	if err != nil {
		return nil, err
	}
	if baseURL != "" {
		cfg.Server.BaseURL = baseURL
	}
	return cfg, nil
}

// openStack wires config, session store and API client for a command.
func openStack() (*config.Config, *session.Store, *api.Client, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, nil, err
	}
	store, err := session.Open(config.Dir())
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to open session store: %w", err)
	}
	client := api.New(api.Config{
		BaseURL:        cfg.Server.BaseURL,
		ConnectTimeout: cfg.ConnectTimeout(),
		RequestTimeout: cfg.RequestTimeout(),
	}, store)
	return cfg, store, client, nil
}

func runInteractiveChat() error {
	cfg, store, client, err := openStack()
	if err != nil {
		return err
	}
	defer store.Close()

	gate := auth.NewGateway(client, store)
	loggedIn, err := gate.LoggedIn()
	if err != nil {
		return err
	}
	if !loggedIn {
		return fmt.Errorf("not signed in, run \"eva login\" first")
	}

	if err := logging.Initialize(config.Dir(), logging.Settings{
		DebugMode:  cfg.Logging.DebugMode,
		Categories: cfg.Logging.Categories,
	}); err != nil {
		return err
	}
	defer logging.CloseAll()

	c, err := cache.New()
	if err != nil {
		return err
	}
	defer c.Close()

	cred, err := store.Credential()
	if err != nil {
		return err
	}

	gw := chat.NewGateway(client, c)
	model := chat.NewModel(chat.Deps{
		Flow:    flow.New(gw),
		Gateway: gw,
		Store:   store,
		Config:  cfg,
		User: api.User{
			UID:         cred.UserID,
			Email:       cred.Email,
			DisplayName: cred.DisplayName,
			PictureURL:  cred.PictureURL,
		},
	})

	p := tea.NewProgram(model, tea.WithAltScreen())

	watchCtx, cancelWatch := context.WithCancel(context.Background())
	defer cancelWatch()
	// Live-reload theme and logging settings while the TUI runs. A watch
	// failure is not fatal.
	_ = config.Watch(watchCtx, config.Path(), func(updated *config.Config) {
		p.Send(chat.ConfigReloaded(updated))
	})

	_, err = p.Run()
	return err
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&baseURL, "server", "", "Backend base URL (overrides config)")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(conversationsCmd)
	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(healthCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
