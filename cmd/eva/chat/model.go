// Package chat provides the interactive TUI for the Eva assistant.
// The functionality is split across files:
//   - model.go: types, Init, keybindings
//   - update.go: the update loop
//   - view.go: rendering
//   - session.go: gateway adapter over the API client and cache
package chat

import (
	"fmt"

	"evachat/cmd/eva/ui"
	"evachat/internal/api"
	"evachat/internal/config"
	"evachat/internal/flow"
	"evachat/internal/session"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
)

// ViewMode determines which component is focused.
type ViewMode int

const (
	ChatView ViewMode = iota
	DrawerView
)

// conversationItem is a list item for the conversation drawer.
type conversationItem struct {
	conv api.Conversation
}

func (i conversationItem) Title() string {
	title := i.conv.Title
	if title == "" {
		title = "Untitled"
	}
	return title
}

func (i conversationItem) Description() string {
	return fmt.Sprintf("%d messages · %s", i.conv.MessageCount, i.conv.UpdatedAt.Format("Jan 2 15:04"))
}

func (i conversationItem) FilterValue() string { return i.conv.Title }

// Deps is everything the model needs from the outside.
type Deps struct {
	Flow    *flow.Flow
	Gateway *Gateway
	Store   *session.Store
	Config  *config.Config
	User    api.User
}

// Model is the main model for the interactive chat interface.
type Model struct {
	// UI components
	textarea textarea.Model
	viewport viewport.Model
	spinner  spinner.Model
	drawer   list.Model
	styles   ui.Styles
	renderer *glamour.TermRenderer

	viewMode ViewMode

	// State
	flow    *flow.Flow
	gateway *Gateway
	store   *session.Store
	user    api.User
	err     error
	width   int
	height  int
	ready   bool

	// Drawer state
	drawerLoading bool
	confirmDelete string // conversation id pending delete confirmation
}

// NewModel assembles the chat model.
func NewModel(deps Deps) Model {
	ta := textarea.New()
	ta.Placeholder = "Message Eva..."
	ta.Focus()
	ta.Prompt = "┃ "
	ta.CharLimit = 4000
	ta.SetHeight(3)
	ta.ShowLineNumbers = false

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	styles := ui.NewStyles(ui.ThemeByName(deps.Config.UI.Theme))
	sp.Style = styles.Spinner

	drawer := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	drawer.Title = "Conversations"
	drawer.SetShowStatusBar(false)

	renderer, _ := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)

	return Model{
		textarea: ta,
		spinner:  sp,
		drawer:   drawer,
		styles:   styles,
		renderer: renderer,
		flow:     deps.Flow,
		gateway:  deps.Gateway,
		store:    deps.Store,
		user:     deps.User,
	}
}

// Init starts the spinner and reopens the last-viewed conversation, if any.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textarea.Blink, m.spinner.Tick}
	if m.store != nil {
		if id, err := m.store.ActiveConversation(); err == nil && id != "" {
			cmds = append(cmds, m.dispatch(m.flow.LoadConversation(id)))
		}
	}
	return tea.Batch(cmds...)
}
