package chat

import (
	"context"

	"evachat/cmd/eva/ui"
	"evachat/internal/config"
	"evachat/internal/flow"
	"evachat/internal/logging"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// outcomeMsg carries a completed dispatch back to the update loop. Applying
// it there keeps the flow single-writer.
type outcomeMsg struct {
	outcome flow.Outcome
}

// drawerMsg is the result of a drawer refresh.
type drawerMsg struct {
	data DrawerData
	err  error
}

// deleteDoneMsg reports a conversation delete.
type deleteDoneMsg struct {
	id  string
	err error
}

// configReloadedMsg arrives when the config file changed on disk.
type configReloadedMsg struct {
	cfg *config.Config
}

// ConfigReloaded wraps a reloaded config for delivery via Program.Send.
func ConfigReloaded(cfg *config.Config) tea.Msg {
	return configReloadedMsg{cfg: cfg}
}

// dispatch runs the network half of a flow operation off the update loop.
func (m Model) dispatch(d flow.Dispatch) tea.Cmd {
	if d == nil {
		return nil
	}
	return func() tea.Msg {
		return outcomeMsg{outcome: d(context.Background())}
	}
}

func (m Model) refreshDrawer() tea.Cmd {
	return func() tea.Msg {
		data, err := m.gateway.FetchDrawer(context.Background())
		return drawerMsg{data: data, err: err}
	}
}

func (m Model) deleteConversation(id string) tea.Cmd {
	return func() tea.Msg {
		return deleteDoneMsg{id: id, err: m.gateway.DeleteConversation(context.Background(), id)}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		taCmd tea.Cmd
		vpCmd tea.Cmd
		spCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		headerHeight := 3
		footerHeight := 2
		inputHeight := 5
		if !m.ready {
			m.viewport = viewport.New(msg.Width-4, msg.Height-headerHeight-footerHeight-inputHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width - 4
			m.viewport.Height = msg.Height - headerHeight - footerHeight - inputHeight
		}
		m.textarea.SetWidth(msg.Width - 6)
		m.drawer.SetSize(msg.Width-4, msg.Height-4)
		m.syncViewport()
		return m, nil

	case spinner.TickMsg:
		m.spinner, spCmd = m.spinner.Update(msg)
		return m, spCmd

	case outcomeMsg:
		before := m.flow.Snapshot().ConversationID
		m.flow.Apply(msg.outcome)
		after := m.flow.Snapshot()
		if after.ConversationID != "" && after.ConversationID != before && m.store != nil {
			if err := m.store.SetActiveConversation(after.ConversationID); err != nil {
				logging.Get(logging.CategorySession).Warn("failed to persist active conversation: %v", err)
			}
		}
		m.syncViewport()
		m.viewport.GotoBottom()
		return m, nil

	case drawerMsg:
		m.drawerLoading = false
		if msg.err != nil {
			m.err = msg.err
			m.viewMode = ChatView
			return m, nil
		}
		m.user = msg.data.User
		items := make([]list.Item, 0, len(msg.data.Conversations))
		for _, c := range msg.data.Conversations {
			items = append(items, conversationItem{conv: c})
		}
		m.drawer.SetItems(items)
		return m, nil

	case deleteDoneMsg:
		m.confirmDelete = ""
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		// If the active conversation was deleted, reset locally.
		var cmds []tea.Cmd
		if m.flow.Snapshot().ConversationID == msg.id {
			cmds = append(cmds, m.dispatch(m.flow.StartNewConversation()))
			m.syncViewport()
		}
		cmds = append(cmds, m.refreshDrawer())
		return m, tea.Batch(cmds...)

	case configReloadedMsg:
		m.styles = ui.NewStyles(ui.ThemeByName(msg.cfg.UI.Theme))
		m.spinner.Style = m.styles.Spinner
		logging.Reconfigure(logging.Settings{
			DebugMode:  msg.cfg.Logging.DebugMode,
			Categories: msg.cfg.Logging.Categories,
		})
		m.syncViewport()
		return m, nil

	case tea.KeyMsg:
		if m.viewMode == DrawerView {
			return m.updateDrawer(msg)
		}
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit

		case tea.KeyCtrlL:
			m.viewMode = DrawerView
			m.drawerLoading = true
			return m, m.refreshDrawer()

		case tea.KeyCtrlN:
			d := m.flow.StartNewConversation()
			m.err = nil
			if m.store != nil {
				_ = m.store.SetActiveConversation("")
			}
			m.syncViewport()
			m.viewport.GotoTop()
			return m, m.dispatch(d)

		case tea.KeyCtrlR:
			if id, ok := m.flow.Snapshot().LastFailed(); ok {
				if d, ok := m.flow.RetryMessage(id); ok {
					m.syncViewport()
					m.viewport.GotoBottom()
					return m, m.dispatch(d)
				}
			}
			return m, nil

		case tea.KeyEnter:
			if msg.Alt {
				break // Alt+Enter inserts a newline
			}
			return m.submit()
		}
	}

	m.textarea, taCmd = m.textarea.Update(msg)
	m.viewport, vpCmd = m.viewport.Update(msg)
	return m, tea.Batch(taCmd, vpCmd)
}

// submit hands the textarea content to the flow.
func (m Model) submit() (tea.Model, tea.Cmd) {
	d, ok := m.flow.SendMessage(m.textarea.Value())
	if !ok {
		return m, nil
	}
	m.textarea.Reset()
	m.err = nil
	m.syncViewport()
	m.viewport.GotoBottom()
	return m, m.dispatch(d)
}

// updateDrawer handles keys while the conversation drawer is open.
func (m Model) updateDrawer(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// A pending delete wants a y/n answer before anything else.
	if m.confirmDelete != "" {
		switch msg.String() {
		case "y", "Y":
			return m, m.deleteConversation(m.confirmDelete)
		default:
			m.confirmDelete = ""
			return m, nil
		}
	}

	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc", "ctrl+l":
		m.viewMode = ChatView
		return m, nil
	case "enter":
		if item, ok := m.drawer.SelectedItem().(conversationItem); ok {
			m.viewMode = ChatView
			d := m.flow.LoadConversation(item.conv.ConversationID)
			if m.store != nil {
				_ = m.store.SetActiveConversation(item.conv.ConversationID)
			}
			m.syncViewport()
			return m, m.dispatch(d)
		}
		return m, nil
	case "d":
		if item, ok := m.drawer.SelectedItem().(conversationItem); ok {
			m.confirmDelete = item.conv.ConversationID
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.drawer, cmd = m.drawer.Update(msg)
	return m, cmd
}

// syncViewport re-renders the transcript into the viewport.
func (m *Model) syncViewport() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderHistory())
}
