// Test utilities for the chat package: a scripted gateway and a model
// factory with safe defaults.
package chat

import (
	"context"
	"sync"
	"time"

	"evachat/cmd/eva/ui"
	"evachat/internal/flow"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
)

// scriptedGateway implements flow.Gateway with canned responses.
type scriptedGateway struct {
	mu        sync.Mutex
	reply     string
	sendErr   error
	createID  string
	createErr error
	history   []flow.HistoryEntry
	histErr   error
	sendCalls int
}

func (g *scriptedGateway) SendMessage(_ context.Context, text, conversationID string) (flow.SendResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sendCalls++
	if g.sendErr != nil {
		return flow.SendResult{}, g.sendErr
	}
	conv := conversationID
	if conv == "" {
		conv = "c-test"
	}
	return flow.SendResult{
		MessageID:      "srv-msg",
		ConversationID: conv,
		Reply:          g.reply,
		Timestamp:      time.Now(),
	}, nil
}

func (g *scriptedGateway) CreateConversation(_ context.Context, _ string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.createID, g.createErr
}

func (g *scriptedGateway) History(_ context.Context, _ string, _ int) ([]flow.HistoryEntry, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.history, g.histErr
}

// TestModelOption customizes NewTestModel.
type TestModelOption func(*Model)

// WithFlow replaces the model's flow.
func WithFlow(f *flow.Flow) TestModelOption {
	return func(m *Model) { m.flow = f }
}

// WithGateway sets the drawer gateway.
func WithGateway(g *Gateway) TestModelOption {
	return func(m *Model) { m.gateway = g }
}

// WithViewMode sets the view mode.
func WithViewMode(mode ViewMode) TestModelOption {
	return func(m *Model) { m.viewMode = mode }
}

// NewTestModel builds a ready model over a scripted gateway.
func NewTestModel(gw flow.Gateway, opts ...TestModelOption) Model {
	ta := textarea.New()
	ta.SetWidth(80)
	ta.SetHeight(3)
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	styles := ui.NewStyles(ui.LightTheme())

	drawer := list.New(nil, list.NewDefaultDelegate(), 80, 20)

	m := Model{
		textarea: ta,
		viewport: viewport.New(80, 20),
		spinner:  sp,
		drawer:   drawer,
		styles:   styles,
		flow:     flow.New(gw),
		ready:    true,
		width:    100,
		height:   50,
		viewMode: ChatView,
	}

	// May fail in a bare test environment; rendering falls back to plain
	// text when nil.
	renderer, _ := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	m.renderer = renderer

	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// runDispatch executes the command returned by a send/retry/load key and
// feeds the resulting outcome back through Update, the way the bubbletea
// runtime would.
func runDispatch(m Model, cmd tea.Cmd) Model {
	if cmd == nil {
		return m
	}
	msg := cmd()
	if batched, ok := msg.(tea.BatchMsg); ok {
		for _, c := range batched {
			m = runDispatch(m, c)
		}
		return m
	}
	switch msg.(type) {
	case outcomeMsg, drawerMsg, deleteDoneMsg, configReloadedMsg:
		next, _ := m.Update(msg)
		return next.(Model)
	}
	return m
}

func keyMsg(t tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: t}
}
