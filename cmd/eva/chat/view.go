package chat

import (
	"fmt"
	"strings"
	"time"

	"evachat/internal/flow"

	"github.com/charmbracelet/lipgloss"
)

func (m Model) renderHistory() string {
	var sb strings.Builder

	snap := m.flow.Snapshot()
	for _, msg := range snap.Messages {
		switch msg.Origin {
		case flow.OriginUser:
			userStyle := m.styles.Bold.
				Foreground(m.styles.Theme.Primary).
				MarginTop(1)
			marker := ""
			switch msg.Delivery {
			case flow.DeliveryPending:
				marker = m.styles.Muted.Render(" (sending...)")
			case flow.DeliveryFailed:
				marker = m.styles.Error.Render(" (failed, Ctrl+R to retry)")
			}
			sb.WriteString(userStyle.Render("You") + marker + "\n")
			sb.WriteString(m.styles.UserInput.Render(msg.Content))
			sb.WriteString("\n\n")

		default:
			assistantStyle := m.styles.Bold.
				Foreground(m.styles.Theme.Accent).
				MarginTop(1)
			sb.WriteString(assistantStyle.Render("Eva") + "\n")
			sb.WriteString(m.safeRenderMarkdown(msg.Content))
			sb.WriteString("\n")
		}
	}

	if snap.AssistantComposing {
		sb.WriteString(m.styles.Muted.Render("Eva is typing..."))
		sb.WriteString("\n")
	}

	return sb.String()
}

// safeRenderMarkdown renders markdown with panic recovery.
func (m Model) safeRenderMarkdown(content string) (result string) {
	defer func() {
		if r := recover(); r != nil {
			// If glamour panics, return plain text.
			result = content
		}
	}()

	if m.renderer != nil && content != "" {
		rendered, err := m.renderer.Render(content)
		if err == nil {
			return rendered
		}
	}
	return content
}

func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	if m.viewMode == DrawerView {
		return m.renderDrawer()
	}

	header := m.renderHeader()
	content := m.styles.Content.Render(m.viewport.View())

	inputStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.styles.Theme.Accent).
		Padding(0, 1)
	inputArea := inputStyle.Render(m.textarea.View())

	footer := m.renderFooter()

	return lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		content,
		inputArea,
		footer,
	)
}

func (m Model) renderHeader() string {
	title := m.styles.Header.Render(" eva ")

	snap := m.flow.Snapshot()
	var status string
	switch {
	case snap.AssistantComposing:
		status = lipgloss.JoinHorizontal(lipgloss.Center, m.spinner.View(), " ", m.styles.Badge.Render("Thinking..."))
	case snap.Load == flow.LoadLoading:
		status = lipgloss.JoinHorizontal(lipgloss.Center, m.spinner.View(), " ", m.styles.Badge.Render("Loading conversation..."))
	case snap.Load == flow.LoadErrored:
		status = m.styles.Error.Render("Load failed: " + snap.LoadError)
	default:
		status = m.styles.Success.Render("Ready")
	}

	account := ""
	if m.user.Email != "" {
		account = m.styles.Muted.Render(" " + m.user.Email)
	}

	headerLine := lipgloss.JoinHorizontal(lipgloss.Center, title, "  ", status)
	return lipgloss.JoinVertical(
		lipgloss.Left,
		headerLine,
		account,
		m.styles.RenderDivider(m.width),
	)
}

func (m Model) renderFooter() string {
	hint := "Enter: send | Ctrl+N: new | Ctrl+L: conversations | Ctrl+R: retry | Esc: quit"
	if m.err != nil {
		hint = m.styles.Error.Render(m.err.Error()) + "  " + hint
	}
	timestamp := time.Now().Format("15:04")
	return lipgloss.NewStyle().
		MarginTop(1).
		Render(m.styles.Muted.Render(fmt.Sprintf("%s | %s", timestamp, hint)))
}

func (m Model) renderDrawer() string {
	if m.drawerLoading {
		return m.styles.Content.Render(
			lipgloss.JoinHorizontal(lipgloss.Center, m.spinner.View(), " ", m.styles.Muted.Render("Loading conversations...")),
		)
	}
	view := m.styles.Content.Render(m.drawer.View())
	if m.confirmDelete != "" {
		prompt := m.styles.Warning.Render("Delete this conversation? (y/n)")
		view = lipgloss.JoinVertical(lipgloss.Left, view, prompt)
	}
	return view
}
