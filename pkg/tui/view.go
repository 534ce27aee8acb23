package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/mpetrov/chatgpt-tui-client/pkg/domain"
)

func (m *Model) View() string {
	if !m.ready {
		return "starting..."
	}

	main := lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		m.transcript.View(),
		m.renderComposer(),
		m.renderStatus(),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, m.renderSidebar(), main)
}

func (m *Model) renderSidebar() string {
	var b strings.Builder
	b.WriteString(m.styles.sidebarTitle.Render("Chats"))
	b.WriteString("\n")

	chats := m.history.Chats()
	if len(chats) == 0 {
		b.WriteString(m.styles.sidebarEmpty.Render("No recent chats"))
		b.WriteString("\n")
	}

	activeID := m.session.ActiveChatID()
	for i, chat := range chats {
		title := truncateTitle(chat.Title, sidebarWidth-3)

		style := m.styles.sidebarItem
		if chat.ID == activeID {
			style = m.styles.sidebarActive
		}
		if m.focus == focusSidebar && i == m.sidebarIndex {
			style = m.styles.sidebarSelected
		}
		b.WriteString(style.Render(title))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.styles.sidebarFooter.Render("user " + shortID(m.userID)))

	return m.styles.sidebar.Height(maxInt(m.height-1, 1)).Render(b.String())
}

func (m *Model) renderHeader() string {
	title := "New chat"
	if chat, ok := m.activeChat(); ok {
		title = chat.Title
	}
	return m.styles.header.Width(m.mainWidth()).Render(title)
}

func (m *Model) renderComposer() string {
	if m.attaching {
		return m.fileInput.View()
	}
	return m.composer.View()
}

func (m *Model) renderStatus() string {
	switch {
	case m.confirmingDelete:
		return m.styles.statusWarn.Render("Delete ALL chats? (y/n)")
	case m.statusErr != "":
		return m.styles.statusWarn.Render(m.statusErr)
	case m.loadingEntry() != nil:
		return m.styles.statusBar.Render(m.spin.View() + " generating  esc stop")
	}

	hints := "enter send · tab chats · ctrl+n new · ctrl+f attach · ctrl+t theme · ctrl+d delete all · ctrl+c quit"
	if a := m.session.Attachment(); a != nil {
		hints = "attached " + a.Label() + " · ctrl+x remove · " + hints
	}
	return m.styles.statusBar.Render(hints)
}

// refreshTranscript re-renders the viewport content from the entry list.
func (m *Model) refreshTranscript() {
	if !m.ready {
		return
	}
	m.transcript.SetContent(m.renderTranscript())
}

func (m *Model) renderTranscript() string {
	if len(m.entries) == 0 {
		return m.renderWelcome()
	}

	parts := make([]string, 0, len(m.entries))
	for i := range m.entries {
		parts = append(parts, m.renderEntry(&m.entries[i]))
	}
	return strings.Join(parts, "\n\n")
}

func (m *Model) renderEntry(e *entry) string {
	if e.role == domain.MessageRoleUser {
		lines := m.styles.userLabel.Render("You") + "\n" + m.styles.userText.Render(e.content)
		if e.attachment != "" {
			lines += "\n" + m.styles.attachment.Render(e.attachment)
		}
		return lines
	}

	label := m.styles.botLabel.Render("AI")
	switch {
	case e.loading:
		return label + "\n" + m.spin.View() + " " + e.content
	case e.failed:
		return label + "\n" + m.styles.errText.Render(e.content)
	case e.stopped:
		return label + "\n" + m.styles.stopped.Render(e.content)
	case e.rendered != "":
		return label + "\n" + e.rendered
	}
	return label + "\n" + e.content
}

func (m *Model) renderWelcome() string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(m.styles.welcome.Render("How can I help you today?"))
	b.WriteString("\n\n")
	for _, s := range welcomeSuggestions {
		b.WriteString(m.styles.suggestion.Render("  · " + s))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.styles.hint.Render("  Type a prompt and press enter."))
	return b.String()
}

// renderMarkdown formats a completed assistant reply through glamour. The
// renderer is rebuilt lazily after any width or theme change; on any failure
// the raw text is shown instead.
func (m *Model) renderMarkdown(text string) string {
	if m.mdRenderer == nil {
		r, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(glamourStyle(m.theme)),
			glamour.WithWordWrap(maxInt(m.mainWidth()-2, 20)),
		)
		if err != nil {
			return text
		}
		m.mdRenderer = r
	}

	out, err := m.mdRenderer.Render(text)
	if err != nil {
		return text
	}
	return strings.TrimRight(out, "\n")
}

func (m *Model) rerenderAssistantEntries() {
	for i := range m.entries {
		e := &m.entries[i]
		if e.role == domain.MessageRoleAssistant && !e.loading && !e.failed && !e.stopped {
			e.rendered = m.renderMarkdown(e.content)
		}
	}
}

func (m *Model) mainWidth() int {
	return maxInt(m.width-sidebarWidth-2, 20)
}

func truncateTitle(title string, limit int) string {
	runes := []rune(title)
	if len(runes) > limit {
		return string(runes[:limit-1]) + "…"
	}
	return title
}

func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return fmt.Sprintf("%s…", id[:8])
}
