package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mpetrov/chatgpt-tui-client/pkg/domain"
)

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case SnapshotMsg:
		m.history.Replace(msg)
		m.clampSidebarIndex()
		return m, nil

	case spinner.TickMsg:
		if m.loadingEntry() == nil {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		m.refreshTranscript()
		return m, cmd

	case replyMsg:
		le := m.loadingEntry()
		if le == nil {
			return m, nil
		}
		m.reveal = newReveal(msg.text)
		le.content = ""
		m.refreshTranscript()
		return m, revealTick()

	case revealTickMsg:
		return m.handleRevealTick()

	case turnStoppedMsg:
		if le := m.loadingEntry(); le != nil {
			le.content = domain.GenerationStoppedMessage
			le.stopped = true
			le.loading = false
		}
		m.refreshTranscript()
		m.transcript.GotoBottom()
		return m, nil

	case turnErrorMsg:
		if le := m.loadingEntry(); le != nil {
			le.content = msg.err.Error()
			le.failed = true
			le.loading = false
		}
		m.refreshTranscript()
		m.transcript.GotoBottom()
		return m, nil

	case assistantSavedMsg:
		if msg.err != nil {
			m.statusErr = "failed to save reply: " + msg.err.Error()
		}
		return m, nil

	case chatLoadedMsg:
		if msg.err != nil {
			m.statusErr = "failed to load chat: " + msg.err.Error()
			return m, nil
		}
		m.setEntriesFromChat(msg.chat)
		m.refreshTranscript()
		m.transcript.GotoBottom()
		return m, nil

	case chatsDeletedMsg:
		if msg.err != nil {
			m.statusErr = "failed to delete chats: " + msg.err.Error()
			return m, nil
		}
		m.entries = nil
		m.sidebarIndex = 0
		m.refreshTranscript()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m.routeToFocused(msg)
}

func (m *Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width, m.height = msg.Width, msg.Height
	m.ready = true

	mainW := m.mainWidth()
	m.transcript.Width = mainW
	m.transcript.Height = maxInt(m.height-4, 3)
	m.composer.SetWidth(maxInt(mainW-2, 20))
	m.fileInput.Width = maxInt(mainW-12, 20)

	m.mdRenderer = nil
	m.rerenderAssistantEntries()
	m.refreshTranscript()
	m.transcript.GotoBottom()
	return m, nil
}

func (m *Model) handleRevealTick() (tea.Model, tea.Cmd) {
	if m.reveal == nil {
		// Cancelled mid-reveal: the ticker dies here.
		return m, nil
	}

	m.reveal.Advance()
	le := m.loadingEntry()
	if le == nil {
		m.reveal = nil
		return m, nil
	}
	le.content = m.reveal.Current()

	if m.reveal.Done() {
		text := m.reveal.Text()
		le.loading = false
		le.rendered = m.renderMarkdown(text)
		m.reveal = nil
		m.refreshTranscript()
		m.transcript.GotoBottom()
		return m, m.finishTurn(text)
	}

	m.refreshTranscript()
	m.transcript.GotoBottom()
	return m, revealTick()
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		m.session.Cancel()
		return m, tea.Quit
	}

	if m.confirmingDelete {
		m.confirmingDelete = false
		if msg.String() == "y" {
			return m, m.deleteAllChats()
		}
		return m, nil
	}

	if m.attaching {
		return m.handleAttachKey(msg)
	}

	switch msg.String() {
	case "esc":
		if m.session.Busy() || m.reveal != nil {
			m.stopResponse()
			return m, nil
		}
		if m.focus == focusSidebar {
			m.focusComposer()
		}
		return m, nil

	case "tab":
		if m.focus == focusComposer {
			m.focus = focusSidebar
			m.composer.Blur()
			m.clampSidebarIndex()
		} else {
			m.focusComposer()
		}
		return m, nil

	case "ctrl+n":
		m.startNewChat()
		return m, nil

	case "ctrl+t":
		return m, m.toggleTheme()

	case "ctrl+d":
		// Deleting mid-turn would reset the active chat while the pending
		// reply still has a persistence step to run.
		if !m.session.Busy() && m.history.Len() > 0 {
			m.confirmingDelete = true
		}
		return m, nil

	case "ctrl+f":
		if !m.session.Busy() {
			m.attaching = true
			m.fileInput.SetValue("")
			m.fileInput.Focus()
			m.composer.Blur()
		}
		return m, nil

	case "ctrl+x":
		m.session.ClearAttachment()
		return m, nil
	}

	if m.focus == focusSidebar {
		return m.handleSidebarKey(msg)
	}

	if msg.Type == tea.KeyEnter {
		return m, m.submit()
	}

	var cmd tea.Cmd
	m.composer, cmd = m.composer.Update(msg)
	return m, cmd
}

func (m *Model) handleAttachKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		path := strings.TrimSpace(m.fileInput.Value())
		m.attaching = false
		m.focusComposer()
		if path == "" {
			return m, nil
		}
		a, err := m.readFile(path)
		if err != nil {
			m.statusErr = "failed to attach: " + err.Error()
			return m, nil
		}
		m.statusErr = ""
		m.session.SetAttachment(a)
		return m, nil

	case tea.KeyEsc:
		m.attaching = false
		m.focusComposer()
		return m, nil
	}

	var cmd tea.Cmd
	m.fileInput, cmd = m.fileInput.Update(msg)
	return m, cmd
}

func (m *Model) handleSidebarKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	chats := m.history.Chats()

	switch msg.String() {
	case "up", "k":
		if m.sidebarIndex > 0 {
			m.sidebarIndex--
		}
	case "down", "j":
		if m.sidebarIndex < len(chats)-1 {
			m.sidebarIndex++
		}
	case "enter":
		if m.sidebarIndex < len(chats) {
			cmd := m.openChat(chats[m.sidebarIndex].ID)
			m.focusComposer()
			return m, cmd
		}
	}
	return m, nil
}

// submit starts one turn: the user's message lands in the transcript before
// any network call, then the session persists it and calls the relay.
func (m *Model) submit() tea.Cmd {
	prompt := strings.TrimSpace(m.composer.Value())
	if prompt == "" || m.session.Busy() {
		return nil
	}

	var attachmentLabel string
	if a := m.session.Attachment(); a != nil {
		attachmentLabel = a.Label()
	}

	m.entries = append(m.entries,
		entry{role: domain.MessageRoleUser, content: prompt, attachment: attachmentLabel},
		entry{role: domain.MessageRoleAssistant, content: "Just a sec...", loading: true},
	)
	m.composer.Reset()
	m.statusErr = ""
	m.refreshTranscript()
	m.transcript.GotoBottom()

	return tea.Batch(m.spin.Tick, m.submitTurn(prompt))
}

// stopResponse aborts the in-flight turn: the relay call is cancelled and the
// reveal halts at its current position. The persisted user message stays.
func (m *Model) stopResponse() {
	m.session.Cancel()
	if m.reveal != nil {
		if le := m.loadingEntry(); le != nil {
			le.loading = false
		}
		m.reveal = nil
	}
	m.refreshTranscript()
}

func (m *Model) startNewChat() {
	if m.session.Busy() {
		return
	}
	m.session.Reset()
	m.entries = nil
	m.statusErr = ""
	m.refreshTranscript()
	m.focusComposer()
}

// openChat switches the transcript to another chat. Re-selecting the active
// one is a no-op; the history cache serves the messages, with a one-shot
// store read as fallback.
func (m *Model) openChat(chatID string) tea.Cmd {
	if m.session.Busy() {
		return nil
	}
	if !m.session.Activate(chatID) {
		return nil
	}

	m.statusErr = ""
	if chat, ok := m.history.Get(chatID); ok {
		m.setEntriesFromChat(chat)
		m.refreshTranscript()
		m.transcript.GotoBottom()
		return nil
	}
	return m.loadChatFromStore(chatID)
}

func (m *Model) toggleTheme() tea.Cmd {
	m.theme = m.theme.Toggle()
	m.styles = newStyles(m.theme)
	m.mdRenderer = nil
	m.rerenderAssistantEntries()
	m.refreshTranscript()
	return m.persistTheme()
}

func (m *Model) focusComposer() {
	m.focus = focusComposer
	m.fileInput.Blur()
	m.composer.Focus()
}

func (m *Model) clampSidebarIndex() {
	if n := m.history.Len(); m.sidebarIndex >= n {
		m.sidebarIndex = maxInt(n-1, 0)
	}
}

func (m *Model) routeToFocused(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	if m.attaching {
		m.fileInput, cmd = m.fileInput.Update(msg)
		return m, cmd
	}
	m.composer, cmd = m.composer.Update(msg)
	return m, cmd
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
