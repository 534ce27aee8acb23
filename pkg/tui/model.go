package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/mpetrov/chatgpt-tui-client/pkg/domain"
)

type Session interface {
	Submit(ctx context.Context, prompt string) (string, error)
	FinishTurn(ctx context.Context, reply string) error
	Cancel()
	Busy() bool
	ActiveChatID() string
	Activate(chatID string) bool
	Reset()
	DeleteAllChats(ctx context.Context) error
	SetAttachment(a *domain.Attachment)
	Attachment() *domain.Attachment
	ClearAttachment()
}

type History interface {
	Replace(chats []domain.Chat)
	Chats() []domain.Chat
	Get(chatID string) (*domain.Chat, bool)
	Len() int
}

type ChatLoader interface {
	Get(ctx context.Context, userID, chatID string) (*domain.Chat, error)
}

type AttachmentReader func(path string) (*domain.Attachment, error)

type Preferences interface {
	Theme() domain.Theme
	SetTheme(theme domain.Theme) error
}

// SnapshotMsg carries a full chat-list snapshot from the live subscription.
type SnapshotMsg []domain.Chat

type (
	replyMsg          struct{ text string }
	turnErrorMsg      struct{ err error }
	turnStoppedMsg    struct{}
	assistantSavedMsg struct{ err error }
	revealTickMsg     struct{}
	chatLoadedMsg     struct {
		chat *domain.Chat
		err  error
	}
	chatsDeletedMsg struct{ err error }
)

type focusArea int

const (
	focusComposer focusArea = iota
	focusSidebar
)

// entry is one rendered transcript element.
type entry struct {
	role       string
	content    string
	attachment string // label shown under a user message
	loading    bool
	failed     bool
	stopped    bool
	rendered   string // cached markdown render for completed assistant replies
}

var welcomeSuggestions = []string{
	"Explain how a binary search works",
	"Draft a polite follow-up email",
	"Suggest a weekend trip near the sea",
	"Summarize the plot of Hamlet in one paragraph",
}

// Model is the terminal chat client: sidebar with chat history on the left,
// transcript and composer on the right. All state transitions run through
// Update — background workers only reach the model via messages.
type Model struct {
	ctx      context.Context
	session  Session
	history  History
	loader   ChatLoader
	prefs    Preferences
	readFile AttachmentReader
	userID   string

	composer   textarea.Model
	transcript viewport.Model
	spin       spinner.Model
	fileInput  textinput.Model

	entries []entry
	reveal  *reveal

	theme      domain.Theme
	styles     styles
	mdRenderer *glamour.TermRenderer

	focus            focusArea
	sidebarIndex     int
	confirmingDelete bool
	attaching        bool
	statusErr        string

	width  int
	height int
	ready  bool
}

func New(
	ctx context.Context,
	session Session,
	history History,
	loader ChatLoader,
	prefs Preferences,
	readFile AttachmentReader,
	userID string,
) *Model {
	composer := textarea.New()
	composer.Placeholder = "Ask anything..."
	composer.Prompt = "> "
	composer.SetHeight(1)
	composer.ShowLineNumbers = false
	composer.Focus()

	fileInput := textinput.New()
	fileInput.Placeholder = "path to file"
	fileInput.Prompt = "attach: "

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	theme := prefs.Theme()

	return &Model{
		ctx:       ctx,
		session:   session,
		history:   history,
		loader:    loader,
		prefs:     prefs,
		readFile:  readFile,
		userID:    userID,
		composer:  composer,
		fileInput: fileInput,
		spin:      spin,
		theme:     theme,
		styles:    newStyles(theme),
	}
}

func (m *Model) Init() tea.Cmd {
	return textarea.Blink
}

// activeChat resolves the active chat's summary from the history cache.
func (m *Model) activeChat() (*domain.Chat, bool) {
	id := m.session.ActiveChatID()
	if id == "" {
		return nil, false
	}
	return m.history.Get(id)
}

func (m *Model) setEntriesFromChat(chat *domain.Chat) {
	entries := make([]entry, 0, len(chat.Messages))
	for _, msg := range chat.Messages {
		e := entry{role: msg.Role, content: msg.Content}
		if msg.Role == domain.MessageRoleAssistant {
			e.rendered = m.renderMarkdown(msg.Content)
		}
		entries = append(entries, e)
	}
	m.entries = entries
}

// loadingEntry returns the transcript's pending assistant element, if any.
func (m *Model) loadingEntry() *entry {
	for i := len(m.entries) - 1; i >= 0; i-- {
		if m.entries[i].loading {
			return &m.entries[i]
		}
	}
	return nil
}
