package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpetrov/chatgpt-tui-client/pkg/domain"
)

type fakeSession struct {
	busy        bool
	activeID    string
	submitReply string
	submitErr   error
	finished    []string
	cancelled   bool
	deleted     bool
	attachment  *domain.Attachment
}

func (f *fakeSession) Submit(_ context.Context, _ string) (string, error) {
	if f.submitErr != nil {
		return "", f.submitErr
	}
	return f.submitReply, nil
}

func (f *fakeSession) FinishTurn(_ context.Context, reply string) error {
	f.finished = append(f.finished, reply)
	f.busy = false
	return nil
}

func (f *fakeSession) Cancel() {
	f.cancelled = true
	f.busy = false
	f.attachment = nil
}

func (f *fakeSession) Busy() bool           { return f.busy }
func (f *fakeSession) ActiveChatID() string { return f.activeID }

func (f *fakeSession) Activate(chatID string) bool {
	if chatID == f.activeID {
		return false
	}
	f.activeID = chatID
	return true
}

func (f *fakeSession) Reset() { f.activeID = "" }

func (f *fakeSession) DeleteAllChats(context.Context) error {
	f.deleted = true
	f.activeID = ""
	return nil
}

func (f *fakeSession) SetAttachment(a *domain.Attachment) { f.attachment = a }
func (f *fakeSession) Attachment() *domain.Attachment     { return f.attachment }
func (f *fakeSession) ClearAttachment()                   { f.attachment = nil }

type fakeLoader struct {
	calls []string
	chat  *domain.Chat
}

func (f *fakeLoader) Get(_ context.Context, _, chatID string) (*domain.Chat, error) {
	f.calls = append(f.calls, chatID)
	if f.chat == nil {
		return nil, domain.ErrNotFound
	}
	return f.chat, nil
}

type fakePrefs struct{ theme domain.Theme }

func (f *fakePrefs) Theme() domain.Theme { return f.theme }
func (f *fakePrefs) SetTheme(theme domain.Theme) error {
	f.theme = theme
	return nil
}

type fakeHistory struct{ chats []domain.Chat }

func (f *fakeHistory) Replace(chats []domain.Chat) { f.chats = chats }
func (f *fakeHistory) Chats() []domain.Chat        { return f.chats }
func (f *fakeHistory) Len() int                    { return len(f.chats) }

func (f *fakeHistory) Get(chatID string) (*domain.Chat, bool) {
	for i := range f.chats {
		if f.chats[i].ID == chatID {
			return &f.chats[i], true
		}
	}
	return nil, false
}

func newTestModel(session *fakeSession, history *fakeHistory, loader *fakeLoader) *Model {
	m := New(
		context.Background(),
		session,
		history,
		loader,
		&fakePrefs{theme: domain.ThemeDark},
		func(string) (*domain.Attachment, error) { return nil, errors.New("no files in tests") },
		"user-1",
	)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return m
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestSubmitShowsUserMessageBeforeNetworkCall(t *testing.T) {
	session := &fakeSession{}
	m := newTestModel(session, &fakeHistory{}, &fakeLoader{})

	m.composer.SetValue("hello there")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	// The transcript already holds the prompt and a pending reply slot even
	// though the returned command has not run yet.
	require.Len(t, m.entries, 2)
	assert.Equal(t, domain.MessageRoleUser, m.entries[0].role)
	assert.Equal(t, "hello there", m.entries[0].content)
	assert.True(t, m.entries[1].loading)
	assert.Empty(t, m.composer.Value())
	assert.NotNil(t, cmd)
}

func TestSubmitIgnoredWhileTurnInProgress(t *testing.T) {
	session := &fakeSession{busy: true}
	m := newTestModel(session, &fakeHistory{}, &fakeLoader{})

	m.composer.SetValue("second prompt")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Nil(t, cmd)
	assert.Empty(t, m.entries)
}

func TestSubmitIgnoresBlankPrompt(t *testing.T) {
	m := newTestModel(&fakeSession{}, &fakeHistory{}, &fakeLoader{})

	m.composer.SetValue("   ")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Nil(t, cmd)
	assert.Empty(t, m.entries)
}

func TestRevealCompletionPersistsAssistantReply(t *testing.T) {
	session := &fakeSession{busy: true}
	m := newTestModel(session, &fakeHistory{}, &fakeLoader{})
	m.entries = []entry{
		{role: domain.MessageRoleUser, content: "hi"},
		{role: domain.MessageRoleAssistant, content: "Just a sec...", loading: true},
	}

	m.Update(replyMsg{text: "one two"})

	_, cmd := m.Update(revealTickMsg{})
	require.NotNil(t, cmd)
	assert.Equal(t, "one", m.entries[1].content)
	assert.True(t, m.entries[1].loading)

	_, cmd = m.Update(revealTickMsg{})
	require.NotNil(t, cmd)
	assert.False(t, m.entries[1].loading)

	// The command returned at completion is the persistence step.
	msg := cmd()
	saved, ok := msg.(assistantSavedMsg)
	require.True(t, ok, "completion command should persist the reply, got %T", msg)
	assert.NoError(t, saved.err)
	assert.Equal(t, []string{"one two"}, session.finished)
}

func TestEscCancelsPendingTurn(t *testing.T) {
	session := &fakeSession{busy: true}
	m := newTestModel(session, &fakeHistory{}, &fakeLoader{})
	m.entries = []entry{
		{role: domain.MessageRoleUser, content: "hi"},
		{role: domain.MessageRoleAssistant, content: "Just a sec...", loading: true},
	}

	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.True(t, session.cancelled)

	m.Update(turnStoppedMsg{})
	assert.Equal(t, domain.GenerationStoppedMessage, m.entries[1].content)
	assert.True(t, m.entries[1].stopped)
	assert.False(t, m.entries[1].loading)
}

func TestRelayErrorSurfacesInTranscript(t *testing.T) {
	m := newTestModel(&fakeSession{}, &fakeHistory{}, &fakeLoader{})
	m.entries = []entry{
		{role: domain.MessageRoleUser, content: "hi"},
		{role: domain.MessageRoleAssistant, content: "Just a sec...", loading: true},
	}

	m.Update(turnErrorMsg{err: errors.New("relay returned status 500: quota exceeded")})

	assert.True(t, m.entries[1].failed)
	assert.False(t, m.entries[1].loading)
	assert.Contains(t, m.entries[1].content, "quota exceeded")
}

func TestDeleteAllRequiresConfirmation(t *testing.T) {
	session := &fakeSession{}
	history := &fakeHistory{chats: []domain.Chat{{ID: "c1", Title: "First"}}}
	m := newTestModel(session, history, &fakeLoader{})

	m.Update(tea.KeyMsg{Type: tea.KeyCtrlD})
	require.True(t, m.confirmingDelete)

	m.Update(keyRunes("n"))
	assert.False(t, m.confirmingDelete)
	assert.False(t, session.deleted)

	m.Update(tea.KeyMsg{Type: tea.KeyCtrlD})
	_, cmd := m.Update(keyRunes("y"))
	require.NotNil(t, cmd)

	msg := cmd()
	m.Update(msg)
	assert.True(t, session.deleted)
	assert.Empty(t, m.entries)
}

func TestDeleteAllIgnoredWhileTurnInProgress(t *testing.T) {
	session := &fakeSession{busy: true, activeID: "c1"}
	history := &fakeHistory{chats: []domain.Chat{{ID: "c1", Title: "First"}}}
	m := newTestModel(session, history, &fakeLoader{})
	m.entries = []entry{
		{role: domain.MessageRoleUser, content: "hi"},
		{role: domain.MessageRoleAssistant, content: "Just a sec...", loading: true},
	}

	m.Update(tea.KeyMsg{Type: tea.KeyCtrlD})

	// Deleting here would clear the active chat id; the pending reply would
	// then be persisted as the first message of a fresh chat, deriving its
	// title from assistant content.
	assert.False(t, m.confirmingDelete)
	assert.False(t, session.deleted)
	assert.Equal(t, "c1", session.activeID)
}

func TestOpenChatIsNoOpForActiveChat(t *testing.T) {
	session := &fakeSession{activeID: "c1"}
	loader := &fakeLoader{}
	history := &fakeHistory{chats: []domain.Chat{{ID: "c1", Title: "First"}}}
	m := newTestModel(session, history, loader)
	m.entries = []entry{{role: domain.MessageRoleUser, content: "kept"}}

	cmd := m.openChat("c1")

	assert.Nil(t, cmd)
	assert.Empty(t, loader.calls)
	assert.Equal(t, "kept", m.entries[0].content)
}

func TestOpenChatServesFromHistoryCache(t *testing.T) {
	session := &fakeSession{}
	loader := &fakeLoader{}
	history := &fakeHistory{chats: []domain.Chat{{
		ID:    "c2",
		Title: "Cached",
		Messages: []domain.Message{
			{Role: domain.MessageRoleUser, Content: "question"},
			{Role: domain.MessageRoleAssistant, Content: "answer"},
		},
	}}}
	m := newTestModel(session, history, loader)

	cmd := m.openChat("c2")

	assert.Nil(t, cmd)
	assert.Empty(t, loader.calls, "cache hit should not touch the store")
	require.Len(t, m.entries, 2)
	assert.Equal(t, "question", m.entries[0].content)
	assert.Equal(t, "c2", session.activeID)
}

func TestSnapshotReplacesHistoryWholesale(t *testing.T) {
	history := &fakeHistory{chats: []domain.Chat{{ID: "old"}}}
	m := newTestModel(&fakeSession{}, history, &fakeLoader{})
	m.sidebarIndex = 3

	m.Update(SnapshotMsg{{ID: "a"}, {ID: "b"}})

	assert.Equal(t, []domain.Chat{{ID: "a"}, {ID: "b"}}, history.chats)
	assert.Equal(t, 1, m.sidebarIndex, "selection clamps to the new list")
}

func TestThemeToggleIsPersisted(t *testing.T) {
	prefs := &fakePrefs{theme: domain.ThemeDark}
	m := New(
		context.Background(),
		&fakeSession{},
		&fakeHistory{},
		&fakeLoader{},
		prefs,
		func(string) (*domain.Attachment, error) { return nil, errors.New("no files") },
		"user-1",
	)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlT})
	require.NotNil(t, cmd)
	cmd()

	assert.Equal(t, domain.ThemeLight, m.theme)
	assert.Equal(t, domain.ThemeLight, prefs.theme)
}
