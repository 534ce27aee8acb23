package tui

import (
	"errors"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mpetrov/chatgpt-tui-client/pkg/domain"
	"github.com/mpetrov/chatgpt-tui-client/pkg/logger"
)

// submitTurn runs the blocking half of a turn off the update loop: persist
// the user message, call the relay, report back as a message.
func (m *Model) submitTurn(prompt string) tea.Cmd {
	return func() tea.Msg {
		reply, err := m.session.Submit(m.ctx, prompt)
		switch {
		case errors.Is(err, domain.ErrGenerationStopped):
			return turnStoppedMsg{}
		case errors.Is(err, domain.ErrEmptyPrompt), errors.Is(err, domain.ErrTurnInProgress):
			// Both are guarded in submit; a race here is harmless.
			return nil
		case err != nil:
			return turnErrorMsg{err: err}
		}
		return replyMsg{text: reply}
	}
}

// finishTurn persists the assistant reply once the reveal has played out.
func (m *Model) finishTurn(reply string) tea.Cmd {
	return func() tea.Msg {
		return assistantSavedMsg{err: m.session.FinishTurn(m.ctx, reply)}
	}
}

func revealTick() tea.Cmd {
	return tea.Tick(revealInterval, func(time.Time) tea.Msg {
		return revealTickMsg{}
	})
}

func (m *Model) loadChatFromStore(chatID string) tea.Cmd {
	return func() tea.Msg {
		chat, err := m.loader.Get(m.ctx, m.userID, chatID)
		return chatLoadedMsg{chat: chat, err: err}
	}
}

func (m *Model) deleteAllChats() tea.Cmd {
	return func() tea.Msg {
		return chatsDeletedMsg{err: m.session.DeleteAllChats(m.ctx)}
	}
}

func (m *Model) persistTheme() tea.Cmd {
	theme := m.theme
	return func() tea.Msg {
		if err := m.prefs.SetTheme(theme); err != nil {
			slog.Warn("failed to persist theme", "theme", theme, logger.Err(err))
		}
		return nil
	}
}
