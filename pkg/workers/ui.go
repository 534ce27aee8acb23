package workers

import (
	"context"
	"fmt"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mpetrov/chatgpt-tui-client/pkg/domain"
	"github.com/mpetrov/chatgpt-tui-client/pkg/tui"
)

// ui runs the terminal interface and forwards chat list snapshots into it.
// When the program exits the whole group shuts down.
type ui struct {
	program    *tea.Program
	snapshotCh <-chan []domain.Chat
}

func NewUI(model tea.Model, snapshotCh <-chan []domain.Chat) *ui {
	return &ui{
		program:    tea.NewProgram(model, tea.WithAltScreen()),
		snapshotCh: snapshotCh,
	}
}

func (u *ui) Name() string { return "ui" }

func (u *ui) Run(ctx context.Context) error {
	slog.Info("Starting worker", "name", u.Name())
	defer slog.Info("Worker stopped", "name", u.Name())

	go func() {
		for {
			select {
			case <-ctx.Done():
				u.program.Quit()
				return
			case chats := <-u.snapshotCh:
				u.program.Send(tui.SnapshotMsg(chats))
			}
		}
	}()

	if _, err := u.program.Run(); err != nil {
		return fmt.Errorf("running program: %w", err)
	}
	return nil
}
