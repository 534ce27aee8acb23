package workers

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"

	"github.com/mpetrov/chatgpt-tui-client/pkg/domain"
	"github.com/mpetrov/chatgpt-tui-client/pkg/logger"
)

// notifyChannel carries one notification per chat row change; the payload is
// the owning user id. Set up by the chats table trigger.
const notifyChannel = "chat_events"

type ChatLister interface {
	List(ctx context.Context, userID string) ([]domain.Chat, error)
}

// chatFeed is the live subscription to the user's chat list. On start and on
// every relevant notification it reloads the full list and pushes it into
// snapshotCh wholesale — consumers replace their cache, they never diff.
type chatFeed struct {
	db         *bun.DB
	chats      ChatLister
	userID     string
	snapshotCh chan<- []domain.Chat
}

func NewChatFeed(db *bun.DB, chats ChatLister, userID string, snapshotCh chan<- []domain.Chat) *chatFeed {
	return &chatFeed{
		db:         db,
		chats:      chats,
		userID:     userID,
		snapshotCh: snapshotCh,
	}
}

func (c *chatFeed) Name() string { return "chat_feed" }

func (c *chatFeed) Run(ctx context.Context) error {
	slog.Info("Starting worker", "name", c.Name())
	defer slog.Info("Worker stopped", "name", c.Name())

	ln := pgdriver.NewListener(c.db)
	if err := ln.Listen(ctx, notifyChannel); err != nil {
		return fmt.Errorf("listening on %s: %w", notifyChannel, err)
	}
	defer ln.Close()

	c.publishSnapshot(ctx)

	notifications := ln.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case notification, ok := <-notifications:
			if !ok {
				return nil
			}
			if notification.Payload != c.userID {
				continue
			}
			c.publishSnapshot(ctx)
		}
	}
}

// publishSnapshot is best-effort: a failed reload keeps the previous snapshot
// on screen instead of surfacing an error.
func (c *chatFeed) publishSnapshot(ctx context.Context) {
	chats, err := c.chats.List(ctx, c.userID)
	if err != nil {
		slog.ErrorContext(ctx, "loading chat history snapshot", logger.Err(err))
		return
	}

	select {
	case c.snapshotCh <- chats:
	case <-ctx.Done():
	}
}
