package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/mpetrov/chatgpt-tui-client/pkg/domain"
)

// chatsRepository persists whole chat documents: one row per chat, messages
// marshaled as a JSON array. Rows are scoped by (app_id, user_id) so several
// deployments can share one database.
type chatsRepository struct {
	db    *bun.DB
	appID string
}

func NewChatsRepository(db *bun.DB, appID string) *chatsRepository {
	return &chatsRepository{db: db, appID: appID}
}

// AppendMessage appends msg to the chat's message sequence and bumps
// updated_at. An empty chatID allocates a new chat: the store assigns the id
// and the title is derived from the message content, exactly once.
//
// The read-append-write is not wrapped in a transaction. Two clients writing
// to the same chat concurrently could lose an update; a chat has a single
// writer in practice, so the window is accepted.
func (r *chatsRepository) AppendMessage(ctx context.Context, userID, chatID string, msg domain.Message) (string, error) {
	if chatID == "" {
		return r.createChat(ctx, userID, msg)
	}

	const selectQuery = `
		SELECT messages
		FROM chats
		WHERE app_id = $1 AND user_id = $2 AND id = $3
	`

	var messagesJSON []byte
	err := r.db.QueryRowContext(ctx, selectQuery, r.appID, userID, chatID).Scan(&messagesJSON)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", domain.ErrNotFound
		}
		return "", fmt.Errorf("fetching chat messages: %w", err)
	}

	var messages []domain.Message
	if err := json.Unmarshal(messagesJSON, &messages); err != nil {
		return "", fmt.Errorf("unmarshaling messages: %w", err)
	}
	messages = append(messages, msg)

	updated, err := json.Marshal(messages)
	if err != nil {
		return "", fmt.Errorf("marshaling messages: %w", err)
	}

	const updateQuery = `
		UPDATE chats
		SET messages = $4, updated_at = now()
		WHERE app_id = $1 AND user_id = $2 AND id = $3
	`

	if _, err := r.db.ExecContext(ctx, updateQuery, r.appID, userID, chatID, updated); err != nil {
		return "", fmt.Errorf("updating chat: %w", err)
	}

	return chatID, nil
}

func (r *chatsRepository) createChat(ctx context.Context, userID string, msg domain.Message) (string, error) {
	messages, err := json.Marshal([]domain.Message{msg})
	if err != nil {
		return "", fmt.Errorf("marshaling messages: %w", err)
	}

	const query = `
		INSERT INTO chats (app_id, user_id, title, messages)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	var id string
	if err := r.db.QueryRowContext(ctx, query, r.appID, userID, domain.DeriveTitle(msg.Content), messages).Scan(&id); err != nil {
		return "", fmt.Errorf("creating chat: %w", err)
	}

	return id, nil
}

// List returns the user's chats, most recently updated first.
func (r *chatsRepository) List(ctx context.Context, userID string) ([]domain.Chat, error) {
	const query = `
		SELECT id, title, messages, updated_at
		FROM chats
		WHERE app_id = $1 AND user_id = $2
		ORDER BY updated_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, r.appID, userID)
	if err != nil {
		return nil, fmt.Errorf("querying chats: %w", err)
	}
	defer rows.Close()

	var chats []domain.Chat
	for rows.Next() {
		chat, err := scanChat(rows)
		if err != nil {
			return nil, err
		}
		chats = append(chats, *chat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chat rows: %w", err)
	}

	return chats, nil
}

// Get is a one-shot read of a single chat.
func (r *chatsRepository) Get(ctx context.Context, userID, chatID string) (*domain.Chat, error) {
	const query = `
		SELECT id, title, messages, updated_at
		FROM chats
		WHERE app_id = $1 AND user_id = $2 AND id = $3
	`

	row := r.db.QueryRowContext(ctx, query, r.appID, userID, chatID)
	chat, err := scanChat(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	return chat, nil
}

// DeleteAll removes every chat belonging to the user. Irreversible.
func (r *chatsRepository) DeleteAll(ctx context.Context, userID string) error {
	const query = `
		DELETE FROM chats
		WHERE app_id = $1 AND user_id = $2
	`

	if _, err := r.db.ExecContext(ctx, query, r.appID, userID); err != nil {
		return fmt.Errorf("deleting chats: %w", err)
	}

	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanChat(row scannable) (*domain.Chat, error) {
	var chat domain.Chat
	var messagesJSON []byte
	if err := row.Scan(&chat.ID, &chat.Title, &messagesJSON, &chat.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning chat row: %w", err)
	}
	if err := json.Unmarshal(messagesJSON, &chat.Messages); err != nil {
		return nil, fmt.Errorf("unmarshaling messages: %w", err)
	}
	return &chat, nil
}
