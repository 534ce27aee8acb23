package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/samber/lo"

	"github.com/mpetrov/chatgpt-tui-client/pkg/domain"
	"github.com/mpetrov/chatgpt-tui-client/pkg/logger"
)

type ChatsRepository interface {
	AppendMessage(ctx context.Context, userID, chatID string, msg domain.Message) (string, error)
	DeleteAll(ctx context.Context, userID string) error
}

type CompletionClient interface {
	GenerateResponse(ctx context.Context, prompt string) (string, error)
}

// sessionService owns the transient state of the chat session: the active
// chat id (empty means an unsaved new chat), the staged attachment, and the
// single in-flight turn with its cancellation handle.
type sessionService struct {
	chatsRepo   ChatsRepository
	completions CompletionClient
	userID      string

	mu           sync.Mutex
	activeChatID string
	attachment   *domain.Attachment
	busy         bool
	cancelFn     context.CancelFunc
}

func NewSessionService(chatsRepo ChatsRepository, completions CompletionClient, userID string) *sessionService {
	return &sessionService{
		chatsRepo:   chatsRepo,
		completions: completions,
		userID:      userID,
	}
}

// Submit runs one user turn up to the point where the full reply text is
// available. The user message is persisted before the completion request is
// issued; a new chat is allocated (and its title derived) when none is
// active. The session stays busy after a successful return — the caller
// reveals the reply and then calls FinishTurn.
//
// Persistence of the user message is best-effort: a store failure is logged
// and the turn continues.
func (s *sessionService) Submit(ctx context.Context, prompt string) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", domain.ErrEmptyPrompt
	}

	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return "", domain.ErrTurnInProgress
	}
	s.busy = true
	genCtx, cancelFn := context.WithCancel(ctx)
	s.cancelFn = cancelFn
	chatID := s.activeChatID
	s.mu.Unlock()

	slog.InfoContext(ctx, "Submitting turn", "chatID", chatID, "promptLength", len(prompt))

	userMessage := domain.Message{Role: domain.MessageRoleUser, Content: prompt}
	id, err := s.chatsRepo.AppendMessage(ctx, s.userID, chatID, userMessage)
	if err != nil {
		slog.ErrorContext(ctx, "saving user message", logger.Err(err))
	} else {
		s.mu.Lock()
		s.activeChatID = id
		s.mu.Unlock()
	}

	reply, err := s.completions.GenerateResponse(genCtx, prompt)
	if err != nil {
		s.endTurn()
		if errors.Is(err, context.Canceled) {
			return "", domain.ErrGenerationStopped
		}
		return "", fmt.Errorf("generating response: %w", err)
	}

	return lo.Ternary(reply == "", "No response received.", reply), nil
}

// FinishTurn persists the assistant reply and returns the session to idle.
// Called once the progressive reveal has run to completion — a turn cancelled
// mid-reveal never reaches it, so the chat keeps no partial assistant message.
func (s *sessionService) FinishTurn(ctx context.Context, reply string) error {
	s.mu.Lock()
	chatID := s.activeChatID
	s.mu.Unlock()

	assistantMessage := domain.Message{Role: domain.MessageRoleAssistant, Content: reply}
	id, err := s.chatsRepo.AppendMessage(ctx, s.userID, chatID, assistantMessage)
	s.endTurn()
	if err != nil {
		return fmt.Errorf("saving assistant message: %w", err)
	}

	s.mu.Lock()
	s.activeChatID = id
	s.mu.Unlock()
	return nil
}

// Cancel aborts the in-flight completion call and returns the session to
// idle. The already-persisted user message is not rolled back.
func (s *sessionService) Cancel() {
	s.mu.Lock()
	if s.cancelFn != nil {
		s.cancelFn()
		s.cancelFn = nil
	}
	s.busy = false
	s.attachment = nil
	s.mu.Unlock()
}

// endTurn returns the session to idle and releases the turn's cancel
// context so it does not stay registered on the root context.
func (s *sessionService) endTurn() {
	s.mu.Lock()
	if s.cancelFn != nil {
		s.cancelFn()
		s.cancelFn = nil
	}
	s.busy = false
	s.attachment = nil
	s.mu.Unlock()
}

func (s *sessionService) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

func (s *sessionService) ActiveChatID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeChatID
}

// Activate switches the session to chatID. Re-activating the current chat is
// a no-op and reports false so callers skip re-rendering.
func (s *sessionService) Activate(chatID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.activeChatID == chatID {
		return false
	}
	s.activeChatID = chatID
	return true
}

// Reset returns the session to the unsaved-new-chat state.
func (s *sessionService) Reset() {
	s.mu.Lock()
	s.activeChatID = ""
	s.mu.Unlock()
}

// DeleteAllChats removes every chat belonging to the user and resets the
// session. The caller is responsible for confirming first.
func (s *sessionService) DeleteAllChats(ctx context.Context) error {
	if err := s.chatsRepo.DeleteAll(ctx, s.userID); err != nil {
		return fmt.Errorf("deleting chats: %w", err)
	}
	s.Reset()
	return nil
}

func (s *sessionService) SetAttachment(a *domain.Attachment) {
	s.mu.Lock()
	s.attachment = a
	s.mu.Unlock()
}

func (s *sessionService) Attachment() *domain.Attachment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attachment
}

func (s *sessionService) ClearAttachment() {
	s.mu.Lock()
	s.attachment = nil
	s.mu.Unlock()
}
