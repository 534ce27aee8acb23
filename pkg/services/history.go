package services

import (
	"sync"

	"github.com/mpetrov/chatgpt-tui-client/pkg/domain"
)

// historyService caches the user's chat list. The live subscription delivers
// full snapshots; each one replaces the cache wholesale — no diffing. The
// cache is read-only from the UI's point of view: writes always go through
// the store, never through here.
type historyService struct {
	mu    sync.RWMutex
	chats []domain.Chat
}

func NewHistoryService() *historyService {
	return &historyService{}
}

func (h *historyService) Replace(chats []domain.Chat) {
	h.mu.Lock()
	h.chats = chats
	h.mu.Unlock()
}

func (h *historyService) Chats() []domain.Chat {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]domain.Chat, len(h.chats))
	copy(out, h.chats)
	return out
}

func (h *historyService) Get(chatID string) (*domain.Chat, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for i := range h.chats {
		if h.chats[i].ID == chatID {
			chat := h.chats[i]
			return &chat, true
		}
	}
	return nil, false
}

func (h *historyService) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.chats)
}
