package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpetrov/chatgpt-tui-client/pkg/domain"
)

type callLog struct {
	mu    sync.Mutex
	calls []string
}

func (l *callLog) add(call string) {
	l.mu.Lock()
	l.calls = append(l.calls, call)
	l.mu.Unlock()
}

func (l *callLog) all() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.calls...)
}

type fakeChatsRepository struct {
	log       *callLog
	appendErr error
	messages  []domain.Message
}

func (f *fakeChatsRepository) AppendMessage(_ context.Context, _, chatID string, msg domain.Message) (string, error) {
	f.log.add("append:" + msg.Role)
	if f.appendErr != nil {
		return "", f.appendErr
	}
	f.messages = append(f.messages, msg)
	if chatID == "" {
		return "chat-1", nil
	}
	return chatID, nil
}

func (f *fakeChatsRepository) DeleteAll(context.Context, string) error {
	f.log.add("deleteAll")
	f.messages = nil
	return nil
}

type fakeCompletions struct {
	log   *callLog
	reply string
	err   error
	block bool
	ctx   context.Context
}

func (f *fakeCompletions) GenerateResponse(ctx context.Context, _ string) (string, error) {
	f.log.add("generate")
	f.ctx = ctx
	if f.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return f.reply, f.err
}

func newTestSession(repo *fakeChatsRepository, completions *fakeCompletions) *sessionService {
	return NewSessionService(repo, completions, "user-1")
}

func waitForCalls(t *testing.T, log *callLog, n int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for len(log.all()) < n {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %d calls, got %v", n, log.all())
		}
		time.Sleep(time.Millisecond)
	}
}

func TestSubmitPersistsUserMessageBeforeCompletionCall(t *testing.T) {
	log := &callLog{}
	repo := &fakeChatsRepository{log: log}
	completions := &fakeCompletions{log: log, reply: "hi"}
	s := newTestSession(repo, completions)

	reply, err := s.Submit(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "hi", reply)
	assert.Equal(t, []string{"append:user", "generate"}, log.all())
	assert.Equal(t, "chat-1", s.ActiveChatID(), "a new chat id is adopted on first write")
	assert.True(t, s.Busy(), "session stays busy until the reveal finishes")
}

func TestSubmitRejectsEmptyPrompt(t *testing.T) {
	log := &callLog{}
	s := newTestSession(&fakeChatsRepository{log: log}, &fakeCompletions{log: log})

	_, err := s.Submit(context.Background(), "   \n\t")
	assert.ErrorIs(t, err, domain.ErrEmptyPrompt)
	assert.Empty(t, log.all())
}

func TestSubmitSingleFlight(t *testing.T) {
	log := &callLog{}
	repo := &fakeChatsRepository{log: log}
	completions := &fakeCompletions{log: log, block: true}
	s := newTestSession(repo, completions)

	firstDone := make(chan error, 1)
	go func() {
		_, err := s.Submit(context.Background(), "first")
		firstDone <- err
	}()

	// Wait for the first turn to reach the completion call.
	waitForCalls(t, log, 2)

	_, err := s.Submit(context.Background(), "second")
	assert.ErrorIs(t, err, domain.ErrTurnInProgress)

	s.Cancel()
	assert.ErrorIs(t, <-firstDone, domain.ErrGenerationStopped)
	assert.Equal(t, []string{"append:user", "generate"}, log.all(), "the second submit had no observable effect")
}

func TestCancelLeavesNoAssistantMessage(t *testing.T) {
	log := &callLog{}
	repo := &fakeChatsRepository{log: log}
	completions := &fakeCompletions{log: log, block: true}
	s := newTestSession(repo, completions)
	s.SetAttachment(&domain.Attachment{FileName: "notes.txt"})

	done := make(chan error, 1)
	go func() {
		_, err := s.Submit(context.Background(), "hello")
		done <- err
	}()
	waitForCalls(t, log, 2)

	s.Cancel()

	assert.ErrorIs(t, <-done, domain.ErrGenerationStopped)
	assert.False(t, s.Busy())
	assert.Nil(t, s.Attachment(), "attachment is cleared on cancellation")
	require.Len(t, repo.messages, 1)
	assert.Equal(t, domain.MessageRoleUser, repo.messages[0].Role, "the persisted user message is not rolled back")
}

func TestFinishTurnPersistsAssistantAndIdles(t *testing.T) {
	log := &callLog{}
	repo := &fakeChatsRepository{log: log}
	s := newTestSession(repo, &fakeCompletions{log: log, reply: "sure"})
	s.SetAttachment(&domain.Attachment{FileName: "cat.png", IsImage: true})

	_, err := s.Submit(context.Background(), "hello")
	require.NoError(t, err)

	require.NoError(t, s.FinishTurn(context.Background(), "sure"))
	assert.False(t, s.Busy())
	assert.Nil(t, s.Attachment())

	require.Len(t, repo.messages, 2)
	assert.Equal(t, domain.MessageRoleUser, repo.messages[0].Role)
	assert.Equal(t, domain.MessageRoleAssistant, repo.messages[1].Role)
	assert.Equal(t, "sure", repo.messages[1].Content)
}

func TestFinishTurnReleasesTurnContext(t *testing.T) {
	log := &callLog{}
	completions := &fakeCompletions{log: log, reply: "sure"}
	s := newTestSession(&fakeChatsRepository{log: log}, completions)

	_, err := s.Submit(context.Background(), "hello")
	require.NoError(t, err)
	require.NoError(t, completions.ctx.Err(), "the turn context stays live through the reveal")

	require.NoError(t, s.FinishTurn(context.Background(), "sure"))
	assert.ErrorIs(t, completions.ctx.Err(), context.Canceled, "a finished turn must not keep its cancel context registered")
}

func TestSubmitContinuesWhenStoreWriteFails(t *testing.T) {
	log := &callLog{}
	repo := &fakeChatsRepository{log: log, appendErr: errors.New("store down")}
	s := newTestSession(repo, &fakeCompletions{log: log, reply: "still here"})

	reply, err := s.Submit(context.Background(), "hello")
	require.NoError(t, err, "persistence is best-effort")
	assert.Equal(t, "still here", reply)
	assert.Empty(t, s.ActiveChatID())
}

func TestSubmitSubstitutesEmptyReply(t *testing.T) {
	log := &callLog{}
	s := newTestSession(&fakeChatsRepository{log: log}, &fakeCompletions{log: log, reply: ""})

	reply, err := s.Submit(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "No response received.", reply)
}

func TestActivateSameChatIsNoop(t *testing.T) {
	log := &callLog{}
	s := newTestSession(&fakeChatsRepository{log: log}, &fakeCompletions{log: log})

	assert.True(t, s.Activate("chat-7"))
	assert.False(t, s.Activate("chat-7"), "re-selecting the active chat is a no-op")
	assert.True(t, s.Activate("chat-8"))
	assert.Equal(t, "chat-8", s.ActiveChatID())
}

func TestDeleteAllChatsResetsSession(t *testing.T) {
	log := &callLog{}
	repo := &fakeChatsRepository{log: log}
	s := newTestSession(repo, &fakeCompletions{log: log})
	s.Activate("chat-7")

	require.NoError(t, s.DeleteAllChats(context.Background()))
	assert.Empty(t, s.ActiveChatID(), "the view returns to the no-active state")
	assert.Contains(t, log.all(), "deleteAll")
}
