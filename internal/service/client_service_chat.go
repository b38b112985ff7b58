package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/narahq/nara-chat/internal/adapter"
	"github.com/narahq/nara-chat/internal/logger"
	"github.com/narahq/nara-chat/internal/state"
	"github.com/narahq/nara-chat/models"
)

// autoRenameTitleLimit caps the length of a title derived from the first
// question of a conversation.
const autoRenameTitleLimit = 50

type clientChatService struct {
	backend adapter.BackendAdapter
	state   *state.Store
	logger  *logger.Logger

	// locks serializes mutations per conversation id.
	locks keyedMutex
}

// NewClientChatService builds the conversation orchestrator on top of the
// backend adapter and the state store.
func NewClientChatService(backend adapter.BackendAdapter, st *state.Store, log *logger.Logger) ChatService {
	return &clientChatService{backend: backend, state: st, logger: log}
}

func (s *clientChatService) RefreshConversations(ctx context.Context) error {
	conversations, err := s.backend.Conversations(ctx)
	if err != nil {
		return fmt.Errorf("refresh conversations: %w", err)
	}

	s.state.SetConversations(conversations)
	return nil
}

func (s *clientChatService) Ask(ctx context.Context, question string) error {
	question = strings.TrimSpace(question)
	if question == "" {
		return ErrEmptyQuestion
	}

	id, active := s.state.Active()
	if !active {
		created, err := s.createConversation(ctx, question)
		if err != nil {
			return err
		}
		id = created.ID
	}

	unlock := s.locks.lock(id)
	defer unlock()

	// A conversation still wearing its placeholder title takes its name
	// from the first question asked in it. This is normally done while the
	// user types; here it is a backstop. Failure is not worth failing the
	// ask over.
	if _, err := s.renameFromInput(ctx, id, question); err != nil {
		s.logger.Warn().Err(err).Str("conversation_id", id).Msg("auto-rename failed")
	}

	if _, err := s.backend.Ask(ctx, question, id); err != nil {
		return fmt.Errorf("ask: %w", err)
	}

	s.state.ClearDraft()

	return s.refetchAfterAsk(ctx, id)
}

// refetchAfterAsk reconciles with the server after an answered question:
// the conversation list (ordering and the possibly renamed title) and the
// target's full history, fetched concurrently. The server response is
// authoritative; the answer payload itself is never spliced into the cache.
func (s *clientChatService) refetchAfterAsk(ctx context.Context, id string) error {
	g, gctx := errgroup.WithContext(ctx)

	var (
		conversations []models.Conversation
		messages      []models.Message
	)
	g.Go(func() error {
		var err error
		conversations, err = s.backend.Conversations(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		messages, err = s.backend.Messages(gctx, id)
		return err
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("refetch after ask: %w", err)
	}

	s.state.SetConversations(conversations)
	s.state.SetMessages(id, messages)
	return nil
}

func (s *clientChatService) createConversation(ctx context.Context, question string) (models.Conversation, error) {
	if !s.state.BeginCreate() {
		return models.Conversation{}, ErrCreateInFlight
	}

	created, err := s.backend.CreateConversation(ctx, question)
	if err != nil {
		s.state.AbortCreate()
		return models.Conversation{}, fmt.Errorf("create conversation: %w", err)
	}

	conversation := models.Conversation{ID: created.ID, Title: created.Title}
	s.state.FinishCreate(conversation)
	return conversation, nil
}

func (s *clientChatService) NewChat(ctx context.Context) error {
	if !s.state.BeginCreate() {
		return ErrCreateInFlight
	}

	created, err := s.backend.CreateConversation(ctx, "")
	if err != nil {
		s.state.AbortCreate()
		return fmt.Errorf("create conversation: %w", err)
	}

	s.state.FinishCreate(models.Conversation{ID: created.ID, Title: created.Title})
	s.state.ClearDraft()

	return s.RefreshConversations(ctx)
}

func (s *clientChatService) SelectConversation(ctx context.Context, id string) error {
	if !s.state.Select(id) {
		return fmt.Errorf("%w: %s", ErrUnknownConversation, id)
	}

	messages, err := s.backend.Messages(ctx, id)
	if err != nil {
		return fmt.Errorf("fetch messages: %w", err)
	}

	// The store drops the result if the conversation was deleted while the
	// fetch was in flight.
	s.state.SetMessages(id, messages)
	return nil
}

func (s *clientChatService) RequestDelete(id string) error {
	if !s.state.RequestDelete(id) {
		return fmt.Errorf("%w: %s", ErrUnknownConversation, id)
	}
	return nil
}

func (s *clientChatService) ConfirmDelete(ctx context.Context) error {
	id, ok := s.state.PendingDelete()
	if !ok {
		return ErrNoPendingDelete
	}

	unlock := s.locks.lock(id)
	defer unlock()

	if err := s.backend.DeleteConversation(ctx, id); err != nil {
		return fmt.Errorf("delete conversation: %w", err)
	}

	s.state.CompleteDelete(id)

	return s.RefreshConversations(ctx)
}

func (s *clientChatService) CancelDelete() {
	s.state.CancelDelete()
}

func (s *clientChatService) SubmitFeedback(ctx context.Context, messageID string, liked bool) error {
	revert, ok := s.state.ApplyFeedback(messageID, liked)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownMessage, messageID)
	}

	if err := s.backend.SendFeedback(ctx, messageID, liked); err != nil {
		revert()
		return fmt.Errorf("send feedback: %w", err)
	}

	return nil
}

func (s *clientChatService) AutoRename(ctx context.Context, input string) error {
	id, active := s.state.Active()
	if !active {
		return nil
	}

	unlock := s.locks.lock(id)
	defer unlock()

	renamed, err := s.renameFromInput(ctx, id, input)
	if err != nil || !renamed {
		return err
	}

	// Refetching the list replaces the cached placeholder title, so the
	// next keystroke is a no-op.
	return s.RefreshConversations(ctx)
}

// renameFromInput renames a conversation after its first typed input, once:
// it fires only while the cached title still equals the placeholder given
// at creation. It reports whether a rename actually happened.
func (s *clientChatService) renameFromInput(ctx context.Context, id, input string) (bool, error) {
	title, known := s.state.ConversationTitle(id)
	if !known || !(models.Conversation{Title: title}).HasDefaultTitle() {
		return false, nil
	}

	derived := deriveTitle(input)
	if derived == "" {
		return false, nil
	}

	if err := s.backend.RenameConversation(ctx, id, derived); err != nil {
		return false, fmt.Errorf("rename conversation: %w", err)
	}
	return true, nil
}

// deriveTitle turns the first question into a conversation title: the first
// 50 characters, with an ellipsis when truncated.
func deriveTitle(question string) string {
	question = strings.TrimSpace(question)
	runes := []rune(question)
	if len(runes) <= autoRenameTitleLimit {
		return question
	}
	return string(runes[:autoRenameTitleLimit]) + "..."
}

// keyedMutex hands out one mutex per conversation id. Mutexes are never
// reclaimed; the set of conversations a single client touches stays small.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (k *keyedMutex) lock(id string) (unlock func()) {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*sync.Mutex)
	}
	l, ok := k.locks[id]
	if !ok {
		l = &sync.Mutex{}
		k.locks[id] = l
	}
	k.mu.Unlock()

	l.Lock()
	return l.Unlock
}
