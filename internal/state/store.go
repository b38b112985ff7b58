// Package state holds the client's view of the conversation world: the
// server-ordered conversation set, the active selection, cached message
// histories, the two-step delete state, the pending-create flag, and the
// draft input text.
//
// The [Store] is the single writer-serialized owner of this view. All
// mutations go through methods; each one publishes a [Change] on a
// gochannel pub/sub topic so the UI can re-read whatever moved. Reads hand
// out copies, never internal slices.
package state

import (
	"sync"

	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/narahq/nara-chat/internal/logger"
	"github.com/narahq/nara-chat/models"
)

// Store is safe for concurrent use.
type Store struct {
	mu sync.RWMutex

	conversations []models.Conversation
	active        string
	messages      map[string][]models.Message
	pendingDelete string
	creating      bool
	freshCreate   string
	draft         string

	pubSub *gochannel.GoChannel
	logger *logger.Logger
}

// NewStore returns an empty store with its change stream ready for
// subscribers.
func NewStore(log *logger.Logger) *Store {
	return &Store{
		messages: make(map[string][]models.Message),
		pubSub: gochannel.NewGoChannel(
			gochannel.Config{OutputChannelBuffer: 64},
			watermillLogger{logger: log},
		),
		logger: log,
	}
}

// Close shuts down the change stream. Subscriber channels are closed.
func (s *Store) Close() error {
	return s.pubSub.Close()
}

// ── Conversations ──

// SetConversations replaces the conversation set with the server's ordered
// list. The server is authoritative: local entries absent from the new list
// disappear, along with their cached messages. If the active or
// pending-delete conversation vanished, that state is cleared too.
//
// The one exception is a just-created conversation: a list fetch that was
// already in flight when the create finished may not carry it yet, and
// dropping it would tear down the fresh selection. Such an entry stays
// prepended until a list that includes it arrives.
func (s *Store) SetConversations(conversations []models.Conversation) {
	s.mu.Lock()

	known := make(map[string]struct{}, len(conversations))
	for _, c := range conversations {
		known[c.ID] = struct{}{}
	}

	if s.freshCreate != "" {
		if _, ok := known[s.freshCreate]; ok {
			s.freshCreate = ""
		} else if fresh, cached := s.lookup(s.freshCreate); cached {
			conversations = append([]models.Conversation{fresh}, conversations...)
			known[fresh.ID] = struct{}{}
		}
	}

	s.conversations = append([]models.Conversation(nil), conversations...)
	for id := range s.messages {
		if _, ok := known[id]; !ok {
			delete(s.messages, id)
		}
	}
	if _, ok := known[s.active]; s.active != "" && !ok {
		s.active = ""
	}
	if _, ok := known[s.pendingDelete]; s.pendingDelete != "" && !ok {
		s.pendingDelete = ""
	}

	s.mu.Unlock()
	s.publish(Change{Kind: KindConversations})
}

// Conversations returns a copy of the conversation set in server order.
func (s *Store) Conversations() []models.Conversation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Conversation(nil), s.conversations...)
}

// ConversationTitle reports the cached title of id, if id is known.
func (s *Store) ConversationTitle(id string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, c := range s.conversations {
		if c.ID == id {
			return c.Title, true
		}
	}
	return "", false
}

func (s *Store) exists(id string) bool {
	_, ok := s.lookup(id)
	return ok
}

func (s *Store) lookup(id string) (models.Conversation, bool) {
	for _, c := range s.conversations {
		if c.ID == id {
			return c, true
		}
	}
	return models.Conversation{}, false
}

// ── Selection ──

// Select makes id the active conversation. Unknown ids are refused.
func (s *Store) Select(id string) bool {
	s.mu.Lock()
	if !s.exists(id) {
		s.mu.Unlock()
		return false
	}
	s.active = id
	s.mu.Unlock()

	s.publish(Change{Kind: KindSelection, ConversationID: id})
	return true
}

// ClearSelection leaves no conversation active.
func (s *Store) ClearSelection() {
	s.mu.Lock()
	s.active = ""
	s.mu.Unlock()
	s.publish(Change{Kind: KindSelection})
}

// Active returns the active conversation id, if any.
func (s *Store) Active() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active, s.active != ""
}

// ── Messages ──

// SetMessages stores a fetched history for id. A result for a conversation
// that no longer exists in the set is dropped: the fetch raced a delete and
// its payload must not resurrect the conversation. Storing for a live but
// non-active conversation is allowed. Reports whether the result was kept.
func (s *Store) SetMessages(id string, msgs []models.Message) bool {
	s.mu.Lock()
	if !s.exists(id) {
		s.mu.Unlock()
		s.logger.Debug().Str("conversation_id", id).Msg("dropping messages for deleted conversation")
		return false
	}
	s.messages[id] = append([]models.Message(nil), msgs...)
	s.mu.Unlock()

	s.publish(Change{Kind: KindMessages, ConversationID: id})
	return true
}

// Messages returns a copy of the cached history for id.
func (s *Store) Messages(id string) ([]models.Message, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	msgs, ok := s.messages[id]
	if !ok {
		return nil, false
	}
	return append([]models.Message(nil), msgs...), true
}

// ApplyFeedback optimistically records a like/dislike verdict on the cached
// message and returns a closure that restores the previous verdict. The
// caller invokes the revert when the remote write fails, so the visible
// state never ends up ahead of the server for long.
func (s *Store) ApplyFeedback(messageID string, liked bool) (revert func(), ok bool) {
	s.mu.Lock()

	convID, idx := s.locateMessage(messageID)
	if idx < 0 {
		s.mu.Unlock()
		return nil, false
	}

	previous := s.messages[convID][idx].ResponseLiked
	s.messages[convID][idx].ResponseLiked = &liked
	s.mu.Unlock()

	s.publish(Change{Kind: KindFeedback, ConversationID: convID, MessageID: messageID})

	return func() {
		s.mu.Lock()
		cID, i := s.locateMessage(messageID)
		if i >= 0 {
			s.messages[cID][i].ResponseLiked = previous
		}
		s.mu.Unlock()
		if i >= 0 {
			s.publish(Change{Kind: KindFeedback, ConversationID: cID, MessageID: messageID})
		}
	}, true
}

// locateMessage must be called with the lock held.
func (s *Store) locateMessage(messageID string) (conversationID string, index int) {
	for convID, msgs := range s.messages {
		for i := range msgs {
			if msgs[i].ID == messageID {
				return convID, i
			}
		}
	}
	return "", -1
}

// ── Two-step delete ──

// RequestDelete marks id for deletion pending user confirmation. Selection
// and cached messages are untouched until the delete is confirmed. Unknown
// ids are refused.
func (s *Store) RequestDelete(id string) bool {
	s.mu.Lock()
	if !s.exists(id) {
		s.mu.Unlock()
		return false
	}
	s.pendingDelete = id
	s.mu.Unlock()

	s.publish(Change{Kind: KindPendingDelete, ConversationID: id})
	return true
}

// CancelDelete abandons the pending delete, leaving everything as it was.
func (s *Store) CancelDelete() {
	s.mu.Lock()
	s.pendingDelete = ""
	s.mu.Unlock()
	s.publish(Change{Kind: KindPendingDelete})
}

// PendingDelete returns the conversation awaiting delete confirmation.
func (s *Store) PendingDelete() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pendingDelete, s.pendingDelete != ""
}

// CompleteDelete applies a confirmed, remotely-acknowledged delete: the
// conversation leaves the set, its cached messages are dropped, and the
// active selection is cleared only if it pointed at the deleted
// conversation.
func (s *Store) CompleteDelete(id string) {
	s.mu.Lock()

	kept := s.conversations[:0]
	for _, c := range s.conversations {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	s.conversations = kept
	delete(s.messages, id)
	if s.active == id {
		s.active = ""
	}
	if s.pendingDelete == id {
		s.pendingDelete = ""
	}
	if s.freshCreate == id {
		s.freshCreate = ""
	}

	s.mu.Unlock()
	s.publish(Change{Kind: KindConversations, ConversationID: id})
}

// ── Creation ──

// BeginCreate marks that a conversation is being created remotely. While
// pending there is no id to address, so rename, delete, and append cannot
// target the unborn conversation. Refused when a create is already pending.
func (s *Store) BeginCreate() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.creating {
		return false
	}
	s.creating = true
	return true
}

// CreatePending reports whether a create is in flight.
func (s *Store) CreatePending() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.creating
}

// AbortCreate clears the pending-create mark after a failed create.
func (s *Store) AbortCreate() {
	s.mu.Lock()
	s.creating = false
	s.mu.Unlock()
}

// FinishCreate installs the freshly created conversation and activates it.
// The conversation is prepended so it is visible before the next list
// refetch confirms the server's ordering.
func (s *Store) FinishCreate(created models.Conversation) {
	s.mu.Lock()
	s.creating = false
	s.freshCreate = created.ID
	if !s.exists(created.ID) {
		s.conversations = append([]models.Conversation{created}, s.conversations...)
	}
	s.active = created.ID
	s.mu.Unlock()

	s.publish(Change{Kind: KindSelection, ConversationID: created.ID})
}

// ── Draft ──

// SetDraft records the text typed into the input box.
func (s *Store) SetDraft(text string) {
	s.mu.Lock()
	s.draft = text
	s.mu.Unlock()
	s.publish(Change{Kind: KindDraft})
}

// Draft returns the current input text.
func (s *Store) Draft() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.draft
}

// ClearDraft empties the input box.
func (s *Store) ClearDraft() {
	s.SetDraft("")
}

// Reset drops everything: conversation set, caches, selection, delete and
// create state, and the draft. Used on sign-out.
func (s *Store) Reset() {
	s.mu.Lock()
	s.conversations = nil
	s.messages = make(map[string][]models.Message)
	s.active = ""
	s.pendingDelete = ""
	s.creating = false
	s.freshCreate = ""
	s.draft = ""
	s.mu.Unlock()

	s.publish(Change{Kind: KindReset})
}
