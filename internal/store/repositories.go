package store

import (
	"github.com/narahq/nara-chat/internal/logger"
)

// Repositories bundles the server's persistence interfaces.
type Repositories struct {
	Users         UserRepository
	Conversations ConversationRepository
	Messages      MessageRepository
}

func NewRepositories(db *DB, log *logger.Logger) *Repositories {
	return &Repositories{
		Users:         NewUserRepository(db, log.GetChildLogger()),
		Conversations: NewConversationRepository(db, log.GetChildLogger()),
		Messages:      NewMessageRepository(db, log.GetChildLogger()),
	}
}
