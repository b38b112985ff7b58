package store

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/narahq/nara-chat/internal/logger"
	"github.com/narahq/nara-chat/models"
)

// messageRepository implements [MessageRepository].
type messageRepository struct {
	logger *logger.Logger
	db     *DB
}

// NewMessageRepository constructs a [MessageRepository] backed by the
// provided database connection and logger.
func NewMessageRepository(db *DB, logger *logger.Logger) MessageRepository {
	logger.Debug().Msg("creating message repository")
	return &messageRepository{
		db:     db,
		logger: logger,
	}
}

// ListByConversation implements [MessageRepository]. Ordering is created_at
// ascending, oldest exchange first.
func (r *messageRepository) ListByConversation(ctx context.Context, conversationID string) ([]models.Message, error) {
	query, args, err := r.db.builder.
		Select("id", "user_text", "assistant_text", "response_liked", "created_at").
		From(models.Message{}.TableName()).
		Where("conversation_id = ?", conversationID).
		OrderBy("created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBuildingSQLQuery, err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*messageRepository.ListByConversation").Msg("error listing messages")
		return nil, fmt.Errorf("%w: %v", ErrExecutingQuery, err)
	}
	defer rows.Close()

	messages := make([]models.Message, 0)
	for rows.Next() {
		var m models.Message
		if err = rows.Scan(&m.ID, &m.UserText, &m.AssistantText, &m.ResponseLiked, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrScanningRow, err)
		}
		messages = append(messages, m)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExecutingQuery, err)
	}

	return messages, nil
}

// Append implements [MessageRepository].
func (r *messageRepository) Append(ctx context.Context, conversationID, userText, assistantText string) (models.Message, error) {
	m := models.Message{
		ID:            uuid.NewString(),
		UserText:      userText,
		AssistantText: assistantText,
		CreatedAt:     time.Now().UTC(),
	}

	query, args, err := r.db.builder.
		Insert(models.Message{}.TableName()).
		Columns("id", "conversation_id", "user_text", "assistant_text", "created_at").
		Values(m.ID, conversationID, m.UserText, m.AssistantText, m.CreatedAt).
		ToSql()
	if err != nil {
		return models.Message{}, fmt.Errorf("%w: %v", ErrBuildingSQLQuery, err)
	}

	if _, err = r.db.ExecContext(ctx, query, args...); err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*messageRepository.Append").Msg("error inserting message")
		return models.Message{}, fmt.Errorf("%w: %v", ErrExecutingQuery, err)
	}

	return m, nil
}

// SetFeedback implements [MessageRepository]. Ownership is enforced in the
// statement: the update only lands when the message's conversation belongs
// to userID.
func (r *messageRepository) SetFeedback(ctx context.Context, userID int64, messageID string, liked bool) error {
	sub := sq.Expr(
		"conversation_id IN (SELECT id FROM "+models.Conversation{}.TableName()+" WHERE user_id = ?)",
		userID,
	)

	query, args, err := r.db.builder.
		Update(models.Message{}.TableName()).
		Set("response_liked", liked).
		Where("id = ?", messageID).
		Where(sub).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBuildingSQLQuery, err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*messageRepository.SetFeedback").Msg("error updating feedback")
		return fmt.Errorf("%w: %v", ErrExecutingQuery, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrExecutingQuery, err)
	}
	if affected == 0 {
		return ErrMessageNotFound
	}

	return nil
}
