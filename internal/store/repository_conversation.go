package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/narahq/nara-chat/internal/logger"
	"github.com/narahq/nara-chat/models"
)

// conversationRepository implements [ConversationRepository]. Identifiers
// are application-generated UUIDs so the SQL stays portable between the
// postgres and sqlite drivers.
type conversationRepository struct {
	logger *logger.Logger
	db     *DB
}

// NewConversationRepository constructs a [ConversationRepository] backed by
// the provided database connection and logger.
func NewConversationRepository(db *DB, logger *logger.Logger) ConversationRepository {
	logger.Debug().Msg("creating conversation repository")
	return &conversationRepository{
		db:     db,
		logger: logger,
	}
}

// ListByUser implements [ConversationRepository]. Ordering is updated_at
// descending: the most recently touched conversation comes first.
func (r *conversationRepository) ListByUser(ctx context.Context, userID int64) ([]models.Conversation, error) {
	query, args, err := r.db.builder.
		Select("id", "title", "created_at").
		From(models.Conversation{}.TableName()).
		Where("user_id = ?", userID).
		OrderBy("updated_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBuildingSQLQuery, err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*conversationRepository.ListByUser").Msg("error listing conversations")
		return nil, fmt.Errorf("%w: %v", ErrExecutingQuery, err)
	}
	defer rows.Close()

	conversations := make([]models.Conversation, 0)
	for rows.Next() {
		var c models.Conversation
		if err = rows.Scan(&c.ID, &c.Title, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrScanningRow, err)
		}
		conversations = append(conversations, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExecutingQuery, err)
	}

	return conversations, nil
}

// Get implements [ConversationRepository].
func (r *conversationRepository) Get(ctx context.Context, userID int64, id string) (models.Conversation, error) {
	query, args, err := r.db.builder.
		Select("id", "title", "created_at").
		From(models.Conversation{}.TableName()).
		Where("id = ? AND user_id = ?", id, userID).
		ToSql()
	if err != nil {
		return models.Conversation{}, fmt.Errorf("%w: %v", ErrBuildingSQLQuery, err)
	}

	var c models.Conversation
	row := r.db.QueryRowContext(ctx, query, args...)
	if err = row.Scan(&c.ID, &c.Title, &c.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Conversation{}, ErrConversationNotFound
		}
		return models.Conversation{}, fmt.Errorf("%w: %v", ErrScanningRow, err)
	}

	return c, nil
}

// Create implements [ConversationRepository]. Empty titles fall back to the
// default placeholder.
func (r *conversationRepository) Create(ctx context.Context, userID int64, title string) (models.Conversation, error) {
	if title == "" {
		title = models.DefaultConversationTitle
	}

	now := time.Now().UTC()
	c := models.Conversation{
		ID:        uuid.NewString(),
		Title:     title,
		CreatedAt: now,
	}

	query, args, err := r.db.builder.
		Insert(models.Conversation{}.TableName()).
		Columns("id", "user_id", "title", "created_at", "updated_at").
		Values(c.ID, userID, c.Title, now, now).
		ToSql()
	if err != nil {
		return models.Conversation{}, fmt.Errorf("%w: %v", ErrBuildingSQLQuery, err)
	}

	if _, err = r.db.ExecContext(ctx, query, args...); err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*conversationRepository.Create").Msg("error inserting conversation")
		return models.Conversation{}, fmt.Errorf("%w: %v", ErrExecutingQuery, err)
	}

	return c, nil
}

// Rename implements [ConversationRepository]. The rename also bumps
// updated_at so the conversation surfaces at the top of the list.
func (r *conversationRepository) Rename(ctx context.Context, userID int64, id, title string) error {
	query, args, err := r.db.builder.
		Update(models.Conversation{}.TableName()).
		Set("title", title).
		Set("updated_at", time.Now().UTC()).
		Where("id = ? AND user_id = ?", id, userID).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBuildingSQLQuery, err)
	}

	return r.execExpectingRow(ctx, query, args)
}

// Touch implements [ConversationRepository].
func (r *conversationRepository) Touch(ctx context.Context, userID int64, id string) error {
	query, args, err := r.db.builder.
		Update(models.Conversation{}.TableName()).
		Set("updated_at", time.Now().UTC()).
		Where("id = ? AND user_id = ?", id, userID).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBuildingSQLQuery, err)
	}

	return r.execExpectingRow(ctx, query, args)
}

// Delete implements [ConversationRepository]. Messages go in the same
// transaction; the sqlite driver does not enforce the ON DELETE CASCADE
// clause unless foreign keys are switched on per-connection, so the cascade
// is done explicitly.
func (r *conversationRepository) Delete(ctx context.Context, userID int64, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBeginningTransaction, err)
	}
	defer tx.Rollback()

	msgQuery, msgArgs, err := r.db.builder.
		Delete(models.Message{}.TableName()).
		Where("conversation_id = ?", id).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBuildingSQLQuery, err)
	}
	if _, err = tx.ExecContext(ctx, msgQuery, msgArgs...); err != nil {
		return fmt.Errorf("%w: %v", ErrExecutingQuery, err)
	}

	convQuery, convArgs, err := r.db.builder.
		Delete(models.Conversation{}.TableName()).
		Where("id = ? AND user_id = ?", id, userID).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBuildingSQLQuery, err)
	}

	res, err := tx.ExecContext(ctx, convQuery, convArgs...)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrExecutingQuery, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrExecutingQuery, err)
	}
	if affected == 0 {
		return ErrConversationNotFound
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%w: %v", ErrCommitingTransaction, err)
	}

	return nil
}

func (r *conversationRepository) execExpectingRow(ctx context.Context, query string, args []any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*conversationRepository.execExpectingRow").Msg("error executing statement")
		return fmt.Errorf("%w: %v", ErrExecutingQuery, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrExecutingQuery, err)
	}
	if affected == 0 {
		return ErrConversationNotFound
	}

	return nil
}
