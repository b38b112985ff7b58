package store

import (
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/narahq/nara-chat/internal/logger"
)

func newTestMessageRepo(t *testing.T, db *sql.DB) MessageRepository {
	t.Helper()
	return NewMessageRepository(newDBFromSQL(db), logger.Nop())
}

var messageColumns = []string{"id", "user_text", "assistant_text", "response_liked", "created_at"}

const (
	listMessagesSQL  = `SELECT id, user_text, assistant_text, response_liked, created_at FROM messages WHERE conversation_id = $1 ORDER BY created_at ASC`
	insertMessageSQL = `INSERT INTO messages (id,conversation_id,user_text,assistant_text,created_at) VALUES ($1,$2,$3,$4,$5)`
	setFeedbackSQL   = `UPDATE messages SET response_liked = $1 WHERE id = $2 AND conversation_id IN (SELECT id FROM conversations WHERE user_id = $3)`
)

// ── ListByConversation ──

func TestMessageRepository_ListByConversation(t *testing.T) {
	db, mock := newTestDB(t)
	repo := newTestMessageRepo(t, db)

	now := time.Now().UTC()
	liked := true
	mock.ExpectQuery(regexp.QuoteMeta(listMessagesSQL)).
		WithArgs("c-1").
		WillReturnRows(sqlmock.NewRows(messageColumns).
			AddRow("m-1", "What is dharma?", "Dharma is...", &liked, now.Add(-time.Minute)).
			AddRow("m-2", "And karma?", "Karma is...", nil, now))

	messages, err := repo.ListByConversation(testContext(), "c-1")
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "m-1", messages[0].ID)
	require.NotNil(t, messages[0].ResponseLiked)
	assert.True(t, *messages[0].ResponseLiked)
	assert.Nil(t, messages[1].ResponseLiked)
}

func TestMessageRepository_ListByConversation_QueryError(t *testing.T) {
	db, mock := newTestDB(t)
	repo := newTestMessageRepo(t, db)

	mock.ExpectQuery(regexp.QuoteMeta(listMessagesSQL)).
		WithArgs("c-1").
		WillReturnError(errors.New("connection reset"))

	_, err := repo.ListByConversation(testContext(), "c-1")
	assert.ErrorIs(t, err, ErrExecutingQuery)
}

// ── Append ──

func TestMessageRepository_Append(t *testing.T) {
	db, mock := newTestDB(t)
	repo := newTestMessageRepo(t, db)

	mock.ExpectExec(regexp.QuoteMeta(insertMessageSQL)).
		WithArgs(sqlmock.AnyArg(), "c-1", "What is dharma?", "Dharma is...", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	m, err := repo.Append(testContext(), "c-1", "What is dharma?", "Dharma is...")
	require.NoError(t, err)
	assert.NotEmpty(t, m.ID)
	assert.Equal(t, "What is dharma?", m.UserText)
	assert.Equal(t, "Dharma is...", m.AssistantText)
	assert.Nil(t, m.ResponseLiked)
}

func TestMessageRepository_Append_ExecError(t *testing.T) {
	db, mock := newTestDB(t)
	repo := newTestMessageRepo(t, db)

	mock.ExpectExec(regexp.QuoteMeta(insertMessageSQL)).
		WillReturnError(errors.New("disk full"))

	_, err := repo.Append(testContext(), "c-1", "q", "a")
	assert.ErrorIs(t, err, ErrExecutingQuery)
}

// ── SetFeedback ──

func TestMessageRepository_SetFeedback(t *testing.T) {
	db, mock := newTestDB(t)
	repo := newTestMessageRepo(t, db)

	mock.ExpectExec(regexp.QuoteMeta(setFeedbackSQL)).
		WithArgs(true, "m-1", int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.SetFeedback(testContext(), 7, "m-1", true))
}

func TestMessageRepository_SetFeedback_ForeignMessage(t *testing.T) {
	db, mock := newTestDB(t)
	repo := newTestMessageRepo(t, db)

	// Message exists but belongs to another user's conversation.
	mock.ExpectExec(regexp.QuoteMeta(setFeedbackSQL)).
		WithArgs(false, "m-1", int64(8)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SetFeedback(testContext(), 8, "m-1", false)
	assert.ErrorIs(t, err, ErrMessageNotFound)
}
