package store

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	sq "github.com/Masterminds/squirrel"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/narahq/nara-chat/internal/logger"
	"github.com/narahq/nara-chat/models"
)

func newTestDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

// newDBFromSQL creates a DB from an existing *sql.DB (for tests). The
// postgres placeholder format pins the generated SQL.
func newDBFromSQL(db *sql.DB) *DB {
	return &DB{
		DB:                 db,
		builder:            sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
		dialect:            "pgx",
		errorClassificator: NewPostgresErrorClassifier(),
		logger:             logger.Nop(),
	}
}

func newTestConversationRepo(t *testing.T, db *sql.DB) ConversationRepository {
	t.Helper()
	return NewConversationRepository(newDBFromSQL(db), logger.Nop())
}

func testContext() context.Context {
	l := zerolog.Nop()
	return l.WithContext(context.Background())
}

var conversationColumns = []string{"id", "title", "created_at"}

const (
	listConversationsSQL  = `SELECT id, title, created_at FROM conversations WHERE user_id = $1 ORDER BY updated_at DESC`
	getConversationSQL    = `SELECT id, title, created_at FROM conversations WHERE id = $1 AND user_id = $2`
	insertConversationSQL = `INSERT INTO conversations (id,user_id,title,created_at,updated_at) VALUES ($1,$2,$3,$4,$5)`
	renameConversationSQL = `UPDATE conversations SET title = $1, updated_at = $2 WHERE id = $3 AND user_id = $4`
	touchConversationSQL  = `UPDATE conversations SET updated_at = $1 WHERE id = $2 AND user_id = $3`
	deleteMessagesSQL     = `DELETE FROM messages WHERE conversation_id = $1`
	deleteConversationSQL = `DELETE FROM conversations WHERE id = $1 AND user_id = $2`
)

// ── ListByUser ──

func TestConversationRepository_ListByUser(t *testing.T) {
	db, mock := newTestDB(t)
	repo := newTestConversationRepo(t, db)

	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta(listConversationsSQL)).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows(conversationColumns).
			AddRow("c-2", "Karma and rebirth", now).
			AddRow("c-1", "New Chat", now.Add(-time.Hour)))

	conversations, err := repo.ListByUser(testContext(), 7)
	require.NoError(t, err)
	require.Len(t, conversations, 2)
	assert.Equal(t, "c-2", conversations[0].ID)
	assert.Equal(t, "New Chat", conversations[1].Title)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConversationRepository_ListByUser_Empty(t *testing.T) {
	db, mock := newTestDB(t)
	repo := newTestConversationRepo(t, db)

	mock.ExpectQuery(regexp.QuoteMeta(listConversationsSQL)).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows(conversationColumns))

	conversations, err := repo.ListByUser(testContext(), 7)
	require.NoError(t, err)
	assert.Empty(t, conversations)
}

func TestConversationRepository_ListByUser_QueryError(t *testing.T) {
	db, mock := newTestDB(t)
	repo := newTestConversationRepo(t, db)

	mock.ExpectQuery(regexp.QuoteMeta(listConversationsSQL)).
		WithArgs(int64(7)).
		WillReturnError(errors.New("connection reset"))

	_, err := repo.ListByUser(testContext(), 7)
	assert.ErrorIs(t, err, ErrExecutingQuery)
}

// ── Get ──

func TestConversationRepository_Get(t *testing.T) {
	db, mock := newTestDB(t)
	repo := newTestConversationRepo(t, db)

	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta(getConversationSQL)).
		WithArgs("c-1", int64(7)).
		WillReturnRows(sqlmock.NewRows(conversationColumns).AddRow("c-1", "New Chat", now))

	c, err := repo.Get(testContext(), 7, "c-1")
	require.NoError(t, err)
	assert.Equal(t, "c-1", c.ID)
	assert.Equal(t, "New Chat", c.Title)
}

func TestConversationRepository_Get_NotFound(t *testing.T) {
	db, mock := newTestDB(t)
	repo := newTestConversationRepo(t, db)

	mock.ExpectQuery(regexp.QuoteMeta(getConversationSQL)).
		WithArgs("c-404", int64(7)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(testContext(), 7, "c-404")
	assert.ErrorIs(t, err, ErrConversationNotFound)
}

// ── Create ──

func TestConversationRepository_Create(t *testing.T) {
	db, mock := newTestDB(t)
	repo := newTestConversationRepo(t, db)

	mock.ExpectExec(regexp.QuoteMeta(insertConversationSQL)).
		WithArgs(sqlmock.AnyArg(), int64(7), "What is dharma?", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	c, err := repo.Create(testContext(), 7, "What is dharma?")
	require.NoError(t, err)
	assert.NotEmpty(t, c.ID)
	assert.Equal(t, "What is dharma?", c.Title)
	assert.False(t, c.CreatedAt.IsZero())
}

func TestConversationRepository_Create_EmptyTitleGetsDefault(t *testing.T) {
	db, mock := newTestDB(t)
	repo := newTestConversationRepo(t, db)

	mock.ExpectExec(regexp.QuoteMeta(insertConversationSQL)).
		WithArgs(sqlmock.AnyArg(), int64(7), models.DefaultConversationTitle, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	c, err := repo.Create(testContext(), 7, "")
	require.NoError(t, err)
	assert.Equal(t, models.DefaultConversationTitle, c.Title)
}

// ── Rename and Touch ──

func TestConversationRepository_Rename(t *testing.T) {
	db, mock := newTestDB(t)
	repo := newTestConversationRepo(t, db)

	mock.ExpectExec(regexp.QuoteMeta(renameConversationSQL)).
		WithArgs("What is dharma?", sqlmock.AnyArg(), "c-1", int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.Rename(testContext(), 7, "c-1", "What is dharma?"))
}

func TestConversationRepository_Rename_WrongOwner(t *testing.T) {
	db, mock := newTestDB(t)
	repo := newTestConversationRepo(t, db)

	mock.ExpectExec(regexp.QuoteMeta(renameConversationSQL)).
		WithArgs("hijack", sqlmock.AnyArg(), "c-1", int64(8)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Rename(testContext(), 8, "c-1", "hijack")
	assert.ErrorIs(t, err, ErrConversationNotFound)
}

func TestConversationRepository_Touch(t *testing.T) {
	db, mock := newTestDB(t)
	repo := newTestConversationRepo(t, db)

	mock.ExpectExec(regexp.QuoteMeta(touchConversationSQL)).
		WithArgs(sqlmock.AnyArg(), "c-1", int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.Touch(testContext(), 7, "c-1"))
}

// ── Delete ──

func TestConversationRepository_Delete_CascadesMessages(t *testing.T) {
	db, mock := newTestDB(t)
	repo := newTestConversationRepo(t, db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(deleteMessagesSQL)).
		WithArgs("c-1").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(regexp.QuoteMeta(deleteConversationSQL)).
		WithArgs("c-1", int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Delete(testContext(), 7, "c-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConversationRepository_Delete_NotFoundRollsBack(t *testing.T) {
	db, mock := newTestDB(t)
	repo := newTestConversationRepo(t, db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(deleteMessagesSQL)).
		WithArgs("c-404").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(deleteConversationSQL)).
		WithArgs("c-404", int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.Delete(testContext(), 7, "c-404")
	assert.ErrorIs(t, err, ErrConversationNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
