package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"

	"github.com/narahq/nara-chat/internal/logger"
	"github.com/narahq/nara-chat/models"
)

// userRepository maps identities issued by the external provider onto rows
// in the "users" table. Accounts are provisioned lazily: the first request
// carrying an unknown subject creates the row.
type userRepository struct {
	logger *logger.Logger
	db     *DB
}

// NewUserRepository constructs a [UserRepository] backed by the provided
// database connection and logger.
func NewUserRepository(db *DB, logger *logger.Logger) UserRepository {
	logger.Debug().Msg("creating user repository")
	return &userRepository{
		db:     db,
		logger: logger,
	}
}

// GetOrCreateUser implements [UserRepository].
//
// A concurrent first request from the same identity can race the INSERT into
// a unique violation on subject_id; the loser re-reads the row the winner
// created.
func (r *userRepository) GetOrCreateUser(ctx context.Context, subjectID, email string) (models.User, error) {
	user, err := r.findBySubject(ctx, subjectID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return models.User{}, err
	}

	query, args, err := r.db.builder.
		Insert(models.User{}.TableName()).
		Columns("subject_id", "email").
		Values(subjectID, email).
		ToSql()
	if err != nil {
		return models.User{}, fmt.Errorf("%w: %v", ErrBuildingSQLQuery, err)
	}

	if _, err = r.db.ExecContext(ctx, query, args...); err != nil {
		if postgresError(err) != pgerrcode.UniqueViolation {
			logger.FromContext(ctx).Err(err).Str("func", "*userRepository.GetOrCreateUser").Msg("error inserting user")
			return models.User{}, fmt.Errorf("unexpected DB error: %w", err)
		}
		// Lost the provisioning race; the row exists now.
	}

	return r.findBySubject(ctx, subjectID)
}

func (r *userRepository) findBySubject(ctx context.Context, subjectID string) (models.User, error) {
	query, args, err := r.db.builder.
		Select("user_id", "subject_id", "email", "created_at").
		From(models.User{}.TableName()).
		Where("subject_id = ?", subjectID).
		ToSql()
	if err != nil {
		return models.User{}, fmt.Errorf("%w: %v", ErrBuildingSQLQuery, err)
	}

	var user models.User
	row := r.db.QueryRowContext(ctx, query, args...)
	if err = row.Scan(&user.UserID, &user.SubjectID, &user.Email, &user.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, ErrUserNotFound
		}
		logger.FromContext(ctx).Err(err).Str("func", "*userRepository.findBySubject").Msg("error: scanning error")
		return models.User{}, fmt.Errorf("%w: %v", ErrScanningRow, err)
	}

	return user, nil
}
