package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"hostelx-service/internal/apperrors"
	"hostelx-service/internal/models"
)

const uniqueViolation = "23505"

// UserRepository abstracts user persistence.
type UserRepository interface {
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	GetUser(ctx context.Context, userID int) (models.User, error)
	GetUserByUsername(ctx context.Context, username string) (models.User, error)
	GetUserByLoginEmail(ctx context.Context, email string) (models.User, error)
	UpdateProfile(ctx context.Context, userID int, fullName, username string, phone *string) (models.User, error)
	SetEmailVerified(ctx context.Context, userID int) error
	BulkUsers(ctx context.Context, ids []int) ([]models.User, error)
}

// UserRepo is a sqlx implementation of UserRepository.
type UserRepo struct {
	db *sqlx.DB
}

// NewUserRepo constructs a UserRepo.
func NewUserRepo(db *sqlx.DB) *UserRepo {
	return &UserRepo{db: db}
}

const userColumns = `id, full_name, username, personal_email, college_email, phone, password_hash, email_verified, created_at`

// CreateUser inserts a new account. Usernames are stored lowercased.
func (r *UserRepo) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	var created models.User
	err := r.db.QueryRowxContext(ctx, `INSERT INTO users (full_name, username, personal_email, college_email, phone, password_hash)
        VALUES ($1, $2, $3, $4, $5, $6) RETURNING `+userColumns,
		user.FullName, strings.ToLower(user.Username), user.PersonalEmail, user.CollegeEmail, user.Phone, user.PasswordHash).
		StructScan(&created)
	if err != nil {
		if isUniqueViolation(err, "users_username_key") {
			return models.User{}, apperrors.ErrUsernameTaken
		}
		if isUniqueViolation(err, "users_personal_email_idx") {
			return models.User{}, apperrors.ErrEmailTaken
		}
		return models.User{}, err
	}
	return created, nil
}

// GetUser fetches a user by id.
func (r *UserRepo) GetUser(ctx context.Context, userID int) (models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `SELECT `+userColumns+` FROM users WHERE id=$1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, apperrors.ErrUserNotFound
	}
	return user, err
}

// GetUserByUsername fetches a user by exact (lowercase) username.
func (r *UserRepo) GetUserByUsername(ctx context.Context, username string) (models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `SELECT `+userColumns+` FROM users WHERE username=$1`, username)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, apperrors.ErrUserNotFound
	}
	return user, err
}

// GetUserByLoginEmail fetches a user whose college or personal email matches.
func (r *UserRepo) GetUserByLoginEmail(ctx context.Context, email string) (models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `SELECT `+userColumns+` FROM users WHERE college_email=$1 OR personal_email=$1`, email)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, apperrors.ErrUserNotFound
	}
	return user, err
}

// UpdateProfile edits the mutable profile fields.
func (r *UserRepo) UpdateProfile(ctx context.Context, userID int, fullName, username string, phone *string) (models.User, error) {
	var updated models.User
	err := r.db.QueryRowxContext(ctx, `UPDATE users SET full_name=$1, username=$2, phone=$3 WHERE id=$4 RETURNING `+userColumns,
		fullName, strings.ToLower(username), phone, userID).
		StructScan(&updated)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, apperrors.ErrUserNotFound
	}
	if isUniqueViolation(err, "users_username_key") {
		return models.User{}, apperrors.ErrUsernameTaken
	}
	return updated, err
}

// SetEmailVerified flags the account as verified.
func (r *UserRepo) SetEmailVerified(ctx context.Context, userID int) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET email_verified=TRUE WHERE id=$1`, userID)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

// BulkUsers fetches multiple users in one query.
func (r *UserRepo) BulkUsers(ctx context.Context, ids []int) ([]models.User, error) {
	if len(ids) == 0 {
		return []models.User{}, nil
	}
	var users []models.User
	err := r.db.SelectContext(ctx, &users, `SELECT `+userColumns+` FROM users WHERE id = ANY($1)`, pq.Array(ids))
	return users, err
}

func isUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	return pqErr.Code == uniqueViolation && (constraint == "" || pqErr.Constraint == constraint)
}
