package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"hostelx-service/internal/apperrors"
	"hostelx-service/internal/models"
)

// PostRepository abstracts listing persistence.
type PostRepository interface {
	CreatePost(ctx context.Context, post models.Post) (models.Post, error)
	GetPost(ctx context.Context, postID int) (models.Post, error)
	ListRecent(ctx context.Context) ([]models.Post, error)
	ListByOwner(ctx context.Context, ownerID int) ([]models.Post, error)
	UpdatePost(ctx context.Context, post models.Post) (models.Post, error)
	DeletePost(ctx context.Context, postID int, ownerID int) error
	CountActive(ctx context.Context) (int, error)
}

// PostRepo is a sqlx implementation of PostRepository.
type PostRepo struct {
	db *sqlx.DB
}

// NewPostRepo constructs a PostRepo.
func NewPostRepo(db *sqlx.DB) *PostRepo {
	return &PostRepo{db: db}
}

const postColumns = `id, owner_id, owner_email, type, title, description, price, image_urls, created_at, expires_at`

// CreatePost inserts a listing.
func (r *PostRepo) CreatePost(ctx context.Context, post models.Post) (models.Post, error) {
	var created models.Post
	err := r.db.QueryRowxContext(ctx, `INSERT INTO posts (owner_id, owner_email, type, title, description, price, image_urls, expires_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING `+postColumns,
		post.OwnerID, post.OwnerEmail, post.Type, post.Title, post.Description, post.Price, pq.Array(post.ImageURLs), post.ExpiresAt).
		StructScan(&created)
	return created, err
}

// GetPost fetches a listing by id.
func (r *PostRepo) GetPost(ctx context.Context, postID int) (models.Post, error) {
	var post models.Post
	err := r.db.GetContext(ctx, &post, `SELECT `+postColumns+` FROM posts WHERE id=$1`, postID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Post{}, apperrors.ErrPostNotFound
	}
	return post, err
}

// ListRecent returns the marketplace snapshot, newest first. Expired posts
// are retained here; the presentation engine derives their expired state.
func (r *PostRepo) ListRecent(ctx context.Context) ([]models.Post, error) {
	var posts []models.Post
	err := r.db.SelectContext(ctx, &posts, `SELECT `+postColumns+` FROM posts ORDER BY created_at DESC`)
	return posts, err
}

// ListByOwner returns one user's listings, newest first.
func (r *PostRepo) ListByOwner(ctx context.Context, ownerID int) ([]models.Post, error) {
	var posts []models.Post
	err := r.db.SelectContext(ctx, &posts, `SELECT `+postColumns+` FROM posts WHERE owner_id=$1 ORDER BY created_at DESC`, ownerID)
	return posts, err
}

// UpdatePost edits a listing; the WHERE clause pins the owner so a stranger's
// update affects zero rows.
func (r *PostRepo) UpdatePost(ctx context.Context, post models.Post) (models.Post, error) {
	var updated models.Post
	err := r.db.QueryRowxContext(ctx, `UPDATE posts SET type=$1, title=$2, description=$3, price=$4, image_urls=$5, expires_at=$6
        WHERE id=$7 AND owner_id=$8 RETURNING `+postColumns,
		post.Type, post.Title, post.Description, post.Price, pq.Array(post.ImageURLs), post.ExpiresAt, post.ID, post.OwnerID).
		StructScan(&updated)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Post{}, apperrors.ErrPostNotFound
	}
	return updated, err
}

// DeletePost removes a listing owned by ownerID.
func (r *PostRepo) DeletePost(ctx context.Context, postID int, ownerID int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM posts WHERE id=$1 AND owner_id=$2`, postID, ownerID)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return apperrors.ErrPostNotFound
	}
	return nil
}

// CountActive counts listings that have not expired yet.
func (r *PostRepo) CountActive(ctx context.Context) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM posts WHERE expires_at IS NULL OR expires_at > NOW()`)
	return count, err
}
