package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"

	"hostelx-service/internal/apperrors"
	"hostelx-service/internal/listing"
	"hostelx-service/internal/models"
	"hostelx-service/internal/repositories"
	"hostelx-service/internal/telemetry"
	"hostelx-service/internal/uploads"
	"hostelx-service/internal/ws"
)

// PostHandler manages marketplace listing endpoints.
type PostHandler struct {
	posts   repositories.PostRepository
	users   repositories.UserRepository
	uploads *uploads.Service
	hub     *ws.Hub
	audit   *telemetry.AuditEmitter
	now     func() time.Time
}

// NewPostHandler builds a PostHandler.
func NewPostHandler(posts repositories.PostRepository, users repositories.UserRepository, up *uploads.Service, hub *ws.Hub, audit *telemetry.AuditEmitter) *PostHandler {
	return &PostHandler{
		posts:   posts,
		users:   users,
		uploads: up,
		hub:     hub,
		audit:   audit,
		now:     time.Now,
	}
}

type postResponse struct {
	models.Post
	RemainingTime string `json:"remaining_time,omitempty"`
	IsOwner       bool   `json:"is_owner"`
}

func (h *PostHandler) toPostResponse(post models.Post, viewerID int) postResponse {
	return postResponse{
		Post:          post,
		RemainingTime: listing.FormatRemaining(post.ExpiresAt, h.now()),
		IsOwner:       post.OwnerID == viewerID,
	}
}

func (h *PostHandler) toPostResponses(posts []models.Post, viewerID int) []postResponse {
	responses := make([]postResponse, 0, len(posts))
	for _, p := range posts {
		responses = append(responses, h.toPostResponse(p, viewerID))
	}
	return responses
}

type postInput struct {
	Type        string   `json:"type" binding:"required,oneof=need sell"`
	Title       string   `json:"title" binding:"required"`
	Description string   `json:"description" binding:"required"`
	Price       *float64 `json:"price"`
	ImageURLs   []string `json:"image_urls"`
	ExpiresInMs *int64   `json:"expires_in_ms"`
}

func (in postInput) validate() error {
	if in.Price != nil && *in.Price < 0 {
		return apperrors.Validation("price cannot be negative")
	}
	if len(in.ImageURLs) > models.MaxPostImages {
		return apperrors.Validation("a post can carry at most 3 images")
	}
	return nil
}

// CreatePost publishes a new listing and broadcasts it to the feed.
func (h *PostHandler) CreatePost(c *gin.Context) {
	var req postInput
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperrors.Validation(err.Error()))
		return
	}
	if err := req.validate(); err != nil {
		writeError(c, err)
		return
	}

	userID := c.GetInt("userID")
	owner, err := h.users.GetUser(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}

	var expiresAt *time.Time
	if req.ExpiresInMs != nil && *req.ExpiresInMs > 0 {
		at := h.now().Add(time.Duration(*req.ExpiresInMs) * time.Millisecond)
		expiresAt = &at
	}

	post, err := h.posts.CreatePost(c.Request.Context(), models.Post{
		OwnerID:     userID,
		OwnerEmail:  owner.LoginEmail(),
		Type:        req.Type,
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Price:       req.Price,
		ImageURLs:   pq.StringArray(req.ImageURLs),
		ExpiresAt:   expiresAt,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	h.hub.BroadcastPostEvent(models.PostEvent{Type: "post_created", Post: &post})
	h.audit.Emit(c.Request.Context(), "info", "post created", requestIDFromContext(c), auditUserID(c))
	c.JSON(http.StatusCreated, h.toPostResponse(post, userID))
}

// ListPosts returns the browsable feed, filtered and sorted server-side.
// Expired listings never appear.
func (h *PostHandler) ListPosts(c *gin.Context) {
	posts, err := h.posts.ListRecent(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	filter := listing.TypeFilter(c.DefaultQuery("type", string(listing.FilterAll)))
	sortKey := listing.SortKey(c.DefaultQuery("sort", string(listing.SortTime)))
	query := c.Query("q")

	visible := listing.Apply(posts, filter, query, sortKey, h.now())
	c.JSON(http.StatusOK, gin.H{"posts": h.toPostResponses(visible, c.GetInt("userID"))})
}

// GetPost returns one listing.
func (h *PostHandler) GetPost(c *gin.Context) {
	postID, err := strconv.Atoi(c.Param("post_id"))
	if err != nil {
		writeError(c, apperrors.Validation("invalid post id"))
		return
	}

	post, err := h.posts.GetPost(c.Request.Context(), postID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, h.toPostResponse(post, c.GetInt("userID")))
}

// MyPosts lists the caller's own listings, expired ones included.
func (h *PostHandler) MyPosts(c *gin.Context) {
	userID := c.GetInt("userID")
	posts, err := h.posts.ListByOwner(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": h.toPostResponses(posts, userID)})
}

// UpdatePost edits a listing the caller owns.
func (h *PostHandler) UpdatePost(c *gin.Context) {
	postID, err := strconv.Atoi(c.Param("post_id"))
	if err != nil {
		writeError(c, apperrors.Validation("invalid post id"))
		return
	}

	var req postInput
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperrors.Validation(err.Error()))
		return
	}
	if err := req.validate(); err != nil {
		writeError(c, err)
		return
	}

	userID := c.GetInt("userID")

	var expiresAt *time.Time
	if req.ExpiresInMs != nil && *req.ExpiresInMs > 0 {
		at := h.now().Add(time.Duration(*req.ExpiresInMs) * time.Millisecond)
		expiresAt = &at
	}

	post, err := h.posts.UpdatePost(c.Request.Context(), models.Post{
		ID:          postID,
		OwnerID:     userID,
		Type:        req.Type,
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Price:       req.Price,
		ImageURLs:   pq.StringArray(req.ImageURLs),
		ExpiresAt:   expiresAt,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	h.hub.BroadcastPostEvent(models.PostEvent{Type: "post_updated", Post: &post})
	c.JSON(http.StatusOK, h.toPostResponse(post, userID))
}

// DeletePost removes a listing the caller owns.
func (h *PostHandler) DeletePost(c *gin.Context) {
	postID, err := strconv.Atoi(c.Param("post_id"))
	if err != nil {
		writeError(c, apperrors.Validation("invalid post id"))
		return
	}

	userID := c.GetInt("userID")
	if err := h.posts.DeletePost(c.Request.Context(), postID, userID); err != nil {
		writeError(c, err)
		return
	}

	h.hub.BroadcastPostEvent(models.PostEvent{Type: "post_deleted", PostID: postID})
	h.audit.Emit(c.Request.Context(), "info", "post deleted", requestIDFromContext(c), auditUserID(c))
	c.Status(http.StatusNoContent)
}

// UploadImage stores one listing image and returns its public URL.
func (h *PostHandler) UploadImage(c *gin.Context) {
	file, err := c.FormFile("image")
	if err != nil {
		writeError(c, apperrors.Upload("image file is required", err))
		return
	}

	url, err := h.uploads.Save(c, file)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"url": url})
}
