package handlers

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"hostelx-service/internal/apperrors"
	"hostelx-service/internal/auth"
	"hostelx-service/internal/mailer"
	"hostelx-service/internal/models"
	"hostelx-service/internal/observability"
	"hostelx-service/internal/otp"
	"hostelx-service/internal/repositories"
	"hostelx-service/internal/telemetry"
)

// AuthHandler manages signup, login, email verification and profile endpoints.
type AuthHandler struct {
	users    repositories.UserRepository
	resolver *auth.IdentityResolver
	tokens   *auth.TokenManager
	otpStore otp.Store
	otpTTL   time.Duration
	mailer   mailer.Mailer
	audit    *telemetry.AuditEmitter
}

// NewAuthHandler builds an AuthHandler.
func NewAuthHandler(users repositories.UserRepository, resolver *auth.IdentityResolver, tokens *auth.TokenManager, otpStore otp.Store, otpTTL time.Duration, m mailer.Mailer, audit *telemetry.AuditEmitter) *AuthHandler {
	return &AuthHandler{
		users:    users,
		resolver: resolver,
		tokens:   tokens,
		otpStore: otpStore,
		otpTTL:   otpTTL,
		mailer:   m,
		audit:    audit,
	}
}

type userResponse struct {
	ID            int     `json:"id"`
	FullName      string  `json:"full_name"`
	Username      string  `json:"username"`
	PersonalEmail string  `json:"personal_email"`
	CollegeEmail  string  `json:"college_email,omitempty"`
	Phone         *string `json:"phone,omitempty"`
	EmailVerified bool    `json:"email_verified"`
}

func toUserResponse(user models.User) userResponse {
	return userResponse{
		ID:            user.ID,
		FullName:      user.FullName,
		Username:      user.Username,
		PersonalEmail: user.PersonalEmail,
		CollegeEmail:  user.CollegeEmail,
		Phone:         user.Phone,
		EmailVerified: user.EmailVerified,
	}
}

// Signup registers a new account, emails a verification code and returns a
// session token.
func (h *AuthHandler) Signup(c *gin.Context) {
	var req struct {
		FullName        string  `json:"full_name" binding:"required"`
		Username        string  `json:"username" binding:"required"`
		PersonalEmail   string  `json:"personal_email" binding:"required,email"`
		CollegeEmail    string  `json:"college_email"`
		Phone           *string `json:"phone"`
		Password        string  `json:"password" binding:"required,min=6"`
		ConfirmPassword string  `json:"confirm_password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperrors.Validation(err.Error()))
		return
	}
	if req.Password != req.ConfirmPassword {
		writeError(c, apperrors.Validation("passwords do not match"))
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		writeError(c, apperrors.Wrap(apperrors.CodeInternal, "could not hash password", err))
		return
	}

	user, err := h.users.CreateUser(c.Request.Context(), models.User{
		FullName:      strings.TrimSpace(req.FullName),
		Username:      strings.TrimSpace(req.Username),
		PersonalEmail: strings.ToLower(strings.TrimSpace(req.PersonalEmail)),
		CollegeEmail:  strings.ToLower(strings.TrimSpace(req.CollegeEmail)),
		Phone:         req.Phone,
		PasswordHash:  hash,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	token, err := h.tokens.Issue(user.ID)
	if err != nil {
		writeError(c, apperrors.Wrap(apperrors.CodeInternal, "could not issue token", err))
		return
	}

	// The account exists either way; a failed delivery is retried via
	// POST /auth/otp/send.
	if err := h.issueOTP(c, user); err != nil {
		log.Printf("signup verification email failed: %v", err)
	}

	h.audit.Emit(c.Request.Context(), "info", "user signed up", requestIDFromContext(c), nil)
	c.JSON(http.StatusCreated, gin.H{"token": token, "user": toUserResponse(user)})
}

// Login authenticates by email or username plus password.
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Identifier string `json:"identifier" binding:"required"`
		Password   string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperrors.Validation(err.Error()))
		return
	}

	email, err := h.resolver.Resolve(c.Request.Context(), req.Identifier)
	if err != nil {
		writeError(c, err)
		return
	}

	user, err := h.users.GetUserByLoginEmail(c.Request.Context(), strings.ToLower(email))
	if err != nil {
		if apperrors.CodeOf(err) == apperrors.CodeNotFound {
			writeError(c, apperrors.ErrBadCredentials)
			return
		}
		writeError(c, err)
		return
	}
	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		writeError(c, apperrors.ErrBadCredentials)
		return
	}

	token, err := h.tokens.Issue(user.ID)
	if err != nil {
		writeError(c, apperrors.Wrap(apperrors.CodeInternal, "could not issue token", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "user": toUserResponse(user)})
}

// issueOTP generates a verification code, stores it against the user's
// personal address and emails it out. The code never leaves the server
// except by mail.
func (h *AuthHandler) issueOTP(c *gin.Context, user models.User) error {
	code, err := otp.GenerateCode()
	if err != nil {
		return apperrors.Wrap(apperrors.CodeInternal, "could not generate code", err)
	}
	if err := h.otpStore.Put(c.Request.Context(), user.PersonalEmail, code, h.otpTTL); err != nil {
		return apperrors.Wrap(apperrors.CodeInternal, "could not store code", err)
	}

	if err := h.mailer.SendOTP(c.Request.Context(), user.PersonalEmail, code); err != nil {
		observability.IncOTPEmail("error")
		return err
	}
	observability.IncOTPEmail("sent")
	return nil
}

// SendOTP generates a verification code and emails it to the caller's
// personal address. The code itself never appears in the response.
func (h *AuthHandler) SendOTP(c *gin.Context) {
	user, err := h.users.GetUser(c.Request.Context(), c.GetInt("userID"))
	if err != nil {
		writeError(c, err)
		return
	}

	if err := h.issueOTP(c, user); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "sent"})
}

// VerifyOTP checks the submitted code and marks the account verified.
func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req struct {
		Code string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperrors.Validation(err.Error()))
		return
	}

	userID := c.GetInt("userID")
	user, err := h.users.GetUser(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}

	if err := h.otpStore.Verify(c.Request.Context(), user.PersonalEmail, strings.TrimSpace(req.Code)); err != nil {
		writeError(c, err)
		return
	}
	if err := h.users.SetEmailVerified(c.Request.Context(), userID); err != nil {
		writeError(c, err)
		return
	}

	h.audit.Emit(c.Request.Context(), "info", "email verified", requestIDFromContext(c), auditUserID(c))
	c.JSON(http.StatusOK, gin.H{"status": "verified"})
}

// Me returns the authenticated user's profile.
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.users.GetUser(c.Request.Context(), c.GetInt("userID"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": toUserResponse(user)})
}

// UpdateMe edits the caller's profile fields.
func (h *AuthHandler) UpdateMe(c *gin.Context) {
	var req struct {
		FullName string  `json:"full_name" binding:"required"`
		Username string  `json:"username" binding:"required"`
		Phone    *string `json:"phone"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperrors.Validation(err.Error()))
		return
	}

	user, err := h.users.UpdateProfile(c.Request.Context(), c.GetInt("userID"), strings.TrimSpace(req.FullName), strings.TrimSpace(req.Username), req.Phone)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": toUserResponse(user)})
}
