package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"hostelx-service/internal/apperrors"
	"hostelx-service/internal/auth"
	"hostelx-service/internal/mocks"
	"hostelx-service/internal/models"
)

func setupAuthRouter(handler *AuthHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/auth/signup", handler.Signup)
	r.POST("/auth/login", handler.Login)

	authed := r.Group("/")
	authed.Use(func(c *gin.Context) {
		c.Set("userID", 1)
		c.Next()
	})
	authed.POST("/auth/otp/send", handler.SendOTP)
	authed.POST("/auth/otp/verify", handler.VerifyOTP)
	authed.GET("/auth/me", handler.Me)
	authed.PUT("/auth/me", handler.UpdateMe)
	return r
}

func newAuthHandler(users *mocks.UserRepositoryMock, store *mocks.OTPStoreMock, m *mocks.MailerMock) *AuthHandler {
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	return NewAuthHandler(users, auth.NewIdentityResolver(users), tokens, store, 10*time.Minute, m, nil)
}

func TestSignupSuccess(t *testing.T) {
	users := new(mocks.UserRepositoryMock)
	store := new(mocks.OTPStoreMock)
	m := new(mocks.MailerMock)
	handler := newAuthHandler(users, store, m)
	router := setupAuthRouter(handler)

	users.On("CreateUser", mock.Anything, mock.AnythingOfType("models.User")).
		Return(models.User{ID: 1, FullName: "Alice A", Username: "alice", PersonalEmail: "alice@example.com"}, nil).Once()
	store.On("Put", mock.Anything, "alice@example.com", mock.AnythingOfType("string"), 10*time.Minute).
		Return(nil).Once()
	m.On("SendOTP", mock.Anything, "alice@example.com", mock.AnythingOfType("string")).
		Return(nil).Once()

	body := bytes.NewBufferString(`{"full_name":"Alice A","username":"Alice","personal_email":"alice@example.com","password":"hunter22","confirm_password":"hunter22"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/signup", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.NotEmpty(t, resp["token"])
	users.AssertExpectations(t)
	store.AssertExpectations(t)
	m.AssertExpectations(t)
}

func TestSignupPasswordMismatch(t *testing.T) {
	users := new(mocks.UserRepositoryMock)
	handler := newAuthHandler(users, new(mocks.OTPStoreMock), new(mocks.MailerMock))
	router := setupAuthRouter(handler)

	body := bytes.NewBufferString(`{"full_name":"Alice A","username":"alice","personal_email":"alice@example.com","password":"hunter22","confirm_password":"hunter23"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/signup", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "passwords do not match")
	users.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
}

func TestSignupSurvivesVerificationEmailFailure(t *testing.T) {
	users := new(mocks.UserRepositoryMock)
	store := new(mocks.OTPStoreMock)
	m := new(mocks.MailerMock)
	handler := newAuthHandler(users, store, m)
	router := setupAuthRouter(handler)

	users.On("CreateUser", mock.Anything, mock.AnythingOfType("models.User")).
		Return(models.User{ID: 1, Username: "alice", PersonalEmail: "alice@example.com"}, nil).Once()
	store.On("Put", mock.Anything, "alice@example.com", mock.AnythingOfType("string"), 10*time.Minute).
		Return(nil).Once()
	m.On("SendOTP", mock.Anything, "alice@example.com", mock.AnythingOfType("string")).
		Return(errors.New("smtp down")).Once()

	body := bytes.NewBufferString(`{"full_name":"Alice A","username":"alice","personal_email":"alice@example.com","password":"hunter22","confirm_password":"hunter22"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/signup", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	m.AssertExpectations(t)
}

func TestSignupUsernameTaken(t *testing.T) {
	users := new(mocks.UserRepositoryMock)
	handler := newAuthHandler(users, new(mocks.OTPStoreMock), new(mocks.MailerMock))
	router := setupAuthRouter(handler)

	users.On("CreateUser", mock.Anything, mock.AnythingOfType("models.User")).
		Return(models.User{}, apperrors.ErrUsernameTaken).Once()

	body := bytes.NewBufferString(`{"full_name":"Alice A","username":"alice","personal_email":"alice@example.com","password":"hunter22","confirm_password":"hunter22"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/signup", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusConflict, rec.Code)
	users.AssertExpectations(t)
}

func TestSignupMissingFields(t *testing.T) {
	handler := newAuthHandler(new(mocks.UserRepositoryMock), new(mocks.OTPStoreMock), new(mocks.MailerMock))
	router := setupAuthRouter(handler)

	req := httptest.NewRequest(http.MethodPost, "/auth/signup", bytes.NewBufferString(`{"username":"alice"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginWithEmailSuccess(t *testing.T) {
	users := new(mocks.UserRepositoryMock)
	handler := newAuthHandler(users, new(mocks.OTPStoreMock), new(mocks.MailerMock))
	router := setupAuthRouter(handler)

	hash, err := auth.HashPassword("hunter22")
	require.NoError(t, err)
	users.On("GetUserByLoginEmail", mock.Anything, "alice@example.com").
		Return(models.User{ID: 1, Username: "alice", PersonalEmail: "alice@example.com", PasswordHash: hash}, nil).Once()

	body := bytes.NewBufferString(`{"identifier":"alice@example.com","password":"hunter22"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/login", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	users.AssertExpectations(t)
}

func TestLoginWithUsernameResolvesCollegeEmail(t *testing.T) {
	users := new(mocks.UserRepositoryMock)
	handler := newAuthHandler(users, new(mocks.OTPStoreMock), new(mocks.MailerMock))
	router := setupAuthRouter(handler)

	hash, err := auth.HashPassword("hunter22")
	require.NoError(t, err)
	user := models.User{ID: 1, Username: "alice", PersonalEmail: "alice@example.com", CollegeEmail: "alice@college.edu", PasswordHash: hash}

	users.On("GetUserByUsername", mock.Anything, "alice").Return(user, nil).Once()
	users.On("GetUserByLoginEmail", mock.Anything, "alice@college.edu").Return(user, nil).Once()

	body := bytes.NewBufferString(`{"identifier":"Alice","password":"hunter22"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/login", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	users.AssertExpectations(t)
}

func TestLoginUnknownUsername(t *testing.T) {
	users := new(mocks.UserRepositoryMock)
	handler := newAuthHandler(users, new(mocks.OTPStoreMock), new(mocks.MailerMock))
	router := setupAuthRouter(handler)

	users.On("GetUserByUsername", mock.Anything, "ghost").Return(models.User{}, apperrors.ErrUserNotFound).Once()

	body := bytes.NewBufferString(`{"identifier":"ghost","password":"hunter22"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/login", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	var resp map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "Username not found", resp["error"])
	users.AssertExpectations(t)
}

func TestLoginWrongPassword(t *testing.T) {
	users := new(mocks.UserRepositoryMock)
	handler := newAuthHandler(users, new(mocks.OTPStoreMock), new(mocks.MailerMock))
	router := setupAuthRouter(handler)

	hash, err := auth.HashPassword("hunter22")
	require.NoError(t, err)
	users.On("GetUserByLoginEmail", mock.Anything, "alice@example.com").
		Return(models.User{ID: 1, PersonalEmail: "alice@example.com", PasswordHash: hash}, nil).Once()

	body := bytes.NewBufferString(`{"identifier":"alice@example.com","password":"wrong"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/login", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	users.AssertExpectations(t)
}

func TestSendOTPSuccess(t *testing.T) {
	users := new(mocks.UserRepositoryMock)
	store := new(mocks.OTPStoreMock)
	mailerMock := new(mocks.MailerMock)
	handler := newAuthHandler(users, store, mailerMock)
	router := setupAuthRouter(handler)

	users.On("GetUser", mock.Anything, 1).Return(models.User{ID: 1, PersonalEmail: "alice@example.com"}, nil).Once()
	store.On("Put", mock.Anything, "alice@example.com", mock.AnythingOfType("string"), 10*time.Minute).Return(nil).Once()
	mailerMock.On("SendOTP", mock.Anything, "alice@example.com", mock.AnythingOfType("string")).Return(nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/auth/otp/send", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	// The code must never leak into the response body.
	assert.NotContains(t, rec.Body.String(), "code")
	users.AssertExpectations(t)
	store.AssertExpectations(t)
	mailerMock.AssertExpectations(t)
}

func TestSendOTPMailerFailure(t *testing.T) {
	users := new(mocks.UserRepositoryMock)
	store := new(mocks.OTPStoreMock)
	mailerMock := new(mocks.MailerMock)
	handler := newAuthHandler(users, store, mailerMock)
	router := setupAuthRouter(handler)

	users.On("GetUser", mock.Anything, 1).Return(models.User{ID: 1, PersonalEmail: "alice@example.com"}, nil).Once()
	store.On("Put", mock.Anything, "alice@example.com", mock.AnythingOfType("string"), 10*time.Minute).Return(nil).Once()
	mailerMock.On("SendOTP", mock.Anything, "alice@example.com", mock.AnythingOfType("string")).
		Return(apperrors.EmailDelivery("failed to send verification email", assert.AnError)).Once()

	req := httptest.NewRequest(http.MethodPost, "/auth/otp/send", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadGateway, rec.Code)
	mailerMock.AssertExpectations(t)
}

func TestVerifyOTPSuccess(t *testing.T) {
	users := new(mocks.UserRepositoryMock)
	store := new(mocks.OTPStoreMock)
	handler := newAuthHandler(users, store, new(mocks.MailerMock))
	router := setupAuthRouter(handler)

	users.On("GetUser", mock.Anything, 1).Return(models.User{ID: 1, PersonalEmail: "alice@example.com"}, nil).Once()
	store.On("Verify", mock.Anything, "alice@example.com", "123456").Return(nil).Once()
	users.On("SetEmailVerified", mock.Anything, 1).Return(nil).Once()

	body := bytes.NewBufferString(`{"code":"123456"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/otp/verify", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	users.AssertExpectations(t)
	store.AssertExpectations(t)
}

func TestVerifyOTPWrongCode(t *testing.T) {
	users := new(mocks.UserRepositoryMock)
	store := new(mocks.OTPStoreMock)
	handler := newAuthHandler(users, store, new(mocks.MailerMock))
	router := setupAuthRouter(handler)

	users.On("GetUser", mock.Anything, 1).Return(models.User{ID: 1, PersonalEmail: "alice@example.com"}, nil).Once()
	store.On("Verify", mock.Anything, "alice@example.com", "000000").Return(apperrors.ErrOTPMismatch).Once()

	body := bytes.NewBufferString(`{"code":"000000"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/otp/verify", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	users.AssertExpectations(t)
	store.AssertExpectations(t)
}

func TestMeSuccess(t *testing.T) {
	users := new(mocks.UserRepositoryMock)
	handler := newAuthHandler(users, new(mocks.OTPStoreMock), new(mocks.MailerMock))
	router := setupAuthRouter(handler)

	users.On("GetUser", mock.Anything, 1).Return(models.User{ID: 1, Username: "alice", PasswordHash: "secret-hash"}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "secret-hash")
	users.AssertExpectations(t)
}

func TestUpdateMeSuccess(t *testing.T) {
	users := new(mocks.UserRepositoryMock)
	handler := newAuthHandler(users, new(mocks.OTPStoreMock), new(mocks.MailerMock))
	router := setupAuthRouter(handler)

	phone := "5551234"
	users.On("UpdateProfile", mock.Anything, 1, "Alice B", "alice", &phone).
		Return(models.User{ID: 1, FullName: "Alice B", Username: "alice", Phone: &phone}, nil).Once()

	body := bytes.NewBufferString(`{"full_name":"Alice B","username":"alice","phone":"5551234"}`)
	req := httptest.NewRequest(http.MethodPut, "/auth/me", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	users.AssertExpectations(t)
}
