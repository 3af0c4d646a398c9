package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"hostelx-service/internal/mailer"
	"hostelx-service/internal/models"
	"hostelx-service/internal/otp"
	"hostelx-service/internal/repositories"
)

type UserRepositoryMock struct {
	mock.Mock
}

func (m *UserRepositoryMock) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	args := m.Called(ctx, user)
	var created models.User
	if val := args.Get(0); val != nil {
		created = val.(models.User)
	}
	return created, args.Error(1)
}

func (m *UserRepositoryMock) GetUser(ctx context.Context, userID int) (models.User, error) {
	args := m.Called(ctx, userID)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

func (m *UserRepositoryMock) GetUserByUsername(ctx context.Context, username string) (models.User, error) {
	args := m.Called(ctx, username)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

func (m *UserRepositoryMock) GetUserByLoginEmail(ctx context.Context, email string) (models.User, error) {
	args := m.Called(ctx, email)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

func (m *UserRepositoryMock) UpdateProfile(ctx context.Context, userID int, fullName, username string, phone *string) (models.User, error) {
	args := m.Called(ctx, userID, fullName, username, phone)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

func (m *UserRepositoryMock) SetEmailVerified(ctx context.Context, userID int) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *UserRepositoryMock) BulkUsers(ctx context.Context, ids []int) ([]models.User, error) {
	args := m.Called(ctx, ids)
	var users []models.User
	if val := args.Get(0); val != nil {
		users = val.([]models.User)
	}
	return users, args.Error(1)
}

type PostRepositoryMock struct {
	mock.Mock
}

func (m *PostRepositoryMock) CreatePost(ctx context.Context, post models.Post) (models.Post, error) {
	args := m.Called(ctx, post)
	var created models.Post
	if val := args.Get(0); val != nil {
		created = val.(models.Post)
	}
	return created, args.Error(1)
}

func (m *PostRepositoryMock) GetPost(ctx context.Context, postID int) (models.Post, error) {
	args := m.Called(ctx, postID)
	var post models.Post
	if val := args.Get(0); val != nil {
		post = val.(models.Post)
	}
	return post, args.Error(1)
}

func (m *PostRepositoryMock) ListRecent(ctx context.Context) ([]models.Post, error) {
	args := m.Called(ctx)
	var posts []models.Post
	if val := args.Get(0); val != nil {
		posts = val.([]models.Post)
	}
	return posts, args.Error(1)
}

func (m *PostRepositoryMock) ListByOwner(ctx context.Context, ownerID int) ([]models.Post, error) {
	args := m.Called(ctx, ownerID)
	var posts []models.Post
	if val := args.Get(0); val != nil {
		posts = val.([]models.Post)
	}
	return posts, args.Error(1)
}

func (m *PostRepositoryMock) UpdatePost(ctx context.Context, post models.Post) (models.Post, error) {
	args := m.Called(ctx, post)
	var updated models.Post
	if val := args.Get(0); val != nil {
		updated = val.(models.Post)
	}
	return updated, args.Error(1)
}

func (m *PostRepositoryMock) DeletePost(ctx context.Context, postID int, ownerID int) error {
	args := m.Called(ctx, postID, ownerID)
	return args.Error(0)
}

func (m *PostRepositoryMock) CountActive(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type RequestRepositoryMock struct {
	mock.Mock
}

func (m *RequestRepositoryMock) CreateRequest(ctx context.Context, req models.Request) (models.Request, error) {
	args := m.Called(ctx, req)
	var created models.Request
	if val := args.Get(0); val != nil {
		created = val.(models.Request)
	}
	return created, args.Error(1)
}

func (m *RequestRepositoryMock) GetRequest(ctx context.Context, requestID int) (models.Request, error) {
	args := m.Called(ctx, requestID)
	var req models.Request
	if val := args.Get(0); val != nil {
		req = val.(models.Request)
	}
	return req, args.Error(1)
}

func (m *RequestRepositoryMock) ListIncoming(ctx context.Context, ownerID int) ([]models.Request, error) {
	args := m.Called(ctx, ownerID)
	var reqs []models.Request
	if val := args.Get(0); val != nil {
		reqs = val.([]models.Request)
	}
	return reqs, args.Error(1)
}

func (m *RequestRepositoryMock) ListOutgoing(ctx context.Context, requesterID int) ([]models.Request, error) {
	args := m.Called(ctx, requesterID)
	var reqs []models.Request
	if val := args.Get(0); val != nil {
		reqs = val.([]models.Request)
	}
	return reqs, args.Error(1)
}

func (m *RequestRepositoryMock) AcceptAndOpenConversation(ctx context.Context, requestID int) (models.Request, models.Conversation, error) {
	args := m.Called(ctx, requestID)
	var req models.Request
	if val := args.Get(0); val != nil {
		req = val.(models.Request)
	}
	var conv models.Conversation
	if val := args.Get(1); val != nil {
		conv = val.(models.Conversation)
	}
	return req, conv, args.Error(2)
}

func (m *RequestRepositoryMock) Reject(ctx context.Context, requestID int) (models.Request, error) {
	args := m.Called(ctx, requestID)
	var req models.Request
	if val := args.Get(0); val != nil {
		req = val.(models.Request)
	}
	return req, args.Error(1)
}

type ConversationRepositoryMock struct {
	mock.Mock
}

func (m *ConversationRepositoryMock) GetConversation(ctx context.Context, conversationID int) (models.Conversation, error) {
	args := m.Called(ctx, conversationID)
	var conv models.Conversation
	if val := args.Get(0); val != nil {
		conv = val.(models.Conversation)
	}
	return conv, args.Error(1)
}

func (m *ConversationRepositoryMock) ListForUser(ctx context.Context, userID int) ([]models.Conversation, error) {
	args := m.Called(ctx, userID)
	var convs []models.Conversation
	if val := args.Get(0); val != nil {
		convs = val.([]models.Conversation)
	}
	return convs, args.Error(1)
}

func (m *ConversationRepositoryMock) MarkRead(ctx context.Context, conversationID int, userID int) error {
	args := m.Called(ctx, conversationID, userID)
	return args.Error(0)
}

type MessageRepositoryMock struct {
	mock.Mock
}

func (m *MessageRepositoryMock) AppendMessage(ctx context.Context, conv models.Conversation, senderID int, text string) (models.Message, error) {
	args := m.Called(ctx, conv, senderID, text)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Error(1)
}

func (m *MessageRepositoryMock) ListMessages(ctx context.Context, conversationID int) ([]models.Message, error) {
	args := m.Called(ctx, conversationID)
	var msgs []models.Message
	if val := args.Get(0); val != nil {
		msgs = val.([]models.Message)
	}
	return msgs, args.Error(1)
}

type OTPStoreMock struct {
	mock.Mock
}

func (m *OTPStoreMock) Put(ctx context.Context, email, code string, ttl time.Duration) error {
	args := m.Called(ctx, email, code, ttl)
	return args.Error(0)
}

func (m *OTPStoreMock) Verify(ctx context.Context, email, code string) error {
	args := m.Called(ctx, email, code)
	return args.Error(0)
}

type MailerMock struct {
	mock.Mock
}

func (m *MailerMock) SendOTP(ctx context.Context, to, code string) error {
	args := m.Called(ctx, to, code)
	return args.Error(0)
}

var _ repositories.UserRepository = (*UserRepositoryMock)(nil)
var _ repositories.PostRepository = (*PostRepositoryMock)(nil)
var _ repositories.RequestRepository = (*RequestRepositoryMock)(nil)
var _ repositories.ConversationRepository = (*ConversationRepositoryMock)(nil)
var _ repositories.MessageRepository = (*MessageRepositoryMock)(nil)
var _ otp.Store = (*OTPStoreMock)(nil)
var _ mailer.Mailer = (*MailerMock)(nil)
