package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"messego/internal/media"
	"messego/internal/models"
)

type UserRepositoryMock struct {
	mock.Mock
}

func (m *UserRepositoryMock) Create(ctx context.Context, name, email, passwordHash string) (models.User, error) {
	args := m.Called(ctx, name, email, passwordHash)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

func (m *UserRepositoryMock) GetByEmail(ctx context.Context, email string) (models.User, error) {
	args := m.Called(ctx, email)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

func (m *UserRepositoryMock) GetByID(ctx context.Context, userID int) (models.User, error) {
	args := m.Called(ctx, userID)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

func (m *UserRepositoryMock) GetSummary(ctx context.Context, userID int) (models.UserSummary, error) {
	args := m.Called(ctx, userID)
	var summary models.UserSummary
	if val := args.Get(0); val != nil {
		summary = val.(models.UserSummary)
	}
	return summary, args.Error(1)
}

func (m *UserRepositoryMock) List(ctx context.Context, viewerID int, search string, limit, offset int, excludeSelf bool) ([]models.Contact, int, error) {
	args := m.Called(ctx, viewerID, search, limit, offset, excludeSelf)
	var contacts []models.Contact
	if val := args.Get(0); val != nil {
		contacts = val.([]models.Contact)
	}
	return contacts, args.Int(1), args.Error(2)
}

func (m *UserRepositoryMock) MessageStats(ctx context.Context, userID int) (int, int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Int(1), args.Error(2)
}

type MessageRepositoryMock struct {
	mock.Mock
}

func (m *MessageRepositoryMock) Create(ctx context.Context, msg models.Message) (models.Message, error) {
	args := m.Called(ctx, msg)
	var stored models.Message
	if val := args.Get(0); val != nil {
		stored = val.(models.Message)
	}
	return stored, args.Error(1)
}

func (m *MessageRepositoryMock) ListConversation(ctx context.Context, viewerID, otherID, limit, offset int) ([]models.Message, error) {
	args := m.Called(ctx, viewerID, otherID, limit, offset)
	var msgs []models.Message
	if val := args.Get(0); val != nil {
		msgs = val.([]models.Message)
	}
	return msgs, args.Error(1)
}

func (m *MessageRepositoryMock) CountConversation(ctx context.Context, viewerID, otherID int) (int, error) {
	args := m.Called(ctx, viewerID, otherID)
	return args.Int(0), args.Error(1)
}

func (m *MessageRepositoryMock) MarkConversationRead(ctx context.Context, viewerID, otherID int) (int, error) {
	args := m.Called(ctx, viewerID, otherID)
	return args.Int(0), args.Error(1)
}

func (m *MessageRepositoryMock) CountUnread(ctx context.Context, viewerID, otherID int) (int, error) {
	args := m.Called(ctx, viewerID, otherID)
	return args.Int(0), args.Error(1)
}

func (m *MessageRepositoryMock) SoftDelete(ctx context.Context, messageID, actorID int) (models.Message, error) {
	args := m.Called(ctx, messageID, actorID)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Error(1)
}

func (m *MessageRepositoryMock) SoftDeleteMany(ctx context.Context, messageIDs []int, actorID int) (int, error) {
	args := m.Called(ctx, messageIDs, actorID)
	return args.Int(0), args.Error(1)
}

func (m *MessageRepositoryMock) SoftDeleteConversationSide(ctx context.Context, actorID, otherID int) (int, error) {
	args := m.Called(ctx, actorID, otherID)
	return args.Int(0), args.Error(1)
}

type UploaderMock struct {
	mock.Mock
}

func (m *UploaderMock) Upload(ctx context.Context, base64Image string) (media.Upload, error) {
	args := m.Called(ctx, base64Image)
	var upload media.Upload
	if val := args.Get(0); val != nil {
		upload = val.(media.Upload)
	}
	return upload, args.Error(1)
}

func (m *UploaderMock) Destroy(ctx context.Context, publicID string) error {
	args := m.Called(ctx, publicID)
	return args.Error(0)
}

// PublisherMock stands in for the event publisher so emitter tests can
// inspect the envelopes handed to it.
type PublisherMock struct {
	mock.Mock
}

func (m *PublisherMock) Publish(ctx context.Context, routingKey string, event any) error {
	args := m.Called(ctx, routingKey, event)
	return args.Error(0)
}

func (m *PublisherMock) Close() error {
	args := m.Called()
	return args.Error(0)
}
