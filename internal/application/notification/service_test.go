package notification

import (
	"context"
	"errors"
	"testing"

	"github.com/council-xenith/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockRepo struct{ mock.Mock }

func (m *mockRepo) Put(ctx context.Context, n *domain.Notification) error {
	return m.Called(ctx, n).Error(0)
}
func (m *mockRepo) ListActive(ctx context.Context) ([]domain.Notification, error) {
	args := m.Called(ctx)
	ns, _ := args.Get(0).([]domain.Notification)
	return ns, args.Error(1)
}
func (m *mockRepo) Delete(ctx context.Context, notificationID string) error {
	return m.Called(ctx, notificationID).Error(0)
}

type mockPublisher struct{ mock.Mock }

func (m *mockPublisher) Publish(ctx context.Context, subject, message string) error {
	return m.Called(ctx, subject, message).Error(0)
}

func TestCreate_StoresAndPublishes(t *testing.T) {
	repo, pub := &mockRepo{}, &mockPublisher{}
	svc := NewService(repo, pub)
	link := "https://council.example.com/fest"
	repo.On("Put", mock.Anything, mock.AnythingOfType("*domain.Notification")).Return(nil)
	pub.On("Publish", mock.Anything, "Fest", "Starts Friday\n\n"+link).Return(nil)

	n, err := svc.Create(context.Background(), "admin@iitp.ac.in", domain.CreateNotificationRequest{Title: " Fest ", Message: "Starts Friday", Link: &link})
	require.NoError(t, err)
	assert.True(t, n.Active)
	assert.Equal(t, "Fest", n.Title)
	assert.NotEmpty(t, n.NotificationID)
	pub.AssertExpectations(t)
}

func TestCreate_PublishFailureIsNotFatal(t *testing.T) {
	repo, pub := &mockRepo{}, &mockPublisher{}
	svc := NewService(repo, pub)
	repo.On("Put", mock.Anything, mock.Anything).Return(nil)
	pub.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("sns down"))

	_, err := svc.Create(context.Background(), "admin@iitp.ac.in", domain.CreateNotificationRequest{Title: "T", Message: "M"})
	assert.NoError(t, err)
}

func TestCreate_WithoutPublisher(t *testing.T) {
	repo := &mockRepo{}
	svc := NewService(repo, nil)
	repo.On("Put", mock.Anything, mock.Anything).Return(nil)

	_, err := svc.Create(context.Background(), "admin@iitp.ac.in", domain.CreateNotificationRequest{Title: "T", Message: "M"})
	assert.NoError(t, err)
}

func TestCreate_Validation(t *testing.T) {
	repo := &mockRepo{}
	svc := NewService(repo, nil)

	_, err := svc.Create(context.Background(), "admin@iitp.ac.in", domain.CreateNotificationRequest{Title: "T"})
	var ve *domain.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Contains(t, ve.Fields, "message")
	repo.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
}

func TestListActive_NeverNil(t *testing.T) {
	repo := &mockRepo{}
	svc := NewService(repo, nil)
	repo.On("ListActive", mock.Anything).Return(nil, nil)

	ns, err := svc.ListActive(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, ns)
}
