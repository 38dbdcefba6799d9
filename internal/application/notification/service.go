// Package notification manages site-wide announcements.
package notification

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/council-xenith/internal/domain"
	"github.com/council-xenith/internal/pkg/id"
	"github.com/council-xenith/internal/pkg/validate"
)

type Repo interface {
	Put(ctx context.Context, n *domain.Notification) error
	ListActive(ctx context.Context) ([]domain.Notification, error)
	Delete(ctx context.Context, notificationID string) error
}

// Publisher fans a new announcement out to subscribers.
type Publisher interface {
	Publish(ctx context.Context, subject, message string) error
}

type Service interface {
	ListActive(ctx context.Context) ([]domain.Notification, error)
	Create(ctx context.Context, adminEmail string, req domain.CreateNotificationRequest) (*domain.Notification, error)
	Delete(ctx context.Context, notificationID string) error
}

type service struct {
	repo      Repo
	publisher Publisher
}

// NewService builds the service. publisher may be nil, in which case
// announcements are only stored.
func NewService(repo Repo, publisher Publisher) Service {
	return &service{repo: repo, publisher: publisher}
}

func (s *service) ListActive(ctx context.Context) ([]domain.Notification, error) {
	ns, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	if ns == nil {
		ns = []domain.Notification{}
	}
	return ns, nil
}

func (s *service) Create(ctx context.Context, adminEmail string, req domain.CreateNotificationRequest) (*domain.Notification, error) {
	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	n := &domain.Notification{
		NotificationID: id.New(),
		Title:          strings.TrimSpace(req.Title),
		Message:        strings.TrimSpace(req.Message),
		Link:           req.Link,
		Active:         true,
		CreatedBy:      adminEmail,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.repo.Put(ctx, n); err != nil {
		return nil, err
	}
	if s.publisher != nil {
		body := n.Message
		if n.Link != nil {
			body += "\n\n" + *n.Link
		}
		if err := s.publisher.Publish(ctx, n.Title, body); err != nil {
			slog.Warn("could not publish notification", "id", n.NotificationID, "err", err)
		}
	}
	return n, nil
}

func (s *service) Delete(ctx context.Context, notificationID string) error {
	return s.repo.Delete(ctx, notificationID)
}
