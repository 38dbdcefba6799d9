package handler

import (
	"context"

	"github.com/council-xenith/internal/application/admin"
	"github.com/council-xenith/internal/application/media"
	"github.com/council-xenith/internal/application/registration"
	"github.com/council-xenith/internal/application/xenith"
	"github.com/council-xenith/internal/domain"
	"github.com/stretchr/testify/mock"
)

type mockXenithSvc struct{ mock.Mock }

func (m *mockXenithSvc) StartLevel1(ctx context.Context, req xenith.RegisterRequest) (bool, error) {
	args := m.Called(ctx, req)
	return args.Bool(0), args.Error(1)
}

func (m *mockXenithSvc) StartLevel(ctx context.Context, level domain.Level, req xenith.VerifyRequest) (string, error) {
	args := m.Called(ctx, level, req)
	return args.String(0), args.Error(1)
}

func (m *mockXenithSvc) ConfirmLevel(ctx context.Context, level domain.Level, req xenith.ConfirmRequest) (domain.IssuedKey, error) {
	args := m.Called(ctx, level, req)
	return args.Get(0).(domain.IssuedKey), args.Error(1)
}

type mockRegistrationSvc struct{ mock.Mock }

func (m *mockRegistrationSvc) CreateTemplate(ctx context.Context, adminEmail string, in domain.TemplateInput) (*domain.RegistrationTemplate, error) {
	args := m.Called(ctx, adminEmail, in)
	if t, _ := args.Get(0).(*domain.RegistrationTemplate); t != nil {
		return t, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRegistrationSvc) UpdateTemplate(ctx context.Context, slug string, in domain.TemplateInput) (*domain.RegistrationTemplate, error) {
	args := m.Called(ctx, slug, in)
	if t, _ := args.Get(0).(*domain.RegistrationTemplate); t != nil {
		return t, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRegistrationSvc) GetTemplate(ctx context.Context, slug string) (*domain.RegistrationTemplate, error) {
	args := m.Called(ctx, slug)
	if t, _ := args.Get(0).(*domain.RegistrationTemplate); t != nil {
		return t, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRegistrationSvc) ListTemplates(ctx context.Context) ([]domain.RegistrationTemplate, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.RegistrationTemplate), args.Error(1)
}

func (m *mockRegistrationSvc) SetActive(ctx context.Context, slug string, active bool) error {
	return m.Called(ctx, slug, active).Error(0)
}

func (m *mockRegistrationSvc) DeleteTemplate(ctx context.Context, slug string) error {
	return m.Called(ctx, slug).Error(0)
}

func (m *mockRegistrationSvc) PublicTemplate(ctx context.Context, slug string) (*registration.PublicTemplate, error) {
	args := m.Called(ctx, slug)
	if t, _ := args.Get(0).(*registration.PublicTemplate); t != nil {
		return t, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRegistrationSvc) Unlock(ctx context.Context, slug string, req registration.UnlockRequest) (*registration.PublicTemplate, error) {
	args := m.Called(ctx, slug, req)
	if t, _ := args.Get(0).(*registration.PublicTemplate); t != nil {
		return t, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRegistrationSvc) Submit(ctx context.Context, req domain.SubmitRequest) (*domain.Submission, error) {
	args := m.Called(ctx, req)
	if s, _ := args.Get(0).(*domain.Submission); s != nil {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRegistrationSvc) ListSubmissions(ctx context.Context, slug string, limit int32, cursor string) ([]domain.Submission, string, error) {
	args := m.Called(ctx, slug, limit, cursor)
	return args.Get(0).([]domain.Submission), args.String(1), args.Error(2)
}

func (m *mockRegistrationSvc) DeleteSubmission(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type mockMediaSvc struct{ mock.Mock }

func (m *mockMediaSvc) Upload(ctx context.Context, input media.UploadInput) (*domain.Media, error) {
	args := m.Called(ctx, input)
	if md, _ := args.Get(0).(*domain.Media); md != nil {
		return md, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockMediaSvc) List(ctx context.Context) ([]domain.Media, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Media), args.Error(1)
}

func (m *mockMediaSvc) Delete(ctx context.Context, mediaID string) error {
	return m.Called(ctx, mediaID).Error(0)
}

type mockParticipantReader struct{ mock.Mock }

func (m *mockParticipantReader) Participant(ctx context.Context, email string) (*domain.Participant, error) {
	args := m.Called(ctx, email)
	if p, _ := args.Get(0).(*domain.Participant); p != nil {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockParticipantReader) Participants(ctx context.Context, limit int32, cursor string) ([]domain.Participant, string, error) {
	args := m.Called(ctx, limit, cursor)
	ps, _ := args.Get(0).([]domain.Participant)
	return ps, args.String(1), args.Error(2)
}

type mockAdminSvc struct{ mock.Mock }

func (m *mockAdminSvc) SignIn(ctx context.Context, req admin.SignInRequest) (*admin.Session, error) {
	args := m.Called(ctx, req)
	if s, _ := args.Get(0).(*admin.Session); s != nil {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}
