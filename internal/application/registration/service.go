// Package registration manages admin-defined registration templates and the
// submissions made against them.
package registration

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/council-xenith/internal/domain"
	"github.com/council-xenith/internal/infrastructure/dynamo"
	"github.com/council-xenith/internal/pkg/id"
	"github.com/council-xenith/internal/pkg/metrics"
	"github.com/council-xenith/internal/pkg/validate"
	"github.com/samber/lo"
	"golang.org/x/crypto/bcrypt"
)

var (
	errAlreadyRegistered = fmt.Errorf("you have already registered for this event: %w", domain.ErrConflict)
	errSubmitInFlight    = fmt.Errorf("another submission for this email is in progress, try again: %w", domain.ErrConflict)
)

type TemplateStore interface {
	Create(ctx context.Context, t *domain.RegistrationTemplate) error
	Replace(ctx context.Context, t *domain.RegistrationTemplate) error
	Get(ctx context.Context, slug string) (*domain.RegistrationTemplate, error)
	List(ctx context.Context) ([]domain.RegistrationTemplate, error)
	SetActive(ctx context.Context, slug string, active bool) error
	Delete(ctx context.Context, slug string) error
}

type SubmissionStore interface {
	Create(ctx context.Context, s *domain.Submission) error
	ExistsForEmail(ctx context.Context, slug, email string) (bool, error)
	ListByTemplate(ctx context.Context, slug string, limit int32, cursor string) ([]domain.Submission, string, error)
	Delete(ctx context.Context, id string) error
	DeleteByTemplate(ctx context.Context, slug string) (int, error)
}

// PublicTemplate is the view of a template served to applicants. Fields are
// omitted for password-protected templates until they are unlocked.
type PublicTemplate struct {
	Slug        string                   `json:"slug"`
	Title       string                   `json:"title"`
	Description string                   `json:"description,omitempty"`
	BannerURL   *string                  `json:"bannerUrl,omitempty"`
	Protected   bool                     `json:"protected"`
	Fields      []domain.FieldDefinition `json:"fields,omitempty"`
}

type UnlockRequest struct {
	Password string `json:"password" validate:"required"`
}

type Service interface {
	CreateTemplate(ctx context.Context, adminEmail string, in domain.TemplateInput) (*domain.RegistrationTemplate, error)
	UpdateTemplate(ctx context.Context, slug string, in domain.TemplateInput) (*domain.RegistrationTemplate, error)
	GetTemplate(ctx context.Context, slug string) (*domain.RegistrationTemplate, error)
	ListTemplates(ctx context.Context) ([]domain.RegistrationTemplate, error)
	SetActive(ctx context.Context, slug string, active bool) error
	DeleteTemplate(ctx context.Context, slug string) error

	PublicTemplate(ctx context.Context, slug string) (*PublicTemplate, error)
	Unlock(ctx context.Context, slug string, req UnlockRequest) (*PublicTemplate, error)
	Submit(ctx context.Context, req domain.SubmitRequest) (*domain.Submission, error)

	ListSubmissions(ctx context.Context, slug string, limit int32, cursor string) ([]domain.Submission, string, error)
	DeleteSubmission(ctx context.Context, id string) error
}

type ServiceDeps struct {
	Templates   TemplateStore
	Submissions SubmissionStore
	Schemas     *SchemaCache
}

type service struct {
	templates   TemplateStore
	submissions SubmissionStore
	schemas     *SchemaCache
	now         func() time.Time
}

func NewService(d ServiceDeps) Service {
	return &service{
		templates:   d.Templates,
		submissions: d.Submissions,
		schemas:     d.Schemas,
		now:         time.Now,
	}
}

func (s *service) CreateTemplate(ctx context.Context, adminEmail string, in domain.TemplateInput) (*domain.RegistrationTemplate, error) {
	if err := s.checkInput(in); err != nil {
		return nil, err
	}
	now := s.now().UTC()
	t := &domain.RegistrationTemplate{
		Slug:        in.Slug,
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		BannerURL:   in.BannerURL,
		Fields:      in.Fields,
		Active:      lo.FromPtrOr(in.Active, true),
		CreatedBy:   adminEmail,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if in.Password != nil {
		hash, err := hashPassword(*in.Password)
		if err != nil {
			return nil, err
		}
		t.PasswordHash = hash
	}
	if err := s.templates.Create(ctx, t); err != nil {
		if errors.Is(err, dynamo.ErrConditionFailed) {
			return nil, fmt.Errorf("template %q already exists: %w", in.Slug, domain.ErrConflict)
		}
		return nil, err
	}
	slog.Info("template created", "slug", t.Slug, "by", adminEmail)
	return t, nil
}

func (s *service) UpdateTemplate(ctx context.Context, slug string, in domain.TemplateInput) (*domain.RegistrationTemplate, error) {
	if in.Slug != slug {
		return nil, domain.NewValidationError(map[string]string{"slug": "slug cannot be changed"})
	}
	if err := s.checkInput(in); err != nil {
		return nil, err
	}
	t, err := s.templates.Get(ctx, slug)
	if err != nil {
		return nil, err
	}
	t.Title = strings.TrimSpace(in.Title)
	t.Description = in.Description
	t.BannerURL = in.BannerURL
	t.Fields = in.Fields
	t.Active = lo.FromPtrOr(in.Active, t.Active)
	switch {
	case in.ClearPassword:
		t.PasswordHash = ""
	case in.Password != nil:
		hash, err := hashPassword(*in.Password)
		if err != nil {
			return nil, err
		}
		t.PasswordHash = hash
	}
	t.UpdatedAt = s.now().UTC()
	if err := s.templates.Replace(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *service) GetTemplate(ctx context.Context, slug string) (*domain.RegistrationTemplate, error) {
	return s.templates.Get(ctx, slug)
}

// ListTemplates returns all templates, most recently updated first.
func (s *service) ListTemplates(ctx context.Context) ([]domain.RegistrationTemplate, error) {
	ts, err := s.templates.List(ctx)
	if err != nil {
		return nil, err
	}
	ts = lo.Ternary(ts == nil, []domain.RegistrationTemplate{}, ts)
	sort.SliceStable(ts, func(i, j int) bool { return ts[i].UpdatedAt.After(ts[j].UpdatedAt) })
	return ts, nil
}

func (s *service) SetActive(ctx context.Context, slug string, active bool) error {
	return s.templates.SetActive(ctx, slug, active)
}

// DeleteTemplate removes the template and all of its submissions.
func (s *service) DeleteTemplate(ctx context.Context, slug string) error {
	if err := s.templates.Delete(ctx, slug); err != nil {
		return err
	}
	n, err := s.submissions.DeleteByTemplate(ctx, slug)
	if err != nil {
		return fmt.Errorf("delete submissions of %q: %w", slug, err)
	}
	slog.Info("template deleted", "slug", slug, "submissions", n)
	return nil
}

func (s *service) PublicTemplate(ctx context.Context, slug string) (*PublicTemplate, error) {
	t, err := s.activeTemplate(ctx, slug)
	if err != nil {
		return nil, err
	}
	return publicView(t, !t.Protected()), nil
}

func (s *service) Unlock(ctx context.Context, slug string, req UnlockRequest) (*PublicTemplate, error) {
	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	t, err := s.activeTemplate(ctx, slug)
	if err != nil {
		return nil, err
	}
	if err := checkPassword(t, req.Password); err != nil {
		return nil, err
	}
	return publicView(t, true), nil
}

func (s *service) Submit(ctx context.Context, req domain.SubmitRequest) (*domain.Submission, error) {
	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	t, err := s.activeTemplate(ctx, req.TemplateSlug)
	if err != nil {
		return nil, err
	}
	if err := checkPassword(t, req.Password); err != nil {
		return nil, err
	}
	schema, err := s.schemas.Get(t)
	if err != nil {
		return nil, err
	}
	if fieldErrs := schema.Validate(req.Data); len(fieldErrs) > 0 {
		metrics.Submissions.WithLabelValues("invalid").Inc()
		return nil, domain.NewValidationError(fieldErrs)
	}

	email := schema.EmailValue(req.Data)
	if email != "" {
		exists, err := s.submissions.ExistsForEmail(ctx, t.Slug, email)
		if err != nil {
			return nil, err
		}
		if exists {
			metrics.Submissions.WithLabelValues("duplicate").Inc()
			return nil, errAlreadyRegistered
		}
	}

	data := lo.PickByKeys(req.Data, schema.Keys())
	if email != "" {
		// Store the normalised address so it matches the uniqueness claim.
		for _, f := range t.Fields {
			if f.Type == domain.FieldEmail {
				data[f.Key] = email
				break
			}
		}
	}
	sub := &domain.Submission{
		SubmissionID: id.New(),
		TemplateSlug: t.Slug,
		Email:        email,
		Data:         data,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.submissions.Create(ctx, sub); err != nil {
		if errors.Is(err, dynamo.ErrClaimTaken) {
			metrics.Submissions.WithLabelValues("duplicate").Inc()
			return nil, errAlreadyRegistered
		}
		if errors.Is(err, dynamo.ErrTxnConflict) {
			metrics.Submissions.WithLabelValues("conflict").Inc()
			return nil, errSubmitInFlight
		}
		metrics.Submissions.WithLabelValues("error").Inc()
		return nil, err
	}
	metrics.Submissions.WithLabelValues("accepted").Inc()
	return sub, nil
}

func (s *service) ListSubmissions(ctx context.Context, slug string, limit int32, cursor string) ([]domain.Submission, string, error) {
	if _, err := s.templates.Get(ctx, slug); err != nil {
		return nil, "", err
	}
	if limit <= 0 || limit > 200 {
		limit = 100
	}
	subs, next, err := s.submissions.ListByTemplate(ctx, slug, limit, cursor)
	if err != nil {
		return nil, "", err
	}
	return lo.Ternary(subs == nil, []domain.Submission{}, subs), next, nil
}

func (s *service) DeleteSubmission(ctx context.Context, id string) error {
	return s.submissions.Delete(ctx, id)
}

func (s *service) checkInput(in domain.TemplateInput) error {
	if err := validate.Struct(in); err != nil {
		return err
	}
	if _, err := s.schemas.Compile(in.Fields); err != nil {
		return err
	}
	return nil
}

func (s *service) activeTemplate(ctx context.Context, slug string) (*domain.RegistrationTemplate, error) {
	t, err := s.templates.Get(ctx, slug)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("registration not found or closed: %w", domain.ErrNotFound)
		}
		return nil, err
	}
	if !t.Active {
		return nil, fmt.Errorf("registration not found or closed: %w", domain.ErrNotFound)
	}
	return t, nil
}

func publicView(t *domain.RegistrationTemplate, withFields bool) *PublicTemplate {
	v := &PublicTemplate{
		Slug:        t.Slug,
		Title:       t.Title,
		Description: t.Description,
		BannerURL:   t.BannerURL,
		Protected:   t.Protected(),
	}
	if withFields {
		v.Fields = t.Fields
	}
	return v
}

func hashPassword(pw string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash template password: %w", err)
	}
	return string(hash), nil
}

func checkPassword(t *domain.RegistrationTemplate, pw string) error {
	if !t.Protected() {
		return nil
	}
	if pw == "" || bcrypt.CompareHashAndPassword([]byte(t.PasswordHash), []byte(pw)) != nil {
		return fmt.Errorf("invalid registration password: %w", domain.ErrUnauthorized)
	}
	return nil
}
