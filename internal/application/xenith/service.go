// Package xenith implements the three-level Xenith challenge: participants
// prove control of an email address with a passcode at each level and
// receive a level key that unlocks the next one.
package xenith

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/council-xenith/internal/application/otp"
	"github.com/council-xenith/internal/domain"
	"github.com/council-xenith/internal/infrastructure/cache"
	"github.com/council-xenith/internal/infrastructure/smtp"
	"github.com/council-xenith/internal/pkg/metrics"
	"github.com/council-xenith/internal/pkg/validate"
)

type RegisterRequest struct {
	TeamName string `json:"teamName" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required,max=100"`
}

type VerifyRequest struct {
	PriorLevelKey string `json:"priorLevelKey" validate:"required"`
}

type ConfirmRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required"`
}

// pending holds level 1 details between the passcode request and its
// confirmation.
type pending struct {
	TeamName string `json:"teamName"`
	Name     string `json:"name"`
}

type Service interface {
	// StartLevel1 emails a level 1 passcode. existing reports whether the
	// email is already registered; the key itself is only returned by
	// ConfirmLevel.
	StartLevel1(ctx context.Context, req RegisterRequest) (existing bool, err error)
	// StartLevel emails a passcode for level 2 or 3 to the owner of the
	// previous level's key and returns that email.
	StartLevel(ctx context.Context, level domain.Level, req VerifyRequest) (email string, err error)
	// ConfirmLevel consumes the passcode and issues (or returns) the level key.
	ConfirmLevel(ctx context.Context, level domain.Level, req ConfirmRequest) (domain.IssuedKey, error)
}

type ServiceDeps struct {
	Tracker     *Tracker
	OTP         *otp.Store
	Cache       otp.Cache
	Mailer      smtp.Mailer
	EmailDomain string
	TTL         time.Duration
}

type service struct {
	tracker     *Tracker
	otp         *otp.Store
	cache       otp.Cache
	mailer      smtp.Mailer
	emailDomain string
	ttl         time.Duration
}

func NewService(d ServiceDeps) Service {
	return &service{
		tracker:     d.Tracker,
		otp:         d.OTP,
		cache:       d.Cache,
		mailer:      d.Mailer,
		emailDomain: strings.ToLower(d.EmailDomain),
		ttl:         d.TTL,
	}
}

func pendingKey(email string) string { return "pending:" + email }

func (s *service) StartLevel1(ctx context.Context, req RegisterRequest) (bool, error) {
	if err := validate.Struct(req); err != nil {
		return false, err
	}
	email := otp.Normalize(req.Email)
	if !strings.HasSuffix(email, "@"+s.emailDomain) {
		return false, domain.NewValidationError(map[string]string{
			"email": fmt.Sprintf("Only @%s email addresses are allowed", s.emailDomain),
		})
	}

	existing := true
	if _, err := s.tracker.Participant(ctx, email); err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return false, err
		}
		existing = false
	}

	b, err := json.Marshal(pending{TeamName: strings.TrimSpace(req.TeamName), Name: strings.TrimSpace(req.Name)})
	if err != nil {
		return false, err
	}
	if err := s.cache.Set(ctx, pendingKey(email), string(b), s.ttl); err != nil {
		return false, fmt.Errorf("stash registration: %w", err)
	}
	if err := s.sendCode(ctx, domain.Level1, email); err != nil {
		return false, err
	}
	return existing, nil
}

func (s *service) StartLevel(ctx context.Context, level domain.Level, req VerifyRequest) (string, error) {
	if level != domain.Level2 && level != domain.Level3 {
		return "", fmt.Errorf("level %d has no key verification step: %w", level, domain.ErrBadRequest)
	}
	if err := validate.Struct(req); err != nil {
		return "", err
	}
	p, err := s.tracker.LookupByKey(ctx, level-1, req.PriorLevelKey)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", fmt.Errorf("invalid level %d key: %w", level-1, domain.ErrNotFound)
		}
		return "", err
	}
	if err := s.sendCode(ctx, level, p.Email); err != nil {
		return "", err
	}
	return p.Email, nil
}

func (s *service) ConfirmLevel(ctx context.Context, level domain.Level, req ConfirmRequest) (domain.IssuedKey, error) {
	if !level.Valid() {
		return domain.IssuedKey{}, fmt.Errorf("unknown level %d: %w", level, domain.ErrBadRequest)
	}
	if err := validate.Struct(req); err != nil {
		return domain.IssuedKey{}, err
	}
	email := otp.Normalize(req.Email)

	var (
		details    pending
		hasDetails bool
	)
	if level == domain.Level1 {
		raw, err := s.cache.Get(ctx, pendingKey(email))
		switch {
		case err == nil:
			if err := json.Unmarshal([]byte(raw), &details); err != nil {
				slog.Warn("discarding unreadable pending registration", "email", email, "err", err)
			} else {
				hasDetails = true
			}
		case !errors.Is(err, cache.ErrNotFound):
			return domain.IssuedKey{}, fmt.Errorf("read pending registration: %w", err)
		}
	}

	if err := s.otp.Verify(ctx, otp.Identifier(level, email), req.OTP); err != nil {
		metrics.OTPVerified.WithLabelValues(metrics.Level(int(level)), verifyResult(err)).Inc()
		return domain.IssuedKey{}, err
	}
	metrics.OTPVerified.WithLabelValues(metrics.Level(int(level)), "ok").Inc()

	var (
		issued domain.IssuedKey
		err    error
	)
	if level == domain.Level1 && !hasDetails {
		if err := s.requireRegistered(ctx, email); err != nil {
			return domain.IssuedKey{}, err
		}
	}
	if level == domain.Level1 {
		issued, err = s.tracker.RegisterLevel1(ctx, details.TeamName, email, details.Name)
		if err == nil {
			if derr := s.cache.Delete(ctx, pendingKey(email)); derr != nil {
				slog.Warn("could not clear pending registration", "email", email, "err", derr)
			}
		}
	} else {
		issued, err = s.tracker.AdvanceLevel(ctx, email, level)
	}
	if err != nil {
		return domain.IssuedKey{}, err
	}
	metrics.KeysIssued.WithLabelValues(metrics.Level(int(level)), fmt.Sprint(issued.Existing)).Inc()
	slog.Info("xenith level confirmed", "level", int(level), "email", email, "existing", issued.Existing)
	return issued, nil
}

// requireRegistered is used when the level 1 details stashed at registration
// are gone. An existing participant can still confirm; anyone else has to
// register again.
func (s *service) requireRegistered(ctx context.Context, email string) error {
	_, err := s.tracker.Participant(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		slog.Warn("pending registration missing at level 1 confirm", "email", email)
		return &domain.ValidationError{
			Message: "registration details expired, please register again",
			Fields:  map[string]string{"email": "register again to receive a new passcode"},
		}
	}
	return err
}

func (s *service) sendCode(ctx context.Context, level domain.Level, email string) error {
	code, err := otp.NewCode()
	if err != nil {
		return err
	}
	stored, err := s.otp.Issue(ctx, otp.Identifier(level, email), code)
	if err != nil {
		return err
	}
	metrics.OTPIssued.WithLabelValues(metrics.Level(int(level))).Inc()
	return s.mailer.SendEmail(ctx, codeMessage(email, level, stored, s.ttl))
}

func codeMessage(to string, level domain.Level, code string, ttl time.Duration) smtp.Message {
	mins := int(ttl.Minutes())
	if mins < 1 {
		mins = 1
	}
	return smtp.Message{
		To:      to,
		Subject: fmt.Sprintf("Xenith level %d verification code", level),
		Text: fmt.Sprintf("Your Xenith level %d verification code is %s.\n\nIt expires in %d minutes. If you did not request it, ignore this email.\n",
			level, code, mins),
		HTML: fmt.Sprintf(`<p>Your Xenith level %d verification code is</p><p style="font-size:24px;letter-spacing:4px"><strong>%s</strong></p><p>It expires in %d minutes. If you did not request it, ignore this email.</p>`,
			level, code, mins),
	}
}

func verifyResult(err error) string {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return "missing"
	case errors.Is(err, domain.ErrUnauthorized):
		return "invalid"
	}
	return "error"
}
