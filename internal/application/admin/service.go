// Package admin authenticates council administrators.
package admin

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/council-xenith/internal/domain"
	"github.com/council-xenith/internal/infrastructure/google"
	"github.com/council-xenith/internal/pkg/validate"
	"github.com/samber/lo"
)

type SignInRequest struct {
	IDToken string `json:"idToken" validate:"required"`
}

type Session struct {
	Token     string    `json:"token"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*google.Payload, error)
}

type Signer interface {
	Sign(email, role string) (string, time.Time, error)
}

type Service interface {
	SignIn(ctx context.Context, req SignInRequest) (*Session, error)
}

type service struct {
	verifier TokenVerifier
	signer   Signer
	allowed  map[string]struct{}
}

// NewService builds the service. Only addresses in allowlist may sign in.
func NewService(verifier TokenVerifier, signer Signer, allowlist []string) Service {
	allowed := lo.SliceToMap(allowlist, func(e string) (string, struct{}) {
		return strings.ToLower(strings.TrimSpace(e)), struct{}{}
	})
	return &service{verifier: verifier, signer: signer, allowed: allowed}
}

func (s *service) SignIn(ctx context.Context, req SignInRequest) (*Session, error) {
	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	p, err := s.verifier.Verify(ctx, req.IDToken)
	if err != nil {
		return nil, err
	}
	email := strings.ToLower(strings.TrimSpace(p.Email))
	if email == "" || !p.EmailVerified {
		return nil, fmt.Errorf("google account email is not verified: %w", domain.ErrUnauthorized)
	}
	if _, ok := s.allowed[email]; !ok {
		slog.Warn("admin sign-in refused", "email", email)
		return nil, fmt.Errorf("%s is not an administrator: %w", email, domain.ErrForbidden)
	}
	token, exp, err := s.signer.Sign(email, domain.RoleAdmin)
	if err != nil {
		return nil, fmt.Errorf("sign admin token: %w", err)
	}
	slog.Info("admin signed in", "email", email)
	return &Session{Token: token, Email: email, ExpiresAt: exp}, nil
}
