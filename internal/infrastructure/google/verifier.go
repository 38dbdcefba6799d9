package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/council-xenith/internal/domain"
	"google.golang.org/api/idtoken"
)

// Payload is the subset of Google ID token claims used for admin sign-in.
type Payload struct {
	Sub           string
	Email         string
	EmailVerified bool
	Name          string
	HostedDomain  string // "hd" claim, empty for consumer accounts
}

type validateFunc func(ctx context.Context, token, audience string) (*idtoken.Payload, error)

// Verifier checks Google ID tokens issued for the council admin console.
type Verifier struct {
	clientID string
	validate validateFunc
}

func NewVerifier(clientID string) *Verifier {
	return &Verifier{clientID: clientID, validate: idtoken.Validate}
}

// Verify validates token against the configured client ID. Any failure,
// including a missing client ID, is reported as domain.ErrUnauthorized.
func (v *Verifier) Verify(ctx context.Context, token string) (*Payload, error) {
	if v.clientID == "" {
		return nil, fmt.Errorf("google sign-in is not configured: %w", domain.ErrUnauthorized)
	}
	p, err := v.validate(ctx, token, v.clientID)
	if err != nil {
		slog.Debug("google token rejected", "err", err)
		return nil, fmt.Errorf("invalid google token: %w", domain.ErrUnauthorized)
	}
	if p == nil {
		return nil, errors.New("google: empty token payload")
	}
	claim := func(name string) string {
		s, _ := p.Claims[name].(string)
		return s
	}
	verified, _ := p.Claims["email_verified"].(bool)
	return &Payload{
		Sub:           p.Subject,
		Email:         claim("email"),
		EmailVerified: verified,
		Name:          claim("name"),
		HostedDomain:  claim("hd"),
	}, nil
}
