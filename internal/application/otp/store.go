// Package otp issues and verifies single-use numeric passcodes kept in the
// cache with a fixed lifetime.
package otp

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/council-xenith/internal/domain"
	"github.com/council-xenith/internal/infrastructure/cache"
)

// CodeLength is the number of digits in a passcode.
const CodeLength = 6

// ErrAbsent is returned by Read when no passcode is stored for an identifier.
var ErrAbsent = errors.New("otp: absent")

// Cache is the subset of cache.Client the store needs.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	TakeIf(ctx context.Context, key, expected string) (bool, error)
}

// Store keeps one passcode per identifier.
type Store struct {
	cache Cache
	ttl   time.Duration
}

func NewStore(c Cache, ttl time.Duration) *Store {
	return &Store{cache: c, ttl: ttl}
}

// Identifier returns the cache key for email at level: the normalised email
// for level 1 and "level<N>:<email>" for later levels.
func Identifier(level domain.Level, email string) string {
	email = Normalize(email)
	if level <= domain.Level1 {
		return email
	}
	return fmt.Sprintf("level%d:%s", level, email)
}

// Normalize trims and lower-cases an identifier.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Issue stores code for id and returns the value actually written. Callers
// must send the returned value, not their own copy.
func (s *Store) Issue(ctx context.Context, id, code string) (string, error) {
	stored := strings.TrimSpace(code)
	if err := s.cache.Set(ctx, Normalize(id), stored, s.ttl); err != nil {
		return "", fmt.Errorf("store otp: %w", err)
	}
	return stored, nil
}

// Read returns the stored code or ErrAbsent.
func (s *Store) Read(ctx context.Context, id string) (string, error) {
	v, err := s.cache.Get(ctx, Normalize(id))
	if errors.Is(err, cache.ErrNotFound) {
		return "", ErrAbsent
	}
	if err != nil {
		return "", fmt.Errorf("read otp: %w", err)
	}
	return v, nil
}

// Consume deletes the code for id.
func (s *Store) Consume(ctx context.Context, id string) error {
	if err := s.cache.Delete(ctx, Normalize(id)); err != nil {
		return fmt.Errorf("consume otp: %w", err)
	}
	return nil
}

// Verify compares submitted, trimmed, with the stored code and consumes the
// entry on a match in the same cache operation, so a code passes at most once.
func (s *Store) Verify(ctx context.Context, id, submitted string) error {
	ok, err := s.cache.TakeIf(ctx, Normalize(id), strings.TrimSpace(submitted))
	if errors.Is(err, cache.ErrNotFound) {
		return fmt.Errorf("OTP not found or expired: %w", domain.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("verify otp: %w", err)
	}
	if !ok {
		return fmt.Errorf("invalid OTP: %w", domain.ErrUnauthorized)
	}
	return nil
}

// NewCode returns a random CodeLength-digit string.
func NewCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
