package xenith

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/council-xenith/internal/domain"
	"github.com/council-xenith/internal/infrastructure/dynamo"
	"github.com/council-xenith/internal/pkg/keygen"
	"github.com/sethvargo/go-retry"
)

// ErrKeyCollision is returned when a freshly generated key is already owned
// by another participant. It is retried internally and only surfaces once
// the retry budget is exhausted.
var ErrKeyCollision = fmt.Errorf("level key collision: %w", domain.ErrConflict)

// ParticipantStore persists participants. Create and SetLevelKey must be
// atomic: they return dynamo.ErrConditionFailed when the record precondition
// does not hold, dynamo.ErrClaimTaken when the key is already in use and
// dynamo.ErrTxnConflict when a concurrent write to the same record won.
type ParticipantStore interface {
	Get(ctx context.Context, email string) (*domain.Participant, error)
	GetByKey(ctx context.Context, level domain.Level, key string) (*domain.Participant, error)
	Create(ctx context.Context, p *domain.Participant) error
	SetLevelKey(ctx context.Context, email string, level domain.Level, key string, at time.Time) error
	ScanPage(ctx context.Context, limit int32, cursor string) ([]domain.Participant, string, error)
}

// Tracker issues level keys in strict order. Every key is written with a
// single conditional transaction, so concurrent confirmations for the same
// participant converge on one stored key.
type Tracker struct {
	store     ParticipantStore
	keyPrefix string
	backoff   func() retry.Backoff
	now       func() time.Time
}

func NewTracker(store ParticipantStore, keyPrefix string) *Tracker {
	return &Tracker{
		store:     store,
		keyPrefix: keyPrefix,
		backoff: func() retry.Backoff {
			return retry.WithMaxRetries(4, retry.NewExponential(10*time.Millisecond))
		},
		now: time.Now,
	}
}

// RegisterLevel1 creates the participant with a new level 1 key. When a
// record for email already exists its stored key is returned unchanged with
// Existing set.
func (t *Tracker) RegisterLevel1(ctx context.Context, team, email, name string) (domain.IssuedKey, error) {
	email = normalizeEmail(email)
	var out domain.IssuedKey
	err := retry.Do(ctx, t.backoff(), func(ctx context.Context) error {
		key, err := keygen.Generate(t.keyPrefix, int(domain.Level1))
		if err != nil {
			return err
		}
		now := t.now().UTC()
		p := &domain.Participant{
			Email:       email,
			TeamName:    strings.TrimSpace(team),
			DisplayName: strings.TrimSpace(name),
			Level1Key:   key,
			VerifiedAt:  map[string]time.Time{domain.Level1.Stamp(): now},
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		switch err := t.store.Create(ctx, p); {
		case err == nil:
			out = domain.IssuedKey{Key: key}
			return nil
		case errors.Is(err, dynamo.ErrConditionFailed):
			existing, err := t.store.Get(ctx, email)
			if err != nil {
				return err
			}
			out = domain.IssuedKey{Key: existing.Level1Key, Existing: true}
			return nil
		case errors.Is(err, dynamo.ErrClaimTaken):
			return retry.RetryableError(ErrKeyCollision)
		case errors.Is(err, dynamo.ErrTxnConflict):
			return retry.RetryableError(err)
		default:
			return err
		}
	})
	return out, err
}

// AdvanceLevel issues the key for target (2 or 3). The participant must hold
// the previous level's key; an already issued target key is returned
// unchanged with Existing set.
func (t *Tracker) AdvanceLevel(ctx context.Context, email string, target domain.Level) (domain.IssuedKey, error) {
	email = normalizeEmail(email)
	if target == domain.Level1 {
		p, err := t.store.Get(ctx, email)
		if err != nil {
			return domain.IssuedKey{}, err
		}
		return domain.IssuedKey{Key: p.Level1Key, Existing: true}, nil
	}
	if !target.Valid() {
		return domain.IssuedKey{}, fmt.Errorf("unknown level %d: %w", target, domain.ErrBadRequest)
	}

	var out domain.IssuedKey
	err := retry.Do(ctx, t.backoff(), func(ctx context.Context) error {
		key, err := keygen.Generate(t.keyPrefix, int(target))
		if err != nil {
			return err
		}
		switch err := t.store.SetLevelKey(ctx, email, target, key, t.now().UTC()); {
		case err == nil:
			out = domain.IssuedKey{Key: key}
			return nil
		case errors.Is(err, dynamo.ErrConditionFailed):
			p, err := t.store.Get(ctx, email)
			if err != nil {
				return err
			}
			if p.KeyFor(target-1) == "" {
				return fmt.Errorf("level %d requires a level %d key: %w", target, target-1, domain.ErrPrerequisiteNotMet)
			}
			if k := p.KeyFor(target); k != "" {
				out = domain.IssuedKey{Key: k, Existing: true}
				return nil
			}
			return fmt.Errorf("advance level %d: %w", target, dynamo.ErrConditionFailed)
		case errors.Is(err, dynamo.ErrClaimTaken):
			return retry.RetryableError(ErrKeyCollision)
		case errors.Is(err, dynamo.ErrTxnConflict):
			return retry.RetryableError(err)
		default:
			return err
		}
	})
	return out, err
}

// LookupByKey returns the participant holding key at level.
func (t *Tracker) LookupByKey(ctx context.Context, level domain.Level, key string) (*domain.Participant, error) {
	key = strings.TrimSpace(key)
	if key == "" || !level.Valid() {
		return nil, fmt.Errorf("level %d key not found: %w", level, domain.ErrNotFound)
	}
	return t.store.GetByKey(ctx, level, key)
}

// Participant returns the record for email.
func (t *Tracker) Participant(ctx context.Context, email string) (*domain.Participant, error) {
	return t.store.Get(ctx, normalizeEmail(email))
}

// Participants returns one page of participants for admins.
func (t *Tracker) Participants(ctx context.Context, limit int32, cursor string) ([]domain.Participant, string, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return t.store.ScanPage(ctx, limit, cursor)
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
