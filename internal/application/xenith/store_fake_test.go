package xenith

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/council-xenith/internal/domain"
	"github.com/council-xenith/internal/infrastructure/dynamo"
	"github.com/council-xenith/internal/infrastructure/smtp"
	"github.com/stretchr/testify/mock"
)

// memStore mirrors the conditional semantics of dynamo.ParticipantRepo.
type memStore struct {
	mu     sync.Mutex
	byMail map[string]domain.Participant
	claims map[string]string
}

func newMemStore() *memStore {
	return &memStore{byMail: map[string]domain.Participant{}, claims: map[string]string{}}
}

func (m *memStore) Get(_ context.Context, email string) (*domain.Participant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.byMail[email]
	if !ok {
		return nil, fmt.Errorf("participant not found: %w", domain.ErrNotFound)
	}
	return &p, nil
}

func (m *memStore) GetByKey(_ context.Context, level domain.Level, key string) (*domain.Participant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.byMail {
		if p.KeyFor(level) == key {
			return &p, nil
		}
	}
	return nil, fmt.Errorf("key not found: %w", domain.ErrNotFound)
}

func (m *memStore) Create(_ context.Context, p *domain.Participant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byMail[p.Email]; ok {
		return dynamo.ErrConditionFailed
	}
	if _, ok := m.claims[p.Level1Key]; ok {
		return dynamo.ErrClaimTaken
	}
	m.claims[p.Level1Key] = p.Email
	m.byMail[p.Email] = *p
	return nil
}

func (m *memStore) SetLevelKey(_ context.Context, email string, level domain.Level, key string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.byMail[email]
	if !ok || p.KeyFor(level-1) == "" || p.KeyFor(level) != "" {
		return dynamo.ErrConditionFailed
	}
	if _, ok := m.claims[key]; ok {
		return dynamo.ErrClaimTaken
	}
	m.claims[key] = email
	switch level {
	case domain.Level2:
		p.Level2Key = key
	case domain.Level3:
		p.Level3Key = key
	}
	p.VerifiedAt[level.Stamp()] = at
	p.UpdatedAt = at
	m.byMail[email] = p
	return nil
}

func (m *memStore) ScanPage(_ context.Context, _ int32, _ string) ([]domain.Participant, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Participant, 0, len(m.byMail))
	for _, p := range m.byMail {
		out = append(out, p)
	}
	return out, "", nil
}

// racingStore lets a competing writer commit first and then fails the
// caller's transaction the way DynamoDB cancels the loser of a race.
type racingStore struct {
	*memStore
	winnerKey string
	lost      bool
}

func (r *racingStore) Create(ctx context.Context, p *domain.Participant) error {
	if !r.lost {
		r.lost = true
		winner := *p
		winner.Level1Key = r.winnerKey
		if err := r.memStore.Create(ctx, &winner); err != nil {
			return err
		}
		return dynamo.ErrTxnConflict
	}
	return r.memStore.Create(ctx, p)
}

func (r *racingStore) SetLevelKey(ctx context.Context, email string, level domain.Level, key string, at time.Time) error {
	if !r.lost {
		r.lost = true
		if err := r.memStore.SetLevelKey(ctx, email, level, r.winnerKey, at); err != nil {
			return err
		}
		return dynamo.ErrTxnConflict
	}
	return r.memStore.SetLevelKey(ctx, email, level, key, at)
}

// --- mocks ---

type mockStore struct{ mock.Mock }

func (m *mockStore) Get(ctx context.Context, email string) (*domain.Participant, error) {
	args := m.Called(ctx, email)
	if p, _ := args.Get(0).(*domain.Participant); p != nil {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockStore) GetByKey(ctx context.Context, level domain.Level, key string) (*domain.Participant, error) {
	args := m.Called(ctx, level, key)
	if p, _ := args.Get(0).(*domain.Participant); p != nil {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockStore) Create(ctx context.Context, p *domain.Participant) error {
	return m.Called(ctx, p).Error(0)
}
func (m *mockStore) SetLevelKey(ctx context.Context, email string, level domain.Level, key string, at time.Time) error {
	return m.Called(ctx, email, level, key, at).Error(0)
}
func (m *mockStore) ScanPage(ctx context.Context, limit int32, cursor string) ([]domain.Participant, string, error) {
	args := m.Called(ctx, limit, cursor)
	ps, _ := args.Get(0).([]domain.Participant)
	return ps, args.String(1), args.Error(2)
}

type mockMailer struct {
	mock.Mock
	mu   sync.Mutex
	sent []smtp.Message
}

func (m *mockMailer) SendEmail(ctx context.Context, msg smtp.Message) error {
	m.mu.Lock()
	m.sent = append(m.sent, msg)
	m.mu.Unlock()
	return m.Called(ctx, msg).Error(0)
}

func (m *mockMailer) last() smtp.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sent[len(m.sent)-1]
}
