package service

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"sync"

	"github.com/vigilance-driver/vigilance-go/internal/model"
	"github.com/vigilance-driver/vigilance-go/internal/repository"
)

type memUserStore struct {
	mu      sync.Mutex
	byEmail map[string]*model.User
	seq     int
	err     error
}

func newMemUserStore() *memUserStore {
	return &memUserStore{byEmail: make(map[string]*model.User)}
}

func (m *memUserStore) Create(_ context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if _, ok := m.byEmail[user.Email]; ok {
		return repository.ErrDuplicateEmail
	}
	m.seq++
	user.ID = fmt.Sprintf("user-%d", m.seq)
	stored := *user
	m.byEmail[user.Email] = &stored
	return nil
}

func (m *memUserStore) GetByEmail(_ context.Context, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	u, ok := m.byEmail[email]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

type memSessionStore struct {
	mu      sync.Mutex
	records []model.SessionRecord
	seq     int
	err     error
}

func (m *memSessionStore) Save(_ context.Context, userID string, payload model.SessionRecord) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return "", m.err
	}
	m.seq++
	id := fmt.Sprintf("s-%03d", m.seq)
	doc := maps.Clone(payload)
	doc[model.SessionUserIDKey] = userID
	doc[model.SessionIDKey] = id
	m.records = append(m.records, doc)
	return id, nil
}

func (m *memSessionStore) ListByUser(_ context.Context, userID string) ([]model.SessionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	var out []model.SessionRecord
	for _, r := range m.records {
		if r[model.SessionUserIDKey] == userID {
			out = append(out, maps.Clone(r))
		}
	}
	return out, nil
}

type failingIssuer struct{}

func (failingIssuer) Issue(string, string) (string, error) {
	return "", errors.New("signer unavailable")
}
