package repository

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"

	"github.com/vigilance-driver/vigilance-go/internal/model"
)

// MemoryUserRepository is a process-local credential store for development
// and tests. It honours the same uniqueness contract as UserRepository.
type MemoryUserRepository struct {
	mu      sync.RWMutex
	byEmail map[string]model.User
}

// NewMemoryUserRepository creates an empty MemoryUserRepository.
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{byEmail: make(map[string]model.User)}
}

// Create inserts user unless the email is already taken.
func (r *MemoryUserRepository) Create(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byEmail[user.Email]; ok {
		return ErrDuplicateEmail
	}

	user.ID = uuid.NewString()
	user.CreatedAt = time.Now().UTC()
	r.byEmail[user.Email] = *user
	return nil
}

// GetByEmail retrieves a user by their exact email address.
func (r *MemoryUserRepository) GetByEmail(_ context.Context, email string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.byEmail[email]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &user, nil
}

type memorySession struct {
	id      string
	userID  string
	payload model.SessionRecord
}

// MemorySessionRepository is a process-local session store.
type MemorySessionRepository struct {
	mu       sync.RWMutex
	sessions []memorySession
}

// NewMemorySessionRepository creates an empty MemorySessionRepository.
func NewMemorySessionRepository() *MemorySessionRepository {
	return &MemorySessionRepository{}
}

// Save stores a copy of payload with user_id injected.
func (r *MemorySessionRepository) Save(_ context.Context, userID string, payload model.SessionRecord) (string, error) {
	doc := maps.Clone(payload)
	if doc == nil {
		doc = make(model.SessionRecord)
	}
	doc[model.SessionUserIDKey] = userID

	r.mu.Lock()
	defer r.mu.Unlock()

	id := ulid.Make().String()
	r.sessions = append(r.sessions, memorySession{id: id, userID: userID, payload: doc})
	return id, nil
}

// ListByUser returns copies of userID's records in insertion order.
func (r *MemorySessionRepository) ListByUser(_ context.Context, userID string) ([]model.SessionRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	records := make([]model.SessionRecord, 0)
	for _, s := range r.sessions {
		if s.userID != userID {
			continue
		}
		rec := maps.Clone(s.payload)
		rec[model.SessionIDKey] = s.id
		records = append(records, rec)
	}
	return records, nil
}
