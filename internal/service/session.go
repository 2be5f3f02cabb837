package service

import (
	"context"

	"github.com/vigilance-driver/vigilance-go/internal/model"
)

// SessionSavedMessage is the confirmation returned after a save.
const SessionSavedMessage = "Session saved"

// SessionStore persists detection-session records per user.
type SessionStore interface {
	Save(ctx context.Context, userID string, payload model.SessionRecord) (string, error)
	ListByUser(ctx context.Context, userID string) ([]model.SessionRecord, error)
}

// SessionService handles detection-session business logic.
type SessionService struct {
	store SessionStore
}

// NewSessionService creates a new SessionService.
func NewSessionService(store SessionStore) *SessionService {
	return &SessionService{store: store}
}

// Save stores payload for the authenticated user.
func (s *SessionService) Save(ctx context.Context, userID string, payload model.SessionRecord) (model.SaveSessionResponse, error) {
	if payload == nil {
		return model.SaveSessionResponse{}, ErrInvalidInput
	}

	id, err := s.store.Save(ctx, userID, payload)
	if err != nil {
		return model.SaveSessionResponse{}, err
	}

	return model.SaveSessionResponse{
		Message: SessionSavedMessage,
		ID:      id,
	}, nil
}

// List returns every session record owned by userID.
func (s *SessionService) List(ctx context.Context, userID string) ([]model.SessionRecord, error) {
	records, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []model.SessionRecord{}
	}
	return records, nil
}
