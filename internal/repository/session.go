package repository

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"maps"

	"github.com/oklog/ulid/v2"

	"github.com/vigilance-driver/vigilance-go/internal/model"
)

// SessionRepository persists detection-session documents as JSON rows.
type SessionRepository struct {
	db    *sql.DB
	newID func() string
}

// NewSessionRepository creates a new SessionRepository.
// Record IDs are ULIDs, so ordering by id is insertion order.
func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{
		db:    db,
		newID: func() string { return ulid.Make().String() },
	}
}

// Save stores a copy of payload with user_id injected and returns the new record ID.
func (r *SessionRepository) Save(ctx context.Context, userID string, payload model.SessionRecord) (string, error) {
	doc := make(model.SessionRecord, len(payload)+1)
	maps.Copy(doc, payload)
	doc[model.SessionUserIDKey] = userID

	data, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("encode session payload: %w", err)
	}

	id := r.newID()
	query := `INSERT INTO sessions (id, user_id, payload) VALUES (?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, query, id, userID, data); err != nil {
		return "", fmt.Errorf("insert session: %w", err)
	}

	return id, nil
}

// ListByUser returns every record owned by userID in insertion order,
// each with its store ID under the "id" key.
func (r *SessionRepository) ListByUser(ctx context.Context, userID string) ([]model.SessionRecord, error) {
	query := `SELECT id, payload FROM sessions WHERE user_id = ? ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("select sessions: %w", err)
	}
	defer rows.Close()

	records := make([]model.SessionRecord, 0)
	for rows.Next() {
		var (
			id      string
			payload []byte
		)
		if err := rows.Scan(&id, &payload); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}

		rec, err := decodePayload(payload)
		if err != nil {
			return nil, fmt.Errorf("decode session %s: %w", id, err)
		}
		rec[model.SessionIDKey] = id
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}

	return records, nil
}

func decodePayload(payload []byte) (model.SessionRecord, error) {
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()

	var rec model.SessionRecord
	if err := dec.Decode(&rec); err != nil {
		return nil, err
	}
	if rec == nil {
		rec = make(model.SessionRecord)
	}
	return rec, nil
}
