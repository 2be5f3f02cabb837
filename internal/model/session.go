package model

// Reserved keys in a stored session record.
const (
	SessionIDKey     = "id"
	SessionUserIDKey = "user_id"
)

// SessionRecord is an opaque detection-session document. Caller-supplied
// fields pass through unchanged; the store adds user_id and id.
type SessionRecord map[string]any

// SaveSessionResponse is returned after a session record is stored.
type SaveSessionResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}
