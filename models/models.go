package models

import "time"

// Session is the per-user record of the last processed video: the generated
// summary plus the transcript segments used for question answering. At most one
// live session exists per user; processing a new video replaces it wholesale.
type Session struct {
	UserID    string    `json:"user_id"`
	SourceRef string    `json:"source_ref"`
	Summary   string    `json:"summary"`
	Segments  []string  `json:"segments"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session is logically absent at the given instant.
func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
