package domain

import (
	"time"
)

// Message is a single debate contribution. Immutable once created;
// messages are append-only per session, ordered by creation time.
// Name, Personality and Specialty are joined from the authoring participant
// when reading, so a transcript stays attributable after a kick.
type Message struct {
	ID            int64     `json:"id"`
	SessionID     int64     `json:"session_id"`
	ParticipantID int64     `json:"participant_id"`
	Content       string    `json:"content"`
	CreatedAt     time.Time `json:"created_at"`

	Name        string `json:"name,omitempty"`
	Personality string `json:"personality,omitempty"`
	Specialty   string `json:"specialty,omitempty"`
}
