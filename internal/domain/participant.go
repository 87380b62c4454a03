package domain

// Participant is a personality profile joined to a specific session.
// Name, personality and specialty are snapshotted from the catalog profile at
// join time, not referenced live. A kicked participant is deactivated rather
// than deleted so its authored messages keep their attribution.
type Participant struct {
	ID          int64  `json:"id"`
	SessionID   int64  `json:"session_id"`
	Name        string `json:"name"`
	Personality string `json:"personality"`
	Specialty   string `json:"specialty"`
	IsActive    bool   `json:"is_active"`
}
