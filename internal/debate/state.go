// Package debate implements the turn-rotation and session-lifecycle state
// machine that orchestrates a debate session.
package debate

import (
	"time"

	"github.com/AbdelalimB1729/The-Math-Council/internal/domain"
)

// State is the in-memory mirror of one debate session. It is the
// authoritative live view while resident: the orchestrator is its sole
// writer, and every mutation happens under the per-session lock.
//
// Invariants:
//   - CurrentSpeaker is a valid index into Participants whenever the roster
//     is non-empty; an empty roster resets it to 0 and no turns are produced.
//   - Complete is monotonic. It is never cleared by any action; only a fresh
//     rehydration from the store recomputes it.
type State struct {
	ID             int64
	Problem        string
	Difficulty     string
	Participants   []*domain.Participant
	History        []*domain.Message
	CurrentSpeaker int
	RoundCount     int
	MaxRounds      int
	Paused         bool
	Complete       bool
	CreatedAt      time.Time
}

// Active reports whether the session can produce a turn right now.
// A paused or completed session, or one with an empty roster, is inactive.
// This is a normal state, not an error.
func (s *State) Active() bool {
	return !s.Complete && !s.Paused && len(s.Participants) > 0
}

// CurrentParticipant returns the roster entry whose turn is next, or nil if
// the roster is empty.
func (s *State) CurrentParticipant() *domain.Participant {
	if len(s.Participants) == 0 {
		return nil
	}
	return s.Participants[s.CurrentSpeaker]
}

// advanceTurn moves the turn pointer to the next roster entry.
func (s *State) advanceTurn() {
	s.CurrentSpeaker = (s.CurrentSpeaker + 1) % len(s.Participants)
}

// recomputeCeiling resets the round ceiling to two turns per active
// participant and repairs the turn pointer after a roster edit. The pointer
// resets to the start of the roster when it falls past the end; kicked
// speakers therefore change who speaks next. Marks the session complete when
// the counter already meets the new ceiling.
func (s *State) recomputeCeiling() {
	s.MaxRounds = len(s.Participants) * 2
	if s.CurrentSpeaker >= len(s.Participants) {
		s.CurrentSpeaker = 0
	}
	if s.RoundCount >= s.MaxRounds {
		s.Complete = true
	}
}

// participant returns the roster entry with the given ID, or nil.
func (s *State) participant(participantID int64) *domain.Participant {
	for _, p := range s.Participants {
		if p.ID == participantID {
			return p
		}
	}
	return nil
}

// removeParticipant drops the participant with the given ID from the roster,
// shifting subsequent entries left. Returns false if no roster entry matches.
func (s *State) removeParticipant(participantID int64) bool {
	for i, p := range s.Participants {
		if p.ID == participantID {
			s.Participants = append(s.Participants[:i], s.Participants[i+1:]...)
			return true
		}
	}
	return false
}

// Status is a point-in-time snapshot of a session handed to callers and
// broadcast to listeners. It copies everything it exposes so readers never
// alias live mirror state.
type Status struct {
	ID             int64                 `json:"id"`
	Problem        string                `json:"problem"`
	Difficulty     string                `json:"difficulty"`
	Participants   []*domain.Participant `json:"participants"`
	IsPaused       bool                  `json:"is_paused"`
	IsComplete     bool                  `json:"is_complete"`
	RoundCount     int                   `json:"round_count"`
	MaxRounds      int                   `json:"max_rounds"`
	CurrentSpeaker *domain.Participant   `json:"current_speaker"`
	CreatedAt      time.Time             `json:"created_at"`
}

// snapshot builds a Status from the mirror. Callers must hold the session
// lock.
func (s *State) snapshot() *Status {
	participants := make([]*domain.Participant, len(s.Participants))
	for i, p := range s.Participants {
		cp := *p
		participants[i] = &cp
	}

	var current *domain.Participant
	if p := s.CurrentParticipant(); p != nil {
		cp := *p
		current = &cp
	}

	return &Status{
		ID:             s.ID,
		Problem:        s.Problem,
		Difficulty:     s.Difficulty,
		Participants:   participants,
		IsPaused:       s.Paused,
		IsComplete:     s.Complete,
		RoundCount:     s.RoundCount,
		MaxRounds:      s.MaxRounds,
		CurrentSpeaker: current,
		CreatedAt:      s.CreatedAt,
	}
}
