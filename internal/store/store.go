// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"

	"github.com/AbdelalimB1729/The-Math-Council/internal/domain"
)

// Repository defines the interface for persisting debate sessions,
// participants and messages.
type Repository interface {
	// CreateSession persists a new session and fills in its assigned ID and
	// creation timestamp.
	CreateSession(ctx context.Context, session *domain.Session) error

	// GetSession retrieves a session by ID. Returns (nil, nil) if no session
	// record exists.
	GetSession(ctx context.Context, sessionID int64) (*domain.Session, error)

	// ListSessions returns all sessions ordered by creation time, most
	// recent first.
	ListSessions(ctx context.Context) ([]*domain.Session, error)

	// CreateParticipant persists a participant and fills in its assigned ID.
	CreateParticipant(ctx context.Context, participant *domain.Participant) error

	// ActiveParticipants returns the active participants of a session in
	// join order.
	ActiveParticipants(ctx context.Context, sessionID int64) ([]*domain.Participant, error)

	// DeactivateParticipant marks a participant inactive. Its messages keep
	// their attribution.
	DeactivateParticipant(ctx context.Context, participantID int64) error

	// CreateMessage persists a message and fills in its assigned ID and
	// creation timestamp.
	CreateMessage(ctx context.Context, message *domain.Message) error

	// MessagesBySession returns the full message log of a session ordered by
	// creation time ascending, with author fields joined in.
	MessagesBySession(ctx context.Context, sessionID int64) ([]*domain.Message, error)

	// LastMessage returns the most recent message of a session, or
	// (nil, nil) if the session has no messages.
	LastMessage(ctx context.Context, sessionID int64) (*domain.Message, error)

	// CountMessages returns the number of messages persisted for a session.
	CountMessages(ctx context.Context, sessionID int64) (int64, error)

	// DeleteSessionData deletes all messages, then all participants
	// (including inactive ones), then the session record itself. Idempotent:
	// deleting a nonexistent session is not an error.
	DeleteSessionData(ctx context.Context, sessionID int64) error

	// Ping verifies database connectivity.
	Ping(ctx context.Context) error

	// Close closes the database connection.
	Close() error
}
