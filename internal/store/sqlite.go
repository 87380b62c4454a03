package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/AbdelalimB1729/The-Math-Council/internal/domain"
	"github.com/AbdelalimB1729/The-Math-Council/internal/shared"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Repository using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite creates a new SQLite-backed repository.
func NewSQLite(dbPath string) (Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// Open database with WAL mode for better concurrency.
	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS sessions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		problem TEXT NOT NULL,
		difficulty TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS participants (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id INTEGER NOT NULL,
		name TEXT NOT NULL,
		personality TEXT NOT NULL,
		specialty TEXT NOT NULL,
		is_active INTEGER NOT NULL DEFAULT 1,
		FOREIGN KEY (session_id) REFERENCES sessions (id)
	);
	CREATE INDEX IF NOT EXISTS idx_participants_session ON participants(session_id);

	CREATE TABLE IF NOT EXISTS messages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id INTEGER NOT NULL,
		participant_id INTEGER NOT NULL,
		content TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		FOREIGN KEY (session_id) REFERENCES sessions (id),
		FOREIGN KEY (participant_id) REFERENCES participants (id)
	);
	CREATE INDEX IF NOT EXISTS idx_messages_session ON messages(session_id, created_at);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}

// CreateSession persists a new session record.
func (s *SQLiteStore) CreateSession(ctx context.Context, session *domain.Session) error {
	now := time.Now()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (problem, difficulty, created_at) VALUES (?, ?, ?)`,
		session.Problem, session.Difficulty, now.Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("session insert id: %w", err)
	}
	session.ID = id
	session.CreatedAt = now
	return nil
}

// GetSession retrieves a session by ID.
func (s *SQLiteStore) GetSession(ctx context.Context, sessionID int64) (*domain.Session, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, problem, difficulty, created_at FROM sessions WHERE id = ?`, sessionID)

	var session domain.Session
	var createdAt int64
	err := row.Scan(&session.ID, &session.Problem, &session.Difficulty, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan session row: %w", err)
	}
	session.CreatedAt = time.Unix(createdAt, 0)
	return &session, nil
}

// ListSessions returns all sessions, most recent first.
func (s *SQLiteStore) ListSessions(ctx context.Context) ([]*domain.Session, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, problem, difficulty, created_at FROM sessions ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer closeRows(rows, "sessions")

	var sessions []*domain.Session
	for rows.Next() {
		var session domain.Session
		var createdAt int64
		if err := rows.Scan(&session.ID, &session.Problem, &session.Difficulty, &createdAt); err != nil {
			return nil, fmt.Errorf("scan session row: %w", err)
		}
		session.CreatedAt = time.Unix(createdAt, 0)
		sessions = append(sessions, &session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return sessions, nil
}

// CreateParticipant persists a participant record.
func (s *SQLiteStore) CreateParticipant(ctx context.Context, participant *domain.Participant) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO participants (session_id, name, personality, specialty, is_active) VALUES (?, ?, ?, ?, 1)`,
		participant.SessionID, participant.Name, participant.Personality, participant.Specialty,
	)
	if err != nil {
		return fmt.Errorf("insert participant: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("participant insert id: %w", err)
	}
	participant.ID = id
	participant.IsActive = true
	return nil
}

// ActiveParticipants returns active participants in join order.
func (s *SQLiteStore) ActiveParticipants(ctx context.Context, sessionID int64) ([]*domain.Participant, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session_id, name, personality, specialty, is_active
		 FROM participants WHERE session_id = ? AND is_active = 1 ORDER BY id ASC`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query participants: %w", err)
	}
	defer closeRows(rows, "participants")

	var participants []*domain.Participant
	for rows.Next() {
		var p domain.Participant
		if err := rows.Scan(&p.ID, &p.SessionID, &p.Name, &p.Personality, &p.Specialty, &p.IsActive); err != nil {
			return nil, fmt.Errorf("scan participant row: %w", err)
		}
		participants = append(participants, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate participants: %w", err)
	}
	return participants, nil
}

// DeactivateParticipant marks a participant inactive.
func (s *SQLiteStore) DeactivateParticipant(ctx context.Context, participantID int64) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE participants SET is_active = 0 WHERE id = ?`, participantID)
	if err != nil {
		return fmt.Errorf("deactivate participant: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		slog.Warn("DeactivateParticipant affected 0 rows", "participant_id", participantID)
	}
	return nil
}

// CreateMessage persists a message record.
func (s *SQLiteStore) CreateMessage(ctx context.Context, message *domain.Message) error {
	now := time.Now()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO messages (session_id, participant_id, content, created_at) VALUES (?, ?, ?, ?)`,
		message.SessionID, message.ParticipantID, message.Content, now.Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("message insert id: %w", err)
	}
	message.ID = id
	message.CreatedAt = now
	return nil
}

const messageColumns = `m.id, m.session_id, m.participant_id, m.content, m.created_at,
	p.name, p.personality, p.specialty`

func scanMessage(scanner interface{ Scan(...any) error }) (*domain.Message, error) {
	var m domain.Message
	var createdAt int64
	err := scanner.Scan(
		&m.ID, &m.SessionID, &m.ParticipantID, &m.Content, &createdAt,
		&m.Name, &m.Personality, &m.Specialty,
	)
	if err != nil {
		return nil, err
	}
	m.CreatedAt = time.Unix(createdAt, 0)
	return &m, nil
}

// MessagesBySession returns the message log ordered by creation time ascending.
func (s *SQLiteStore) MessagesBySession(ctx context.Context, sessionID int64) ([]*domain.Message, error) {
	query := `SELECT ` + messageColumns + `
		FROM messages m
		JOIN participants p ON m.participant_id = p.id
		WHERE m.session_id = ?
		ORDER BY m.created_at ASC, m.id ASC`

	rows, err := s.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer closeRows(rows, "messages")

	var messages []*domain.Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan message row: %w", err)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}
	return messages, nil
}

// LastMessage returns the most recent message of a session.
func (s *SQLiteStore) LastMessage(ctx context.Context, sessionID int64) (*domain.Message, error) {
	query := `SELECT ` + messageColumns + `
		FROM messages m
		JOIN participants p ON m.participant_id = p.id
		WHERE m.session_id = ?
		ORDER BY m.created_at DESC, m.id DESC
		LIMIT 1`

	m, err := scanMessage(s.db.QueryRowContext(ctx, query, sessionID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan last message: %w", err)
	}
	return m, nil
}

// CountMessages returns the number of messages for a session.
func (s *SQLiteStore) CountMessages(ctx context.Context, sessionID int64) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM messages WHERE session_id = ?`, sessionID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count messages: %w", err)
	}
	return count, nil
}

// DeleteSessionData removes all rows belonging to a session in dependency
// order: messages, then participants, then the session record. Retries on
// SQLITE_BUSY with exponential backoff.
func (s *SQLiteStore) DeleteSessionData(ctx context.Context, sessionID int64) error {
	maxRetries := 3
	baseDelay := 100 * time.Millisecond

	for i := 0; i < maxRetries; i++ {
		err := s.deleteSessionDataOnce(ctx, sessionID)
		if err == nil {
			return nil
		}

		if shared.IsSQLiteBusy(err) && i < maxRetries-1 {
			delay := baseDelay * time.Duration(1<<i) // exponential backoff: 100ms, 200ms, 400ms
			slog.Debug("DeleteSessionData failed with SQLITE_BUSY, retrying",
				"session_id", sessionID,
				"attempt", i+1,
				"delay", delay)
			time.Sleep(delay)
			continue
		}

		return fmt.Errorf("delete session %d: %w", sessionID, err)
	}

	return nil
}

func (s *SQLiteStore) deleteSessionDataOnce(ctx context.Context, sessionID int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM messages WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("delete messages: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM participants WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("delete participants: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete tx: %w", err)
	}
	return nil
}

func closeRows(rows *sql.Rows, what string) {
	if err := rows.Close(); err != nil {
		slog.Warn("failed to close rows", "query", what, "error", err)
	}
}
