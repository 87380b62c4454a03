package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/AbdelalimB1729/The-Math-Council/internal/domain"
)

func newTestStore(t *testing.T) Repository {
	t.Helper()
	repo, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() {
		if err := repo.Close(); err != nil {
			t.Errorf("Failed to close store: %v", err)
		}
	})
	return repo
}

func createTestSession(t *testing.T, repo Repository) *domain.Session {
	t.Helper()
	session := &domain.Session{Problem: "Is 0.999... = 1?", Difficulty: domain.DifficultyMedium}
	if err := repo.CreateSession(context.Background(), session); err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	return session
}

func createTestParticipant(t *testing.T, repo Repository, sessionID int64, name string) *domain.Participant {
	t.Helper()
	p := &domain.Participant{
		SessionID:   sessionID,
		Name:        name,
		Personality: "Rigorous and methodical",
		Specialty:   "Geometry and formal proofs",
	}
	if err := repo.CreateParticipant(context.Background(), p); err != nil {
		t.Fatalf("Failed to create participant: %v", err)
	}
	return p
}

func TestCreateAndGetSession(t *testing.T) {
	repo := newTestStore(t)
	ctx := context.Background()

	session := createTestSession(t, repo)
	if session.ID <= 0 {
		t.Fatalf("Expected positive session ID, got %d", session.ID)
	}
	if session.CreatedAt.IsZero() {
		t.Error("Expected creation timestamp to be set")
	}

	got, err := repo.GetSession(ctx, session.ID)
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if got == nil {
		t.Fatal("Expected session, got nil")
	}
	if got.Problem != session.Problem || got.Difficulty != session.Difficulty {
		t.Errorf("Session round-trip mismatch: %+v", got)
	}
}

func TestGetSessionMissing(t *testing.T) {
	repo := newTestStore(t)

	got, err := repo.GetSession(context.Background(), 999)
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if got != nil {
		t.Errorf("Expected nil for missing session, got %+v", got)
	}
}

func TestListSessionsMostRecentFirst(t *testing.T) {
	repo := newTestStore(t)

	first := createTestSession(t, repo)
	second := createTestSession(t, repo)

	sessions, err := repo.ListSessions(context.Background())
	if err != nil {
		t.Fatalf("ListSessions failed: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("Expected 2 sessions, got %d", len(sessions))
	}
	if sessions[0].ID != second.ID || sessions[1].ID != first.ID {
		t.Errorf("Expected most recent first, got %d then %d", sessions[0].ID, sessions[1].ID)
	}
}

func TestActiveParticipantsJoinOrder(t *testing.T) {
	repo := newTestStore(t)
	ctx := context.Background()
	session := createTestSession(t, repo)

	names := []string{"Professor Euclid", "Dr. Chaos", "The Trickster"}
	for _, name := range names {
		createTestParticipant(t, repo, session.ID, name)
	}

	participants, err := repo.ActiveParticipants(ctx, session.ID)
	if err != nil {
		t.Fatalf("ActiveParticipants failed: %v", err)
	}
	if len(participants) != 3 {
		t.Fatalf("Expected 3 participants, got %d", len(participants))
	}
	for i, p := range participants {
		if p.Name != names[i] {
			t.Errorf("Expected %q at position %d, got %q", names[i], i, p.Name)
		}
		if !p.IsActive {
			t.Errorf("Expected participant %q to be active", p.Name)
		}
	}
}

func TestDeactivateParticipant(t *testing.T) {
	repo := newTestStore(t)
	ctx := context.Background()
	session := createTestSession(t, repo)

	keep := createTestParticipant(t, repo, session.ID, "Professor Euclid")
	kick := createTestParticipant(t, repo, session.ID, "Dr. Chaos")

	if err := repo.DeactivateParticipant(ctx, kick.ID); err != nil {
		t.Fatalf("DeactivateParticipant failed: %v", err)
	}

	participants, err := repo.ActiveParticipants(ctx, session.ID)
	if err != nil {
		t.Fatalf("ActiveParticipants failed: %v", err)
	}
	if len(participants) != 1 || participants[0].ID != keep.ID {
		t.Errorf("Expected only %d to remain active, got %+v", keep.ID, participants)
	}
}

func TestMessagesRoundTrip(t *testing.T) {
	repo := newTestStore(t)
	ctx := context.Background()
	session := createTestSession(t, repo)
	author := createTestParticipant(t, repo, session.ID, "Professor Euclid")

	contents := []string{"first", "second", "third"}
	for _, content := range contents {
		msg := &domain.Message{SessionID: session.ID, ParticipantID: author.ID, Content: content}
		if err := repo.CreateMessage(ctx, msg); err != nil {
			t.Fatalf("CreateMessage failed: %v", err)
		}
		if msg.ID <= 0 || msg.CreatedAt.IsZero() {
			t.Fatalf("Expected assigned ID and timestamp, got %+v", msg)
		}
	}

	messages, err := repo.MessagesBySession(ctx, session.ID)
	if err != nil {
		t.Fatalf("MessagesBySession failed: %v", err)
	}
	if len(messages) != 3 {
		t.Fatalf("Expected 3 messages, got %d", len(messages))
	}
	for i, m := range messages {
		if m.Content != contents[i] {
			t.Errorf("Expected %q at position %d, got %q", contents[i], i, m.Content)
		}
		if m.Name != author.Name || m.Specialty != author.Specialty {
			t.Errorf("Expected author fields joined in, got %+v", m)
		}
	}

	count, err := repo.CountMessages(ctx, session.ID)
	if err != nil {
		t.Fatalf("CountMessages failed: %v", err)
	}
	if count != 3 {
		t.Errorf("Expected count 3, got %d", count)
	}

	last, err := repo.LastMessage(ctx, session.ID)
	if err != nil {
		t.Fatalf("LastMessage failed: %v", err)
	}
	if last == nil || last.Content != "third" {
		t.Errorf("Expected last message %q, got %+v", "third", last)
	}
}

func TestLastMessageEmptySession(t *testing.T) {
	repo := newTestStore(t)
	session := createTestSession(t, repo)

	last, err := repo.LastMessage(context.Background(), session.ID)
	if err != nil {
		t.Fatalf("LastMessage failed: %v", err)
	}
	if last != nil {
		t.Errorf("Expected nil for empty session, got %+v", last)
	}
}

func TestDeleteSessionDataIsIdempotent(t *testing.T) {
	repo := newTestStore(t)
	ctx := context.Background()
	session := createTestSession(t, repo)
	author := createTestParticipant(t, repo, session.ID, "Professor Euclid")

	msg := &domain.Message{SessionID: session.ID, ParticipantID: author.ID, Content: "hello"}
	if err := repo.CreateMessage(ctx, msg); err != nil {
		t.Fatalf("CreateMessage failed: %v", err)
	}

	if err := repo.DeleteSessionData(ctx, session.ID); err != nil {
		t.Fatalf("First delete failed: %v", err)
	}

	got, err := repo.GetSession(ctx, session.ID)
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if got != nil {
		t.Errorf("Expected session to be gone, got %+v", got)
	}

	count, err := repo.CountMessages(ctx, session.ID)
	if err != nil {
		t.Fatalf("CountMessages failed: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected 0 messages after delete, got %d", count)
	}

	// Deleting a nonexistent session is not an error.
	if err := repo.DeleteSessionData(ctx, session.ID); err != nil {
		t.Errorf("Second delete failed: %v", err)
	}
}
