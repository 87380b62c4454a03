package debate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/AbdelalimB1729/The-Math-Council/internal/council"
	"github.com/AbdelalimB1729/The-Math-Council/internal/domain"
	"github.com/AbdelalimB1729/The-Math-Council/internal/generator"
	"github.com/AbdelalimB1729/The-Math-Council/internal/store"
)

// Allowed bounds for the participant count at session creation.
const (
	MinParticipants = 3
	MaxParticipants = 7
)

var (
	// ErrSessionNotFound indicates the requested session does not exist.
	ErrSessionNotFound = errors.New("session not found")

	// ErrNotActive indicates a turn was requested on a paused, completed or
	// empty-roster session. This is a normal outcome, not a fault.
	ErrNotActive = errors.New("debate is not active")

	// ErrTurnInProgress indicates a turn is already being produced for the
	// session.
	ErrTurnInProgress = errors.New("turn production already in progress")

	// ErrParticipantNotFound indicates the participant is not on the
	// session's active roster.
	ErrParticipantNotFound = errors.New("participant not found in session")

	// ErrEmptyProblem indicates a session was requested without a problem
	// statement.
	ErrEmptyProblem = errors.New("problem statement must not be empty")

	// ErrInvalidMemberCount indicates the requested participant count is
	// outside the allowed bounds.
	ErrInvalidMemberCount = fmt.Errorf("member count must be between %d and %d", MinParticipants, MaxParticipants)
)

// Notifier broadcasts orchestrator events to listeners subscribed to a
// session. Delivery is best-effort and unacknowledged; the orchestrator
// never blocks on it.
type Notifier interface {
	Typing(sessionID int64, speaker string)
	NewMessage(sessionID int64, message *domain.Message)
	SessionUpdated(sessionID int64, status *Status)
	DebateComplete(sessionID int64)
}

// NopNotifier discards all events.
type NopNotifier struct{}

func (NopNotifier) Typing(int64, string)              {}
func (NopNotifier) NewMessage(int64, *domain.Message) {}
func (NopNotifier) SessionUpdated(int64, *Status)     {}
func (NopNotifier) DebateComplete(int64)              {}

// Orchestrator owns one state machine per active debate session. It mediates
// every mutation, keeps each in-memory mirror consistent with the durable
// store, and serializes operations per session so that concurrent callers
// cannot race on the turn pointer.
type Orchestrator struct {
	repo     store.Repository
	gen      generator.Generator
	notifier Notifier
	cache    *sessionCache

	// locks holds one mutex per session ID. Turn production acquires it
	// with TryLock so a second concurrent turn reports a conflict instead of
	// queuing behind an unbounded generator call.
	locks sync.Map
}

// NewOrchestrator creates an orchestrator. Mirrors idle longer than cacheTTL
// become eligible for eviction by the cache sweeper.
func NewOrchestrator(repo store.Repository, gen generator.Generator, notifier Notifier, cacheTTL time.Duration) *Orchestrator {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &Orchestrator{
		repo:     repo,
		gen:      gen,
		notifier: notifier,
		cache:    newSessionCache(cacheTTL),
	}
}

func (o *Orchestrator) lockFor(sessionID int64) *sync.Mutex {
	lock, _ := o.locks.LoadOrStore(sessionID, &sync.Mutex{})
	return lock.(*sync.Mutex)
}

// CreateSession persists a new session with n randomly sampled personalities
// and registers a fresh mirror for it. Returns the initial status snapshot.
func (o *Orchestrator) CreateSession(ctx context.Context, problem, difficulty string, memberCount int) (*Status, error) {
	if strings.TrimSpace(problem) == "" {
		return nil, ErrEmptyProblem
	}
	if memberCount < MinParticipants || memberCount > MaxParticipants {
		return nil, ErrInvalidMemberCount
	}

	session := &domain.Session{Problem: problem, Difficulty: difficulty}
	if err := o.repo.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	profiles := council.Sample(memberCount)
	participants := make([]*domain.Participant, 0, len(profiles))
	for _, profile := range profiles {
		p := &domain.Participant{
			SessionID:   session.ID,
			Name:        profile.Name,
			Personality: profile.Personality,
			Specialty:   profile.Specialty,
		}
		if err := o.repo.CreateParticipant(ctx, p); err != nil {
			// Roll back the partial session so no orphaned row survives.
			if delErr := o.repo.DeleteSessionData(ctx, session.ID); delErr != nil {
				slog.Warn("Failed to clean up partially created session",
					"session_id", session.ID, "error", delErr)
			}
			return nil, fmt.Errorf("create participant %q: %w", profile.Name, err)
		}
		participants = append(participants, p)
	}

	state := &State{
		ID:           session.ID,
		Problem:      session.Problem,
		Difficulty:   session.Difficulty,
		Participants: participants,
		MaxRounds:    len(participants) * 2,
		CreatedAt:    session.CreatedAt,
	}
	o.cache.put(state)

	slog.Info("Debate session created",
		"session_id", session.ID,
		"difficulty", difficulty,
		"participants", len(participants))

	return state.snapshot(), nil
}

// session returns the resident mirror for a session, rehydrating it from the
// store on a cache miss. In-memory state is authoritative while resident:
// a cache hit never re-reads the store.
//
// Rehydration recomputes turn order from persisted facts: the pointer is the
// message count modulo the active roster size, the counter is the message
// count, and the ceiling is twice the roster size. Pause state is not
// persisted, so a rehydrated session always resumes unpaused.
func (o *Orchestrator) session(ctx context.Context, sessionID int64) (*State, error) {
	if state := o.cache.get(sessionID); state != nil {
		return state, nil
	}

	session, err := o.repo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}

	participants, err := o.repo.ActiveParticipants(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load participants: %w", err)
	}
	messages, err := o.repo.MessagesBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load messages: %w", err)
	}

	pointer := 0
	if len(participants) > 0 {
		pointer = len(messages) % len(participants)
	}

	state := &State{
		ID:             session.ID,
		Problem:        session.Problem,
		Difficulty:     session.Difficulty,
		Participants:   participants,
		History:        messages,
		CurrentSpeaker: pointer,
		RoundCount:     len(messages),
		MaxRounds:      len(participants) * 2,
		Complete:       len(messages) >= len(participants)*2,
		CreatedAt:      session.CreatedAt,
	}
	o.cache.put(state)

	slog.Info("Debate session rehydrated",
		"session_id", sessionID,
		"messages", len(messages),
		"participants", len(participants))

	return state, nil
}

// GenerateNext produces the next debate turn: it invokes the response
// generator for the current speaker, persists the resulting message, advances
// the turn pointer and completes the session when the round ceiling is
// reached.
//
// Returns ErrNotActive when the session is paused, completed or has no
// roster, and ErrTurnInProgress when another turn is already in flight.
// Generator failures degrade to canned text rather than skipping the turn;
// only store failures are surfaced.
func (o *Orchestrator) GenerateNext(ctx context.Context, sessionID int64) (*domain.Message, error) {
	mu := o.lockFor(sessionID)
	if !mu.TryLock() {
		return nil, ErrTurnInProgress
	}
	defer mu.Unlock()

	state, err := o.session(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !state.Active() {
		return nil, ErrNotActive
	}

	speaker := state.CurrentParticipant()
	o.notifier.Typing(sessionID, speaker.Name)

	// A rehydrated roster only carries the snapshotted fields; fall back to
	// them if the name is somehow not in the catalog.
	profile, err := council.Lookup(speaker.Name)
	if err != nil {
		profile = council.Profile{
			Name:        speaker.Name,
			Personality: speaker.Personality,
			Specialty:   speaker.Specialty,
		}
	}

	content, err := o.gen.Generate(ctx, profile, state.Problem, state.History, state.Difficulty)
	if err != nil || strings.TrimSpace(content) == "" {
		slog.Warn("Response generation failed, substituting canned response",
			"session_id", sessionID, "speaker", speaker.Name, "error", err)
		content = generator.CannedResponse(speaker.Name)
	}

	message := &domain.Message{
		SessionID:     sessionID,
		ParticipantID: speaker.ID,
		Content:       content,
		Name:          speaker.Name,
		Personality:   speaker.Personality,
		Specialty:     speaker.Specialty,
	}
	if err := o.repo.CreateMessage(ctx, message); err != nil {
		return nil, fmt.Errorf("persist message: %w", err)
	}

	state.History = append(state.History, message)
	state.RoundCount++
	state.advanceTurn()
	if state.RoundCount >= state.MaxRounds {
		state.Complete = true
	}

	o.notifier.NewMessage(sessionID, message)
	if state.Complete {
		slog.Info("Debate complete", "session_id", sessionID, "rounds", state.RoundCount)
		o.notifier.DebateComplete(sessionID)
	}

	return message, nil
}

// Pause sets the advisory pause flag. It only gates future turn production;
// an in-flight generator call is not cancelled. Pause state is not persisted.
func (o *Orchestrator) Pause(ctx context.Context, sessionID int64) (*Status, error) {
	return o.mutate(ctx, sessionID, func(state *State) {
		state.Paused = true
	})
}

// Resume clears the pause flag.
func (o *Orchestrator) Resume(ctx context.Context, sessionID int64) (*Status, error) {
	return o.mutate(ctx, sessionID, func(state *State) {
		state.Paused = false
	})
}

// ForceComplete unconditionally ends the debate, bypassing the round ceiling.
func (o *Orchestrator) ForceComplete(ctx context.Context, sessionID int64) (*Status, error) {
	mu := o.lockFor(sessionID)
	mu.Lock()
	defer mu.Unlock()

	state, err := o.session(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	state.Complete = true

	o.notifier.DebateComplete(sessionID)
	return state.snapshot(), nil
}

// KickParticipant deactivates a participant in the store and removes it from
// the mirror roster. The participant must be on the session's active roster;
// ids belonging to other sessions are rejected. The round ceiling is
// recomputed from the shrunken roster; the turn pointer resets to the start
// of the roster when it falls past the end, and the session completes
// instantly if the round counter already meets the new ceiling.
func (o *Orchestrator) KickParticipant(ctx context.Context, sessionID, participantID int64) (*Status, error) {
	mu := o.lockFor(sessionID)
	mu.Lock()
	defer mu.Unlock()

	state, err := o.session(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if state.participant(participantID) == nil {
		return nil, ErrParticipantNotFound
	}

	if err := o.repo.DeactivateParticipant(ctx, participantID); err != nil {
		return nil, fmt.Errorf("deactivate participant: %w", err)
	}

	if state.removeParticipant(participantID) {
		state.recomputeCeiling()
	}

	status := state.snapshot()
	o.notifier.SessionUpdated(sessionID, status)
	return status, nil
}

// AddParticipant joins a catalog personality to the session mid-debate. The
// snapshot is appended to the end of the roster, so its first turn comes
// when the pointer cycles to the new last index.
func (o *Orchestrator) AddParticipant(ctx context.Context, sessionID int64, personalityName string) (*domain.Participant, error) {
	profile, err := council.Lookup(personalityName)
	if err != nil {
		return nil, err
	}

	mu := o.lockFor(sessionID)
	mu.Lock()
	defer mu.Unlock()

	state, err := o.session(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	participant := &domain.Participant{
		SessionID:   sessionID,
		Name:        profile.Name,
		Personality: profile.Personality,
		Specialty:   profile.Specialty,
	}
	if err := o.repo.CreateParticipant(ctx, participant); err != nil {
		return nil, fmt.Errorf("create participant: %w", err)
	}

	state.Participants = append(state.Participants, participant)
	state.MaxRounds = len(state.Participants) * 2

	o.notifier.SessionUpdated(sessionID, state.snapshot())
	return participant, nil
}

// DeleteSession evicts the mirror and deletes all persisted rows for the
// session in dependency order. Deleting a nonexistent session is not an
// error.
func (o *Orchestrator) DeleteSession(ctx context.Context, sessionID int64) error {
	mu := o.lockFor(sessionID)
	mu.Lock()
	defer func() {
		mu.Unlock()
		o.locks.Delete(sessionID)
	}()

	o.cache.remove(sessionID)
	if err := o.repo.DeleteSessionData(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session data: %w", err)
	}

	slog.Info("Debate session deleted", "session_id", sessionID)
	return nil
}

// Status returns a snapshot of the session, rehydrating it if needed.
func (o *Orchestrator) Status(ctx context.Context, sessionID int64) (*Status, error) {
	mu := o.lockFor(sessionID)
	mu.Lock()
	defer mu.Unlock()

	state, err := o.session(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return state.snapshot(), nil
}

// Transcript returns the session's message log in creation order.
func (o *Orchestrator) Transcript(ctx context.Context, sessionID int64) ([]*domain.Message, error) {
	mu := o.lockFor(sessionID)
	mu.Lock()
	defer mu.Unlock()

	state, err := o.session(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	transcript := make([]*domain.Message, len(state.History))
	copy(transcript, state.History)
	return transcript, nil
}

// ListSessions returns all persisted sessions, most recent first.
func (o *Orchestrator) ListSessions(ctx context.Context) ([]*domain.Session, error) {
	return o.repo.ListSessions(ctx)
}

// mutate applies a quick state edit under the session lock and broadcasts
// the updated snapshot.
func (o *Orchestrator) mutate(ctx context.Context, sessionID int64, fn func(*State)) (*Status, error) {
	mu := o.lockFor(sessionID)
	mu.Lock()
	defer mu.Unlock()

	state, err := o.session(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	fn(state)

	status := state.snapshot()
	o.notifier.SessionUpdated(sessionID, status)
	return status, nil
}
