package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/AbdelalimB1729/The-Math-Council/internal/council"
	"github.com/AbdelalimB1729/The-Math-Council/internal/debate"
	"github.com/AbdelalimB1729/The-Math-Council/internal/domain"
	"github.com/AbdelalimB1729/The-Math-Council/internal/store"
	"github.com/go-chi/chi/v5"
)

// DebateHandler handles debate session endpoints.
type DebateHandler struct {
	orc  *debate.Orchestrator
	repo store.Repository
}

// NewDebateHandler creates a new debate handler.
func NewDebateHandler(orc *debate.Orchestrator, repo store.Repository) *DebateHandler {
	return &DebateHandler{orc: orc, repo: repo}
}

// RegisterRoutes registers debate session routes.
func (h *DebateHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/sessions", func(r chi.Router) {
		r.Post("/", h.CreateSession)
		r.Get("/", h.ListSessions)
		r.Get("/personalities", h.ListPersonalities)
		r.Route("/{sessionID}", func(r chi.Router) {
			r.Get("/", h.GetSession)
			r.Delete("/", h.DeleteSession)
			r.Post("/generate", h.GenerateNext)
			r.Post("/pause", h.Pause)
			r.Post("/resume", h.Resume)
			r.Post("/force-complete", h.ForceComplete)
			r.Post("/participants", h.AddParticipant)
			r.Delete("/participants/{participantID}", h.KickParticipant)
		})
	})
}

type createSessionRequest struct {
	Problem     string `json:"problem"`
	Difficulty  string `json:"difficulty"`
	MemberCount int    `json:"member_count"`
}

// CreateSession starts a new debate with randomly sampled personalities.
func (h *DebateHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !domain.ValidDifficulty(req.Difficulty) {
		Error(w, http.StatusBadRequest, "difficulty must be easy, medium or hard")
		return
	}

	status, err := h.orc.CreateSession(r.Context(), req.Problem, req.Difficulty, req.MemberCount)
	if err != nil {
		h.writeError(w, err, "Failed to create session")
		return
	}

	JSON(w, http.StatusCreated, map[string]interface{}{
		"session_id":   status.ID,
		"participants": status.Participants,
		"session":      status,
	})
}

// sessionSummary is one row of the sessions listing.
type sessionSummary struct {
	*domain.Session
	MessageCount int64           `json:"message_count"`
	LastMessage  *domain.Message `json:"last_message,omitempty"`
}

// ListSessions returns all sessions, most recent first, each with its
// message count and latest message.
func (h *DebateHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.orc.ListSessions(r.Context())
	if err != nil {
		h.writeError(w, err, "Failed to list sessions")
		return
	}

	summaries := make([]sessionSummary, 0, len(sessions))
	for _, session := range sessions {
		count, err := h.repo.CountMessages(r.Context(), session.ID)
		if err != nil {
			h.writeError(w, err, "Failed to count messages")
			return
		}
		last, err := h.repo.LastMessage(r.Context(), session.ID)
		if err != nil {
			h.writeError(w, err, "Failed to fetch last message")
			return
		}
		summaries = append(summaries, sessionSummary{
			Session:      session,
			MessageCount: count,
			LastMessage:  last,
		})
	}

	JSON(w, http.StatusOK, map[string]interface{}{"sessions": summaries})
}

// ListPersonalities returns the full personality catalog.
func (h *DebateHandler) ListPersonalities(w http.ResponseWriter, _ *http.Request) {
	JSON(w, http.StatusOK, map[string]interface{}{"personalities": council.All()})
}

// GetSession returns the session status snapshot and its full transcript.
func (h *DebateHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	status, err := h.orc.Status(r.Context(), sessionID)
	if err != nil {
		h.writeError(w, err, "Failed to get session")
		return
	}
	messages, err := h.orc.Transcript(r.Context(), sessionID)
	if err != nil {
		h.writeError(w, err, "Failed to get transcript")
		return
	}

	JSON(w, http.StatusOK, map[string]interface{}{
		"session":  status,
		"messages": messages,
	})
}

// GenerateNext produces the next debate turn.
func (h *DebateHandler) GenerateNext(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	message, err := h.orc.GenerateNext(r.Context(), sessionID)
	if err != nil {
		// An inactive debate is a normal outcome, mirrored as success=false.
		if errors.Is(err, debate.ErrNotActive) {
			JSON(w, http.StatusOK, map[string]interface{}{
				"success": false,
				"error":   "Debate is not active",
			})
			return
		}
		h.writeError(w, err, "Failed to generate response")
		return
	}

	JSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": message,
	})
}

// Pause sets the advisory pause flag.
func (h *DebateHandler) Pause(w http.ResponseWriter, r *http.Request) {
	h.mutateSession(w, r, h.orc.Pause)
}

// Resume clears the advisory pause flag.
func (h *DebateHandler) Resume(w http.ResponseWriter, r *http.Request) {
	h.mutateSession(w, r, h.orc.Resume)
}

// ForceComplete ends the debate early, bypassing the round ceiling.
func (h *DebateHandler) ForceComplete(w http.ResponseWriter, r *http.Request) {
	h.mutateSession(w, r, h.orc.ForceComplete)
}

type addParticipantRequest struct {
	Personality string `json:"personality"`
}

// AddParticipant joins a catalog personality to the debate mid-session.
func (h *DebateHandler) AddParticipant(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	var req addParticipantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Personality == "" {
		Error(w, http.StatusBadRequest, "personality is required")
		return
	}

	participant, err := h.orc.AddParticipant(r.Context(), sessionID, req.Personality)
	if err != nil {
		h.writeError(w, err, "Failed to add participant")
		return
	}

	JSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"participant": participant,
	})
}

// KickParticipant deactivates a participant mid-session.
func (h *DebateHandler) KickParticipant(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	participantID, err := strconv.ParseInt(chi.URLParam(r, "participantID"), 10, 64)
	if err != nil || participantID <= 0 {
		Error(w, http.StatusBadRequest, "invalid participant id")
		return
	}

	status, err := h.orc.KickParticipant(r.Context(), sessionID, participantID)
	if err != nil {
		h.writeError(w, err, "Failed to kick participant")
		return
	}

	JSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"session": status,
	})
}

// DeleteSession removes a session and all of its data. Idempotent.
func (h *DebateHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	if err := h.orc.DeleteSession(r.Context(), sessionID); err != nil {
		h.writeError(w, err, "Failed to delete session")
		return
	}

	JSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

func (h *DebateHandler) mutateSession(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, sessionID int64) (*debate.Status, error)) {
	sessionID, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	status, err := op(r.Context(), sessionID)
	if err != nil {
		h.writeError(w, err, "Failed to update session")
		return
	}

	JSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"session": status,
	})
}

func (h *DebateHandler) sessionID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "sessionID"), 10, 64)
	if err != nil || id <= 0 {
		Error(w, http.StatusBadRequest, "invalid session id")
		return 0, false
	}
	return id, true
}

// writeError maps orchestrator errors onto HTTP responses.
func (h *DebateHandler) writeError(w http.ResponseWriter, err error, logMsg string) {
	switch {
	case errors.Is(err, debate.ErrSessionNotFound):
		Error(w, http.StatusNotFound, "session not found")
	case errors.Is(err, debate.ErrParticipantNotFound):
		Error(w, http.StatusNotFound, "participant not found")
	case errors.Is(err, council.ErrUnknownProfile):
		Error(w, http.StatusBadRequest, "unknown personality")
	case errors.Is(err, debate.ErrEmptyProblem),
		errors.Is(err, debate.ErrInvalidMemberCount):
		Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, debate.ErrTurnInProgress):
		Error(w, http.StatusConflict, "turn production already in progress")
	default:
		slog.Error(logMsg, "error", err)
		Error(w, http.StatusInternalServerError, "internal error")
	}
}
