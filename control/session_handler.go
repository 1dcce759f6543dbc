package control

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/xx7Ahmed7xx/videobooth/common"
	"github.com/xx7Ahmed7xx/videobooth/journal"
	"github.com/xx7Ahmed7xx/videobooth/recording"
	"github.com/xx7Ahmed7xx/videobooth/session"
)

// SessionHandler exposes the session workflows over the operator API
type SessionHandler struct {
	logger       common.Logger
	orchestrator *session.Orchestrator
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(logger common.Logger, orchestrator *session.Orchestrator) *SessionHandler {
	if logger == nil {
		logger = common.NopLogger
	}

	return &SessionHandler{
		logger:       logger,
		orchestrator: orchestrator,
	}
}

// GetStatus handles GET /api/status
func (h *SessionHandler) GetStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.orchestrator.Status())
}

// ListDevices handles GET /api/devices
func (h *SessionHandler) ListDevices(c *gin.Context) {
	devices, err := h.orchestrator.ListDevices()
	if err != nil {
		h.logger.Error("Failed to list devices", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list devices"})
		return
	}

	type deviceResponse struct {
		ID          string `json:"id"`
		DisplayName string `json:"display_name"`
	}

	response := make([]deviceResponse, 0, len(devices))
	for _, d := range devices {
		response = append(response, deviceResponse{ID: d.ID, DisplayName: d.DisplayName})
	}

	c.JSON(http.StatusOK, response)
}

// GetSnapshot handles GET /api/snapshot
func (h *SessionHandler) GetSnapshot(c *gin.Context) {
	data, err := h.orchestrator.Snapshot()
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No preview frame available"})
		return
	}

	c.Data(http.StatusOK, "image/jpeg", data)
}

// StartPreview handles POST /api/preview/start
func (h *SessionHandler) StartPreview(c *gin.Context) {
	if err := h.orchestrator.StartPreview(); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, h.orchestrator.Status())
}

// StopPreview handles POST /api/preview/stop
func (h *SessionHandler) StopPreview(c *gin.Context) {
	if err := h.orchestrator.StopPreview(); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, h.orchestrator.Status())
}

// StartRecording handles POST /api/recording/start
func (h *SessionHandler) StartRecording(c *gin.Context) {
	if err := h.orchestrator.StartRecording(); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, h.orchestrator.Status())
}

// StopRecording handles POST /api/recording/stop
func (h *SessionHandler) StopRecording(c *gin.Context) {
	if err := h.orchestrator.StopRecording(); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, h.orchestrator.Status())
}

// respondError maps workflow errors to HTTP statuses
func (h *SessionHandler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, session.ErrWrongState):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "state": h.orchestrator.State()})
	case errors.Is(err, session.ErrInvalidSelection):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, recording.ErrEngineNotFound):
		c.JSON(http.StatusFailedDependency, gin.H{"error": err.Error()})
	default:
		h.logger.Error("Operation failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// JournalHandler serves the recorded session history
type JournalHandler struct {
	logger  common.Logger
	journal journal.Journal
}

// NewJournalHandler creates a new journal handler
func NewJournalHandler(logger common.Logger, j journal.Journal) *JournalHandler {
	if logger == nil {
		logger = common.NopLogger
	}

	return &JournalHandler{
		logger:  logger,
		journal: j,
	}
}

// ListSessions handles GET /api/sessions
func (h *JournalHandler) ListSessions(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
			return
		}
		limit = parsed
	}

	entries, err := h.journal.List(c.Request.Context(), limit)
	if err != nil {
		h.logger.Error("Failed to list sessions", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list sessions"})
		return
	}

	c.JSON(http.StatusOK, toSessionResponses(entries))
}

// GetSession handles GET /api/sessions/:id
func (h *JournalHandler) GetSession(c *gin.Context) {
	entry, err := h.journal.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.logger.Error("Failed to get session", "id", c.Param("id"), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get session"})
		return
	}
	if entry == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}

	c.JSON(http.StatusOK, toSessionResponse(entry))
}

// SessionResponse represents a journaled session in API responses
type SessionResponse struct {
	ID              string  `json:"id"`
	StartedAt       string  `json:"started_at"`
	EndedAt         string  `json:"ended_at"`
	OutputPath      string  `json:"output_path"`
	Encoder         string  `json:"encoder"`
	Width           int     `json:"width"`
	Height          int     `json:"height"`
	DurationSeconds float64 `json:"duration_seconds"`
	SizeBytes       int64   `json:"size_bytes"`
	Kept            bool    `json:"kept"`
	EndReason       string  `json:"end_reason"`
}

func toSessionResponse(e *journal.Entry) SessionResponse {
	return SessionResponse{
		ID:              e.ID,
		StartedAt:       common.TimeToString(e.StartedAt),
		EndedAt:         common.TimeToString(e.EndedAt),
		OutputPath:      e.OutputPath,
		Encoder:         e.Encoder,
		Width:           e.Width,
		Height:          e.Height,
		DurationSeconds: e.DurationSeconds,
		SizeBytes:       e.SizeBytes,
		Kept:            e.Kept,
		EndReason:       e.EndReason,
	}
}

func toSessionResponses(entries []*journal.Entry) []SessionResponse {
	responses := make([]SessionResponse, 0, len(entries))
	for _, e := range entries {
		responses = append(responses, toSessionResponse(e))
	}
	return responses
}
