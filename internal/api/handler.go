// Package api provides the HTTP surface over the orchestrator.
package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/yunseol/ingrid/internal/core"
	"github.com/yunseol/ingrid/internal/orchestrator"
)

type Handler struct {
	orch *orchestrator.Orchestrator
}

func NewHandler(orch *orchestrator.Orchestrator) *Handler {
	return &Handler{orch: orch}
}

// RegisterRoutes registers routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.POST("/v1/query", h.PostQuery)
	e.GET("/v1/sessions", h.ListSessions)
	e.GET("/v1/sessions/:session_id/context", h.GetSessionContext)
	e.GET("/v1/sessions/:session_id/summary", h.GetSessionSummary)
	e.POST("/v1/sessions/:session_id/clear", h.ClearSessionContext)
	e.DELETE("/v1/sessions/:session_id", h.DeleteSession)

	e.GET("/health", h.Health)
}

// Health returns health status.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": "0.1.0",
	})
}

type queryRequest struct {
	UserID    string `json:"user_id"`
	Query     string `json:"query"`
	SessionID string `json:"session_id,omitempty"`
}

// PostQuery runs one conversational turn.
// POST /v1/query
func (h *Handler) PostQuery(c echo.Context) error {
	var req queryRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	if req.UserID == "" || req.Query == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "user_id and query are required"})
	}

	result := h.orch.ProcessQuery(c.Request().Context(), req.UserID, req.Query, core.SessionID(req.SessionID))

	return c.JSON(http.StatusOK, result)
}

// ListSessions returns all live sessions.
// GET /v1/sessions
func (h *Handler) ListSessions(c echo.Context) error {
	sessions := h.orch.Sessions().ListActive()

	return c.JSON(http.StatusOK, map[string]any{
		"sessions": sessions,
		"count":    len(sessions),
	})
}

// GetSessionContext returns a session's message log, optionally bounded to
// the most recent ?limit messages.
// GET /v1/sessions/:session_id/context
func (h *Handler) GetSessionContext(c echo.Context) error {
	sessionID := core.SessionID(c.Param("session_id"))

	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	messages, err := h.orch.Window().Context(sessionID, limit)
	if err != nil {
		return sessionError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"session_id": sessionID,
		"messages":   messages,
	})
}

// GetSessionSummary returns window-usage diagnostics for a session.
// GET /v1/sessions/:session_id/summary
func (h *Handler) GetSessionSummary(c echo.Context) error {
	sessionID := core.SessionID(c.Param("session_id"))

	summary, err := h.orch.Window().Summary(sessionID)
	if err != nil {
		return sessionError(c, err)
	}

	return c.JSON(http.StatusOK, summary)
}

// ClearSessionContext resets a session's context by recreating the session,
// returning the replacement id.
// POST /v1/sessions/:session_id/clear
func (h *Handler) ClearSessionContext(c echo.Context) error {
	sessionID := core.SessionID(c.Param("session_id"))

	newID, err := h.orch.Window().Clear(sessionID)
	if err != nil {
		return sessionError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]any{"session_id": newID})
}

// DeleteSession removes a session entirely.
// DELETE /v1/sessions/:session_id
func (h *Handler) DeleteSession(c echo.Context) error {
	sessionID := core.SessionID(c.Param("session_id"))

	deleted := h.orch.ClearSession(sessionID)
	if !deleted {
		return c.JSON(http.StatusNotFound, map[string]any{"deleted": false, "error": "session not found"})
	}

	return c.JSON(http.StatusOK, map[string]any{"deleted": true})
}

func sessionError(c echo.Context, err error) error {
	if errors.Is(err, core.ErrSessionNotFound) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "session not found"})
	}

	return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
}
