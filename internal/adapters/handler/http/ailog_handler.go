package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/devbd1/routiner-server/internal/adapters/handler/http/middleware"
	"github.com/devbd1/routiner-server/internal/core/domain"
	"github.com/devbd1/routiner-server/internal/core/services"
)

// AILogHandler exposes the freeform-text-to-habit-progress flow:
// generate a reviewed candidate table, then log or register individual
// rows, then discard the session.
type AILogHandler struct {
	svc *services.AILogService
}

func NewAILogHandler(svc *services.AILogService) *AILogHandler {
	return &AILogHandler{svc: svc}
}

type generateLogRequest struct {
	Text string `json:"text" binding:"required"`
	Date string `json:"date"`
}

type candidateActionRequest struct {
	Habit string `json:"habit" binding:"required"`
}

func (h *AILogHandler) RegisterRoutes(router *gin.RouterGroup) {
	ailog := router.Group("/ai-log")
	{
		ailog.POST("/generate", h.Generate)
		ailog.POST("/:sessionID/log", h.Log)
		ailog.POST("/:sessionID/register", h.Register)
		ailog.DELETE("/:sessionID", h.Clear)
	}
}

func (h *AILogHandler) Generate(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	var req generateLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	date := time.Now().UTC()
	if req.Date != "" {
		parsed, err := time.Parse(domain.ProgressDateLayout, req.Date)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date format, expected YYYY-MM-DD"})
			return
		}
		date = parsed
	}

	session, err := h.svc.Generate(c.Request.Context(), userID, date, req.Text)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrPremiumRequired):
			middleware.ObserveAICompletion("premium_required")
			c.JSON(http.StatusPaymentRequired, gin.H{"error": "ai logging requires a premium subscription"})
		case errors.Is(err, services.ErrEmptyLogInput):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, services.ErrUnparsableCompletion):
			middleware.ObserveAICompletion("unparsable")
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "the model response could not be interpreted, try rephrasing"})
		case errors.Is(err, services.ErrNoCompleter):
			middleware.ObserveAICompletion("unconfigured")
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no ai backend is configured"})
		default:
			middleware.ObserveAICompletion("backend_error")
			c.JSON(http.StatusBadGateway, gin.H{"error": "ai backend request failed"})
		}
		return
	}

	middleware.ObserveAICompletion("ok")
	c.JSON(http.StatusOK, session)
}

func (h *AILogHandler) Log(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	var req candidateActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	habit, err := h.svc.Log(c.Request.Context(), userID, c.Param("sessionID"), req.Habit)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrPremiumRequired):
			c.JSON(http.StatusPaymentRequired, gin.H{"error": "ai logging requires a premium subscription"})
		case errors.Is(err, services.ErrSessionNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		case errors.Is(err, services.ErrCandidateNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "candidate not found in session"})
		case errors.Is(err, services.ErrAlreadyLogged):
			c.JSON(http.StatusConflict, gin.H{"error": "habit already logged in this session"})
		case errors.Is(err, services.ErrCandidateSkipped):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "habit is not scheduled for the selected date"})
		case errors.Is(err, services.ErrNotLoggable):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "candidate cannot be logged"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		}
		return
	}

	c.JSON(http.StatusOK, habit)
}

func (h *AILogHandler) Register(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	var req candidateActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	habit, err := h.svc.Register(c.Request.Context(), userID, c.Param("sessionID"), req.Habit)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrPremiumRequired):
			c.JSON(http.StatusPaymentRequired, gin.H{"error": "ai logging requires a premium subscription"})
		case errors.Is(err, services.ErrSessionNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		case errors.Is(err, services.ErrCandidateNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "candidate not found in session"})
		case errors.Is(err, services.ErrNotRegistrable):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "candidate does not need registration"})
		case errors.Is(err, domain.ErrHabitDuplicate):
			c.JSON(http.StatusConflict, gin.H{"error": "a habit with this title already exists"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		}
		return
	}

	c.JSON(http.StatusCreated, habit)
}

func (h *AILogHandler) Clear(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	if err := h.svc.Clear(userID, c.Param("sessionID")); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}

	c.Status(http.StatusNoContent)
}
