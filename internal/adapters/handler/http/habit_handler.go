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

type HabitHandler struct {
	svc *services.HabitService
}

func NewHabitHandler(svc *services.HabitService) *HabitHandler {
	return &HabitHandler{
		svc: svc,
	}
}

type repetitionPayload struct {
	Type        string `json:"type"`
	Every       int    `json:"every"`
	DaysOfWeek  []int  `json:"days_of_week"`
	DaysOfMonth []int  `json:"days_of_month"`
	Date        string `json:"date"`
	Pattern     string `json:"pattern"`
}

func (p repetitionPayload) toRule() domain.RepetitionRule {
	if p.Type == "" && p.Pattern == "" {
		return domain.EverydayRule()
	}
	return domain.RepetitionRule{
		Type:        p.Type,
		Every:       p.Every,
		DaysOfWeek:  p.DaysOfWeek,
		DaysOfMonth: p.DaysOfMonth,
		Date:        p.Date,
		Pattern:     p.Pattern,
	}
}

type createHabitRequest struct {
	Title       string            `json:"title" binding:"required"`
	Notes       string            `json:"notes"`
	GoalEnabled bool              `json:"goal_enabled"`
	GoalValue   float64           `json:"goal_value"`
	GoalUnit    string            `json:"goal_unit"`
	GoalType    string            `json:"goal_type"`
	Repetition  repetitionPayload `json:"repetition"`
}

type updateHabitRequest struct {
	Title       string            `json:"title" binding:"required"`
	GoalEnabled bool              `json:"goal_enabled"`
	GoalValue   float64           `json:"goal_value"`
	GoalUnit    string            `json:"goal_unit"`
	GoalType    string            `json:"goal_type"`
	Repetition  repetitionPayload `json:"repetition"`
	Version     int               `json:"version"`
}

type logProgressRequest struct {
	Date  string  `json:"date" binding:"required"`
	Value float64 `json:"value"`
}

type toggleRequest struct {
	Date string `json:"date" binding:"required"`
}

func (h *HabitHandler) RegisterRoutes(router *gin.RouterGroup) {
	habits := router.Group("/habits")
	{
		habits.POST("", h.Create)
		habits.GET("", h.List)
		habits.GET("/due", h.ListDue)
		habits.GET("/sync", h.Sync)
		habits.GET("/:id", h.Get)
		habits.PUT("/:id", h.Update)
		habits.DELETE("/:id", h.Delete)
		habits.POST("/:id/log", h.LogProgress)
		habits.POST("/:id/toggle", h.Toggle)
	}
}

func badDomainInput(err error) bool {
	return errors.Is(err, domain.ErrHabitTitleEmpty) ||
		errors.Is(err, domain.ErrHabitTitleTooLong) ||
		errors.Is(err, domain.ErrInvalidGoalValue) ||
		errors.Is(err, domain.ErrInvalidGoalType) ||
		errors.Is(err, domain.ErrInvalidRepeatType) ||
		errors.Is(err, domain.ErrInvalidRepeatInterval) ||
		errors.Is(err, domain.ErrInvalidWeekdays) ||
		errors.Is(err, domain.ErrInvalidMonthDays) ||
		errors.Is(err, domain.ErrInvalidRepeatDate)
}

func (h *HabitHandler) Create(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	var req createHabitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input := services.CreateHabitInput{
		UserID:      userID,
		Title:       req.Title,
		Notes:       req.Notes,
		GoalEnabled: req.GoalEnabled,
		GoalValue:   req.GoalValue,
		GoalUnit:    req.GoalUnit,
		GoalType:    req.GoalType,
		Repetition:  req.Repetition.toRule(),
	}

	habit, err := h.svc.Create(c.Request.Context(), input)
	if err != nil {
		if errors.Is(err, domain.ErrHabitDuplicate) {
			c.JSON(http.StatusConflict, gin.H{"error": "a habit with this title already exists"})
			return
		}
		if badDomainInput(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusCreated, habit)
}

func (h *HabitHandler) List(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	list, err := h.svc.ListByUserID(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, list)
}

// ListDue returns habits scheduled for the given date (default today).
func (h *HabitHandler) ListDue(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	date := time.Now().UTC()
	if dateStr := c.Query("date"); dateStr != "" {
		parsed, err := time.Parse(domain.ProgressDateLayout, dateStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date format, expected YYYY-MM-DD"})
			return
		}
		date = parsed
	}

	due, err := h.svc.ListDueOn(c.Request.Context(), userID, date)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"date":   date.Format(domain.ProgressDateLayout),
		"habits": due,
	})
}

func (h *HabitHandler) Sync(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	lastSyncStr := c.Query("last_sync")
	var lastSync time.Time
	var err error

	if lastSyncStr != "" {
		lastSync, err = time.Parse(time.RFC3339, lastSyncStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid last_sync format, use RFC3339"})
			return
		}
	}

	deltas, err := h.svc.GetDelta(c.Request.Context(), userID, lastSync)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "sync failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"changes":   deltas,
		"timestamp": time.Now().UTC(),
	})
}

func (h *HabitHandler) Get(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	habit, err := h.svc.GetByID(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		if errors.Is(err, domain.ErrHabitNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "habit not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, habit)
}

func (h *HabitHandler) Update(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	var req updateHabitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input := services.UpdateHabitInput{
		ID:          c.Param("id"),
		UserID:      userID,
		Title:       req.Title,
		GoalEnabled: req.GoalEnabled,
		GoalValue:   req.GoalValue,
		GoalUnit:    req.GoalUnit,
		GoalType:    req.GoalType,
		Repetition:  req.Repetition.toRule(),
		Version:     req.Version,
	}

	habit, err := h.svc.Update(c.Request.Context(), input)
	if err != nil {
		if errors.Is(err, domain.ErrHabitConflict) {
			c.JSON(http.StatusConflict, gin.H{
				"error":   "version conflict",
				"message": "Data has been modified elsewhere. Please sync.",
			})
			return
		}
		if errors.Is(err, domain.ErrHabitNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "habit not found"})
			return
		}
		if errors.Is(err, domain.ErrHabitDuplicate) {
			c.JSON(http.StatusConflict, gin.H{"error": "a habit with this title already exists"})
			return
		}
		if badDomainInput(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, habit)
}

func (h *HabitHandler) Delete(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	err := h.svc.Delete(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		if errors.Is(err, domain.ErrHabitNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "habit not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *HabitHandler) LogProgress(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	var req logProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	habit, err := h.svc.LogProgress(c.Request.Context(), services.LogProgressInput{
		ID:     c.Param("id"),
		UserID: userID,
		Date:   req.Date,
		Value:  req.Value,
	})
	if err != nil {
		if errors.Is(err, domain.ErrHabitNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "habit not found"})
			return
		}
		if errors.Is(err, domain.ErrInvalidLogDate) || errors.Is(err, domain.ErrInvalidLogValue) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, habit)
}

func (h *HabitHandler) Toggle(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	var req toggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	habit, err := h.svc.Toggle(c.Request.Context(), c.Param("id"), userID, req.Date)
	if err != nil {
		if errors.Is(err, domain.ErrHabitNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "habit not found"})
			return
		}
		if errors.Is(err, domain.ErrInvalidLogDate) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, habit)
}
