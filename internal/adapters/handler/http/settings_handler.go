package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/devbd1/routiner-server/internal/adapters/handler/http/middleware"
	"github.com/devbd1/routiner-server/internal/core/domain"
	"github.com/devbd1/routiner-server/internal/core/services"
)

type SettingsHandler struct {
	svc *services.SettingsService
}

func NewSettingsHandler(svc *services.SettingsService) *SettingsHandler {
	return &SettingsHandler{svc: svc}
}

type entitlementRequest struct {
	Tier string `json:"tier" binding:"required"`
}

func (h *SettingsHandler) RegisterRoutes(router *gin.RouterGroup) {
	settings := router.Group("/settings")
	{
		settings.GET("", h.Get)
		settings.PUT("", h.Save)
		settings.GET("/entitlement", h.GetEntitlement)
		settings.PUT("/entitlement", h.SetEntitlement)
	}
}

func (h *SettingsHandler) Get(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	settings, err := h.svc.GetSettings(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, settings)
}

func (h *SettingsHandler) Save(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	var settings domain.UserSettings
	if err := c.ShouldBindJSON(&settings); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.svc.SaveSettings(c.Request.Context(), userID, settings); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, settings)
}

func (h *SettingsHandler) GetEntitlement(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	tier, err := h.svc.GetEntitlement(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"tier": tier})
}

// SetEntitlement records the tier reported by the billing callback.
func (h *SettingsHandler) SetEntitlement(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	var req entitlementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.svc.SetEntitlement(c.Request.Context(), userID, req.Tier); err != nil {
		if errors.Is(err, domain.ErrInvalidEntitlement) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"tier": req.Tier})
}
