package http_test

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	adapterHTTP "github.com/devbd1/routiner-server/internal/adapters/handler/http"
	"github.com/devbd1/routiner-server/internal/adapters/handler/http/middleware"
	"github.com/devbd1/routiner-server/internal/adapters/repository"
	"github.com/devbd1/routiner-server/internal/core/services"
)

func setupSettingsRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)

	svc := services.NewSettingsService(repository.NewInMemorySettingsRepository())

	r := gin.New()
	group := r.Group("/api/v1")
	group.Use(middleware.UserContextMiddleware())
	adapterHTTP.NewSettingsHandler(svc).RegisterRoutes(group)
	return r
}

func TestSettingsEndpoints(t *testing.T) {
	t.Run("Success: Defaults for a new user", func(t *testing.T) {
		router := setupSettingsRouter()

		w := doJSON(router, "GET", "/api/v1/settings", "user-1", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"max_bars_start_full": false}`, w.Body.String())
	})

	t.Run("Success: Save and read back", func(t *testing.T) {
		router := setupSettingsRouter()

		put := doJSON(router, "PUT", "/api/v1/settings", "user-1", `{"max_bars_start_full": true}`)
		assert.Equal(t, http.StatusOK, put.Code)

		get := doJSON(router, "GET", "/api/v1/settings", "user-1", "")
		assert.JSONEq(t, `{"max_bars_start_full": true}`, get.Body.String())
	})

	t.Run("Success: Entitlement defaults to free and can be upgraded", func(t *testing.T) {
		router := setupSettingsRouter()

		get := doJSON(router, "GET", "/api/v1/settings/entitlement", "user-1", "")
		assert.Equal(t, http.StatusOK, get.Code)
		assert.JSONEq(t, `{"tier": "free"}`, get.Body.String())

		put := doJSON(router, "PUT", "/api/v1/settings/entitlement", "user-1", `{"tier": "premium"}`)
		assert.Equal(t, http.StatusOK, put.Code)

		again := doJSON(router, "GET", "/api/v1/settings/entitlement", "user-1", "")
		assert.JSONEq(t, `{"tier": "premium"}`, again.Body.String())
	})

	t.Run("Error: 400 on unknown tier", func(t *testing.T) {
		router := setupSettingsRouter()

		w := doJSON(router, "PUT", "/api/v1/settings/entitlement", "user-1", `{"tier": "gold"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
