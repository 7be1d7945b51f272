package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devbd1/routiner-server/internal/adapters/completion"
	adapterHTTP "github.com/devbd1/routiner-server/internal/adapters/handler/http"
	"github.com/devbd1/routiner-server/internal/adapters/repository"
	"github.com/devbd1/routiner-server/internal/core/domain"
	"github.com/devbd1/routiner-server/internal/core/services"
)

// fakeModelServer stands in for a local Ollama runtime so the full
// HTTP stack, including the completion adapter, runs in-process.
func fakeModelServer(t *testing.T, response string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"response": response})
	}))
}

func setupE2ERouter(t *testing.T, modelResponse string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	kv, err := repository.NewFileKV(t.TempDir())
	require.NoError(t, err)

	habitRepo := repository.NewDocumentHabitRepository(kv)
	settingsRepo := repository.NewDocumentSettingsRepository(kv)

	habitSvc := services.NewHabitService(habitRepo, nil)
	settingsSvc := services.NewSettingsService(settingsRepo)
	statsSvc := services.NewStatsService(habitRepo)

	model := fakeModelServer(t, modelResponse)
	t.Cleanup(model.Close)
	completer := completion.NewOllamaClient(model.URL, 5*time.Second)

	aiSvc := services.NewAILogService(habitSvc, settingsSvc, completer)

	return adapterHTTP.NewRouter(adapterHTTP.RouterDependencies{
		HabitHandler:    adapterHTTP.NewHabitHandler(habitSvc),
		AILogHandler:    adapterHTTP.NewAILogHandler(aiSvc),
		SettingsHandler: adapterHTTP.NewSettingsHandler(settingsSvc),
		StatsHandler:    adapterHTTP.NewStatsHandler(statsSvc),
		StartTime:       time.Now(),
	})
}

func e2eRequest(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var reader *bytes.Buffer
	if body != "" {
		reader = bytes.NewBufferString(body)
	} else {
		reader = &bytes.Buffer{}
	}
	req, _ := http.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "e2e-tester-1")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestEndToEnd_AILoggingLifecycle(t *testing.T) {
	router := setupE2ERouter(t, `Here you go: ["Drink Water | 500 ml", "Meditate | 1"]`)

	var habitID string
	var sessionID string

	t.Run("1. Upgrade To Premium", func(t *testing.T) {
		w := e2eRequest(router, http.MethodPut, "/api/v1/settings/entitlement", `{"tier": "premium"}`)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("2. Create Habit", func(t *testing.T) {
		payload := `{
			"title": "Drink Water",
			"goal_enabled": true,
			"goal_value": 2,
			"goal_unit": "liter",
			"goal_type": "min",
			"repetition": {"type": "daily", "every": 1}
		}`

		w := e2eRequest(router, http.MethodPost, "/api/v1/habits", payload)
		assert.Equal(t, http.StatusCreated, w.Code)

		var habit domain.Habit
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &habit))
		assert.NotEmpty(t, habit.ID)
		assert.Equal(t, 1, habit.Version)
		habitID = habit.ID
	})

	t.Run("3. Due Today", func(t *testing.T) {
		w := e2eRequest(router, http.MethodGet, "/api/v1/habits/due?date=2025-03-10", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Drink Water")
	})

	t.Run("4. Generate AI Log Session", func(t *testing.T) {
		payload := `{"text": "drank half a liter and meditated", "date": "2025-03-10"}`
		w := e2eRequest(router, http.MethodPost, "/api/v1/ai-log/generate", payload)
		assert.Equal(t, http.StatusOK, w.Code)

		var session services.Session
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &session))
		assert.NotEmpty(t, session.ID)
		require.Len(t, session.Candidates, 2)
		assert.Equal(t, services.CandidateLoggable, session.Candidates[0].Status)
		assert.Equal(t, services.CandidateUnregistered, session.Candidates[1].Status)
		sessionID = session.ID
	})

	t.Run("5. Log Candidate Converts Units", func(t *testing.T) {
		require.NotEmpty(t, sessionID, "Generate step failed, cannot log")

		w := e2eRequest(router, http.MethodPost, "/api/v1/ai-log/"+sessionID+"/log", `{"habit": "Drink Water"}`)
		assert.Equal(t, http.StatusOK, w.Code)

		var habit domain.Habit
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &habit))
		assert.InDelta(t, 0.5, habit.Progress["2025-03-10"], 0.0001)
	})

	t.Run("6. Double Log Rejected", func(t *testing.T) {
		w := e2eRequest(router, http.MethodPost, "/api/v1/ai-log/"+sessionID+"/log", `{"habit": "Drink Water"}`)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("7. Register Unknown Habit", func(t *testing.T) {
		w := e2eRequest(router, http.MethodPost, "/api/v1/ai-log/"+sessionID+"/register", `{"habit": "Meditate"}`)
		assert.Equal(t, http.StatusCreated, w.Code)

		list := e2eRequest(router, http.MethodGet, "/api/v1/habits", "")
		assert.Equal(t, http.StatusOK, list.Code)
		assert.Contains(t, list.Body.String(), "Meditate")
	})

	t.Run("8. Weekly Stats Reflect Logged Progress", func(t *testing.T) {
		w := e2eRequest(router, http.MethodGet, "/api/v1/stats/weekly?start_date=2025-03-10&end_date=2025-03-16", "")
		assert.Equal(t, http.StatusOK, w.Code)

		var stats domain.WeeklyStats
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
		assert.Equal(t, 2, stats.TotalHabits)

		var water *domain.HabitStat
		for i := range stats.HabitStats {
			if stats.HabitStats[i].HabitTitle == "Drink Water" {
				water = &stats.HabitStats[i]
			}
		}
		require.NotNil(t, water)
		assert.InDelta(t, 0.5, water.TotalValue, 0.0001)
	})

	t.Run("9. Sync Delta Picks Up Changes", func(t *testing.T) {
		w := e2eRequest(router, http.MethodGet, "/api/v1/habits/sync?last_sync=2020-01-01T00:00:00Z", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), habitID)
	})

	t.Run("10. Clear Session", func(t *testing.T) {
		w := e2eRequest(router, http.MethodDelete, "/api/v1/ai-log/"+sessionID, "")
		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("11. Delete Habit", func(t *testing.T) {
		w := e2eRequest(router, http.MethodDelete, "/api/v1/habits/"+habitID, "")
		assert.Equal(t, http.StatusNoContent, w.Code)

		list := e2eRequest(router, http.MethodGet, "/api/v1/habits", "")
		assert.NotContains(t, list.Body.String(), habitID)
	})

	t.Run("12. Auth Error", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodGet, "/api/v1/habits", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestEndToEnd_FreeTierGating(t *testing.T) {
	router := setupE2ERouter(t, `["Read | 1"]`)

	w := e2eRequest(router, http.MethodPost, "/api/v1/ai-log/generate", `{"text": "read a chapter"}`)
	assert.Equal(t, http.StatusPaymentRequired, w.Code)
}
