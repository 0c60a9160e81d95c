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

	"github.com/procurehq/bid-leveler/internal/cache"
	"github.com/procurehq/bid-leveler/internal/config"
	"github.com/procurehq/bid-leveler/internal/database"
	"github.com/procurehq/bid-leveler/internal/leveling"
	"github.com/procurehq/bid-leveler/internal/monitoring"
	"github.com/procurehq/bid-leveler/internal/ratelimit"
)

func newPersistentRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.NewDB(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	redisClient, err := ratelimit.NewRedisClient("", "", 0)
	require.NoError(t, err)

	metrics := monitoring.NewMetrics()
	limiter := ratelimit.NewRateLimiter(redisClient, ratelimit.Config{
		IPLimitPerMin:      1000,
		AnalyzeLimitPerMin: 1000,
		BurstMultiplier:    2,
	}, metrics)

	return setupRouter(serverDeps{
		cfg: config.Config{
			CORSAllowOrigins:   []string{"*"},
			AnalyzeLimitPerMin: 1000,
		},
		engine:  leveling.NewEngine(),
		repo:    database.NewRepository(db),
		db:      db,
		limiter: limiter,
		metrics: metrics,
		logger:  monitoring.NewLogger(),
		cache:   cache.NewCache(time.Minute),
	})
}

func TestAnalyzePersistsRun(t *testing.T) {
	r := newPersistentRouter(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/analyze", bytes.NewReader(analyzeBody(t)))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var analyzeResponse struct {
		RunID  string          `json:"run_id"`
		Report leveling.Report `json:"report"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &analyzeResponse))
	require.NotEmpty(t, analyzeResponse.RunID)

	// The stored run replays the exact report that was returned.
	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodGet, "/analyses/"+analyzeResponse.RunID, nil)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var stored database.StoredRun
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stored))
	assert.Equal(t, analyzeResponse.RunID, stored.ID)
	assert.Equal(t, 3, stored.ItemCount)
	assert.Equal(t, analyzeResponse.Report, stored.Report)
}

func TestListAnalyses(t *testing.T) {
	r := newPersistentRouter(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/analyze", bytes.NewReader(analyzeBody(t)))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodGet, "/analyses", nil)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var listResponse struct {
		Runs []database.RunSummary `json:"runs"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listResponse))
	require.Len(t, listResponse.Runs, 1)
	assert.Equal(t, 1, listResponse.Runs[0].CohortCount)
}

func TestGetAnalysisNotFound(t *testing.T) {
	r := newPersistentRouter(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/analyses/00000000-0000-0000-0000-000000000000", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDatabasePoolStats(t *testing.T) {
	r := newPersistentRouter(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/pools/database", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "database", response["pool"])
}
