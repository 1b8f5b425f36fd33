package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lukas/foerder-scout/internal/pipeline"
	"github.com/lukas/foerder-scout/internal/server/ratelimit"
	"github.com/lukas/foerder-scout/internal/types"
)

func testServer(t *testing.T) *Server {
	t.Helper()

	programs := []types.RawProgram{
		{
			Name:        "KfW Effizienzhaus Bonus BY",
			Regions:     []string{"BY"},
			Category:    "energieeffizienz",
			FundingRate: "bis 45%",
			Measures:    []string{"daemmung"},
			Source:      "KfW",
		},
		{
			Name:        "BAFA Heizungsoptimierung",
			Regions:     []string{types.RegionWildcard},
			Category:    "energieeffizienz",
			FundingRate: "bis 80%",
			Measures:    []string{"heizungstausch"},
			Source:      "BAFA",
		},
	}

	engine, err := pipeline.New(programs, pipeline.Options{CacheCapacity: 32, CacheTTL: time.Hour})
	require.NoError(t, err)

	return New(engine, Config{RateLimit: &ratelimit.Config{Enabled: false}})
}

func doRequest(s *Server, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHandleHealth(t *testing.T) {
	s := testServer(t)

	rec := doRequest(s, "GET", "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok"`)
}

func TestHandleRank(t *testing.T) {
	s := testServer(t)

	body := `{"criteria": {"region": "BY", "category": "energieeffizienz", "measures": ["daemmung"]}, "max_results": 5}`
	rec := doRequest(s, "POST", "/rank", body)
	require.Equal(t, http.StatusOK, rec.Code)

	var result pipeline.RankResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.NotEmpty(t, result.RequestID)
	require.Len(t, result.Programs, 2)
	assert.Equal(t, "KfW Effizienzhaus Bonus BY", result.Programs[0].Name)
}

func TestHandleRank_BadBody(t *testing.T) {
	s := testServer(t)

	rec := doRequest(s, "POST", "/rank", "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid request body")
}

func TestHandleClassify(t *testing.T) {
	s := testServer(t)

	rec := doRequest(s, "POST", "/classify", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Programs         []types.ClassifiedProgram `json:"programs"`
		TierDistribution map[int]int               `json:"tier_distribution"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Programs, 2)
	assert.Equal(t, 2, resp.TierDistribution[1]+resp.TierDistribution[2])
}

func TestHandleCacheHealth(t *testing.T) {
	s := testServer(t)

	rec := doRequest(s, "GET", "/cache/health", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var report pipeline.HealthReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.NotEmpty(t, report.Status)
}

func TestHandleCacheHealth_CriticalIsServiceUnavailable(t *testing.T) {
	programs := []types.RawProgram{
		{Name: "a", Regions: []string{"BY"}, Category: "klimaschutz", FundingRate: "40%"},
		{Name: "b", Regions: []string{"NW"}, Category: "klimaschutz", FundingRate: "50%"},
	}
	// Capacity 1 with two programs makes every classification a miss, so
	// the hit rate collapses once enough lookups accumulate.
	engine, err := pipeline.New(programs, pipeline.Options{CacheCapacity: 1, CacheTTL: time.Hour})
	require.NoError(t, err)
	for i := 0; i < 60; i++ {
		engine.Classify()
	}

	s := New(engine, Config{RateLimit: &ratelimit.Config{Enabled: false}})

	rec := doRequest(s, "GET", "/cache/health", "")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var report pipeline.HealthReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, pipeline.HealthCritical, report.Status)
}

func TestHandleMaintenance_DefaultsToAllActions(t *testing.T) {
	s := testServer(t)

	rec := doRequest(s, "POST", "/maintenance", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":true`)
}

func TestHandleListPrograms(t *testing.T) {
	s := testServer(t)

	rec := doRequest(s, "GET", "/programs", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "KfW Effizienzhaus Bonus BY")
}

func TestHandleUpdateProgram(t *testing.T) {
	s := testServer(t)

	body := `{"regions": ["BY"], "category": "energieeffizienz", "funding_rate": "bis 60%"}`
	rec := doRequest(s, "PUT", "/programs/KfW%20Effizienzhaus%20Bonus%20BY", body)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":true`)

	// The updated rate shows up on the next classification.
	rec = doRequest(s, "GET", "/programs", "")
	assert.Contains(t, rec.Body.String(), "bis 60%")
}

func TestHandleUpdateProgram_CreatesNew(t *testing.T) {
	s := testServer(t)

	body := `{"regions": ["NW"], "category": "klimaschutz", "funding_rate": "40%"}`
	rec := doRequest(s, "PUT", "/programs/Kommunaler%20Klimafonds", body)
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestHandleUpdateProgram_NameMismatch(t *testing.T) {
	s := testServer(t)

	body := `{"name": "Other", "regions": ["BY"], "category": "klimaschutz", "funding_rate": "40%"}`
	rec := doRequest(s, "PUT", "/programs/KfW%20Effizienzhaus%20Bonus%20BY", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleUpdateProgram_InvalidRecord(t *testing.T) {
	s := testServer(t)

	rec := doRequest(s, "PUT", "/programs/Broken", `{"regions": []}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRateLimit_Returns429(t *testing.T) {
	programs := []types.RawProgram{
		{Name: "p", Regions: []string{"BY"}, Category: "klimaschutz", FundingRate: "40%"},
	}
	engine, err := pipeline.New(programs, pipeline.Options{CacheCapacity: 8, CacheTTL: time.Hour})
	require.NoError(t, err)

	s := New(engine, Config{RateLimit: &ratelimit.Config{
		Enabled:       true,
		DefaultLimit:  1,
		DefaultWindow: time.Minute,
	}})

	first := doRequest(s, "GET", "/programs", "")
	require.Equal(t, http.StatusOK, first.Code)

	second := doRequest(s, "GET", "/programs", "")
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Contains(t, second.Body.String(), "rate_limit_exceeded")
}

func TestCORS_PreflightOK(t *testing.T) {
	s := testServer(t)

	rec := doRequest(s, "OPTIONS", "/rank", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
