//go:build !integration

package main

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/influmetrics/integrations-cli/internal/metrics"
	"github.com/influmetrics/integrations-cli/internal/model"
	"github.com/influmetrics/integrations-cli/internal/store"
)

// nanRecord returns a record with every funnel numeric set to the missing
// sentinel, matching what the validator produces for blank cells.
func nanRecord() model.IntegrationRecord {
	var r model.IntegrationRecord
	for _, c := range model.NumericColumns {
		*c.Field(&r) = math.NaN()
	}
	return r
}

func serveFixture() []model.MergedRecord {
	winner := nanRecord()
	winner.Date = "15.03.2024"
	winner.Name = "Tech Reviews"
	winner.Format = model.FormatYouTube
	winner.AdLink = "https://www.youtube.com/watch?v=abc12345678"
	winner.IsParseable = true
	winner.URLType = model.URLTypeYouTube
	winner.ContentID = "abc12345678"
	winner.Budget = 5000
	winner.TrafficFact = 120
	winner.PurchaseFTotal = 4

	loser := nanRecord()
	loser.Date = "20.03.2024"
	loser.Name = "Lifestyle Daily"
	loser.Format = model.FormatReel
	loser.AdLink = "https://www.instagram.com/reel/XYZ/"
	loser.Budget = 800
	loser.PurchaseFTotal = 0

	merged := []model.MergedRecord{
		{IntegrationRecord: winner},
		{IntegrationRecord: loser},
	}
	metrics.Annotate(merged)
	return merged
}

func newServeTestStore(t *testing.T) store.Store {
	t.Helper()
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "serve_test.db"))
	require.NoError(t, err)
	require.NoError(t, st.Migrate(context.Background()))
	t.Cleanup(func() { st.Close() })
	return st
}

func TestAPIRouter_Health(t *testing.T) {
	router := newAPIRouter(serveFixture(), newServeTestStore(t))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestAPIRouter_Records(t *testing.T) {
	router := newAPIRouter(serveFixture(), newServeTestStore(t))

	req := httptest.NewRequest(http.MethodGet, "/api/records", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "application/json")

	var rows []map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, "Tech Reviews", rows[0]["Name"])
	assert.Equal(t, "https://www.instagram.com/reel/XYZ/", rows[1]["Ad link"])
}

func TestAPIRouter_Summary(t *testing.T) {
	router := newAPIRouter(serveFixture(), newServeTestStore(t))

	req := httptest.NewRequest(http.MethodGet, "/api/summary", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, float64(2), body["total_records"])
	assert.Equal(t, float64(1), body["parseable"])
	assert.Equal(t, float64(1), body["with_purchases"])
	assert.Equal(t, float64(5800), body["total_budget"])
}

func TestAPIRouter_SummaryIncludesPrepareWarnings(t *testing.T) {
	st := newServeTestStore(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx, "prepare", "input.csv")
	require.NoError(t, err)
	require.NoError(t, st.CompleteRun(ctx, run.ID, &model.RunSummary{
		TotalRows: 10,
		Warnings:  []string{"Removed 2 duplicate rows (by Name + Ad link)"},
	}))

	router := newAPIRouter(serveFixture(), st)

	req := httptest.NewRequest(http.MethodGet, "/api/summary", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	warnings, ok := body["warnings"].([]any)
	require.True(t, ok, "summary should carry prepare warnings")
	assert.Contains(t, warnings[0], "duplicate rows")
}

func TestAPIRouter_Report(t *testing.T) {
	router := newAPIRouter(serveFixture(), newServeTestStore(t))

	req := httptest.NewRequest(http.MethodGet, "/api/report", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "text/markdown")
	assert.Contains(t, rr.Body.String(), "PRE-COMPUTED AGGREGATION TABLES")
}

func TestAPIRouter_Runs(t *testing.T) {
	st := newServeTestStore(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx, "prepare", "input.csv")
	require.NoError(t, err)
	require.NoError(t, st.CompleteRun(ctx, run.ID, &model.RunSummary{TotalRows: 10}))

	router := newAPIRouter(serveFixture(), st)

	req := httptest.NewRequest(http.MethodGet, "/api/runs?stage=prepare", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var runs []model.Run
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &runs))
	require.Len(t, runs, 1)
	assert.Equal(t, "prepare", runs[0].Stage)
	assert.Equal(t, model.RunStatusComplete, runs[0].Status)
}

func TestAPIRouter_RunsEmpty(t *testing.T) {
	router := newAPIRouter(serveFixture(), newServeTestStore(t))

	req := httptest.NewRequest(http.MethodGet, "/api/runs", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "[]\n", rr.Body.String())
}

func TestQueryInt(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/runs?limit=5&offset=junk", nil)
	assert.Equal(t, 5, queryInt(req, "limit", 50))
	assert.Equal(t, 0, queryInt(req, "offset", 0))
	assert.Equal(t, 50, queryInt(req, "missing", 50))
}
