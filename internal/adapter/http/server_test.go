package http_test

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpadapter "github.com/sentra-ops/incident-triage/internal/adapter/http"
	"github.com/sentra-ops/incident-triage/internal/domain"
)

type mockReadiness struct {
	err error
}

func (m *mockReadiness) CheckReadiness(_ context.Context) error { return m.err }

type mockFeed struct {
	lastOpts  domain.FeedOptions
	incidents []domain.TriagedIncident
}

func (m *mockFeed) Feed(opts domain.FeedOptions) []domain.TriagedIncident {
	m.lastOpts = opts
	return m.incidents
}

func newTestServer(readyErr error, feed *mockFeed) *httpadapter.Server {
	if feed == nil {
		feed = &mockFeed{}
	}
	return httpadapter.NewServer(":0", &mockReadiness{err: readyErr}, feed, domain.FeedOptions{}, slog.Default())
}

func TestHealthzReturns200(t *testing.T) {
	srv := newTestServer(nil, nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestReadyzReturns200WhenReady(t *testing.T) {
	srv := newTestServer(nil, nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ready", body["status"])
}

func TestReadyzReturns503WhenNotReady(t *testing.T) {
	srv := newTestServer(fmt.Errorf("not ready yet"), nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "not ready", body["status"])
	assert.Equal(t, "not ready yet", body["error"])
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(nil, nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestFeedReturnsIncidentsAndCounts(t *testing.T) {
	feed := &mockFeed{incidents: []domain.TriagedIncident{
		{
			Incident: domain.Incident{
				ID:       "inc-1",
				Type:     domain.TypeFire,
				Severity: domain.SeverityCritical,
				Status:   domain.StatusReported,
			},
			PriorityScore: 230,
		},
		{
			Incident: domain.Incident{
				ID:       "inc-2",
				Type:     domain.TypeAccident,
				Severity: domain.SeverityLow,
				Status:   domain.StatusReported,
			},
			PriorityScore: 65,
		},
	}}
	srv := newTestServer(nil, feed)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/feed", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Counts    domain.SeverityCounts    `json:"counts"`
		Incidents []domain.TriagedIncident `json:"incidents"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Incidents, 2)
	assert.Equal(t, "inc-1", body.Incidents[0].ID)
	assert.Equal(t, 230, body.Incidents[0].PriorityScore)
	assert.Equal(t, 1, body.Counts.Critical)
	assert.Equal(t, 1, body.Counts.Low)
}

func TestFeedParsesWindowAndTypeParams(t *testing.T) {
	feed := &mockFeed{}
	srv := newTestServer(nil, feed)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/feed?window=15m&type=Medical", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 15*time.Minute, feed.lastOpts.Window)
	assert.Equal(t, domain.TypeMedical, feed.lastOpts.Type)
}

func TestFeedRejectsInvalidWindow(t *testing.T) {
	srv := newTestServer(nil, nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/feed?window=soon", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body["error"], "window")
}
