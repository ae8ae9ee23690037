package api

import (
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"neo-overwatch/pkg/neodb"
	"neo-overwatch/pkg/ontology"
	"neo-overwatch/pkg/shared"
)

const testToken = "test-token"

type recordingPublisher struct {
	mu     sync.Mutex
	events []map[string]interface{}
}

func (p *recordingPublisher) PublishEvent(eventType, subject string, data map[string]interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	data["type"] = eventType
	data["subject"] = subject
	p.events = append(p.events, data)
	return nil
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

func (p *recordingPublisher) limits() []int {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []int
	for _, e := range p.events {
		if limit, ok := e["limit"].(int); ok {
			out = append(out, limit)
		}
	}
	return out
}

type failingHealth struct{}

func (failingHealth) HealthCheck() error { return errors.New("down") }

func testDatabase(t *testing.T) *neodb.Database {
	t.Helper()
	eros, err := ontology.NewNearEarthObject("433", "Eros", 16.84, false)
	require.NoError(t, err)
	apophis, err := ontology.NewNearEarthObject("99942", "Apophis", 0.37, true)
	require.NoError(t, err)
	unknown, err := ontology.NewNearEarthObject("2020 AB", "", math.NaN(), true)
	require.NoError(t, err)

	ts := time.Date(2029, time.April, 13, 21, 46, 0, 0, time.UTC)
	var approaches []*ontology.CloseApproach
	rows := []struct {
		designation        string
		distance, velocity float64
	}{
		{"433", 0.01, 5},
		{"99942", 0.02, 6},
		{"99942", 0.03, 7},
		{"2020 AB", 0.04, 8},
		{"999999", 0.05, 9},
	}
	for i, row := range rows {
		ca, err := ontology.NewCloseApproach(row.designation, ts.AddDate(0, 0, i), row.distance, row.velocity)
		require.NoError(t, err)
		approaches = append(approaches, ca)
	}

	db, err := neodb.New([]*ontology.NearEarthObject{eros, apophis, unknown}, approaches)
	require.NoError(t, err)
	return db
}

func newTestServer(t *testing.T, publisher *recordingPublisher, nats HealthChecker) *httptest.Server {
	t.Helper()
	var h *Handlers
	if publisher != nil {
		h = NewHandlers(testDatabase(t), publisher, nil)
	} else {
		h = NewHandlers(testDatabase(t), nil, nil)
	}
	mux := http.NewServeMux()
	h.RegisterRoutes(mux, testToken, nats)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func get(t *testing.T, srv *httptest.Server, path string, auth bool) (*http.Response, shared.Response) {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, srv.URL+path, nil)
	require.NoError(t, err)
	if auth {
		req.Header.Set("Authorization", "Bearer "+testToken)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body shared.Response
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	}
	return resp, body
}

func TestHealthCheck(t *testing.T) {
	srv := newTestServer(t, nil, nil)
	resp, body := get(t, srv, "/health", false)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, body.Success)
	details := body.Data.(map[string]interface{})["details"].(map[string]interface{})
	assert.Equal(t, "disabled", details["nats"])
	assert.Equal(t, "1", details["orphans"])

	unhealthy := newTestServer(t, nil, failingHealth{})
	resp, _ = get(t, unhealthy, "/health", false)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestAuthRequired(t *testing.T) {
	srv := newTestServer(t, nil, nil)
	resp, body := get(t, srv, "/api/v1/neos?designation=433", false)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.NotNil(t, body.Error)
	assert.Equal(t, shared.CodeUnauthorized, body.Error.Code)
}

func TestGetNEO(t *testing.T) {
	srv := newTestServer(t, nil, nil)

	resp, body := get(t, srv, "/api/v1/neos?designation=99942&approaches=true", true)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data := body.Data.(map[string]interface{})
	assert.Equal(t, "99942", data["designation"])
	assert.Equal(t, "99942 (Apophis)", data["full_name"])
	assert.Equal(t, float64(2), data["approach_count"])
	assert.Len(t, data["approaches"], 2)

	resp, body = get(t, srv, "/api/v1/neos?name=Eros", true)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data = body.Data.(map[string]interface{})
	assert.Equal(t, "433", data["designation"])
	assert.Nil(t, data["approaches"])

	resp, body = get(t, srv, "/api/v1/neos?designation=2020%20AB", true)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Nil(t, body.Data.(map[string]interface{})["diameter_km"])

	resp, body = get(t, srv, "/api/v1/neos?name=Nobody", true)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, shared.CodeNotFound, body.Error.Code)

	resp, body = get(t, srv, "/api/v1/neos", true)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, shared.CodeMissingParams, body.Error.Code)
}

func TestQueryApproaches(t *testing.T) {
	publisher := &recordingPublisher{}
	srv := newTestServer(t, publisher, nil)

	resp, body := get(t, srv, "/api/v1/approaches", true)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(5), body.Data.(map[string]interface{})["count"])

	resp, body = get(t, srv, "/api/v1/approaches?hazardous=true&limit=2", true)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data := body.Data.(map[string]interface{})
	assert.Equal(t, float64(2), data["count"])
	rows := data["approaches"].([]interface{})
	assert.Equal(t, "99942", rows[0].(map[string]interface{})["neo"].(map[string]interface{})["designation"])

	resp, body = get(t, srv, "/api/v1/approaches?start_date=2029-04-16", true)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(2), body.Data.(map[string]interface{})["count"])

	require.Eventually(t, func() bool { return publisher.count() == 3 }, time.Second, 10*time.Millisecond)
	assert.ElementsMatch(t, []int{shared.DefaultQueryLimit, 2, shared.DefaultQueryLimit}, publisher.limits())
}

func TestQueryApproachesCSV(t *testing.T) {
	srv := newTestServer(t, nil, nil)

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/v1/approaches?designation=999999&format=csv", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+testToken)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/csv", resp.Header.Get("Content-Type"))
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[1], "2029-04-17 21:46,0.05,9,999999,,nan,False"))
}

func TestQueryApproachesBadRequest(t *testing.T) {
	srv := newTestServer(t, nil, nil)

	for _, path := range []string{
		"/api/v1/approaches?distance_min=near",
		"/api/v1/approaches?velocity_min=5&velocity_max=1",
		"/api/v1/approaches?limit=ten",
		"/api/v1/approaches?limit=-1",
		"/api/v1/approaches?limit=100001",
		"/api/v1/approaches?format=xml",
	} {
		resp, body := get(t, srv, path, true)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, path)
		require.NotNil(t, body.Error, path)
		assert.Equal(t, shared.CodeInvalidRequest, body.Error.Code, path)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	srv := newTestServer(t, nil, nil)
	req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/v1/stats", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+testToken)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestGetStats(t *testing.T) {
	srv := newTestServer(t, nil, nil)
	resp, body := get(t, srv, "/api/v1/stats", true)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data := body.Data.(map[string]interface{})
	assert.Equal(t, float64(3), data["neos"])
	assert.Equal(t, float64(4), data["linked"])
}
