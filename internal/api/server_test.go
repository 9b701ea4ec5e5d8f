package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mavaldez/wxbridge/internal/infrastructure/config"
	"github.com/mavaldez/wxbridge/internal/infrastructure/logging"
	"github.com/mavaldez/wxbridge/internal/reading"
)

// fakeRepo is an in-memory reading.Repository for handler tests.
type fakeRepo struct {
	readings []reading.StoredReading
	events   []reading.StoredEvent
	stats    []reading.StoredStatistics
	failAll  bool
}

var errRepoDown = errors.New("repository down")

func (f *fakeRepo) InsertReading(_ context.Context, r *reading.Reading) (int64, error) {
	if f.failAll {
		return 0, errRepoDown
	}
	temp, tempAnomaly := columnsFor(r.Temperature)
	hum, humAnomaly := columnsFor(r.Humidity)
	stored := reading.StoredReading{
		ID:                 int64(len(f.readings) + 1),
		Timestamp:          time.Now().UTC(),
		Temperature:        temp,
		TemperatureAnomaly: tempAnomaly,
		Humidity:           hum,
		HumidityAnomaly:    humAnomaly,
		LightPercent:       r.LightPercent,
		LightRaw:           r.LightRaw,
		ClockToken:         r.ClockToken,
		Comfort:            r.Comfort,
		Sequence:           r.Sequence,
	}
	f.readings = append(f.readings, stored)
	return stored.ID, nil
}

func (f *fakeRepo) InsertEvent(_ context.Context, e reading.Event) (int64, error) {
	if f.failAll {
		return 0, errRepoDown
	}
	stored := reading.StoredEvent{
		ID:          int64(len(f.events) + 1),
		Timestamp:   time.Now().UTC(),
		Type:        e.Type,
		Description: e.Description,
	}
	f.events = append(f.events, stored)
	return stored.ID, nil
}

func (f *fakeRepo) InsertStatistics(_ context.Context, s reading.Statistics) (int64, error) {
	if f.failAll {
		return 0, errRepoDown
	}
	stored := reading.StoredStatistics{
		ID:         int64(len(f.stats) + 1),
		Timestamp:  time.Now().UTC(),
		Statistics: s,
	}
	f.stats = append(f.stats, stored)
	return stored.ID, nil
}

func (f *fakeRepo) RecentReadings(_ context.Context, _ int) ([]reading.StoredReading, error) {
	if f.failAll {
		return nil, errRepoDown
	}
	return f.readings, nil
}

func (f *fakeRepo) RecentEvents(_ context.Context, _ int) ([]reading.StoredEvent, error) {
	if f.failAll {
		return nil, errRepoDown
	}
	return f.events, nil
}

func (f *fakeRepo) RecentStatistics(_ context.Context, _ int) ([]reading.StoredStatistics, error) {
	if f.failAll {
		return nil, errRepoDown
	}
	return f.stats, nil
}

func columnsFor(s reading.Sample) (*float64, bool) {
	if v, ok := s.Float(); ok {
		return &v, false
	}
	return nil, s.IsAnomaly()
}

func testServer(t *testing.T) (*Server, *fakeRepo) {
	t.Helper()
	repo := &fakeRepo{}
	srv, err := New(Deps{
		Config:  config.Default().API,
		Logger:  &logging.Logger{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))},
		Repo:    repo,
		Version: "test",
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return srv, repo
}

func doRequest(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	srv.buildRouter().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not valid JSON: %v", err)
	}
	return body
}

// ============================================================================
// Health and Index
// ============================================================================

func TestHealthEndpoint(t *testing.T) {
	srv, _ := testServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /health status = %d, want 200", rec.Code)
	}
	if body := decodeBody(t, rec); body["status"] != "ok" {
		t.Errorf("health status = %v, want ok", body["status"])
	}
}

func TestIndexListsEndpoints(t *testing.T) {
	srv, _ := testServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET / status = %d, want 200", rec.Code)
	}
	if body := decodeBody(t, rec); body["service"] != "wxbridge" {
		t.Errorf("service = %v, want wxbridge", body["service"])
	}
}

// ============================================================================
// Readings
// ============================================================================

func TestCreateReading(t *testing.T) {
	srv, repo := testServer(t)

	rec := doRequest(t, srv, http.MethodPost, "/api/v1/readings",
		`{"temperature": 23.5, "humidity": 60.2, "ldr_percent": 55.8, "ldr_raw": 16000, "estado": "02:30 PM"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST /api/v1/readings status = %d, want 201: %s", rec.Code, rec.Body.String())
	}

	if len(repo.readings) != 1 {
		t.Fatalf("stored readings = %d, want 1", len(repo.readings))
	}
	stored := repo.readings[0]
	if stored.Temperature == nil || *stored.Temperature != 23.5 {
		t.Errorf("stored temperature = %v, want 23.5", stored.Temperature)
	}
	if stored.ClockToken != "02:30 PM" {
		t.Errorf("stored clock token = %q, want %q", stored.ClockToken, "02:30 PM")
	}
}

func TestCreateReadingAnomalyFlag(t *testing.T) {
	srv, repo := testServer(t)

	rec := doRequest(t, srv, http.MethodPost, "/api/v1/readings",
		`{"temperature_anomaly": true, "humidity": 60.2, "ldr_percent": 55.8, "ldr_raw": 16000}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}

	stored := repo.readings[0]
	if stored.Temperature != nil || !stored.TemperatureAnomaly {
		t.Errorf("anomaly not preserved: value=%v flag=%v", stored.Temperature, stored.TemperatureAnomaly)
	}
	if stored.ClockToken != reading.DefaultClockToken {
		t.Errorf("missing clock token stored as %q, want %q", stored.ClockToken, reading.DefaultClockToken)
	}
}

func TestCreateReadingRequiresLightPercent(t *testing.T) {
	srv, _ := testServer(t)

	rec := doRequest(t, srv, http.MethodPost, "/api/v1/readings", `{"temperature": 23.5}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status without ldr_percent = %d, want 400", rec.Code)
	}
}

func TestCreateReadingRejectsBadJSON(t *testing.T) {
	srv, _ := testServer(t)

	rec := doRequest(t, srv, http.MethodPost, "/api/v1/readings", `{not json`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status for malformed JSON = %d, want 400", rec.Code)
	}
}

func TestRecentReadings(t *testing.T) {
	srv, repo := testServer(t)
	temp := 23.5
	repo.readings = append(repo.readings, reading.StoredReading{
		ID: 1, Temperature: &temp, LightPercent: 55.8, LightRaw: 16000,
		ClockToken: "02:30 PM", Sequence: 1,
	})

	rec := doRequest(t, srv, http.MethodGet, "/api/v1/readings/recent", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if body := decodeBody(t, rec); body["count"] != float64(1) {
		t.Errorf("count = %v, want 1", body["count"])
	}
}

func TestRecentReadingsRejectsBadLimit(t *testing.T) {
	srv, _ := testServer(t)

	for _, limit := range []string{"abc", "-5"} {
		rec := doRequest(t, srv, http.MethodGet, "/api/v1/readings/recent?limit="+limit, "")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status for limit=%q = %d, want 400", limit, rec.Code)
		}
	}
}

func TestRecentReadingsRepositoryFailure(t *testing.T) {
	srv, repo := testServer(t)
	repo.failAll = true

	rec := doRequest(t, srv, http.MethodGet, "/api/v1/readings/recent", "")
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

// ============================================================================
// Events and Statistics
// ============================================================================

func TestCreateEvent(t *testing.T) {
	srv, repo := testServer(t)

	rec := doRequest(t, srv, http.MethodPost, "/api/v1/events",
		`{"type": "LED", "description": "ON desde cloud"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}
	if len(repo.events) != 1 || repo.events[0].Type != "LED" {
		t.Errorf("stored events = %+v, want one LED event", repo.events)
	}
}

func TestCreateEventRequiresType(t *testing.T) {
	srv, _ := testServer(t)

	rec := doRequest(t, srv, http.MethodPost, "/api/v1/events", `{"description": "no type"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestRecentEvents(t *testing.T) {
	srv, repo := testServer(t)
	repo.events = append(repo.events, reading.StoredEvent{ID: 1, Type: "SYSTEM", Description: "boot"})

	rec := doRequest(t, srv, http.MethodGet, "/api/v1/events/recent", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if body := decodeBody(t, rec); body["count"] != float64(1) {
		t.Errorf("count = %v, want 1", body["count"])
	}
}

func TestRecentStatistics(t *testing.T) {
	srv, repo := testServer(t)
	avg := 23.4
	repo.stats = append(repo.stats, reading.StoredStatistics{
		ID:         1,
		Statistics: reading.Statistics{TempAvg: &avg},
	})

	rec := doRequest(t, srv, http.MethodGet, "/api/v1/statistics/recent", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	body := decodeBody(t, rec)
	stats, ok := body["statistics"].([]any)
	if !ok || len(stats) != 1 {
		t.Fatalf("statistics = %v, want one entry", body["statistics"])
	}
	entry := stats[0].(map[string]any)
	if entry["temp_avg"] != 23.4 {
		t.Errorf("temp_avg = %v, want 23.4", entry["temp_avg"])
	}
	if entry["hum_avg"] != nil {
		t.Errorf("hum_avg = %v, want null for missing group", entry["hum_avg"])
	}
}
