package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/mavaldez/wxbridge/internal/reading"
)

// readingRequest is the JSON body for manual reading inserts. A nil
// temperature or humidity with the matching anomaly flag set records a
// sensor fault; nil without the flag records a missing sample.
type readingRequest struct {
	Temperature        *float64 `json:"temperature"`
	TemperatureAnomaly bool     `json:"temperature_anomaly"`
	Humidity           *float64 `json:"humidity"`
	HumidityAnomaly    bool     `json:"humidity_anomaly"`
	LightPercent       *float64 `json:"ldr_percent"`
	LightRaw           int      `json:"ldr_raw"`
	ClockToken         string   `json:"estado"`
	Comfort            string   `json:"comfort_level"`
	Sequence           int64    `json:"reading_number"`
}

// eventRequest is the JSON body for manual event inserts.
type eventRequest struct {
	Type        string `json:"type"`
	Description string `json:"description"`
}

// handleCreateReading inserts a reading supplied over HTTP rather than
// the broker. Used by backfill scripts and manual testing.
func (s *Server) handleCreateReading(w http.ResponseWriter, r *http.Request) {
	var req readingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	if req.LightPercent == nil {
		writeBadRequest(w, "ldr_percent is required")
		return
	}

	rd := &reading.Reading{
		Temperature:  sampleFromRequest(req.Temperature, req.TemperatureAnomaly),
		Humidity:     sampleFromRequest(req.Humidity, req.HumidityAnomaly),
		LightPercent: *req.LightPercent,
		LightRaw:     req.LightRaw,
		ClockToken:   req.ClockToken,
		Comfort:      req.Comfort,
		Sequence:     req.Sequence,
	}
	if rd.ClockToken == "" {
		rd.ClockToken = reading.DefaultClockToken
	}

	id, err := s.repo.InsertReading(r.Context(), rd)
	if err != nil {
		s.logger.Error("reading insert failed", "error", err)
		writeInternalError(w, "failed to store reading")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"id": id})
}

// handleRecentReadings returns the most recent stored readings, newest first.
func (s *Server) handleRecentReadings(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r.URL.Query().Get("limit"))
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	readings, err := s.repo.RecentReadings(r.Context(), limit)
	if err != nil {
		s.logger.Error("readings query failed", "error", err)
		writeInternalError(w, "failed to load readings")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"readings": readings,
		"count":    len(readings),
	})
}

// handleCreateEvent inserts a system event supplied over HTTP.
func (s *Server) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.Type == "" {
		writeBadRequest(w, "type is required")
		return
	}

	id, err := s.repo.InsertEvent(r.Context(), reading.Event{
		Type:        req.Type,
		Description: req.Description,
	})
	if err != nil {
		s.logger.Error("event insert failed", "error", err)
		writeInternalError(w, "failed to store event")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"id": id})
}

// handleRecentEvents returns the most recent stored events, newest first.
func (s *Server) handleRecentEvents(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r.URL.Query().Get("limit"))
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	events, err := s.repo.RecentEvents(r.Context(), limit)
	if err != nil {
		s.logger.Error("events query failed", "error", err)
		writeInternalError(w, "failed to load events")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"events": events,
		"count":  len(events),
	})
}

// handleRecentStatistics returns the most recent statistics snapshots.
func (s *Server) handleRecentStatistics(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r.URL.Query().Get("limit"))
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	stats, err := s.repo.RecentStatistics(r.Context(), limit)
	if err != nil {
		s.logger.Error("statistics query failed", "error", err)
		writeInternalError(w, "failed to load statistics")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"statistics": stats,
		"count":      len(stats),
	})
}

// sampleFromRequest maps the nullable value + anomaly flag pair onto the
// tri-state sample.
func sampleFromRequest(value *float64, anomaly bool) reading.Sample {
	if anomaly {
		return reading.Anomaly()
	}
	if value == nil {
		return reading.Sample{}
	}
	return reading.Value(*value)
}

// parseLimit parses the limit query parameter. Zero means repository
// default; the repository clamps the upper bound.
func parseLimit(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0, fmt.Errorf("invalid limit %q", raw)
	}
	return limit, nil
}
