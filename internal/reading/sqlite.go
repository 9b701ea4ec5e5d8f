package reading

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

const (
	defaultQueryLimit = 50
	maxQueryLimit     = 200
)

// SQLiteRepository implements Repository using SQLite.
//
// Anomaly handling follows the schema: temperature and humidity store NULL
// for both the anomaly and never-received states, with a separate anomaly
// flag column separating the two so the tri-state survives persistence.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite reading repository.
//
// Parameters:
//   - db: Open SQLite connection used for queries
//
// Returns:
//   - *SQLiteRepository: Repository instance ready for use
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// InsertReading persists one committed reading.
//
// Returns:
//   - int64: id of the inserted row
//   - error: wraps ErrInsertFailed on database failure
func (r *SQLiteRepository) InsertReading(ctx context.Context, reading *Reading) (int64, error) {
	if reading == nil {
		return 0, fmt.Errorf("%w: nil reading", ErrInsertFailed)
	}

	temp, tempAnomaly := sampleColumns(reading.Temperature)
	hum, humAnomaly := sampleColumns(reading.Humidity)

	result, err := r.db.ExecContext(ctx,
		`INSERT INTO sensor_readings
		 (temperature, temperature_anomaly, humidity, humidity_anomaly,
		  ldr_percent, ldr_raw, estado, comfort_level, reading_number)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		temp, tempAnomaly, hum, humAnomaly,
		reading.LightPercent, reading.LightRaw, reading.ClockToken,
		nullString(reading.Comfort), reading.Sequence,
	)
	if err != nil {
		return 0, fmt.Errorf("%w: inserting reading: %w", ErrInsertFailed, err)
	}
	return lastID(result)
}

// InsertEvent persists one system event.
func (r *SQLiteRepository) InsertEvent(ctx context.Context, e Event) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		"INSERT INTO events (event_type, description) VALUES (?, ?)",
		e.Type, e.Description,
	)
	if err != nil {
		return 0, fmt.Errorf("%w: inserting event: %w", ErrInsertFailed, err)
	}
	return lastID(result)
}

// InsertStatistics persists one aggregate statistics record. Nil subfields
// store as NULL: a malformed group on the wire keeps its columns empty
// while the others persist normally.
func (r *SQLiteRepository) InsertStatistics(ctx context.Context, s Statistics) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO statistics
		 (temp_avg, temp_min, temp_max, hum_avg, hum_min, hum_max,
		  ldr_avg, ldr_min, ldr_max)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.TempAvg, s.TempMin, s.TempMax,
		s.HumAvg, s.HumMin, s.HumMax,
		s.LdrAvg, s.LdrMin, s.LdrMax,
	)
	if err != nil {
		return 0, fmt.Errorf("%w: inserting statistics: %w", ErrInsertFailed, err)
	}
	return lastID(result)
}

// RecentReadings returns the most recent readings, newest first.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - limit: Maximum rows to return (default 50, max 200)
func (r *SQLiteRepository) RecentReadings(ctx context.Context, limit int) ([]StoredReading, error) {
	limit = clampLimit(limit)

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, timestamp, temperature, temperature_anomaly,
		        humidity, humidity_anomaly, ldr_percent, ldr_raw,
		        estado, comfort_level, reading_number
		 FROM sensor_readings
		 ORDER BY id DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying readings: %w", err)
	}
	defer rows.Close()

	readings := make([]StoredReading, 0, limit)
	for rows.Next() {
		var (
			sr      StoredReading
			ts      string
			comfort sql.NullString
		)
		if err := rows.Scan(&sr.ID, &ts, &sr.Temperature, &sr.TemperatureAnomaly,
			&sr.Humidity, &sr.HumidityAnomaly, &sr.LightPercent, &sr.LightRaw,
			&sr.ClockToken, &comfort, &sr.Sequence); err != nil {
			return nil, fmt.Errorf("scanning reading: %w", err)
		}
		sr.Timestamp, err = parseTimestamp(ts)
		if err != nil {
			return nil, err
		}
		sr.Comfort = comfort.String
		readings = append(readings, sr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating readings: %w", err)
	}
	return readings, nil
}

// RecentEvents returns the most recent system events, newest first.
func (r *SQLiteRepository) RecentEvents(ctx context.Context, limit int) ([]StoredEvent, error) {
	limit = clampLimit(limit)

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, timestamp, event_type, description
		 FROM events
		 ORDER BY id DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying events: %w", err)
	}
	defer rows.Close()

	events := make([]StoredEvent, 0, limit)
	for rows.Next() {
		var (
			e  StoredEvent
			ts string
		)
		if err := rows.Scan(&e.ID, &ts, &e.Type, &e.Description); err != nil {
			return nil, fmt.Errorf("scanning event: %w", err)
		}
		e.Timestamp, err = parseTimestamp(ts)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating events: %w", err)
	}
	return events, nil
}

// RecentStatistics returns the most recent statistics records, newest first.
func (r *SQLiteRepository) RecentStatistics(ctx context.Context, limit int) ([]StoredStatistics, error) {
	limit = clampLimit(limit)

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, timestamp, temp_avg, temp_min, temp_max,
		        hum_avg, hum_min, hum_max, ldr_avg, ldr_min, ldr_max
		 FROM statistics
		 ORDER BY id DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying statistics: %w", err)
	}
	defer rows.Close()

	stats := make([]StoredStatistics, 0, limit)
	for rows.Next() {
		var (
			s  StoredStatistics
			ts string
		)
		if err := rows.Scan(&s.ID, &ts, &s.TempAvg, &s.TempMin, &s.TempMax,
			&s.HumAvg, &s.HumMin, &s.HumMax, &s.LdrAvg, &s.LdrMin, &s.LdrMax); err != nil {
			return nil, fmt.Errorf("scanning statistics: %w", err)
		}
		s.Timestamp, err = parseTimestamp(ts)
		if err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating statistics: %w", err)
	}
	return stats, nil
}

// sampleColumns maps the tri-state sample onto its two columns.
func sampleColumns(s Sample) (value any, anomaly bool) {
	if v, ok := s.Float(); ok {
		return v, false
	}
	return nil, s.IsAnomaly()
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultQueryLimit
	}
	if limit > maxQueryLimit {
		return maxQueryLimit
	}
	return limit
}

func lastID(result sql.Result) (int64, error) {
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading insert id: %w", err)
	}
	return id, nil
}

// parseTimestamp parses a timestamp stored by SQLite.
func parseTimestamp(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, fmt.Errorf("timestamp is empty")
	}

	ts, err := time.Parse("2006-01-02T15:04:05.999Z", value)
	if err == nil {
		return ts, nil
	}

	fallback, fallbackErr := time.Parse(time.RFC3339, value)
	if fallbackErr == nil {
		return fallback, nil
	}

	return time.Time{}, fmt.Errorf("parsing timestamp: %w", err)
}
