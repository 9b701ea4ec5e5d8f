package reading

import "time"

// AnomalyToken is the wire marker a sensor publishes when it fails.
// "N/A" is accepted as a legacy spelling from older firmware.
const (
	AnomalyToken       = "ANOMALIA"
	legacyAnomalyToken = "N/A"
)

// DefaultClockToken substitutes for a never-received clock slot when a
// timeout forces a partial reading out.
const DefaultClockToken = "UNKNOWN"

// SampleState is the tri-state of a temperature or humidity slot.
type SampleState int

const (
	// SampleEmpty means the slot was never updated during the window.
	SampleEmpty SampleState = iota

	// SampleAnomaly means the producing sensor reported failure.
	SampleAnomaly

	// SampleValue means a valid number was received.
	SampleValue
)

// Sample holds one temperature or humidity measurement. The zero value is
// the empty state; empty, anomaly and value are mutually exclusive and the
// distinction survives through persistence.
type Sample struct {
	state SampleState
	value float64
}

// Anomaly returns the sample marking a sensor-reported failure.
func Anomaly() Sample {
	return Sample{state: SampleAnomaly}
}

// Value returns a sample holding a valid measurement.
func Value(v float64) Sample {
	return Sample{state: SampleValue, value: v}
}

// State returns which of the three states the sample is in.
func (s Sample) State() SampleState {
	return s.state
}

// IsEmpty reports whether the slot was never updated.
func (s Sample) IsEmpty() bool {
	return s.state == SampleEmpty
}

// IsAnomaly reports whether the sensor reported failure.
func (s Sample) IsAnomaly() bool {
	return s.state == SampleAnomaly
}

// Float returns the measurement and whether one is present.
func (s Sample) Float() (float64, bool) {
	return s.value, s.state == SampleValue
}

// Reading is an immutable snapshot of one committed reading buffer.
type Reading struct {
	Temperature  Sample
	Humidity     Sample
	LightPercent float64
	LightRaw     int
	ClockToken   string
	Comfort      string
	Sequence     int64
}

// Statistics is one aggregate statistics record. Each group parses
// independently; a malformed group leaves its three fields nil.
type Statistics struct {
	TempAvg *float64 `json:"temp_avg"`
	TempMin *float64 `json:"temp_min"`
	TempMax *float64 `json:"temp_max"`
	HumAvg  *float64 `json:"hum_avg"`
	HumMin  *float64 `json:"hum_min"`
	HumMax  *float64 `json:"hum_max"`
	LdrAvg  *float64 `json:"ldr_avg"`
	LdrMin  *float64 `json:"ldr_min"`
	LdrMax  *float64 `json:"ldr_max"`
}

// Event is one system event record.
type Event struct {
	Type        string
	Description string
}

// StoredReading is a persisted reading as returned by queries.
// Temperature and Humidity are nil for both the anomaly and never-received
// cases; the flags separate them.
type StoredReading struct {
	ID                 int64     `json:"id"`
	Timestamp          time.Time `json:"timestamp"`
	Temperature        *float64  `json:"temperature"`
	TemperatureAnomaly bool      `json:"temperature_anomaly"`
	Humidity           *float64  `json:"humidity"`
	HumidityAnomaly    bool      `json:"humidity_anomaly"`
	LightPercent       float64   `json:"ldr_percent"`
	LightRaw           int       `json:"ldr_raw"`
	ClockToken         string    `json:"estado"`
	Comfort            string    `json:"comfort_level,omitempty"`
	Sequence           int64     `json:"reading_number"`
}

// StoredEvent is a persisted system event as returned by queries.
type StoredEvent struct {
	ID          int64     `json:"id"`
	Timestamp   time.Time `json:"timestamp"`
	Type        string    `json:"event_type"`
	Description string    `json:"description"`
}

// StoredStatistics is a persisted statistics record as returned by queries.
type StoredStatistics struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Statistics
}
