package reading

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/mavaldez/wxbridge/internal/infrastructure/config"
)

// slot identifies which buffer field a feed maps onto.
type slot int

const (
	slotTemperature slot = iota
	slotHumidity
	slotLightPercent
	slotLightRaw
	slotClock
	slotComfort
)

// Aggregator reassembles independently-arriving scalar messages into atomic
// readings. Exactly one reading buffer is live at a time; it fills in place
// and resets to empty after every successful commit, normal or forced.
//
// Thread Safety:
//   - All methods are safe for concurrent use. Message delivery and the
//     timeout check may originate from independent timers, so the buffer
//     takes a single lock for every mutation.
type Aggregator struct {
	mu       sync.Mutex
	slots    map[string]slot
	sequence int64

	temperature  Sample
	humidity     Sample
	lightPercent *float64
	lightRaw     *int
	clockToken   string
	comfort      string

	// lastUpdate is stamped on every accepted slot update, so a buffer
	// that only ever saw a light reading still ages toward the timeout.
	lastUpdate time.Time
}

// NewAggregator creates an empty aggregator with the given feed-to-slot
// mapping. Feeds with empty names are left unmapped.
func NewAggregator(feeds config.FeedsConfig) *Aggregator {
	slots := make(map[string]slot, 6)
	for feed, s := range map[string]slot{
		feeds.Temperature:  slotTemperature,
		feeds.Humidity:     slotHumidity,
		feeds.LightPercent: slotLightPercent,
		feeds.LightRaw:     slotLightRaw,
		feeds.Clock:        slotClock,
		feeds.Comfort:      slotComfort,
	} {
		if feed != "" {
			slots[feed] = s
		}
	}
	return &Aggregator{slots: slots}
}

// Update applies one scalar message to the buffer.
//
// Unmapped feeds are ignored: unknown feeds may legitimately exist on the
// broker. Temperature and humidity accept the anomaly token or any
// unparseable text as an anomaly marker. Light values must parse as
// numbers; a bad value drops the update and returns ErrBadValue without
// touching the slot. The clock token is accepted verbatim and immediately
// triggers a commit attempt.
//
// Returns:
//   - *Reading: the committed snapshot when the clock token completed a
//     reading, nil otherwise
//   - error: ErrBadValue for a dropped light update, nil otherwise
func (a *Aggregator) Update(feed, text string) (*Reading, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	s, ok := a.slots[feed]
	if !ok {
		return nil, nil
	}

	switch s {
	case slotTemperature:
		a.temperature = parseSample(text)
	case slotHumidity:
		a.humidity = parseSample(text)
	case slotLightPercent:
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %s=%q", ErrBadValue, feed, text)
		}
		a.lightPercent = &v
	case slotLightRaw:
		v, err := strconv.Atoi(text)
		if err != nil {
			return nil, fmt.Errorf("%w: %s=%q", ErrBadValue, feed, text)
		}
		a.lightRaw = &v
	case slotClock:
		if text == "" {
			return nil, nil
		}
		a.clockToken = text
		a.lastUpdate = time.Now()
		return a.commit(), nil
	case slotComfort:
		a.comfort = text
	}

	a.lastUpdate = time.Now()
	return nil, nil
}

// TryCommit attempts to finalize the buffer into a Reading. It succeeds
// only when light-percent, light-raw and the clock token are all present;
// temperature and humidity commit in whatever state they are in.
// On success the buffer resets to empty and the snapshot carries the next
// sequence number. On failure the buffer is untouched and nil is returned.
func (a *Aggregator) TryCommit() *Reading {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.commit()
}

// CheckTimeout forces a lossy-degradation commit when the buffer has aged
// past timeout since its last accepted update and holds at least a light
// percentage. Missing light-raw defaults to 0 and a missing clock token to
// DefaultClockToken; the committed values are defaulted, not measured.
// A buffer without a light percentage is left pending rather than forced.
func (a *Aggregator) CheckTimeout(now time.Time, timeout time.Duration) *Reading {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.lastUpdate.IsZero() || now.Sub(a.lastUpdate) <= timeout {
		return nil
	}
	if a.lightPercent == nil {
		return nil
	}

	if a.lightRaw == nil {
		zero := 0
		a.lightRaw = &zero
	}
	if a.clockToken == "" {
		a.clockToken = DefaultClockToken
	}
	return a.commit()
}

// Sequence returns the number of successful commits so far.
func (a *Aggregator) Sequence() int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.sequence
}

// commit builds the snapshot and resets the buffer. Caller holds mu.
func (a *Aggregator) commit() *Reading {
	if a.lightPercent == nil || a.lightRaw == nil || a.clockToken == "" {
		return nil
	}

	a.sequence++
	r := &Reading{
		Temperature:  a.temperature,
		Humidity:     a.humidity,
		LightPercent: *a.lightPercent,
		LightRaw:     *a.lightRaw,
		ClockToken:   a.clockToken,
		Comfort:      a.comfort,
		Sequence:     a.sequence,
	}

	a.temperature = Sample{}
	a.humidity = Sample{}
	a.lightPercent = nil
	a.lightRaw = nil
	a.clockToken = ""
	a.comfort = ""
	a.lastUpdate = time.Time{}

	return r
}

// parseSample maps a temperature or humidity payload onto the tri-state
// sample: the anomaly token or any unparseable text marks the anomaly.
func parseSample(text string) Sample {
	if text == AnomalyToken || text == legacyAnomalyToken {
		return Anomaly()
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return Anomaly()
	}
	return Value(v)
}
