package station

import (
	"testing"
	"time"
)

var simEpoch = time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)

// ============================================================================
// Simulated Clock
// ============================================================================

func TestHourDecimalStartsAtStartHour(t *testing.T) {
	sim := NewSimulator(1, 6, simEpoch)

	if got := sim.HourDecimal(simEpoch); got != 6.0 {
		t.Errorf("HourDecimal(epoch) = %v, want 6.0", got)
	}
}

func TestHourDecimalAdvancesWithWallClock(t *testing.T) {
	sim := NewSimulator(1, 6, simEpoch)

	got := sim.HourDecimal(simEpoch.Add(90 * time.Minute))
	if got != 7.5 {
		t.Errorf("HourDecimal(+90m) = %v, want 7.5", got)
	}
}

func TestHourDecimalWrapsAtMidnight(t *testing.T) {
	sim := NewSimulator(1, 23, simEpoch)

	got := sim.HourDecimal(simEpoch.Add(2 * time.Hour))
	if got != 1.0 {
		t.Errorf("HourDecimal past midnight = %v, want 1.0", got)
	}
}

func TestHourDecimalAcceleration(t *testing.T) {
	// At 288x a full day elapses in five wall-clock minutes.
	sim := NewSimulator(288, 6, simEpoch)

	got := sim.HourDecimal(simEpoch.Add(5 * time.Minute))
	if got != 6.0 {
		t.Errorf("HourDecimal(+5m at 288x) = %v, want 6.0 (full day wrap)", got)
	}

	got = sim.HourDecimal(simEpoch.Add(150 * time.Second))
	if got != 18.0 {
		t.Errorf("HourDecimal(+150s at 288x) = %v, want 18.0 (half day)", got)
	}
}

func TestClockTokenFormat(t *testing.T) {
	tests := []struct {
		name      string
		startHour int
		offset    time.Duration
		want      string
	}{
		{"morning", 6, 0, "06:00 AM"},
		{"midnight is 12 AM", 0, 0, "12:00 AM"},
		{"noon is 12 PM", 12, 0, "12:00 PM"},
		{"afternoon converts to 12-hour", 13, 0, "01:00 PM"},
		{"late evening", 23, 30 * time.Minute, "11:30 PM"},
		{"minutes from fraction", 6, 45 * time.Minute, "06:45 AM"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sim := NewSimulator(1, tt.startHour, simEpoch)
			if got := sim.ClockToken(simEpoch.Add(tt.offset)); got != tt.want {
				t.Errorf("ClockToken() = %q, want %q", got, tt.want)
			}
		})
	}
}

// ============================================================================
// Sensor Curves
// ============================================================================

func TestTemperatureStaysInDailyBand(t *testing.T) {
	sim := NewSimulator(1, 0, simEpoch)

	// Sample the whole day. Sinusoid 23±6 plus ±0.8 noise.
	for h := 0; h < 24; h++ {
		temp := sim.Temperature(simEpoch.Add(time.Duration(h) * time.Hour))
		if temp < 16.0 || temp > 30.0 {
			t.Errorf("Temperature at hour %d = %v, want within [16, 30]", h, temp)
		}
	}
}

func TestHumidityClamped(t *testing.T) {
	sim := NewSimulator(1, 0, simEpoch)

	for h := 0; h < 24; h++ {
		hum := sim.Humidity(simEpoch.Add(time.Duration(h) * time.Hour))
		if hum < 20.0 || hum > 90.0 {
			t.Errorf("Humidity at hour %d = %v, want within [20, 90]", h, hum)
		}
	}
}

func TestLightPercentFollowsTimeOfDay(t *testing.T) {
	sim := NewSimulator(1, 0, simEpoch)

	at := func(hour int) float64 {
		return sim.LightPercent(simEpoch.Add(time.Duration(hour) * time.Hour))
	}

	night := at(2)
	midday := at(13)
	if night >= midday {
		t.Errorf("LightPercent night=%v >= midday=%v, want darker nights", night, midday)
	}
	if midday < 70 {
		t.Errorf("LightPercent at midday = %v, want >= 70", midday)
	}

	for h := 0; h < 24; h++ {
		light := at(h)
		if light < 0 || light > 100 {
			t.Errorf("LightPercent at hour %d = %v, want within [0, 100]", h, light)
		}
	}
}

func TestLightRawScale(t *testing.T) {
	tests := []struct {
		percent float64
		want    int
	}{
		{0, 0},
		{100, 65535},
		{50, 32767},
	}

	for _, tt := range tests {
		if got := LightRaw(tt.percent); got != tt.want {
			t.Errorf("LightRaw(%v) = %d, want %d", tt.percent, got, tt.want)
		}
	}
}

func TestSimulatorDeterministic(t *testing.T) {
	a := NewSimulator(288, 6, simEpoch)
	b := NewSimulator(288, 6, simEpoch)

	for i := 0; i < 10; i++ {
		now := simEpoch.Add(time.Duration(i) * 20 * time.Second)
		if ta, tb := a.Temperature(now), b.Temperature(now); ta != tb {
			t.Fatalf("Temperature diverged at sample %d: %v vs %v", i, ta, tb)
		}
		if ha, hb := a.Humidity(now), b.Humidity(now); ha != hb {
			t.Fatalf("Humidity diverged at sample %d: %v vs %v", i, ha, hb)
		}
	}
}
