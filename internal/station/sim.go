package station

import (
	"fmt"
	"math"
	"time"
)

// Simulator generates a 24-hour weather cycle, optionally compressed:
// acceleration 288 runs a full day in five minutes. Values follow the
// natural daily pattern with deterministic sine noise for texture.
//
// Not safe for concurrent use; the station loop is the only caller.
type Simulator struct {
	acceleration int
	startHour    int
	epoch        time.Time

	// noise advances per sample so consecutive readings wobble.
	noise int
}

// NewSimulator creates a simulator whose day starts at startHour at the
// given epoch.
func NewSimulator(acceleration, startHour int, epoch time.Time) *Simulator {
	if acceleration < 1 {
		acceleration = 1
	}
	return &Simulator{
		acceleration: acceleration,
		startHour:    startHour,
		epoch:        epoch,
	}
}

// HourDecimal returns the simulated hour of day in [0, 24) at the given
// wall-clock instant.
func (s *Simulator) HourDecimal(now time.Time) float64 {
	elapsed := now.Sub(s.epoch).Seconds() * float64(s.acceleration)
	total := math.Mod(float64(s.startHour)*3600+elapsed, 86400)
	if total < 0 {
		total += 86400
	}
	return total / 3600
}

// ClockToken formats the simulated time as "HH:MM AM/PM", the token the
// station publishes on the clock feed.
func (s *Simulator) ClockToken(now time.Time) string {
	hd := s.HourDecimal(now)
	hour := int(hd)
	minute := int((hd - float64(hour)) * 60)

	period := "AM"
	h12 := hour
	switch {
	case hour == 0:
		h12 = 12
	case hour == 12:
		period = "PM"
	case hour > 12:
		h12 = hour - 12
		period = "PM"
	}
	return fmt.Sprintf("%02d:%02d %s", h12, minute, period)
}

// Temperature returns the simulated temperature in °C: a sinusoid around
// 23°C with ±6°C amplitude, minimum near 6 AM, plus small noise.
func (s *Simulator) Temperature(now time.Time) float64 {
	phase := (s.HourDecimal(now) - 6) / 24 * 2 * math.Pi
	return round1(23.0 + math.Sin(phase)*6.0 + s.nextNoise()*0.8)
}

// Humidity returns the simulated relative humidity in %: inverse phase to
// temperature around 55%, ±15% amplitude, clamped to a realistic 20-90%.
func (s *Simulator) Humidity(now time.Time) float64 {
	phase := (s.HourDecimal(now) - 6) / 24 * 2 * math.Pi
	hum := 55.0 - math.Sin(phase)*15.0 + s.nextNoise()*3.0
	return round1(clamp(hum, 20, 90))
}

// LightPercent returns the simulated luminosity in %: banded by time of
// day from night darkness through the midday peak.
func (s *Simulator) LightPercent(now time.Time) float64 {
	hd := s.HourDecimal(now)

	var light float64
	switch {
	case hd < 6: // night
		light = 5 + s.nextNoise()*3
	case hd < 8: // dawn
		light = 20 + (hd-6)/2*30 + s.nextNoise()*5
	case hd < 12: // morning
		light = 50 + (hd-8)/4*35 + s.nextNoise()*8
	case hd < 14: // midday peak
		light = 85 + s.nextNoise()*10
	case hd < 18: // afternoon
		light = 70 - (hd-14)/4*30 + s.nextNoise()*8
	case hd < 20: // dusk
		light = 40 - (hd-18)/2*30 + s.nextNoise()*5
	default: // night again
		light = 10 - (hd-20)/4*5 + s.nextNoise()*3
	}
	return round1(clamp(light, 0, 100))
}

// LightRaw converts a light percentage back to the 16-bit ADC scale the
// hardware sensor would have produced.
func LightRaw(percent float64) int {
	return int(percent / 100 * 65535)
}

// nextNoise returns a deterministic pseudo-random value in [-1, 1].
func (s *Simulator) nextNoise() float64 {
	s.noise++
	return math.Sin(float64(s.noise) * 0.1234)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
