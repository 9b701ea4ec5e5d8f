package bridge

import "testing"

func TestParseStatistics(t *testing.T) {
	s := parseStatistics("T:25.3(18.5-32.1) H:65.2(45.0-85.0) L:55.8(10.2-95.3)")

	checks := []struct {
		name string
		got  *float64
		want float64
	}{
		{"TempAvg", s.TempAvg, 25.3},
		{"TempMin", s.TempMin, 18.5},
		{"TempMax", s.TempMax, 32.1},
		{"HumAvg", s.HumAvg, 65.2},
		{"HumMin", s.HumMin, 45.0},
		{"HumMax", s.HumMax, 85.0},
		{"LdrAvg", s.LdrAvg, 55.8},
		{"LdrMin", s.LdrMin, 10.2},
		{"LdrMax", s.LdrMax, 95.3},
	}
	for _, c := range checks {
		if c.got == nil {
			t.Errorf("%s = nil, want %v", c.name, c.want)
			continue
		}
		if *c.got != c.want {
			t.Errorf("%s = %v, want %v", c.name, *c.got, c.want)
		}
	}
}

func TestParseStatisticsMalformedGroup(t *testing.T) {
	s := parseStatistics("T:bad H:65.2(45.0-85.0) L:55.8(10.2-95.3)")

	if s.TempAvg != nil || s.TempMin != nil || s.TempMax != nil {
		t.Error("malformed T group should yield nil temperature fields")
	}
	if s.HumAvg == nil || *s.HumAvg != 65.2 {
		t.Errorf("HumAvg = %v, want 65.2", s.HumAvg)
	}
	if s.LdrAvg == nil || *s.LdrAvg != 55.8 {
		t.Errorf("LdrAvg = %v, want 55.8", s.LdrAvg)
	}
}

func TestParseStatisticsVariants(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"empty payload", ""},
		{"missing groups", "T:25.3(18.5-32.1)"},
		{"garbage", "no stats here"},
		{"missing range", "T:25.3 H:65.2(45.0-85.0)"},
		{"unparseable numbers", "L:x(y-z)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// None of these may panic; absent groups stay nil.
			s := parseStatistics(tt.value)
			if tt.name == "missing range" && (s.TempAvg != nil || s.HumAvg == nil) {
				t.Errorf("parseStatistics(%q) = %+v", tt.value, s)
			}
		})
	}
}

func TestParseEvent(t *testing.T) {
	tests := []struct {
		value           string
		wantType        string
		wantDescription string
	}{
		{"LED:encendido remotamente", "LED", "encendido remotamente"},
		{"BOOT:station online:v3", "BOOT", "station online:v3"},
		{"plain message", "SYSTEM", "plain message"},
		{"", "SYSTEM", ""},
	}

	for _, tt := range tests {
		e := parseEvent(tt.value)
		if e.Type != tt.wantType || e.Description != tt.wantDescription {
			t.Errorf("parseEvent(%q) = (%q, %q), want (%q, %q)",
				tt.value, e.Type, e.Description, tt.wantType, tt.wantDescription)
		}
	}
}
