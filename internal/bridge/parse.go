package bridge

import (
	"strconv"
	"strings"

	"github.com/mavaldez/wxbridge/internal/reading"
)

// genericEventType classifies event payloads that carry no explicit type.
const genericEventType = "SYSTEM"

// parseStatistics parses the composite statistics payload:
//
//	T:25.3(18.5-32.1) H:65.2(45.0-85.0) L:55.8(10.2-95.3)
//
// Each group parses independently; a malformed or absent group leaves its
// three fields nil and the others persist normally.
func parseStatistics(value string) reading.Statistics {
	var s reading.Statistics
	for _, part := range strings.Fields(value) {
		switch {
		case strings.HasPrefix(part, "T:"):
			s.TempAvg, s.TempMin, s.TempMax = parseStatGroup(part[2:])
		case strings.HasPrefix(part, "H:"):
			s.HumAvg, s.HumMin, s.HumMax = parseStatGroup(part[2:])
		case strings.HasPrefix(part, "L:"):
			s.LdrAvg, s.LdrMin, s.LdrMax = parseStatGroup(part[2:])
		}
	}
	return s
}

// parseStatGroup parses one "avg(min-max)" group. Any malformation yields
// three nils.
func parseStatGroup(group string) (avg, min, max *float64) {
	avgStr, rangeStr, ok := strings.Cut(group, "(")
	if !ok {
		return nil, nil, nil
	}
	rangeStr = strings.TrimSuffix(rangeStr, ")")
	minStr, maxStr, ok := strings.Cut(rangeStr, "-")
	if !ok {
		return nil, nil, nil
	}

	a, errA := strconv.ParseFloat(avgStr, 64)
	lo, errLo := strconv.ParseFloat(minStr, 64)
	hi, errHi := strconv.ParseFloat(maxStr, 64)
	if errA != nil || errLo != nil || errHi != nil {
		return nil, nil, nil
	}
	return &a, &lo, &hi
}

// parseEvent splits a "type:description" payload once; a payload without a
// colon becomes the description under the generic type.
func parseEvent(value string) reading.Event {
	if eventType, description, ok := strings.Cut(value, ":"); ok {
		return reading.Event{Type: eventType, Description: description}
	}
	return reading.Event{Type: genericEventType, Description: value}
}
