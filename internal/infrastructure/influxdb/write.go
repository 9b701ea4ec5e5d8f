package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/mavaldez/wxbridge/internal/reading"
)

// WriteReading mirrors one committed reading as a point in the
// "sensor_readings" measurement. Anomalous or missing samples become
// boolean flag fields instead of fake values, matching the tri-state
// the relational store keeps.
//
// The write is non-blocking; data is batched and sent asynchronously.
func (c *Client) WriteReading(r *reading.Reading) {
	if r == nil || !c.IsConnected() {
		return
	}

	fields := map[string]interface{}{
		"ldr_percent":    r.LightPercent,
		"ldr_raw":        r.LightRaw,
		"reading_number": r.Sequence,
	}
	if v, ok := r.Temperature.Float(); ok {
		fields["temperature"] = v
	}
	fields["temperature_anomaly"] = r.Temperature.IsAnomaly()
	if v, ok := r.Humidity.Float(); ok {
		fields["humidity"] = v
	}
	fields["humidity_anomaly"] = r.Humidity.IsAnomaly()

	tags := map[string]string{}
	if r.Comfort != "" {
		tags["comfort"] = r.Comfort
	}

	point := write.NewPoint("sensor_readings", tags, fields, time.Now())
	c.writeAPI.WritePoint(point)
}

// WriteStatistics mirrors one aggregate statistics record as a point in
// the "sensor_statistics" measurement. Groups that failed to parse are
// simply absent from the point.
func (c *Client) WriteStatistics(s reading.Statistics) {
	if !c.IsConnected() {
		return
	}

	fields := map[string]interface{}{}
	add := func(name string, v *float64) {
		if v != nil {
			fields[name] = *v
		}
	}
	add("temp_avg", s.TempAvg)
	add("temp_min", s.TempMin)
	add("temp_max", s.TempMax)
	add("hum_avg", s.HumAvg)
	add("hum_min", s.HumMin)
	add("hum_max", s.HumMax)
	add("ldr_avg", s.LdrAvg)
	add("ldr_min", s.LdrMin)
	add("ldr_max", s.LdrMax)
	if len(fields) == 0 {
		return
	}

	point := write.NewPoint("sensor_statistics", nil, fields, time.Now())
	c.writeAPI.WritePoint(point)
}
