// Package influxdb provides the optional time-series mirror for wxbridge.
//
// It wraps the official influxdb-client-go v2 library: every committed
// reading and statistics record already persisted to SQLite is also
// written as a point, giving dashboards a queryable time-series view
// without touching the relational store.
//
// # Usage
//
//	client, err := influxdb.Connect(cfg.InfluxDB)
//	if err != nil {
//	    // mirroring disabled or server unreachable
//	}
//	defer client.Close()
//
//	client.WriteReading(r)
//
// # Error Handling
//
// Writes are non-blocking and batched; async write failures surface via
// the SetOnError callback. Connection and health check errors are
// returned directly.
package influxdb
