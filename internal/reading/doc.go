// Package reading reassembles the station's independently-published scalar
// feeds into atomic multi-field readings and persists them.
//
// The station publishes each sensor value on its own feed, one scalar at a
// time and in no guaranteed order. The Aggregator buffers them into one
// reading-in-progress: the clock token marks a complete cycle and commits
// the buffer, and a timeout check force-commits a stale partial buffer with
// defaulted values rather than holding data forever.
//
// Temperature and humidity carry a tri-state Sample: never received, sensor
// reported failure (the ANOMALIA marker), or a valid number. The distinction
// matters downstream and survives into the database as a NULL column plus an
// anomaly flag.
//
// SQLiteRepository is the concrete store behind the Store and Repository
// interfaces; the bridge writes through Store and the HTTP API reads through
// Repository.
package reading
