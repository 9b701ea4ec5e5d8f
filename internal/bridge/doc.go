// Package bridge connects the MQTT client to the persistence layer. It is
// the only component that writes to the store: delivered messages route
// through the reading aggregator, while the statistics and system-event
// feeds bypass aggregation and persist directly. One control loop
// interleaves the inbound poll, the buffer timeout check and reconnect
// handling, so no two aggregator mutations ever race.
package bridge
