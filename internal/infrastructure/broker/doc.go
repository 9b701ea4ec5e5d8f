// Package broker runs an in-process MQTT broker for local development and
// integration tests, so the pipeline can be exercised without an external
// broker or cloud credentials. Enabled via broker.embedded in config.
package broker
