// Package mqtt implements a minimal MQTT 3.1.1 client directly over a TCP
// byte stream. No protocol library sits underneath: the wire codec, the
// CONNECT/CONNACK handshake and the inbound packet decode live here.
//
// This package manages:
//   - CONNECT handshake with username/password and clean session
//   - QoS 0 publish with optional retain
//   - Fire-and-forget subscribe (SUBACK is never validated)
//   - Non-blocking inbound poll delivering PUBLISH payloads to a callback
//
// # Architecture
//
// The client owns exactly one transport connection and exposes a pull-based
// API: the host loop calls Poll on its own cadence, and a delivered message
// invokes the registered callback synchronously before Poll returns. There
// is no background goroutine and no automatic reconnect; Reconnect is a
// single-shot helper and retry policy belongs to the caller.
//
//	station / bridge loop → Poll → callback(feed, value)
//
// # Error Model
//
// "No data right now" is not an error: Poll returns nil. A failure once a
// packet decode has started wraps ErrTransport and means the connection is
// dead; the caller must Disconnect or Reconnect before further use.
// CONNACK rejections map to sentinel errors (ErrBadCredentials,
// ErrNotAuthorized, ...) checkable with errors.Is.
//
// # Usage
//
//	client := mqtt.New(cfg.Broker, cfg.Auth)
//	if err := client.Connect(); err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Disconnect()
//
//	client.SetMessageCallback(func(feed, value string) {
//	    log.Printf("%s = %s", feed, value)
//	})
//	client.Subscribe("sensor_temp")
//
//	for {
//	    if err := client.Poll(); err != nil {
//	        client.Reconnect()
//	    }
//	}
package mqtt
