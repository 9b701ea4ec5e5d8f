// Package station implements a simulated weather station that publishes
// the same feed set the hardware station does, so the rest of the stack
// can run without a physical device on the bench.
//
// The simulation compresses a full 24-hour weather cycle into minutes:
// temperature and humidity follow inverse-phase sinusoids with
// deterministic noise, light follows time-of-day bands smoothed by a
// moving average, and the simulated clock is published as the reading
// terminator. Comfort classification and aggregate statistics mirror
// what the firmware computed on-device.
//
// # Usage
//
//	client := mqtt.New(cfg.Broker, cfg.Auth)
//	st := station.New(client, cfg, log)
//	err := st.Run(ctx)
package station
