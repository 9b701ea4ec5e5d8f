package station

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/mavaldez/wxbridge/internal/infrastructure/config"
	"github.com/mavaldez/wxbridge/internal/infrastructure/logging"
	"github.com/mavaldez/wxbridge/internal/infrastructure/mqtt"
)

// Client is the protocol client surface the station drives.
// *mqtt.Client satisfies it; tests substitute a fake.
type Client interface {
	Publish(feed, value string, retain bool) error
	Subscribe(feed string) error
	Poll() error
	Reconnect() error
	SetMessageCallback(mqtt.MessageHandler)
}

// aggregate tracks running min/max/avg for one metric since startup.
type aggregate struct {
	min, max, sum float64
	count         int
}

func (a *aggregate) add(v float64) {
	if a.count == 0 || v < a.min {
		a.min = v
	}
	if a.count == 0 || v > a.max {
		a.max = v
	}
	a.sum += v
	a.count++
}

func (a *aggregate) avg() float64 {
	if a.count == 0 {
		return 0
	}
	return a.sum / float64(a.count)
}

// Station simulates a weather station: it generates one compressed daily
// cycle of sensor values and publishes each as a scalar on its own feed,
// the clock token last so the receiving side commits a complete reading.
// It also listens on the command feed and echoes commands as system
// events; there is no actuator hardware behind them.
type Station struct {
	client Client
	feeds  config.FeedsConfig
	cfg    *config.Config
	log    *logging.Logger
	sim    *Simulator
	smooth *MovingAverage

	cycles  int
	tempAgg aggregate
	humAgg  aggregate
	ldrAgg  aggregate
}

// New creates a station publishing through the given client.
func New(client Client, cfg *config.Config, log *logging.Logger) *Station {
	s := &Station{
		client: client,
		feeds:  cfg.Feeds,
		cfg:    cfg,
		log:    log,
		sim:    NewSimulator(cfg.Station.Acceleration, cfg.Station.StartHour, time.Now()),
		smooth: NewMovingAverage(cfg.Station.SmoothingWindow),
	}
	client.SetMessageCallback(s.handleCommand)
	return s
}

// Run publishes sensor cycles until ctx is cancelled. One loop interleaves
// the inbound command poll with the periodic publish; a failed poll is
// answered with a reconnect, paced by the poll cadence.
func (s *Station) Run(ctx context.Context) error {
	if err := s.client.Subscribe(s.feeds.Command); err != nil {
		s.log.Warn("command feed subscription failed", "error", err)
	}
	s.publishEvent("SYSTEM", "estacion simulada en linea")

	pollTicker := time.NewTicker(s.cfg.PollInterval())
	defer pollTicker.Stop()
	publishTicker := time.NewTicker(time.Duration(s.cfg.Station.PublishInterval) * time.Second)
	defer publishTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.publishEvent("SYSTEM", "estacion detenida")
			return ctx.Err()

		case <-pollTicker.C:
			if err := s.client.Poll(); err != nil {
				s.log.Error("poll failed, reconnecting", "error", err)
				if err := s.client.Reconnect(); err != nil {
					s.log.Error("reconnect failed", "error", err)
					continue
				}
				if err := s.client.Subscribe(s.feeds.Command); err != nil {
					s.log.Warn("command feed resubscription failed", "error", err)
				}
			}

		case <-publishTicker.C:
			s.publishCycle(time.Now())
		}
	}
}

// publishCycle generates and publishes one full set of sensor values.
// The clock token goes last: it is the receiver's commit trigger.
func (s *Station) publishCycle(now time.Time) {
	temp := s.sim.Temperature(now)
	hum := s.sim.Humidity(now)

	light := s.sim.LightPercent(now)
	s.smooth.Add(light)
	if avg, ok := s.smooth.Avg(); ok {
		light = round1(avg)
	}
	raw := LightRaw(light)

	clock := s.sim.ClockToken(now)
	comfort := ComfortLevel(&temp, &hum)

	values := []struct {
		feed, value string
	}{
		{s.feeds.Temperature, formatFloat(temp)},
		{s.feeds.Humidity, formatFloat(hum)},
		{s.feeds.LightPercent, formatFloat(light)},
		{s.feeds.LightRaw, strconv.Itoa(raw)},
		{s.feeds.Comfort, comfort},
		{s.feeds.Clock, clock},
	}
	for _, v := range values {
		if err := s.client.Publish(v.feed, v.value, false); err != nil {
			s.log.Error("publish failed", "feed", v.feed, "error", err)
			return
		}
	}

	s.tempAgg.add(temp)
	s.humAgg.add(hum)
	s.ldrAgg.add(light)
	s.cycles++

	s.log.Info("cycle published",
		"cycle", s.cycles,
		"temp", temp,
		"hum", hum,
		"ldr_pct", light,
		"estado", clock,
		"comfort", comfort,
		"luz", LuminosityDescription(light),
	)

	if s.cfg.Station.StatsEvery > 0 && s.cycles%s.cfg.Station.StatsEvery == 0 {
		s.publishStatistics()
	}
}

// publishStatistics publishes the running aggregates in the composite
// "T:avg(min-max) H:avg(min-max) L:avg(min-max)" format.
func (s *Station) publishStatistics() {
	payload := fmt.Sprintf("T:%s H:%s L:%s",
		formatGroup(s.tempAgg),
		formatGroup(s.humAgg),
		formatGroup(s.ldrAgg),
	)
	if err := s.client.Publish(s.feeds.Statistics, payload, false); err != nil {
		s.log.Error("statistics publish failed", "error", err)
		return
	}
	s.log.Info("statistics published", "payload", payload)
}

// handleCommand reacts to messages on the command feed. Commands are
// recorded as system events; the LED itself stays simulated.
func (s *Station) handleCommand(feed, value string) {
	if feed != s.feeds.Command {
		return
	}
	s.log.Info("command received", "value", value)

	switch value {
	case "ON", "1":
		s.publishEvent("LED", "encendido desde cloud")
	case "OFF", "0":
		s.publishEvent("LED", "apagado desde cloud")
	default:
		s.publishEvent("LED", "comando desconocido: "+value)
	}
}

// publishEvent publishes a "type:description" system event.
func (s *Station) publishEvent(eventType, description string) {
	payload := eventType + ":" + description
	if err := s.client.Publish(s.feeds.Events, payload, false); err != nil {
		s.log.Warn("event publish failed", "payload", payload, "error", err)
	}
}

// formatFloat renders a sensor value as decimal text with one decimal,
// matching what the firmware always published.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}

// formatGroup renders one aggregate as "avg(min-max)".
func formatGroup(a aggregate) string {
	return fmt.Sprintf("%s(%s-%s)",
		formatFloat(round1(a.avg())),
		formatFloat(a.min),
		formatFloat(a.max),
	)
}
