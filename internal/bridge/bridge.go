package bridge

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mavaldez/wxbridge/internal/infrastructure/config"
	"github.com/mavaldez/wxbridge/internal/infrastructure/logging"
	"github.com/mavaldez/wxbridge/internal/infrastructure/mqtt"
	"github.com/mavaldez/wxbridge/internal/reading"
)

// eventTypeBridge tags system events the bridge records about itself.
const eventTypeBridge = "MQTT_BRIDGE"

// Client is the protocol client surface the bridge drives.
// *mqtt.Client satisfies it; tests substitute a fake.
type Client interface {
	Subscribe(feed string) error
	Poll() error
	Reconnect() error
	SetMessageCallback(mqtt.MessageHandler)
}

// Mirror receives committed records for forwarding to a secondary sink.
// Optional; a nil mirror disables forwarding.
type Mirror interface {
	WriteReading(r *reading.Reading)
	WriteStatistics(s reading.Statistics)
}

// Bridge routes delivered messages into the aggregator and persists what
// comes out. Two feeds bypass the aggregator entirely: aggregate
// statistics and system events go straight to the store, independent of
// the commit cycle. The bridge is the only component that talks to the
// persistence collaborator.
type Bridge struct {
	client Client
	agg    *reading.Aggregator
	store  reading.Store
	feeds  config.FeedsConfig
	cfg    *config.Config
	log    *logging.Logger
	mirror Mirror
}

// New creates a bridge wiring the client's delivered messages to the
// aggregator and store. mirror may be nil.
func New(client Client, store reading.Store, cfg *config.Config, log *logging.Logger, mirror Mirror) *Bridge {
	b := &Bridge{
		client: client,
		agg:    reading.NewAggregator(cfg.Feeds),
		store:  store,
		feeds:  cfg.Feeds,
		cfg:    cfg,
		log:    log,
		mirror: mirror,
	}
	client.SetMessageCallback(b.handleMessage)
	return b
}

// Subscribe registers for every configured feed. Called after each
// connect: sessions are clean, so subscriptions do not survive reconnects.
func (b *Bridge) Subscribe() error {
	feeds := []string{
		b.feeds.Temperature,
		b.feeds.Humidity,
		b.feeds.LightPercent,
		b.feeds.LightRaw,
		b.feeds.Clock,
		b.feeds.Comfort,
		b.feeds.Statistics,
		b.feeds.Events,
	}
	for _, feed := range feeds {
		if feed == "" {
			continue
		}
		if err := b.client.Subscribe(feed); err != nil {
			return fmt.Errorf("subscribing to %q: %w", feed, err)
		}
		b.log.Debug("subscribed to feed", "feed", feed)
	}
	return nil
}

// Run drives the pipeline until ctx is cancelled: one control loop
// interleaving the inbound poll with the periodic buffer timeout check.
// A fatal transport error is recorded as a system event and answered with
// a reconnect; the poll cadence paces retries when the broker stays away.
func (b *Bridge) Run(ctx context.Context) error {
	pollTicker := time.NewTicker(b.cfg.PollInterval())
	defer pollTicker.Stop()
	checkTicker := time.NewTicker(b.cfg.CheckInterval())
	defer checkTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-pollTicker.C:
			err := b.client.Poll()
			if err == nil {
				continue
			}
			if errors.Is(err, mqtt.ErrTransport) {
				b.log.Error("transport failure, reconnecting", "error", err)
				b.recordEvent(ctx, reading.Event{
					Type:        eventTypeBridge,
					Description: fmt.Sprintf("transport failure: %v", err),
				})
			}
			b.reconnect(ctx)

		case <-checkTicker.C:
			if r := b.agg.CheckTimeout(time.Now(), b.cfg.BufferTimeout()); r != nil {
				b.log.Warn("buffer timeout, committing partial reading", "sequence", r.Sequence)
				b.persist(ctx, r)
			}
		}
	}
}

// handleMessage is the client's delivery callback.
func (b *Bridge) handleMessage(feed, value string) {
	ctx := context.Background()

	switch feed {
	case b.feeds.Statistics:
		b.handleStatistics(ctx, value)
	case b.feeds.Events:
		b.handleEvent(ctx, value)
	default:
		r, err := b.agg.Update(feed, value)
		if err != nil {
			// Unparseable light value: the field is dropped, the
			// pipeline continues.
			b.log.Warn("dropping unparseable update", "feed", feed, "value", value, "error", err)
			return
		}
		if r != nil {
			b.persist(ctx, r)
		}
	}
}

// handleStatistics parses the composite statistics payload and persists it
// directly, independent of the commit cycle and sequence counter.
func (b *Bridge) handleStatistics(ctx context.Context, value string) {
	stats := parseStatistics(value)
	id, err := b.store.InsertStatistics(ctx, stats)
	if err != nil {
		b.log.Error("persisting statistics failed", "error", err)
		return
	}
	b.log.Info("statistics persisted", "id", id, "raw", value)
	if b.mirror != nil {
		b.mirror.WriteStatistics(stats)
	}
}

// handleEvent parses and persists one system event.
func (b *Bridge) handleEvent(ctx context.Context, value string) {
	b.recordEvent(ctx, parseEvent(value))
}

// persist stores a committed reading and forwards it to the mirror.
func (b *Bridge) persist(ctx context.Context, r *reading.Reading) {
	id, err := b.store.InsertReading(ctx, r)
	if err != nil {
		b.log.Error("persisting reading failed", "sequence", r.Sequence, "error", err)
		return
	}
	b.log.Info("reading persisted",
		"id", id,
		"sequence", r.Sequence,
		"ldr_percent", r.LightPercent,
		"estado", r.ClockToken,
	)
	if b.mirror != nil {
		b.mirror.WriteReading(r)
	}
}

// recordEvent persists a system event, logging rather than failing when
// the store is unavailable.
func (b *Bridge) recordEvent(ctx context.Context, e reading.Event) {
	id, err := b.store.InsertEvent(ctx, e)
	if err != nil {
		b.log.Error("persisting event failed", "type", e.Type, "error", err)
		return
	}
	b.log.Info("event persisted", "id", id, "type", e.Type, "description", e.Description)
}

// reconnect re-establishes the connection and the subscriptions.
func (b *Bridge) reconnect(ctx context.Context) {
	if err := b.client.Reconnect(); err != nil {
		b.log.Error("reconnect failed", "error", err)
		return
	}
	b.log.Info("reconnected to broker")
	b.recordEvent(ctx, reading.Event{Type: eventTypeBridge, Description: "reconnected to broker"})
	if err := b.Subscribe(); err != nil {
		b.log.Error("resubscribe failed", "error", err)
	}
}
