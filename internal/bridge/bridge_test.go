package bridge

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/mavaldez/wxbridge/internal/infrastructure/config"
	"github.com/mavaldez/wxbridge/internal/infrastructure/logging"
	"github.com/mavaldez/wxbridge/internal/infrastructure/mqtt"
	"github.com/mavaldez/wxbridge/internal/reading"
)

// fakeClient records calls and replays scripted poll results.
type fakeClient struct {
	mu         sync.Mutex
	callback   mqtt.MessageHandler
	subscribed []string
	pollErrs   []error
	reconnects int
}

func (f *fakeClient) Subscribe(feed string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subscribed = append(f.subscribed, feed)
	return nil
}

func (f *fakeClient) Poll() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.pollErrs) == 0 {
		return nil
	}
	err := f.pollErrs[0]
	f.pollErrs = f.pollErrs[1:]
	return err
}

func (f *fakeClient) Reconnect() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reconnects++
	return nil
}

func (f *fakeClient) SetMessageCallback(fn mqtt.MessageHandler) {
	f.callback = fn
}

func (f *fakeClient) reconnectCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reconnects
}

// memStore collects inserts in memory.
type memStore struct {
	mu       sync.Mutex
	readings []*reading.Reading
	events   []reading.Event
	stats    []reading.Statistics
}

func (m *memStore) InsertReading(_ context.Context, r *reading.Reading) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.readings = append(m.readings, r)
	return int64(len(m.readings)), nil
}

func (m *memStore) InsertEvent(_ context.Context, e reading.Event) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, e)
	return int64(len(m.events)), nil
}

func (m *memStore) InsertStatistics(_ context.Context, s reading.Statistics) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats = append(m.stats, s)
	return int64(len(m.stats)), nil
}

func testLogger() *logging.Logger {
	return &logging.Logger{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func testBridge(t *testing.T) (*Bridge, *fakeClient, *memStore) {
	t.Helper()
	cfg := config.Default()
	cfg.Buffer.PollInterval = 5
	client := &fakeClient{}
	store := &memStore{}
	b := New(client, store, cfg, testLogger(), nil)
	if client.callback == nil {
		t.Fatal("New() did not register the message callback")
	}
	return b, client, store
}

func TestSubscribeCoversAllFeeds(t *testing.T) {
	b, client, _ := testBridge(t)

	if err := b.Subscribe(); err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	want := map[string]bool{
		"sensor_temp": false, "sensor_hum": false, "sensor_ldr_pct": false,
		"sensor_ldr_raw": false, "sensor_estado": false, "sensor_comfort": false,
		"sensor_stats": false, "system_event": false,
	}
	for _, feed := range client.subscribed {
		if _, ok := want[feed]; !ok {
			t.Errorf("subscribed to unexpected feed %q", feed)
		}
		want[feed] = true
	}
	for feed, seen := range want {
		if !seen {
			t.Errorf("feed %q never subscribed", feed)
		}
	}
}

func TestMessageRoutingToAggregator(t *testing.T) {
	_, client, store := testBridge(t)

	client.callback("sensor_ldr_pct", "55.8")
	client.callback("sensor_ldr_raw", "16000")
	client.callback("sensor_comfort", "Tibio")
	if len(store.readings) != 0 {
		t.Fatal("reading persisted before the clock token")
	}

	client.callback("sensor_estado", "02:30 PM")
	if len(store.readings) != 1 {
		t.Fatalf("readings persisted = %d, want 1", len(store.readings))
	}

	r := store.readings[0]
	if r.ClockToken != "02:30 PM" || r.LightRaw != 16000 || r.Comfort != "Tibio" {
		t.Errorf("persisted reading = %+v", r)
	}
}

func TestStatisticsBypass(t *testing.T) {
	_, client, store := testBridge(t)

	client.callback("sensor_stats", "T:25.3(18.5-32.1) H:65.2(45.0-85.0) L:55.8(10.2-95.3)")

	if len(store.stats) != 1 {
		t.Fatalf("statistics persisted = %d, want 1", len(store.stats))
	}
	if len(store.readings) != 0 {
		t.Error("statistics leaked into the reading path")
	}
	if got := store.stats[0].TempAvg; got == nil || *got != 25.3 {
		t.Errorf("TempAvg = %v, want 25.3", got)
	}
}

func TestEventBypass(t *testing.T) {
	_, client, store := testBridge(t)

	client.callback("system_event", "LED:encendido")
	client.callback("system_event", "sin tipo")

	if len(store.events) != 2 {
		t.Fatalf("events persisted = %d, want 2", len(store.events))
	}
	if store.events[0].Type != "LED" || store.events[0].Description != "encendido" {
		t.Errorf("event[0] = %+v", store.events[0])
	}
	if store.events[1].Type != "SYSTEM" {
		t.Errorf("event[1].Type = %q, want SYSTEM", store.events[1].Type)
	}
}

func TestUnparseableLightValueDoesNotAbort(t *testing.T) {
	_, client, store := testBridge(t)

	client.callback("sensor_ldr_pct", "garbage")
	client.callback("sensor_ldr_pct", "40.0")
	client.callback("sensor_ldr_raw", "9000")
	client.callback("sensor_estado", "08:00 AM")

	if len(store.readings) != 1 {
		t.Fatalf("readings persisted = %d, want 1", len(store.readings))
	}
	if store.readings[0].LightPercent != 40.0 {
		t.Errorf("LightPercent = %v, want 40.0", store.readings[0].LightPercent)
	}
}

func TestRunReconnectsOnTransportFailure(t *testing.T) {
	b, client, store := testBridge(t)
	client.pollErrs = []error{mqtt.ErrTransport}

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	if err := b.Run(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Run() error = %v, want context.DeadlineExceeded", err)
	}

	if client.reconnectCount() == 0 {
		t.Error("transport failure never triggered a reconnect")
	}

	store.mu.Lock()
	defer store.mu.Unlock()
	var sawFailure bool
	for _, e := range store.events {
		if e.Type == eventTypeBridge {
			sawFailure = true
		}
	}
	if !sawFailure {
		t.Error("transport failure never recorded as a system event")
	}
}
