package mqtt

import (
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mavaldez/wxbridge/internal/infrastructure/config"
)

const (
	// defaultDialTimeout bounds the TCP connect attempt.
	defaultDialTimeout = 10 * time.Second

	// handshakeTimeout bounds the CONNECT/CONNACK exchange.
	handshakeTimeout = 5 * time.Second

	// pollReadTimeout bounds the header-byte read in Poll. Short enough
	// that an empty socket returns control to the host loop promptly.
	pollReadTimeout = 10 * time.Millisecond

	// decodeReadTimeout bounds each blocking read inside a packet decode.
	// Once a header byte has arrived the rest of the packet should follow
	// promptly; a stall this long means the connection is broken.
	decodeReadTimeout = 2 * time.Second
)

// Dialer opens the transport to the broker. Injectable for tests.
type Dialer func(network, address string, timeout time.Duration) (net.Conn, error)

// MessageHandler is the callback signature for delivered PUBLISH messages.
//
// It is invoked synchronously from Poll, never concurrently with itself.
// The feed name is the final path segment of the topic; the value is the
// payload decoded as UTF-8 text.
type MessageHandler func(feed, value string)

// Client is a minimal MQTT 3.1.1 client implemented directly over a TCP
// stream. It supports the CONNECT handshake, QoS 0 publish, fire-and-forget
// subscribe, and a non-blocking inbound poll.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
//   - Poll must not be called concurrently with itself; the connection
//     carries one packet decode at a time.
type Client struct {
	broker config.BrokerConfig
	auth   config.AuthConfig

	dial Dialer

	// conn and connected transition together under mu.
	conn      net.Conn
	connected bool
	mu        sync.Mutex

	// packetID increments per SUBSCRIBE, guarded by mu.
	packetID uint16

	// callback is the single delivery slot.
	callback   MessageHandler
	callbackMu sync.RWMutex

	// logger for non-fatal diagnostics (optional, set via SetLogger).
	logger   Logger
	loggerMu sync.RWMutex
}

// Logger interface for optional logging support.
// Compatible with logging.Logger and slog.Logger.
type Logger interface {
	Error(msg string, args ...any)
	Warn(msg string, args ...any)
}

// New creates a client for the given broker and credentials. The client
// starts disconnected; call Connect before publishing or subscribing.
func New(broker config.BrokerConfig, auth config.AuthConfig) *Client {
	return &Client{
		broker: broker,
		auth:   auth,
		dial:   net.DialTimeout,
	}
}

// Connect establishes the connection to the broker.
//
// It dials the transport, sends a CONNECT packet with the configured
// credentials and clean session, and reads exactly the 4-byte CONNACK.
// A non-zero return code maps to one of the sentinel rejection errors
// (ErrBadCredentials, ErrNotAuthorized, ...); a malformed response is
// ErrConnectionFailed. On success the client is ready for Publish,
// Subscribe and Poll.
//
// Returns:
//   - error: nil on success, the classified rejection or transport error otherwise
func (c *Client) Connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.connected {
		return nil
	}

	addr := net.JoinHostPort(c.broker.Host, fmt.Sprintf("%d", c.broker.Port))
	conn, err := c.dial("tcp", addr, defaultDialTimeout)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	pkt, err := connectPacket(c.clientID(), c.auth.Username, c.auth.Key, uint16(c.broker.KeepAlive))
	if err != nil {
		conn.Close()
		return fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	conn.SetDeadline(time.Now().Add(handshakeTimeout))
	if _, err := conn.Write(pkt); err != nil {
		conn.Close()
		return fmt.Errorf("%w: sending CONNECT: %w", ErrConnectionFailed, err)
	}

	var ack [4]byte
	if _, err := io.ReadFull(conn, ack[:]); err != nil {
		conn.Close()
		return fmt.Errorf("%w: reading CONNACK: %w", ErrConnectionFailed, err)
	}
	if ack[0] != CONNACK || ack[1] != 0x02 {
		conn.Close()
		return fmt.Errorf("%w: unexpected CONNACK header [%#02x %#02x]", ErrConnectionFailed, ack[0], ack[1])
	}
	if ack[3] != 0x00 {
		conn.Close()
		return connackError(ack[3])
	}

	conn.SetDeadline(time.Time{})
	c.conn = conn
	c.connected = true
	return nil
}

// Disconnect sends a best-effort DISCONNECT packet, then unconditionally
// closes the transport and clears the connected state. Send and close
// failures are logged at Warn, never returned: resource release must not
// depend on the transport still working.
func (c *Client) Disconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		c.conn.SetWriteDeadline(time.Now().Add(time.Second))
		if _, err := c.conn.Write(disconnectPacket()); err != nil {
			c.warn("sending DISCONNECT failed", "error", err)
		}
		if err := c.conn.Close(); err != nil {
			c.warn("closing connection failed", "error", err)
		}
	}
	c.conn = nil
	c.connected = false
}

// Reconnect drops the current connection, waits the configured delay and
// connects again. Single-shot: retry and backoff policy belong to the
// caller.
func (c *Client) Reconnect() error {
	c.Disconnect()
	time.Sleep(time.Duration(c.broker.ReconnectDelay) * time.Second)
	return c.Connect()
}

// IsConnected returns the last known connection state.
func (c *Client) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// SetMessageCallback replaces the single delivery callback slot.
// The callback is invoked only from Poll, never re-entrantly.
func (c *Client) SetMessageCallback(fn MessageHandler) {
	c.callbackMu.Lock()
	c.callback = fn
	c.callbackMu.Unlock()
}

// SetDialer replaces the transport dialer. Intended for tests.
func (c *Client) SetDialer(dial Dialer) {
	c.dial = dial
}

// SetLogger sets a logger for non-fatal diagnostics.
// If not set, disconnect faults are silently discarded.
func (c *Client) SetLogger(logger Logger) {
	c.loggerMu.Lock()
	c.logger = logger
	c.loggerMu.Unlock()
}

// clientID returns the configured client id, or a generated one so parallel
// instances never collide on the broker.
func (c *Client) clientID() string {
	if c.broker.ClientID != "" {
		return c.broker.ClientID
	}
	return "wxbridge-" + uuid.NewString()[:8]
}

// nextPacketID returns the next SUBSCRIBE packet identifier.
// Caller holds mu. Skips zero, which the protocol reserves.
func (c *Client) nextPacketID() uint16 {
	c.packetID++
	if c.packetID == 0 {
		c.packetID = 1
	}
	return c.packetID
}

func (c *Client) warn(msg string, args ...any) {
	c.loggerMu.RLock()
	logger := c.logger
	c.loggerMu.RUnlock()
	if logger != nil {
		logger.Warn(msg, args...)
	}
}
