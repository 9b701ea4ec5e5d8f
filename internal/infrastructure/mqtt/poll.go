package mqtt

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strings"
	"time"
	"unicode/utf8"
)

// Poll performs one non-blocking attempt to read the next inbound packet.
//
// Three outcomes, kept distinct:
//   - no data available right now: returns nil, nothing happened
//   - a non-PUBLISH packet: its body is read and discarded, returns nil
//   - a PUBLISH packet: fully decoded and delivered to the callback, returns nil
//
// Any short or failed read once a packet decode has started is a fatal
// transport error wrapping ErrTransport: the caller must treat the
// connection as broken and Disconnect or Reconnect before further use.
// No partial packet is ever delivered.
func (c *Client) Poll() error {
	c.mu.Lock()
	conn := c.conn
	connected := c.connected
	c.mu.Unlock()

	if !connected || conn == nil {
		return ErrNotConnected
	}

	// A near-immediate deadline makes the header read effectively
	// non-blocking: buffered data returns at once, and a timeout means no
	// data, not a fault. The deadline must sit slightly in the future; a
	// deadline at or before now fails reads without ever hitting the socket.
	conn.SetReadDeadline(time.Now().Add(pollReadTimeout))
	var hdr [1]byte
	_, err := conn.Read(hdr[:])
	if err != nil {
		if isTimeout(err) {
			return nil
		}
		return c.fatal(fmt.Errorf("reading packet header: %w", err))
	}

	// A header byte arrived; the rest of the packet follows as bounded
	// synchronous reads.
	conn.SetReadDeadline(time.Now().Add(decodeReadTimeout))
	defer conn.SetReadDeadline(time.Time{})

	if hdr[0]&0xF0 != PUBLISH {
		return c.discard(conn)
	}

	remLen, err := decodeRemainingLength(conn)
	if err != nil {
		return c.fatal(fmt.Errorf("decoding remaining length: %w", err))
	}

	var topicLen [2]byte
	if _, err := io.ReadFull(conn, topicLen[:]); err != nil {
		return c.fatal(fmt.Errorf("reading topic length: %w", err))
	}
	tl := int(binary.BigEndian.Uint16(topicLen[:]))
	if remLen < 2+tl {
		return c.fatal(fmt.Errorf("topic length %d exceeds remaining length %d", tl, remLen))
	}

	topic := make([]byte, tl)
	if _, err := io.ReadFull(conn, topic); err != nil {
		return c.fatal(fmt.Errorf("reading topic: %w", err))
	}

	payload := make([]byte, remLen-2-tl)
	if _, err := io.ReadFull(conn, payload); err != nil {
		return c.fatal(fmt.Errorf("reading payload: %w", err))
	}

	feed := FeedName(lossyString(topic))
	value := lossyString(payload)

	c.callbackMu.RLock()
	callback := c.callback
	c.callbackMu.RUnlock()
	if callback != nil {
		callback(feed, value)
	}
	return nil
}

// discard reads and drops the body of a non-PUBLISH packet.
func (c *Client) discard(conn net.Conn) error {
	remLen, err := decodeRemainingLength(conn)
	if err != nil {
		return c.fatal(fmt.Errorf("decoding remaining length: %w", err))
	}
	if remLen > 0 {
		if _, err := io.CopyN(io.Discard, conn, int64(remLen)); err != nil {
			return c.fatal(fmt.Errorf("discarding packet body: %w", err))
		}
	}
	return nil
}

// fatal marks the connection broken and wraps the cause in ErrTransport.
// The transport handle is kept for Disconnect to release.
func (c *Client) fatal(cause error) error {
	c.mu.Lock()
	c.connected = false
	c.mu.Unlock()
	return fmt.Errorf("%w: %w", ErrTransport, cause)
}

// isTimeout reports whether err is a read deadline expiry.
func isTimeout(err error) bool {
	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return true
	}
	return errors.Is(err, os.ErrDeadlineExceeded)
}

// lossyString decodes b as UTF-8, replacing invalid sequences with the
// replacement rune rather than dropping the message.
func lossyString(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	return strings.ToValidUTF8(string(b), string(utf8.RuneError))
}
