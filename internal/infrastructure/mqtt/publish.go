package mqtt

import "fmt"

// Publish sends value to feed at QoS 0. The value travels as UTF-8 text;
// numbers should already be formatted decimally by the caller. retain asks
// the broker to keep the message for future subscribers.
//
// Returns ErrNotConnected when the client has no live connection, or a
// transport error wrapping ErrTransport when the send fails mid-stream.
func (c *Client) Publish(feed, value string, retain bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.connected || c.conn == nil {
		return ErrNotConnected
	}

	topic := Feed(c.auth.Username, feed)
	pkt, err := publishPacket(topic, []byte(value), retain)
	if err != nil {
		return fmt.Errorf("building PUBLISH for %q: %w", feed, err)
	}

	if _, err := c.conn.Write(pkt); err != nil {
		c.connected = false
		return fmt.Errorf("%w: sending PUBLISH: %w", ErrTransport, err)
	}
	return nil
}
