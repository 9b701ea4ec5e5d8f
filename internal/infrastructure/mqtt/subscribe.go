package mqtt

import "fmt"

// Subscribe sends a SUBSCRIBE packet for feed at requested QoS 0 with an
// internally incrementing packet identifier.
//
// Fire-and-forget: the SUBACK is never read or validated, so a broker-side
// rejection goes unnoticed. Known gap, kept deliberately; fixing it would
// require interleaving SUBACK reads with the Poll loop.
//
// Returns ErrNotConnected when the client has no live connection, or a
// transport error wrapping ErrTransport when the send fails.
func (c *Client) Subscribe(feed string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.connected || c.conn == nil {
		return ErrNotConnected
	}

	topic := Feed(c.auth.Username, feed)
	pkt, err := subscribePacket(c.nextPacketID(), topic)
	if err != nil {
		return fmt.Errorf("building SUBSCRIBE for %q: %w", feed, err)
	}

	if _, err := c.conn.Write(pkt); err != nil {
		c.connected = false
		return fmt.Errorf("%w: sending SUBSCRIBE: %w", ErrTransport, err)
	}
	return nil
}
