package mqtt

import (
	"fmt"
	"strings"
)

// Topic convention: <identity>/feeds/<feedName>, the Adafruit IO scheme.
// Feed names never contain a slash.

// Feed returns the full topic for a feed under the given identity.
//
// Example: Feed("alice", "sensor_temp") = "alice/feeds/sensor_temp"
func Feed(identity, feed string) string {
	return fmt.Sprintf("%s/feeds/%s", identity, feed)
}

// FeedName extracts the feed name from a topic: the substring after the
// final slash. A topic without slashes is returned whole.
func FeedName(topic string) string {
	if i := strings.LastIndexByte(topic, '/'); i >= 0 {
		return topic[i+1:]
	}
	return topic
}
