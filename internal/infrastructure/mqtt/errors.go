package mqtt

import (
	"errors"
	"fmt"
)

// Domain-specific errors for MQTT operations.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrNotConnected is returned when attempting operations on a disconnected client.
	ErrNotConnected = errors.New("mqtt: client not connected")

	// ErrConnectionFailed is returned when the transport cannot be established
	// or the CONNACK response is malformed.
	ErrConnectionFailed = errors.New("mqtt: connection failed")

	// ErrMalformedLength is returned when a remaining-length field exceeds
	// 4 bytes or the value is out of range.
	ErrMalformedLength = errors.New("mqtt: malformed remaining length")

	// ErrTruncated is returned when a length-prefixed string claims more
	// bytes than the buffer holds.
	ErrTruncated = errors.New("mqtt: truncated string")

	// ErrStringTooLong is returned when a string exceeds the 65535-byte
	// wire limit.
	ErrStringTooLong = errors.New("mqtt: string exceeds 65535 bytes")

	// ErrTransport is returned when the connection fails mid-packet.
	// The caller must assume the connection is dead and reconnect.
	ErrTransport = errors.New("mqtt: transport failure")
)

// CONNACK return-code rejections, MQTT 3.1.1 §3.2.2.3.
var (
	ErrBadProtocolVersion = errors.New("mqtt: connection refused, unacceptable protocol version")
	ErrIdentifierRejected = errors.New("mqtt: connection refused, identifier rejected")
	ErrServerUnavailable  = errors.New("mqtt: connection refused, server unavailable")
	ErrBadCredentials     = errors.New("mqtt: connection refused, bad user name or password")
	ErrNotAuthorized      = errors.New("mqtt: connection refused, not authorized")
)

// ConnackError reports a CONNACK return code outside the five enumerated
// rejections. The known codes unwrap to their sentinel errors.
type ConnackError struct {
	Code byte
}

func (e *ConnackError) Error() string {
	return fmt.Sprintf("mqtt: connection refused, return code %d", e.Code)
}

// connackError maps a non-zero CONNACK return code to its sentinel error.
func connackError(code byte) error {
	switch code {
	case 1:
		return ErrBadProtocolVersion
	case 2:
		return ErrIdentifierRejected
	case 3:
		return ErrServerUnavailable
	case 4:
		return ErrBadCredentials
	case 5:
		return ErrNotAuthorized
	default:
		return &ConnackError{Code: code}
	}
}
