package mqtt

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Control packet types, MQTT 3.1.1 §2.2.1. The value occupies the high
// nibble of the fixed header's first byte.
const (
	CONNECT     = 1 << 4
	CONNACK     = 2 << 4
	PUBLISH     = 3 << 4
	PUBACK      = 4 << 4
	PUBREC      = 5 << 4
	PUBREL      = 6 << 4
	PUBCOMP     = 7 << 4
	SUBSCRIBE   = 8 << 4
	SUBACK      = 9 << 4
	UNSUBSCRIBE = 10 << 4
	UNSUBACK    = 11 << 4
	PINGREQ     = 12 << 4
	PINGRESP    = 13 << 4
	DISCONNECT  = 14 << 4
)

// maxRemainingLength is the largest value the 4-byte variable-length
// remaining-length field can carry (MQTT 3.1.1 §2.2.3).
const maxRemainingLength = 268435455

const (
	// retainFlag is the low bit of the PUBLISH flags nibble.
	retainFlag = 0x01

	// connectFlags requests username + password + clean session.
	connectFlags = 0xC2

	// protocolLevel311 is the CONNECT protocol level for MQTT 3.1.1.
	protocolLevel311 = 0x04
)

// encodeRemainingLength encodes n as the variable-length remaining-length
// field: 7 bits per byte, least-significant group first, MSB set on every
// byte except the last.
//
// n must be in [0, maxRemainingLength]; larger values return ErrMalformedLength.
func encodeRemainingLength(n int) ([]byte, error) {
	if n < 0 || n > maxRemainingLength {
		return nil, fmt.Errorf("%w: %d out of range", ErrMalformedLength, n)
	}
	enc := make([]byte, 0, 4)
	for {
		digit := byte(n & 0x7F)
		n >>= 7
		if n > 0 {
			digit |= 0x80
		}
		enc = append(enc, digit)
		if n == 0 {
			return enc, nil
		}
	}
}

// decodeRemainingLength reads the variable-length field one byte at a time
// until the continuation bit is clear. More than 4 bytes with the
// continuation bit set is a protocol violation and returns ErrMalformedLength.
func decodeRemainingLength(r io.Reader) (int, error) {
	var (
		value      int
		multiplier = 1
		buf        [1]byte
	)
	for i := 0; ; i++ {
		if i >= 4 {
			return 0, ErrMalformedLength
		}
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return 0, fmt.Errorf("reading length byte: %w", err)
		}
		digit := buf[0]
		value += int(digit&0x7F) * multiplier
		if digit&0x80 == 0 {
			return value, nil
		}
		multiplier *= 128
	}
}

// encodeString prefixes s with its 2-byte big-endian byte length
// (MQTT 3.1.1 §1.5.3). Strings longer than 65535 bytes return ErrStringTooLong.
func encodeString(s string) ([]byte, error) {
	if len(s) > 0xFFFF {
		return nil, fmt.Errorf("%w: %d bytes", ErrStringTooLong, len(s))
	}
	out := make([]byte, 2+len(s))
	binary.BigEndian.PutUint16(out, uint16(len(s)))
	copy(out[2:], s)
	return out, nil
}

// decodeString reads one length-prefixed string from the front of buf and
// returns it with the number of bytes consumed. A length prefix that exceeds
// the available bytes returns ErrTruncated.
func decodeString(buf []byte) (string, int, error) {
	if len(buf) < 2 {
		return "", 0, fmt.Errorf("%w: need 2 length bytes, have %d", ErrTruncated, len(buf))
	}
	n := int(binary.BigEndian.Uint16(buf))
	if len(buf) < 2+n {
		return "", 0, fmt.Errorf("%w: need %d string bytes, have %d", ErrTruncated, n, len(buf)-2)
	}
	return string(buf[2 : 2+n]), 2 + n, nil
}

// connectPacket builds a complete CONNECT packet for MQTT 3.1.1 with the
// username/password/clean-session flag set.
func connectPacket(clientID, username, password string, keepalive uint16) ([]byte, error) {
	proto, err := encodeString("MQTT")
	if err != nil {
		return nil, err
	}

	vh := make([]byte, 0, len(proto)+4)
	vh = append(vh, proto...)
	vh = append(vh, protocolLevel311, connectFlags)
	vh = binary.BigEndian.AppendUint16(vh, keepalive)

	var payload []byte
	for _, s := range []string{clientID, username, password} {
		enc, err := encodeString(s)
		if err != nil {
			return nil, err
		}
		payload = append(payload, enc...)
	}

	return assemble(CONNECT, vh, payload)
}

// publishPacket builds a QoS 0 PUBLISH packet. retain sets the low bit of
// the flags nibble.
func publishPacket(topic string, payload []byte, retain bool) ([]byte, error) {
	vh, err := encodeString(topic)
	if err != nil {
		return nil, err
	}
	header := byte(PUBLISH)
	if retain {
		header |= retainFlag
	}
	return assemble(header, vh, payload)
}

// subscribePacket builds a SUBSCRIBE packet for one topic filter at
// requested QoS 0. The fixed header is 0x82: SUBSCRIBE with the mandatory
// reserved flags (MQTT 3.1.1 §3.8.1).
func subscribePacket(packetID uint16, topic string) ([]byte, error) {
	enc, err := encodeString(topic)
	if err != nil {
		return nil, err
	}
	vh := binary.BigEndian.AppendUint16(nil, packetID)
	payload := append(enc, 0x00) // requested QoS
	return assemble(SUBSCRIBE|0x02, vh, payload)
}

// disconnectPacket is the fixed 2-byte DISCONNECT packet.
func disconnectPacket() []byte {
	return []byte{DISCONNECT, 0x00}
}

// assemble concatenates fixed header byte, encoded remaining length,
// variable header and payload into one write-ready buffer.
func assemble(header byte, vh, payload []byte) ([]byte, error) {
	remLen, err := encodeRemainingLength(len(vh) + len(payload))
	if err != nil {
		return nil, err
	}
	pkt := make([]byte, 0, 1+len(remLen)+len(vh)+len(payload))
	pkt = append(pkt, header)
	pkt = append(pkt, remLen...)
	pkt = append(pkt, vh...)
	pkt = append(pkt, payload...)
	return pkt, nil
}
