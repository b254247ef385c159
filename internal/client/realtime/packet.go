package realtime

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Engine.IO v4 packet types.
const (
	engineOpen    = '0'
	engineClose   = '1'
	enginePing    = '2'
	enginePong    = '3'
	engineMessage = '4'
)

// Socket.IO v5 packet types, carried inside an engine message.
const (
	packetConnect      = '0'
	packetDisconnect   = '1'
	packetEvent        = '2'
	packetAck          = '3'
	packetConnectError = '4'
)

var errMalformedPacket = errors.New("malformed socket packet")

// packet is a decoded Socket.IO packet. Data is the raw JSON tail.
type packet struct {
	Type      byte
	Namespace string
	AckID     string
	Data      json.RawMessage
}

// encodePacket renders a Socket.IO packet wrapped in an engine message.
func encodePacket(typ byte, nsp string, data []byte) string {
	var b strings.Builder
	b.WriteByte(engineMessage)
	b.WriteByte(typ)
	if nsp != "" && nsp != "/" {
		b.WriteString(nsp)
		b.WriteByte(',')
	}
	b.Write(data)
	return b.String()
}

func encodeEvent(nsp, event string, payload any) (string, error) {
	args := []any{event}
	if payload != nil {
		args = append(args, payload)
	}
	data, err := json.Marshal(args)
	if err != nil {
		return "", fmt.Errorf("encode event %s: %w", event, err)
	}
	return encodePacket(packetEvent, nsp, data), nil
}

// decodePacket parses the payload of an engine message (without the leading
// engine type byte).
func decodePacket(s string) (packet, error) {
	if s == "" {
		return packet{}, errMalformedPacket
	}
	p := packet{Type: s[0], Namespace: "/"}
	rest := s[1:]

	if strings.HasPrefix(rest, "/") {
		i := strings.IndexByte(rest, ',')
		if i < 0 {
			p.Namespace = rest
			return p, nil
		}
		p.Namespace = rest[:i]
		rest = rest[i+1:]
	}

	i := 0
	for i < len(rest) && rest[i] >= '0' && rest[i] <= '9' {
		i++
	}
	p.AckID = rest[:i]
	rest = rest[i:]

	if rest != "" {
		if !json.Valid([]byte(rest)) {
			return packet{}, fmt.Errorf("%w: %q", errMalformedPacket, s)
		}
		p.Data = json.RawMessage(rest)
	}
	return p, nil
}

// eventArgs splits an EVENT packet's data into the event name and its first
// argument.
func eventArgs(data json.RawMessage) (string, json.RawMessage, error) {
	var args []json.RawMessage
	if err := json.Unmarshal(data, &args); err != nil || len(args) == 0 {
		return "", nil, errMalformedPacket
	}
	var name string
	if err := json.Unmarshal(args[0], &name); err != nil {
		return "", nil, errMalformedPacket
	}
	if len(args) == 1 {
		return name, nil, nil
	}
	return name, args[1], nil
}
