// Package protocol implements the loopback control channel between the
// playback proxy and the player service.
//
// Messages are typed, addressed JSON datagrams with positional argument lists.
// Delivery is fire-and-forget and at-most-once: there is no acknowledgement,
// retry, or ordering layer beneath what the handlers implement themselves
// (the get_pos/pos exchange is a manual request/reply). Both state machines
// are written to tolerate silent loss and reordering.
package protocol

import (
	"encoding/json"
	"fmt"
)

// Opcode identifies a message type on the control channel.
type Opcode string

// Commands sent by the proxy to the service.
const (
	OpLoad            Opcode = "/load"
	OpPlay            Opcode = "/play"
	OpLoadPlay        Opcode = "/load_play"
	OpSeek            Opcode = "/seek"
	OpStop            Opcode = "/stop"
	OpPause           Opcode = "/pause"
	OpSetVolume       Opcode = "/set_volume"
	OpGetPos          Opcode = "/get_pos"
	OpPlayNewPlaylist Opcode = "/play_new_playlist"
)

// Notifications sent by the service to the proxy.
const (
	OpPos            Opcode = "/pos"
	OpPlaying        Opcode = "/playing"
	OpSetState       Opcode = "/set_state"
	OpSetComplete    Opcode = "/set_complete"
	OpUpdatePlaylist Opcode = "/update_playlist"
)

// State is a playback state name carried by set_state notifications. The
// service owns the authoritative value; the proxy holds a cached copy updated
// only via notifications.
type State string

const (
	StateStopped State = "stopped"
	StatePlaying State = "playing"
	StatePaused  State = "paused"
)

// Message is one datagram: an opcode plus a fixed-position argument list.
// Messages have no persistent identity.
type Message struct {
	Op   Opcode `json:"op"`
	Args []any  `json:"args,omitempty"`
}

// NewMessage builds a message from an opcode and positional arguments.
func NewMessage(op Opcode, args ...any) Message {
	return Message{Op: op, Args: args}
}

// Encode serializes the message to its wire form.
func (m Message) Encode() ([]byte, error) {
	payload, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", m.Op, err)
	}
	return payload, nil
}

// Decode parses a datagram payload into a message.
func Decode(payload []byte) (Message, error) {
	var m Message
	if err := json.Unmarshal(payload, &m); err != nil {
		return Message{}, fmt.Errorf("unmarshal message: %w", err)
	}
	if m.Op == "" {
		return Message{}, fmt.Errorf("message without opcode")
	}
	return m, nil
}

// Float returns the argument at index i as a float64. JSON numbers always
// decode as float64, so this covers positions, volumes, and seconds.
func (m Message) Float(i int) (float64, error) {
	if i >= len(m.Args) {
		return 0, fmt.Errorf("%s: missing argument %d", m.Op, i)
	}
	f, ok := m.Args[i].(float64)
	if !ok {
		return 0, fmt.Errorf("%s: argument %d is %T, not a number", m.Op, i, m.Args[i])
	}
	return f, nil
}

// Int64 returns the argument at index i as an int64 track identifier.
func (m Message) Int64(i int) (int64, error) {
	f, err := m.Float(i)
	if err != nil {
		return 0, err
	}
	return int64(f), nil
}

// String returns the argument at index i as a string.
func (m Message) String(i int) (string, error) {
	if i >= len(m.Args) {
		return "", fmt.Errorf("%s: missing argument %d", m.Op, i)
	}
	s, ok := m.Args[i].(string)
	if !ok {
		return "", fmt.Errorf("%s: argument %d is %T, not a string", m.Op, i, m.Args[i])
	}
	return s, nil
}

// Bool returns the argument at index i as a bool.
func (m Message) Bool(i int) (bool, error) {
	if i >= len(m.Args) {
		return false, fmt.Errorf("%s: missing argument %d", m.Op, i)
	}
	b, ok := m.Args[i].(bool)
	if !ok {
		return false, fmt.Errorf("%s: argument %d is %T, not a bool", m.Op, i, m.Args[i])
	}
	return b, nil
}
