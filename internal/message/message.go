// Package message defines the clipfmt control protocol.
//
// All messages are newline-delimited JSON; each message is exactly one line:
// <json>\n. A client sends one request and reads one response.
package message

import (
	"encoding/json"
	"fmt"
	"time"
)

// Type identifies the kind of message.
type Type string

const (
	TypeStatus         Type = "STATUS"
	TypeStatusResponse Type = "STATUS_RESPONSE"
	TypePause          Type = "PAUSE"
	TypeResume         Type = "RESUME"
	TypeStop           Type = "STOP"
	TypeOK             Type = "OK"
	TypeError          Type = "ERROR"
)

// Status describes a running watcher.
type Status struct {
	State     string    `json:"state"`
	Version   string    `json:"version"`
	PID       int       `json:"pid"`
	StartedAt time.Time `json:"started_at"`
	Backend   string    `json:"backend"`
	Strategy  string    `json:"strategy"`
	Markers   []string  `json:"markers"`

	Changes     int64     `json:"changes"`
	Transformed int64     `json:"transformed"`
	Failed      int64     `json:"failed"`
	Unmatched   int64     `json:"unmatched"`
	ReadErrors  int64     `json:"read_errors"`
	LastRule    string    `json:"last_rule,omitempty"`
	LastError   string    `json:"last_error,omitempty"`
	LastAt      time.Time `json:"last_at,omitzero"`
}

// Message is the top-level wire envelope.
type Message struct {
	Type   Type   `json:"type"`
	Source string `json:"source,omitempty"`

	// STATUS_RESPONSE, and OK replies to PAUSE / RESUME
	Status *Status `json:"status,omitempty"`

	// ERROR
	Error string `json:"error,omitempty"`
}

// Encode serialises the message to JSON without a trailing newline.
func (m *Message) Encode() ([]byte, error) {
	return json.Marshal(m)
}

// Decode deserialises a message from raw JSON bytes.
func Decode(b []byte) (*Message, error) {
	var m Message
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("message decode: %w", err)
	}
	if m.Type == "" {
		return nil, fmt.Errorf("message decode: missing type")
	}
	return &m, nil
}

// Errorf builds an ERROR reply.
func Errorf(format string, args ...any) *Message {
	return &Message{Type: TypeError, Error: fmt.Sprintf(format, args...)}
}
