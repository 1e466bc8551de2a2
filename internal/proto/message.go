package proto

import (
	"encoding/json"
	"fmt"
)

// Envelope is a single frame on the real-time channel, in both directions.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

const (
	// Transport-level events, raised locally by the connection.
	EventConnect      = "connect"
	EventDisconnect   = "disconnect"
	EventConnectError = "connect_error"

	// Inbound events pushed by the server.
	EventNewMessage  = "newMessage"
	EventOnlineUsers = "getOnlineUsers"

	// Outbound events sent by the client.
	EventJoinGroup  = "joinGroup"
	EventLeaveGroup = "leaveGroup"
)

// NewEnvelope marshals v as the payload of the named event.
func NewEnvelope(event string, v any) (Envelope, error) {
	if v == nil {
		return Envelope{Event: event}, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return Envelope{}, fmt.Errorf("marshal %s payload: %w", event, err)
	}
	return Envelope{Event: event, Data: raw}, nil
}

// Decode unmarshals the payload into v.
func (e Envelope) Decode(v any) error {
	if len(e.Data) == 0 {
		return fmt.Errorf("%s: empty payload", e.Event)
	}
	return json.Unmarshal(e.Data, v)
}

// DisconnectData describes why a connection dropped.
type DisconnectData struct {
	Reason string `json:"reason"`
}
