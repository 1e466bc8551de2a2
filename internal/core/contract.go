package core

import (
	"context"
	"encoding/json"

	"github.com/vovakirdan/chatsync/internal/proto"
)

// Conn is the real-time connection as seen by the core. Only the
// SessionManager starts and closes it; everything else attaches handlers.
type Conn interface {
	On(event string, h func(json.RawMessage)) (unsubscribe func())
	Emit(ctx context.Context, event string, v any) error
	Start()
	Connected() bool
	Closed() bool
	Close() error
}

// DialFunc builds an unstarted connection for userID against endpoint.
type DialFunc func(endpoint, userID string) (Conn, error)

// ConnProvider hands out the session's current connection, or nil.
type ConnProvider interface {
	Conn() Conn
}

// Identity reports the authenticated user, if any.
type Identity interface {
	User() (proto.User, bool)
}

// Notifier surfaces transient, user-facing notifications.
type Notifier interface {
	Success(msg string)
	Error(msg string)
	Info(msg string)
}
