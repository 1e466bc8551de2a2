package core

import (
	"context"
	"encoding/json"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/chatsync/internal/api"
	"github.com/vovakirdan/chatsync/internal/event"
	"github.com/vovakirdan/chatsync/internal/proto"
)

const signalTimeout = 5 * time.Second

// MessageRouter owns the message log of the active conversation. It filters
// inbound newMessage events against the conversation it is subscribed to.
type MessageRouter struct {
	conns  ConnProvider
	chat   ChatAPI
	notify Notifier
	log    zerolog.Logger
	dedupe bool

	mu       sync.Mutex
	active   *Conversation
	messages []proto.Message
	seen     map[string]struct{}
	handlers []func()
	joined   string
	// gen counts Subscribe/Unsubscribe calls; Rebind only applies to the
	// generation it observed.
	gen uint64

	changes event.Emitter[[]proto.Message]
}

// NewMessageRouter builds a router. With dedupe set, appends are idempotent
// per message id; otherwise a message delivered twice is logged twice.
func NewMessageRouter(conns ConnProvider, chat ChatAPI, notify Notifier, dedupe bool, logger *zerolog.Logger) *MessageRouter {
	return &MessageRouter{
		conns:  conns,
		chat:   chat,
		notify: notify,
		log:    componentLogger(logger, "router"),
		dedupe: dedupe,
		seen:   make(map[string]struct{}),
	}
}

// Subscribe routes inbound messages for conv. Any earlier registration is
// removed first, so repeated calls never stack handlers. For groups the
// server-side room is joined, and joined again after every reconnect.
func (r *MessageRouter) Subscribe(conv Conversation) {
	r.subscribe(conv, nil)
}

// subscribe binds conv to the current connection. With expect set, it gives
// up when another Subscribe or Unsubscribe ran since the caller looked.
func (r *MessageRouter) subscribe(conv Conversation, expect *uint64) {
	var conn Conn
	if r.conns != nil {
		conn = r.conns.Conn()
	}

	r.mu.Lock()
	if expect != nil && *expect != r.gen {
		r.mu.Unlock()
		return
	}
	r.gen++
	r.detachLocked()
	r.active = &conv
	leave := ""
	if r.joined != "" && (conv.Mode != proto.ChatGroup || r.joined != conv.TargetID()) {
		leave = r.joined
	}
	r.joined = ""
	if conn == nil {
		r.mu.Unlock()
		r.signal(nil, proto.EventLeaveGroup, leave)
		return
	}

	r.handlers = append(r.handlers, conn.On(proto.EventNewMessage, r.handleInbound))
	if conv.Mode == proto.ChatGroup {
		r.joined = conv.TargetID()
		groupID := r.joined
		r.handlers = append(r.handlers, conn.On(proto.EventConnect, func(json.RawMessage) {
			r.signal(conn, proto.EventJoinGroup, groupID)
		}))
	}
	join := r.joined
	r.mu.Unlock()

	r.signal(conn, proto.EventLeaveGroup, leave)
	r.signal(conn, proto.EventJoinGroup, join)
}

// Unsubscribe removes the inbound handler and leaves the joined group, if
// any. Safe to call when nothing is registered.
func (r *MessageRouter) Unsubscribe() {
	r.mu.Lock()
	r.gen++
	r.detachLocked()
	r.active = nil
	leave := r.joined
	r.joined = ""
	r.mu.Unlock()

	var conn Conn
	if r.conns != nil {
		conn = r.conns.Conn()
	}
	r.signal(conn, proto.EventLeaveGroup, leave)
}

// Rebind re-registers the active subscription on the current connection.
// The session calls it when it installs a fresh connection. A selection made
// while Rebind runs takes precedence.
func (r *MessageRouter) Rebind() {
	r.mu.Lock()
	active, gen := r.active, r.gen
	r.mu.Unlock()
	if active != nil {
		r.subscribe(*active, &gen)
	}
}

// Subscribed reports the conversation inbound messages are filtered against.
func (r *MessageRouter) Subscribed() (Conversation, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active == nil {
		return Conversation{}, false
	}
	return *r.active, true
}

// Joined returns the group room currently joined, or "".
func (r *MessageRouter) Joined() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.joined
}

// Messages returns a copy of the log in arrival order.
func (r *MessageRouter) Messages() []proto.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.messages)
}

// OnMessages is called with the whole log after every change.
func (r *MessageRouter) OnMessages(fn func([]proto.Message)) (unsubscribe func()) {
	return r.changes.Subscribe(fn)
}

// SendMessage posts req to the active conversation and appends the server's
// copy right away, without waiting for a real-time echo.
func (r *MessageRouter) SendMessage(ctx context.Context, req proto.SendMessageRequest) (proto.Message, error) {
	r.mu.Lock()
	active := r.active
	r.mu.Unlock()

	if active == nil {
		r.notify.Error(msgNoChatSelected)
		return proto.Message{}, ErrNoConversation
	}
	if strings.TrimSpace(req.Text) == "" && req.Image == "" {
		return proto.Message{}, ErrEmptyMessage
	}

	msg, err := r.chat.SendMessage(ctx, active.TargetID(), active.Mode, req)
	if err != nil {
		r.log.Warn().Err(err).Str("chat_id", active.TargetID()).Msg("send message failed")
		r.notify.Error(api.MessageOf(err, msgSendFailed))
		return proto.Message{}, &NetworkError{Op: "send message", Err: err}
	}

	r.mu.Lock()
	r.appendLocked(msg)
	snapshot := slices.Clone(r.messages)
	r.mu.Unlock()

	r.changes.Emit(snapshot)
	return msg, nil
}

// Accepts reports whether msg belongs to conv.
func Accepts(conv Conversation, msg proto.Message) bool {
	id := conv.TargetID()
	if id == "" {
		return false
	}
	switch conv.Mode {
	case proto.ChatDirect:
		return msg.SenderID.String() == id || msg.ReceiverID.String() == id
	case proto.ChatGroup:
		return msg.GroupID.String() == id
	default:
		return false
	}
}

func (r *MessageRouter) handleInbound(raw json.RawMessage) {
	var msg proto.Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		r.log.Warn().Err(err).Msg("malformed newMessage payload")
		return
	}

	r.mu.Lock()
	if r.active == nil || !Accepts(*r.active, msg) {
		r.mu.Unlock()
		return
	}
	appended := r.appendLocked(msg)
	snapshot := slices.Clone(r.messages)
	r.mu.Unlock()

	if appended {
		r.changes.Emit(snapshot)
	}
}

func (r *MessageRouter) setHistory(msgs []proto.Message) {
	r.mu.Lock()
	r.messages = r.messages[:0:0]
	clear(r.seen)
	for _, m := range msgs {
		r.appendLocked(m)
	}
	snapshot := slices.Clone(r.messages)
	r.mu.Unlock()

	r.changes.Emit(snapshot)
}

func (r *MessageRouter) reset() {
	r.setHistory(nil)
}

func (r *MessageRouter) appendLocked(msg proto.Message) bool {
	if r.dedupe && msg.ID != "" {
		if _, dup := r.seen[msg.ID]; dup {
			return false
		}
		r.seen[msg.ID] = struct{}{}
	}
	r.messages = append(r.messages, msg)
	return true
}

func (r *MessageRouter) detachLocked() {
	for _, off := range r.handlers {
		off()
	}
	r.handlers = nil
}

// signal emits a room event, logging rather than failing: the connection is
// best effort and a join is repeated on the next connect anyway.
func (r *MessageRouter) signal(conn Conn, name, groupID string) {
	if conn == nil || groupID == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), signalTimeout)
	defer cancel()
	if err := conn.Emit(ctx, name, groupID); err != nil {
		r.log.Debug().Err(err).Str("event", name).Str("group_id", groupID).Msg("room signal not sent")
	}
}
