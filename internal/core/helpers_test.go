package core

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/chatsync/internal/event"
	"github.com/vovakirdan/chatsync/internal/proto"
)

type emitted struct {
	Event   string
	GroupID string
}

// fakeConn lets tests deliver events by hand and records what was emitted.
type fakeConn struct {
	mu       sync.Mutex
	handlers map[string]*event.Emitter[json.RawMessage]
	emits    []emitted
	started  int
	closed   bool
}

func newFakeConn() *fakeConn {
	return &fakeConn{handlers: make(map[string]*event.Emitter[json.RawMessage])}
}

func (c *fakeConn) On(name string, h func(json.RawMessage)) func() {
	c.mu.Lock()
	em, ok := c.handlers[name]
	if !ok {
		em = &event.Emitter[json.RawMessage]{}
		c.handlers[name] = em
	}
	c.mu.Unlock()
	return em.Subscribe(h)
}

func (c *fakeConn) Emit(_ context.Context, name string, v any) error {
	id, _ := v.(string)
	c.mu.Lock()
	c.emits = append(c.emits, emitted{Event: name, GroupID: id})
	c.mu.Unlock()
	return nil
}

func (c *fakeConn) Start() {
	c.mu.Lock()
	c.started++
	c.mu.Unlock()
}

func (c *fakeConn) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.started > 0 && !c.closed
}

func (c *fakeConn) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	return nil
}

func (c *fakeConn) deliver(t *testing.T, name string, v any) {
	t.Helper()
	var raw json.RawMessage
	if v != nil {
		b, err := json.Marshal(v)
		require.NoError(t, err)
		raw = b
	}
	c.mu.Lock()
	em := c.handlers[name]
	c.mu.Unlock()
	if em != nil {
		em.Emit(raw)
	}
}

func (c *fakeConn) handlerCount(name string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if em := c.handlers[name]; em != nil {
		return em.Len()
	}
	return 0
}

func (c *fakeConn) sent() []emitted {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]emitted, len(c.emits))
	copy(out, c.emits)
	return out
}

type staticConn struct{ conn Conn }

func (s staticConn) Conn() Conn { return s.conn }

// gatedConn blocks the first Conn call after hold until release is closed.
type gatedConn struct {
	conn    Conn
	armed   atomic.Bool
	entered chan struct{}
	release chan struct{}
}

func newGatedConn(conn Conn) *gatedConn {
	return &gatedConn{conn: conn, entered: make(chan struct{}), release: make(chan struct{})}
}

func (g *gatedConn) hold() { g.armed.Store(true) }

func (g *gatedConn) Conn() Conn {
	if g.armed.CompareAndSwap(true, false) {
		close(g.entered)
		<-g.release
	}
	return g.conn
}

type staticIdentity struct{ user *proto.User }

func (s staticIdentity) User() (proto.User, bool) {
	if s.user == nil {
		return proto.User{}, false
	}
	return *s.user, true
}

type note struct {
	Kind string
	Text string
}

type recordingNotifier struct {
	mu    sync.Mutex
	notes []note
}

func (n *recordingNotifier) add(kind, msg string) {
	n.mu.Lock()
	n.notes = append(n.notes, note{Kind: kind, Text: msg})
	n.mu.Unlock()
}

func (n *recordingNotifier) Success(msg string) { n.add("success", msg) }
func (n *recordingNotifier) Error(msg string)   { n.add("error", msg) }
func (n *recordingNotifier) Info(msg string)    { n.add("info", msg) }

func (n *recordingNotifier) last() note {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.notes) == 0 {
		return note{}
	}
	return n.notes[len(n.notes)-1]
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.notes)
}

func directMsg(id, from, to string) proto.Message {
	return proto.Message{ID: id, SenderID: proto.Ref(from), ReceiverID: proto.Ref(to), Text: id}
}

func groupMsg(id, from, group string) proto.Message {
	return proto.Message{ID: id, SenderID: proto.Ref(from), GroupID: proto.Ref(group), Text: id}
}

func messageIDs(msgs []proto.Message) []string {
	out := make([]string, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, m.ID)
	}
	return out
}
