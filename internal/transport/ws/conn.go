// Package ws implements the real-time channel: a websocket keyed by user id
// that reconnects on its own a bounded number of times.
package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/chatsync/internal/event"
	"github.com/vovakirdan/chatsync/internal/proto"
)

// ErrNotConnected is returned by Emit while the socket is not open.
var ErrNotConnected = errors.New("socket not connected")

// State of the connection.
type State int32

const (
	StateIdle State = iota
	StateConnecting
	StateOpen
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Options tunes reconnection and dialing.
type Options struct {
	// Attempts is the number of reconnection tries after a failed dial or a drop.
	Attempts int
	// Delay is the fixed wait before each reconnection try.
	Delay       time.Duration
	DialTimeout time.Duration
	// HTTPClient supplies cookies for the handshake. Its Timeout is ignored.
	HTTPClient *http.Client
	Logger     *zerolog.Logger
}

// Conn is a single real-time connection. Handlers run on the connection's
// reader goroutine, one event at a time.
type Conn struct {
	id   string
	url  string
	opts Options
	log  *zerolog.Logger

	state   atomic.Int32
	closing atomic.Bool

	mu       sync.Mutex
	ws       *websocket.Conn
	handlers map[string]*event.Emitter[json.RawMessage]
	started  bool

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// Endpoint derives the websocket URL for base (http, https, ws or wss) and user.
func Endpoint(base, userID string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(base))
	if err != nil {
		return "", fmt.Errorf("parse socket url: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported socket url scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("socket url %q has no host", base)
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/ws"
	q := u.Query()
	q.Set("userId", userID)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// New prepares a connection for userID without dialing. Register handlers
// with On, then call Start.
func New(baseURL, userID string, opts Options) (*Conn, error) {
	endpoint, err := Endpoint(baseURL, userID)
	if err != nil {
		return nil, err
	}
	if opts.Attempts < 0 {
		opts.Attempts = 0
	}
	if opts.DialTimeout <= 0 {
		opts.DialTimeout = 10 * time.Second
	}
	if opts.HTTPClient != nil && opts.HTTPClient.Timeout > 0 {
		// the websocket dialer refuses clients with a Timeout
		opts.HTTPClient = &http.Client{Jar: opts.HTTPClient.Jar, Transport: opts.HTTPClient.Transport}
	}

	id := uuid.NewString()
	logger := opts.Logger
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	l := logger.With().Str("conn_id", id).Str("user_id", userID).Logger()

	ctx, cancel := context.WithCancel(context.Background())
	return &Conn{
		id:       id,
		url:      endpoint,
		opts:     opts,
		log:      &l,
		handlers: make(map[string]*event.Emitter[json.RawMessage]),
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}, nil
}

// ID identifies this connection in logs.
func (c *Conn) ID() string { return c.id }

// State reports the current state.
func (c *Conn) State() State { return State(c.state.Load()) }

// Connected reports whether the socket is open right now.
func (c *Conn) Connected() bool { return c.State() == StateOpen }

// Closed reports whether the connection has stopped for good, either through
// Close or because reconnection attempts ran out.
func (c *Conn) Closed() bool { return c.State() == StateClosed }

// On registers h for the named event and returns its unsubscribe function.
func (c *Conn) On(name string, h func(json.RawMessage)) (unsubscribe func()) {
	c.mu.Lock()
	em, ok := c.handlers[name]
	if !ok {
		em = &event.Emitter[json.RawMessage]{}
		c.handlers[name] = em
	}
	c.mu.Unlock()
	return em.Subscribe(h)
}

// Start launches the connect/reconnect loop. Calling it twice is a no-op.
func (c *Conn) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started || c.ctx.Err() != nil {
		return
	}
	c.started = true
	c.state.Store(int32(StateConnecting))
	go c.run()
}

// Emit sends an event to the server.
func (c *Conn) Emit(ctx context.Context, name string, v any) error {
	c.mu.Lock()
	ws := c.ws
	c.mu.Unlock()
	if ws == nil || !c.Connected() {
		return ErrNotConnected
	}
	env, err := proto.NewEnvelope(name, v)
	if err != nil {
		return err
	}
	if err := wsjson.Write(ctx, ws, env); err != nil {
		return fmt.Errorf("emit %s: %w", name, err)
	}
	return nil
}

// Close stops reconnection and closes the socket. Safe to call repeatedly.
func (c *Conn) Close() error {
	c.closing.Store(true)

	c.mu.Lock()
	started := c.started
	ws := c.ws
	c.mu.Unlock()

	if ws != nil {
		_ = ws.Close(websocket.StatusNormalClosure, "client disconnect")
	}
	c.cancel()
	if started {
		<-c.done
	}
	c.state.Store(int32(StateClosed))
	return nil
}

func (c *Conn) run() {
	defer close(c.done)
	defer c.state.Store(int32(StateClosed))

	retries := 0
	for {
		c.state.Store(int32(StateConnecting))

		dialCtx, cancel := context.WithTimeout(c.ctx, c.opts.DialTimeout)
		ws, _, err := websocket.Dial(dialCtx, c.url, &websocket.DialOptions{HTTPClient: c.opts.HTTPClient})
		cancel()

		switch {
		case err == nil:
			retries = 0
			c.attach(ws)
			c.log.Info().Msg("socket connected")
			c.dispatch(proto.EventConnect, nil)

			readErr := c.readLoop(ws)
			c.detach()
			reason := c.disconnectReason(readErr)
			c.log.Info().Str("reason", reason).Msg("socket disconnected")
			c.dispatch(proto.EventDisconnect, proto.DisconnectData{Reason: reason})
		case !c.stopping():
			c.log.Error().Err(err).Msg("socket connection error")
			c.dispatch(proto.EventConnectError, proto.DisconnectData{Reason: err.Error()})
		}

		if c.stopping() {
			return
		}
		if retries >= c.opts.Attempts {
			c.log.Warn().Int("attempts", retries).Msg("reconnection attempts exhausted")
			return
		}
		retries++
		c.log.Debug().Int("attempt", retries).Dur("delay", c.opts.Delay).Msg("reconnecting")

		select {
		case <-c.ctx.Done():
			return
		case <-time.After(c.opts.Delay):
		}
	}
}

func (c *Conn) readLoop(ws *websocket.Conn) error {
	for {
		_, raw, err := ws.Read(c.ctx)
		if err != nil {
			return err
		}
		var env proto.Envelope
		if err := json.Unmarshal(raw, &env); err != nil || env.Event == "" {
			c.log.Warn().Err(err).Msg("dropping malformed frame")
			continue
		}
		c.dispatch(env.Event, env.Data)
	}
}

func (c *Conn) attach(ws *websocket.Conn) {
	c.mu.Lock()
	c.ws = ws
	c.mu.Unlock()
	c.state.Store(int32(StateOpen))
}

func (c *Conn) detach() {
	c.mu.Lock()
	ws := c.ws
	c.ws = nil
	c.mu.Unlock()
	if !c.stopping() {
		c.state.Store(int32(StateConnecting))
	}
	if ws != nil {
		_ = ws.CloseNow()
	}
}

func (c *Conn) dispatch(name string, payload any) {
	c.mu.Lock()
	em := c.handlers[name]
	c.mu.Unlock()
	if em == nil {
		return
	}

	var raw json.RawMessage
	switch p := payload.(type) {
	case nil:
	case json.RawMessage:
		raw = p
	default:
		b, err := json.Marshal(p)
		if err != nil {
			c.log.Warn().Err(err).Str("event", name).Msg("marshal local event")
			return
		}
		raw = b
	}
	em.Emit(raw)
}

func (c *Conn) stopping() bool {
	return c.closing.Load() || c.ctx.Err() != nil
}

func (c *Conn) disconnectReason(err error) string {
	if c.stopping() {
		return "client disconnect"
	}
	switch websocket.CloseStatus(err) {
	case websocket.StatusNormalClosure, websocket.StatusGoingAway:
		return "server disconnect"
	}
	if errors.Is(err, io.EOF) {
		return "transport close"
	}
	if err != nil {
		return "transport error"
	}
	return "unknown"
}
