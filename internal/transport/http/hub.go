package http

import (
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/chatsync/internal/proto"
)

// socketClient is one websocket connection as seen by the hub.
type socketClient struct {
	id     string
	userID string
	events chan proto.Envelope
	rooms  map[string]struct{}
}

func newSocketClient(id, userID string) *socketClient {
	return &socketClient{
		id:     id,
		userID: userID,
		events: make(chan proto.Envelope, 32),
		rooms:  make(map[string]struct{}),
	}
}

func (c *socketClient) deliver(env proto.Envelope) bool {
	select {
	case c.events <- env:
		return true
	default:
		// Drop if slow consumer.
		return false
	}
}

// room groups clients joined to the same group id.
type room struct {
	clients map[*socketClient]struct{}
}

func (r *room) broadcast(env proto.Envelope) {
	for client := range r.clients {
		client.deliver(env)
	}
}

// Hub tracks connected users and group rooms. The latest connection of a
// user is the one direct messages are delivered to.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*socketClient
	rooms   map[string]*room
	log     *zerolog.Logger
}

// NewHub creates an empty hub.
func NewHub(logger *zerolog.Logger) *Hub {
	return &Hub{
		clients: make(map[string]*socketClient),
		rooms:   make(map[string]*room),
		log:     logger,
	}
}

// register makes c the current connection of its user and announces presence.
func (h *Hub) register(c *socketClient) {
	h.mu.Lock()
	if prev, ok := h.clients[c.userID]; ok && prev != c {
		h.leaveAllLocked(prev)
	}
	h.clients[c.userID] = c
	h.broadcastPresenceLocked()
	h.mu.Unlock()

	h.log.Debug().Str("user_id", c.userID).Str("conn_id", c.id).Msg("socket registered")
}

// unregister drops c. A newer connection of the same user stays registered.
func (h *Hub) unregister(c *socketClient) {
	h.mu.Lock()
	h.leaveAllLocked(c)
	if cur, ok := h.clients[c.userID]; ok && cur == c {
		delete(h.clients, c.userID)
	}
	h.broadcastPresenceLocked()
	h.mu.Unlock()

	h.log.Debug().Str("user_id", c.userID).Str("conn_id", c.id).Msg("socket unregistered")
}

func (h *Hub) join(c *socketClient, groupID string) {
	if groupID == "" {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	r, ok := h.rooms[groupID]
	if !ok {
		r = &room{clients: make(map[*socketClient]struct{})}
		h.rooms[groupID] = r
	}
	r.clients[c] = struct{}{}
	c.rooms[groupID] = struct{}{}
}

func (h *Hub) leave(c *socketClient, groupID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.leaveLocked(c, groupID)
}

func (h *Hub) leaveLocked(c *socketClient, groupID string) {
	delete(c.rooms, groupID)
	r, ok := h.rooms[groupID]
	if !ok {
		return
	}
	delete(r.clients, c)
	if len(r.clients) == 0 {
		delete(h.rooms, groupID)
	}
}

func (h *Hub) leaveAllLocked(c *socketClient) {
	for groupID := range c.rooms {
		h.leaveLocked(c, groupID)
	}
}

// SendToUser pushes a newMessage to userID when they are connected.
func (h *Hub) SendToUser(userID string, msg proto.Message) {
	env, err := proto.NewEnvelope(proto.EventNewMessage, msg)
	if err != nil {
		h.log.Error().Err(err).Msg("encode newMessage")
		return
	}

	h.mu.RLock()
	c, ok := h.clients[userID]
	h.mu.RUnlock()
	if !ok {
		return
	}
	if !c.deliver(env) {
		h.log.Warn().Str("user_id", userID).Msg("dropped newMessage for slow consumer")
	}
}

// SendToGroup pushes a newMessage to every connection joined to groupID.
func (h *Hub) SendToGroup(groupID string, msg proto.Message) {
	env, err := proto.NewEnvelope(proto.EventNewMessage, msg)
	if err != nil {
		h.log.Error().Err(err).Msg("encode newMessage")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	if r, ok := h.rooms[groupID]; ok {
		r.broadcast(env)
	}
}

// Online returns the connected user ids, sorted.
func (h *Hub) Online() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.onlineLocked()
}

// RoomSize returns how many connections are joined to groupID.
func (h *Hub) RoomSize(groupID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if r, ok := h.rooms[groupID]; ok {
		return len(r.clients)
	}
	return 0
}

func (h *Hub) onlineLocked() []string {
	ids := make([]string, 0, len(h.clients))
	for id := range h.clients {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// broadcastPresenceLocked sends the full online snapshot to every user.
// Snapshots go out under the write lock so clients see them in order.
func (h *Hub) broadcastPresenceLocked() {
	env, err := proto.NewEnvelope(proto.EventOnlineUsers, h.onlineLocked())
	if err != nil {
		h.log.Error().Err(err).Msg("encode getOnlineUsers")
		return
	}
	for _, c := range h.clients {
		c.deliver(env)
	}
}
