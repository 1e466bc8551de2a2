package core

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/chatsync/internal/api"
	"github.com/vovakirdan/chatsync/internal/event"
	"github.com/vovakirdan/chatsync/internal/proto"
)

// Conversation is a selected chat: a direct peer or a group.
type Conversation struct {
	Mode  proto.ChatKind
	User  proto.User
	Group proto.Group
}

// Direct selects a one-to-one conversation with u.
func Direct(u proto.User) Conversation {
	return Conversation{Mode: proto.ChatDirect, User: u}
}

// InGroup selects the group conversation for g.
func InGroup(g proto.Group) Conversation {
	return Conversation{Mode: proto.ChatGroup, Group: g}
}

// TargetID is the peer id in direct mode and the group id in group mode.
func (c Conversation) TargetID() string {
	switch c.Mode {
	case proto.ChatDirect:
		return c.User.ID
	case proto.ChatGroup:
		return c.Group.ID
	default:
		return ""
	}
}

// Title is a display name for the target.
func (c Conversation) Title() string {
	if c.Mode == proto.ChatGroup {
		return c.Group.Name
	}
	return c.User.FullName
}

// IsZero reports whether no conversation is set.
func (c Conversation) IsZero() bool {
	return c.Mode == ""
}

// ConversationContext holds the single active conversation. Selecting swaps
// the router subscription and fetches history; in-flight fetches for earlier
// selections are not cancelled.
type ConversationContext struct {
	router       *MessageRouter
	chat         ChatAPI
	notify       Notifier
	log          zerolog.Logger
	discardStale bool

	// serializes subscription swaps, never held across a fetch
	selectMu sync.Mutex

	mu       sync.Mutex
	active   *Conversation
	gen      uint64
	inflight int

	changes event.Emitter[Conversation]
}

// NewConversationContext builds the context. With discardStale set, history
// that resolves after a newer selection is dropped; otherwise the
// last-resolving fetch wins.
func NewConversationContext(router *MessageRouter, chat ChatAPI, notify Notifier, discardStale bool, logger *zerolog.Logger) *ConversationContext {
	return &ConversationContext{
		router:       router,
		chat:         chat,
		notify:       notify,
		log:          componentLogger(logger, "conversation"),
		discardStale: discardStale,
	}
}

// Select makes conv the active conversation, even when it is the one already
// active, then loads its history.
func (c *ConversationContext) Select(ctx context.Context, conv Conversation) error {
	if !conv.Mode.Valid() || conv.TargetID() == "" {
		return fmt.Errorf("select conversation: invalid target %q (%s)", conv.TargetID(), conv.Mode)
	}

	c.selectMu.Lock()
	c.mu.Lock()
	c.active = &conv
	c.gen++
	gen := c.gen
	c.mu.Unlock()

	c.router.Unsubscribe()
	c.router.Subscribe(conv)
	c.selectMu.Unlock()

	c.log.Debug().Str("mode", string(conv.Mode)).Str("target_id", conv.TargetID()).Msg("conversation selected")
	c.changes.Emit(conv)

	return c.fetch(ctx, conv, gen)
}

// Reload fetches history for the active conversation again.
func (c *ConversationContext) Reload(ctx context.Context) error {
	c.mu.Lock()
	if c.active == nil {
		c.mu.Unlock()
		return ErrNoConversation
	}
	conv, gen := *c.active, c.gen
	c.mu.Unlock()
	return c.fetch(ctx, conv, gen)
}

// Clear drops the active conversation and its subscription.
func (c *ConversationContext) Clear() {
	c.selectMu.Lock()
	c.mu.Lock()
	c.active = nil
	c.gen++
	c.mu.Unlock()

	c.router.Unsubscribe()
	c.router.reset()
	c.selectMu.Unlock()

	c.changes.Emit(Conversation{})
}

// Active returns the active conversation.
func (c *ConversationContext) Active() (Conversation, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active == nil {
		return Conversation{}, false
	}
	return *c.active, true
}

// RefreshTarget replaces the active group's record with g when ids match.
// Mode and subscription are left alone.
func (c *ConversationContext) RefreshTarget(g proto.Group) {
	c.mu.Lock()
	if c.active == nil || c.active.Mode != proto.ChatGroup || c.active.Group.ID != g.ID {
		c.mu.Unlock()
		return
	}
	c.active.Group = g
	conv := *c.active
	c.mu.Unlock()

	c.changes.Emit(conv)
}

// IsLoading reports whether any history fetch is in flight.
func (c *ConversationContext) IsLoading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inflight > 0
}

// OnChange is called after every selection, refresh and clear. A cleared
// context is reported as the zero Conversation.
func (c *ConversationContext) OnChange(fn func(Conversation)) (unsubscribe func()) {
	return c.changes.Subscribe(fn)
}

func (c *ConversationContext) fetch(ctx context.Context, conv Conversation, gen uint64) error {
	c.mu.Lock()
	c.inflight++
	c.mu.Unlock()

	msgs, err := c.chat.Messages(ctx, conv.TargetID(), conv.Mode)

	c.mu.Lock()
	c.inflight--
	stale := c.gen != gen
	c.mu.Unlock()

	if err != nil {
		c.log.Warn().Err(err).Str("target_id", conv.TargetID()).Msg("history fetch failed")
		c.notify.Error(api.MessageOf(err, msgFetchFailed))
		return &NetworkError{Op: "fetch messages", Err: err}
	}
	if stale && c.discardStale {
		c.log.Debug().Str("target_id", conv.TargetID()).Msg("discarding superseded history")
		return nil
	}
	c.router.setHistory(msgs)
	return nil
}
