package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/chatsync/internal/proto"
	"github.com/vovakirdan/chatsync/internal/store"
)

// MessageHandlers serves the /api/message endpoints.
type MessageHandlers struct {
	store store.Store
	hub   *Hub
	log   *zerolog.Logger
}

// NewMessageHandlers creates a new message handlers instance.
func NewMessageHandlers(st store.Store, hub *Hub, logger *zerolog.Logger) *MessageHandlers {
	return &MessageHandlers{
		store: st,
		hub:   hub,
		log:   logger,
	}
}

// Users lists everyone except the caller.
// GET /api/message/users
func (h *MessageHandlers) Users(c *gin.Context) {
	users, err := h.store.ListUsersExcept(c.Request.Context(), currentUser(c))
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list users")
		fail(c, http.StatusInternalServerError, msgInternal)
		return
	}
	respond(c, http.StatusOK, usersToProto(users), "")
}

// Messages returns direct or group history, oldest first.
// GET /api/message/:id?type=direct|group
func (h *MessageHandlers) Messages(c *gin.Context) {
	ctx := c.Request.Context()
	me, chatID := currentUser(c), c.Param("id")

	var (
		msgs []*store.Message
		err  error
	)
	switch chatKind(c) {
	case proto.ChatGroup:
		if _, ok := participantGroup(c, h.store, h.log, chatID, me); !ok {
			return
		}
		msgs, err = h.store.ListGroup(ctx, chatID)
	default:
		msgs, err = h.store.ListDirect(ctx, me, chatID)
	}
	if err != nil {
		h.log.Error().Err(err).Str("chat_id", chatID).Msg("failed to list messages")
		fail(c, http.StatusInternalServerError, msgInternal)
		return
	}
	respond(c, http.StatusOK, messagesToProto(msgs), "")
}

// Send stores a message and pushes it over the real-time channel: to the
// receiver for direct chats, to the group room otherwise.
// POST /api/message/send/:id?type=direct|group
func (h *MessageHandlers) Send(c *gin.Context) {
	ctx := c.Request.Context()
	me, chatID := currentUser(c), c.Param("id")

	var req proto.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Text) == "" && req.Image == "" {
		fail(c, http.StatusBadRequest, "Message text or image is required")
		return
	}

	msg := &store.Message{SenderID: me, Text: req.Text, Image: req.Image}
	kind := chatKind(c)
	if kind == proto.ChatGroup {
		if _, ok := participantGroup(c, h.store, h.log, chatID, me); !ok {
			return
		}
		msg.GroupID = chatID
	} else {
		if _, err := h.store.GetUserByID(ctx, chatID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				fail(c, http.StatusNotFound, "Receiver not found")
				return
			}
			h.log.Error().Err(err).Msg("failed to load receiver")
			fail(c, http.StatusInternalServerError, msgInternal)
			return
		}
		msg.ReceiverID = chatID
	}

	if err := h.store.SaveMessage(ctx, msg); err != nil {
		h.log.Error().Err(err).Str("chat_id", chatID).Msg("failed to save message")
		fail(c, http.StatusInternalServerError, msgInternal)
		return
	}

	out := messageToProto(msg)
	if kind == proto.ChatGroup {
		h.hub.SendToGroup(chatID, out)
	} else {
		h.hub.SendToUser(chatID, out)
	}
	respond(c, http.StatusCreated, out, "")
}

func chatKind(c *gin.Context) proto.ChatKind {
	if proto.ChatKind(c.Query("type")) == proto.ChatGroup {
		return proto.ChatGroup
	}
	return proto.ChatDirect
}
