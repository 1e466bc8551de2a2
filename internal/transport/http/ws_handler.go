package http

import (
	"context"
	"errors"
	"io"
	stdhttp "net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/chatsync/internal/proto"
)

// WSHandler upgrades /ws?userId= requests and bridges them to the hub.
type WSHandler struct {
	hub       *Hub
	rateLimit int
	log       *zerolog.Logger
}

// NewWSHandler builds a new WebSocket handler. rateLimit caps inbound frames
// per connection per minute; 0 disables it.
func NewWSHandler(hub *Hub, rateLimit int, logger *zerolog.Logger) *WSHandler {
	return &WSHandler{hub: hub, rateLimit: rateLimit, log: logger}
}

func (h *WSHandler) ServeHTTP(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		stdhttp.Error(w, "missing userId", stdhttp.StatusBadRequest)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("ws accept error")
		return
	}
	defer conn.CloseNow()

	client := newSocketClient(uuid.NewString(), userID)
	h.hub.register(client)
	defer h.hub.unregister(client)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	limiter := newRateLimiter(h.rateLimit, time.Minute)
	limiter.startReset(ctx.Done())

	errCh := make(chan error, 2)
	go func() {
		errCh <- h.readLoop(ctx, conn, client, limiter)
	}()
	go func() {
		errCh <- h.writeLoop(ctx, conn, client)
	}()

	err = <-errCh
	cancel() // stop the other goroutine
	<-errCh

	status := websocket.StatusNormalClosure
	reason := "closing"
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, io.EOF) {
		if s := websocket.CloseStatus(err); s == websocket.StatusNormalClosure || s == websocket.StatusGoingAway {
			err = nil
		}
		if err != nil {
			status = websocket.StatusInternalError
			reason = "internal error"
			h.log.Warn().Err(err).Str("user_id", userID).Msg("ws connection closed with error")
		}
	}

	_ = conn.Close(status, reason)
}

func (h *WSHandler) readLoop(ctx context.Context, conn *websocket.Conn, client *socketClient, limiter *rateLimiter) error {
	for {
		var env proto.Envelope
		if err := wsjson.Read(ctx, conn, &env); err != nil {
			return err
		}
		if !limiter.allow() {
			h.log.Warn().Str("user_id", client.userID).Str("event", env.Event).Msg("ws rate limit exceeded, frame dropped")
			continue
		}

		switch env.Event {
		case proto.EventJoinGroup, proto.EventLeaveGroup:
			var groupID proto.Ref
			if err := env.Decode(&groupID); err != nil || groupID == "" {
				h.log.Debug().Err(err).Str("event", env.Event).Msg("ws frame without group id")
				continue
			}
			if env.Event == proto.EventJoinGroup {
				h.hub.join(client, groupID.String())
			} else {
				h.hub.leave(client, groupID.String())
			}
			h.log.Debug().Str("user_id", client.userID).Str("event", env.Event).Str("group_id", groupID.String()).Msg("ws room change")
		default:
			h.log.Debug().Str("user_id", client.userID).Str("event", env.Event).Msg("ws event ignored")
		}
	}
}

func (h *WSHandler) writeLoop(ctx context.Context, conn *websocket.Conn, client *socketClient) error {
	for {
		select {
		case env := <-client.events:
			if err := wsjson.Write(ctx, conn, env); err != nil {
				h.log.Error().Err(err).Str("user_id", client.userID).Msg("write ws event")
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
