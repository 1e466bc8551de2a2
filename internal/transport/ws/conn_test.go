package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/chatsync/internal/proto"
)

// echoServer greets with a presence list and echoes every frame back.
func echoServer(t *testing.T) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var accepted atomic.Int32

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ws" || r.URL.Query().Get("userId") == "" {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.CloseNow()
		accepted.Add(1)

		ctx := r.Context()
		hello, _ := proto.NewEnvelope(proto.EventOnlineUsers, []string{r.URL.Query().Get("userId")})
		if err := wsjson.Write(ctx, conn, hello); err != nil {
			return
		}
		for {
			var env proto.Envelope
			if err := wsjson.Read(ctx, conn, &env); err != nil {
				return
			}
			if err := wsjson.Write(ctx, conn, env); err != nil {
				return
			}
		}
	}))
	t.Cleanup(ts.Close)
	return ts, &accepted
}

func waitFor(t *testing.T, ch <-chan json.RawMessage) json.RawMessage {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for event")
		return nil
	}
}

func TestEndpoint(t *testing.T) {
	got, err := Endpoint("https://chat.example/", "u 1")
	require.NoError(t, err)
	require.Equal(t, "wss://chat.example/ws?userId=u+1", got)

	got, err = Endpoint("http://localhost:5001", "u1")
	require.NoError(t, err)
	require.Equal(t, "ws://localhost:5001/ws?userId=u1", got)

	_, err = Endpoint("ftp://x", "u1")
	require.Error(t, err)
	_, err = Endpoint("localhost:5001", "u1")
	require.Error(t, err)
}

func TestConnDispatchesAndEmits(t *testing.T) {
	ts, _ := echoServer(t)

	conn, err := New(ts.URL, "alice", Options{Attempts: 0})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	connected := make(chan json.RawMessage, 1)
	presence := make(chan json.RawMessage, 1)
	joined := make(chan json.RawMessage, 1)
	conn.On(proto.EventConnect, func(raw json.RawMessage) { connected <- raw })
	conn.On(proto.EventOnlineUsers, func(raw json.RawMessage) { presence <- raw })
	conn.On(proto.EventJoinGroup, func(raw json.RawMessage) { joined <- raw })

	require.ErrorIs(t, conn.Emit(context.Background(), proto.EventJoinGroup, "g1"), ErrNotConnected)

	conn.Start()
	conn.Start()
	waitFor(t, connected)
	require.True(t, conn.Connected())

	var ids []string
	require.NoError(t, json.Unmarshal(waitFor(t, presence), &ids))
	require.Equal(t, []string{"alice"}, ids)

	require.NoError(t, conn.Emit(context.Background(), proto.EventJoinGroup, "g1"))
	var group string
	require.NoError(t, json.Unmarshal(waitFor(t, joined), &group))
	require.Equal(t, "g1", group)

	require.NoError(t, conn.Close())
	require.True(t, conn.Closed())
	require.NoError(t, conn.Close())
}

func TestConnUnsubscribeStopsDelivery(t *testing.T) {
	ts, _ := echoServer(t)

	conn, err := New(ts.URL, "bob", Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	var calls atomic.Int32
	off := conn.On(proto.EventNewMessage, func(json.RawMessage) { calls.Add(1) })
	echoed := make(chan json.RawMessage, 4)
	conn.On(proto.EventNewMessage, func(raw json.RawMessage) { echoed <- raw })
	connected := make(chan json.RawMessage, 1)
	conn.On(proto.EventConnect, func(raw json.RawMessage) { connected <- raw })

	conn.Start()
	waitFor(t, connected)

	require.NoError(t, conn.Emit(context.Background(), proto.EventNewMessage, proto.Message{ID: "m1"}))
	waitFor(t, echoed)
	off()
	require.NoError(t, conn.Emit(context.Background(), proto.EventNewMessage, proto.Message{ID: "m2"}))
	waitFor(t, echoed)

	require.Equal(t, int32(1), calls.Load())
}

func TestConnReconnectionIsBounded(t *testing.T) {
	var hits atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.Error(w, "nope", http.StatusServiceUnavailable)
	}))
	t.Cleanup(ts.Close)

	conn, err := New(ts.URL, "carol", Options{Attempts: 2, Delay: 10 * time.Millisecond})
	require.NoError(t, err)

	var connectErrors atomic.Int32
	conn.On(proto.EventConnectError, func(json.RawMessage) { connectErrors.Add(1) })
	conn.Start()

	require.Eventually(t, conn.Closed, 3*time.Second, 10*time.Millisecond)
	require.Equal(t, int32(3), hits.Load(), "one dial plus two reconnection tries")
	require.Equal(t, int32(3), connectErrors.Load())
}

func TestConnReconnectsAfterServerDrop(t *testing.T) {
	var accepted atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		if accepted.Add(1) == 1 {
			conn.Close(websocket.StatusGoingAway, "restart")
			return
		}
		defer conn.CloseNow()
		_, _, _ = conn.Read(r.Context())
	}))
	t.Cleanup(ts.Close)

	conn, err := New(ts.URL, "dave", Options{Attempts: 3, Delay: 10 * time.Millisecond})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	var connects, disconnects atomic.Int32
	conn.On(proto.EventConnect, func(json.RawMessage) { connects.Add(1) })
	conn.On(proto.EventDisconnect, func(json.RawMessage) { disconnects.Add(1) })
	conn.Start()

	require.Eventually(t, func() bool { return connects.Load() == 2 }, 3*time.Second, 10*time.Millisecond)
	require.Equal(t, int32(1), disconnects.Load())
	require.True(t, conn.Connected())
}
