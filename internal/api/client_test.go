package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/chatsync/internal/proto"
)

func newTestClient(t *testing.T, h http.Handler) *Client {
	t.Helper()
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)

	c, err := New(ts.URL+"/api", 2*time.Second, nil)
	require.NoError(t, err)
	return c
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestNewRejectsRelativeURL(t *testing.T) {
	_, err := New("/api", time.Second, nil)
	require.Error(t, err)
}

func TestMessagesScopesByKind(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/message/{id}", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "g1", r.PathValue("id"))
		require.Equal(t, "group", r.URL.Query().Get("type"))
		writeJSON(w, http.StatusOK, proto.Response[[]proto.Message]{Data: []proto.Message{
			{ID: "m1", SenderID: "u1", GroupID: "g1", Text: "hello"},
		}})
	})
	c := newTestClient(t, mux)

	msgs, err := c.Messages(context.Background(), "g1", proto.ChatGroup)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	require.Equal(t, proto.Ref("g1"), msgs[0].GroupID)
}

func TestSendMessagePostsBody(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/message/send/{id}", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "direct", r.URL.Query().Get("type"))
		var body proto.SendMessageRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "yo", body.Text)
		writeJSON(w, http.StatusCreated, proto.Response[proto.Message]{Data: proto.Message{
			ID: "m9", SenderID: "me", ReceiverID: proto.Ref(r.PathValue("id")), Text: body.Text,
		}})
	})
	c := newTestClient(t, mux)

	msg, err := c.SendMessage(context.Background(), "u2", proto.ChatDirect, proto.SendMessageRequest{Text: "yo"})
	require.NoError(t, err)
	require.Equal(t, "m9", msg.ID)
	require.Equal(t, proto.Ref("u2"), msg.ReceiverID)
}

func TestRemoveMembersSendsDeleteBody(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("DELETE /api/group/{id}/members", func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		require.JSONEq(t, `{"memberIds":["u2","u3"]}`, string(raw))
		writeJSON(w, http.StatusOK, proto.Response[proto.Group]{Data: proto.Group{ID: r.PathValue("id")}})
	})
	c := newTestClient(t, mux)

	g, err := c.RemoveMembers(context.Background(), "g1", []string{"u2", "u3"})
	require.NoError(t, err)
	require.Equal(t, "g1", g.ID)
}

func TestErrorsCarryServerMessage(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, proto.Response[any]{Error: true, Message: "Invalid credentials"})
	})
	mux.HandleFunc("PUT /api/group/{id}", func(w http.ResponseWriter, r *http.Request) {
		// 200 with the error flag set still counts as a failure
		writeJSON(w, http.StatusOK, proto.Response[any]{Error: true, Message: "Only admin can update"})
	})
	c := newTestClient(t, mux)

	_, err := c.Login(context.Background(), proto.LoginRequest{Email: "a@b.c", Password: "x"})
	require.Error(t, err)
	require.True(t, IsUnauthorized(err))
	require.Equal(t, "Invalid credentials", MessageOf(err, "fallback"))

	_, err = c.UpdateGroup(context.Background(), "g1", proto.UpdateGroupRequest{Name: "n"})
	require.Error(t, err)
	require.False(t, IsUnauthorized(err))
	require.Equal(t, "Only admin can update", MessageOf(err, "fallback"))
}

func TestCookieSessionIsReused(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "jwt", Value: "token-1", Path: "/"})
		writeJSON(w, http.StatusOK, proto.Response[any]{Message: "Logged in"})
	})
	mux.HandleFunc("GET /api/auth/check-auth", func(w http.ResponseWriter, r *http.Request) {
		ck, err := r.Cookie("jwt")
		if err != nil || ck.Value != "token-1" {
			writeJSON(w, http.StatusUnauthorized, proto.Response[any]{Error: true, Message: "Unauthorized"})
			return
		}
		writeJSON(w, http.StatusOK, proto.Response[proto.User]{Data: proto.User{ID: "u1", FullName: "Alice"}})
	})
	c := newTestClient(t, mux)
	ctx := context.Background()

	_, err := c.CheckAuth(ctx)
	require.True(t, IsUnauthorized(err))

	msg, err := c.Login(ctx, proto.LoginRequest{Email: "a@b.c", Password: "x"})
	require.NoError(t, err)
	require.Equal(t, "Logged in", msg)

	user, err := c.CheckAuth(ctx)
	require.NoError(t, err)
	require.Equal(t, "u1", user.ID)
}

func TestTransportFailureIsNotAPIError(t *testing.T) {
	c, err := New("http://127.0.0.1:1/api", 200*time.Millisecond, nil)
	require.NoError(t, err)

	_, err = c.Users(context.Background())
	require.Error(t, err)
	require.Equal(t, "fallback", MessageOf(err, "fallback"))
}
