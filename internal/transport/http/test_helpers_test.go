package http

import (
	"bytes"
	"encoding/json"
	stdhttp "net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/vovakirdan/chatsync/internal/auth"
	"github.com/vovakirdan/chatsync/internal/config"
	"github.com/vovakirdan/chatsync/internal/proto"
	"github.com/vovakirdan/chatsync/internal/store/sqlite"
)

type testEnv struct {
	t      *testing.T
	store  *sqlite.SQLiteStore
	hub    *Hub
	server *stdhttp.Server
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st, err := sqlite.NewWithSetup(":memory:", sqlite.ApplySchema)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	authService := auth.NewService(st, &auth.JWTConfig{
		Secret: []byte("test-secret"),
		Issuer: "test",
		TTL:    time.Hour,
	}, bcrypt.MinCost)

	logger := zerolog.Nop()
	hub := NewHub(&logger)
	cfg := config.Default().Stub
	cfg.Addr = ":0"

	return &testEnv{
		t:      t,
		store:  st,
		hub:    hub,
		server: NewServer(hub, authService, st, cfg, &logger),
	}
}

func (e *testEnv) do(method, path string, session *stdhttp.Cookie, body any) *httptest.ResponseRecorder {
	e.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(e.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if session != nil {
		req.AddCookie(session)
	}

	rec := httptest.NewRecorder()
	e.server.Handler.ServeHTTP(rec, req)
	return rec
}

// signup creates an account and returns it with its session cookie.
func (e *testEnv) signup(name string) (proto.User, *stdhttp.Cookie) {
	e.t.Helper()

	rec := e.do(stdhttp.MethodPost, "/api/auth/signup", nil, proto.SignupRequest{
		FullName: name,
		Email:    name + "@example.com",
		Password: "password123",
	})
	require.Equal(e.t, stdhttp.StatusCreated, rec.Code, rec.Body.String())

	user := decode[proto.User](e.t, rec).Data
	return user, sessionCookie(e.t, rec)
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *stdhttp.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == auth.CookieName {
			return c
		}
	}
	t.Fatalf("no %s cookie in response", auth.CookieName)
	return nil
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) proto.Response[T] {
	t.Helper()
	var resp proto.Response[T]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return resp
}

func refIDs(refs []proto.Ref) []string {
	out := make([]string, 0, len(refs))
	for _, r := range refs {
		out = append(out, r.String())
	}
	return out
}
