package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/chatsync/internal/api"
	"github.com/vovakirdan/chatsync/internal/event"
	"github.com/vovakirdan/chatsync/internal/proto"
)

var validate = validator.New()

// Session is the authenticated identity with its connection handle, which
// may be nil when no endpoint is configured.
type Session struct {
	User proto.User
	Conn Conn
}

// SessionManager owns the authenticated identity and the single live
// connection. It is the only component that opens or closes the connection.
type SessionManager struct {
	auth     AuthAPI
	dial     DialFunc
	resolve  func() (string, error)
	presence *PresenceTracker
	notify   Notifier
	log      zerolog.Logger

	mu   sync.Mutex
	user *proto.User
	conn Conn

	signingUp       atomic.Bool
	loggingIn       atomic.Bool
	updatingProfile atomic.Bool
	checkingAuth    atomic.Bool

	connections event.Emitter[Conn]
}

// NewSessionManager wires the manager. resolve returns the real-time endpoint
// and is consulted on every Connect.
func NewSessionManager(auth AuthAPI, dial DialFunc, resolve func() (string, error), presence *PresenceTracker, notify Notifier, logger *zerolog.Logger) *SessionManager {
	return &SessionManager{
		auth:     auth,
		dial:     dial,
		resolve:  resolve,
		presence: presence,
		notify:   notify,
		log:      componentLogger(logger, "session"),
	}
}

// Authenticate logs in, loads the user record and opens the connection.
func (s *SessionManager) Authenticate(ctx context.Context, req proto.LoginRequest) (Session, error) {
	if err := validate.Struct(req); err != nil {
		return Session{}, &AuthError{Err: fmt.Errorf("invalid credentials: %w", err)}
	}

	s.loggingIn.Store(true)
	defer s.loggingIn.Store(false)

	msg, err := s.auth.Login(ctx, req)
	if err != nil {
		return Session{}, s.authFailed("login", err, "Login failed")
	}
	s.notify.Success(orDefault(msg, msgLoggedIn))

	user, err := s.CheckAuth(ctx)
	if err != nil {
		return Session{}, err
	}
	return Session{User: user, Conn: s.Conn()}, nil
}

// Signup creates an account, then behaves like Authenticate.
func (s *SessionManager) Signup(ctx context.Context, req proto.SignupRequest) (Session, error) {
	if err := validate.Struct(req); err != nil {
		return Session{}, &AuthError{Err: fmt.Errorf("invalid signup: %w", err)}
	}

	s.signingUp.Store(true)
	defer s.signingUp.Store(false)

	msg, err := s.auth.Signup(ctx, req)
	if err != nil {
		return Session{}, s.authFailed("signup", err, "Signup failed")
	}
	s.notify.Success(orDefault(msg, msgAccountCreated))

	user, err := s.CheckAuth(ctx)
	if err != nil {
		return Session{}, err
	}
	return Session{User: user, Conn: s.Conn()}, nil
}

// CheckAuth asks the server who the session cookie belongs to. On success the
// identity is stored and the connection opened; on failure it is cleared.
func (s *SessionManager) CheckAuth(ctx context.Context) (proto.User, error) {
	s.checkingAuth.Store(true)
	defer s.checkingAuth.Store(false)

	user, err := s.auth.CheckAuth(ctx)
	if err != nil {
		s.log.Debug().Err(err).Msg("check auth failed")
		s.clearIdentity()
		if api.IsUnauthorized(err) || isAPIError(err) {
			return proto.User{}, &AuthError{Err: err}
		}
		return proto.User{}, &NetworkError{Op: "check auth", Err: err}
	}

	s.mu.Lock()
	s.user = &user
	s.mu.Unlock()
	s.log.Info().Str("user_id", user.ID).Msg("authenticated")

	s.Connect()
	return user, nil
}

// Logout ends the server session, clears the identity and closes the connection.
// On failure the session is kept.
func (s *SessionManager) Logout(ctx context.Context) error {
	msg, err := s.auth.Logout(ctx)
	if err != nil {
		s.notify.Error(api.MessageOf(err, "Logout failed"))
		return &NetworkError{Op: "logout", Err: err}
	}
	s.clearIdentity()
	s.notify.Success(orDefault(msg, msgLoggedOut))
	return nil
}

// UpdateProfile changes the profile picture and adopts the returned record.
func (s *SessionManager) UpdateProfile(ctx context.Context, req proto.UpdateProfileRequest) (proto.User, error) {
	if _, ok := s.User(); !ok {
		return proto.User{}, ErrNotAuthenticated
	}
	if err := validate.Struct(req); err != nil {
		return proto.User{}, fmt.Errorf("update profile: %w", err)
	}

	s.updatingProfile.Store(true)
	defer s.updatingProfile.Store(false)

	user, err := s.auth.UpdateProfile(ctx, req)
	if err != nil {
		s.notify.Error(api.MessageOf(err, "Failed to update profile"))
		return proto.User{}, &NetworkError{Op: "update profile", Err: err}
	}

	s.mu.Lock()
	s.user = &user
	s.mu.Unlock()
	s.notify.Success(msgProfileUpdated)
	return user, nil
}

// Connect opens the real-time connection for the current user. It does
// nothing without a user or while a connection is still live. A missing
// endpoint is logged as a ConfigurationError and the connection is skipped.
func (s *SessionManager) Connect() {
	s.mu.Lock()
	if s.user == nil {
		s.mu.Unlock()
		return
	}
	if s.conn != nil && !s.conn.Closed() {
		s.mu.Unlock()
		return
	}
	userID := s.user.ID

	endpoint, err := s.resolve()
	if err != nil {
		s.mu.Unlock()
		s.log.Error().Err(&ConfigurationError{Err: err}).Msg("real-time connection not started")
		return
	}
	conn, err := s.dial(endpoint, userID)
	if err != nil {
		s.mu.Unlock()
		s.log.Error().Err(&ConfigurationError{Err: err}).Str("endpoint", endpoint).Msg("real-time connection not started")
		return
	}

	stale := s.conn
	s.register(conn)
	s.conn = conn
	conn.Start()
	s.mu.Unlock()

	if stale != nil {
		_ = stale.Close()
	}
	s.log.Info().Str("endpoint", endpoint).Str("user_id", userID).Msg("real-time connection started")
	s.connections.Emit(conn)
}

// Disconnect closes the connection if there is one.
func (s *SessionManager) Disconnect() {
	s.mu.Lock()
	conn := s.conn
	s.conn = nil
	s.mu.Unlock()

	if conn == nil {
		return
	}
	if err := conn.Close(); err != nil {
		s.log.Warn().Err(err).Msg("close connection")
	}
	s.presence.Replace(nil)
}

// Conn returns the current connection, or nil.
func (s *SessionManager) Conn() Conn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn
}

// User returns the authenticated user.
func (s *SessionManager) User() (proto.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return proto.User{}, false
	}
	return *s.user, true
}

// OnConnection is called with every newly opened connection.
func (s *SessionManager) OnConnection(fn func(Conn)) (unsubscribe func()) {
	return s.connections.Subscribe(fn)
}

func (s *SessionManager) IsSigningUp() bool       { return s.signingUp.Load() }
func (s *SessionManager) IsLoggingIn() bool       { return s.loggingIn.Load() }
func (s *SessionManager) IsUpdatingProfile() bool { return s.updatingProfile.Load() }
func (s *SessionManager) IsCheckingAuth() bool    { return s.checkingAuth.Load() }

func (s *SessionManager) register(conn Conn) {
	conn.On(proto.EventOnlineUsers, func(raw json.RawMessage) {
		var ids []string
		if err := json.Unmarshal(raw, &ids); err != nil {
			s.log.Warn().Err(err).Msg("malformed presence broadcast")
			return
		}
		s.presence.Replace(ids)
	})
	conn.On(proto.EventConnect, func(json.RawMessage) {
		s.log.Debug().Msg("socket connected")
	})
	conn.On(proto.EventDisconnect, func(raw json.RawMessage) {
		var d proto.DisconnectData
		_ = json.Unmarshal(raw, &d)
		s.log.Debug().Str("reason", d.Reason).Msg("socket disconnected")
	})
	conn.On(proto.EventConnectError, func(raw json.RawMessage) {
		var d proto.DisconnectData
		_ = json.Unmarshal(raw, &d)
		s.log.Warn().Str("reason", d.Reason).Msg("socket connection error")
	})
}

func (s *SessionManager) authFailed(op string, err error, fallback string) error {
	s.clearIdentity()
	s.notify.Error(api.MessageOf(err, fallback))
	if isAPIError(err) {
		return &AuthError{Err: err}
	}
	return &NetworkError{Op: op, Err: err}
}

func (s *SessionManager) clearIdentity() {
	s.mu.Lock()
	had := s.user != nil
	s.user = nil
	s.mu.Unlock()
	s.Disconnect()
	if had {
		s.log.Info().Msg("identity cleared")
	}
}

func isAPIError(err error) bool {
	var apiErr *api.Error
	return errors.As(err, &apiErr)
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
