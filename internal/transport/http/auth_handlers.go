package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/chatsync/internal/auth"
	"github.com/vovakirdan/chatsync/internal/proto"
	"github.com/vovakirdan/chatsync/internal/store"
)

// AuthHandlers serves the /api/auth endpoints.
type AuthHandlers struct {
	authService *auth.Service
	users       store.UserStore
	log         *zerolog.Logger
}

// NewAuthHandlers creates a new auth handlers instance.
func NewAuthHandlers(authService *auth.Service, users store.UserStore, logger *zerolog.Logger) *AuthHandlers {
	return &AuthHandlers{
		authService: authService,
		users:       users,
		log:         logger,
	}
}

// Signup handles account creation.
// POST /api/auth/signup
func (h *AuthHandlers) Signup(c *gin.Context) {
	var req proto.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid signup request")
		fail(c, http.StatusBadRequest, "All fields are required")
		return
	}

	user, token, err := h.authService.Signup(c.Request.Context(), req.FullName, req.Email, req.Password)
	switch {
	case errors.Is(err, auth.ErrUserExists):
		fail(c, http.StatusBadRequest, "Email already exists")
		return
	case errors.Is(err, auth.ErrInvalidName), errors.Is(err, auth.ErrInvalidEmail), errors.Is(err, auth.ErrInvalidPassword):
		fail(c, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		h.log.Error().Err(err).Msg("failed to sign up user")
		fail(c, http.StatusInternalServerError, msgInternal)
		return
	}

	h.setSession(c, token)
	h.log.Info().Str("user_id", user.ID).Msg("user signed up")
	respond(c, http.StatusCreated, userToProto(user), "Account created successfully")
}

// Login handles credential login.
// POST /api/auth/login
func (h *AuthHandlers) Login(c *gin.Context) {
	var req proto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid login request")
		fail(c, http.StatusBadRequest, "Email and password are required")
		return
	}

	user, token, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			fail(c, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		h.log.Error().Err(err).Msg("failed to log in user")
		fail(c, http.StatusInternalServerError, msgInternal)
		return
	}

	h.setSession(c, token)
	h.log.Info().Str("user_id", user.ID).Msg("user logged in")
	respond(c, http.StatusOK, userToProto(user), "Logged in successfully")
}

// Logout clears the session cookie.
// POST /api/auth/logout
func (h *AuthHandlers) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(auth.CookieName, "", -1, "/", "", false, true)
	respond[any](c, http.StatusOK, nil, "Logged out successfully")
}

// CheckAuth returns the user behind the session.
// GET /api/auth/check-auth
func (h *AuthHandlers) CheckAuth(c *gin.Context) {
	user, err := h.users.GetUserByID(c.Request.Context(), currentUser(c))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			fail(c, http.StatusUnauthorized, "Unauthorized - User not found")
			return
		}
		h.log.Error().Err(err).Msg("failed to load session user")
		fail(c, http.StatusInternalServerError, msgInternal)
		return
	}
	respond(c, http.StatusOK, userToProto(user), "")
}

// UpdateProfile replaces the profile picture.
// PUT /api/auth/update-profile
func (h *AuthHandlers) UpdateProfile(c *gin.Context) {
	var req proto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Profile pic is required")
		return
	}

	user, err := h.users.UpdateProfilePic(c.Request.Context(), currentUser(c), req.ProfilePic)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			fail(c, http.StatusNotFound, "User not found")
			return
		}
		h.log.Error().Err(err).Msg("failed to update profile")
		fail(c, http.StatusInternalServerError, msgInternal)
		return
	}
	respond(c, http.StatusOK, userToProto(user), "Profile updated successfully")
}

func (h *AuthHandlers) setSession(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(auth.CookieName, token, h.authService.TTL(), "/", "", false, true)
}
