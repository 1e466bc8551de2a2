package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/vovakirdan/chatsync/internal/proto"
)

// Login posts credentials; the server answers with a session cookie.
func (c *Client) Login(ctx context.Context, req proto.LoginRequest) (string, error) {
	_, msg, err := do[json.RawMessage](ctx, c, http.MethodPost, "/auth/login", nil, req)
	return msg, err
}

// Signup creates an account and starts a session.
func (c *Client) Signup(ctx context.Context, req proto.SignupRequest) (string, error) {
	_, msg, err := do[json.RawMessage](ctx, c, http.MethodPost, "/auth/signup", nil, req)
	return msg, err
}

// Logout ends the session.
func (c *Client) Logout(ctx context.Context) (string, error) {
	_, msg, err := do[json.RawMessage](ctx, c, http.MethodPost, "/auth/logout", nil, nil)
	return msg, err
}

// CheckAuth returns the user behind the current session.
func (c *Client) CheckAuth(ctx context.Context) (proto.User, error) {
	user, _, err := do[proto.User](ctx, c, http.MethodGet, "/auth/check-auth", nil, nil)
	return user, err
}

// UpdateProfile changes the profile picture.
func (c *Client) UpdateProfile(ctx context.Context, req proto.UpdateProfileRequest) (proto.User, error) {
	user, _, err := do[proto.User](ctx, c, http.MethodPut, "/auth/update-profile", nil, req)
	return user, err
}

// Users lists the peers available for direct chats.
func (c *Client) Users(ctx context.Context) ([]proto.User, error) {
	users, _, err := do[[]proto.User](ctx, c, http.MethodGet, "/message/users", nil, nil)
	return users, err
}

// Messages returns the history of a direct chat or group, oldest first.
func (c *Client) Messages(ctx context.Context, chatID string, kind proto.ChatKind) ([]proto.Message, error) {
	msgs, _, err := do[[]proto.Message](ctx, c, http.MethodGet, "/message/"+chatID, chatQuery(kind), nil)
	return msgs, err
}

// SendMessage posts a message and returns the stored copy.
func (c *Client) SendMessage(ctx context.Context, chatID string, kind proto.ChatKind, req proto.SendMessageRequest) (proto.Message, error) {
	msg, _, err := do[proto.Message](ctx, c, http.MethodPost, "/message/send/"+chatID, chatQuery(kind), req)
	return msg, err
}

// Groups lists the groups the user administers or belongs to.
func (c *Client) Groups(ctx context.Context) ([]proto.Group, error) {
	groups, _, err := do[[]proto.Group](ctx, c, http.MethodGet, "/group", nil, nil)
	return groups, err
}

// CreateGroup creates a group administered by the current user.
func (c *Client) CreateGroup(ctx context.Context, req proto.CreateGroupRequest) (proto.Group, error) {
	group, _, err := do[proto.Group](ctx, c, http.MethodPost, "/group/create", nil, req)
	return group, err
}

// Group fetches a single group.
func (c *Client) Group(ctx context.Context, id string) (proto.Group, error) {
	group, _, err := do[proto.Group](ctx, c, http.MethodGet, "/group/"+id, nil, nil)
	return group, err
}

// UpdateGroup renames a group.
func (c *Client) UpdateGroup(ctx context.Context, id string, req proto.UpdateGroupRequest) (proto.Group, error) {
	group, _, err := do[proto.Group](ctx, c, http.MethodPut, "/group/"+id, nil, req)
	return group, err
}

// AddMembers adds users to a group.
func (c *Client) AddMembers(ctx context.Context, id string, memberIDs []string) (proto.Group, error) {
	group, _, err := do[proto.Group](ctx, c, http.MethodPost, "/group/"+id+"/members", nil, proto.MembersRequest{MemberIDs: memberIDs})
	return group, err
}

// RemoveMembers removes users from a group.
func (c *Client) RemoveMembers(ctx context.Context, id string, memberIDs []string) (proto.Group, error) {
	group, _, err := do[proto.Group](ctx, c, http.MethodDelete, "/group/"+id+"/members", nil, proto.MembersRequest{MemberIDs: memberIDs})
	return group, err
}
