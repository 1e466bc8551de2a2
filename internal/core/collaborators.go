//go:generate go run go.uber.org/mock/mockgen -source=collaborators.go -destination=mocks/mock_collaborators.go -package=mocks

package core

import (
	"context"

	"github.com/vovakirdan/chatsync/internal/proto"
)

// AuthAPI is the session part of the request/response collaborator.
type AuthAPI interface {
	Login(ctx context.Context, req proto.LoginRequest) (string, error)
	Signup(ctx context.Context, req proto.SignupRequest) (string, error)
	Logout(ctx context.Context) (string, error)
	CheckAuth(ctx context.Context) (proto.User, error)
	UpdateProfile(ctx context.Context, req proto.UpdateProfileRequest) (proto.User, error)
}

// ChatAPI covers message history and sending.
type ChatAPI interface {
	Messages(ctx context.Context, chatID string, kind proto.ChatKind) ([]proto.Message, error)
	SendMessage(ctx context.Context, chatID string, kind proto.ChatKind, req proto.SendMessageRequest) (proto.Message, error)
}

// DirectoryAPI lists peers and groups.
type DirectoryAPI interface {
	Users(ctx context.Context) ([]proto.User, error)
	Groups(ctx context.Context) ([]proto.Group, error)
	Group(ctx context.Context, id string) (proto.Group, error)
}

// GroupAPI mutates groups.
type GroupAPI interface {
	CreateGroup(ctx context.Context, req proto.CreateGroupRequest) (proto.Group, error)
	UpdateGroup(ctx context.Context, id string, req proto.UpdateGroupRequest) (proto.Group, error)
	AddMembers(ctx context.Context, id string, memberIDs []string) (proto.Group, error)
	RemoveMembers(ctx context.Context, id string, memberIDs []string) (proto.Group, error)
}
