package store

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when a looked-up record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when a unique field is already taken.
	ErrDuplicate = errors.New("already exists")
)

// User represents an account.
type User struct {
	ID           string
	FullName     string
	Email        string
	PasswordHash string
	ProfilePic   string
	CreatedAt    time.Time
}

// Group represents a chat group. Members never include the admin.
type Group struct {
	ID        string
	Name      string
	AdminID   string
	Members   []string
	CreatedAt time.Time
}

// HasParticipant reports whether userID is the admin or a member.
func (g *Group) HasParticipant(userID string) bool {
	if g.AdminID == userID {
		return true
	}
	for _, m := range g.Members {
		if m == userID {
			return true
		}
	}
	return false
}

// Message represents a persisted chat message. Exactly one of ReceiverID and
// GroupID is set.
type Message struct {
	ID         string
	SenderID   string
	ReceiverID string
	GroupID    string
	Text       string
	Image      string
	CreatedAt  time.Time
}

// UserStore handles user persistence.
type UserStore interface {
	// CreateUser creates a new user with hashed password.
	CreateUser(ctx context.Context, fullName, email, passwordHash string) (*User, error)

	// GetUserByID retrieves a user by ID.
	GetUserByID(ctx context.Context, id string) (*User, error)

	// GetUserByEmail retrieves a user by email.
	GetUserByEmail(ctx context.Context, email string) (*User, error)

	// ListUsersExcept lists every user but the given one, ordered by name.
	ListUsersExcept(ctx context.Context, id string) ([]*User, error)

	// UpdateProfilePic sets the profile picture and returns the updated user.
	UpdateProfilePic(ctx context.Context, id, pic string) (*User, error)
}

// GroupStore handles group persistence.
type GroupStore interface {
	CreateGroup(ctx context.Context, name, adminID string, members []string) (*Group, error)
	GetGroup(ctx context.Context, id string) (*Group, error)

	// ListGroupsForUser lists groups the user administers or belongs to.
	ListGroupsForUser(ctx context.Context, userID string) ([]*Group, error)

	RenameGroup(ctx context.Context, id, name string) (*Group, error)
	AddMembers(ctx context.Context, id string, userIDs []string) (*Group, error)
	RemoveMembers(ctx context.Context, id string, userIDs []string) (*Group, error)
}

// MessageStore handles message persistence.
type MessageStore interface {
	// SaveMessage persists a message to storage.
	SaveMessage(ctx context.Context, msg *Message) error

	// ListDirect returns the exchange between two users in insertion order.
	ListDirect(ctx context.Context, userA, userB string) ([]*Message, error)

	// ListGroup returns a group's messages in insertion order.
	ListGroup(ctx context.Context, groupID string) ([]*Message, error)
}

// Store aggregates all storage interfaces.
type Store interface {
	UserStore
	GroupStore
	MessageStore

	// Close closes the underlying database connection.
	Close() error
}
