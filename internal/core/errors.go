package core

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes, stable across releases.
const (
	ErrCodeConfiguration = "configuration"
	ErrCodeAuth          = "auth"
	ErrCodeNetwork       = "network"
	ErrCodePartialUpdate = "partial_update"
	ErrCodeBadRequest    = "bad_request"
)

var (
	ErrNotAuthenticated  = errors.New("not authenticated")
	ErrNoConversation    = errors.New("no chat selected")
	ErrEmptyMessage      = errors.New("message has neither text nor image")
	ErrMemberCap         = errors.New("member cap reached")
	ErrAdminRemoval      = errors.New("cannot remove group admin")
	ErrAdminMember       = errors.New("group admin cannot be a member")
	ErrNotAdmin          = errors.New("only group admin can change members")
	ErrNoChanges         = errors.New("no changes to save")
	ErrGroupNameRequired = errors.New("group name is required")
	ErrNoMembers         = errors.New("select at least one member")
)

// Coded is implemented by every error in the taxonomy.
type Coded interface {
	error
	Code() string
}

// CodeOf returns the taxonomy code of err, ErrCodeBadRequest for local
// validation failures, or "" for anything else.
func CodeOf(err error) string {
	var coded Coded
	if errors.As(err, &coded) {
		return coded.Code()
	}
	for _, local := range []error{
		ErrNotAuthenticated, ErrNoConversation, ErrEmptyMessage, ErrMemberCap, ErrAdminRemoval,
		ErrAdminMember, ErrNotAdmin, ErrNoChanges, ErrGroupNameRequired, ErrNoMembers,
	} {
		if errors.Is(err, local) {
			return ErrCodeBadRequest
		}
	}
	return ""
}

// ConfigurationError means no real-time endpoint could be resolved; the
// connection simply does not start.
type ConfigurationError struct {
	Err error
}

func (e *ConfigurationError) Error() string { return "configuration: " + e.Err.Error() }
func (e *ConfigurationError) Unwrap() error { return e.Err }
func (e *ConfigurationError) Code() string  { return ErrCodeConfiguration }

// AuthError means the server rejected credentials or the session; the local
// identity has been cleared.
type AuthError struct {
	Err error
}

func (e *AuthError) Error() string { return "auth: " + e.Err.Error() }
func (e *AuthError) Unwrap() error { return e.Err }
func (e *AuthError) Code() string  { return ErrCodeAuth }

// NetworkError means a request failed and local state is as it was before the call.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }
func (e *NetworkError) Unwrap() error { return e.Err }
func (e *NetworkError) Code() string  { return ErrCodeNetwork }

// EditStep names one request of a multi-step group edit.
type EditStep string

const (
	StepRename        EditStep = "rename"
	StepAddMembers    EditStep = "add_members"
	StepRemoveMembers EditStep = "remove_members"
)

// PartialUpdateError reports a group edit that failed at Step after the
// Completed steps were already applied. Nothing is rolled back.
type PartialUpdateError struct {
	Step      EditStep
	Completed []EditStep
	Err       error
}

func (e *PartialUpdateError) Error() string {
	done := make([]string, 0, len(e.Completed))
	for _, s := range e.Completed {
		done = append(done, string(s))
	}
	return fmt.Sprintf("group edit failed at %s after [%s]: %v", e.Step, strings.Join(done, ", "), e.Err)
}
func (e *PartialUpdateError) Unwrap() error { return e.Err }
func (e *PartialUpdateError) Code() string  { return ErrCodePartialUpdate }
