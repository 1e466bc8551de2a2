package core

import (
	"github.com/rs/zerolog"

	applog "github.com/vovakirdan/chatsync/internal/log"
)

// Notification texts shown to the user.
const (
	msgSendFailed       = "Failed to send message"
	msgFetchFailed      = "Failed to fetch messages"
	msgUsersFailed      = "Failed to fetch users"
	msgGroupsFailed     = "Failed to fetch groups"
	msgGroupFailed      = "Failed to fetch group details"
	msgGroupCreated     = "Group created successfully"
	msgGroupUpdated     = "Group updated successfully"
	msgGroupUpdateFail  = "Failed to update group"
	msgMembersAdded     = "Members added successfully"
	msgMemberRemoved    = "Member removed successfully"
	msgNoChanges        = "No changes to save"
	msgNoChatSelected   = "No chat selected"
	msgAccountCreated   = "Account created successfully"
	msgLoggedIn         = "Logged in successfully"
	msgLoggedOut        = "Logged out successfully"
	msgProfileUpdated   = "image updated succesfully"
	msgCapReached       = "Maximum %d members allowed (%d total including admin)"
	msgAddLimit         = "Maximum %d members can be added"
	msgAddFailed        = "Failed to add members"
	msgRemoveFailed     = "Failed to remove member"
	msgCreateFailed     = "Failed to create group"
	msgAdminOnly        = "Only group admin can remove members"
	msgAdminNotRemoved  = "Cannot remove group admin"
	msgGroupNameMissing = "Please enter a group name"
	msgNoMembers        = "Please select at least one member"
)

// LogNotifier writes notifications to a logger. It is the default when no
// interactive notifier is wired.
type LogNotifier struct {
	log zerolog.Logger
}

func NewLogNotifier(logger *zerolog.Logger) *LogNotifier {
	return &LogNotifier{log: componentLogger(logger, "notify")}
}

func (n *LogNotifier) Success(msg string) { n.log.Info().Str("kind", "success").Msg(msg) }
func (n *LogNotifier) Error(msg string)   { n.log.Warn().Str("kind", "error").Msg(msg) }
func (n *LogNotifier) Info(msg string)    { n.log.Info().Str("kind", "info").Msg(msg) }

func componentLogger(parent *zerolog.Logger, name string) zerolog.Logger {
	return *applog.Component(parent, name)
}
