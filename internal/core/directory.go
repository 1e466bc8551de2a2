package core

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/chatsync/internal/api"
	"github.com/vovakirdan/chatsync/internal/proto"
)

// Directory caches the peer and group lists.
type Directory struct {
	dir    DirectoryAPI
	conv   *ConversationContext
	notify Notifier
	log    zerolog.Logger

	mu     sync.RWMutex
	users  []proto.User
	groups []proto.Group

	usersLoading  atomic.Bool
	groupsLoading atomic.Bool
}

func NewDirectory(dir DirectoryAPI, conv *ConversationContext, notify Notifier, logger *zerolog.Logger) *Directory {
	return &Directory{
		dir:    dir,
		conv:   conv,
		notify: notify,
		log:    componentLogger(logger, "directory"),
	}
}

// RefreshUsers reloads the peer list.
func (d *Directory) RefreshUsers(ctx context.Context) ([]proto.User, error) {
	d.usersLoading.Store(true)
	defer d.usersLoading.Store(false)

	users, err := d.dir.Users(ctx)
	if err != nil {
		d.notify.Error(api.MessageOf(err, msgUsersFailed))
		return nil, &NetworkError{Op: "fetch users", Err: err}
	}

	d.mu.Lock()
	d.users = users
	d.mu.Unlock()
	return slices.Clone(users), nil
}

// RefreshGroups reloads the group list. If a group conversation is active,
// its target is replaced with the refreshed record.
func (d *Directory) RefreshGroups(ctx context.Context) ([]proto.Group, error) {
	d.groupsLoading.Store(true)
	defer d.groupsLoading.Store(false)

	groups, err := d.dir.Groups(ctx)
	if err != nil {
		d.notify.Error(api.MessageOf(err, msgGroupsFailed))
		return nil, &NetworkError{Op: "fetch groups", Err: err}
	}

	d.mu.Lock()
	d.groups = groups
	d.mu.Unlock()

	if d.conv != nil {
		if active, ok := d.conv.Active(); ok && active.Mode == proto.ChatGroup {
			if i := slices.IndexFunc(groups, func(g proto.Group) bool { return g.ID == active.Group.ID }); i >= 0 {
				d.conv.RefreshTarget(groups[i])
			}
		}
	}
	return slices.Clone(groups), nil
}

// Group fetches one group with its members.
func (d *Directory) Group(ctx context.Context, id string) (proto.Group, error) {
	g, err := d.dir.Group(ctx, id)
	if err != nil {
		d.notify.Error(api.MessageOf(err, msgGroupFailed))
		return proto.Group{}, &NetworkError{Op: "fetch group", Err: err}
	}
	return g, nil
}

// Users returns the cached peer list.
func (d *Directory) Users() []proto.User {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return slices.Clone(d.users)
}

// Groups returns the cached group list.
func (d *Directory) Groups() []proto.Group {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return slices.Clone(d.groups)
}

// LookupUser finds a cached peer by id.
func (d *Directory) LookupUser(id string) (proto.User, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	i := slices.IndexFunc(d.users, func(u proto.User) bool { return u.ID == id })
	if i < 0 {
		return proto.User{}, false
	}
	return d.users[i], true
}

func (d *Directory) IsUsersLoading() bool  { return d.usersLoading.Load() }
func (d *Directory) IsGroupsLoading() bool { return d.groupsLoading.Load() }
