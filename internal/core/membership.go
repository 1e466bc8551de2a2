package core

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/vovakirdan/chatsync/internal/api"
	"github.com/vovakirdan/chatsync/internal/proto"
)

// DefaultGroupCap is the number of non-admin members a group may hold.
const DefaultGroupCap = 9

// MembershipDelta moves a group from one member set to another.
type MembershipDelta struct {
	ToAdd    []string
	ToRemove []string
}

// Empty reports whether the delta changes nothing.
func (d MembershipDelta) Empty() bool {
	return len(d.ToAdd) == 0 && len(d.ToRemove) == 0
}

// Reconcile computes current minus original as additions and original minus
// current as removals. Duplicates and empty ids are ignored.
func Reconcile(original, current []string) MembershipDelta {
	toRemove, toAdd := lo.Difference(lo.Uniq(lo.Compact(original)), lo.Uniq(lo.Compact(current)))
	return MembershipDelta{ToAdd: toAdd, ToRemove: toRemove}
}

// GroupEditor creates groups and changes their membership. Cap checks happen
// locally, before any request.
type GroupEditor struct {
	groups GroupAPI
	ident  Identity
	dir    *Directory
	notify Notifier
	log    zerolog.Logger
	cap    int
}

// NewGroupEditor builds an editor. dir, when set, is refreshed after every
// successful change.
func NewGroupEditor(groups GroupAPI, ident Identity, dir *Directory, notify Notifier, capacity int, logger *zerolog.Logger) *GroupEditor {
	if capacity <= 0 {
		capacity = DefaultGroupCap
	}
	return &GroupEditor{
		groups: groups,
		ident:  ident,
		dir:    dir,
		notify: notify,
		log:    componentLogger(logger, "groups"),
		cap:    capacity,
	}
}

// Cap is the non-admin member limit.
func (e *GroupEditor) Cap() int { return e.cap }

// CreateGroup creates a group administered by the current user. The creator
// is never listed as a member.
func (e *GroupEditor) CreateGroup(ctx context.Context, name string, members []string) (proto.Group, error) {
	user, ok := e.ident.User()
	if !ok {
		return proto.Group{}, ErrNotAuthenticated
	}
	name = strings.TrimSpace(name)
	if name == "" {
		e.notify.Error(msgGroupNameMissing)
		return proto.Group{}, ErrGroupNameRequired
	}
	members = lo.Without(lo.Uniq(lo.Compact(members)), user.ID)
	if len(members) == 0 {
		e.notify.Error(msgNoMembers)
		return proto.Group{}, ErrNoMembers
	}
	if len(members) > e.cap {
		e.notify.Error(e.capMessage())
		return proto.Group{}, ErrMemberCap
	}

	req := proto.CreateGroupRequest{Name: name, Members: members}
	if err := validate.Struct(req); err != nil {
		return proto.Group{}, fmt.Errorf("create group: %w", err)
	}

	g, err := e.groups.CreateGroup(ctx, req)
	if err != nil {
		e.notify.Error(api.MessageOf(err, msgCreateFailed))
		return proto.Group{}, &NetworkError{Op: "create group", Err: err}
	}
	e.log.Info().Str("group_id", g.ID).Int("members", len(members)).Msg("group created")
	e.notify.Success(msgGroupCreated)
	e.refresh(ctx)
	return g, nil
}

// AddMembers adds ids to g. Existing participants and the current user are
// skipped; the rest must fit in the remaining slots.
func (e *GroupEditor) AddMembers(ctx context.Context, g proto.Group, ids []string) (proto.Group, error) {
	participants := lo.Uniq(lo.Compact(append([]string{g.AdminID.String()}, g.MemberIDs()...)))
	allowed := max(e.cap+1-len(participants), 0)

	exclude := participants
	if user, ok := e.ident.User(); ok {
		exclude = append(exclude, user.ID)
	}
	candidates := lo.Filter(lo.Uniq(lo.Compact(ids)), func(id string, _ int) bool {
		return !lo.Contains(exclude, id)
	})

	if len(candidates) == 0 {
		e.notify.Error(msgNoMembers)
		return g, ErrNoMembers
	}
	if len(candidates) > allowed {
		e.notify.Error(fmt.Sprintf(msgAddLimit, allowed))
		return g, ErrMemberCap
	}

	updated, err := e.groups.AddMembers(ctx, g.ID, candidates)
	if err != nil {
		e.notify.Error(api.MessageOf(err, msgAddFailed))
		return g, &NetworkError{Op: "add members", Err: err}
	}
	e.notify.Success(msgMembersAdded)
	e.refresh(ctx)
	return updated, nil
}

// RemoveMember removes one member. Only the admin may do so and the admin
// cannot be removed.
func (e *GroupEditor) RemoveMember(ctx context.Context, g proto.Group, memberID string) (proto.Group, error) {
	user, ok := e.ident.User()
	if !ok {
		return g, ErrNotAuthenticated
	}
	if g.AdminID.String() != user.ID {
		e.notify.Error(msgAdminOnly)
		return g, ErrNotAdmin
	}
	if memberID == g.AdminID.String() {
		e.notify.Error(msgAdminNotRemoved)
		return g, ErrAdminRemoval
	}

	updated, err := e.groups.RemoveMembers(ctx, g.ID, []string{memberID})
	if err != nil {
		e.notify.Error(api.MessageOf(err, msgRemoveFailed))
		return g, &NetworkError{Op: "remove member", Err: err}
	}
	e.notify.Success(msgMemberRemoved)
	e.refresh(ctx)
	return updated, nil
}

// BeginEdit snapshots g's name and members. The admin is excluded from both
// snapshots.
func (e *GroupEditor) BeginEdit(g proto.Group) *EditSession {
	original := lo.Uniq(g.MemberIDs())
	return &EditSession{
		editor:   e,
		group:    g,
		origName: g.Name,
		name:     g.Name,
		original: original,
		selected: slices.Clone(original),
	}
}

func (e *GroupEditor) capMessage() string {
	return fmt.Sprintf(msgCapReached, e.cap, e.cap+1)
}

func (e *GroupEditor) refresh(ctx context.Context) {
	if e.dir == nil {
		return
	}
	if _, err := e.dir.RefreshGroups(ctx); err != nil {
		e.log.Debug().Err(err).Msg("refresh groups after change")
	}
}

// EditSession is an in-progress edit of one group's name and members.
type EditSession struct {
	editor *GroupEditor

	mu       sync.Mutex
	group    proto.Group
	origName string
	name     string
	original []string
	selected []string
}

// Group returns the latest known record.
func (s *EditSession) Group() proto.Group {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.group
}

// SetName changes the pending name.
func (s *EditSession) SetName(name string) {
	s.mu.Lock()
	s.name = name
	s.mu.Unlock()
}

// Selected returns the pending member set in selection order.
func (s *EditSession) Selected() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.selected)
}

// Toggle deselects id when selected and selects it otherwise. Selecting past
// the cap fails with ErrMemberCap; deselecting always succeeds.
func (s *EditSession) Toggle(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if slices.Contains(s.selected, id) {
		s.selected = slices.DeleteFunc(s.selected, func(m string) bool { return m == id })
		return nil
	}
	return s.addLocked(id)
}

// Add selects id. Selecting an already selected id is a no-op.
func (s *EditSession) Add(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if slices.Contains(s.selected, id) {
		return nil
	}
	return s.addLocked(id)
}

// Remove deselects id. The admin is never a member, so removing it fails.
func (s *EditSession) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id == s.group.AdminID.String() {
		s.editor.notify.Error(msgAdminNotRemoved)
		return ErrAdminRemoval
	}
	s.selected = slices.DeleteFunc(s.selected, func(m string) bool { return m == id })
	return nil
}

// Delta is the membership change Save would apply.
func (s *EditSession) Delta() MembershipDelta {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Reconcile(s.original, s.selected)
}

// Save applies the rename, then the additions, then the removals, each as a
// separate request. A failure after an earlier step succeeded returns a
// PartialUpdateError and leaves the earlier steps applied.
func (s *EditSession) Save(ctx context.Context) (proto.Group, error) {
	e := s.editor

	s.mu.Lock()
	g := s.group
	name := strings.TrimSpace(s.name)
	nameChanged := name != strings.TrimSpace(s.origName)
	delta := Reconcile(s.original, s.selected)
	selected := slices.Clone(s.selected)
	s.mu.Unlock()

	if name == "" {
		e.notify.Error(msgGroupNameMissing)
		return g, ErrGroupNameRequired
	}
	if !nameChanged && delta.Empty() {
		e.notify.Info(msgNoChanges)
		return g, ErrNoChanges
	}
	if nameChanged {
		if err := validate.Struct(proto.UpdateGroupRequest{Name: name}); err != nil {
			return g, fmt.Errorf("update group: %w", err)
		}
	}

	var completed []EditStep
	fail := func(step EditStep, err error) (proto.Group, error) {
		e.log.Warn().Err(err).Str("group_id", g.ID).Str("step", string(step)).Msg("group edit step failed")
		e.notify.Error(api.MessageOf(err, msgGroupUpdateFail))
		if len(completed) == 0 {
			return g, &NetworkError{Op: "update group", Err: err}
		}
		return g, &PartialUpdateError{Step: step, Completed: completed, Err: err}
	}

	latest := g
	if nameChanged {
		updated, err := e.groups.UpdateGroup(ctx, g.ID, proto.UpdateGroupRequest{Name: name})
		if err != nil {
			return fail(StepRename, err)
		}
		latest = updated
		completed = append(completed, StepRename)
	}
	if len(delta.ToAdd) > 0 {
		updated, err := e.groups.AddMembers(ctx, g.ID, delta.ToAdd)
		if err != nil {
			return fail(StepAddMembers, err)
		}
		latest = updated
		completed = append(completed, StepAddMembers)
	}
	if len(delta.ToRemove) > 0 {
		updated, err := e.groups.RemoveMembers(ctx, g.ID, delta.ToRemove)
		if err != nil {
			return fail(StepRemoveMembers, err)
		}
		latest = updated
		completed = append(completed, StepRemoveMembers)
	}

	s.mu.Lock()
	s.group = latest
	s.origName = name
	s.name = name
	s.original = selected
	s.mu.Unlock()

	e.log.Info().Str("group_id", g.ID).Int("added", len(delta.ToAdd)).Int("removed", len(delta.ToRemove)).Msg("group updated")
	e.notify.Success(msgGroupUpdated)
	e.refresh(ctx)
	return latest, nil
}

func (s *EditSession) addLocked(id string) error {
	if id == "" {
		return nil
	}
	if id == s.group.AdminID.String() {
		return ErrAdminMember
	}
	if len(s.selected) >= s.editor.cap {
		s.editor.notify.Error(s.editor.capMessage())
		return ErrMemberCap
	}
	s.selected = append(s.selected, id)
	return nil
}
