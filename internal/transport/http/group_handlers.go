package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/vovakirdan/chatsync/internal/proto"
	"github.com/vovakirdan/chatsync/internal/store"
)

// MaxGroupMembers is the member cap enforced by the server, admin excluded.
const MaxGroupMembers = 9

// GroupHandlers serves the /api/group endpoints.
type GroupHandlers struct {
	store store.Store
	log   *zerolog.Logger
}

// NewGroupHandlers creates a new group handlers instance.
func NewGroupHandlers(st store.Store, logger *zerolog.Logger) *GroupHandlers {
	return &GroupHandlers{
		store: st,
		log:   logger,
	}
}

// List returns the groups the caller administers or belongs to.
// GET /api/group
func (h *GroupHandlers) List(c *gin.Context) {
	groups, err := h.store.ListGroupsForUser(c.Request.Context(), currentUser(c))
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list groups")
		fail(c, http.StatusInternalServerError, msgInternal)
		return
	}
	respond(c, http.StatusOK, groupsToProto(groups), "")
}

// Create makes a group administered by the caller.
// POST /api/group/create
func (h *GroupHandlers) Create(c *gin.Context) {
	me := currentUser(c)

	var req proto.CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Group name and members are required")
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		fail(c, http.StatusBadRequest, "Group name is required")
		return
	}

	members := lo.Without(lo.Uniq(lo.Compact(req.Members)), me)
	if len(members) == 0 {
		fail(c, http.StatusBadRequest, "At least one member is required")
		return
	}
	if len(members) > MaxGroupMembers {
		fail(c, http.StatusBadRequest, fmt.Sprintf("Maximum %d members allowed", MaxGroupMembers))
		return
	}
	if !h.knownUsers(c, members) {
		return
	}

	g, err := h.store.CreateGroup(c.Request.Context(), name, me, members)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to create group")
		fail(c, http.StatusInternalServerError, msgInternal)
		return
	}

	h.log.Info().Str("group_id", g.ID).Str("admin_id", me).Int("members", len(g.Members)).Msg("group created")
	respond(c, http.StatusCreated, groupToProto(g), "Group created successfully")
}

// Get returns a single group to one of its participants.
// GET /api/group/:id
func (h *GroupHandlers) Get(c *gin.Context) {
	g, ok := participantGroup(c, h.store, h.log, c.Param("id"), currentUser(c))
	if !ok {
		return
	}
	respond(c, http.StatusOK, groupToProto(g), "")
}

// Update renames a group. Admin only.
// PUT /api/group/:id
func (h *GroupHandlers) Update(c *gin.Context) {
	var req proto.UpdateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		fail(c, http.StatusBadRequest, "Group name is required")
		return
	}

	g, ok := h.adminGroup(c, "Only group admin can update the group")
	if !ok {
		return
	}

	g, err := h.store.RenameGroup(c.Request.Context(), g.ID, strings.TrimSpace(req.Name))
	if err != nil {
		h.storeFailure(c, err, "failed to rename group")
		return
	}
	respond(c, http.StatusOK, groupToProto(g), "Group updated successfully")
}

// AddMembers adds users to a group. Admin only.
// POST /api/group/:id/members
func (h *GroupHandlers) AddMembers(c *gin.Context) {
	var req proto.MembersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Member ids are required")
		return
	}

	g, ok := h.adminGroup(c, "Only group admin can add members")
	if !ok {
		return
	}

	candidates := lo.Reject(lo.Uniq(lo.Compact(req.MemberIDs)), func(id string, _ int) bool {
		return g.HasParticipant(id)
	})
	if len(candidates) == 0 {
		fail(c, http.StatusBadRequest, "Users are already members")
		return
	}
	if len(g.Members)+len(candidates) > MaxGroupMembers {
		fail(c, http.StatusBadRequest, fmt.Sprintf("Maximum %d members allowed", MaxGroupMembers))
		return
	}
	if !h.knownUsers(c, candidates) {
		return
	}

	g, err := h.store.AddMembers(c.Request.Context(), g.ID, candidates)
	if err != nil {
		h.storeFailure(c, err, "failed to add members")
		return
	}
	respond(c, http.StatusOK, groupToProto(g), "Members added successfully")
}

// RemoveMembers drops users from a group. Admin only; the admin stays.
// DELETE /api/group/:id/members
func (h *GroupHandlers) RemoveMembers(c *gin.Context) {
	var req proto.MembersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Member ids are required")
		return
	}

	g, ok := h.adminGroup(c, "Only group admin can remove members")
	if !ok {
		return
	}
	if lo.Contains(req.MemberIDs, g.AdminID) {
		fail(c, http.StatusBadRequest, "Cannot remove group admin")
		return
	}

	g, err := h.store.RemoveMembers(c.Request.Context(), g.ID, lo.Uniq(lo.Compact(req.MemberIDs)))
	if err != nil {
		h.storeFailure(c, err, "failed to remove members")
		return
	}
	respond(c, http.StatusOK, groupToProto(g), "Members removed successfully")
}

// adminGroup loads the :id group and checks the caller administers it.
func (h *GroupHandlers) adminGroup(c *gin.Context, denied string) (*store.Group, bool) {
	g, ok := participantGroup(c, h.store, h.log, c.Param("id"), currentUser(c))
	if !ok {
		return nil, false
	}
	if g.AdminID != currentUser(c) {
		fail(c, http.StatusForbidden, denied)
		return nil, false
	}
	return g, true
}

func (h *GroupHandlers) knownUsers(c *gin.Context, ids []string) bool {
	for _, id := range ids {
		if _, err := h.store.GetUserByID(c.Request.Context(), id); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				fail(c, http.StatusBadRequest, "Unknown user "+id)
				return false
			}
			h.storeFailure(c, err, "failed to load member")
			return false
		}
	}
	return true
}

func (h *GroupHandlers) storeFailure(c *gin.Context, err error, msg string) {
	if errors.Is(err, store.ErrNotFound) {
		fail(c, http.StatusNotFound, "Group not found")
		return
	}
	h.log.Error().Err(err).Msg(msg)
	fail(c, http.StatusInternalServerError, msgInternal)
}

type groupGetter interface {
	GetGroup(ctx context.Context, id string) (*store.Group, error)
}

// participantGroup loads a group the user takes part in, answering the
// request itself when that fails.
func participantGroup(c *gin.Context, groups groupGetter, log *zerolog.Logger, groupID, userID string) (*store.Group, bool) {
	g, err := groups.GetGroup(c.Request.Context(), groupID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			fail(c, http.StatusNotFound, "Group not found")
			return nil, false
		}
		log.Error().Err(err).Str("group_id", groupID).Msg("failed to load group")
		fail(c, http.StatusInternalServerError, msgInternal)
		return nil, false
	}
	if !g.HasParticipant(userID) {
		fail(c, http.StatusForbidden, "You are not a member of this group")
		return nil, false
	}
	return g, true
}
