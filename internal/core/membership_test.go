package core

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/vovakirdan/chatsync/internal/core/mocks"
	"github.com/vovakirdan/chatsync/internal/proto"
)

func newEditor(t *testing.T, self string) (*GroupEditor, *mocks.MockGroupAPI, *recordingNotifier) {
	t.Helper()
	ctrl := gomock.NewController(t)
	groups := mocks.NewMockGroupAPI(ctrl)
	notify := &recordingNotifier{}
	user := &proto.User{ID: self}
	return NewGroupEditor(groups, staticIdentity{user: user}, nil, notify, DefaultGroupCap, nil), groups, notify
}

func fullGroup(admin string, n int) proto.Group {
	members := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		members = append(members, fmt.Sprintf("m%d", i))
	}
	return proto.Group{ID: "g1", Name: "team", AdminID: proto.Ref(admin), Members: proto.Refs(members...)}
}

func TestReconcileScenario(t *testing.T) {
	delta := Reconcile([]string{"U2", "U3"}, []string{"U3", "U4"})
	require.Equal(t, []string{"U4"}, delta.ToAdd)
	require.Equal(t, []string{"U2"}, delta.ToRemove)
	require.False(t, delta.Empty())

	require.True(t, Reconcile([]string{"a", "b"}, []string{"b", "a", "a"}).Empty())
}

func TestReconcileProperties(t *testing.T) {
	cases := []struct {
		original []string
		current  []string
	}{
		{nil, []string{"a"}},
		{[]string{"a"}, nil},
		{[]string{"a", "b", "c"}, []string{"c", "d", "e"}},
		{[]string{"a", "a", "b"}, []string{"b", "b", "", "c"}},
		{[]string{"x", "y"}, []string{"x", "y"}},
	}
	for _, tc := range cases {
		d := Reconcile(tc.original, tc.current)
		require.Empty(t, lo.Intersect(d.ToAdd, tc.original), "additions must be new: %v", tc)
		require.Subset(t, tc.original, d.ToRemove, "removals come from the original set: %v", tc)
		require.Empty(t, lo.Intersect(d.ToAdd, d.ToRemove), "a member is either added or removed: %v", tc)
	}
}

func TestEditSessionScenarioDelta(t *testing.T) {
	editor, _, _ := newEditor(t, "U1")
	g := proto.Group{ID: "g1", Name: "team", AdminID: "U1", Members: proto.Refs("U2", "U3")}

	s := editor.BeginEdit(g)
	require.NoError(t, s.Toggle("U2"))
	require.NoError(t, s.Toggle("U4"))

	delta := s.Delta()
	require.Equal(t, []string{"U4"}, delta.ToAdd)
	require.Equal(t, []string{"U2"}, delta.ToRemove)
}

func TestEditSessionCapRejectsLocally(t *testing.T) {
	// no expectations: any request fails the test
	editor, _, notify := newEditor(t, "admin")
	s := editor.BeginEdit(fullGroup("admin", 9))

	require.ErrorIs(t, s.Toggle("m10"), ErrMemberCap)
	require.ErrorIs(t, s.Add("m10"), ErrMemberCap)
	require.Equal(t, note{Kind: "error", Text: "Maximum 9 members allowed (10 total including admin)"}, notify.last())
	require.Len(t, s.Selected(), 9)

	// deselecting is always allowed and frees a slot
	require.NoError(t, s.Toggle("m1"))
	require.NoError(t, s.Toggle("m10"))
	require.Len(t, s.Selected(), 9)
}

func TestEditSessionAdminIsNeverAMember(t *testing.T) {
	editor, _, _ := newEditor(t, "admin")
	g := proto.Group{ID: "g1", Name: "team", AdminID: "admin", Members: proto.Refs("admin", "u2")}

	s := editor.BeginEdit(g)
	require.Equal(t, []string{"u2"}, s.Selected())
	require.ErrorIs(t, s.Remove("admin"), ErrAdminRemoval)
	require.ErrorIs(t, s.Toggle("admin"), ErrAdminMember)
	require.NotContains(t, s.Delta().ToRemove, "admin")
}

func TestEditSessionSaveOrder(t *testing.T) {
	editor, groups, notify := newEditor(t, "U1")
	g := proto.Group{ID: "g1", Name: "team", AdminID: "U1", Members: proto.Refs("U2", "U3")}
	renamed := proto.Group{ID: "g1", Name: "crew", AdminID: "U1", Members: proto.Refs("U2", "U3")}
	final := proto.Group{ID: "g1", Name: "crew", AdminID: "U1", Members: proto.Refs("U3", "U4")}

	gomock.InOrder(
		groups.EXPECT().UpdateGroup(gomock.Any(), "g1", proto.UpdateGroupRequest{Name: "crew"}).Return(renamed, nil),
		groups.EXPECT().AddMembers(gomock.Any(), "g1", []string{"U4"}).Return(renamed, nil),
		groups.EXPECT().RemoveMembers(gomock.Any(), "g1", []string{"U2"}).Return(final, nil),
	)

	s := editor.BeginEdit(g)
	s.SetName("  crew ")
	require.NoError(t, s.Remove("U2"))
	require.NoError(t, s.Add("U4"))

	got, err := s.Save(context.Background())
	require.NoError(t, err)
	require.Equal(t, final, got)
	require.Equal(t, note{Kind: "success", Text: "Group updated successfully"}, notify.last())

	// the session is rebased on what was saved
	require.True(t, s.Delta().Empty())
	_, err = s.Save(context.Background())
	require.ErrorIs(t, err, ErrNoChanges)
}

func TestEditSessionNoChanges(t *testing.T) {
	editor, _, notify := newEditor(t, "U1")
	s := editor.BeginEdit(proto.Group{ID: "g1", Name: "team", AdminID: "U1", Members: proto.Refs("U2")})
	s.SetName("team ")

	_, err := s.Save(context.Background())
	require.ErrorIs(t, err, ErrNoChanges)
	require.Equal(t, note{Kind: "info", Text: "No changes to save"}, notify.last())

	s.SetName("   ")
	_, err = s.Save(context.Background())
	require.ErrorIs(t, err, ErrGroupNameRequired)
}

func TestEditSessionPartialFailure(t *testing.T) {
	editor, groups, notify := newEditor(t, "U1")
	g := proto.Group{ID: "g1", Name: "team", AdminID: "U1", Members: proto.Refs("U2")}
	boom := errors.New("connection reset")

	gomock.InOrder(
		groups.EXPECT().UpdateGroup(gomock.Any(), "g1", gomock.Any()).Return(g, nil),
		groups.EXPECT().AddMembers(gomock.Any(), "g1", []string{"U3"}).Return(proto.Group{}, boom),
	)

	s := editor.BeginEdit(g)
	s.SetName("renamed")
	require.NoError(t, s.Toggle("U2"))
	require.NoError(t, s.Toggle("U3"))

	_, err := s.Save(context.Background())
	var partial *PartialUpdateError
	require.ErrorAs(t, err, &partial)
	require.Equal(t, StepAddMembers, partial.Step)
	require.Equal(t, []EditStep{StepRename}, partial.Completed)
	require.ErrorIs(t, err, boom)
	require.Equal(t, ErrCodePartialUpdate, CodeOf(err))
	require.Equal(t, note{Kind: "error", Text: "Failed to update group"}, notify.last())
}

func TestEditSessionFirstStepFailure(t *testing.T) {
	editor, groups, _ := newEditor(t, "U1")
	g := proto.Group{ID: "g1", Name: "team", AdminID: "U1", Members: proto.Refs("U2")}
	groups.EXPECT().RemoveMembers(gomock.Any(), "g1", []string{"U2"}).Return(proto.Group{}, errors.New("timeout"))

	s := editor.BeginEdit(g)
	require.NoError(t, s.Toggle("U2"))

	_, err := s.Save(context.Background())
	var netErr *NetworkError
	require.ErrorAs(t, err, &netErr)
	require.Equal(t, []string{"U2"}, s.Delta().ToRemove, "nothing was applied, the edit is still pending")
}

func TestCreateGroup(t *testing.T) {
	editor, groups, notify := newEditor(t, "me")
	ctx := context.Background()

	_, err := editor.CreateGroup(ctx, "  ", []string{"a"})
	require.ErrorIs(t, err, ErrGroupNameRequired)

	_, err = editor.CreateGroup(ctx, "team", []string{"me", ""})
	require.ErrorIs(t, err, ErrNoMembers)

	_, err = editor.CreateGroup(ctx, "team", []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"})
	require.ErrorIs(t, err, ErrMemberCap)

	groups.EXPECT().
		CreateGroup(gomock.Any(), proto.CreateGroupRequest{Name: "team", Members: []string{"a", "b"}}).
		Return(proto.Group{ID: "g9", Name: "team", AdminID: "me", Members: proto.Refs("a", "b")}, nil)

	g, err := editor.CreateGroup(ctx, " team ", []string{"a", "me", "b", "a"})
	require.NoError(t, err)
	require.Equal(t, "g9", g.ID)
	require.Equal(t, note{Kind: "success", Text: "Group created successfully"}, notify.last())
}

func TestAddMembersAllowance(t *testing.T) {
	editor, groups, notify := newEditor(t, "admin")
	ctx := context.Background()
	g := fullGroup("admin", 7) // 8 participants, 2 slots left

	_, err := editor.AddMembers(ctx, g, []string{"x", "y", "z"})
	require.ErrorIs(t, err, ErrMemberCap)
	require.Equal(t, "Maximum 2 members can be added", notify.last().Text)

	_, err = editor.AddMembers(ctx, g, []string{"m1", "admin"})
	require.ErrorIs(t, err, ErrNoMembers)

	groups.EXPECT().AddMembers(gomock.Any(), "g1", []string{"x", "y"}).Return(fullGroup("admin", 9), nil)
	updated, err := editor.AddMembers(ctx, g, []string{"x", "m3", "y", "x"})
	require.NoError(t, err)
	require.Len(t, updated.MemberIDs(), 9)

	_, err = editor.AddMembers(ctx, updated, []string{"w"})
	require.ErrorIs(t, err, ErrMemberCap)
}

func TestRemoveMemberRules(t *testing.T) {
	ctx := context.Background()
	g := proto.Group{ID: "g1", AdminID: "boss", Members: proto.Refs("u2", "u3")}

	outsider, _, notify := newEditor(t, "u2")
	_, err := outsider.RemoveMember(ctx, g, "u3")
	require.ErrorIs(t, err, ErrNotAdmin)
	require.Equal(t, "Only group admin can remove members", notify.last().Text)

	admin, groups, notify := newEditor(t, "boss")
	_, err = admin.RemoveMember(ctx, g, "boss")
	require.ErrorIs(t, err, ErrAdminRemoval)
	require.Equal(t, "Cannot remove group admin", notify.last().Text)

	groups.EXPECT().RemoveMembers(gomock.Any(), "g1", []string{"u3"}).
		Return(proto.Group{ID: "g1", AdminID: "boss", Members: proto.Refs("u2")}, nil)
	updated, err := admin.RemoveMember(ctx, g, "u3")
	require.NoError(t, err)
	require.Equal(t, []string{"u2"}, updated.MemberIDs())
}
