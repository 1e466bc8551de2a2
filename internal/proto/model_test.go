package proto

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRefAcceptsBareAndPopulatedForms(t *testing.T) {
	raw := `{
		"_id": "m1",
		"senderId": {"_id": "u1", "fullname": "Alice"},
		"recieverId": "u2",
		"groupId": null,
		"text": "hi",
		"createdAt": "2024-05-01T10:00:00Z"
	}`

	var msg Message
	require.NoError(t, json.Unmarshal([]byte(raw), &msg))
	require.Equal(t, Ref("u1"), msg.SenderID)
	require.Equal(t, Ref("u2"), msg.ReceiverID)
	require.Equal(t, Ref(""), msg.GroupID)
}

func TestGroupMemberIDsExcludesAdmin(t *testing.T) {
	g := Group{ID: "g1", AdminID: "u1", Members: Refs("u1", "u2", "", "u3")}
	require.Equal(t, []string{"u2", "u3"}, g.MemberIDs())
}

func TestEnvelopeRoundTrip(t *testing.T) {
	env, err := NewEnvelope(EventOnlineUsers, []string{"a", "b"})
	require.NoError(t, err)

	var ids []string
	require.NoError(t, env.Decode(&ids))
	require.Equal(t, []string{"a", "b"}, ids)

	empty, err := NewEnvelope(EventConnect, nil)
	require.NoError(t, err)
	require.Error(t, empty.Decode(&ids))
}
