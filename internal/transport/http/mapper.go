package http

import (
	"github.com/vovakirdan/chatsync/internal/proto"
	"github.com/vovakirdan/chatsync/internal/store"
)

func userToProto(u *store.User) proto.User {
	return proto.User{
		ID:         u.ID,
		FullName:   u.FullName,
		Email:      u.Email,
		ProfilePic: u.ProfilePic,
		CreatedAt:  u.CreatedAt,
	}
}

func usersToProto(users []*store.User) []proto.User {
	out := make([]proto.User, 0, len(users))
	for _, u := range users {
		out = append(out, userToProto(u))
	}
	return out
}

func groupToProto(g *store.Group) proto.Group {
	return proto.Group{
		ID:        g.ID,
		Name:      g.Name,
		AdminID:   proto.Ref(g.AdminID),
		Members:   proto.Refs(g.Members...),
		CreatedAt: g.CreatedAt,
	}
}

func groupsToProto(groups []*store.Group) []proto.Group {
	out := make([]proto.Group, 0, len(groups))
	for _, g := range groups {
		out = append(out, groupToProto(g))
	}
	return out
}

func messageToProto(m *store.Message) proto.Message {
	return proto.Message{
		ID:         m.ID,
		SenderID:   proto.Ref(m.SenderID),
		ReceiverID: proto.Ref(m.ReceiverID),
		GroupID:    proto.Ref(m.GroupID),
		Text:       m.Text,
		Image:      m.Image,
		CreatedAt:  m.CreatedAt,
	}
}

func messagesToProto(msgs []*store.Message) []proto.Message {
	out := make([]proto.Message, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, messageToProto(m))
	}
	return out
}
