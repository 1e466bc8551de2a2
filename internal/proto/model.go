package proto

import (
	"bytes"
	"encoding/json"
	"time"
)

// ChatKind selects between a one-to-one exchange and a group room.
type ChatKind string

const (
	ChatDirect ChatKind = "direct"
	ChatGroup  ChatKind = "group"
)

// Valid reports whether k is one of the known kinds.
func (k ChatKind) Valid() bool {
	return k == ChatDirect || k == ChatGroup
}

// Ref is an identifier that the server may send either as a bare string
// or as a populated document carrying an "_id" field.
type Ref string

// UnmarshalJSON accepts "id", {"_id":"id",...} and null.
func (r *Ref) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*r = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*r = Ref(s)
		return nil
	}
	var doc struct {
		ID string `json:"_id"`
	}
	if err := json.Unmarshal(b, &doc); err != nil {
		return err
	}
	*r = Ref(doc.ID)
	return nil
}

// String returns the bare identifier.
func (r Ref) String() string { return string(r) }

// Refs converts ids into a slice of Ref.
func Refs(ids ...string) []Ref {
	out := make([]Ref, 0, len(ids))
	for _, id := range ids {
		out = append(out, Ref(id))
	}
	return out
}

// User is a peer account as exposed by the API.
type User struct {
	ID         string    `json:"_id"`
	FullName   string    `json:"fullname"`
	Email      string    `json:"email,omitempty"`
	ProfilePic string    `json:"profilePic,omitempty"`
	CreatedAt  time.Time `json:"createdAt,omitzero"`
}

// Message is a chat message; exactly one of ReceiverID or GroupID is set.
// The receiver field keeps the server's spelling.
type Message struct {
	ID         string    `json:"_id"`
	SenderID   Ref       `json:"senderId"`
	ReceiverID Ref       `json:"recieverId,omitempty"`
	GroupID    Ref       `json:"groupId,omitempty"`
	Text       string    `json:"text,omitempty"`
	Image      string    `json:"image,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Group is a named room with a single admin. Members never include the admin.
type Group struct {
	ID        string    `json:"_id"`
	Name      string    `json:"name"`
	AdminID   Ref       `json:"adminId"`
	Members   []Ref     `json:"members"`
	CreatedAt time.Time `json:"createdAt,omitzero"`
}

// MemberIDs returns the non-admin member identifiers.
func (g Group) MemberIDs() []string {
	out := make([]string, 0, len(g.Members))
	for _, m := range g.Members {
		if m == "" || m == g.AdminID {
			continue
		}
		out = append(out, string(m))
	}
	return out
}
