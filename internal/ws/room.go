package ws

import "strings"

type RoomKind uint8

const (
	roomInvalid RoomKind = iota
	RoomPersonal
	RoomConversation
	RoomRole
)

// Room addresses a multicast group of sessions. The zero Room is invalid.
type Room struct {
	kind RoomKind
	id   string
}

// PersonalRoom is auto-joined by every session of userID.
func PersonalRoom(userID string) Room { return Room{kind: RoomPersonal, id: userID} }

// ConversationRoom is joined when a client opens a conversation view.
func ConversationRoom(conversationID string) Room {
	return Room{kind: RoomConversation, id: conversationID}
}

// RoleRoom groups sessions by role, e.g. RoleRoom("admin"). A role containing ':' would
// collide with the user: and chat: forms, so it yields the invalid Room.
func RoleRoom(role string) Room {
	if strings.Contains(role, ":") {
		return Room{}
	}
	return Room{kind: RoomRole, id: role}
}

func (r Room) Kind() RoomKind { return r.kind }
func (r Room) ID() string     { return r.id }

func (r Room) Valid() bool {
	return r.kind != roomInvalid && r.id != ""
}

// String is the wire form: user:{id}, chat:{id}, {role}_room.
func (r Room) String() string {
	switch r.kind {
	case RoomPersonal:
		return "user:" + r.id
	case RoomConversation:
		return "chat:" + r.id
	case RoomRole:
		return r.id + "_room"
	default:
		return ""
	}
}

// ParseRoom is the inverse of String.
func ParseRoom(s string) (Room, bool) {
	var r Room
	switch {
	case strings.HasPrefix(s, "user:"):
		r = PersonalRoom(strings.TrimPrefix(s, "user:"))
	case strings.HasPrefix(s, "chat:"):
		r = ConversationRoom(strings.TrimPrefix(s, "chat:"))
	case strings.HasSuffix(s, "_room"):
		r = RoleRoom(strings.TrimSuffix(s, "_room"))
	}
	return r, r.Valid()
}
