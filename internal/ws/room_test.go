package ws

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoomString(t *testing.T) {
	assert.Equal(t, "user:u1", PersonalRoom("u1").String())
	assert.Equal(t, "chat:c1", ConversationRoom("c1").String())
	assert.Equal(t, "admin_room", RoleRoom("admin").String())
	assert.Equal(t, "", Room{}.String())
}

func TestParseRoom(t *testing.T) {
	for _, r := range []Room{PersonalRoom("u1"), ConversationRoom("c1"), RoleRoom("admin")} {
		got, ok := ParseRoom(r.String())
		assert.True(t, ok)
		assert.Equal(t, r, got)
	}

	_, ok := ParseRoom("lobby")
	assert.False(t, ok)
	_, ok = ParseRoom("user:")
	assert.False(t, ok)
}

func TestRoomValid(t *testing.T) {
	assert.False(t, Room{}.Valid())
	assert.False(t, PersonalRoom("").Valid())
	assert.True(t, ConversationRoom("c").Valid())
}

func TestRoleRoomRejectsColon(t *testing.T) {
	r := RoleRoom("user:x")
	assert.False(t, r.Valid())
	assert.Equal(t, "", r.String())

	got, ok := ParseRoom("user:x_room")
	require.True(t, ok)
	assert.Equal(t, PersonalRoom("x_room"), got)
	_, ok = ParseRoom("a:b_room")
	assert.False(t, ok)
}
