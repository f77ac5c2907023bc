package ws

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"edushare/config"
	"edushare/internal/auth"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAccess map[string][]string

func (s stubAccess) IsParticipant(_ context.Context, conversationID, userID string) (bool, error) {
	for _, id := range s[conversationID] {
		if id == userID {
			return true, nil
		}
	}
	return false, nil
}

type wsFixture struct {
	hub    *Hub
	jwt    *config.JWTConfig
	server *httptest.Server
}

func newWSFixture(t *testing.T, access ConversationAccess) *wsFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	jwtCfg := &config.JWTConfig{AccessSecret: "test-secret", AccessExpiry: time.Hour, Issuer: "test"}
	wsCfg := &config.WSConfig{
		AuthTimeout: 300 * time.Millisecond,
		WriteWait:   time.Second,
		PongWait:    10 * time.Second,
		SendBuffer:  16,
	}
	hub := NewHub()
	r := gin.New()
	r.GET("/ws", UpgradeWS(jwtCfg, wsCfg, hub, access))
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return &wsFixture{hub: hub, jwt: jwtCfg, server: srv}
}

func (f *wsFixture) url(query string) string {
	u := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/ws"
	if query != "" {
		u += "?" + query
	}
	return u
}

func (f *wsFixture) token(t *testing.T, userID, name, role string) string {
	t.Helper()
	tok, err := auth.GenerateAccessToken(f.jwt, userID, name, role)
	require.NoError(t, err)
	return tok
}

func readFrame(t *testing.T, conn *websocket.Conn) Frame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var f Frame
	require.NoError(t, conn.ReadJSON(&f))
	return f
}

func dial(t *testing.T, url string, header http.Header) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestUpgradeWithQueryToken(t *testing.T) {
	f := newWSFixture(t, nil)
	conn := dial(t, f.url("token="+f.token(t, "u1", "Ann", "student")), nil)

	hello := readFrame(t, conn)
	assert.Equal(t, "connected", hello.Event)
	assert.Equal(t, 1, f.hub.Members(PersonalRoom("u1")))

	assert.Equal(t, 1, f.hub.PushToUser("u1", "new_notification", map[string]string{"title": "hi"}))
	got := readFrame(t, conn)
	assert.Equal(t, "new_notification", got.Event)
}

func TestUpgradeWithBearerHeader(t *testing.T) {
	f := newWSFixture(t, nil)
	h := http.Header{}
	h.Set("Authorization", "Bearer "+f.token(t, "u1", "Ann", "student"))
	conn := dial(t, f.url(""), h)
	assert.Equal(t, "connected", readFrame(t, conn).Event)
}

func TestUpgradeRejectsInvalidToken(t *testing.T) {
	f := newWSFixture(t, nil)
	_, resp, err := websocket.DefaultDialer.Dial(f.url("token=garbage"), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, 0, f.hub.SessionCount())
}

func TestFirstFrameAuth(t *testing.T) {
	f := newWSFixture(t, nil)
	conn := dial(t, f.url(""), nil)
	require.NoError(t, conn.WriteJSON(map[string]string{"type": "auth", "token": f.token(t, "u1", "Ann", "student")}))
	assert.Equal(t, "connected", readFrame(t, conn).Event)
}

func TestAuthTimeoutClosesConnection(t *testing.T) {
	f := newWSFixture(t, nil)
	conn := dial(t, f.url(""), nil)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	require.Error(t, err)
	assert.True(t, websocket.IsCloseError(err, websocket.ClosePolicyViolation))
	assert.Equal(t, 0, f.hub.SessionCount())
}

func TestJoinChatAndTyping(t *testing.T) {
	f := newWSFixture(t, stubAccess{"c1": {"u1", "u2"}})
	ann := dial(t, f.url("token="+f.token(t, "u1", "Ann", "student")), nil)
	bob := dial(t, f.url("token="+f.token(t, "u2", "Bob", "student")), nil)
	readFrame(t, ann)
	readFrame(t, bob)

	require.NoError(t, ann.WriteJSON(map[string]string{"type": "join_chat", "chatId": "c1"}))
	require.NoError(t, bob.WriteJSON(map[string]string{"type": "join_chat", "chatId": "c1"}))
	require.Eventually(t, func() bool { return f.hub.Members(ConversationRoom("c1")) == 2 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, ann.WriteJSON(map[string]string{"type": "typing", "chatId": "c1", "userName": "Ann"}))
	got := readFrame(t, bob)
	assert.Equal(t, "user_typing", got.Event)
	assert.Equal(t, map[string]interface{}{"userName": "Ann"}, got.Data)

	require.NoError(t, ann.WriteJSON(map[string]string{"type": "stop_typing", "chatId": "c1"}))
	assert.Equal(t, "user_stop_typing", readFrame(t, bob).Event)
}

func TestJoinChatDeniedForNonParticipant(t *testing.T) {
	f := newWSFixture(t, stubAccess{"c1": {"u1", "u2"}})
	eve := dial(t, f.url("token="+f.token(t, "u3", "Eve", "student")), nil)
	readFrame(t, eve)

	require.NoError(t, eve.WriteJSON(map[string]string{"type": "join_chat", "chatId": "c1"}))
	got := readFrame(t, eve)
	assert.Equal(t, "error", got.Event)
	assert.Equal(t, 0, f.hub.Members(ConversationRoom("c1")))
}

func TestJoinAdminRequiresRole(t *testing.T) {
	f := newWSFixture(t, nil)
	student := dial(t, f.url("token="+f.token(t, "u1", "Ann", "student")), nil)
	admin := dial(t, f.url("token="+f.token(t, "a1", "Root", "admin")), nil)
	readFrame(t, student)
	readFrame(t, admin)

	require.NoError(t, student.WriteJSON(map[string]string{"type": "join_admin"}))
	assert.Equal(t, "error", readFrame(t, student).Event)

	require.NoError(t, admin.WriteJSON(map[string]string{"type": "join_admin"}))
	require.Eventually(t, func() bool { return f.hub.Members(RoleRoom("admin")) == 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestDisconnectLeavesAllRooms(t *testing.T) {
	f := newWSFixture(t, stubAccess{"c1": {"u1"}})
	conn := dial(t, f.url("token="+f.token(t, "u1", "Ann", "student")), nil)
	readFrame(t, conn)
	require.NoError(t, conn.WriteJSON(map[string]string{"type": "join_chat", "chatId": "c1"}))
	require.Eventually(t, func() bool { return f.hub.Members(ConversationRoom("c1")) == 1 }, 2*time.Second, 10*time.Millisecond)

	conn.Close()
	require.Eventually(t, func() bool { return f.hub.SessionCount() == 0 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 0, f.hub.Members(ConversationRoom("c1")))
	assert.Equal(t, 0, f.hub.PushToUser("u1", "new_notification", nil))
}
