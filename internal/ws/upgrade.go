package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"edushare/config"
	"edushare/internal/auth"
	"edushare/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const maxSignalSize = 64 * 1024

// ConversationAccess decides whether a user may join a conversation room.
type ConversationAccess interface {
	IsParticipant(ctx context.Context, conversationID, userID string) (bool, error)
}

// signal is a client-to-server control frame.
type signal struct {
	Type     string `json:"type"`
	Token    string `json:"token,omitempty"`
	ChatID   string `json:"chatId,omitempty"`
	UserName string `json:"userName,omitempty"`
}

func newUpgrader(allowed []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowed) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			for _, o := range allowed {
				if strings.EqualFold(o, origin) {
					return true
				}
			}
			return false
		},
	}
}

// credentialFromRequest returns the token sent with the upgrade request, if any.
func credentialFromRequest(c *gin.Context) string {
	if t := c.Query("token"); t != "" {
		return t
	}
	if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return ""
}

// UpgradeWS authenticates and upgrades a client connection. The credential comes from the
// token query parameter, a Bearer header, or a first {"type":"auth"} frame within
// WSConfig.AuthTimeout. No room is joined before authentication succeeds.
func UpgradeWS(jwtCfg *config.JWTConfig, wsCfg *config.WSConfig, hub *Hub, chats ConversationAccess) gin.HandlerFunc {
	upgrader := newUpgrader(wsCfg.AllowedOrigins)
	return func(c *gin.Context) {
		var claims *auth.Claims
		if token := credentialFromRequest(c); token != "" {
			parsed, err := auth.ParseAccessToken(jwtCfg, token)
			if err != nil {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
				return
			}
			claims = parsed
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("[ws] upgrade failed: %v", err)
			return
		}
		defer conn.Close()

		if claims == nil {
			claims, err = awaitAuthFrame(conn, jwtCfg, wsCfg.AuthTimeout)
			if err != nil {
				deadline := time.Now().Add(wsCfg.WriteWait)
				conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "authentication failed"), deadline)
				return
			}
		}

		session := NewSession(claims.UserID, claims.Name, claims.Role, wsCfg.SendBuffer)
		hub.Register(session)
		defer session.Close()
		log.Printf("[ws] user %s connected (session %s)", session.UserID, session.ID)

		hub.SendTo(session, domain.EventConnected, gin.H{"userId": session.UserID, "userName": session.Name})

		go writePump(session, conn, wsCfg)
		readPump(c.Request.Context(), conn, wsCfg, hub, chats, session)
		log.Printf("[ws] user %s disconnected (session %s)", session.UserID, session.ID)
	}
}

func awaitAuthFrame(conn *websocket.Conn, cfg *config.JWTConfig, timeout time.Duration) (*auth.Claims, error) {
	conn.SetReadLimit(maxSignalSize)
	if err := conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return nil, err
	}
	_, raw, err := conn.ReadMessage()
	if err != nil {
		return nil, err
	}
	var sig signal
	if err := json.Unmarshal(raw, &sig); err != nil || sig.Type != domain.SignalAuth {
		return nil, auth.ErrInvalidToken
	}
	claims, err := auth.ParseAccessToken(cfg, sig.Token)
	if err != nil {
		return nil, err
	}
	return claims, conn.SetReadDeadline(time.Time{})
}

// writePump copies frames from session.Send to the connection and keeps it alive with pings.
func writePump(s *Session, conn *websocket.Conn, cfg *config.WSConfig) {
	period := cfg.PongWait * 9 / 10
	if period <= 0 {
		period = 54 * time.Second
	}
	ticker := time.NewTicker(period)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()
	for {
		select {
		case msg, ok := <-s.Send:
			conn.SetWriteDeadline(time.Now().Add(cfg.WriteWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(cfg.WriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func readPump(ctx context.Context, conn *websocket.Conn, cfg *config.WSConfig, hub *Hub, chats ConversationAccess, s *Session) {
	conn.SetReadLimit(maxSignalSize)
	conn.SetReadDeadline(time.Now().Add(cfg.PongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(cfg.PongWait))
	})
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}
		conn.SetReadDeadline(time.Now().Add(cfg.PongWait))
		handleSignal(ctx, hub, chats, s, raw)
	}
}

// handleSignal applies one client control frame to the session's room membership.
func handleSignal(ctx context.Context, hub *Hub, chats ConversationAccess, s *Session, raw []byte) {
	var sig signal
	if err := json.Unmarshal(raw, &sig); err != nil {
		hub.SendTo(s, domain.EventError, gin.H{"message": "malformed frame"})
		return
	}
	switch sig.Type {
	case domain.SignalJoinChat:
		if sig.ChatID == "" {
			hub.SendTo(s, domain.EventError, gin.H{"message": "chatId is required"})
			return
		}
		if chats != nil {
			ok, err := chats.IsParticipant(ctx, sig.ChatID, s.UserID)
			if err != nil {
				log.Printf("[ws] join_chat %s for user %s: %v", sig.ChatID, s.UserID, err)
			}
			if !ok {
				hub.SendTo(s, domain.EventError, gin.H{"message": "cannot join chat"})
				return
			}
		}
		hub.Join(s, ConversationRoom(sig.ChatID))
	case domain.SignalLeaveChat:
		hub.Leave(s, ConversationRoom(sig.ChatID))
	case domain.SignalJoinAdmin:
		if s.Role != domain.RoleAdmin {
			hub.SendTo(s, domain.EventError, gin.H{"message": "admin role required"})
			return
		}
		hub.Join(s, RoleRoom(domain.RoleAdmin))
	case domain.SignalTyping, domain.SignalStopTyping:
		room := ConversationRoom(sig.ChatID)
		if !hub.IsMember(s, room) {
			return
		}
		if sig.Type == domain.SignalTyping {
			name := sig.UserName
			if name == "" {
				name = s.Name
			}
			hub.PushToRoomExcept(room, s, domain.EventUserTyping, gin.H{"userName": name})
		} else {
			hub.PushToRoomExcept(room, s, domain.EventUserStopTyping, gin.H{})
		}
	case domain.SignalAuth:
		// already authenticated
	default:
		hub.SendTo(s, domain.EventError, gin.H{"message": "unknown signal type"})
	}
}
