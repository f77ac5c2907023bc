package ws

import (
	"encoding/json"
	"log"
	"sync"
)

// Frame is the envelope of every server-pushed event.
type Frame struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Hub is the process-wide session registry, room membership table and delivery bridge.
// It holds no durable state.
type Hub struct {
	mu sync.RWMutex
	// session -> joined room keys
	sessions map[*Session]map[string]struct{}
	// room key -> sessions
	rooms map[string]map[*Session]struct{}

	// dispatch serializes pushes so that frames reach each session's buffer in call order.
	dispatch sync.Mutex
}

func NewHub() *Hub {
	return &Hub{
		sessions: make(map[*Session]map[string]struct{}),
		rooms:    make(map[string]map[*Session]struct{}),
	}
}

// Register adds an authenticated session and joins it to its personal room.
func (h *Hub) Register(s *Session) {
	s.mu.Lock()
	s.hub = h
	s.mu.Unlock()
	h.mu.Lock()
	if _, ok := h.sessions[s]; !ok {
		h.sessions[s] = make(map[string]struct{})
	}
	h.mu.Unlock()
	h.Join(s, PersonalRoom(s.UserID))
}

// Unregister removes s from every room it joined and from the registry.
func (h *Hub) Unregister(s *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	joined, ok := h.sessions[s]
	if !ok {
		return
	}
	for key := range joined {
		h.removeLocked(key, s)
	}
	delete(h.sessions, s)
}

// Join is idempotent. It returns false for unregistered sessions and invalid rooms.
func (h *Hub) Join(s *Session, r Room) bool {
	if !r.Valid() {
		return false
	}
	key := r.String()
	h.mu.Lock()
	defer h.mu.Unlock()
	joined, ok := h.sessions[s]
	if !ok {
		return false
	}
	joined[key] = struct{}{}
	members := h.rooms[key]
	if members == nil {
		members = make(map[*Session]struct{})
		h.rooms[key] = members
	}
	members[s] = struct{}{}
	return true
}

func (h *Hub) Leave(s *Session, r Room) {
	key := r.String()
	h.mu.Lock()
	defer h.mu.Unlock()
	if joined, ok := h.sessions[s]; ok {
		delete(joined, key)
	}
	h.removeLocked(key, s)
}

func (h *Hub) removeLocked(key string, s *Session) {
	if m := h.rooms[key]; m != nil {
		delete(m, s)
		if len(m) == 0 {
			delete(h.rooms, key)
		}
	}
}

func (h *Hub) IsMember(s *Session, r Room) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.rooms[r.String()][s]
	return ok
}

func (h *Hub) Members(r Room) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[r.String()])
}

func (h *Hub) SessionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// Rooms lists the rooms s has joined.
func (h *Hub) Rooms(s *Session) []Room {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]Room, 0, len(h.sessions[s]))
	for key := range h.sessions[s] {
		if r, ok := ParseRoom(key); ok {
			out = append(out, r)
		}
	}
	return out
}

// PushToRoom enqueues the event to every session currently in r and returns how many
// sessions accepted it. An empty room is not an error.
func (h *Hub) PushToRoom(r Room, event string, payload interface{}) int {
	return h.pushToRoom(r, nil, event, payload)
}

// PushToRoomExcept is PushToRoom without the originating session.
func (h *Hub) PushToRoomExcept(r Room, except *Session, event string, payload interface{}) int {
	return h.pushToRoom(r, except, event, payload)
}

func (h *Hub) PushToUser(userID, event string, payload interface{}) int {
	return h.PushToRoom(PersonalRoom(userID), event, payload)
}

// BroadcastAll reaches every live session regardless of room.
func (h *Hub) BroadcastAll(event string, payload interface{}) int {
	data, ok := encodeFrame(event, payload)
	if !ok {
		return 0
	}
	h.dispatch.Lock()
	defer h.dispatch.Unlock()
	h.mu.RLock()
	targets := make([]*Session, 0, len(h.sessions))
	for s := range h.sessions {
		targets = append(targets, s)
	}
	h.mu.RUnlock()
	return deliver(targets, event, data)
}

// SendTo enqueues an event for a single session.
func (h *Hub) SendTo(s *Session, event string, payload interface{}) bool {
	data, ok := encodeFrame(event, payload)
	if !ok {
		return false
	}
	h.dispatch.Lock()
	defer h.dispatch.Unlock()
	return deliver([]*Session{s}, event, data) == 1
}

func (h *Hub) pushToRoom(r Room, except *Session, event string, payload interface{}) int {
	if !r.Valid() {
		return 0
	}
	data, ok := encodeFrame(event, payload)
	if !ok {
		return 0
	}
	h.dispatch.Lock()
	defer h.dispatch.Unlock()
	h.mu.RLock()
	members := h.rooms[r.String()]
	targets := make([]*Session, 0, len(members))
	for s := range members {
		if s != except {
			targets = append(targets, s)
		}
	}
	h.mu.RUnlock()
	return deliver(targets, event, data)
}

func deliver(targets []*Session, event string, data []byte) int {
	n := 0
	for _, s := range targets {
		if s.enqueue(data) {
			n++
		} else {
			log.Printf("[ws] dropped %s for session %s (user %s): buffer full or closed", event, s.ID, s.UserID)
		}
	}
	return n
}

func encodeFrame(event string, payload interface{}) ([]byte, bool) {
	data, err := json.Marshal(Frame{Event: event, Data: payload})
	if err != nil {
		log.Printf("[ws] encode %s: %v", event, err)
		return nil, false
	}
	return data, true
}
