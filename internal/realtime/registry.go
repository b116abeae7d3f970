// Package realtime owns the process-wide live-connection state: which
// connections belong to which user and which rooms each connection has
// joined. The registry is an injected component with explicit lifecycle,
// created at server start and drained per-connection on disconnect.
package realtime

import (
	"sync"
)

// Conn is the outbound half of one live client channel. Send enqueues an
// event for delivery and reports whether the connection accepted it;
// a full buffer or closed connection yields false, never an error.
type Conn interface {
	Send(event string, payload any) bool
}

// Session ties one authenticated connection to its user identity.
// All mutation goes through the Registry.
type Session struct {
	UserID string
	conn   Conn
}

// Registry tracks live sessions per user and per room. Registering a
// session implicitly subscribes the user's personal channel for the
// connection's lifetime; room membership is managed explicitly and is
// purely additive (joining triggers no history replay).
//
// Safe for concurrent use from many connect/disconnect events.
type Registry struct {
	mu     sync.RWMutex
	byUser map[string]map[*Session]struct{}
	byRoom map[string]map[*Session]struct{}
	rooms  map[*Session]map[string]struct{}
}

func NewRegistry() *Registry {
	return &Registry{
		byUser: make(map[string]map[*Session]struct{}),
		byRoom: make(map[string]map[*Session]struct{}),
		rooms:  make(map[*Session]map[string]struct{}),
	}
}

// Register adds a connection to the user's live set. The caller must
// have authenticated the connection already; an empty identity is
// rejected. A user may hold many concurrent sessions (multi-device).
func (r *Registry) Register(userID string, conn Conn) (*Session, error) {
	if userID == "" || conn == nil {
		return nil, ErrAnonymousConnection
	}
	s := &Session{UserID: userID, conn: conn}

	r.mu.Lock()
	defer r.mu.Unlock()
	set, ok := r.byUser[userID]
	if !ok {
		set = make(map[*Session]struct{})
		r.byUser[userID] = set
	}
	set[s] = struct{}{}
	r.rooms[s] = make(map[string]struct{})
	return s, nil
}

// Unregister removes the session from its user set and every room it
// joined. Idempotent.
func (r *Registry) Unregister(s *Session) {
	if s == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	joined, ok := r.rooms[s]
	if !ok {
		return
	}
	for roomKey := range joined {
		r.dropFromRoomLocked(s, roomKey)
	}
	delete(r.rooms, s)
	if set, ok := r.byUser[s.UserID]; ok {
		delete(set, s)
		if len(set) == 0 {
			delete(r.byUser, s.UserID)
		}
	}
}

// JoinRoom subscribes the session to a multicast group. A session may
// belong to any number of rooms; joining twice is a no-op.
func (r *Registry) JoinRoom(s *Session, roomKey string) {
	if s == nil || roomKey == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	joined, ok := r.rooms[s]
	if !ok {
		// already unregistered
		return
	}
	joined[roomKey] = struct{}{}
	set, ok := r.byRoom[roomKey]
	if !ok {
		set = make(map[*Session]struct{})
		r.byRoom[roomKey] = set
	}
	set[s] = struct{}{}
}

// LeaveRoom unsubscribes the session from a room. Idempotent.
func (r *Registry) LeaveRoom(s *Session, roomKey string) {
	if s == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if joined, ok := r.rooms[s]; ok {
		delete(joined, roomKey)
	}
	r.dropFromRoomLocked(s, roomKey)
}

func (r *Registry) dropFromRoomLocked(s *Session, roomKey string) {
	if set, ok := r.byRoom[roomKey]; ok {
		delete(set, s)
		if len(set) == 0 {
			delete(r.byRoom, roomKey)
		}
	}
}

// RoomSessions snapshots the sessions currently joined to a room.
func (r *Registry) RoomSessions(roomKey string) []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Session, 0, len(r.byRoom[roomKey]))
	for s := range r.byRoom[roomKey] {
		out = append(out, s)
	}
	return out
}

// UserSessions snapshots a user's live sessions (the personal channel).
func (r *Registry) UserSessions(userID string) []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Session, 0, len(r.byUser[userID]))
	for s := range r.byUser[userID] {
		out = append(out, s)
	}
	return out
}

// Online reports whether the user holds at least one live session.
func (r *Registry) Online(userID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byUser[userID]) > 0
}
