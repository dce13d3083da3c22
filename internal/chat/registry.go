package chat

import (
	"sync"

	"wtforum/internal/observability"
)

// RoomRegistry tracks which members are currently joined to which topic room.
// Rooms are keyed by topic slug. The registry is an owned component: callers
// receive a handle from NewRoomRegistry and pass it where needed.
//
// Membership is process-local and ephemeral. A restart empties every room;
// clients rejoin and backfill from the message history endpoint.
type RoomRegistry struct {
	mu    sync.RWMutex
	rooms map[string]map[string]Member
}

func NewRoomRegistry() *RoomRegistry {
	return &RoomRegistry{rooms: make(map[string]map[string]Member)}
}

// Join adds m to the room for topicSlug, creating the room if needed.
// Joining a room the member already belongs to is a no-op.
func (r *RoomRegistry) Join(topicSlug string, m Member) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[topicSlug]
	if !ok {
		room = make(map[string]Member)
		r.rooms[topicSlug] = room
	}
	if _, joined := room[m.ID()]; joined {
		return
	}
	room[m.ID()] = m
	observability.RoomMembers.WithLabelValues(topicSlug).Set(float64(len(room)))
}

// Leave removes m from the room for topicSlug. Leaving a room the member is
// not in, or a room that does not exist, is a no-op. Emptied rooms are
// removed from the map.
func (r *RoomRegistry) Leave(topicSlug string, m Member) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.leaveLocked(topicSlug, m.ID())
}

// LeaveAll removes m from every room it belongs to. Used on disconnect.
func (r *RoomRegistry) LeaveAll(m Member) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := m.ID()
	for slug, room := range r.rooms {
		if _, ok := room[id]; ok {
			r.leaveLocked(slug, id)
		}
	}
}

func (r *RoomRegistry) leaveLocked(topicSlug, id string) {
	room, ok := r.rooms[topicSlug]
	if !ok {
		return
	}
	if _, joined := room[id]; !joined {
		return
	}
	delete(room, id)
	if len(room) == 0 {
		delete(r.rooms, topicSlug)
		observability.RoomMembers.DeleteLabelValues(topicSlug)
		return
	}
	observability.RoomMembers.WithLabelValues(topicSlug).Set(float64(len(room)))
}

// Members returns a snapshot of the room's current members. The slice is a
// copy; later joins and leaves do not affect it.
func (r *RoomRegistry) Members(topicSlug string) []Member {
	r.mu.RLock()
	defer r.mu.RUnlock()

	room, ok := r.rooms[topicSlug]
	if !ok {
		return nil
	}
	members := make([]Member, 0, len(room))
	for _, m := range room {
		members = append(members, m)
	}
	return members
}

// RoomCount returns the number of non-empty rooms.
func (r *RoomRegistry) RoomCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}
