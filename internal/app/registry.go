package app

import (
	"fmt"
	"slices"
	"sort"
	"sync"

	"github.com/dkeye/roomrelay/internal/domain"
	"github.com/dkeye/roomrelay/internal/metrics"
	"github.com/rs/zerolog/log"
)

// Departure describes a record removed from a room.
type Departure struct {
	Room      domain.RoomID
	Conn      domain.ConnID
	User      domain.UserID
	Remaining []domain.Participant
}

// JoinResult reports an accepted join.
type JoinResult struct {
	Room    domain.RoomID
	Members []domain.Participant
	// Previous is set when the connection was moved out of another room.
	Previous *Departure
	// Displaced lists other connections whose record carried the same user id.
	Displaced []domain.ConnID
}

// Registry owns the room -> participants mapping and the connection -> room
// index. Join and Leave are the only mutation paths; both update the two
// maps under one lock so nobody observes one without the other.
type Registry struct {
	mu       sync.RWMutex
	capacity int
	rooms    map[domain.RoomID][]domain.Participant
	index    map[domain.ConnID]domain.RoomID
}

func NewRegistry(capacity int) *Registry {
	if capacity < 1 {
		capacity = 1
	}
	return &Registry{
		capacity: capacity,
		rooms:    make(map[domain.RoomID][]domain.Participant),
		index:    make(map[domain.ConnID]domain.RoomID),
	}
}

func (r *Registry) Capacity() int { return r.capacity }

// Join adds conn to room as user. A record with the same user id is replaced
// before capacity is checked, so a rejoin never fails with ErrRoomFull.
// Rejections leave the registry untouched.
func (r *Registry) Join(room domain.RoomID, conn domain.ConnID, user domain.UserID) (JoinResult, error) {
	if user == "" {
		return JoinResult{}, domain.ErrNoUserID
	}
	if room == "" {
		return JoinResult{}, fmt.Errorf("join without room id: %w", domain.ErrBadPayload)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	current := r.rooms[room]
	kept := make([]domain.Participant, 0, len(current)+1)
	var displaced []domain.ConnID
	for _, p := range current {
		switch {
		case p.Conn == conn:
		case p.User == user:
			displaced = append(displaced, p.Conn)
		default:
			kept = append(kept, p)
		}
	}
	if len(kept) >= r.capacity {
		log.Info().Str("module", "app.registry").Str("room", string(room)).Str("conn", string(conn)).
			Int("members", len(current)).Int("capacity", r.capacity).Msg("room full")
		return JoinResult{}, domain.ErrRoomFull
	}

	res := JoinResult{Room: room, Displaced: displaced}
	if prev, ok := r.index[conn]; ok && prev != room {
		res.Previous = r.removeLocked(conn)
	}
	for _, d := range displaced {
		delete(r.index, d)
	}
	kept = append(kept, domain.NewParticipant(conn, user))
	r.rooms[room] = kept
	r.index[conn] = room
	res.Members = slices.Clone(kept)
	metrics.RoomsActive.Set(float64(len(r.rooms)))

	log.Info().Str("module", "app.registry").Str("room", string(room)).Str("conn", string(conn)).
		Str("user", string(user)).Int("members", len(kept)).Int("displaced", len(displaced)).Msg("member joined")
	return res, nil
}

// Leave removes the record of conn, pruning the room when it empties.
// It returns nil when conn was not joined anywhere.
func (r *Registry) Leave(conn domain.ConnID) *Departure {
	r.mu.Lock()
	defer r.mu.Unlock()
	dep := r.removeLocked(conn)
	if dep != nil {
		metrics.RoomsActive.Set(float64(len(r.rooms)))
		log.Info().Str("module", "app.registry").Str("room", string(dep.Room)).Str("conn", string(conn)).
			Int("remaining", len(dep.Remaining)).Msg("member left")
	}
	return dep
}

func (r *Registry) removeLocked(conn domain.ConnID) *Departure {
	room, ok := r.index[conn]
	if !ok {
		return nil
	}
	dep := &Departure{Room: room, Conn: conn}
	members := r.rooms[room]
	kept := make([]domain.Participant, 0, len(members))
	for _, p := range members {
		if p.Conn == conn {
			dep.User = p.User
			continue
		}
		kept = append(kept, p)
	}
	if len(kept) == 0 {
		delete(r.rooms, room)
	} else {
		r.rooms[room] = kept
	}
	delete(r.index, conn)
	dep.Remaining = slices.Clone(kept)
	return dep
}

// RoomOf returns the room conn is currently joined to.
func (r *Registry) RoomOf(conn domain.ConnID) (domain.RoomID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	room, ok := r.index[conn]
	return room, ok
}

// MembersOf returns a snapshot of the room roster in join order.
func (r *Registry) MembersOf(room domain.RoomID) []domain.Participant {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.rooms[room])
}

// OtherMembers is MembersOf without the excluded connection.
func (r *Registry) OtherMembers(room domain.RoomID, excluding domain.ConnID) []domain.Participant {
	r.mu.RLock()
	defer r.mu.RUnlock()
	members := r.rooms[room]
	out := make([]domain.Participant, 0, len(members))
	for _, p := range members {
		if p.Conn != excluding {
			out = append(out, p)
		}
	}
	return out
}

func (r *Registry) List() []domain.RoomInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.RoomInfo, 0, len(r.rooms))
	for id, members := range r.rooms {
		out = append(out, domain.RoomInfo{ID: id, MemberCount: len(members), Capacity: r.capacity})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Conns extracts connection handles from a roster.
func Conns(members []domain.Participant) []domain.ConnID {
	out := make([]domain.ConnID, 0, len(members))
	for _, p := range members {
		out = append(out, p.Conn)
	}
	return out
}
