package app

import (
	"errors"
	"sync"

	"github.com/dkeye/roomrelay/internal/core"
	"github.com/dkeye/roomrelay/internal/domain"
	"github.com/dkeye/roomrelay/internal/metrics"
	"github.com/rs/zerolog/log"
)

type PresenceState int

const (
	Unjoined PresenceState = iota
	Joined
	Left
)

func (s PresenceState) String() string {
	switch s {
	case Unjoined:
		return "unjoined"
	case Joined:
		return "joined"
	case Left:
		return "left"
	}
	return "unknown"
}

// Presence drives the per-connection state machine on top of the Registry.
// It never delivers anything itself; every transition returns the
// notifications the transport has to send.
type Presence struct {
	reg *Registry

	mu     sync.Mutex
	states map[domain.ConnID]PresenceState
}

func NewPresence(reg *Registry) *Presence {
	return &Presence{reg: reg, states: make(map[domain.ConnID]PresenceState)}
}

// Connect registers a fresh connection in the Unjoined state.
func (p *Presence) Connect(conn domain.ConnID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.states[conn] = Unjoined
}

// State reports the state of conn; ok is false for unknown connections.
func (p *Presence) State(conn domain.ConnID) (PresenceState, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	s, ok := p.states[conn]
	return s, ok
}

func (p *Presence) setState(conn domain.ConnID, s PresenceState) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.states[conn]; ok {
		p.states[conn] = s
	}
}

// Join handles a join request. Rejections are reported to the joiner only and
// leave its state unchanged.
func (p *Presence) Join(conn domain.ConnID, room domain.RoomID, user domain.UserID) (core.Result, error) {
	var res core.Result
	state, ok := p.State(conn)
	if !ok {
		return res, domain.ErrUnknownConnection
	}
	if state == Left {
		return res, domain.ErrConnectionLeft
	}

	joined, err := p.reg.Join(room, conn, user)
	switch {
	case errors.Is(err, domain.ErrNoUserID):
		metrics.JoinsTotal.WithLabelValues("no_user_id").Inc()
		res.Send(core.ToConns(core.NtNoUserID, nil, conn))
		return res, nil
	case errors.Is(err, domain.ErrRoomFull):
		metrics.JoinsTotal.WithLabelValues("room_full").Inc()
		res.Send(core.ToConns(core.NtRoomFull, nil, conn))
		return res, nil
	case err != nil:
		return res, err
	}
	metrics.JoinsTotal.WithLabelValues("accepted").Inc()

	p.setState(conn, Joined)
	if joined.Previous != nil {
		res.Merge(departureNotices(joined.Previous))
	}
	for _, d := range joined.Displaced {
		// A replaced record has no path back to Unjoined.
		p.setState(d, Left)
		res.Groups = append(res.Groups, core.GroupChange{Conn: d, Reset: true})
		res.Send(core.ToConns(core.NtLeft, map[string]string{"reason": "replaced"}, d))
		log.Info().Str("module", "app.presence").Str("conn", string(d)).Str("room", string(room)).
			Str("user", string(user)).Msg("record replaced by rejoin")
	}
	res.Groups = append(res.Groups, core.GroupChange{
		Conn:  conn,
		Reset: true,
		Join:  []domain.Address{domain.Address(room), domain.Address(user)},
	})
	res.Send(core.ToConns(core.NtJoinedMembers, joined.Members, Conns(joined.Members)...))
	return res, nil
}

// Snapshot answers a media-ready query with every other member of room.
func (p *Presence) Snapshot(conn domain.ConnID, room domain.RoomID) core.Result {
	var res core.Result
	res.Send(core.ToConns(core.NtAllUsers, p.reg.OtherMembers(room, conn), conn))
	return res
}

// Leave is the explicit leave signal. The connection stays open but is Left.
func (p *Presence) Leave(conn domain.ConnID) (core.Result, error) {
	state, ok := p.State(conn)
	if !ok {
		return core.Result{}, domain.ErrUnknownConnection
	}
	if state == Left {
		return core.Result{}, domain.ErrConnectionLeft
	}
	p.setState(conn, Left)
	log.Info().Str("module", "app.presence").Str("conn", string(conn)).Str("from", state.String()).Msg("left")
	res := p.depart(conn)
	res.Groups = append(res.Groups, core.GroupChange{Conn: conn, Reset: true})
	res.Send(core.ToConns(core.NtLeft, nil, conn))
	return res, nil
}

// Disconnect is the transport termination signal. It is idempotent and a
// no-op for connections that never joined.
func (p *Presence) Disconnect(conn domain.ConnID) core.Result {
	p.mu.Lock()
	delete(p.states, conn)
	p.mu.Unlock()
	return p.depart(conn)
}

func (p *Presence) depart(conn domain.ConnID) core.Result {
	dep := p.reg.Leave(conn)
	if dep == nil {
		return core.Result{}
	}
	return departureNotices(dep)
}

func departureNotices(dep *Departure) core.Result {
	var res core.Result
	if len(dep.Remaining) == 0 {
		return res
	}
	rest := Conns(dep.Remaining)
	res.Send(core.ToConns(core.NtUserLeft, dep.Conn, rest...))
	res.Send(core.ToConns(core.NtMembersLeft, dep.Remaining, rest...))
	return res
}
