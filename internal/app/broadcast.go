package app

import (
	"github.com/dkeye/roomrelay/internal/core"
	"github.com/dkeye/roomrelay/internal/domain"
	"github.com/dkeye/roomrelay/internal/metrics"
	"github.com/rs/zerolog/log"
)

// Broadcaster is the single fan-out primitive for room-scoped events.
type Broadcaster struct {
	reg *Registry
}

func NewBroadcaster(reg *Registry) *Broadcaster {
	return &Broadcaster{reg: reg}
}

// Broadcast addresses event to every member of room except the sender and
// reports how many recipients delivery will be attempted for.
func (b *Broadcaster) Broadcast(room domain.RoomID, event string, payload any, excluding domain.ConnID) (core.Outbound, int) {
	rest := Conns(b.reg.OtherMembers(room, excluding))
	metrics.BroadcastsTotal.WithLabelValues(event).Inc()
	log.Debug().Str("module", "app.broadcast").Str("room", string(room)).Str("event", event).
		Str("from", string(excluding)).Int("recipients", len(rest)).Msg("broadcast")
	return core.ToConns(event, payload, rest...), len(rest)
}
