package signal

import (
	"context"
	"errors"

	"github.com/dkeye/roomrelay/internal/app"
	"github.com/dkeye/roomrelay/internal/app/orch"
	"github.com/dkeye/roomrelay/internal/core"
	"github.com/dkeye/roomrelay/internal/domain"
	"github.com/dkeye/roomrelay/internal/metrics"
	"github.com/rs/zerolog/log"
)

type registration struct {
	id   domain.ConnID
	conn core.SignalConnection
}

type inbound struct {
	from domain.ConnID
	env  core.Envelope
}

// Hub is the single goroutine that feeds events to the orchestrator and
// delivers what comes back. Channels are unbuffered so a connection's events
// are handled in the order it sent them.
type Hub struct {
	orch   *orch.Orchestrator
	policy app.Policy

	conns  map[domain.ConnID]core.SignalConnection
	groups *Groups

	register   chan registration
	unregister chan domain.ConnID
	inbound    chan inbound
	done       chan struct{}
}

func NewHub(o *orch.Orchestrator, policy app.Policy) *Hub {
	if policy == nil {
		policy = app.SimplePolicy{}
	}
	return &Hub{
		orch:       o,
		policy:     policy,
		conns:      make(map[domain.ConnID]core.SignalConnection),
		groups:     NewGroups(),
		register:   make(chan registration),
		unregister: make(chan domain.ConnID),
		inbound:    make(chan inbound),
		done:       make(chan struct{}),
	}
}

var ErrHubStopped = errors.New("hub stopped")

// Register hands a new connection to the hub.
func (h *Hub) Register(id domain.ConnID, conn core.SignalConnection) error {
	select {
	case h.register <- registration{id: id, conn: conn}:
		return nil
	case <-h.done:
		return ErrHubStopped
	}
}

// Unregister reports a terminated connection.
func (h *Hub) Unregister(id domain.ConnID) {
	select {
	case h.unregister <- id:
	case <-h.done:
	}
}

// Submit queues one inbound event; it blocks until the hub takes it.
func (h *Hub) Submit(from domain.ConnID, env core.Envelope) error {
	select {
	case h.inbound <- inbound{from: from, env: env}:
		return nil
	case <-h.done:
		return ErrHubStopped
	}
}

// Run processes events until ctx is cancelled, then closes every connection.
func (h *Hub) Run(ctx context.Context) error {
	log.Info().Str("module", "signal.hub").Msg("hub started")
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for id, c := range h.conns {
				c.Close()
				h.orch.Disconnect(id)
				delete(h.conns, id)
			}
			metrics.ConnectionsActive.Set(0)
			log.Info().Str("module", "signal.hub").Msg("hub stopped")
			return nil

		case r := <-h.register:
			h.conns[r.id] = r.conn
			h.groups.Add(r.id)
			h.orch.Connect(r.id)
			metrics.ConnectionsActive.Inc()

		case id := <-h.unregister:
			if _, ok := h.conns[id]; !ok {
				continue
			}
			delete(h.conns, id)
			h.groups.RemoveAll(id)
			metrics.ConnectionsActive.Dec()
			h.deliver(h.orch.Disconnect(id))

		case in := <-h.inbound:
			if _, ok := h.conns[in.from]; !ok {
				continue
			}
			h.deliver(h.orch.Dispatch(in.from, in.env))
		}
	}
}

func (h *Hub) deliver(res core.Result) {
	for _, g := range res.Groups {
		if _, ok := h.conns[g.Conn]; !ok {
			continue
		}
		if g.Reset {
			h.groups.Reset(g.Conn)
		}
		h.groups.Add(g.Conn, g.Join...)
	}

	for _, out := range res.Out {
		targets := out.To
		if len(targets) == 0 && out.Address != "" {
			targets = h.groups.Resolve(out.Address)
		}
		if len(targets) == 0 {
			log.Debug().Str("module", "signal.hub").Str("event", out.Event).
				Str("address", string(out.Address)).Msg("no recipients, dropped")
			continue
		}
		frame, err := core.Encode(out.Event, out.Payload)
		if err != nil {
			log.Error().Err(err).Str("module", "signal.hub").Str("event", out.Event).Msg("encode")
			continue
		}
		for _, id := range targets {
			h.send(id, out.Event, frame)
		}
	}
}

func (h *Hub) send(id domain.ConnID, event string, frame core.Frame) {
	c, ok := h.conns[id]
	if !ok {
		return
	}
	err := c.TrySend(frame)
	if err == nil {
		return
	}
	if !errors.Is(err, core.ErrBackpressure) {
		log.Debug().Err(err).Str("module", "signal.hub").Str("conn", string(id)).Msg("send failed")
		return
	}
	switch h.policy.OnBackPressure(id, event) {
	case app.KickMember:
		log.Warn().Str("module", "signal.hub").Str("conn", string(id)).Str("event", event).Msg("send queue full, closing")
		c.Close()
	case app.DropFrame:
		metrics.FramesDropped.Inc()
		log.Warn().Str("module", "signal.hub").Str("conn", string(id)).Str("event", event).Msg("send queue full, frame dropped")
	}
}
