package orch

import (
	"encoding/json"
	"errors"

	"github.com/dkeye/roomrelay/internal/app"
	"github.com/dkeye/roomrelay/internal/core"
	"github.com/dkeye/roomrelay/internal/domain"
	"github.com/rs/zerolog/log"
)

// Handler turns one inbound payload into notifications for the transport.
type Handler func(from domain.ConnID, payload json.RawMessage) (core.Result, error)

// Orchestrator owns the dispatch table. The transport feeds it one event at a
// time and delivers whatever comes back.
type Orchestrator struct {
	Registry    *app.Registry
	Presence    *app.Presence
	Relay       *app.Relay
	Broadcaster *app.Broadcaster
	Forwarder   *app.Forwarder
	Routes      Routes

	handlers map[string]Handler
}

func New(reg *app.Registry, relay *app.Relay, fwd *app.Forwarder, routes Routes) *Orchestrator {
	o := &Orchestrator{
		Registry:    reg,
		Presence:    app.NewPresence(reg),
		Relay:       relay,
		Broadcaster: app.NewBroadcaster(reg),
		Forwarder:   fwd,
		Routes:      routes,
	}
	o.handlers = map[string]Handler{
		core.EvJoinRoom:        o.handleJoin,
		core.EvLeaveRoom:       o.handleLeave,
		core.EvMediaReady:      o.handleMediaReady,
		core.EvAllUsersQuery:   o.handleMediaReady,
		core.EvSendingSignal:   o.handleSendingSignal,
		core.EvReturningSignal: o.handleReturningSignal,
		core.EvText:            o.handleText,
		core.EvMessage:         o.handleMessage,
		core.EvDrawing:         o.handleDrawing,
		core.EvClearCanvas:     o.handleClearCanvas,
	}
	for event, route := range boardRoutes {
		o.handlers[event] = o.boardHandler(event, route)
	}
	return o
}

func (o *Orchestrator) Connect(conn domain.ConnID) {
	o.Presence.Connect(conn)
	log.Info().Str("module", "orch").Str("conn", string(conn)).Msg("connected")
}

func (o *Orchestrator) Disconnect(conn domain.ConnID) core.Result {
	log.Info().Str("module", "orch").Str("conn", string(conn)).Msg("disconnected")
	return o.Presence.Disconnect(conn)
}

type errorNotice struct {
	Event string `json:"event"`
	Error string `json:"error"`
}

// Dispatch runs the handler for env. Failures are reported to the sender only.
func (o *Orchestrator) Dispatch(from domain.ConnID, env core.Envelope) core.Result {
	res, err := o.dispatch(from, env)
	if err == nil {
		return res
	}
	log.Warn().Err(err).Str("module", "orch").Str("conn", string(from)).Str("event", env.Type).Msg("event rejected")
	var out core.Result
	out.Send(core.ToConns(core.NtError, errorNotice{Event: env.Type, Error: errorCode(err)}, from))
	return out
}

func (o *Orchestrator) dispatch(from domain.ConnID, env core.Envelope) (core.Result, error) {
	h, ok := o.handlers[env.Type]
	if !ok {
		return core.Result{}, domain.ErrUnknownEvent
	}
	state, known := o.Presence.State(from)
	if !known {
		return core.Result{}, domain.ErrUnknownConnection
	}
	if state == app.Left {
		return core.Result{}, domain.ErrConnectionLeft
	}
	return h(from, env.Payload)
}

func errorCode(err error) string {
	for _, known := range []error{
		domain.ErrBadPayload,
		domain.ErrUnknownEvent,
		domain.ErrUnknownConnection,
		domain.ErrConnectionLeft,
	} {
		if errors.Is(err, known) {
			return known.Error()
		}
	}
	return "internal error"
}
