package orch

import (
	"encoding/json"

	"github.com/dkeye/roomrelay/internal/app"
	"github.com/dkeye/roomrelay/internal/core"
	"github.com/dkeye/roomrelay/internal/domain"
)

type sendingSignal struct {
	UserToSignal ident           `json:"userToSignal" validate:"required"`
	Signal       json.RawMessage `json:"signal" validate:"required"`
	CallerID     ident           `json:"callerID" validate:"required"`
}

type returningSignal struct {
	CallerID ident           `json:"callerID" validate:"required"`
	Signal   json.RawMessage `json:"signal" validate:"required"`
}

func (o *Orchestrator) handleSendingSignal(_ domain.ConnID, raw json.RawMessage) (core.Result, error) {
	p, err := decode[sendingSignal](raw)
	if err != nil {
		return core.Result{}, err
	}
	return o.Relay.Offer(app.SignalEnvelope{
		Target: domain.Address(p.UserToSignal),
		Signal: p.Signal,
		Sender: domain.Address(p.CallerID),
	}), nil
}

func (o *Orchestrator) handleReturningSignal(from domain.ConnID, raw json.RawMessage) (core.Result, error) {
	p, err := decode[returningSignal](raw)
	if err != nil {
		return core.Result{}, err
	}
	return o.Relay.Answer(domain.Address(p.CallerID), p.Signal, from), nil
}
