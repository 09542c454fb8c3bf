package orch

import (
	"encoding/json"

	"github.com/dkeye/roomrelay/internal/app"
	"github.com/dkeye/roomrelay/internal/core"
	"github.com/dkeye/roomrelay/internal/domain"
	"github.com/rs/zerolog/log"
)

type textPayload struct {
	RoomID ident  `json:"roomID" validate:"required"`
	Text   string `json:"text"`
}

// handleText relays shared notes and persists them as the post's notes.
func (o *Orchestrator) handleText(from domain.ConnID, raw json.RawMessage) (core.Result, error) {
	p, err := decode[textPayload](raw)
	if err != nil {
		return core.Result{}, err
	}
	_, credential, err := app.StripCredential(raw)
	if err != nil {
		return core.Result{}, domain.ErrBadPayload
	}
	room := domain.RoomID(p.RoomID)
	var res core.Result
	out, _ := o.Broadcaster.Broadcast(room, core.EvText, p.Text, from)
	res.Send(out)
	o.forward(core.EvText, credential, app.ContentRequest{
		Op:   app.OpUpdate,
		Path: o.Routes.Post(string(room), "update_shared_notes"),
		Body: map[string]string{"shared_notes": p.Text},
	})
	return res, nil
}

type chatMessage struct {
	Text string `json:"text"`
}

type messagePayload struct {
	RoomID  ident       `json:"roomID" validate:"required"`
	Message chatMessage `json:"message"`
}

// handleMessage relays a chat message without its credential and stores it.
func (o *Orchestrator) handleMessage(from domain.ConnID, raw json.RawMessage) (core.Result, error) {
	p, err := decode[messagePayload](raw)
	if err != nil {
		return core.Result{}, err
	}
	clean, credential, err := app.StripCredential(raw)
	if err != nil {
		return core.Result{}, domain.ErrBadPayload
	}
	room := domain.RoomID(p.RoomID)
	var res core.Result
	out, _ := o.Broadcaster.Broadcast(room, core.EvMessage, clean, from)
	res.Send(out)
	o.forward(core.EvMessage, credential, app.ContentRequest{
		Op:   app.OpCreate,
		Path: o.Routes.Post(string(room), "messages"),
		Body: map[string]string{"text": p.Message.Text},
	})
	return res, nil
}

type drawingPayload struct {
	RoomID ident           `json:"roomID" validate:"required"`
	Data   json.RawMessage `json:"data"`
}

func (o *Orchestrator) handleDrawing(from domain.ConnID, raw json.RawMessage) (core.Result, error) {
	p, err := decode[drawingPayload](raw)
	if err != nil {
		return core.Result{}, err
	}
	var payload any
	if len(p.Data) > 0 {
		payload = p.Data
	}
	var res core.Result
	out, _ := o.Broadcaster.Broadcast(domain.RoomID(p.RoomID), core.EvDrawing, payload, from)
	res.Send(out)
	return res, nil
}

func (o *Orchestrator) handleClearCanvas(from domain.ConnID, raw json.RawMessage) (core.Result, error) {
	room, err := decodeRoomRef(raw)
	if err != nil {
		return core.Result{}, err
	}
	var res core.Result
	out, _ := o.Broadcaster.Broadcast(room, core.EvClearCanvas, nil, from)
	res.Send(out)
	return res, nil
}

// forward hands req to the forwarder when the client supplied a credential.
func (o *Orchestrator) forward(event, credential string, req app.ContentRequest) {
	if credential == "" {
		log.Warn().Str("module", "orch").Str("event", event).Msg("no credential, not persisted")
		return
	}
	req.Credential = credential
	o.Forwarder.Forward(req)
}
