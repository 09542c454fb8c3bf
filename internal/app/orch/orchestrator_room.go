package orch

import (
	"bytes"
	"encoding/json"

	"github.com/dkeye/roomrelay/internal/core"
	"github.com/dkeye/roomrelay/internal/domain"
)

type joinPayload struct {
	RoomID ident `json:"roomID" validate:"required"`
	// UserID is checked by the registry so a missing id gets its own notice.
	UserID ident `json:"userID"`
}

func (o *Orchestrator) handleJoin(from domain.ConnID, raw json.RawMessage) (core.Result, error) {
	p, err := decode[joinPayload](raw)
	if err != nil {
		return core.Result{}, err
	}
	user, err := domain.ParseUserID(string(p.UserID))
	if err != nil {
		return core.Result{}, err
	}
	return o.Presence.Join(from, domain.RoomID(p.RoomID), user)
}

func (o *Orchestrator) handleLeave(from domain.ConnID, _ json.RawMessage) (core.Result, error) {
	return o.Presence.Leave(from)
}

type roomRef struct {
	RoomID ident `json:"roomID" validate:"required"`
}

// handleMediaReady accepts either a bare room id or {"roomID": ...}.
func (o *Orchestrator) handleMediaReady(from domain.ConnID, raw json.RawMessage) (core.Result, error) {
	room, err := decodeRoomRef(raw)
	if err != nil {
		return core.Result{}, err
	}
	return o.Presence.Snapshot(from, room), nil
}

func decodeRoomRef(raw json.RawMessage) (domain.RoomID, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] != '{' {
		var id ident
		if err := json.Unmarshal(trimmed, &id); err != nil || id == "" {
			return "", domain.ErrBadPayload
		}
		return domain.RoomID(id), nil
	}
	p, err := decode[roomRef](raw)
	if err != nil {
		return "", err
	}
	return domain.RoomID(p.RoomID), nil
}
