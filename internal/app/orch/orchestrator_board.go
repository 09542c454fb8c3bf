package orch

import (
	"encoding/json"
	"fmt"

	"github.com/dkeye/roomrelay/internal/app"
	"github.com/dkeye/roomrelay/internal/core"
	"github.com/dkeye/roomrelay/internal/domain"
)

// boardPayload is the union of every kanban event body.
type boardPayload struct {
	RoomID            ident           `json:"roomID" validate:"required"`
	CollaborateRoomID ident           `json:"collaborateRoomID"`
	ListID            ident           `json:"listID"`
	CardID            ident           `json:"cardID"`
	DroppableIDStart  json.RawMessage `json:"droppableIdStart,omitempty"`
	DroppableIDEnd    json.RawMessage `json:"droppableIdEnd,omitempty"`
	IndexStart        json.RawMessage `json:"droppableIndexStart,omitempty"`
	IndexEnd          json.RawMessage `json:"droppableIndexEnd,omitempty"`
	NewList           json.RawMessage `json:"newList,omitempty"`
	NewCard           json.RawMessage `json:"newCard,omitempty"`
	Values            json.RawMessage `json:"values,omitempty"`
}

// post is the content service resource the board belongs to.
func (p boardPayload) post() string {
	if p.CollaborateRoomID != "" {
		return string(p.CollaborateRoomID)
	}
	return string(p.RoomID)
}

// Reorder bodies use the content service's field names.
type listOrderBody struct {
	IndexStart json.RawMessage `json:"droppable_index_start,omitempty"`
	IndexEnd   json.RawMessage `json:"droppable_index_end,omitempty"`
}

type cardOrderBody struct {
	ListID     json.RawMessage `json:"list_id,omitempty"`
	IndexStart json.RawMessage `json:"droppable_index_start,omitempty"`
	IndexEnd   json.RawMessage `json:"droppable_index_end,omitempty"`
}

type cardBetweenListsBody struct {
	ListStartID json.RawMessage `json:"list_start_id,omitempty"`
	ListEndID   json.RawMessage `json:"list_end_id,omitempty"`
	IndexStart  json.RawMessage `json:"droppable_index_start,omitempty"`
	IndexEnd    json.RawMessage `json:"droppable_index_end,omitempty"`
}

func (p boardPayload) listOrder() any {
	return listOrderBody{IndexStart: p.IndexStart, IndexEnd: p.IndexEnd}
}

// cardOrder reorders inside one list; droppableIdStart names that list.
func (p boardPayload) cardOrder() any {
	return cardOrderBody{ListID: p.DroppableIDStart, IndexStart: p.IndexStart, IndexEnd: p.IndexEnd}
}

func (p boardPayload) cardBetweenLists() any {
	return cardBetweenListsBody{
		ListStartID: p.DroppableIDStart,
		ListEndID:   p.DroppableIDEnd,
		IndexStart:  p.IndexStart,
		IndexEnd:    p.IndexEnd,
	}
}

func rawOrNil(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return raw
}

type boardRoute struct {
	echo string
	op   app.Op
	// needs lists the identifiers the path cannot be built without.
	needs []string
	path  func(Routes, boardPayload) string
	body  func(boardPayload) any
}

var boardRoutes = map[string]boardRoute{
	core.EvUpdateListOrder: {
		echo: core.NtListOrderUpdated,
		op:   app.OpUpdate,
		path: func(r Routes, p boardPayload) string { return r.Post(p.post(), "update_kanban_list_order") },
		body: boardPayload.listOrder,
	},
	core.EvUpdateCardOrder: {
		echo: core.NtCardOrderUpdated,
		op:   app.OpUpdate,
		path: func(r Routes, p boardPayload) string { return r.Post(p.post(), "update_kanban_card_order") },
		body: boardPayload.cardOrder,
	},
	core.EvUpdateCardBetweenListOrder: {
		echo: core.NtCardBetweenListOrderUpdated,
		op:   app.OpUpdate,
		path: func(r Routes, p boardPayload) string {
			return r.Post(p.post(), "update_kanban_card_between_lists_order")
		},
		body: boardPayload.cardBetweenLists,
	},
	core.EvAddList: {
		echo: core.NtListAdded,
		op:   app.OpCreate,
		path: func(r Routes, p boardPayload) string { return r.Post(p.post(), "kanbans") },
		body: func(p boardPayload) any { return rawOrNil(p.NewList) },
	},
	core.EvAddCard: {
		echo:  core.NtCardAdded,
		op:    app.OpCreate,
		needs: []string{"listID"},
		path: func(r Routes, p boardPayload) string {
			return r.Post(p.post(), "kanbans", seg(p.ListID), "cards")
		},
		body: func(p boardPayload) any { return rawOrNil(p.NewCard) },
	},
	core.EvUpdateList: {
		echo:  core.NtListUpdated,
		op:    app.OpUpdate,
		needs: []string{"listID"},
		path: func(r Routes, p boardPayload) string {
			return r.Post(p.post(), "kanbans", seg(p.ListID))
		},
		body: func(p boardPayload) any { return rawOrNil(p.Values) },
	},
	core.EvUpdateCard: {
		echo:  core.NtCardUpdated,
		op:    app.OpUpdate,
		needs: []string{"listID", "cardID"},
		path: func(r Routes, p boardPayload) string {
			return r.Post(p.post(), "kanbans", seg(p.ListID), "cards", seg(p.CardID))
		},
		body: func(p boardPayload) any { return rawOrNil(p.Values) },
	},
	core.EvDeleteList: {
		echo:  core.NtListDeleted,
		op:    app.OpDelete,
		needs: []string{"listID"},
		path: func(r Routes, p boardPayload) string {
			return r.Post(p.post(), "kanbans", seg(p.ListID))
		},
	},
	core.EvDeleteCard: {
		echo:  core.NtCardDeleted,
		op:    app.OpDelete,
		needs: []string{"listID", "cardID"},
		path: func(r Routes, p boardPayload) string {
			return r.Post(p.post(), "kanbans", seg(p.ListID), "cards", seg(p.CardID))
		},
	},
}

func seg(id ident) string { return escapeSegment(string(id)) }

func (p boardPayload) missing(needs []string) string {
	for _, name := range needs {
		switch {
		case name == "listID" && p.ListID == "":
			return name
		case name == "cardID" && p.CardID == "":
			return name
		}
	}
	return ""
}

// boardHandler echoes a kanban edit to the room without its credential and
// persists it through the content service.
func (o *Orchestrator) boardHandler(event string, route boardRoute) Handler {
	return func(from domain.ConnID, raw json.RawMessage) (core.Result, error) {
		p, err := decode[boardPayload](raw)
		if err != nil {
			return core.Result{}, err
		}
		if name := p.missing(route.needs); name != "" {
			return core.Result{}, fmt.Errorf("%w: %s %s is required", domain.ErrBadPayload, event, name)
		}
		clean, credential, err := app.StripCredential(raw)
		if err != nil {
			return core.Result{}, domain.ErrBadPayload
		}

		var res core.Result
		out, _ := o.Broadcaster.Broadcast(domain.RoomID(p.RoomID), route.echo, clean, from)
		res.Send(out)

		req := app.ContentRequest{Op: route.op, Path: route.path(o.Routes, p)}
		if route.body != nil {
			req.Body = route.body(p)
		}
		o.forward(event, credential, req)
		return res, nil
	}
}
