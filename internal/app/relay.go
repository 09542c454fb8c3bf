package app

import (
	"encoding/json"

	"github.com/dkeye/roomrelay/internal/core"
	"github.com/dkeye/roomrelay/internal/domain"
	"github.com/dkeye/roomrelay/internal/metrics"
	"github.com/rs/zerolog/log"
)

// SignalEnvelope is one point-to-point negotiation message. Signal is opaque.
type SignalEnvelope struct {
	Target domain.Address
	Signal json.RawMessage
	Sender domain.Address
}

// Relay routes negotiation messages by address. It never reads the registry:
// targets are trusted as supplied and unresolvable ones are dropped by the
// transport.
type Relay struct {
	// Classify labels a signal for logs and metrics only.
	Classify func(json.RawMessage) string
}

type offerNotice struct {
	Signal   json.RawMessage `json:"signal"`
	CallerID domain.Address  `json:"callerID"`
}

type answerNotice struct {
	Signal json.RawMessage `json:"signal"`
	ID     domain.ConnID   `json:"id"`
}

// Offer forwards a signal to target as "user joined".
func (r *Relay) Offer(env SignalEnvelope) core.Result {
	r.observe("offer", env.Signal, env.Target)
	var res core.Result
	res.Send(core.ToAddress(core.NtUserJoined, offerNotice{Signal: env.Signal, CallerID: env.Sender}, env.Target))
	return res
}

// Answer returns a signal to the original caller, stamped with the responder.
func (r *Relay) Answer(caller domain.Address, signal json.RawMessage, responder domain.ConnID) core.Result {
	r.observe("answer", signal, caller)
	var res core.Result
	res.Send(core.ToAddress(core.NtReceivingReturnedSignal, answerNotice{Signal: signal, ID: responder}, caller))
	return res
}

func (r *Relay) observe(direction string, signal json.RawMessage, target domain.Address) {
	kind := "unknown"
	if r.Classify != nil {
		kind = r.Classify(signal)
	}
	metrics.SignalsTotal.WithLabelValues(direction, kind).Inc()
	log.Debug().Str("module", "app.relay").Str("direction", direction).Str("kind", kind).
		Str("target", string(target)).Int("bytes", len(signal)).Msg("relay signal")
}
