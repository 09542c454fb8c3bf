package app

import (
	"encoding/json"
	"testing"

	"github.com/dkeye/roomrelay/internal/core"
	"github.com/dkeye/roomrelay/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRelay_OfferAddressesTarget(t *testing.T) {
	var classified json.RawMessage
	r := &Relay{Classify: func(raw json.RawMessage) string {
		classified = raw
		return "offer"
	}}
	sig := json.RawMessage(`{"type":"offer","sdp":"v=0"}`)

	res := r.Offer(SignalEnvelope{Target: "Y", Signal: sig, Sender: "X"})
	require.Len(t, res.Out, 1)
	out := res.Out[0]
	assert.Equal(t, core.NtUserJoined, out.Event)
	assert.Equal(t, domain.Address("Y"), out.Address)
	assert.Empty(t, out.To)
	assert.Equal(t, offerNotice{Signal: sig, CallerID: "X"}, out.Payload)
	assert.JSONEq(t, string(sig), string(classified))
}

func TestRelay_AnswerStampsResponder(t *testing.T) {
	r := &Relay{}
	sig := json.RawMessage(`{"type":"answer","sdp":"v=0"}`)

	res := r.Answer("X", sig, "Y")
	require.Len(t, res.Out, 1)
	assert.Equal(t, core.NtReceivingReturnedSignal, res.Out[0].Event)
	assert.Equal(t, domain.Address("X"), res.Out[0].Address)

	raw, err := json.Marshal(res.Out[0].Payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"signal":{"type":"answer","sdp":"v=0"},"id":"Y"}`, string(raw))
}

func TestBroadcaster_ExcludesSender(t *testing.T) {
	reg := NewRegistry(4)
	_, _ = reg.Join("A", "X", "u1")
	_, _ = reg.Join("A", "Y", "u2")
	_, _ = reg.Join("A", "Z", "u3")
	_, _ = reg.Join("B", "W", "u4")

	out, n := NewBroadcaster(reg).Broadcast("A", core.EvText, "hello", "X")
	assert.Equal(t, 2, n)
	assert.Equal(t, core.EvText, out.Event)
	assert.Equal(t, "hello", out.Payload)
	assert.ElementsMatch(t, []domain.ConnID{"Y", "Z"}, out.To)
}

func TestBroadcaster_EmptyRoom(t *testing.T) {
	out, n := NewBroadcaster(NewRegistry(4)).Broadcast("nowhere", core.EvDrawing, nil, "X")
	assert.Zero(t, n)
	assert.Empty(t, out.To)
}
