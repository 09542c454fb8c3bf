package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode(t *testing.T) {
	f, err := Encode(EvText, "hello")
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"text","payload":"hello"}`, string(f))

	f, err = Encode(NtRoomFull, nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"room full"}`, string(f))

	_, err = Encode(EvText, func() {})
	assert.Error(t, err)
}

func TestResultMerge(t *testing.T) {
	var a, b Result
	a.Send(ToConns(NtLeft, nil, "X"))
	b.Send(ToAddress(NtUserJoined, nil, "u1"))
	b.Groups = append(b.Groups, GroupChange{Conn: "Y", Reset: true})

	a.Merge(b)
	require.Len(t, a.Out, 2)
	assert.Equal(t, NtUserJoined, a.Out[1].Event)
	assert.Len(t, a.Groups, 1)
}
