package rtc

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifySignal(t *testing.T) {
	cases := map[string]string{
		`{"type":"offer","sdp":"v=0"}`:                                        "offer",
		`{"type":"answer","sdp":"v=0"}`:                                       "answer",
		`{"candidate":"candidate:1 1 udp 2122260223 10.0.0.1 5000 typ host"}`: "candidate",
		`{"type":"candidate","candidate":{"candidate":"candidate:1 1 udp 1 10.0.0.1 1 typ host","sdpMid":"0"}}`: "candidate",
		`{"renegotiate":true}`: "unknown",
		`"garbage"`:            "unknown",
		`{"candidate":""}`:     "unknown",
	}
	for raw, want := range cases {
		assert.Equal(t, want, ClassifySignal(json.RawMessage(raw)), raw)
	}
}

func TestICEServers(t *testing.T) {
	servers := ICEServers([]string{"stun:stun.example.org:3478", "turn:turn.example.org:3478"}, "user", "pass")
	if assert.Len(t, servers, 2) {
		assert.Equal(t, []string{"stun:stun.example.org:3478"}, servers[0].URLs)
		assert.Empty(t, servers[0].Username)
		assert.Equal(t, "user", servers[1].Username)
		assert.Equal(t, "pass", servers[1].Credential)
	}
	assert.Empty(t, ICEServers(nil, "", ""))
}
