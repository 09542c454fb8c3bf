package rtc

import (
	"encoding/json"
	"strings"

	"github.com/pion/webrtc/v4"
)

// ICEServers builds the list served to clients before they negotiate.
// Credentials only apply to TURN urls.
func ICEServers(urls []string, username, credential string) []webrtc.ICEServer {
	out := make([]webrtc.ICEServer, 0, len(urls))
	for _, u := range urls {
		s := webrtc.ICEServer{URLs: []string{u}}
		if username != "" && (strings.HasPrefix(u, "turn:") || strings.HasPrefix(u, "turns:")) {
			s.Username = username
			s.Credential = credential
		}
		out = append(out, s)
	}
	return out
}

// ClassifySignal labels an opaque negotiation payload as offer, answer,
// pranswer, rollback, candidate or unknown. It never rejects anything.
func ClassifySignal(raw json.RawMessage) string {
	var sd webrtc.SessionDescription
	if err := json.Unmarshal(raw, &sd); err == nil && sd.Type != 0 {
		return sd.Type.String()
	}

	var wrapped struct {
		Candidate json.RawMessage `json:"candidate"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil || len(wrapped.Candidate) == 0 {
		return "unknown"
	}
	var ci webrtc.ICECandidateInit
	switch wrapped.Candidate[0] {
	case '"':
		err := json.Unmarshal(raw, &ci)
		if err == nil && ci.Candidate != "" {
			return "candidate"
		}
	case '{':
		err := json.Unmarshal(wrapped.Candidate, &ci)
		if err == nil && ci.Candidate != "" {
			return "candidate"
		}
	}
	return "unknown"
}
