package domain

// Participant is one membership record. Owned by the registry entry of its room.
type Participant struct {
	Conn ConnID `json:"socketID"`
	User UserID `json:"userID"`
}

// NewParticipant avoids raw literals in adapters and keeps construction obvious.
func NewParticipant(conn ConnID, user UserID) Participant {
	return Participant{Conn: conn, User: user}
}
