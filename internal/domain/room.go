package domain

type (
	RoomID string
	// Address is an opaque routing key resolved by the transport: a ConnID,
	// a RoomID or a UserID.
	Address string
)

// RoomInfo is a read-only view for APIs.
type RoomInfo struct {
	ID          RoomID `json:"id"`
	MemberCount int    `json:"member_count"`
	Capacity    int    `json:"capacity"`
}
