package core

// Inbound event names.
const (
	EvJoinRoom        = "join room"
	EvLeaveRoom       = "leave room"
	EvMediaReady      = "media ready"
	EvAllUsersQuery   = "all users query"
	EvSendingSignal   = "sending signal"
	EvReturningSignal = "returning signal"
	EvText            = "text"
	EvMessage         = "message"
	EvDrawing         = "drawing"
	EvClearCanvas     = "clear canvas"

	EvUpdateListOrder            = "update list order"
	EvUpdateCardOrder            = "update card order"
	EvUpdateCardBetweenListOrder = "update card between lists order"
	EvAddList                    = "add list"
	EvAddCard                    = "add card"
	EvUpdateList                 = "update list"
	EvUpdateCard                 = "update card"
	EvDeleteList                 = "delete list"
	EvDeleteCard                 = "delete card"
)

// Outbound notification names.
const (
	NtJoinedMembers           = "joined members"
	NtAllUsers                = "all users"
	NtUserJoined              = "user joined"
	NtReceivingReturnedSignal = "receiving returned signal"
	NtRoomFull                = "room full"
	NtNoUserID                = "no user id"
	NtUserLeft                = "user left"
	NtMembersLeft             = "members left"
	NtLeft                    = "left"
	NtError                   = "error"

	NtListOrderUpdated            = "list order updated"
	NtCardOrderUpdated            = "card order updated"
	NtCardBetweenListOrderUpdated = "card between lists order updated"
	NtListAdded                   = "list added"
	NtCardAdded                   = "card added"
	NtListUpdated                 = "list updated"
	NtCardUpdated                 = "card updated"
	NtListDeleted                 = "list deleted"
	NtCardDeleted                 = "card deleted"
)
