package domain

import "errors"

var (
	ErrNoUserID          = errors.New("no user id")
	ErrRoomFull          = errors.New("room full")
	ErrUnknownConnection = errors.New("unknown connection")
	ErrConnectionLeft    = errors.New("connection already left")
	ErrBadPayload        = errors.New("bad payload")
	ErrUnknownEvent      = errors.New("unknown event")
)
