package websocket

import "errors"

var (
	ErrInvalidMessage = errors.New("invalid message format")
	ErrUnknownType    = errors.New("unknown message type")
	ErrRoomNotFound   = errors.New("room not found")
)
