package room

import "errors"

var (
	ErrRoomNotFound       = errors.New("room not found")
	ErrGameAlreadyStarted = errors.New("game already started, only players who were in the room can rejoin")
	ErrRoomFull           = errors.New("room is full")
	ErrInvalidName        = errors.New("player name required")
)
