package room

import "errors"

// Errors returned by room and manager operations.
var (
	ErrRoomNotFound        = errors.New("room not found")
	ErrRoomFull            = errors.New("room is full")
	ErrGameAlreadyStarted  = errors.New("game already started")
	ErrPlayerNotFound      = errors.New("player not found")
	ErrAlreadyConnected    = errors.New("player is already connected")
	ErrNotInRoom           = errors.New("not in a room")
	ErrNotHost             = errors.New("only the host can start the game")
	ErrInsufficientPlayers = errors.New("at least 2 connected players are required")
	ErrCodeSpaceExhausted  = errors.New("could not allocate a unique room code")
)
