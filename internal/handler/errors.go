package handler

import (
	"errors"

	"github.com/ugaemi/roomrelay/internal/room"
	"github.com/ugaemi/roomrelay/internal/ws"
)

// Wire error codes.
const (
	CodeRoomNotFound        = "room_not_found"
	CodeRoomFull            = "room_full"
	CodeGameAlreadyStarted  = "game_already_started"
	CodeNotInRoom           = "not_in_room"
	CodeNotHost             = "not_host"
	CodeInsufficientPlayers = "insufficient_players"
	CodePlayerNotFound      = "player_not_found"
	CodeAlreadyConnected    = "already_connected"
	CodeCodeSpaceExhausted  = "code_space_exhausted"
	CodeInvalidRequest      = "invalid_request"
	CodeInvalidMessage      = "invalid_message"
	CodeUnknownType         = "unknown_type"
	CodeServerShutdown      = "server_shutdown"
	CodeInternal            = "internal_error"
)

var errInvalidRequest = errors.New("invalid request")

var errorCodes = []struct {
	err  error
	code string
}{
	{room.ErrRoomNotFound, CodeRoomNotFound},
	{room.ErrRoomFull, CodeRoomFull},
	{room.ErrGameAlreadyStarted, CodeGameAlreadyStarted},
	{room.ErrNotInRoom, CodeNotInRoom},
	{room.ErrNotHost, CodeNotHost},
	{room.ErrInsufficientPlayers, CodeInsufficientPlayers},
	{room.ErrPlayerNotFound, CodePlayerNotFound},
	{room.ErrAlreadyConnected, CodeAlreadyConnected},
	{room.ErrCodeSpaceExhausted, CodeCodeSpaceExhausted},
	{errInvalidRequest, CodeInvalidRequest},
}

func errorCode(err error) string {
	for _, ec := range errorCodes {
		if errors.Is(err, ec.err) {
			return ec.code
		}
	}
	return CodeInternal
}

func sendError(client *ws.Client, err error) {
	client.SendMessage(ws.NewErrorMessage(errorCode(err), err.Error()))
}

func sendReconnectFailed(client *ws.Client, err error) {
	client.SendMessage(ws.NewReconnectFailed(errorCode(err), err.Error()))
}
