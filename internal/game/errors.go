package game

import "errors"

var (
	ErrRoomNotFound       = errors.New("room not found")
	ErrRoomAlreadyStarted = errors.New("room already started")
	ErrRoomFull           = errors.New("room full")
	ErrNotInRoom          = errors.New("not in a room")
	ErrNotHost            = errors.New("not host")
	ErrNotEnoughPlayers   = errors.New("not enough players")
	ErrNoActiveRound      = errors.New("no active round")
	ErrAlreadyAnswered    = errors.New("already answered")
	ErrTimeOver           = errors.New("time over")
	ErrInvalidAnswer      = errors.New("invalid answer")
	ErrPinExhausted       = errors.New("pin allocation exhausted")
)
