package model

import "errors"

// Common errors used across the application
var (
	// Player errors
	ErrPlayerNotFound = errors.New("player not found")

	// Room errors
	ErrRoomNotFound        = errors.New("room not found")
	ErrRoomFull            = errors.New("room is full")
	ErrAlreadyInRoom       = errors.New("player is already in a room")
	ErrNotInRoom           = errors.New("player is not in room")
	ErrNotHost             = errors.New("player is not the host")
	ErrMatchAlreadyStarted = errors.New("match already started")
	ErrMatchNotPlaying     = errors.New("no match in progress")
	ErrInsufficientPlayers = errors.New("insufficient players to start match")
	ErrInvalidResetState   = errors.New("reset is only valid from a finished match")
	ErrInvalidCapacity     = errors.New("invalid room capacity")
)
