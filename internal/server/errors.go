package server

import "errors"

// Gateway errors
var (
	ErrServerClosed         = errors.New("server is closed")
	ErrServerNotRunning     = errors.New("server is not running")
	ErrServerAlreadyRunning = errors.New("server is already running")
	ErrRoomNotFound         = errors.New("room not found")
	ErrMissingName          = errors.New("player name is required")
)
