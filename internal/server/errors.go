package server

import "errors"

// Server-specific errors
var (
	ErrServerClosed         = errors.New("server is closed")
	ErrServerNotRunning     = errors.New("server is not running")
	ErrServerAlreadyRunning = errors.New("server is already running")
	ErrMaxSessionsReached   = errors.New("maximum sessions reached")
	ErrRobotNotFound        = errors.New("robot not found")
	ErrCameraNotFound       = errors.New("camera not found")
	ErrUnknownAction        = errors.New("unknown action")
	ErrInvalidConfig        = errors.New("invalid server configuration")
)
