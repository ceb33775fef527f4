package ops

import "errors"

var (
	ErrSessionActive = errors.New("session already started")
	ErrRequest       = errors.New("invalid request")
)
