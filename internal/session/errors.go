package session

import "errors"

var (
	ErrNotFound = errors.New("no session for build")
	ErrCorrupt  = errors.New("corrupt session record")
)
