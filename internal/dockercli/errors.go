package dockercli

import "errors"

var (
	ErrNoRuntime = errors.New("no container runtime found (need docker or podman)")
	ErrCommand   = errors.New("container command failed")
	ErrInspect   = errors.New("unexpected inspect output")
)
