// Package engine selects the container engine a copy run talks to.
//
// cruxcp drives either containerd directly or a docker-compatible CLI. Both
// satisfy [Engine]; [Open] picks one from configuration, and "auto" prefers a
// reachable containerd socket before falling back to docker or podman.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/cruciblehq/cruxcp/internal/copyout"
	"github.com/cruciblehq/cruxcp/internal/dockercli"
	"github.com/cruciblehq/cruxcp/internal/protocol"
	"github.com/cruciblehq/cruxcp/internal/runtime"
)

const (
	KindAuto       = "auto"
	KindContainerd = "containerd"
	KindDocker     = "docker"
	KindPodman     = "podman"

	// Default containerd socket address.
	DefaultContainerdAddress = "/run/containerd/containerd.sock"

	// Default containerd namespace for containers and images.
	DefaultContainerdNamespace = "cruxcp"
)

var ErrUnknownEngine = errors.New("unknown engine")

// Container operations used by copy runs and sessions.
type Engine interface {
	copyout.EngineAccess
	copyout.RunService

	// Creates and starts a container running its configured process.
	StartContainer(ctx context.Context, req copyout.CreateRequest) (string, error)

	// Reports whether a container is running, stopped or missing.
	ContainerState(ctx context.Context, id string) (protocol.ContainerState, error)

	io.Closer
}

var (
	_ Engine = (*runtime.Runtime)(nil)
	_ Engine = (*dockercli.CLI)(nil)
)

// Selects and configures an engine.
type Config struct {
	Kind      string // One of the Kind constants. Empty means [KindAuto].
	Address   string // Containerd socket address. Empty uses [DefaultContainerdAddress].
	Namespace string // Containerd namespace. Empty uses [DefaultContainerdNamespace].
}

// Opens the configured engine.
//
// The returned engine must be closed when no longer needed.
func Open(cfg Config) (Engine, error) {
	if cfg.Address == "" {
		cfg.Address = DefaultContainerdAddress
	}
	if cfg.Namespace == "" {
		cfg.Namespace = DefaultContainerdNamespace
	}

	switch strings.ToLower(cfg.Kind) {
	case "", KindAuto:
		return openAuto(cfg)
	case KindContainerd:
		rt, err := runtime.New(cfg.Address, cfg.Namespace)
		if err != nil {
			return nil, err
		}
		return rt, nil
	case KindDocker, KindPodman:
		return dockercli.New(strings.ToLower(cfg.Kind)), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, cfg.Kind)
	}
}

// Uses containerd when its socket exists, otherwise the first working CLI.
func openAuto(cfg Config) (Engine, error) {
	if _, err := os.Stat(cfg.Address); err == nil {
		rt, err := runtime.New(cfg.Address, cfg.Namespace)
		if err == nil {
			slog.Debug("using containerd engine", "address", cfg.Address)
			return rt, nil
		}
		slog.Debug("containerd unavailable", "address", cfg.Address, "error", err)
	}

	bin, err := dockercli.DetectRuntime()
	if err != nil {
		return nil, err
	}

	slog.Debug("using CLI engine", "bin", bin)
	return dockercli.New(bin), nil
}
