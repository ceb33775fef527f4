package cli

import (
	"context"
	"log/slog"

	"github.com/cruciblehq/cruxcp/internal/server"
)

// Represents the 'cruxcp serve' command.
type ServeCmd struct {
	Engine    string `help:"Container engine (${enum})." enum:"auto,containerd,docker,podman" default:"auto" env:"CRUXCP_ENGINE"`
	Address   string `help:"Containerd socket address." default:"${containerd_address}" env:"CRUXCP_ADDRESS"`
	Namespace string `help:"Containerd namespace." default:"${containerd_namespace}" env:"CRUXCP_NAMESPACE"`
}

// Executes the serve command.
//
// Starts the daemon on a Unix domain socket and blocks until the context is
// cancelled (e.g. via SIGINT or SIGTERM) or a client requests shutdown.
func (c *ServeCmd) Run(ctx context.Context) error {
	flags := EngineFlags{Engine: c.Engine, Address: c.Address, Namespace: c.Namespace}

	srv, err := server.New(server.Config{
		SocketPath: RootCmd.Socket,
		Engine:     flags.engineConfig(),
	})
	if err != nil {
		return err
	}

	if err := srv.Start(); err != nil {
		return err
	}

	slog.Info("cruxcp daemon is running")

	stopped := make(chan struct{})
	go func() {
		srv.Wait()
		close(stopped)
	}()

	select {
	case <-ctx.Done():
	case <-stopped:
	}

	slog.Info("shutting down")
	return srv.Stop()
}
