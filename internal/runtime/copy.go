package runtime

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"

	"github.com/containerd/errdefs"
	"github.com/cruciblehq/cruxcp/internal/protocol"
)

// Copies a path from the container's filesystem as a tar stream.
//
// While the task runs, the file or directory at containerPath is archived by
// running "tar cf - -C <dir> <base>" inside the container. Without a running
// task the path is read from the container's snapshot instead.
func (c *Container) CopyFrom(ctx context.Context, w io.Writer, containerPath string) error {
	state, err := c.Status(ctx)
	if err != nil {
		return err
	}

	switch state {
	case protocol.ContainerRunning:
		return c.mustExec(ctx, "tar archive", w, tarArgs(containerPath)...)
	case protocol.ContainerStopped:
		slog.Debug("container not running, reading its snapshot", "id", c.id, "path", containerPath)
		return c.copyFromSnapshot(ctx, w, containerPath)
	default:
		return fmt.Errorf("%w: container %s: %w", ErrRuntime, c.id, errdefs.ErrNotFound)
	}
}

// Returns the tar invocation archiving containerPath under its base name.
func tarArgs(containerPath string) []string {
	clean := path.Clean(containerPath)
	return []string{"tar", "cf", "-", "-C", path.Dir(clean), path.Base(clean)}
}

// Helper method that runs a command inside the container, returning an error
// that includes desc if the process exits with a non-zero code.
func (c *Container) mustExec(ctx context.Context, desc string, stdout io.Writer, args ...string) error {
	exitCode, stderr, err := c.execCommand(ctx, stdout, args...)
	if err != nil {
		return err
	}
	if exitCode != 0 {
		return fmt.Errorf("%w: %s failed with exit code %d (%s)", ErrRuntime, desc, exitCode, stderr)
	}
	return nil
}
