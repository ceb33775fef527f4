package dockercli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os/exec"
	"slices"
	"strings"
	"time"

	"github.com/cruciblehq/cruxcp/internal/copyout"
	"github.com/cruciblehq/cruxcp/internal/labels"
	"github.com/cruciblehq/cruxcp/internal/naming"
	"github.com/cruciblehq/cruxcp/internal/protocol"
)

// Runs a command, streaming its standard output to stdout.
type execFunc func(ctx context.Context, stdout io.Writer, name string, args ...string) error

// Container capabilities backed by the docker or podman CLI.
type CLI struct {
	bin  string   // "docker" or "podman".
	exec execFunc // Command runner.
}

// Creates a CLI for the given runtime binary.
//
// Use [DetectRuntime] to find an available runtime first.
func New(bin string) *CLI {
	return &CLI{bin: bin, exec: runCommand}
}

// Creates a copy container without starting it.
func (c *CLI) CreateContainer(ctx context.Context, req copyout.CreateRequest) (string, error) {
	name, err := c.containerName(ctx, req)
	if err != nil {
		return "", err
	}

	args := c.createArgs(req, name, false, time.Now())
	id, err := c.output(ctx, args...)
	if err != nil {
		return "", err
	}

	slog.Debug("container created", "id", id, "name", name, "image", req.Target.Name)
	return id, nil
}

// Creates and starts a container running its configured command.
//
// A container that fails to start is removed again.
func (c *CLI) StartContainer(ctx context.Context, req copyout.CreateRequest) (string, error) {
	name, err := c.containerName(ctx, req)
	if err != nil {
		return "", err
	}

	id, err := c.output(ctx, c.createArgs(req, name, true, time.Now())...)
	if err != nil {
		return "", err
	}

	if err := c.exec(ctx, nil, c.bin, "start", id); err != nil {
		c.exec(context.WithoutCancel(ctx), nil, c.bin, "rm", "-f", id)
		return "", err
	}

	slog.Debug("container started", "id", id, "name", name, "image", req.Target.Name)
	return id, nil
}

// Streams containerPath out of the container as a tar archive.
func (c *CLI) CopyArchiveFromContainer(ctx context.Context, id, containerPath string, w io.Writer) error {
	return c.exec(ctx, w, c.bin, "cp", id+":"+containerPath, "-")
}

// Force-removes a container, with its anonymous volumes when removeVolumes is
// set.
func (c *CLI) RemoveContainer(ctx context.Context, id string, removeVolumes bool) error {
	args := []string{"rm", "-f"}
	if removeVolumes {
		args = append(args, "-v")
	}
	return c.exec(ctx, nil, c.bin, append(args, id)...)
}

// Returns the containers started for the build identity, oldest first.
//
// Copy containers of the same build are excluded.
func (c *CLI) Containers(ctx context.Context, build string) ([]copyout.TrackedContainer, error) {
	args := []string{"ps", "-a", "-q", "--no-trunc"}
	sel := labels.StartedSelector(build)
	for _, k := range slices.Sorted(maps.Keys(sel)) {
		args = append(args, "--filter", "label="+k+"="+sel[k])
	}

	out, err := c.output(ctx, args...)
	if err != nil {
		return nil, err
	}

	ids := strings.Fields(out)
	if len(ids) == 0 {
		return nil, nil
	}

	records, err := c.inspect(ctx, ids)
	if err != nil {
		return nil, err
	}
	return labels.Tracked(records), nil
}

// Reports whether a container is running, stopped or missing.
func (c *CLI) ContainerState(ctx context.Context, id string) (protocol.ContainerState, error) {
	out, err := c.output(ctx, "inspect", "--format", "{{.State.Status}}", id)
	if err != nil {
		if isNoSuchContainer(err) {
			return protocol.ContainerNotCreated, nil
		}
		return "", err
	}
	return parseState(out), nil
}

// No resources are held between commands.
func (c *CLI) Close() error {
	return nil
}

// Expands the naming pattern against the names already in use.
func (c *CLI) containerName(ctx context.Context, req copyout.CreateRequest) (string, error) {
	out, err := c.output(ctx, "ps", "-a", "--format", "{{.Names}}")
	if err != nil {
		return "", err
	}

	return naming.Expand(req.NamePattern, naming.Params{
		Image:     req.Target.Name,
		Alias:     req.Target.Alias,
		Timestamp: req.Timestamp,
		Existing:  strings.Fields(out),
	}), nil
}

// Builds the "create" arguments for a request.
//
// The configured command is always passed, since images without a CMD or
// ENTRYPOINT cannot be created without one. Environment and working directory
// only matter for containers that will be started.
func (c *CLI) createArgs(req copyout.CreateRequest, name string, run bool, now time.Time) []string {
	args := []string{"create", "--name", name}

	role := labels.RoleCopy
	if run {
		role = labels.RoleStarted
	}

	l := labels.ForRequest(req, role, now)
	for _, k := range slices.Sorted(maps.Keys(l)) {
		args = append(args, "--label", k+"="+l[k])
	}

	for _, spec := range req.Ports.Specs() {
		args = append(args, "-p", spec)
	}

	cfg := req.Target.Run
	if run {
		for _, k := range slices.Sorted(maps.Keys(cfg.Env)) {
			args = append(args, "-e", k+"="+cfg.Env[k])
		}
		if cfg.Workdir != "" {
			args = append(args, "-w", cfg.Workdir)
		}
	}

	args = append(args, req.Target.Name)
	return append(args, cfg.Cmd...)
}

// Subset of "docker inspect" output used to rebuild tracked containers.
type inspectRecord struct {
	ID      string    `json:"Id"`
	Created time.Time `json:"Created"`
	Config  struct {
		Labels map[string]string `json:"Labels"`
	} `json:"Config"`
}

// Inspects containers and returns their label records.
func (c *CLI) inspect(ctx context.Context, ids []string) ([]labels.Record, error) {
	var buf bytes.Buffer
	if err := c.exec(ctx, &buf, c.bin, append([]string{"inspect"}, ids...)...); err != nil {
		return nil, err
	}
	return parseInspect(buf.Bytes())
}

func parseInspect(data []byte) ([]labels.Record, error) {
	var raw []inspectRecord
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInspect, err)
	}

	records := make([]labels.Record, 0, len(raw))
	for _, r := range raw {
		records = append(records, labels.Record{ID: r.ID, Labels: r.Config.Labels, Created: r.Created})
	}
	return records, nil
}

// Maps an engine status string to a container state.
func parseState(status string) protocol.ContainerState {
	switch strings.TrimSpace(status) {
	case "running", "restarting":
		return protocol.ContainerRunning
	default:
		return protocol.ContainerStopped
	}
}

// Runs a command and returns its trimmed standard output.
func (c *CLI) output(ctx context.Context, args ...string) (string, error) {
	var buf bytes.Buffer
	if err := c.exec(ctx, &buf, c.bin, args...); err != nil {
		return "", err
	}
	return strings.TrimSpace(buf.String()), nil
}

// Runs a command with os/exec, folding stderr into the returned error.
func runCommand(ctx context.Context, stdout io.Writer, name string, args ...string) error {
	var stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return fmt.Errorf("%w: %s %s: %s", ErrCommand, name, args[0], strings.TrimSpace(stderr.String()))
		}
		return fmt.Errorf("%w: %s %s: %w", ErrCommand, name, args[0], err)
	}
	return nil
}

// Whether err reports a missing container.
func isNoSuchContainer(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "no such container") || strings.Contains(msg, "no such object")
}
