package runtime

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"maps"
	goruntime "runtime"
	"slices"
	"strings"
	"time"

	containerd "github.com/containerd/containerd/v2/client"
	"github.com/containerd/errdefs"
	"github.com/containerd/platforms"
	"github.com/cruciblehq/cruxcp/internal/copyout"
	"github.com/cruciblehq/cruxcp/internal/labels"
	"github.com/cruciblehq/cruxcp/internal/naming"
	"github.com/cruciblehq/cruxcp/internal/protocol"
	"github.com/distribution/reference"
)

const (

	// Snapshotter used for container filesystems. fuse-overlayfs provides
	// overlay semantics without requiring root privileges (no mount(2)),
	// allowing cruxcp to run as a regular user.
	snapshotter = "fuse-overlayfs"

	// OCI runtime shim for running containers.
	ociRuntime = "io.containerd.runc.v2"
)

// Manages the containerd client and provides the container operations used
// by copy runs.
type Runtime struct {
	client *containerd.Client // Containerd client for managing containers and images.
}

// Creates a runtime connected to the containerd socket at the given address.
//
// The namespace scopes all containerd operations to a single tenant. The
// runtime must be closed when no longer needed.
func New(address, namespace string) (*Runtime, error) {
	client, err := containerd.New(address, containerd.WithDefaultNamespace(namespace))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRuntime, err)
	}
	return &Runtime{client: client}, nil
}

// Closes the containerd client connection.
func (rt *Runtime) Close() error {
	return rt.client.Close()
}

// Creates an ephemeral container for copying.
//
// The image is pulled when not present and unpacked for the host platform.
// The container runs a keep-alive task (sleep infinity) so archives can be
// streamed out of it by exec. When the image has no sleep the container is
// kept without a task and copies read its snapshot.
func (rt *Runtime) CreateContainer(ctx context.Context, req copyout.CreateRequest) (string, error) {
	return rt.create(ctx, req, true)
}

// Creates a container that runs the image's own process.
//
// The configured command, environment and working directory override the
// image config. Used to start the containers of a tracked session.
func (rt *Runtime) StartContainer(ctx context.Context, req copyout.CreateRequest) (string, error) {
	return rt.create(ctx, req, false)
}

func (rt *Runtime) create(ctx context.Context, req copyout.CreateRequest, keepAlive bool) (string, error) {
	if req.Target == nil {
		return "", fmt.Errorf("%w: no image target", ErrRuntime)
	}

	ref, err := normalizeRef(req.Target.Name)
	if err != nil {
		return "", err
	}

	platform := defaultPlatform()
	image, err := rt.ensureImage(ctx, ref, platform)
	if err != nil {
		return "", fmt.Errorf("%w: image %s: %w", ErrRuntime, ref, err)
	}

	existing, err := rt.containerIDs(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrRuntime, err)
	}

	id := naming.Expand(req.NamePattern, naming.Params{
		Image:     req.Target.Name,
		Alias:     req.Target.Alias,
		Timestamp: req.Timestamp,
		Existing:  existing,
	})

	c := &Container{
		client:   rt.client,
		id:       id,
		platform: platform,
	}

	role := labels.RoleStarted
	if keepAlive {
		role = labels.RoleCopy
	}

	ctr, err := c.create(ctx, image, labels.ForRequest(req, role, time.Now()), processOpts(req.Target.Run, keepAlive))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrRuntime, err)
	}

	if err := c.startTask(ctx, ctr); err != nil {
		if !keepAlive {
			ctr.Delete(context.WithoutCancel(ctx), containerd.WithSnapshotCleanup)
			return "", fmt.Errorf("%w: %w", ErrRuntime, err)
		}
		// Images without sleep still have a snapshot to copy from.
		slog.Warn("keep-alive process did not start, copies will read the snapshot", "id", id, "error", err)
	}

	slog.Debug("container started", "id", id, "image", ref, "keepalive", keepAlive)

	return id, nil
}

// Returns a local image for ref, pulling and unpacking it when needed.
func (rt *Runtime) ensureImage(ctx context.Context, ref, platform string) (containerd.Image, error) {
	p, err := platforms.Parse(platform)
	if err != nil {
		return nil, err
	}

	_, err = rt.client.ImageService().Get(ctx, ref)
	if errdefs.IsNotFound(err) {
		slog.Info("pulling image", "image", ref, "platform", platform)
		_, err = rt.client.Pull(ctx, ref,
			containerd.WithPlatformMatcher(platforms.Only(p)),
			containerd.WithPullSnapshotter(snapshotter),
		)
	}
	if err != nil {
		return nil, err
	}

	image, err := rt.resolveImage(ctx, ref, platform)
	if err != nil {
		return nil, err
	}

	unpacked, err := image.IsUnpacked(ctx, snapshotter)
	if err != nil {
		return nil, err
	}
	if !unpacked {
		if err := image.Unpack(ctx, snapshotter); err != nil {
			return nil, err
		}
	}

	return image, nil
}

// Looks up a tagged image and selects the manifest for the given platform.
//
// Multi-platform images contain manifests for multiple architectures. This
// method selects one, so that subsequent operations target the correct
// architecture.
func (rt *Runtime) resolveImage(ctx context.Context, ref, platform string) (containerd.Image, error) {
	p, err := platforms.Parse(platform)
	if err != nil {
		return nil, err
	}

	img, err := rt.client.ImageService().Get(ctx, ref)
	if err != nil {
		return nil, err
	}

	return containerd.NewImageWithPlatform(rt.client, img, platforms.Only(p)), nil
}

// Returns the IDs of all containers in the namespace.
func (rt *Runtime) containerIDs(ctx context.Context) ([]string, error) {
	ctrs, err := rt.client.Containers(ctx)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(ctrs))
	for _, ctr := range ctrs {
		ids = append(ids, ctr.ID())
	}
	return ids, nil
}

// Returns the containers started for the build identity, oldest first.
//
// Copy containers of the same build are excluded. Each target carries only the image name and alias recorded on the
// container; callers match them against the project's images.
func (rt *Runtime) Containers(ctx context.Context, build string) ([]copyout.TrackedContainer, error) {
	ctrs, err := rt.client.Containers(ctx, startedFilter(build))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRuntime, err)
	}

	records := make([]labels.Record, 0, len(ctrs))
	for _, ctr := range ctrs {
		info, err := ctr.Info(ctx)
		if err != nil {
			if errdefs.IsNotFound(err) {
				continue
			}
			return nil, fmt.Errorf("%w: %w", ErrRuntime, err)
		}
		records = append(records, labels.Record{ID: info.ID, Labels: info.Labels, Created: info.CreatedAt})
	}

	return labels.Tracked(records), nil
}

// Streams containerPath out of a running container as a tar archive.
func (rt *Runtime) CopyArchiveFromContainer(ctx context.Context, id, containerPath string, w io.Writer) error {
	return rt.Container(id).CopyFrom(ctx, w, containerPath)
}

// Kills the container's task and deletes the container.
//
// With removeVolumes the container's snapshot is deleted too. A container
// that does not exist is an error.
func (rt *Runtime) RemoveContainer(ctx context.Context, id string, removeVolumes bool) error {
	return rt.Container(id).Remove(ctx, removeVolumes)
}

// Returns a handle for an existing container.
//
// The container is not loaded or verified; the handle is a lightweight
// reference that resolves the container lazily on subsequent calls.
func (rt *Runtime) Container(id string) *Container {
	return &Container{
		client:   rt.client,
		id:       id,
		platform: defaultPlatform(),
	}
}

// Normalizes a short image reference to the fully qualified form containerd
// expects ("alpine" becomes "docker.io/library/alpine:latest").
func normalizeRef(image string) (string, error) {
	named, err := reference.ParseDockerRef(image)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %w", ErrInvalidImage, image, err)
	}
	return named.String(), nil
}

// Returns a containerd filter matching the started containers of a build.
//
// Comma-separated conditions must all match.
func startedFilter(build string) string {
	sel := labels.StartedSelector(build)
	conds := make([]string, 0, len(sel))
	for _, k := range slices.Sorted(maps.Keys(sel)) {
		conds = append(conds, fmt.Sprintf("labels.%q==%q", k, sel[k]))
	}
	return strings.Join(conds, ",")
}

// Returns the default OCI platform for the host architecture.
func defaultPlatform() string {
	return "linux/" + goruntime.GOARCH
}

// Reports whether a container is running, stopped or missing.
func (rt *Runtime) ContainerState(ctx context.Context, id string) (protocol.ContainerState, error) {
	return rt.Container(id).Status(ctx)
}
