package copyout

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/cruciblehq/cruxcp/internal/project"
	"github.com/spf13/afero"
)

// Streams container paths out as archives and removes containers.
type EngineAccess interface {

	// Writes containerPath from the container as a tar archive to w.
	CopyArchiveFromContainer(ctx context.Context, id, containerPath string, w io.Writer) error

	// Removes a container, and its volumes when removeVolumes is set.
	RemoveContainer(ctx context.Context, id string, removeVolumes bool) error
}

// Creates containers and lists the ones tracked for a build.
type RunService interface {

	// Creates a container and returns its engine-assigned id.
	CreateContainer(ctx context.Context, req CreateRequest) (string, error)

	// Returns the containers recorded for a build identity.
	Containers(ctx context.Context, build string) ([]TrackedContainer, error)
}

// Unpacks a tar archive into a directory.
type ArchiveExtractor interface {
	Extract(ctx context.Context, archivePath, destDir string) error
}

// Parameters for creating a container.
type CreateRequest struct {
	Target      *project.ImageTarget // Image to create the container from.
	Ports       project.PortMapping  // Published ports.
	Build       string               // Build identity recorded on the container.
	Properties  map[string]string    // Project properties.
	BaseDir     string               // Project base directory.
	NamePattern string               // Container naming pattern, passed through unmodified.
	Timestamp   time.Time            // Build timestamp.
}

// A container started for a build, paired with the image it came from.
type TrackedContainer struct {
	ID     string
	Target *project.ImageTarget
}

// One completed copy.
type Copied struct {
	ContainerID   string // Container the path was copied from.
	Image         string // Image name of the container.
	ContainerPath string // Path inside the container.
	HostDirectory string // Absolute host directory it was extracted into.
}

// Outcome of a run.
type Report struct {
	Mode    Mode     // Mode the run used.
	Copies  []Copied // Copies in execution order.
	Created int      // Ephemeral containers created.
	Removed int      // Ephemeral containers removed.
}

// Controls a copy run.
type Options struct {
	Mode      Mode             // Where containers come from.
	Engine    EngineAccess     // Archive copy and container removal.
	Runner    RunService       // Container creation and tracked container lookup.
	Extractor ArchiveExtractor // Archive extraction into host directories.
	FS        afero.Fs         // Filesystem for host directories and temporary archives. Defaults to the OS.
	TempDir   string           // Directory for temporary archives. Defaults to [os.TempDir].

	Images      []project.ImageTarget // Configured images, used in standalone mode.
	Build       string                // Build identity.
	Properties  map[string]string     // Project properties.
	BaseDir     string                // Base for relative host directories.
	NamePattern string                // Naming pattern for ephemeral containers.
	Timestamp   time.Time             // Build timestamp. Defaults to now.

	RemoveVolumes      bool // Also remove volumes of ephemeral containers.
	CreateUnconfigured bool // Create and remove ephemeral containers for images without copy entries.
}

// Holds the state of a single run.
type copier struct {
	opts   Options
	fs     afero.Fs
	report *Report
}

// Copies every configured entry out of the run's containers.
//
// Targets are processed one at a time, in order, and their entries in
// declaration order. Targets without copy entries are skipped unless
// [Options.CreateUnconfigured] is set. The run stops at the first failure
// after releasing the resources held at that point; the returned report lists
// the copies completed before it.
func Run(ctx context.Context, opts Options) (*Report, error) {
	c := newCopier(opts)

	slog.Debug("copy run starting", "mode", opts.Mode, "build", opts.Build)

	src, err := c.source(ctx)
	if err != nil {
		return c.report, err
	}

	for _, cand := range src.candidates() {
		if src.skip(cand.target) {
			logSkip(cand)
			continue
		}
		if err := c.copyTarget(ctx, src, cand); err != nil {
			return c.report, err
		}
	}

	return c.report, nil
}

// Creates a [copier] with defaults applied.
func newCopier(opts Options) *copier {
	if opts.FS == nil {
		opts.FS = afero.NewOsFs()
	}
	if opts.TempDir == "" {
		opts.TempDir = os.TempDir()
	}
	if opts.Timestamp.IsZero() {
		opts.Timestamp = time.Now()
	}
	return &copier{
		opts:   opts,
		fs:     opts.FS,
		report: &Report{Mode: opts.Mode},
	}
}

// Obtains a container for the candidate and runs its entries.
//
// The container guard is entered before the container is acquired, so an
// ephemeral container is removed even when an entry fails.
func (c *copier) copyTarget(ctx context.Context, src source, cand candidate) (err error) {
	guard := newContainerGuard(ctx, c.opts.Engine, c.opts.RemoveVolumes)
	defer func() {
		assigned := guard.Resource() != ""
		if rerr := guard.Release(); rerr != nil {
			err = errors.Join(err, rerr)
			return
		}
		if assigned {
			c.report.Removed++
		}
	}()

	id, err := src.acquire(ctx, cand, guard)
	if err != nil {
		return err
	}

	if !cand.target.HasCopyEntries() {
		return nil
	}

	for _, entry := range cand.target.Copy.Entries {
		if err := c.executeEntry(ctx, id, cand.target, entry); err != nil {
			return err
		}
	}

	return nil
}

// Logs why a candidate is skipped.
func logSkip(cand candidate) {
	if cand.target.Copy == nil {
		slog.Debug("no copy configuration", "image", cand.target.Name, "container", cand.id)
		return
	}
	slog.Debug("copy configuration has no entries", "image", cand.target.Name, "container", cand.id)
}
