package copyout

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cruciblehq/cruxcp/internal/paths"
	"github.com/cruciblehq/cruxcp/internal/project"
	"github.com/spf13/afero"
)

// Name pattern of temporary copy archives.
const archivePattern = "cruxcp-copy-*.tar"

// Copies one entry out of a container into its host directory.
//
// The container path is streamed as a tar archive into a temporary file,
// which is then extracted into the resolved host directory. The temporary
// file is deleted on every exit path. A missing container path is a
// configuration error raised before any engine call.
func (c *copier) executeEntry(ctx context.Context, containerID string, target *project.ImageTarget, entry project.CopyEntry) (err error) {
	if entry.ContainerPath == "" {
		slog.Error("container path of copy entry is not specified",
			"container", containerID,
			"image", target.Name,
		)
		return fmt.Errorf("%w: containerPath of copy entry for container %s of image %s is not specified",
			ErrConfiguration, containerID, target.Name)
	}

	hostDir := ResolveHostDir(c.opts.BaseDir, entry.HostDirectory)
	if err := c.fs.MkdirAll(hostDir, paths.DefaultDirMode); err != nil {
		return wrap(ErrFileSystemOperation, err)
	}

	guard := newFileGuard(c.fs)
	defer releaseInto(guard, &err)

	archive, err := c.createArchive()
	if err != nil {
		return err
	}
	guard.Assign(archive.Name())

	slog.Debug("copying from container",
		"container", containerID,
		"path", entry.ContainerPath,
		"archive", archive.Name(),
	)

	copyErr := c.opts.Engine.CopyArchiveFromContainer(ctx, containerID, entry.ContainerPath, archive)
	closeErr := archive.Close()
	if copyErr != nil {
		return wrap(ErrEngineAccess, copyErr)
	}
	if closeErr != nil {
		return wrap(ErrFileSystemOperation, closeErr)
	}

	slog.Debug("extracting archive", "archive", archive.Name(), "dir", hostDir)

	if err := c.opts.Extractor.Extract(ctx, archive.Name(), hostDir); err != nil {
		return wrap(ErrExtraction, err)
	}

	c.report.Copies = append(c.report.Copies, Copied{
		ContainerID:   containerID,
		Image:         target.Name,
		ContainerPath: entry.ContainerPath,
		HostDirectory: hostDir,
	})

	slog.Info("copied from container",
		"image", target.Description(),
		"path", entry.ContainerPath,
		"dir", hostDir,
	)

	return nil
}

// Creates a uniquely named, empty archive file in the temp directory.
func (c *copier) createArchive() (afero.File, error) {
	if err := c.fs.MkdirAll(c.opts.TempDir, paths.DefaultDirMode); err != nil {
		return nil, wrap(ErrFileSystemOperation, err)
	}

	f, err := afero.TempFile(c.fs, c.opts.TempDir, archivePattern)
	if err != nil {
		return nil, wrap(ErrFileSystemOperation, err)
	}

	slog.Debug("created temporary archive", "path", f.Name())
	return f, nil
}
