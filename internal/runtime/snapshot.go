package runtime

import (
	"archive/tar"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/containerd/containerd/v2/core/mount"
	securejoin "github.com/cyphar/filepath-securejoin"
)

// Copies a path out of the container's snapshot as a tar stream.
//
// Used when the container has no running task to exec tar in, such as an
// exited tracked container or an image without a shell toolbox. The snapshot
// is mounted read-only on a temporary directory for the duration of the copy.
func (c *Container) copyFromSnapshot(ctx context.Context, w io.Writer, containerPath string) error {
	ctr, err := c.client.LoadContainer(ctx, c.id)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRuntime, err)
	}

	info, err := ctr.Info(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRuntime, err)
	}

	mounts, err := c.client.SnapshotService(info.Snapshotter).Mounts(ctx, info.SnapshotKey)
	if err != nil {
		return fmt.Errorf("%w: snapshot of %s: %w", ErrRuntime, c.id, err)
	}

	err = mount.WithReadonlyTempMount(ctx, mounts, func(root string) error {
		return writeTree(w, root, containerPath)
	})
	if err != nil {
		return fmt.Errorf("%w: copying %s from snapshot: %w", ErrRuntime, containerPath, err)
	}
	return nil
}

// Writes the file or directory at containerPath below root as a tar stream.
//
// containerPath is resolved inside root, symlinks included. Entries are named
// as "tar -C <dir> <base>" would name them.
func writeTree(w io.Writer, root, containerPath string) error {
	clean := path.Clean("/" + containerPath)

	src, err := securejoin.SecureJoin(root, clean)
	if err != nil {
		return err
	}

	prefix := path.Base(clean)
	if clean == "/" {
		prefix = "."
	}

	tw := tar.NewWriter(w)
	err = filepath.WalkDir(src, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(src, p)
		if err != nil {
			return err
		}

		return writeTarEntry(tw, p, path.Join(prefix, filepath.ToSlash(rel)), d)
	})
	if err != nil {
		return err
	}
	return tw.Close()
}

// Writes a single entry to a tar writer. Sockets are skipped.
func writeTarEntry(tw *tar.Writer, hostPath, name string, d fs.DirEntry) error {
	info, err := d.Info()
	if err != nil {
		return err
	}
	if info.Mode()&fs.ModeSocket != 0 {
		return nil
	}

	var link string
	if info.Mode()&fs.ModeSymlink != 0 {
		if link, err = os.Readlink(hostPath); err != nil {
			return err
		}
	}

	header, err := tar.FileInfoHeader(info, link)
	if err != nil {
		return err
	}
	header.Name = name
	if info.IsDir() {
		header.Name += "/"
	}

	if err := tw.WriteHeader(header); err != nil {
		return err
	}

	if !info.Mode().IsRegular() {
		return nil
	}

	f, err := os.Open(hostPath)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = io.Copy(tw, f)
	return err
}
