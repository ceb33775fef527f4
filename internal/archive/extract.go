package archive

import (
	"archive/tar"
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	securejoin "github.com/cyphar/filepath-securejoin"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/spf13/afero"
)

var (
	gzipMagic = []byte{0x1f, 0x8b}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
)

// Extracts tar archives into directories of a filesystem.
type Extractor struct {
	fs afero.Fs
}

// Creates an [Extractor] operating on fsys.
func NewExtractor(fsys afero.Fs) *Extractor {
	return &Extractor{fs: fsys}
}

// Extracts the archive at archivePath into destDir.
//
// destDir must exist. Entries are applied in archive order; the context is
// checked between entries. Device nodes and FIFOs are skipped, as are
// symlinks when the filesystem cannot create them.
func (x *Extractor) Extract(ctx context.Context, archivePath, destDir string) error {
	f, err := x.fs.Open(archivePath)
	if err != nil {
		return err
	}
	defer f.Close()

	r, closeFn, err := decompress(bufio.NewReader(f))
	if err != nil {
		return err
	}
	defer closeFn()

	tr := tar.NewReader(r)
	count := 0

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("%w: %w", ErrArchive, err)
		}

		if err := x.extractEntry(tr, hdr, destDir); err != nil {
			return fmt.Errorf("%s: %w", hdr.Name, err)
		}
		count++
	}

	slog.Debug("archive extracted", "archive", archivePath, "dir", destDir, "entries", count)
	return nil
}

// Wraps r in a decompressor when its first bytes carry a known magic number.
//
// The returned function releases the decompressor and must always be called.
func decompress(r *bufio.Reader) (io.Reader, func(), error) {
	head, err := r.Peek(len(zstdMagic))
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, nil, fmt.Errorf("%w: %w", ErrArchive, err)
	}

	switch {
	case bytes.HasPrefix(head, gzipMagic):
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %w", ErrArchive, err)
		}
		return gz, func() { gz.Close() }, nil

	case bytes.HasPrefix(head, zstdMagic):
		zr, err := zstd.NewReader(r, zstd.WithDecoderConcurrency(1))
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %w", ErrArchive, err)
		}
		return zr, zr.Close, nil

	default:
		return r, func() {}, nil
	}
}

// Applies a single tar entry below destDir.
func (x *Extractor) extractEntry(r io.Reader, hdr *tar.Header, destDir string) error {
	target, err := x.resolve(destDir, hdr.Name)
	if err != nil {
		return err
	}
	if target == filepath.Clean(destDir) && hdr.Typeflag != tar.TypeDir {
		return fmt.Errorf("%w: %q replaces the destination", ErrUnsafePath, hdr.Name)
	}

	mode := hdr.FileInfo().Mode()

	switch hdr.Typeflag {
	case tar.TypeDir:
		if err := x.fs.MkdirAll(target, mode.Perm()|0700); err != nil {
			return err
		}
		x.chtimes(target, hdr)
		return nil

	case tar.TypeReg:
		if err := x.writeFile(target, r, mode.Perm()); err != nil {
			return err
		}
		x.chtimes(target, hdr)
		return nil

	case tar.TypeLink:
		source, err := x.resolve(destDir, hdr.Linkname)
		if err != nil {
			return err
		}
		return x.copyFile(source, target, mode.Perm())

	case tar.TypeSymlink:
		return x.symlink(hdr.Linkname, target)

	case tar.TypeChar, tar.TypeBlock, tar.TypeFifo:
		slog.Debug("skipping special file", "name", hdr.Name)
		return nil

	case tar.TypeXGlobalHeader:
		return nil

	default:
		return fmt.Errorf("%w: type %q", ErrUnsupported, hdr.Typeflag)
	}
}

// Joins an entry name to destDir without leaving it.
//
// Leading slashes and ".." components are confined to destDir, and symlinks
// already extracted are resolved inside destDir rather than followed out of
// it.
func (x *Extractor) resolve(destDir, name string) (string, error) {
	if strings.ContainsRune(name, 0) {
		return "", fmt.Errorf("%w: %q", ErrUnsafePath, name)
	}

	target, err := securejoin.SecureJoin(destDir, name)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %w", ErrUnsafePath, name, err)
	}
	return target, nil
}

// Writes r to path, replacing any existing file.
func (x *Extractor) writeFile(path string, r io.Reader, perm os.FileMode) error {
	if err := x.fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	f, err := x.fs.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return err
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	// OpenFile applies the umask; restore the archived permissions.
	return x.fs.Chmod(path, perm)
}

// Materializes a hard link by copying the already extracted source.
func (x *Extractor) copyFile(source, target string, perm os.FileMode) error {
	src, err := x.fs.Open(source)
	if err != nil {
		return fmt.Errorf("%w: hard link source: %w", ErrArchive, err)
	}
	defer src.Close()

	return x.writeFile(target, src, perm)
}

// Creates a symlink when the filesystem supports it.
func (x *Extractor) symlink(linkname, target string) error {
	linker, ok := x.fs.(afero.Linker)
	if !ok {
		slog.Warn("filesystem cannot create symlinks, skipping", "path", target, "link", linkname)
		return nil
	}

	if err := x.fs.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return err
	}
	if err := x.fs.Remove(target); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return linker.SymlinkIfPossible(linkname, target)
}

// Applies the entry's modification time. Failures are logged, not returned.
func (x *Extractor) chtimes(path string, hdr *tar.Header) {
	atime := hdr.AccessTime
	if atime.IsZero() {
		atime = hdr.ModTime
	}
	if err := x.fs.Chtimes(path, atime, hdr.ModTime); err != nil {
		slog.Debug("failed to set modification time", "path", path, "error", err)
	}
}
