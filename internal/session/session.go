package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/cruciblehq/cruxcp/internal/paths"
	"github.com/opencontainers/go-digest"
	"github.com/spf13/afero"
)

const fileExt = ".json"

// A started build.
type Session struct {
	Build      string      `json:"build"`
	StartedAt  time.Time   `json:"startedAt"`
	Containers []Container `json:"containers"`
}

// A container started for a session.
type Container struct {
	ID    string `json:"id"`
	Image string `json:"image"`
	Alias string `json:"alias,omitempty"`
}

// Persists sessions as files in a directory.
type Store struct {
	fs  afero.Fs
	dir string
}

// Creates a store keeping its records in dir.
func NewStore(fsys afero.Fs, dir string) *Store {
	return &Store{fs: fsys, dir: dir}
}

// Returns the record path for a build.
func (s *Store) path(build string) string {
	return filepath.Join(s.dir, digest.FromString(build).Encoded()+fileExt)
}

// Writes the session, replacing any previous record for its build.
//
// The record is written to a temporary file and renamed into place.
func (s *Store) Save(sess *Session) error {
	if err := s.fs.MkdirAll(s.dir, paths.DefaultDirMode); err != nil {
		return err
	}

	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return err
	}

	target := s.path(sess.Build)
	tmp := target + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, data, paths.DefaultFileMode); err != nil {
		return err
	}
	if err := s.fs.Rename(tmp, target); err != nil {
		s.fs.Remove(tmp)
		return err
	}

	slog.Debug("session saved", "build", sess.Build, "containers", len(sess.Containers))
	return nil
}

// Loads the session of a build. Returns [ErrNotFound] when there is none.
func (s *Store) Load(build string) (*Session, error) {
	sess, err := s.read(s.path(build))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, build)
	}
	if err != nil {
		return nil, err
	}
	if sess.Build != build {
		return nil, fmt.Errorf("%w: record for %q found under %q", ErrCorrupt, sess.Build, build)
	}
	return sess, nil
}

// Whether a session exists for the build.
func (s *Store) Exists(build string) (bool, error) {
	return afero.Exists(s.fs, s.path(build))
}

// Deletes the session of a build. Deleting a missing session is not an error.
func (s *Store) Delete(build string) error {
	err := s.fs.Remove(s.path(build))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// Returns all sessions ordered by start time.
//
// Unreadable records are logged and skipped.
func (s *Store) List() ([]*Session, error) {
	entries, err := afero.ReadDir(s.fs, s.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var sessions []*Session
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), fileExt) {
			continue
		}
		sess, err := s.read(filepath.Join(s.dir, e.Name()))
		if err != nil {
			slog.Warn("skipping session record", "file", e.Name(), "error", err)
			continue
		}
		sessions = append(sessions, sess)
	}

	slices.SortFunc(sessions, func(a, b *Session) int {
		return a.StartedAt.Compare(b.StartedAt)
	})
	return sessions, nil
}

func (s *Store) read(path string) (*Session, error) {
	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		return nil, err
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	return &sess, nil
}
