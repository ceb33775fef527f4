package copyout

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/cruciblehq/cruxcp/internal/project"
	"github.com/spf13/afero"
)

// Shared, ordered log of capability calls.
type callLog struct {
	calls []string
}

func (l *callLog) add(format string, args ...any) {
	l.calls = append(l.calls, fmt.Sprintf(format, args...))
}

// Filters the log to calls starting with prefix.
func (l *callLog) with(prefix string) []string {
	var out []string
	for _, c := range l.calls {
		if strings.HasPrefix(c, prefix) {
			out = append(out, c)
		}
	}
	return out
}

type fakeEngine struct {
	log       *callLog
	payload   string           // Written to the archive on every copy.
	copyErr   map[string]error // Keyed by container path.
	removeErr error
	removeCtx []context.Context
}

func (e *fakeEngine) CopyArchiveFromContainer(ctx context.Context, id, containerPath string, w io.Writer) error {
	e.log.add("copy %s %s", id, containerPath)
	if _, err := io.WriteString(w, e.payload); err != nil {
		return err
	}
	return e.copyErr[containerPath]
}

func (e *fakeEngine) RemoveContainer(ctx context.Context, id string, removeVolumes bool) error {
	e.log.add("remove %s volumes=%t", id, removeVolumes)
	e.removeCtx = append(e.removeCtx, ctx)
	return e.removeErr
}

type fakeRunner struct {
	log       *callLog
	tracked   []TrackedContainer
	listErr   error
	createErr error
	requests  []CreateRequest
}

func (r *fakeRunner) CreateContainer(ctx context.Context, req CreateRequest) (string, error) {
	r.log.add("create %s", req.Target.Name)
	if r.createErr != nil {
		return "", r.createErr
	}
	r.requests = append(r.requests, req)
	return fmt.Sprintf("eph-%d", len(r.requests)), nil
}

func (r *fakeRunner) Containers(ctx context.Context, build string) ([]TrackedContainer, error) {
	r.log.add("containers %s", build)
	return r.tracked, r.listErr
}

type fakeExtractor struct {
	log      *callLog
	fs       afero.Fs
	err      error
	archives []string // Archive paths seen by Extract.
	contents []string // Archive contents at extraction time.
}

func (x *fakeExtractor) Extract(ctx context.Context, archivePath, destDir string) error {
	x.log.add("extract %s", destDir)
	x.archives = append(x.archives, archivePath)
	data, err := afero.ReadFile(x.fs, archivePath)
	if err != nil {
		return err
	}
	x.contents = append(x.contents, string(data))
	return x.err
}

// Test fixture wiring the fakes to an in-memory filesystem.
type fixture struct {
	log       *callLog
	fs        afero.Fs
	engine    *fakeEngine
	runner    *fakeRunner
	extractor *fakeExtractor
}

const (
	testBaseDir = "/project"
	testTempDir = "/tmp/archives"
)

func newFixture() *fixture {
	log := &callLog{}
	fs := afero.NewMemMapFs()
	return &fixture{
		log:       log,
		fs:        fs,
		engine:    &fakeEngine{log: log, payload: "tar-bytes", copyErr: map[string]error{}},
		runner:    &fakeRunner{log: log},
		extractor: &fakeExtractor{log: log, fs: fs},
	}
}

func (f *fixture) options(mode Mode, images ...project.ImageTarget) Options {
	return Options{
		Mode:      mode,
		Engine:    f.engine,
		Runner:    f.runner,
		Extractor: f.extractor,
		FS:        f.fs,
		TempDir:   testTempDir,
		Images:    images,
		Build:     "build-1",
		BaseDir:   testBaseDir,
	}
}

// Returns the files left in the archive temp directory.
func (f *fixture) leftoverArchives() []string {
	entries, err := afero.ReadDir(f.fs, testTempDir)
	if err != nil {
		return nil
	}
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name()
	}
	return names
}

func image(name string, entries ...project.CopyEntry) project.ImageTarget {
	return project.ImageTarget{
		Name: name,
		Copy: &project.CopyConfiguration{Entries: entries},
	}
}

func entry(containerPath, hostDirectory string) project.CopyEntry {
	return project.CopyEntry{ContainerPath: containerPath, HostDirectory: hostDirectory}
}
