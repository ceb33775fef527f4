package ops

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cruciblehq/cruxcp/internal/archive"
	"github.com/cruciblehq/cruxcp/internal/copyout"
	"github.com/cruciblehq/cruxcp/internal/engine"
	"github.com/cruciblehq/cruxcp/internal/paths"
	"github.com/cruciblehq/cruxcp/internal/project"
	"github.com/cruciblehq/cruxcp/internal/protocol"
	"github.com/cruciblehq/cruxcp/internal/session"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"
)

// Concurrent state queries issued by [Service.Sessions].
const stateQueryLimit = 4

// Runs commands against an engine and a session store.
type Service struct {
	Engine  engine.Engine  // Container engine.
	Store   *session.Store // Started sessions.
	FS      afero.Fs       // Host filesystem. Defaults to the OS.
	TempDir string         // Directory for temporary archives. Defaults to [paths.Archives].
}

// Copies the configured paths out of the build's containers.
func (s *Service) Copy(ctx context.Context, req *protocol.CopyRequest) (*protocol.CopyResult, error) {
	proj, err := loadProject(req.ProjectFile)
	if err != nil {
		return nil, err
	}
	build := proj.BuildIdentity(req.Build)

	mode, err := s.mode(req.Mode, build)
	if err != nil {
		return nil, err
	}

	fsys := s.fs()
	report, err := copyout.Run(ctx, copyout.Options{
		Mode:               mode,
		Engine:             s.Engine,
		Runner:             projectRunner{Engine: s.Engine, project: proj},
		Extractor:          archive.NewExtractor(fsys),
		FS:                 fsys,
		TempDir:            s.tempDir(),
		Images:             proj.Images,
		Build:              build,
		Properties:         proj.Properties,
		BaseDir:            proj.BaseDir,
		NamePattern:        req.NamePattern,
		RemoveVolumes:      req.RemoveVolumes,
		CreateUnconfigured: req.CreateUnconfigured,
	})

	result := copyResult(build, report)
	if err != nil {
		return result, err
	}

	slog.Info("copy finished", "build", build, "mode", mode, "copies", len(result.Copies))
	return result, nil
}

// Starts one container per configured image and records the session.
//
// Containers started before a failure are removed again and no session is
// recorded.
func (s *Service) Start(ctx context.Context, req *protocol.StartRequest) (res *protocol.StartResult, err error) {
	proj, err := loadProject(req.ProjectFile)
	if err != nil {
		return nil, err
	}
	build := proj.BuildIdentity(req.Build)

	active, err := s.Store.Exists(build)
	if err != nil {
		return nil, err
	}
	if active {
		return nil, fmt.Errorf("%w: %s", ErrSessionActive, build)
	}

	sess := &session.Session{Build: build, StartedAt: time.Now()}

	defer func() {
		if err != nil {
			err = errors.Join(err, s.rollback(ctx, sess.Containers))
		}
	}()

	for i := range proj.Images {
		target := &proj.Images[i]

		ports, err := project.ParsePortMapping(target.Run.Ports, proj.Properties)
		if err != nil {
			return nil, err
		}

		id, err := s.Engine.StartContainer(ctx, copyout.CreateRequest{
			Target:      target,
			Ports:       ports,
			Build:       build,
			Properties:  proj.Properties,
			BaseDir:     proj.BaseDir,
			NamePattern: req.NamePattern,
			Timestamp:   sess.StartedAt,
		})
		if err != nil {
			return nil, fmt.Errorf("starting %s: %w", target.Description(), err)
		}

		sess.Containers = append(sess.Containers, session.Container{ID: id, Image: target.Name, Alias: target.Alias})
		slog.Info("container started", "id", id, "image", target.Description())
	}

	if err := s.Store.Save(sess); err != nil {
		return nil, err
	}

	return &protocol.StartResult{Build: build, Containers: containerInfos(sess.Containers)}, nil
}

// Removes the containers of the build's session and deletes it.
//
// Every container is attempted. The session is kept when any removal fails
// so that stop can be retried.
func (s *Service) Stop(ctx context.Context, req *protocol.StopRequest) (*protocol.StopResult, error) {
	proj, err := loadProject(req.ProjectFile)
	if err != nil {
		return nil, err
	}
	build := proj.BuildIdentity(req.Build)

	sess, err := s.Store.Load(build)
	if err != nil {
		return nil, err
	}

	result := &protocol.StopResult{Build: build, Removed: []string{}}
	var errs []error

	for _, c := range sess.Containers {
		if err := s.Engine.RemoveContainer(ctx, c.ID, req.RemoveVolumes); err != nil {
			errs = append(errs, fmt.Errorf("removing %s: %w", c.ID, err))
			continue
		}
		result.Removed = append(result.Removed, c.ID)
		slog.Info("container removed", "id", c.ID)
	}

	if err := errors.Join(errs...); err != nil {
		return result, err
	}

	return result, s.Store.Delete(build)
}

// Lists the started sessions with the current state of their containers.
//
// A container whose state cannot be determined is reported without one.
func (s *Service) Sessions(ctx context.Context) ([]protocol.SessionInfo, error) {
	sessions, err := s.Store.List()
	if err != nil {
		return nil, err
	}

	infos := make([]protocol.SessionInfo, len(sessions))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(stateQueryLimit)

	for i, sess := range sessions {
		infos[i] = protocol.SessionInfo{
			Build:      sess.Build,
			StartedAt:  sess.StartedAt,
			Containers: containerInfos(sess.Containers),
		}
		for j := range infos[i].Containers {
			c := &infos[i].Containers[j]
			g.Go(func() error {
				state, err := s.Engine.ContainerState(gctx, c.ID)
				if err != nil {
					slog.Warn("failed to query container state", "id", c.ID, "error", err)
					return nil
				}
				c.State = state
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return infos, nil
}

// Resolves the requested mode, consulting the session store when unset.
func (s *Service) mode(requested, build string) (copyout.Mode, error) {
	if r := strings.TrimSpace(requested); r != "" && !strings.EqualFold(r, "auto") {
		return copyout.ParseMode(r)
	}

	active, err := s.Store.Exists(build)
	if err != nil {
		return 0, err
	}
	if active {
		return copyout.ModeTracked, nil
	}
	return copyout.ModeStandalone, nil
}

// Removes containers started by a failed start.
func (s *Service) rollback(ctx context.Context, containers []session.Container) error {
	ctx = context.WithoutCancel(ctx)

	var errs []error
	for _, c := range containers {
		slog.Debug("rolling back container", "id", c.ID)
		if err := s.Engine.RemoveContainer(ctx, c.ID, true); err != nil {
			errs = append(errs, fmt.Errorf("removing %s: %w", c.ID, err))
		}
	}
	return errors.Join(errs...)
}

func (s *Service) fs() afero.Fs {
	if s.FS == nil {
		return afero.NewOsFs()
	}
	return s.FS
}

func (s *Service) tempDir() string {
	if s.TempDir == "" {
		return paths.Archives()
	}
	return s.TempDir
}

// Loads the project file named by a request.
func loadProject(path string) (*project.Project, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: no project file", ErrRequest)
	}
	return project.Load(path)
}

func copyResult(build string, report *copyout.Report) *protocol.CopyResult {
	result := &protocol.CopyResult{Build: build, Copies: []protocol.CopiedPath{}}
	if report == nil {
		return result
	}

	result.Mode = report.Mode.String()
	result.Created = report.Created
	result.Removed = report.Removed
	for _, c := range report.Copies {
		result.Copies = append(result.Copies, protocol.CopiedPath{
			Container:     c.ContainerID,
			Image:         c.Image,
			ContainerPath: c.ContainerPath,
			HostDirectory: c.HostDirectory,
		})
	}
	return result
}

func containerInfos(containers []session.Container) []protocol.ContainerInfo {
	infos := make([]protocol.ContainerInfo, len(containers))
	for i, c := range containers {
		infos[i] = protocol.ContainerInfo{ID: c.ID, Image: c.Image, Alias: c.Alias}
	}
	return infos
}
