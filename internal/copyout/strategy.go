package copyout

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cruciblehq/cruxcp/internal/project"
)

// Where the containers of a run come from.
type Mode int

const (

	// Ephemeral containers are created per image and removed afterwards.
	ModeStandalone Mode = iota

	// Containers recorded by a prior start step are used as found.
	ModeTracked
)

// Returns "standalone" or "tracked".
func (m Mode) String() string {
	switch m {
	case ModeStandalone:
		return "standalone"
	case ModeTracked:
		return "tracked"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Parses "standalone" or "tracked", case-insensitively.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "standalone":
		return ModeStandalone, nil
	case "tracked":
		return ModeTracked, nil
	default:
		return 0, fmt.Errorf("%w: unknown mode %q", ErrConfiguration, s)
	}
}

// A target paired with its container id, when one is already known.
type candidate struct {
	id     string               // Tracked container id; empty in standalone mode.
	target *project.ImageTarget // Image the container belongs to.
}

// Supplies the targets of a run and the container to copy from for each.
type source interface {

	// Returns the targets in processing order.
	candidates() []candidate

	// Whether a target is passed over without touching any container.
	skip(target *project.ImageTarget) bool

	// Returns the container id for a candidate. Containers owned by the run
	// are assigned to guard before acquire returns.
	acquire(ctx context.Context, cand candidate, guard *Guard[string]) (string, error)
}

// Builds the source for the run's mode.
//
// Tracked mode lists the build's containers once; standalone mode needs no
// lookup until a container is created.
func (c *copier) source(ctx context.Context) (source, error) {
	switch c.opts.Mode {
	case ModeTracked:
		slog.Debug("copying from containers tracked for build", "build", c.opts.Build)
		tracked, err := c.opts.Runner.Containers(ctx, c.opts.Build)
		if err != nil {
			return nil, wrap(ErrEngineAccess, err)
		}
		return trackedSource(tracked), nil

	case ModeStandalone:
		slog.Debug("copying from ephemeral containers", "images", len(c.opts.Images))
		return &standaloneSource{c: c}, nil

	default:
		return nil, fmt.Errorf("%w: unknown mode %v", ErrConfiguration, c.opts.Mode)
	}
}

// Containers recorded by a prior start step. They are never created or
// removed by the run.
type trackedSource []TrackedContainer

func (s trackedSource) candidates() []candidate {
	cands := make([]candidate, 0, len(s))
	for _, tc := range s {
		if tc.Target == nil {
			slog.Warn("tracked container has no image configuration", "container", tc.ID)
			continue
		}
		cands = append(cands, candidate{id: tc.ID, target: tc.Target})
	}
	return cands
}

func (s trackedSource) skip(target *project.ImageTarget) bool {
	return !target.HasCopyEntries()
}

func (s trackedSource) acquire(_ context.Context, cand candidate, _ *Guard[string]) (string, error) {
	slog.Debug("found tracked container", "container", cand.id, "image", cand.target.Name)
	return cand.id, nil
}

// One ephemeral container per configured image.
type standaloneSource struct {
	c *copier
}

func (s *standaloneSource) candidates() []candidate {
	cands := make([]candidate, len(s.c.opts.Images))
	for i := range s.c.opts.Images {
		cands[i] = candidate{target: &s.c.opts.Images[i]}
	}
	return cands
}

func (s *standaloneSource) skip(target *project.ImageTarget) bool {
	return !target.HasCopyEntries() && !s.c.opts.CreateUnconfigured
}

// Creates the container and binds it to guard before returning, so that a
// failure in any later step removes it.
func (s *standaloneSource) acquire(ctx context.Context, cand candidate, guard *Guard[string]) (string, error) {
	opts := s.c.opts

	ports, err := project.ParsePortMapping(cand.target.Run.Ports, opts.Properties)
	if err != nil {
		return "", wrap(ErrConfiguration, err)
	}

	id, err := opts.Runner.CreateContainer(ctx, CreateRequest{
		Target:      cand.target,
		Ports:       ports,
		Build:       opts.Build,
		Properties:  opts.Properties,
		BaseDir:     opts.BaseDir,
		NamePattern: opts.NamePattern,
		Timestamp:   opts.Timestamp,
	})
	if err != nil {
		return "", wrap(ErrEngineAccess, err)
	}

	guard.Assign(id)
	s.c.report.Created++

	slog.Debug("created ephemeral container", "container", id, "image", cand.target.Name)
	return id, nil
}
