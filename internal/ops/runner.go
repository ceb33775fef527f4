package ops

import (
	"context"

	"github.com/cruciblehq/cruxcp/internal/copyout"
	"github.com/cruciblehq/cruxcp/internal/engine"
	"github.com/cruciblehq/cruxcp/internal/project"
)

// Resolves tracked containers against the project's images.
//
// Engines only know the image name and alias recorded on a container; the
// copy configuration comes from the project. A container whose image is no
// longer configured gets a nil target and is skipped by the run.
type projectRunner struct {
	engine.Engine
	project *project.Project
}

func (r projectRunner) Containers(ctx context.Context, build string) ([]copyout.TrackedContainer, error) {
	tracked, err := r.Engine.Containers(ctx, build)
	if err != nil {
		return nil, err
	}

	for i := range tracked {
		if tracked[i].Target != nil {
			tracked[i].Target = r.resolve(tracked[i].Target)
		}
	}
	return tracked, nil
}

func (r projectRunner) resolve(recorded *project.ImageTarget) *project.ImageTarget {
	if recorded.Alias != "" {
		if t, ok := r.project.Image(recorded.Alias); ok {
			return t
		}
	}
	if t, ok := r.project.Image(recorded.Name); ok {
		return t
	}
	return nil
}
