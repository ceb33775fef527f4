package copyout

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"

	"github.com/spf13/afero"
)

// Binds a lazily assigned resource and releases it at most once.
//
// A guard is created before the work that produces the resource, assigned as
// soon as the resource exists, and released with defer so that every exit
// path runs the release action. Releasing an unassigned guard does nothing.
type Guard[T comparable] struct {
	kind     string        // Resource kind, used as the log key.
	resource T             // Bound resource; the zero value means none.
	release  func(T) error // Action run by the first effective Release.
}

// Creates a guard that runs release for the resource it is assigned.
func NewGuard[T comparable](kind string, release func(T) error) *Guard[T] {
	return &Guard[T]{kind: kind, release: release}
}

// Binds the resource to the guard.
func (g *Guard[T]) Assign(resource T) {
	g.resource = resource
}

// Returns the bound resource.
func (g *Guard[T]) Resource() T {
	return g.resource
}

// Runs the release action if a resource is bound, then clears the binding.
//
// The binding is cleared before the action runs, so later calls are no-ops
// even when the action fails.
func (g *Guard[T]) Release() error {
	var zero T
	if g.resource == zero {
		return nil
	}

	resource := g.resource
	g.resource = zero

	slog.Debug("releasing "+g.kind, g.kind, resource)
	return g.release(resource)
}

// Releases g and joins any release failure into *errp.
//
// Meant for defer with a named error result, so a cleanup failure is
// reported without hiding the error that caused the unwind.
func releaseInto[T comparable](g *Guard[T], errp *error) {
	if err := g.Release(); err != nil {
		*errp = errors.Join(*errp, err)
	}
}

// Creates a guard that removes a container through the engine.
//
// Removal runs on a context detached from ctx's cancellation, so an
// interrupted run still cleans up the containers it created.
func newContainerGuard(ctx context.Context, engine EngineAccess, removeVolumes bool) *Guard[string] {
	cleanupCtx := context.WithoutCancel(ctx)
	return NewGuard("container", func(id string) error {
		if err := engine.RemoveContainer(cleanupCtx, id, removeVolumes); err != nil {
			return wrap(ErrEngineAccess, err)
		}
		return nil
	})
}

// Creates a guard that deletes a file. A file that is already gone counts as
// deleted.
func newFileGuard(fsys afero.Fs) *Guard[string] {
	return NewGuard("file", func(path string) error {
		if err := fsys.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return wrap(ErrFileSystemOperation, err)
		}
		return nil
	})
}
