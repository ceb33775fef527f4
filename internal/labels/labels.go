// Package labels defines the container labels cruxcp records and how tracked
// containers are rebuilt from them.
//
// Containers carry the build identity they were started for, the image name
// and alias as configured in the project, their port mappings and a creation
// timestamp under the OCI "created" annotation key. A role label separates
// containers started for a build session from the short-lived containers
// created for a single copy. Engines list the started containers of a build
// and hand the results to [Tracked].
package labels

import (
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/cruciblehq/cruxcp/internal/copyout"
	"github.com/cruciblehq/cruxcp/internal/project"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
)

const (
	Build   = "cruxcp.build"            // Build identity the container belongs to.
	Role    = "cruxcp.role"             // Why the container exists, one of the role values below.
	Image   = "cruxcp.image"            // Image name as configured in the project.
	Alias   = "cruxcp.alias"            // Image alias, when configured.
	Ports   = "cruxcp.ports"            // Published ports in -p syntax, comma separated.
	Created = ocispec.AnnotationCreated // RFC 3339 creation time.
)

// Values of the [Role] label.
const (
	RoleStarted = "started" // Started for a build session; removed by stop.
	RoleCopy    = "copy"    // Created for one copy run and removed after it.
)

// Builds the label set for a new container in the given role.
func ForRequest(req copyout.CreateRequest, role string, now time.Time) map[string]string {
	l := map[string]string{
		Build:   req.Build,
		Role:    role,
		Created: now.UTC().Format(time.RFC3339),
	}
	if req.Target != nil {
		l[Image] = req.Target.Name
		if req.Target.Alias != "" {
			l[Alias] = req.Target.Alias
		}
	}
	if specs := req.Ports.Specs(); len(specs) > 0 {
		l[Ports] = strings.Join(specs, ",")
	}
	return l
}

// Container metadata as reported by an engine.
type Record struct {
	ID      string
	Labels  map[string]string
	Created time.Time
}

// Selectors matching the started containers of a build, as key/value pairs.
func StartedSelector(build string) map[string]string {
	return map[string]string{Build: build, Role: RoleStarted}
}

// Orders the started records by creation time, then ID, and maps them to
// tracked containers.
//
// Records in any other role are dropped, so a copy container left behind by
// a failed removal is never mistaken for a started one. Targets carry only
// the recorded image name and alias; a record without an image label yields
// a nil target.
func Tracked(records []Record) []copyout.TrackedContainer {
	sorted := slices.Clone(records)
	slices.SortStableFunc(sorted, func(a, b Record) int {
		if c := a.Created.Compare(b.Created); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})

	tracked := make([]copyout.TrackedContainer, 0, len(sorted))
	for _, r := range sorted {
		if role := r.Labels[Role]; role != RoleStarted {
			slog.Debug("ignoring container not started for the build", "container", r.ID, "role", role)
			continue
		}
		tc := copyout.TrackedContainer{ID: r.ID}
		if name := r.Labels[Image]; name != "" {
			tc.Target = &project.ImageTarget{Name: name, Alias: r.Labels[Alias]}
		}
		tracked = append(tracked, tc)
	}
	return tracked
}
