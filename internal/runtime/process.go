package runtime

import (
	"maps"
	"slices"

	"github.com/containerd/containerd/v2/pkg/oci"
	"github.com/cruciblehq/cruxcp/internal/project"
)

// Returns the spec options selecting the container's process.
//
// Keep-alive containers run "sleep infinity" regardless of configuration.
// Port mappings are recorded as labels rather than applied, since containers
// share the host network namespace.
func processOpts(run project.RunConfiguration, keepAlive bool) []oci.SpecOpts {
	var opts []oci.SpecOpts

	if keepAlive {
		opts = append(opts, oci.WithProcessArgs("sleep", "infinity"))
	} else if len(run.Cmd) > 0 {
		opts = append(opts, oci.WithProcessArgs(run.Cmd...))
	}

	if len(run.Env) > 0 {
		env := make([]string, 0, len(run.Env))
		for _, k := range slices.Sorted(maps.Keys(run.Env)) {
			env = append(env, k+"="+run.Env[k])
		}
		opts = append(opts, oci.WithEnv(env))
	}

	if run.Workdir != "" {
		opts = append(opts, oci.WithProcessCwd(run.Workdir))
	}

	return opts
}
