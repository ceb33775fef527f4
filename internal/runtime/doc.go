// Package runtime manages copy containers backed by containerd.
//
// A [Runtime] connects to a containerd daemon and implements the container
// capabilities of a copy run. Images are pulled on first use and unpacked
// for the host platform. Containers are labelled with the build identity
// they belong to, the configured image name and alias, their port mappings
// and a creation timestamp, which is how [Runtime.Containers] finds them
// again in a later invocation.
//
// Ephemeral containers run a keep-alive task so that paths can be streamed
// out of them with an exec of tar. Each [Container] is a lightweight handle
// resolved lazily against containerd.
//
// Example usage:
//
//	rt, err := runtime.New("/run/containerd/containerd.sock", "cruxcp")
//	if err != nil {
//	    return err
//	}
//	defer rt.Close()
//
//	id, err := rt.CreateContainer(ctx, copyout.CreateRequest{
//	    Target: &project.ImageTarget{Name: "alpine:3.20"},
//	    Build:  "app-1.0",
//	})
//	if err != nil {
//	    return err
//	}
//	defer rt.RemoveContainer(ctx, id, true)
//
//	var buf bytes.Buffer
//	if err := rt.CopyArchiveFromContainer(ctx, id, "/etc/os-release", &buf); err != nil {
//	    return err
//	}
package runtime
