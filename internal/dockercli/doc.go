// Package dockercli drives containers through the docker or podman command
// line.
//
// A [CLI] implements the same container capabilities as the containerd
// runtime, for hosts where a docker-compatible engine is what is available.
// Copy containers are created but never started: "docker cp" reads from
// created containers directly. Session containers are created and started
// with the configured command, environment, working directory and published
// ports.
//
// Example usage:
//
//	bin, err := dockercli.DetectRuntime()
//	if err != nil {
//	    return err
//	}
//	cli := dockercli.New(bin)
//
//	id, err := cli.CreateContainer(ctx, req)
//	if err != nil {
//	    return err
//	}
//	defer cli.RemoveContainer(ctx, id, true)
package dockercli
