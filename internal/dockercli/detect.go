package dockercli

import "os/exec"

// Finds an available container runtime binary.
//
// Checks docker first, then podman. Verifies the binary actually works by
// running "<runtime> version".
func DetectRuntime() (string, error) {
	for _, bin := range []string{"docker", "podman"} {
		if _, err := exec.LookPath(bin); err != nil {
			continue
		}
		if err := exec.Command(bin, "version").Run(); err != nil {
			continue
		}
		return bin, nil
	}
	return "", ErrNoRuntime
}
