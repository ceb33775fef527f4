package copyout

import "path/filepath"

// Returns the absolute host directory for a copy entry.
//
// An empty hostPath means baseDir. Absolute paths are returned unchanged and
// relative ones are joined to baseDir. The directory is not checked or
// created.
func ResolveHostDir(baseDir, hostPath string) string {
	if hostPath == "" {
		return baseDir
	}
	if filepath.IsAbs(hostPath) {
		return hostPath
	}
	return filepath.Join(baseDir, hostPath)
}
