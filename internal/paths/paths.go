package paths

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

const (

	// Name used for directory and file naming.
	appName = "cruxcp"

	// Default permission mode for directories.
	DefaultDirMode os.FileMode = 0755

	// Default permission mode for files.
	DefaultFileMode os.FileMode = 0644
)

// Directory for runtime files (sockets, PIDs).
//
//	Linux:   $XDG_RUNTIME_DIR/cruxcp or ~/.cache/cruxcp/run
//	macOS:   ~/Library/Caches/cruxcp/run
func Runtime() string {
	if xdg.RuntimeDir != "" {
		return filepath.Join(xdg.RuntimeDir, appName)
	}
	return filepath.Join(xdg.CacheHome, appName, "run")
}

// Default path to the daemon's Unix domain socket.
func Socket() string {
	return filepath.Join(Runtime(), "cruxcp.sock")
}

// Default path to the daemon's PID file.
func PIDFile() string {
	return filepath.Join(Runtime(), "cruxcp.pid")
}

// Directory holding session records written by "cruxcp start".
//
//	Linux:   $XDG_STATE_HOME/cruxcp/sessions
//	macOS:   ~/Library/Application Support/cruxcp/sessions
func Sessions() string {
	return filepath.Join(xdg.StateHome, appName, "sessions")
}

// Directory for temporary copy archives.
//
// Archives are staged in the user's cache rather than the system temp
// directory so that large copies do not fill a tmpfs.
func Archives() string {
	return filepath.Join(xdg.CacheHome, appName, "archives")
}
