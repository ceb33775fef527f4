package protocol

import "time"

// Observed state of a container.
type ContainerState string

const (
	ContainerRunning    ContainerState = "running"
	ContainerStopped    ContainerState = "stopped"
	ContainerNotCreated ContainerState = "not-created"
)

// Payload of [CmdCopy].
type CopyRequest struct {
	ProjectFile        string `json:"projectFile"`                  // Absolute path of the project file.
	Build              string `json:"build,omitempty"`              // Build identity override.
	Mode               string `json:"mode,omitempty"`               // "tracked" or "standalone"; empty selects by session.
	NamePattern        string `json:"namePattern,omitempty"`        // Naming pattern for ephemeral containers.
	RemoveVolumes      bool   `json:"removeVolumes,omitempty"`      // Remove volumes with ephemeral containers.
	CreateUnconfigured bool   `json:"createUnconfigured,omitempty"` // Create containers for images without copy entries.
}

// One completed copy.
type CopiedPath struct {
	Container     string `json:"container"`
	Image         string `json:"image"`
	ContainerPath string `json:"containerPath"`
	HostDirectory string `json:"hostDirectory"`
}

// Result of [CmdCopy].
type CopyResult struct {
	Build   string       `json:"build"`
	Mode    string       `json:"mode"`
	Copies  []CopiedPath `json:"copies"`
	Created int          `json:"created"`
	Removed int          `json:"removed"`
}

// Payload of [CmdStart].
type StartRequest struct {
	ProjectFile string `json:"projectFile"`
	Build       string `json:"build,omitempty"`
	NamePattern string `json:"namePattern,omitempty"`
}

// A container belonging to a session.
type ContainerInfo struct {
	ID    string         `json:"id"`
	Image string         `json:"image"`
	Alias string         `json:"alias,omitempty"`
	State ContainerState `json:"state,omitempty"`
}

// Result of [CmdStart].
type StartResult struct {
	Build      string          `json:"build"`
	Containers []ContainerInfo `json:"containers"`
}

// Payload of [CmdStop].
type StopRequest struct {
	ProjectFile   string `json:"projectFile"`
	Build         string `json:"build,omitempty"`
	RemoveVolumes bool   `json:"removeVolumes,omitempty"`
}

// Result of [CmdStop].
type StopResult struct {
	Build   string   `json:"build"`
	Removed []string `json:"removed"`
}

// A started build session.
type SessionInfo struct {
	Build      string          `json:"build"`
	StartedAt  time.Time       `json:"startedAt"`
	Containers []ContainerInfo `json:"containers"`
}

// Result of [CmdStatus].
type StatusResult struct {
	Running  bool          `json:"running"`
	Version  string        `json:"version"`
	Pid      int           `json:"pid"`
	Uptime   string        `json:"uptime"`
	Copies   int           `json:"copies"`
	Sessions []SessionInfo `json:"sessions,omitempty"`
}

// Payload of [CmdError].
type ErrorResult struct {
	Message string `json:"message"`
}
