package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/cruciblehq/cruxcp/internal/engine"
	"github.com/cruciblehq/cruxcp/internal/ops"
	"github.com/cruciblehq/cruxcp/internal/paths"
	"github.com/cruciblehq/cruxcp/internal/project"
	"github.com/cruciblehq/cruxcp/internal/session"
	"github.com/spf13/afero"
)

// Selects the project and build a command applies to.
type ProjectFlags struct {
	File  string `short:"f" help:"Project file. Defaults to cruxcp.yaml, cruxcp.yml or cruxcp.toml in the working directory." placeholder:"PATH" env:"CRUXCP_FILE"`
	Build string `help:"Build identity. Defaults to the project's build field." env:"CRUXCP_BUILD"`
}

// Returns the absolute path of the project file.
func (f *ProjectFlags) projectFile() (string, error) {
	path := f.File
	if path == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", err
		}
		if path, err = project.Find(cwd); err != nil {
			return "", err
		}
	}
	return filepath.Abs(path)
}

// Selects where a command runs and which engine it uses locally.
type EngineFlags struct {
	Remote    bool   `help:"Send the command to the daemon instead of running it here." env:"CRUXCP_REMOTE"`
	Engine    string `help:"Container engine (${enum})." enum:"auto,containerd,docker,podman" default:"auto" env:"CRUXCP_ENGINE"`
	Address   string `help:"Containerd socket address." default:"${containerd_address}" env:"CRUXCP_ADDRESS"`
	Namespace string `help:"Containerd namespace." default:"${containerd_namespace}" env:"CRUXCP_NAMESPACE"`
}

func (f *EngineFlags) engineConfig() engine.Config {
	return engine.Config{Kind: f.Engine, Address: f.Address, Namespace: f.Namespace}
}

// Opens the engine and returns a service running commands in-process.
//
// The returned function closes the engine.
func (f *EngineFlags) localService() (*ops.Service, func(), error) {
	eng, err := engine.Open(f.engineConfig())
	if err != nil {
		return nil, nil, fmt.Errorf("opening engine: %w", err)
	}

	fsys := afero.NewOsFs()
	svc := &ops.Service{
		Engine: eng,
		Store:  session.NewStore(fsys, paths.Sessions()),
		FS:     fsys,
	}
	return svc, func() { eng.Close() }, nil
}

// Returns the daemon socket path.
func socketPath() string {
	if RootCmd.Socket != "" {
		return RootCmd.Socket
	}
	return paths.Socket()
}
