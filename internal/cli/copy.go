package cli

import (
	"context"
	"fmt"

	"github.com/cruciblehq/cruxcp/internal/client"
	"github.com/cruciblehq/cruxcp/internal/protocol"
)

// Represents the 'cruxcp copy' command.
type CopyCmd struct {
	ProjectFlags
	EngineFlags

	Mode               string `help:"Container source (${enum}). Auto uses a started session when there is one." enum:"auto,tracked,standalone" default:"auto" env:"CRUXCP_MODE"`
	NamePattern        string `help:"Naming pattern for ephemeral containers (%n image, %a alias, %t timestamp, %i index, %r random)." placeholder:"PATTERN" env:"CRUXCP_NAME_PATTERN"`
	RemoveVolumes      bool   `help:"Also remove the volumes of ephemeral containers." env:"CRUXCP_REMOVE_VOLUMES"`
	CreateUnconfigured bool   `help:"Create and remove a container even for images without copy entries." env:"CRUXCP_CREATE_UNCONFIGURED"`
}

// Executes the copy command.
func (c *CopyCmd) Run(ctx context.Context) error {
	file, err := c.projectFile()
	if err != nil {
		return err
	}

	req := &protocol.CopyRequest{
		ProjectFile:        file,
		Build:              c.Build,
		Mode:               c.Mode,
		NamePattern:        c.NamePattern,
		RemoveVolumes:      c.RemoveVolumes,
		CreateUnconfigured: c.CreateUnconfigured,
	}

	var res *protocol.CopyResult
	if c.Remote {
		res, err = client.Do[protocol.CopyResult](ctx, socketPath(), protocol.CmdCopy, req)
	} else {
		svc, closeFn, openErr := c.localService()
		if openErr != nil {
			return openErr
		}
		defer closeFn()
		res, err = svc.Copy(ctx, req)
	}

	if res != nil {
		printCopies(res)
	}
	return err
}

func printCopies(res *protocol.CopyResult) {
	for _, c := range res.Copies {
		fmt.Printf("%s:%s -> %s\n", c.Image, c.ContainerPath, c.HostDirectory)
	}
}
