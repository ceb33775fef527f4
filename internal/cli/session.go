package cli

import (
	"context"
	"fmt"

	"github.com/cruciblehq/cruxcp/internal/client"
	"github.com/cruciblehq/cruxcp/internal/protocol"
)

// Represents the 'cruxcp start' command.
type StartCmd struct {
	ProjectFlags
	EngineFlags

	NamePattern string `help:"Naming pattern for the started containers." placeholder:"PATTERN" env:"CRUXCP_NAME_PATTERN"`
}

// Executes the start command.
func (c *StartCmd) Run(ctx context.Context) error {
	file, err := c.projectFile()
	if err != nil {
		return err
	}

	req := &protocol.StartRequest{ProjectFile: file, Build: c.Build, NamePattern: c.NamePattern}

	var res *protocol.StartResult
	if c.Remote {
		res, err = client.Do[protocol.StartResult](ctx, socketPath(), protocol.CmdStart, req)
	} else {
		svc, closeFn, openErr := c.localService()
		if openErr != nil {
			return openErr
		}
		defer closeFn()
		res, err = svc.Start(ctx, req)
	}
	if err != nil {
		return err
	}

	for _, ctr := range res.Containers {
		fmt.Printf("%s\t%s\n", ctr.ID, ctr.Image)
	}
	return nil
}

// Represents the 'cruxcp stop' command.
type StopCmd struct {
	ProjectFlags
	EngineFlags

	RemoveVolumes bool `help:"Also remove the containers' volumes." env:"CRUXCP_REMOVE_VOLUMES"`
}

// Executes the stop command.
func (c *StopCmd) Run(ctx context.Context) error {
	file, err := c.projectFile()
	if err != nil {
		return err
	}

	req := &protocol.StopRequest{ProjectFile: file, Build: c.Build, RemoveVolumes: c.RemoveVolumes}

	var res *protocol.StopResult
	if c.Remote {
		res, err = client.Do[protocol.StopResult](ctx, socketPath(), protocol.CmdStop, req)
	} else {
		svc, closeFn, openErr := c.localService()
		if openErr != nil {
			return openErr
		}
		defer closeFn()
		res, err = svc.Stop(ctx, req)
	}

	if res != nil {
		for _, id := range res.Removed {
			fmt.Println(id)
		}
	}
	return err
}
