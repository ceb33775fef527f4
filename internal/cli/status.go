package cli

import (
	"context"
	"fmt"

	"github.com/cruciblehq/cruxcp/internal/client"
	"github.com/cruciblehq/cruxcp/internal/protocol"
)

// Represents the 'cruxcp status' command.
type StatusCmd struct{}

// Executes the status command.
func (c *StatusCmd) Run(ctx context.Context) error {
	res, err := client.Do[protocol.StatusResult](ctx, socketPath(), protocol.CmdStatus, nil)
	if err != nil {
		return err
	}

	fmt.Printf("version: %s\npid: %d\nuptime: %s\ncopies: %d\n", res.Version, res.Pid, res.Uptime, res.Copies)
	for _, s := range res.Sessions {
		fmt.Printf("session %s (started %s)\n", s.Build, s.StartedAt.Format("2006-01-02 15:04:05"))
		for _, ctr := range s.Containers {
			fmt.Printf("  %s\t%s\t%s\n", ctr.ID, ctr.Image, ctr.State)
		}
	}
	return nil
}
