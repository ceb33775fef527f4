// Package client talks to the cruxcp daemon over its Unix socket.
//
// Each call opens a connection, sends one request envelope and reads one
// response. Closing the connection is how the daemon learns that a command
// was abandoned, so cancelling the context of a call cancels the command on
// the daemon side too.
//
// Example usage:
//
//	res, err := client.Do[protocol.CopyResult](ctx, paths.Socket(), protocol.CmdCopy, &protocol.CopyRequest{
//	    ProjectFile: "/src/app/cruxcp.yaml",
//	})
package client

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"

	"github.com/cruciblehq/cruxcp/internal/protocol"
)

var (
	ErrUnavailable = errors.New("daemon not reachable")
	ErrRemote      = errors.New("daemon error")
	ErrResponse    = errors.New("unexpected response")
)

// Sends a command and returns the payload of a successful response.
//
// An error response is returned as [ErrRemote] carrying the daemon's message.
func Call(ctx context.Context, socketPath string, cmd protocol.Command, payload any) (json.RawMessage, error) {
	data, err := protocol.Encode(cmd, payload)
	if err != nil {
		return nil, err
	}

	var d net.Dialer
	conn, err := d.DialContext(ctx, "unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	if _, err := conn.Write(append(data, '\n')); err != nil {
		return nil, contextErr(ctx, err)
	}

	line, err := bufio.NewReader(conn).ReadBytes('\n')
	if err != nil {
		return nil, contextErr(ctx, fmt.Errorf("%w: %w", ErrResponse, err))
	}

	env, raw, err := protocol.Decode(line)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrResponse, err)
	}

	switch env.Command {
	case protocol.CmdOK:
		return raw, nil
	case protocol.CmdError:
		res, err := protocol.DecodePayload[protocol.ErrorResult](raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrResponse, err)
		}
		return nil, fmt.Errorf("%w: %s", ErrRemote, res.Message)
	default:
		return nil, fmt.Errorf("%w: command %q", ErrResponse, env.Command)
	}
}

// Sends a command and decodes the successful response into T.
func Do[T any](ctx context.Context, socketPath string, cmd protocol.Command, payload any) (*T, error) {
	raw, err := Call(ctx, socketPath, cmd, payload)
	if err != nil {
		return nil, err
	}
	return protocol.DecodePayload[T](raw)
}

// Prefers the context's error when it caused err.
func contextErr(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return err
}
