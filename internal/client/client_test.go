package client

import (
	"bufio"
	"context"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cruciblehq/cruxcp/internal/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Serves a single connection: reads one line, hands it to reply and writes
// the returned line back. A nil reply leaves the connection open until the
// client goes away.
func serveOnce(t *testing.T, reply func(req []byte) []byte) string {
	t.Helper()

	dir, err := os.MkdirTemp("", "cxc")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })

	path := filepath.Join(dir, "s.sock")
	ln, err := net.Listen("unix", path)
	require.NoError(t, err)

	done := make(chan struct{})
	t.Cleanup(func() {
		ln.Close()
		<-done
	})

	go func() {
		defer close(done)
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		r := bufio.NewReader(conn)
		line, err := r.ReadBytes('\n')
		if err != nil {
			return
		}
		out := reply(line)
		if out == nil {
			r.ReadByte()
			return
		}
		conn.Write(append(out, '\n'))
	}()

	return path
}

// Runs on the server goroutine, where the test must not be failed.
func encode(cmd protocol.Command, payload any) []byte {
	data, err := protocol.Encode(cmd, payload)
	if err != nil {
		panic(err)
	}
	return data
}

func TestDo(t *testing.T) {
	received := make(chan string, 1)
	path := serveOnce(t, func(req []byte) []byte {
		env, raw, err := protocol.Decode(req)
		if err != nil || env.Command != protocol.CmdStop {
			return encode(protocol.CmdError, protocol.ErrorResult{Message: "bad request"})
		}
		stop, err := protocol.DecodePayload[protocol.StopRequest](raw)
		if err != nil {
			return encode(protocol.CmdError, protocol.ErrorResult{Message: err.Error()})
		}
		received <- stop.Build
		return encode(protocol.CmdOK, protocol.StopResult{Build: stop.Build, Removed: []string{"a", "b"}})
	})

	res, err := Do[protocol.StopResult](context.Background(), path, protocol.CmdStop, &protocol.StopRequest{Build: "b1"})
	require.NoError(t, err)
	assert.Equal(t, "b1", res.Build)
	assert.Equal(t, []string{"a", "b"}, res.Removed)
	assert.Equal(t, "b1", <-received)
}

func TestCallRemoteError(t *testing.T) {
	path := serveOnce(t, func([]byte) []byte {
		return encode(protocol.CmdError, protocol.ErrorResult{Message: "no session for build"})
	})

	_, err := Call(context.Background(), path, protocol.CmdStop, nil)
	assert.ErrorIs(t, err, ErrRemote)
	assert.Contains(t, err.Error(), "no session for build")
}

func TestCallUnexpectedResponse(t *testing.T) {
	tests := []struct {
		name  string
		reply []byte
	}{
		{name: "garbage", reply: []byte("not json")},
		{name: "request command", reply: []byte(`{"version":1,"command":"copy"}`)},
		{name: "wrong version", reply: []byte(`{"version":99,"command":"ok"}`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := serveOnce(t, func([]byte) []byte { return tt.reply })

			_, err := Call(context.Background(), path, protocol.CmdStatus, nil)
			assert.ErrorIs(t, err, ErrResponse)
		})
	}
}

func TestCallUnavailable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.sock")

	_, err := Call(context.Background(), path, protocol.CmdStatus, nil)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestCallCancelled(t *testing.T) {
	path := serveOnce(t, func([]byte) []byte { return nil })

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := Call(ctx, path, protocol.CmdCopy, &protocol.CopyRequest{})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
