package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"os"
	"time"

	"github.com/cruciblehq/cruxcp/internal"
	"github.com/cruciblehq/cruxcp/internal/protocol"
)

// Handles a copy command.
//
// A failed run still reports the copies completed before the failure in the
// server log; the client receives the error.
func (s *Server) handleCopy(ctx context.Context, conn net.Conn, payload json.RawMessage) {
	req, err := protocol.DecodePayload[protocol.CopyRequest](payload)
	if err != nil {
		s.respondError(conn, err)
		return
	}

	result, err := s.service.Copy(ctx, req)
	if result != nil {
		s.mu.Lock()
		s.copies += len(result.Copies)
		s.mu.Unlock()
	}
	if err != nil {
		if result != nil {
			slog.Warn("copy run failed", "build", result.Build, "completed", len(result.Copies), "error", err)
		}
		s.respondError(conn, err)
		return
	}

	s.respond(conn, protocol.CmdOK, result)
}

// Handles a start command.
func (s *Server) handleStart(ctx context.Context, conn net.Conn, payload json.RawMessage) {
	req, err := protocol.DecodePayload[protocol.StartRequest](payload)
	if err != nil {
		s.respondError(conn, err)
		return
	}

	result, err := s.service.Start(ctx, req)
	if err != nil {
		s.respondError(conn, err)
		return
	}

	s.respond(conn, protocol.CmdOK, result)
}

// Handles a stop command.
func (s *Server) handleStop(ctx context.Context, conn net.Conn, payload json.RawMessage) {
	req, err := protocol.DecodePayload[protocol.StopRequest](payload)
	if err != nil {
		s.respondError(conn, err)
		return
	}

	result, err := s.service.Stop(ctx, req)
	if err != nil {
		s.respondError(conn, err)
		return
	}

	s.respond(conn, protocol.CmdOK, result)
}

// Handles a status command.
func (s *Server) handleStatus(ctx context.Context, conn net.Conn) {
	s.mu.Lock()
	copies := s.copies
	s.mu.Unlock()

	sessions, err := s.service.Sessions(ctx)
	if err != nil {
		slog.Warn("failed to list sessions", "error", err)
	}

	uptime := time.Since(s.startedAt).Truncate(time.Second)

	s.respond(conn, protocol.CmdOK, &protocol.StatusResult{
		Running:  true,
		Version:  internal.VersionString(),
		Pid:      os.Getpid(),
		Uptime:   uptime.String(),
		Copies:   copies,
		Sessions: sessions,
	})
}

// Handles a shutdown command.
func (s *Server) handleShutdown(conn net.Conn) {
	s.respond(conn, protocol.CmdOK, nil)
	slog.Info("shutdown requested")

	go func() {
		s.Stop()
	}()
}

func (s *Server) respondError(conn net.Conn, err error) {
	s.respond(conn, protocol.CmdError, &protocol.ErrorResult{Message: err.Error()})
}
