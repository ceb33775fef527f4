// Package server implements the cruxcp daemon.
//
// The daemon listens on a Unix domain socket for JSON-encoded commands from
// the cruxcp CLI. Each connection carries a single request-response exchange:
// the client sends a newline-delimited JSON envelope, the server dispatches
// the command, and writes the result back before closing the connection. A
// client that disconnects early cancels the command it sent.
//
// Copy, start and stop commands are delegated to the ops package, which uses
// the configured container engine. Status reports the daemon's uptime, the
// number of paths copied and the started sessions.
//
// Example usage:
//
//	srv, err := server.New(server.Config{
//	    Engine: engine.Config{Kind: "containerd"},
//	})
//	if err != nil {
//	    return err
//	}
//
//	if err := srv.Start(); err != nil {
//	    return err
//	}
//	defer srv.Stop()
//
//	srv.Wait()
package server
