// Package protocol defines the messages exchanged between the cruxcp CLI and
// daemon.
//
// Every message is a JSON [Envelope] on a single line. The envelope names a
// [Command] and carries a command-specific payload. Requests use the command
// being invoked; responses use [CmdOK] with a result payload or [CmdError]
// with an [ErrorResult].
//
// Example usage:
//
//	data, err := protocol.Encode(protocol.CmdCopy, &protocol.CopyRequest{
//	    ProjectFile: "/src/app/cruxcp.yaml",
//	})
//	if err != nil {
//	    return err
//	}
//
//	env, payload, err := protocol.Decode(data)
//	if err != nil {
//	    return err
//	}
//	req, err := protocol.DecodePayload[protocol.CopyRequest](payload)
package protocol
