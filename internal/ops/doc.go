// Package ops implements the cruxcp commands on top of a container engine.
//
// A [Service] ties together the project file, the session store and the
// engine. The CLI calls it directly; the daemon calls it on behalf of remote
// clients. Requests and results are the protocol messages, so both paths
// behave identically.
//
//   - [Service.Copy] runs a copy for a build, in tracked mode when a session
//     for the build exists and standalone mode otherwise.
//   - [Service.Start] starts a container per configured image and records
//     the session.
//   - [Service.Stop] removes the session's containers and deletes it.
//   - [Service.Sessions] lists the sessions with their container states.
package ops
