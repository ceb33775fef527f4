// Parses flags, configures logging and runs the cruxcp commands.
//
// Global flags:
//
//	-q, --quiet        Suppress informational output.
//	-v, --verbose      Include source locations in log records.
//	-d, --debug        Enable debug output.
//	    --log-format   auto, text or json.
//	-s, --socket       Daemon socket path.
//
// Commands:
//
//	copy     Copy configured paths out of containers.
//	start    Start the containers of a build and record the session.
//	stop     Remove the containers of a started build.
//	serve    Run the daemon.
//	status   Show daemon status and started sessions.
//	version  Show version information.
//
// Every flag also reads a CRUXCP_* environment variable. Flags override
// build-time defaults set via linker flags. After parsing, the global logger
// is reconfigured to reflect the final level and format before the command
// runs. The copy, start and stop commands run in-process unless --remote
// sends them to the daemon.
package cli
