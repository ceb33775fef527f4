package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/cruciblehq/cruxcp/internal"
	"github.com/cruciblehq/cruxcp/internal/engine"
	"github.com/cruciblehq/cruxcp/internal/logging"
)

// Represents the root command for cruxcp.
type Root struct {
	Quiet     bool   `short:"q" help:"Suppress informational output." env:"CRUXCP_QUIET"`
	Verbose   bool   `short:"v" help:"Include source locations in log records." env:"CRUXCP_VERBOSE"`
	Debug     bool   `short:"d" help:"Enable debug output." env:"CRUXCP_DEBUG"`
	LogFormat string `help:"Log format (${enum})." enum:"auto,text,json" default:"auto" env:"CRUXCP_LOG_FORMAT"`
	Socket    string `short:"s" help:"Override the default daemon socket path." placeholder:"PATH" env:"CRUXCP_SOCKET"`

	Copy    CopyCmd    `cmd:"" help:"Copy configured paths out of containers."`
	Start   StartCmd   `cmd:"" help:"Start the containers of a build and record the session."`
	Stop    StopCmd    `cmd:"" help:"Remove the containers of a started build."`
	Serve   ServeCmd   `cmd:"" help:"Run the daemon."`
	Status  StatusCmd  `cmd:"" help:"Show daemon status and started sessions."`
	Version VersionCmd `cmd:"" help:"Show version information."`
}

// Parsed command line.
var RootCmd Root

// Parses arguments, configures logging, and runs the selected subcommand.
func Execute() error {

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	kongCtx := kong.Parse(&RootCmd, options(ctx)...)

	configureLogger()

	return kongCtx.Run()
}

// Returns the kong options shared by [Execute] and tests.
func options(ctx context.Context) []kong.Option {
	return []kong.Option{
		kong.Name(internal.Name),
		kong.Description("Copies files and directories out of containers onto the host.\n\n" +
			"Paths are configured per image in the project file. When a build has been\n" +
			"started, its containers are used; otherwise a container is created per image\n" +
			"for the copy and removed afterwards."),
		kong.UsageOnError(),
		kong.Vars{
			"version":              internal.VersionString(),
			"containerd_address":   engine.DefaultContainerdAddress,
			"containerd_namespace": engine.DefaultContainerdNamespace,
		},
		kong.BindTo(ctx, (*context.Context)(nil)),
	}
}

// Configures the global logger based on CLI flags.
//
// Flags add to the build-time defaults; they never switch a mode off.
func configureLogger() {
	internal.SetDebug(RootCmd.Debug || internal.IsDebug())
	internal.SetQuiet(RootCmd.Quiet || internal.IsQuiet())
	internal.SetVerbose(RootCmd.Verbose || internal.IsVerbose())

	format, err := logging.ParseFormat(RootCmd.LogFormat)
	if err != nil {
		format = logging.FormatAuto
	}

	slog.SetDefault(logging.New(os.Stderr, logging.Options{
		Level:   logging.Level(internal.IsQuiet(), internal.IsDebug()),
		Format:  format,
		Verbose: internal.IsVerbose(),
		Group:   internal.Name,
	}))
}
