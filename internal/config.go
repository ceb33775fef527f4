package internal

import (
	"strconv"
	"sync/atomic"
)

var (
	quietMode   atomic.Bool // Suppress informational output.
	debugMode   atomic.Bool // Emit debug records.
	verboseMode atomic.Bool // Include source locations in records.
)

// Seeds the output modes from the linker-flag defaults. Unparsable values are
// treated as false.
func init() {
	seeds := []struct {
		raw  string
		mode *atomic.Bool
	}{
		{rawQuiet, &quietMode},
		{rawDebug, &debugMode},
		{rawVerbose, &verboseMode},
	}
	for _, s := range seeds {
		if v, err := strconv.ParseBool(s.raw); err == nil {
			s.mode.Store(v)
		}
	}
}

// Enables or disables quiet mode.
func SetQuiet(enabled bool) { quietMode.Store(enabled) }

// Whether quiet mode is enabled.
func IsQuiet() bool { return quietMode.Load() }

// Enables or disables debug logging.
func SetDebug(enabled bool) { debugMode.Store(enabled) }

// Whether debug logging is enabled.
func IsDebug() bool { return debugMode.Load() }

// Enables or disables verbose logging.
func SetVerbose(enabled bool) { verboseMode.Store(enabled) }

// Whether verbose logging is enabled.
func IsVerbose() bool { return verboseMode.Load() }
