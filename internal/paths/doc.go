// Provides platform-appropriate paths for cruxcp.
//
// Paths follow XDG conventions on Linux and platform-native conventions on
// macOS and Windows. The program name is used as the subdirectory under each
// base path. Nothing here creates directories; callers do that on demand.
package paths
