// Package copyout copies files and directories out of containers onto the
// host.
//
// A run visits every target that has copy entries and, for each entry,
// streams the container path as a tar archive into a temporary file and
// extracts that archive into the entry's host directory. Targets come from
// one of two sources, chosen once per run:
//
//   - Tracked: containers recorded for the build by a prior start step. They
//     are read from and left exactly as found.
//   - Standalone: one ephemeral container per configured image, created for
//     the copy and removed afterwards whether or not the copy succeeded.
//
// Temporary archives and ephemeral containers are bound to guards that
// release them on every exit path. The first failure stops the run; nothing
// is retried.
//
// The container engine and the archive extractor are capabilities supplied
// by the caller (see [EngineAccess], [RunService] and [ArchiveExtractor]).
//
// Example usage:
//
//	report, err := copyout.Run(ctx, copyout.Options{
//	    Mode:      copyout.ModeStandalone,
//	    Engine:    eng,
//	    Runner:    eng,
//	    Extractor: archive.NewExtractor(afero.NewOsFs()),
//	    Images:    proj.Images,
//	    Build:     "com.example:app:1.0",
//	    BaseDir:   proj.BaseDir,
//	})
//	if err != nil {
//	    return err
//	}
//	fmt.Println(len(report.Copies), "paths copied")
package copyout
