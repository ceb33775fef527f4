// Package project loads the cruxcp project file.
//
// A project lists the images cruxcp works with. Each image carries an
// optional run configuration, used when containers are created from it, and
// an optional copy configuration: the ordered entries that describe which
// container paths are copied to which host directories.
//
// Project files are YAML (.yaml, .yml) or TOML (.toml). Relative paths are
// resolved against the directory containing the file, unless the project sets
// an explicit basedir.
//
// Example usage:
//
//	p, err := project.Load("cruxcp.yaml")
//	if err != nil {
//	    return err
//	}
//
//	for _, img := range p.Images {
//	    fmt.Println(img.Name, len(img.Copy.Entries))
//	}
package project
