package project

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Serialization format of a project file.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// File names probed by [Find], in order.
var DefaultFiles = []string{"cruxcp.yaml", "cruxcp.yml", "cruxcp.toml"}

// Returns the format implied by a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("%w: unsupported extension %q", ErrLoad, filepath.Ext(path))
	}
}

// Locates the project file in dir.
func Find(dir string) (string, error) {
	for _, name := range DefaultFiles {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: none of %s found in %s", ErrLoad, strings.Join(DefaultFiles, ", "), dir)
}

// Reads, parses and validates a project file.
//
// The base directory is made absolute: an explicit basedir is resolved
// against the file's directory, otherwise the file's directory is used.
func Load(path string) (*Project, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoad, err)
	}

	p, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	dir, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoad, err)
	}
	p.BaseDir = resolveBaseDir(dir, p.BaseDir)

	return p, nil
}

// Parses and validates a project document.
//
// The base directory is left as written; [Load] resolves it.
func Parse(data []byte, format Format) (*Project, error) {
	var p Project

	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&p); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: %w", ErrParse, err)
		}
	case FormatTOML:
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&p); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrParse, err)
		}
	default:
		return nil, fmt.Errorf("%w: unknown format %q", ErrParse, format)
	}

	if err := validate(&p); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	return &p, nil
}

// Checks image names, alias uniqueness and port specs.
//
// Copy entries are not checked here: a missing container path is reported
// when the entry is executed, after the entries before it have run.
func validate(p *Project) error {
	var errs []error
	aliases := make(map[string]int)

	for i, img := range p.Images {
		field := fmt.Sprintf("images[%d]", i)

		if strings.TrimSpace(img.Name) == "" {
			errs = append(errs, &ValidationError{
				Field:   field + ".name",
				Value:   img.Name,
				Message: "must not be empty",
			})
		}

		if img.Alias != "" {
			if prev, ok := aliases[img.Alias]; ok {
				errs = append(errs, &ValidationError{
					Field:   field + ".alias",
					Value:   img.Alias,
					Message: fmt.Sprintf("already used by images[%d]", prev),
				})
			} else {
				aliases[img.Alias] = i
			}
		}

		if _, err := ParsePortMapping(img.Run.Ports, p.Properties); err != nil {
			errs = append(errs, &ValidationError{
				Field:   field + ".run.ports",
				Value:   img.Run.Ports,
				Message: err.Error(),
			})
		}
	}

	return errors.Join(errs...)
}

// Resolves a configured base directory against the project file's directory.
func resolveBaseDir(fileDir, baseDir string) string {
	switch {
	case baseDir == "":
		return fileDir
	case filepath.IsAbs(baseDir):
		return filepath.Clean(baseDir)
	default:
		return filepath.Join(fileDir, baseDir)
	}
}

// Returns the last element of dir, or "default" when there is none.
func baseName(dir string) string {
	b := filepath.Base(dir)
	if b == "." || b == string(filepath.Separator) || b == "" {
		return "default"
	}
	return b
}
