package project

// A parsed project file.
type Project struct {
	Build      string            `yaml:"build" toml:"build"`           // Default build identity.
	BaseDir    string            `yaml:"basedir" toml:"basedir"`       // Base for relative host directories.
	Properties map[string]string `yaml:"properties" toml:"properties"` // Values for ${name} references.
	Images     []ImageTarget     `yaml:"images" toml:"images"`         // Configured images, in declaration order.
}

// One configured image.
type ImageTarget struct {
	Name  string             `yaml:"name" toml:"name"`   // Image reference.
	Alias string             `yaml:"alias" toml:"alias"` // Short name, used for container naming and lookups.
	Run   RunConfiguration   `yaml:"run" toml:"run"`
	Copy  *CopyConfiguration `yaml:"copy" toml:"copy"` // Nil when no copying is configured.
}

// Settings applied when a container is created from an image.
type RunConfiguration struct {
	Ports   []string          `yaml:"ports" toml:"ports"`     // Port specs, see [ParsePortMapping].
	Env     map[string]string `yaml:"env" toml:"env"`         // Extra environment variables.
	Cmd     []string          `yaml:"cmd" toml:"cmd"`         // Overrides the image's command when started.
	Workdir string            `yaml:"workdir" toml:"workdir"` // Overrides the image's working directory.
}

// Ordered list of copy entries for an image.
//
// Entries execute in declaration order. An empty list is valid and means
// nothing is copied, as does a nil configuration.
type CopyConfiguration struct {
	Entries []CopyEntry `yaml:"entries" toml:"entries"`
}

// A single container-to-host copy.
type CopyEntry struct {

	// Full path of a file or directory inside the container.
	ContainerPath string `yaml:"containerPath" toml:"containerPath"`

	// Host directory receiving the copy. Relative paths are resolved against
	// the project base directory; empty means the base directory itself.
	// When ContainerPath is a directory, a directory with the same base name
	// is created here rather than its content being flattened.
	HostDirectory string `yaml:"hostDirectory" toml:"hostDirectory"`
}

// Returns the alias when set, the image name otherwise.
func (t *ImageTarget) Description() string {
	if t.Alias != "" {
		return t.Alias
	}
	return t.Name
}

// Whether the image has at least one copy entry.
func (t *ImageTarget) HasCopyEntries() bool {
	return t.Copy != nil && len(t.Copy.Entries) > 0
}

// Finds an image by alias or, failing that, by name.
func (p *Project) Image(ref string) (*ImageTarget, bool) {
	for i := range p.Images {
		if p.Images[i].Alias != "" && p.Images[i].Alias == ref {
			return &p.Images[i], true
		}
	}
	for i := range p.Images {
		if p.Images[i].Name == ref {
			return &p.Images[i], true
		}
	}
	return nil, false
}

// Returns the build identity to use for a run.
//
// An explicit override wins over the project's build field. A project without
// either falls back to the base name of its base directory.
func (p *Project) BuildIdentity(override string) string {
	if override != "" {
		return override
	}
	if p.Build != "" {
		return p.Build
	}
	return baseName(p.BaseDir)
}
