package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/cruciblehq/cruxcp/internal/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, args ...string) (*Root, *kong.Context) {
	t.Helper()

	var root Root
	parser, err := kong.New(&root, options(context.Background())...)
	require.NoError(t, err)

	kctx, err := parser.Parse(args)
	require.NoError(t, err)
	return &root, kctx
}

func TestParseCopy(t *testing.T) {
	root, kctx := parse(t, "-d", "copy", "-f", "app/cruxcp.yaml", "--mode", "tracked",
		"--remove-volumes", "--name-pattern", "%a-%i", "--engine", "docker", "--remote")

	assert.Equal(t, "copy", kctx.Command())
	assert.True(t, root.Debug)
	assert.Equal(t, "app/cruxcp.yaml", root.Copy.File)
	assert.Equal(t, "tracked", root.Copy.Mode)
	assert.Equal(t, "%a-%i", root.Copy.NamePattern)
	assert.True(t, root.Copy.RemoveVolumes)
	assert.True(t, root.Copy.Remote)
	assert.False(t, root.Copy.CreateUnconfigured)
	assert.Equal(t, "docker", root.Copy.Engine)
}

func TestParseDefaults(t *testing.T) {
	root, _ := parse(t, "copy")

	assert.Equal(t, "auto", root.LogFormat)
	assert.Equal(t, "auto", root.Copy.Mode)
	assert.Equal(t, "auto", root.Copy.EngineFlags.Engine)
	assert.Equal(t, engine.DefaultContainerdAddress, root.Copy.Address)
	assert.Equal(t, engine.DefaultContainerdNamespace, root.Copy.Namespace)
}

func TestParseEnv(t *testing.T) {
	t.Setenv("CRUXCP_BUILD", "env-build")
	t.Setenv("CRUXCP_CREATE_UNCONFIGURED", "true")

	root, _ := parse(t, "copy")
	assert.Equal(t, "env-build", root.Copy.Build)
	assert.True(t, root.Copy.CreateUnconfigured)
}

func TestParseRejectsUnknownMode(t *testing.T) {
	var root Root
	parser, err := kong.New(&root, options(context.Background())...)
	require.NoError(t, err)

	_, err = parser.Parse([]string{"copy", "--mode", "sideways"})
	assert.Error(t, err)
}

func TestParseStop(t *testing.T) {
	root, kctx := parse(t, "stop", "--build", "b1", "--remove-volumes")

	assert.Equal(t, "stop", kctx.Command())
	assert.Equal(t, "b1", root.Stop.Build)
	assert.True(t, root.Stop.RemoveVolumes)
}

func TestProjectFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cruxcp.toml"), []byte("build = \"x\"\n"), 0644))
	t.Chdir(dir)

	f := ProjectFlags{}
	got, err := f.projectFile()
	require.NoError(t, err)

	want, err := filepath.EvalSymlinks(filepath.Join(dir, "cruxcp.toml"))
	require.NoError(t, err)
	gotResolved, err := filepath.EvalSymlinks(got)
	require.NoError(t, err)
	assert.Equal(t, want, gotResolved)

	f.File = "other.yaml"
	got, err = f.projectFile()
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(got))
	assert.Equal(t, "other.yaml", filepath.Base(got))
}

func TestProjectFileMissing(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := (&ProjectFlags{}).projectFile()
	assert.Error(t, err)
}
