package runtime

import (
	"archive/tar"
	"bytes"
	"errors"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"testing"
)

// Lays out a small root filesystem and returns its path.
func snapshotRoot(t *testing.T) string {
	t.Helper()

	root := t.TempDir()
	mustWrite := func(name, content string) {
		p := filepath.Join(root, name)
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}

	mustWrite("etc/app/app.conf", "port=80\n")
	mustWrite("etc/app/conf.d/extra.conf", "debug=1\n")
	mustWrite("etc/os-release", "ID=test\n")

	if err := os.Symlink("app.conf", filepath.Join(root, "etc/app/current")); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink("/etc", filepath.Join(root, "config")); err != nil {
		t.Fatal(err)
	}
	return root
}

// Reads a tar stream into name -> content (or link target for symlinks).
func readTar(t *testing.T, data []byte) map[string]string {
	t.Helper()

	entries := map[string]string{}
	tr := tar.NewReader(bytes.NewReader(data))
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return entries
		}
		if err != nil {
			t.Fatal(err)
		}
		switch hdr.Typeflag {
		case tar.TypeSymlink:
			entries[hdr.Name] = "-> " + hdr.Linkname
		default:
			b, err := io.ReadAll(tr)
			if err != nil {
				t.Fatal(err)
			}
			entries[hdr.Name] = string(b)
		}
	}
}

func TestWriteTreeDirectory(t *testing.T) {
	root := snapshotRoot(t)

	var buf bytes.Buffer
	if err := writeTree(&buf, root, "/etc/app"); err != nil {
		t.Fatalf("writeTree: %v", err)
	}

	got := readTar(t, buf.Bytes())
	want := map[string]string{
		"app/":                  "",
		"app/app.conf":          "port=80\n",
		"app/conf.d/":           "",
		"app/conf.d/extra.conf": "debug=1\n",
		"app/current":           "-> app.conf",
	}
	if len(got) != len(want) {
		t.Fatalf("entries = %v, want %v", slices.Sorted(maps.Keys(got)), slices.Sorted(maps.Keys(want)))
	}
	for name, content := range want {
		if got[name] != content {
			t.Errorf("%s = %q, want %q", name, got[name], content)
		}
	}
}

func TestWriteTreeFile(t *testing.T) {
	root := snapshotRoot(t)

	var buf bytes.Buffer
	if err := writeTree(&buf, root, "etc/os-release"); err != nil {
		t.Fatalf("writeTree: %v", err)
	}

	got := readTar(t, buf.Bytes())
	if len(got) != 1 || got["os-release"] != "ID=test\n" {
		t.Errorf("entries = %v, want only os-release", got)
	}
}

func TestWriteTreeStaysInsideRoot(t *testing.T) {
	root := snapshotRoot(t)

	tests := []struct {
		name string
		path string
		want string
	}{
		{name: "dot-dot", path: "/../../etc/os-release", want: "os-release"},
		{name: "absolute symlink", path: "/config/os-release", want: "os-release"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := writeTree(&buf, root, tt.path); err != nil {
				t.Fatalf("writeTree: %v", err)
			}
			got := readTar(t, buf.Bytes())
			if got[tt.want] != "ID=test\n" {
				t.Errorf("entries = %v, want %s from the root", got, tt.want)
			}
		})
	}
}

func TestWriteTreeMissing(t *testing.T) {
	root := snapshotRoot(t)

	var buf bytes.Buffer
	err := writeTree(&buf, root, "/var/missing")
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("writeTree error = %v, want not exist", err)
	}
}
