package runtime

import (
	"strings"
	"testing"

	"github.com/cruciblehq/cruxcp/internal/project"
)

func TestDefaultPlatform(t *testing.T) {
	p := defaultPlatform()
	if !strings.HasPrefix(p, "linux/") {
		t.Fatalf("defaultPlatform = %q, want linux/<arch>", p)
	}
	parts := strings.Split(p, "/")
	if len(parts) != 2 || parts[1] == "" {
		t.Fatalf("defaultPlatform = %q, want linux/<arch>", p)
	}
}

func TestNormalizeRef(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "alpine", want: "docker.io/library/alpine:latest"},
		{in: "alpine:3.20", want: "docker.io/library/alpine:3.20"},
		{in: "ghcr.io/org/tool:1", want: "ghcr.io/org/tool:1"},
		{in: "Invalid:Upper", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := normalizeRef(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("normalizeRef(%q) = %q, want error", tt.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("normalizeRef(%q): %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("normalizeRef(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestStartedFilter(t *testing.T) {
	got := startedFilter(`com.example:app "1.0"`)
	want := `labels."cruxcp.build"=="com.example:app \"1.0\"",labels."cruxcp.role"=="started"`
	if got != want {
		t.Errorf("startedFilter = %s, want %s", got, want)
	}
}

func TestProcessOpts(t *testing.T) {
	tests := []struct {
		name      string
		run       project.RunConfiguration
		keepAlive bool
		want      int
	}{
		{"keepalive only", project.RunConfiguration{}, true, 1},
		{"keepalive ignores cmd", project.RunConfiguration{Cmd: []string{"serve"}}, true, 1},
		{"image default", project.RunConfiguration{}, false, 0},
		{"full override", project.RunConfiguration{Cmd: []string{"serve"}, Env: map[string]string{"A": "1"}, Workdir: "/srv"}, false, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := len(processOpts(tt.run, tt.keepAlive)); got != tt.want {
				t.Errorf("len(processOpts) = %d, want %d", got, tt.want)
			}
		})
	}
}
