package runtime

import (
	"reflect"
	"testing"
)

func TestNextExecID(t *testing.T) {
	a := nextExecID()
	b := nextExecID()
	if a == b {
		t.Fatalf("nextExecID returned duplicate: %q", a)
	}
	if a == "" || b == "" {
		t.Fatal("nextExecID returned empty string")
	}
}

func TestTarArgs(t *testing.T) {
	tests := []struct {
		path string
		want []string
	}{
		{"/etc/os-release", []string{"tar", "cf", "-", "-C", "/etc", "os-release"}},
		{"/var/log/", []string{"tar", "cf", "-", "-C", "/var", "log"}},
		{"/data", []string{"tar", "cf", "-", "-C", "/", "data"}},
		{"/a/../b/c", []string{"tar", "cf", "-", "-C", "/b", "c"}},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got := tarArgs(tt.path)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("tarArgs(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}
