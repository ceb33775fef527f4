package naming

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestExpand(t *testing.T) {
	ts := time.UnixMilli(1700000000123)

	tests := []struct {
		name    string
		pattern string
		params  Params
		want    string
	}{
		{"default", "", Params{Image: "docker.io/library/redis:7"}, "redis-1"},
		{"alias", "%a", Params{Image: "redis:7", Alias: "cache"}, "cache"},
		{"alias fallback", "%a", Params{Image: "redis:7"}, "redis"},
		{"timestamp", "%n-%t", Params{Image: "redis", Timestamp: ts}, "redis-1700000000123"},
		{"percent", "%n%%", Params{Image: "redis"}, "redis_"},
		{"unknown placeholder", "%n-%x", Params{Image: "redis"}, "redis-_x"},
		{"trailing percent", "%n%", Params{Image: "redis"}, "redis_"},
		{"literal", "fixed", Params{Image: "redis"}, "fixed"},
		{"skips taken indexes", "%n-%i", Params{Image: "redis", Existing: []string{"redis-1", "redis-2"}}, "redis-3"},
		{"fills gaps", "%n-%i", Params{Image: "redis", Existing: []string{"redis-2"}}, "redis-1"},
		{"index without existing", "%a.%i", Params{Image: "redis", Alias: "db"}, "db.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Expand(tt.pattern, tt.params))
		})
	}
}

func TestExpandRandom(t *testing.T) {
	name := Expand("%n-%r", Params{Image: "redis"})
	assert.Regexp(t, regexp.MustCompile(`^redis-[0-9a-f]{8}$`), name)
	assert.NotEqual(t, name, Expand("%n-%r", Params{Image: "redis"}))
}

func TestShortName(t *testing.T) {
	tests := map[string]string{
		"redis":                              "redis",
		"redis:7":                            "redis",
		"docker.io/library/redis:7":          "redis",
		"localhost:5000/team/app:1.0":        "app",
		"ghcr.io/org/tool@sha256:abcdef0123": "tool",
		"":                                   "",
	}

	for in, want := range tests {
		assert.Equal(t, want, ShortName(in), in)
	}
}

func TestSanitize(t *testing.T) {
	tests := map[string]string{
		"web-1":       "web-1",
		"my app":      "my_app",
		"-leading":    "leading",
		"__x":         "x",
		"a/b:c":       "a_b_c",
		"":            "container",
		"***":         "container",
		"v1.2_beta-3": "v1.2_beta-3",
	}

	for in, want := range tests {
		assert.Equal(t, want, Sanitize(in), in)
	}
}
