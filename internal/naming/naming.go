// Package naming derives container names from naming patterns.
//
// A pattern is literal text with the following placeholders:
//
//	%n  short image name (repository without registry, path or tag)
//	%a  image alias, or the short image name when there is none
//	%t  build timestamp in milliseconds since the epoch
//	%i  lowest positive index that yields a name not already in use
//	%r  eight random hexadecimal characters
//	%%  a literal percent sign
//
// Unknown placeholders are kept verbatim. Expanded names are sanitized to the
// characters container engines accept for identifiers.
//
// Example usage:
//
//	name := naming.Expand("%a-%i", naming.Params{
//		Image:    "docker.io/library/redis:7",
//		Existing: []string{"redis-1"},
//	})
//	// name == "redis-2"
package naming

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Pattern used when none is configured.
const DefaultPattern = "%n-%i"

// Inputs for expanding a pattern.
type Params struct {
	Image     string    // Full image reference.
	Alias     string    // Image alias, may be empty.
	Timestamp time.Time // Build timestamp.
	Existing  []string  // Names already in use, consulted by %i.
}

// Expands pattern for p.
//
// An empty pattern selects [DefaultPattern]. When the pattern contains %i the
// index starts at 1 and increases until the name is not in p.Existing.
func Expand(pattern string, p Params) string {
	if pattern == "" {
		pattern = DefaultPattern
	}

	random := randomPart()
	if !strings.Contains(pattern, "%i") {
		return Sanitize(expand(pattern, p, random, 0))
	}

	taken := make(map[string]struct{}, len(p.Existing))
	for _, name := range p.Existing {
		taken[name] = struct{}{}
	}

	for i := 1; ; i++ {
		name := Sanitize(expand(pattern, p, random, i))
		if _, ok := taken[name]; !ok {
			return name
		}
	}
}

func expand(pattern string, p Params, random string, index int) string {
	var b strings.Builder

	for i := 0; i < len(pattern); i++ {
		c := pattern[i]
		if c != '%' || i+1 == len(pattern) {
			b.WriteByte(c)
			continue
		}

		i++
		switch pattern[i] {
		case 'n':
			b.WriteString(ShortName(p.Image))
		case 'a':
			if p.Alias != "" {
				b.WriteString(p.Alias)
			} else {
				b.WriteString(ShortName(p.Image))
			}
		case 't':
			b.WriteString(strconv.FormatInt(p.Timestamp.UnixMilli(), 10))
		case 'i':
			b.WriteString(strconv.Itoa(index))
		case 'r':
			b.WriteString(random)
		case '%':
			b.WriteByte('%')
		default:
			b.WriteByte('%')
			b.WriteByte(pattern[i])
		}
	}

	return b.String()
}

// Returns the repository name of an image reference without registry, path,
// tag or digest.
func ShortName(image string) string {
	name := image
	if i := strings.Index(name, "@"); i >= 0 {
		name = name[:i]
	}
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.Index(name, ":"); i >= 0 {
		name = name[:i]
	}
	return name
}

// Replaces characters outside [A-Za-z0-9_.-] with '_'.
//
// A leading character that is not alphanumeric is dropped so the result is a
// valid engine identifier. An empty result becomes "container".
func Sanitize(name string) string {
	out := []byte(name)
	for i, c := range out {
		if !isIDChar(c) {
			out[i] = '_'
		}
	}

	s := strings.TrimLeftFunc(string(out), func(r rune) bool {
		return !isAlnum(byte(r))
	})
	if s == "" {
		return "container"
	}
	return s
}

func randomPart() string {
	id := uuid.New()
	return strings.ReplaceAll(id.String(), "-", "")[:8]
}

func isAlnum(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}

func isIDChar(c byte) bool {
	return isAlnum(c) || c == '_' || c == '.' || c == '-'
}
