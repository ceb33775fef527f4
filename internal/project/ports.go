package project

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
)

// A single published port.
type PortBinding struct {
	HostIP        string `json:"hostIP,omitempty"`   // Interface to bind; empty means all.
	HostPort      int    `json:"hostPort,omitempty"` // Zero lets the engine pick a port.
	ContainerPort int    `json:"containerPort"`
	Protocol      string `json:"protocol"` // "tcp" or "udp".
}

// Returns the binding in docker's -p syntax.
func (b PortBinding) String() string {
	var sb strings.Builder
	if b.HostIP != "" {
		sb.WriteString(b.HostIP)
		sb.WriteByte(':')
	}
	if b.HostPort != 0 {
		sb.WriteString(strconv.Itoa(b.HostPort))
		sb.WriteByte(':')
	} else if b.HostIP != "" {
		sb.WriteByte(':')
	}
	sb.WriteString(strconv.Itoa(b.ContainerPort))
	sb.WriteByte('/')
	sb.WriteString(b.Protocol)
	return sb.String()
}

// Port bindings of a container, in declaration order.
type PortMapping []PortBinding

// Returns each binding in docker's -p syntax.
func (m PortMapping) Specs() []string {
	specs := make([]string, len(m))
	for i, b := range m {
		specs[i] = b.String()
	}
	return specs
}

// Parses port specs, expanding ${name} references from properties.
//
// Accepted forms are "containerPort", "hostPort:containerPort" and
// "hostIP:hostPort:containerPort", each optionally suffixed with "/tcp" or
// "/udp". A reference to an undefined property is an error.
func ParsePortMapping(specs []string, properties map[string]string) (PortMapping, error) {
	mapping := make(PortMapping, 0, len(specs))

	for _, spec := range specs {
		expanded, err := expand(spec, properties)
		if err != nil {
			return nil, err
		}

		b, err := parsePortBinding(expanded)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %w", ErrPort, spec, err)
		}
		mapping = append(mapping, b)
	}

	return mapping, nil
}

// Replaces ${name} and $name references with property values.
func expand(s string, properties map[string]string) (string, error) {
	var missing []string
	out := os.Expand(s, func(name string) string {
		v, ok := properties[name]
		if !ok {
			missing = append(missing, name)
		}
		return v
	})
	if len(missing) > 0 {
		return "", fmt.Errorf("%w: %q: undefined property %s", ErrPort, s, strings.Join(missing, ", "))
	}
	return out, nil
}

func parsePortBinding(s string) (PortBinding, error) {
	b := PortBinding{Protocol: "tcp"}

	if i := strings.LastIndexByte(s, '/'); i >= 0 {
		b.Protocol = strings.ToLower(s[i+1:])
		s = s[:i]
		if b.Protocol != "tcp" && b.Protocol != "udp" {
			return PortBinding{}, fmt.Errorf("unknown protocol %q", b.Protocol)
		}
	}

	parts := strings.Split(s, ":")
	var err error

	switch len(parts) {
	case 1:
		b.ContainerPort, err = parsePort(parts[0])
	case 2:
		if b.HostPort, err = parsePort(parts[0]); err == nil {
			b.ContainerPort, err = parsePort(parts[1])
		}
	case 3:
		if net.ParseIP(parts[0]) == nil {
			return PortBinding{}, fmt.Errorf("invalid host IP %q", parts[0])
		}
		b.HostIP = parts[0]
		if parts[1] != "" {
			b.HostPort, err = parsePort(parts[1])
		}
		if err == nil {
			b.ContainerPort, err = parsePort(parts[2])
		}
	default:
		return PortBinding{}, fmt.Errorf("too many fields")
	}

	if err != nil {
		return PortBinding{}, err
	}
	return b, nil
}

func parsePort(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 || n > 65535 {
		return 0, fmt.Errorf("port %q out of range", s)
	}
	return n, nil
}
