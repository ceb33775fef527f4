package project

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePortMapping(t *testing.T) {
	props := map[string]string{"http.port": "8080", "ip": "127.0.0.1"}

	tests := []struct {
		name    string
		spec    string
		want    PortBinding
		wantErr bool
	}{
		{
			name: "container port only",
			spec: "80",
			want: PortBinding{ContainerPort: 80, Protocol: "tcp"},
		},
		{
			name: "host and container port",
			spec: "8080:80",
			want: PortBinding{HostPort: 8080, ContainerPort: 80, Protocol: "tcp"},
		},
		{
			name: "host ip",
			spec: "${ip}:${http.port}:80/udp",
			want: PortBinding{HostIP: "127.0.0.1", HostPort: 8080, ContainerPort: 80, Protocol: "udp"},
		},
		{
			name: "host ip without host port",
			spec: "127.0.0.1::80",
			want: PortBinding{HostIP: "127.0.0.1", ContainerPort: 80, Protocol: "tcp"},
		},
		{name: "undefined property", spec: "${nope}:80", wantErr: true},
		{name: "bad protocol", spec: "80/sctp", wantErr: true},
		{name: "out of range", spec: "70000", wantErr: true},
		{name: "bad ip", spec: "host:1:2", wantErr: true},
		{name: "too many fields", spec: "1:2:3:4", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := ParsePortMapping([]string{tt.spec}, props)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrPort)
				return
			}
			require.NoError(t, err)
			require.Len(t, m, 1)
			assert.Equal(t, tt.want, m[0])
		})
	}
}

func TestPortBindingString(t *testing.T) {
	m := PortMapping{
		{ContainerPort: 80, Protocol: "tcp"},
		{HostPort: 8080, ContainerPort: 80, Protocol: "tcp"},
		{HostIP: "127.0.0.1", ContainerPort: 53, Protocol: "udp"},
	}
	assert.Equal(t, []string{"80/tcp", "8080:80/tcp", "127.0.0.1::53/udp"}, m.Specs())
}
