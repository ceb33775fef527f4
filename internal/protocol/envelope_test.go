package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecode(t *testing.T) {
	data, err := Encode(CmdCopy, &CopyRequest{ProjectFile: "/p/cruxcp.yaml", Mode: "tracked"})
	require.NoError(t, err)
	assert.NotContains(t, string(data), "\n")

	env, payload, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, CmdCopy, env.Command)
	assert.Equal(t, Version, env.Version)

	req, err := DecodePayload[CopyRequest](payload)
	require.NoError(t, err)
	assert.Equal(t, "/p/cruxcp.yaml", req.ProjectFile)
	assert.Equal(t, "tracked", req.Mode)
}

func TestEncodeNilPayload(t *testing.T) {
	data, err := Encode(CmdShutdown, nil)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "payload")

	_, payload, err := Decode(data)
	require.NoError(t, err)

	res, err := DecodePayload[StatusResult](payload)
	require.NoError(t, err)
	assert.Equal(t, StatusResult{}, *res)
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
		want error
	}{
		{"not json", `{oops`, ErrMalformed},
		{"wrong version", `{"version":7,"command":"copy"}`, ErrVersion},
		{"missing version", `{"command":"copy"}`, ErrVersion},
		{"missing command", `{"version":1}`, ErrMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Decode([]byte(tt.data))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestDecodePayloadMalformed(t *testing.T) {
	_, err := DecodePayload[CopyRequest]([]byte(`{"projectFile": 3}`))
	assert.ErrorIs(t, err, ErrMalformed)
}
