package config

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
)

func TestPrefixAndKey(t *testing.T) {
	c := New().Prefix("WEBM_")
	require.Equal(t, "WEBM_LISTEN", c.key("LISTEN"))
	require.Equal(t, "WEBM_WS_LISTEN", c.Prefix("WS_").key("LISTEN"))
}

func TestMayValues(t *testing.T) {
	c := New().Prefix("T_")
	t.Setenv("T_NAME", "  webm ")
	t.Setenv("T_N", " 12 ")
	t.Setenv("T_BAD", "x")
	t.Setenv("T_ON", "true")

	require.Equal(t, "webm", c.MayString("NAME", "def"))
	require.Equal(t, "def", c.MayString("MISSING", "def"))
	require.Equal(t, 12, c.MayInt("N", 3))
	require.Equal(t, 3, c.MayInt("BAD", 3))
	require.Equal(t, 3, c.MayInt("MISSING", 3))
	require.True(t, c.MayBool("ON", false))
	require.True(t, c.MayBool("BAD", true))
	require.False(t, c.MayBool("MISSING", false))
}

func TestLoad(t *testing.T) {
	s, err := Load(New())
	require.NoError(t, err)
	require.Equal(t, Settings{ChunkSize: DefaultChunkSize, Listen: DefaultListen}, s)

	t.Setenv("WEBM_CHUNK_SIZE", "4096")
	t.Setenv("WEBM_LISTEN", ":9000")
	t.Setenv("WEBM_INCLUDE_BINARY", "1")
	s, err = Load(New())
	require.NoError(t, err)
	require.Equal(t, Settings{ChunkSize: 4096, Listen: ":9000", IncludeBinary: true}, s)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		s     Settings
		field string
	}{
		{"zero chunk", Settings{ChunkSize: 0, Listen: DefaultListen}, "ChunkSize"},
		{"huge chunk", Settings{ChunkSize: 1 << 30, Listen: DefaultListen}, "ChunkSize"},
		{"no listen", Settings{ChunkSize: 1}, "Listen"},
		{"bad listen", Settings{ChunkSize: 1, Listen: "nohost"}, "Listen"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.s.Validate()
			require.Error(t, err)
			var verr validator.ValidationErrors
			require.ErrorAs(t, err, &verr)
			require.Equal(t, tt.field, verr[0].Field())
		})
	}
}
