package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestResolveSocketURL(t *testing.T) {
	tests := []struct {
		name    string
		api     string
		socket  string
		want    string
		wantErr error
	}{
		{name: "dedicated url wins", api: "http://api.local/api", socket: "http://rt.local", want: "http://rt.local"},
		{name: "strip api suffix", api: "http://localhost:5001/api", want: "http://localhost:5001"},
		{name: "strip api suffix with slash", api: "http://localhost:5001/api/", want: "http://localhost:5001"},
		{name: "no suffix kept", api: "http://localhost:3000/", want: "http://localhost:3000/"},
		{name: "api inside path kept", api: "http://host/api/v2", want: "http://host/api/v2"},
		{name: "nothing configured", wantErr: ErrNoEndpoint},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{APIURL: tt.api, SocketURL: tt.socket}
			got, err := cfg.ResolveSocketURL()
			if tt.wantErr != nil {
				require.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())

	bad := Default()
	bad.GroupCap = 0
	require.Error(t, bad.Validate())
}

func TestUpdateFromKeepsZeroFields(t *testing.T) {
	cfg := Default()
	cfg.UpdateFrom(Config{SocketURL: "ws://elsewhere", ReconnectAttempts: 2})

	require.Equal(t, "ws://elsewhere", cfg.SocketURL)
	require.Equal(t, 2, cfg.ReconnectAttempts)
	require.Equal(t, time.Second, cfg.ReconnectDelay)
	require.Equal(t, Default().APIURL, cfg.APIURL)
}

func TestLoadWritesDefaultAndAppliesEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "chatsync.yaml")
	t.Setenv("CHATSYNC_SOCKET_URL", "http://rt.example")
	t.Setenv("CHATSYNC_STUB_ADDR", ":9999")

	logger := zerolog.Nop()
	cfg, resolved, err := Load(&logger, path)
	require.NoError(t, err)
	require.Equal(t, path, resolved)

	_, statErr := os.Stat(path)
	require.NoError(t, statErr, "default config should be written")

	require.Equal(t, "http://rt.example", cfg.SocketURL)
	require.Equal(t, ":9999", cfg.Stub.Addr)
	require.Equal(t, 5, cfg.ReconnectAttempts)
	require.Equal(t, time.Second, cfg.ReconnectDelay)
}

func TestLoadReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chatsync.yaml")
	content := "api_url: http://files.example/api\ngroup_cap: 4\ndedupe_messages: true\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, _, err := Load(nil, path)
	require.NoError(t, err)
	require.Equal(t, "http://files.example/api", cfg.APIURL)
	require.Equal(t, 4, cfg.GroupCap)
	require.True(t, cfg.DedupeMessages)
}
