package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	if dir == "" {
		dir = t.TempDir()
	}
	if name == "" {
		name = "cfg.json"
	}
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson_SourcesAndPrecedence(t *testing.T) {
	dir := t.TempDir()
	pathFlag := writeTempJSON(t, dir, "flag.json", map[string]any{
		"endpoint_addr":                  "chat.example:9000",
		"storage":                        "postgres",
		"database_dsn":                   "postgres://chat",
		"secret_key":                     "my_secret_key",
		"access_token_validity_duration": "1m",
		"handshake_timeout":              "2s",
		"write_timeout":                  3000000000,
		"pong_wait":                      "45s",
		"request_timeout":                "1s",
		"send_queue_size":                16,
		"max_frame_bytes":                4096,
		"log_level":                      "debug",
	})
	pathEnv := writeTempJSON(t, dir, "env.json", map[string]any{
		"endpoint_addr": "env.example:1",
	})

	t.Run("loads from json", func(t *testing.T) {
		t.Setenv("GOPHCHAT_CONFIG", "")

		cfg := &Config{}
		require.NoError(t, parseJson(cfg, []string{"-config", pathFlag}))

		want := &Config{
			EndpointAddr:                "chat.example:9000",
			Storage:                     "postgres",
			DatabaseDSN:                 "postgres://chat",
			SecretKey:                   "my_secret_key",
			AccessTokenValidityDuration: time.Minute,
			HandshakeTimeout:            2 * time.Second,
			WriteTimeout:                3 * time.Second,
			PongWait:                    45 * time.Second,
			RequestTimeout:              time.Second,
			SendQueueSize:               16,
			MaxFrameBytes:               4096,
			LogLevel:                    "debug",
		}
		if diff := cmp.Diff(want, cfg); diff != "" {
			t.Errorf("config mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("falls back to env var path", func(t *testing.T) {
		t.Setenv("GOPHCHAT_CONFIG", pathEnv)

		cfg := &Config{}
		cfg.LoadDefaults()
		require.NoError(t, parseJson(cfg, nil))

		assert.Equal(t, "env.example:1", cfg.EndpointAddr)
		assert.Equal(t, "secretKey", cfg.SecretKey, "absent fields keep their value")
	})

	t.Run("flag wins over env var", func(t *testing.T) {
		t.Setenv("GOPHCHAT_CONFIG", pathEnv)

		cfg := &Config{}
		require.NoError(t, parseJson(cfg, []string{"-c", pathFlag}))
		assert.Equal(t, "chat.example:9000", cfg.EndpointAddr)
	})

	t.Run("no path is a no-op", func(t *testing.T) {
		t.Setenv("GOPHCHAT_CONFIG", "")

		cfg := &Config{}
		cfg.LoadDefaults()
		before := *cfg
		require.NoError(t, parseJson(cfg, nil))
		assert.Equal(t, before, *cfg)
	})
}

func Test_parseJson_Errors(t *testing.T) {
	t.Setenv("GOPHCHAT_CONFIG", "")
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{not json"), 0o600))

	badDuration := writeTempJSON(t, dir, "dur.json", map[string]any{"pong_wait": "forever"})

	tests := []struct {
		name string
		path string
	}{
		{name: "missing file", path: filepath.Join(dir, "missing.json")},
		{name: "malformed json", path: bad},
		{name: "bad duration", path: badDuration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			assert.Error(t, parseJson(cfg, []string{"-c", tt.path}))
		})
	}
}

func TestLoad_JsonThenEnv(t *testing.T) {
	path := writeTempJSON(t, "", "", map[string]any{
		"endpoint_addr": ":1111",
		"secret_key":    "from-json",
	})
	t.Setenv("GOPHCHAT_CONFIG", path)
	t.Setenv("GOPHCHAT_SECRET_KEY", "from-env")

	c, err := load(nil)
	require.NoError(t, err)
	assert.Equal(t, ":1111", c.EndpointAddr)
	assert.Equal(t, "from-env", c.SecretKey)
}
