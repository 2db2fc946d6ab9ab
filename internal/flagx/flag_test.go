package flagx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	gateway := []string{"-a", "-d", "-s", "-t", "-storage", "-badger", "-log"}

	tests := []struct {
		name    string
		args    []string
		allowed []string
		want    []string
	}{
		{
			name:    "config flag split from gateway flags",
			args:    []string{"-c", "chat.json", "-a", ":8080"},
			allowed: []string{"-c", "-config"},
			want:    []string{"-c", "chat.json"},
		},
		{
			name:    "gateway flags without config",
			args:    []string{"-c", "chat.json", "-storage", "badger", "-badger=/tmp/b"},
			allowed: gateway,
			want:    []string{"-storage", "badger", "-badger=/tmp/b"},
		},
		{
			name:    "equals form keeps dashes in value",
			args:    []string{"-config=--odd.json"},
			allowed: []string{"-config"},
			want:    []string{"-config=--odd.json"},
		},
		{
			name:    "next dash token is never a value",
			args:    []string{"-log", "-t", "30"},
			allowed: gateway,
			want:    []string{"-log", "-t", "30"},
		},
		{
			name:    "trailing flag without value",
			args:    []string{"-d"},
			allowed: gateway,
			want:    []string{"-d"},
		},
		{
			name:    "foreign and positional args dropped",
			args:    []string{"-x", "1", "--verbose", "serve"},
			allowed: gateway,
			want:    []string{},
		},
		{
			name:    "repeats kept in order",
			args:    []string{"-a", ":1", "-a", ":2"},
			allowed: gateway,
			want:    []string{"-a", ":1", "-a", ":2"},
		},
		{
			name:    "nil args",
			args:    nil,
			allowed: gateway,
			want:    []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterArgs(tt.args, tt.allowed))
		})
	}
}

func TestConfigFile(t *testing.T) {
	t.Setenv(ConfigEnvVar, "")

	t.Run("short -c with value", func(t *testing.T) {
		assert.Equal(t, "/path/short.json", ConfigFile([]string{"-c", "/path/short.json"}))
	})

	t.Run("long -config with value", func(t *testing.T) {
		assert.Equal(t, "/path/long.json", ConfigFile([]string{"-config=/path/long.json", "-a", ":8080"}))
	})

	t.Run("unknown flags are ignored", func(t *testing.T) {
		assert.Empty(t, ConfigFile([]string{"-x", "1", "-storage", "memory"}))
	})

	t.Run("multiple flags, last wins", func(t *testing.T) {
		assert.Equal(t, "/path/2.json", ConfigFile([]string{"-c", "/path/1.json", "-config", "/path/2.json"}))
	})

	t.Run("falls back to environment", func(t *testing.T) {
		t.Setenv(ConfigEnvVar, "/etc/gophchat.json")
		assert.Equal(t, "/etc/gophchat.json", ConfigFile(nil))
		assert.Equal(t, "/flag.json", ConfigFile([]string{"-c", "/flag.json"}))
	})
}
