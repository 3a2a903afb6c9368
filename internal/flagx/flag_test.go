package flagx

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name         string
		args         []string
		allowedFlags []string
		want         []string
	}{
		{
			name:         "short flag with separate value",
			args:         []string{"-c", "conf.json", "-a", "localhost"},
			allowedFlags: []string{"-c", "--config"},
			want:         []string{"-c", "conf.json"},
		},
		{
			name:         "long flag with equals",
			args:         []string{"--config=alt.json", "-a", "localhost"},
			allowedFlags: []string{"-c", "--config"},
			want:         []string{"--config=alt.json"},
		},
		{
			name:         "unknown flags ignored",
			args:         []string{"-x", "1", "--y=2", "positional"},
			allowedFlags: []string{"-c"},
			want:         []string{},
		},
		{
			name:         "flag without value at end",
			args:         []string{"-c"},
			allowedFlags: []string{"-c"},
			want:         []string{"-c"},
		},
		{
			name:         "next dash token is not a value",
			args:         []string{"-c", "-notvalue"},
			allowedFlags: []string{"-c"},
			want:         []string{"-c"},
		},
		{
			name:         "several allowed flags keep their order",
			args:         []string{"-a", ":8080", "-c", "conf.json", "--other", "x", "-k", "redis:6379"},
			allowedFlags: []string{"-c", "-a", "-k"},
			want:         []string{"-a", ":8080", "-c", "conf.json", "-k", "redis:6379"},
		},
		{
			name:         "empty args",
			args:         []string{},
			allowedFlags: []string{"-c"},
			want:         []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterArgs(tt.args, tt.allowedFlags))
		})
	}
}

func TestConfigFileFlag(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	t.Run("short", func(t *testing.T) {
		os.Args = []string{"orgdrive", "-c", "/etc/orgdrive/short.json"}
		assert.Equal(t, "/etc/orgdrive/short.json", ConfigFileFlag())
	})

	t.Run("long with other flags around", func(t *testing.T) {
		os.Args = []string{"orgdrive", "-a", ":8080", "-config", "/etc/orgdrive/long.json", "-d", "dsn"}
		assert.Equal(t, "/etc/orgdrive/long.json", ConfigFileFlag())
	})

	t.Run("absent", func(t *testing.T) {
		os.Args = []string{"orgdrive", "-x", "1"}
		assert.Empty(t, ConfigFileFlag())
	})

	t.Run("last wins", func(t *testing.T) {
		os.Args = []string{"orgdrive", "-c", "/1.json", "-config", "/2.json"}
		assert.Equal(t, "/2.json", ConfigFileFlag())
	})
}
