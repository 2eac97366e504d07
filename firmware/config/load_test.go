//go:build !tinygo

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadTOML(t *testing.T) {
	path := writeFile(t, "keyball.toml", `
tap_threshold = "180ms"
permissive_hold = true
scroll_divider_y = -8
split_channel_size = 64
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 180*time.Millisecond, cfg.TapThreshold.D())
	assert.True(t, cfg.PermissiveHold)
	assert.Equal(t, -8, cfg.ScrollDividerY)
	assert.Equal(t, 64, cfg.SplitChannelSize)
	// untouched fields keep their defaults
	assert.Equal(t, Default().AutoPointerDuration, cfg.AutoPointerDuration)
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "keyball.yaml", "auto_pointer_duration: 750ms\nauto_pointer_threshold: 3\n")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 750*time.Millisecond, cfg.AutoPointerDuration.D())
	assert.Equal(t, 3, cfg.AutoPointerThreshold)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadRejects(t *testing.T) {
	tests := []struct {
		name string
		file string
		body string
	}{
		{name: "invalid value", file: "bad.toml", body: "scroll_divider_x = 0\n"},
		{name: "unknown key", file: "typo.toml", body: "tap_treshold = \"100ms\"\n"},
		{name: "bad duration", file: "dur.toml", body: "tap_threshold = \"fast\"\n"},
		{name: "extension", file: "cfg.ini", body: "x=1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.file, tt.body))
			require.Error(t, err)
		})
	}
}
