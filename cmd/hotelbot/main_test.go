package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/hotelbot"
	"github.com/aretw0/hotelbot/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"version"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, "hotelbot version "+hotelbot.Version+"\n", out.String())
}

func TestLoadConfig_FlagsOverrideFile(t *testing.T) {
	t.Chdir(t.TempDir())
	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("backend:\n  url: http://from-file:8000\nstore:\n  kind: file\n"), 0o644))

	cmd := sessionLsCmd
	require.NoError(t, cmd.ParseFlags([]string{"--config", path, "--store", "memory"}))
	t.Cleanup(func() {
		_ = cmd.Flags().Set("config", "")
		_ = cmd.Flags().Set("store", "")
		cmd.Flags().Lookup("store").Changed = false
	})

	cfg, err := loadConfig(cmd)
	require.NoError(t, err)
	assert.Equal(t, "http://from-file:8000", cfg.Backend.URL)
	assert.Equal(t, config.StoreMemory, cfg.Store.Kind)
}

func TestSessionLs_Empty(t *testing.T) {
	t.Chdir(t.TempDir())

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"session", "ls", "--store", "file"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, "No active sessions found.\n", out.String())
}
