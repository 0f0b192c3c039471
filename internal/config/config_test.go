package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
player: test_player
live_folder: /games/StarCitizen/LIVE
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "test_player", cfg.Player)
	assert.Equal(t, "Game.log", cfg.LiveLogName)
	assert.Equal(t, filepath.Join("/games/StarCitizen/LIVE", "logbackups"), cfg.BackupFolder)
	assert.Equal(t, "databases", cfg.DatabaseFolder)
	assert.Equal(t, 30*time.Second, cfg.RefreshInterval)
	assert.Equal(t, filepath.Join("/games/StarCitizen/LIVE", "Game.log"), cfg.LivePath())
}

func TestLoadOverrides(t *testing.T) {
	path := writeConfig(t, `
player: someone
live_folder: /logs
live_log_name: Other.log
backup_folder: /archive
refresh_interval: 5s
logging:
  log_file: logs/errors.log
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "Other.log", cfg.LiveLogName)
	assert.Equal(t, "/archive", cfg.BackupFolder)
	assert.Equal(t, 5*time.Second, cfg.RefreshInterval)
	assert.Equal(t, "logs/errors.log", cfg.Logging.LogFile)
}

func TestLoadRejectsInvalid(t *testing.T) {
	_, err := Load(writeConfig(t, `
player: someone
live_folder: /logs
refresh_interval: -1s
`))
	assert.ErrorContains(t, err, "refresh_interval")

	_, err = Load(writeConfig(t, `player: someone`))
	assert.ErrorContains(t, err, "live_folder")
}

func TestEmptyPlayerIsAllowed(t *testing.T) {
	// First run: no player yet; the store layer decides what to do about it.
	cfg, err := Load(writeConfig(t, `live_folder: /logs`))
	require.NoError(t, err)
	assert.Empty(t, cfg.Player)
}
