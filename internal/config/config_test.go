package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// clearEnv blanks every variable Load reads so the host environment cannot leak in
func clearEnv(t *testing.T) {
	for _, key := range []string{
		"PORT", "AUCTION_SERVER_PORT", "AUCTION_STORE_DRIVER", "AUCTION_STORE_DSN",
		"AUCTION_STORE_BUSY_TIMEOUT", "AUCTION_LOG_LEVEL", "AUCTION_LOG_FILE", "AUCTION_SEED",
	} {
		t.Setenv(key, "")
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "8080", cfg.Server.Port)
	require.Equal(t, ":8080", cfg.Server.Addr())
	require.Equal(t, DriverMemory, cfg.Store.Driver)
	require.Equal(t, 5*time.Second, cfg.Store.BusyTimeout)
	require.Equal(t, "info", cfg.Log.Level)
	require.Empty(t, cfg.Log.File)
	require.Equal(t, 100, cfg.Log.MaxSizeMB)
	require.False(t, cfg.Seed)
}

func TestLoad_FileAndEnv(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
server:
  port: "9000"
store:
  driver: sqlite
  dsn: /var/lib/auction/auction.db
  busy_timeout: 2s
log:
  level: debug
seed: true
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "9000", cfg.Server.Port)
	require.Equal(t, DriverSQLite, cfg.Store.Driver)
	require.Equal(t, "/var/lib/auction/auction.db", cfg.Store.DSN)
	require.Equal(t, 2*time.Second, cfg.Store.BusyTimeout)
	require.Equal(t, "debug", cfg.Log.Level)
	require.True(t, cfg.Seed)

	// environment wins over the file
	t.Setenv("AUCTION_LOG_LEVEL", "warn")
	t.Setenv("PORT", "7070")
	cfg, err = Load(path)
	require.NoError(t, err)
	require.Equal(t, "warn", cfg.Log.Level)
	require.Equal(t, "7070", cfg.Server.Port)
}

func TestLoad_Invalid(t *testing.T) {
	// Table-driven test cases
	tests := []struct {
		name string
		env  map[string]string
		file string
	}{
		{name: "unknown_driver", env: map[string]string{"AUCTION_STORE_DRIVER": "postgres"}},
		{name: "sqlite_without_dsn", file: "store:\n  driver: sqlite\n  dsn: \"\"\n"},
		{name: "missing_file", file: "-"},
		{name: "bad_log_level_file", file: "log:\n  level: verbose\n"},
		{name: "bad_log_level_env", env: map[string]string{"AUCTION_LOG_LEVEL": "loud"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			path := ""
			switch tc.file {
			case "":
			case "-":
				path = filepath.Join(t.TempDir(), "absent.yaml")
			default:
				path = writeConfig(t, tc.file)
			}

			_, err := Load(path)
			require.Error(t, err)
		})
	}
}
