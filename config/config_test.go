package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TechTreck-2/petruzdroba/config"
	"github.com/TechTreck-2/petruzdroba/leave"
)

func writeConfig(t *testing.T, yaml string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))
	return path
}

func TestLoad_EmptyPath_Defaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "timeoff.db", cfg.Database.Path)
	assert.Equal(t, leave.DefaultAllotmentMS, cfg.Ledger.DefaultAllotmentMS)
	assert.True(t, cfg.Sweep.Enabled)
	assert.Equal(t, time.Hour, cfg.Sweep.Interval)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 3000
  allowed_origins: ["http://localhost:4200"]
database:
  path: /tmp/test.db
ledger:
  default_allotment_ms: 28800000
sweep:
  enabled: true
  interval_seconds: 600
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, []string{"http://localhost:4200"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "/tmp/test.db", cfg.Database.Path)
	assert.Equal(t, int64(28_800_000), cfg.Ledger.DefaultAllotmentMS)
	assert.Equal(t, 10*time.Minute, cfg.Sweep.Interval)
}

func TestLoad_PartialFileKeepsRemainingDefaults(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 9000\n")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "timeoff.db", cfg.Database.Path)
	assert.Equal(t, leave.DefaultAllotmentMS, cfg.Ledger.DefaultAllotmentMS)
}

func TestLoad_InvalidValues_Rejected(t *testing.T) {
	cases := map[string]string{
		"bad port":       "server:\n  port: -1\n",
		"empty db path":  "database:\n  path: \"\"\n",
		"zero allotment": "ledger:\n  default_allotment_ms: 0\n",
		"bad sweep":      "sweep:\n  enabled: true\n  interval_seconds: 0\n",
	}
	for name, yaml := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := config.Load(writeConfig(t, yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile_Errors(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
