package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadServer_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadServer(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "BanchoBot", cfg.BotName)
	assert.NotEmpty(t, cfg.Ports)
	assert.Contains(t, cfg.AutojoinChannels, "#osu")
}

func TestLoadServer_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
ports: [5000]
maintenance: true
bot_name: TestBot
database:
  host: db.local
  port: 5433
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := LoadServer(path)
	require.NoError(t, err)

	assert.Equal(t, []int{5000}, cfg.Ports)
	assert.True(t, cfg.Maintenance)
	assert.Equal(t, "TestBot", cfg.BotName)
	assert.Equal(t, "db.local", cfg.Database.Host)

	// Untouched keys keep their defaults.
	assert.Equal(t, "0.0.0.0", cfg.BindAddress)
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{
		Host: "127.0.0.1", Port: 5432,
		User: "u", Password: "p", DBName: "bancho", SSLMode: "disable",
	}
	assert.Equal(t, "postgres://u:p@127.0.0.1:5432/bancho?sslmode=disable", d.DSN())
}
