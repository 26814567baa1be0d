package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, "/api", cfg.Server.BasePath)
	assert.Equal(t, "local", cfg.Ordering.LockBackend)
	assert.Equal(t, 3*time.Second, cfg.Ordering.LockWait)
	assert.Equal(t, 24*time.Hour, cfg.Invite.TTL)
}

func TestLoad_YAMLThenEnv(t *testing.T) {
	path := writeConfig(t, `
server:
  port: "9000"
database:
  driver: sqlite
  sqlite_path: /tmp/board.db
ordering:
  lock_backend: redis
  lock_wait: 500ms
jwt:
  secret: from-file
`)
	t.Setenv("PORT", "9100")
	t.Setenv("LOCK_WAIT", "2s")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9100", cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "/tmp/board.db", cfg.Database.GetDSN())
	assert.Equal(t, "redis", cfg.Ordering.LockBackend)
	assert.Equal(t, 2*time.Second, cfg.Ordering.LockWait)
	assert.Equal(t, "from-file", cfg.Invite.Secret, "invite secret falls back to the jwt secret")
}

func TestLoad_RejectsUnknownLockBackend(t *testing.T) {
	path := writeConfig(t, "ordering:\n  lock_backend: zookeeper\n")

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_RejectsBrokenYAML(t *testing.T) {
	path := writeConfig(t, "server: [unterminated")

	_, err := Load(path)
	assert.Error(t, err)
}

func TestDatabaseConfig_GetDSN(t *testing.T) {
	d := DatabaseConfig{
		Driver:   "postgres",
		Host:     "db",
		Port:     5432,
		User:     "u",
		Password: "p",
		Name:     "itrun",
		SSLMode:  "disable",
	}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=itrun sslmode=disable TimeZone=UTC", d.GetDSN())

	d.URL = "postgres://u:p@db/itrun"
	assert.Equal(t, "postgres://u:p@db/itrun", d.GetDSN())
}
