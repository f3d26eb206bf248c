package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("Reads the yaml file", func(t *testing.T) {
		// Given: A config file with a few values set
		path := filepath.Join(t.TempDir(), "config.yml")
		content := `log-level: debug
http-port: "8080"
storage:
  driver: sqlite
sqlite-storage-path: /tmp/sessions.db
socket:
  ping-period: 5s
  pong-wait: 10s
client:
  poll-interval: 500ms
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

		// When: Loading it
		conf, err := Load(path)

		// Then: File values win and the rest falls back to defaults
		require.NoError(t, err)
		assert.Equal(t, "debug", conf.LogLevel)
		assert.Equal(t, "8080", conf.HTTPPort)
		assert.Equal(t, "9091", conf.SocketPort)
		assert.Equal(t, StorageSQLite, conf.Storage.Driver)
		assert.Equal(t, "/tmp/sessions.db", conf.SQLiteStoragePath)
		assert.Equal(t, 5*time.Second, conf.Socket.PingPeriod)
		assert.Equal(t, 10*time.Second, conf.Socket.PongWait)
		assert.Equal(t, 16, conf.Socket.SendBuffer)
		assert.Equal(t, 500*time.Millisecond, conf.Client.PollInterval)
		assert.Equal(t, "localhost:6379", conf.Redis.GetRedisAddr())
	})

	t.Run("Falls back to the environment without a file", func(t *testing.T) {
		t.Setenv("STORAGE_DRIVER", "redis")
		t.Setenv("REDIS_HOST", "cache")
		t.Setenv("POLL_INTERVAL", "3s")

		conf, err := Load(filepath.Join(t.TempDir(), "missing.yml"))

		require.NoError(t, err)
		assert.Equal(t, "info", conf.LogLevel)
		assert.Equal(t, StorageRedis, conf.Storage.Driver)
		assert.Equal(t, "cache:6379", conf.Redis.GetRedisAddr())
		assert.Equal(t, 3*time.Second, conf.Client.PollInterval)
		assert.Equal(t, 30*time.Second, conf.Socket.PingPeriod)
	})

	t.Run("Rejects an unknown storage driver", func(t *testing.T) {
		t.Setenv("STORAGE_DRIVER", "postgres")

		_, err := Load(filepath.Join(t.TempDir(), "missing.yml"))

		require.ErrorIs(t, err, ErrUnknownStorage)
	})

	t.Run("Rejects a pong wait shorter than the ping period", func(t *testing.T) {
		t.Setenv("SOCKET_PING_PERIOD", "10s")
		t.Setenv("SOCKET_PONG_WAIT", "5s")

		_, err := Load(filepath.Join(t.TempDir(), "missing.yml"))

		require.Error(t, err)
	})

	t.Run("MustLoad panics on a broken file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yml")
		require.NoError(t, os.WriteFile(path, []byte("log-level: [unclosed"), 0o600))

		assert.Panics(t, func() { MustLoad(path) })
	})
}
