package config

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"KVTTL_NAMESPACE", "KVTTL_ENGINE", "KVTTL_DB", "KVTTL_SOCK", "KVTTL_LOG",
		"KVTTL_REDIS_ADDR", "KVTTL_REDIS_PASSWORD", "KVTTL_REDIS_DB",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "app-storage", cfg.Namespace)
	assert.Equal(t, EngineBolt, cfg.Engine)
	assert.Equal(t, "kvttl.bbolt", filepath.Base(cfg.DBPath))
	assert.Equal(t, "kvttl.sock", filepath.Base(cfg.Socket))
	assert.Equal(t, "127.0.0.1:6379", cfg.Redis.Addr)
	assert.Equal(t, 2*time.Second, cfg.Redis.Timeout)
}

func TestLoad_MissingFileIsIgnored(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, EngineBolt, cfg.Engine)
}

func TestLoad_YAMLThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "kvttl.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
namespace: sessions
engine: redis
redis:
  addr: cache:6379
  db: 3
  timeout: 500ms
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sessions", cfg.Namespace)
	assert.Equal(t, EngineRedis, cfg.Engine)
	assert.Equal(t, "cache:6379", cfg.Redis.Addr)
	assert.Equal(t, 3, cfg.Redis.DB)
	assert.Equal(t, 500*time.Millisecond, cfg.Redis.Timeout)

	t.Setenv("KVTTL_NAMESPACE", "override")
	t.Setenv("KVTTL_REDIS_DB", "5")
	cfg, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, "override", cfg.Namespace)
	assert.Equal(t, 5, cfg.Redis.DB)
}

func TestLoad_Errors(t *testing.T) {
	clearEnv(t)

	t.Run("unknown engine", func(t *testing.T) {
		t.Setenv("KVTTL_ENGINE", "leveldb")
		_, err := Load("")
		require.Error(t, err)
		assert.Contains(t, err.Error(), `unknown engine "leveldb"`)
	})

	t.Run("bad redis db", func(t *testing.T) {
		t.Setenv("KVTTL_REDIS_DB", "zero")
		_, err := Load("")
		var numErr *strconv.NumError
		require.ErrorAs(t, err, &numErr)
		assert.Contains(t, err.Error(), `config: invalid KVTTL_REDIS_DB "zero"`)
	})

	t.Run("bad yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("engine: [unterminated"), 0o600))
		_, err := Load(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "config: parse "+path)
	})
}

func TestValidate_EmptyNamespace(t *testing.T) {
	cfg := Default()
	cfg.Namespace = ""
	assert.Error(t, cfg.Validate())
}
