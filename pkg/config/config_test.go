package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feng001-8/work/pkg/config"
)

func TestLoad(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		cfg, err := config.Load("")
		require.NoError(t, err)

		assert.Equal(t, ":8080", cfg.HTTPAddr)
		assert.Equal(t, "info", cfg.Logging.Level)
		assert.Equal(t, "json", cfg.Logging.Format)
		assert.Equal(t, "X-Request-Id", cfg.RequestIDHeader)
		assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
		assert.Empty(t, cfg.RPCURL)
		assert.Equal(t, int64(1), cfg.ChainIDInt().Int64())
	})

	t.Run("Environment overrides", func(t *testing.T) {
		t.Setenv("PERMITD_HTTP_ADDR", "127.0.0.1:9000")
		t.Setenv("PERMITD_LOG_LEVEL", "debug")
		t.Setenv("PERMITD_LOG_FORMAT", "console")
		t.Setenv("PERMITD_CHAIN_ID", "base-sepolia")
		t.Setenv("PERMITD_SHUTDOWN_TIMEOUT", "3s")

		cfg, err := config.Load("")
		require.NoError(t, err)

		assert.Equal(t, "127.0.0.1:9000", cfg.HTTPAddr)
		assert.Equal(t, "debug", cfg.Logging.Level)
		assert.Equal(t, "console", cfg.Logging.Format)
		assert.Equal(t, int64(84532), cfg.ChainIDInt().Int64())
		assert.Equal(t, 3*time.Second, cfg.ShutdownTimeout)
	})

	t.Run("Env file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "test.env")
		require.NoError(t, os.WriteFile(path, []byte("PERMITD_RPC_URL=http://localhost:8545\nPERMITD_CHAIN_ID=eip155:11155111\n"), 0o600))
		t.Cleanup(func() {
			os.Unsetenv("PERMITD_RPC_URL")
			os.Unsetenv("PERMITD_CHAIN_ID")
		})

		cfg, err := config.Load(path)
		require.NoError(t, err)

		assert.Equal(t, "http://localhost:8545", cfg.RPCURL)
		assert.Equal(t, int64(11155111), cfg.ChainIDInt().Int64())
	})

	t.Run("Missing env file is an error when named", func(t *testing.T) {
		_, err := config.Load(filepath.Join(t.TempDir(), "missing.env"))
		assert.Error(t, err)
	})

	t.Run("Invalid values", func(t *testing.T) {
		for name, env := range map[string][2]string{
			"log level":        {"PERMITD_LOG_LEVEL", "loud"},
			"log format":       {"PERMITD_LOG_FORMAT", "xml"},
			"chain id":         {"PERMITD_CHAIN_ID", "solana"},
			"shutdown timeout": {"PERMITD_SHUTDOWN_TIMEOUT", "soon"},
		} {
			t.Run(name, func(t *testing.T) {
				t.Setenv(env[0], env[1])
				_, err := config.Load("")
				assert.Error(t, err)
			})
		}
	})
}
