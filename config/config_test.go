package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.NotNil(t, cfg)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "user_demo", cfg.Journal.Owner)
	assert.Equal(t, "trade-journal", cfg.Images.Folder)
	assert.False(t, cfg.Oanda.Enabled())
	assert.NoError(t, cfg.Validate())

	ttl, err := cfg.Auth.SessionTTLDuration()
	require.NoError(t, err)
	assert.Equal(t, 24*time.Hour, ttl)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
		errMsg  string
	}{
		{
			name:    "valid config",
			mutate:  func(*Config) {},
			wantErr: false,
		},
		{
			name:    "missing addr",
			mutate:  func(c *Config) { c.Server.Addr = "" },
			wantErr: true,
			errMsg:  "server.addr is required",
		},
		{
			name:    "bad cache ttl",
			mutate:  func(c *Config) { c.Server.CacheTTL = "soon" },
			wantErr: true,
			errMsg:  "server.cache_ttl",
		},
		{
			name:    "negative grace",
			mutate:  func(c *Config) { c.Server.ShutdownGrace = "-1s" },
			wantErr: true,
			errMsg:  "server.shutdown_grace must be positive",
		},
		{
			name:    "rate limit without burst",
			mutate:  func(c *Config) { c.Server.RateBurst = 0 },
			wantErr: true,
			errMsg:  "server.rate_burst must be positive",
		},
		{
			name:    "rate limit off needs no burst",
			mutate:  func(c *Config) { c.Server.RateLimit, c.Server.RateBurst = 0, 0 },
			wantErr: false,
		},
		{
			name:    "trusted proxies",
			mutate:  func(c *Config) { c.Server.TrustedProxies = []string{"10.0.0.0/8", "127.0.0.1", "::1"} },
			wantErr: false,
		},
		{
			name:    "bad trusted proxy",
			mutate:  func(c *Config) { c.Server.TrustedProxies = []string{"proxy.local"} },
			wantErr: true,
			errMsg:  "server.trusted_proxies",
		},
		{
			name:    "missing db path",
			mutate:  func(c *Config) { c.Journal.DBPath = "" },
			wantErr: true,
			errMsg:  "journal.db_path is required",
		},
		{
			name:    "unset secret is generated at serve time",
			mutate:  func(c *Config) { c.Auth.JWTSecret = "" },
			wantErr: false,
		},
		{
			name:    "short secret",
			mutate:  func(c *Config) { c.Auth.JWTSecret = "change-me" },
			wantErr: true,
			errMsg:  "auth.jwt_secret must be at least 16 bytes",
		},
		{
			name:    "bcrypt cost out of range",
			mutate:  func(c *Config) { c.Auth.BcryptCost = 40 },
			wantErr: true,
			errMsg:  "auth.bcrypt_cost",
		},
		{
			name:    "oanda token without account",
			mutate:  func(c *Config) { c.Oanda.Token = "tok" },
			wantErr: true,
			errMsg:  "oanda.token and oanda.account_id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				if tt.errMsg != "" {
					assert.Contains(t, err.Error(), tt.errMsg)
				}
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSaveAndLoad(t *testing.T) {
	tmpDir := t.TempDir()

	t.Run("yaml keeps secrets", func(t *testing.T) {
		path := filepath.Join(tmpDir, "config.yaml")
		cfg := Default()
		cfg.Journal.DBPath = "/var/lib/tj/journal.db"
		cfg.Oanda.Token = "tok"
		cfg.Oanda.AccountID = "101-001"

		require.NoError(t, cfg.SaveToFile(path))
		loaded, err := LoadFromFile(path)
		require.NoError(t, err)
		assert.Equal(t, cfg, loaded)
	})

	t.Run("json drops secrets", func(t *testing.T) {
		path := filepath.Join(tmpDir, "config.json")
		cfg := Default()
		cfg.Server.Addr = ":9090"
		cfg.Auth.JWTSecret = "a-long-enough-signing-secret"
		cfg.Images.APISecret = "cloud-secret"
		require.NoError(t, cfg.SaveToFile(path))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.NotContains(t, string(data), "a-long-enough-signing-secret")
		assert.NotContains(t, string(data), "cloud-secret")
		assert.Equal(t, "a-long-enough-signing-secret", cfg.Auth.JWTSecret, "caller's config is untouched")

		loaded, err := LoadFromFile(path)
		require.NoError(t, err)
		assert.Equal(t, ":9090", loaded.Server.Addr)
	})

	t.Run("json sets secrets", func(t *testing.T) {
		path := filepath.Join(tmpDir, "secrets.json")
		body := `{"auth": {"jwt_secret": "json-provided-signing-key", "session_ttl": "1h"},
			"oanda": {"token": "tok", "account_id": "101-001"}}`
		require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

		loaded, err := LoadFromFile(path)
		require.NoError(t, err)
		assert.Equal(t, "json-provided-signing-key", loaded.Auth.JWTSecret)
		assert.Equal(t, "tok", loaded.Oanda.Token)
		assert.True(t, loaded.Oanda.Enabled())
	})

	t.Run("partial file keeps defaults", func(t *testing.T) {
		path := filepath.Join(tmpDir, "partial.yaml")
		require.NoError(t, os.WriteFile(path, []byte("server:\n  addr: \":7000\"\n"), 0o600))

		loaded, err := LoadFromFile(path)
		require.NoError(t, err)
		assert.Equal(t, ":7000", loaded.Server.Addr)
		assert.Equal(t, "user_demo", loaded.Journal.Owner)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadFromFile(filepath.Join(tmpDir, "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("garbage", func(t *testing.T) {
		path := filepath.Join(tmpDir, "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("server: [unclosed"), 0o600))
		_, err := LoadFromFile(path)
		assert.Error(t, err)
	})
}

func TestDefaultHasNoSigningSecret(t *testing.T) {
	assert.Empty(t, Default().Auth.JWTSecret)
}

func TestEnsureSecret(t *testing.T) {
	a := Default().Auth
	generated, err := a.EnsureSecret()
	require.NoError(t, err)
	assert.True(t, generated)
	assert.Len(t, a.JWTSecret, 64)

	b := Default().Auth
	_, err = b.EnsureSecret()
	require.NoError(t, err)
	assert.NotEqual(t, a.JWTSecret, b.JWTSecret)

	first := a.JWTSecret
	generated, err = a.EnsureSecret()
	require.NoError(t, err)
	assert.False(t, generated)
	assert.Equal(t, first, a.JWTSecret)

	c := Default()
	c.Auth.JWTSecret = first
	assert.NoError(t, c.Validate())
}

func TestRedacted(t *testing.T) {
	cfg := Default()
	cfg.Auth.JWTSecret = "a-long-enough-signing-secret"
	cfg.Oanda.Token = "tok"
	cfg.Images.APISecret = "s"

	r := cfg.Redacted()
	assert.Empty(t, r.Auth.JWTSecret)
	assert.Empty(t, r.Oanda.Token)
	assert.Empty(t, r.Images.APISecret)
	assert.Equal(t, "tok", cfg.Oanda.Token)
	assert.Equal(t, cfg.Server.Addr, r.Server.Addr)
}

func TestApplyEnv(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte(
		"OANDA_API_TOKEN=from-file\nOANDA_ACCOUNT_ID=101-file\nTJ_DB=/from/file.db\n"), 0o600))

	t.Setenv("TJ_DB", "/from/env.db")
	t.Setenv("TJ_RATE_LIMIT", "2.5")
	t.Setenv("CLOUDINARY_CLOUD_NAME", "demo-cloud")
	// godotenv sets these for the process; make sure they are undone.
	t.Setenv("OANDA_API_TOKEN", "")
	t.Setenv("OANDA_ACCOUNT_ID", "")
	require.NoError(t, os.Unsetenv("OANDA_API_TOKEN"))
	require.NoError(t, os.Unsetenv("OANDA_ACCOUNT_ID"))

	cfg := Default()
	require.NoError(t, cfg.ApplyEnv(envFile, filepath.Join(dir, "missing.env")))

	assert.Equal(t, "/from/env.db", cfg.Journal.DBPath, "process env wins over .env")
	assert.Equal(t, "from-file", cfg.Oanda.Token)
	assert.Equal(t, "101-file", cfg.Oanda.AccountID)
	assert.True(t, cfg.Oanda.Enabled())
	assert.Equal(t, 2.5, cfg.Server.RateLimit)
	assert.Equal(t, "demo-cloud", cfg.Images.CloudName)
}

func TestApplyEnvBadRate(t *testing.T) {
	t.Setenv("TJ_RATE_LIMIT", "fast")
	assert.Error(t, Default().ApplyEnv())
}

func TestLoadWithoutFile(t *testing.T) {
	t.Setenv("TJ_ADDR", ":6060")
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, ":6060", cfg.Server.Addr)
}
