package config

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/netip"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/tradejournal/imagehost"
	"github.com/rustyeddy/tradejournal/logging"
)

// Config represents the complete journal configuration
type Config struct {
	Server  ServerConfig     `json:"server" yaml:"server"`
	Journal JournalConfig    `json:"journal" yaml:"journal"`
	Auth    AuthConfig       `json:"auth" yaml:"auth"`
	Oanda   OandaConfig      `json:"oanda" yaml:"oanda"`
	Images  imagehost.Config `json:"images" yaml:"images"`
	Log     logging.Config   `json:"log" yaml:"log"`
}

// ServerConfig contains HTTP server parameters
type ServerConfig struct {
	Addr           string   `json:"addr" yaml:"addr"`
	ShutdownGrace  string   `json:"shutdown_grace" yaml:"shutdown_grace"` // e.g. "10s"
	CacheTTL       string   `json:"cache_ttl" yaml:"cache_ttl"`
	RateLimit      float64  `json:"rate_limit" yaml:"rate_limit"` // requests per second per client, 0 = off
	RateBurst      int      `json:"rate_burst" yaml:"rate_burst"`
	AllowedOrigins []string `json:"allowed_origins,omitempty" yaml:"allowed_origins,omitempty"`
	// TrustedProxies may set X-Forwarded-For; CIDRs or single addresses.
	TrustedProxies []string `json:"trusted_proxies,omitempty" yaml:"trusted_proxies,omitempty"`
}

// JournalConfig says where trades are stored
type JournalConfig struct {
	DBPath string `json:"db_path" yaml:"db_path"`
	// Owner is the user the CLI reads and writes as.
	Owner string `json:"owner" yaml:"owner"`
}

// AuthConfig contains session signing parameters
type AuthConfig struct {
	JWTSecret  string `json:"jwt_secret,omitempty" yaml:"jwt_secret"`
	SessionTTL string `json:"session_ttl" yaml:"session_ttl"`
	BcryptCost int    `json:"bcrypt_cost" yaml:"bcrypt_cost"`
}

// OandaConfig points at the broker account used for history lookups
type OandaConfig struct {
	URL       string `json:"url" yaml:"url"`
	Token     string `json:"token,omitempty" yaml:"token"`
	AccountID string `json:"account_id" yaml:"account_id"`
}

// MinSecretLen is the shortest accepted session signing secret.
const MinSecretLen = 16

// EnsureSecret fills an empty JWTSecret with a random one and reports
// whether it did. Sessions signed with it do not survive a restart.
func (a *AuthConfig) EnsureSecret() (bool, error) {
	if a.JWTSecret != "" {
		return false, nil
	}
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return false, fmt.Errorf("generate jwt secret: %w", err)
	}
	a.JWTSecret = hex.EncodeToString(buf)
	return true, nil
}

// Enabled reports whether broker lookups are configured.
func (o OandaConfig) Enabled() bool {
	return o.Token != "" && o.AccountID != ""
}

func parseDuration(field, s string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", field, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive", field)
	}
	return d, nil
}

// ShutdownGraceDuration converts shutdown_grace to a time.Duration
func (s ServerConfig) ShutdownGraceDuration() (time.Duration, error) {
	return parseDuration("server.shutdown_grace", s.ShutdownGrace)
}

// CacheTTLDuration converts cache_ttl to a time.Duration
func (s ServerConfig) CacheTTLDuration() (time.Duration, error) {
	return parseDuration("server.cache_ttl", s.CacheTTL)
}

// SessionTTLDuration converts session_ttl to a time.Duration
func (a AuthConfig) SessionTTLDuration() (time.Duration, error) {
	return parseDuration("auth.session_ttl", a.SessionTTL)
}

// LoadFromFile loads configuration from a file (YAML or JSON)
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg, err := parse(data)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// parse decodes data over the defaults, trying YAML first and falling back
// to JSON.
func parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		cfg = Default()
		if jerr := json.Unmarshal(data, cfg); jerr != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", jerr)
		}
	}
	return cfg, nil
}

// Load reads path if it exists (otherwise starts from Default), then applies
// .env files and environment overrides and validates the result.
func Load(path string, envFiles ...string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config file: %w", err)
		default:
			if cfg, err = parse(data); err != nil {
				return nil, err
			}
		}
	}

	if err := cfg.ApplyEnv(envFiles...); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Redacted returns a copy with tokens and secrets cleared.
func (c *Config) Redacted() *Config {
	r := *c
	r.Auth.JWTSecret = ""
	r.Oanda.Token = ""
	r.Images.APISecret = ""
	return &r
}

// SaveToFile saves configuration to a file (YAML for .yaml/.yml, else JSON).
// JSON output is redacted; YAML keeps secrets.
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(c)
	default:
		data, err = json.MarshalIndent(c.Redacted(), "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// ApplyEnv loads the given .env files (missing files are skipped) and then
// overrides fields from the environment. Variables already set in the
// process win over .env values.
func (c *Config) ApplyEnv(envFiles ...string) error {
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}

	str := func(name string, dst *string) {
		if v, ok := os.LookupEnv(name); ok && v != "" {
			*dst = v
		}
	}

	str("TJ_ADDR", &c.Server.Addr)
	str("TJ_CACHE_TTL", &c.Server.CacheTTL)
	str("TJ_DB", &c.Journal.DBPath)
	str("TJ_OWNER", &c.Journal.Owner)
	str("TJ_JWT_SECRET", &c.Auth.JWTSecret)
	str("TJ_SESSION_TTL", &c.Auth.SessionTTL)
	str("TJ_LOG_LEVEL", &c.Log.Level)
	str("TJ_LOG_FILE", &c.Log.File)

	str("OANDA_API_URL", &c.Oanda.URL)
	str("OANDA_API_TOKEN", &c.Oanda.Token)
	str("OANDA_ACCOUNT_ID", &c.Oanda.AccountID)

	str("CLOUDINARY_URL", &c.Images.BaseURL)
	str("CLOUDINARY_CLOUD_NAME", &c.Images.CloudName)
	str("CLOUDINARY_API_KEY", &c.Images.APIKey)
	str("CLOUDINARY_API_SECRET", &c.Images.APISecret)

	if v, ok := os.LookupEnv("TJ_RATE_LIMIT"); ok && v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("TJ_RATE_LIMIT: %w", err)
		}
		c.Server.RateLimit = f
	}
	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if _, err := c.Server.ShutdownGraceDuration(); err != nil {
		return err
	}
	if _, err := c.Server.CacheTTLDuration(); err != nil {
		return err
	}
	if c.Server.RateLimit < 0 {
		return fmt.Errorf("server.rate_limit must not be negative")
	}
	if c.Server.RateLimit > 0 && c.Server.RateBurst <= 0 {
		return fmt.Errorf("server.rate_burst must be positive when rate_limit is set")
	}
	for _, p := range c.Server.TrustedProxies {
		if _, err := netip.ParsePrefix(p); err == nil {
			continue
		}
		if _, err := netip.ParseAddr(p); err != nil {
			return fmt.Errorf("server.trusted_proxies: %q is not an address or CIDR", p)
		}
	}
	if c.Journal.DBPath == "" {
		return fmt.Errorf("journal.db_path is required")
	}
	if c.Journal.Owner == "" {
		return fmt.Errorf("journal.owner is required")
	}
	if c.Auth.JWTSecret != "" && len(c.Auth.JWTSecret) < MinSecretLen {
		return fmt.Errorf("auth.jwt_secret must be at least %d bytes", MinSecretLen)
	}
	if _, err := c.Auth.SessionTTLDuration(); err != nil {
		return err
	}
	if c.Auth.BcryptCost != 0 && (c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 31) {
		return fmt.Errorf("auth.bcrypt_cost must be between 4 and 31")
	}
	if (c.Oanda.Token == "") != (c.Oanda.AccountID == "") {
		return fmt.Errorf("oanda.token and oanda.account_id must be set together")
	}
	return nil
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:          ":8080",
			ShutdownGrace: "10s",
			CacheTTL:      "30s",
			RateLimit:     20,
			RateBurst:     40,
		},
		Journal: JournalConfig{
			DBPath: "./data/journal.db",
			Owner:  "user_demo",
		},
		Auth: AuthConfig{
			SessionTTL: "24h",
		},
		Oanda: OandaConfig{
			URL: "https://api-fxpractice.oanda.com",
		},
		Images: imagehost.Config{
			BaseURL: imagehost.DefaultBaseURL,
			Folder:  imagehost.DefaultFolder,
		},
		Log: logging.DefaultConfig(),
	}
}
