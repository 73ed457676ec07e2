package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the root configuration for studylog, stored in ~/.studylog/config.json.
// The file supports single-line // comments for documentation purposes.
// Every key can be overridden with a STUDYLOG_* environment variable,
// e.g. STUDYLOG_LOG_LEVEL=debug.
type Config struct {
	DataDir        string        `mapstructure:"data_dir"`
	Timezone       string        `mapstructure:"timezone"`
	DefaultSubject string        `mapstructure:"default_subject"`
	Log            LogConfig     `mapstructure:"log"`
	Server         ServerConfig  `mapstructure:"server"`
	Outlook        OutlookConfig `mapstructure:"outlook"`
}

// LogConfig controls diagnostic logging on stderr.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ServerConfig holds settings for `studylog serve`.
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// OutlookConfig holds Microsoft Graph / Outlook calendar import settings.
type OutlookConfig struct {
	// TenantID is the Azure AD tenant. Use "common" for personal/multi-tenant accounts.
	TenantID string `mapstructure:"tenant_id"`
	// ClientID is the Azure app (client) ID for the OAuth2 device code flow.
	ClientID string `mapstructure:"client_id"`
	// Subject is the diary subject assigned to imported calendar events.
	Subject string `mapstructure:"subject"`
}

const (
	// EnvPrefix prefixes all environment overrides.
	EnvPrefix = "STUDYLOG"
	// DefaultTenantID is the Microsoft "common" tenant (supports personal and
	// multi-tenant organisational accounts without additional registration).
	DefaultTenantID = "common"
	// DefaultClientID is the well-known public Azure CLI app ID.
	// It supports device code flow without a client secret and requires no
	// app registration.
	DefaultClientID = "04b07795-8542-4c4a-95af-30b2c573d5ab"
	// DefaultOutlookSubject is the subject given to imported calendar events.
	DefaultOutlookSubject = "Lessons"
	// DefaultServerAddr is the listen address of the HTTP API.
	DefaultServerAddr = "127.0.0.1:8787"
)

// configTemplate is the annotated config written on first run.
// Lines whose trimmed content starts with // are stripped before JSON parsing,
// allowing human-readable documentation inside the file.
const configTemplate = `// studylog configuration – ~/.studylog/config.json
//
// All settings are optional. Any key can also be set through the
// environment, e.g. STUDYLOG_DATA_DIR or STUDYLOG_LOG_LEVEL.
{
  // Directory holding diary/, surveys/ and responses/.
  // Leave empty to use ~/.studylog.
  "data_dir": "",

  // IANA timezone used for week boundaries, e.g. "Asia/Tokyo".
  // Leave empty to use the system local timezone.
  "timezone": "",

  // Subject used by 'studylog log' when none is given.
  "default_subject": "",

  // ── Diagnostics ──────────────────────────────────────────────────────────
  "log": {
    // debug, info, warn or error
    "level": "warn",
    // text or json
    "format": "text"
  },

  // ── HTTP API (studylog serve) ────────────────────────────────────────────
  "server": {
    "addr": "127.0.0.1:8787"
  },

  // ── Microsoft Graph / Outlook calendar import ────────────────────────────
  "outlook": {
    // Azure AD tenant ID. "common" works for personal accounts and most
    // organisations.
    "tenant_id": "common",

    // Azure application (client) ID used for the OAuth2 device code flow.
    // The built-in value is the public Azure CLI app – no app registration needed.
    "client_id": "04b07795-8542-4c4a-95af-30b2c573d5ab",

    // Diary subject assigned to imported calendar events.
    // Can be overridden per-sync with: studylog outlook sync --subject <name>
    "subject": "Lessons"
  }
}
`

// newViper returns a viper instance with defaults and env overrides set.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("json")
	v.SetDefault("data_dir", "")
	v.SetDefault("timezone", "")
	v.SetDefault("default_subject", "")
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "text")
	v.SetDefault("server.addr", DefaultServerAddr)
	v.SetDefault("outlook.tenant_id", DefaultTenantID)
	v.SetDefault("outlook.client_id", DefaultClientID)
	v.SetDefault("outlook.subject", DefaultOutlookSubject)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// DefaultPath returns the path to ~/.studylog/config.json.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".studylog", "config.json"), nil
}

// stripLineComments removes lines whose leading non-whitespace content starts
// with //. Only full-line comments are handled; inline comments are not stripped.
func stripLineComments(data []byte) []byte {
	var out []byte
	for _, line := range bytes.Split(data, []byte("\n")) {
		if bytes.HasPrefix(bytes.TrimLeft(line, " \t"), []byte("//")) {
			continue
		}
		out = append(out, line...)
		out = append(out, '\n')
	}
	return out
}

// Load reads the config file at path, creating it with annotated defaults
// when it does not exist. An empty path means DefaultPath. Environment
// overrides are applied on top of the file.
func Load(path string) (Config, error) {
	v := newViper()

	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return decode(v)
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		// First run: write the annotated template so users can discover options.
		if writeErr := writeDefault(path); writeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not create config file %s: %v\n", path, writeErr)
		}
		return decode(v)
	}
	if err != nil {
		return Config{}, fmt.Errorf("reading config file %s: %w", path, err)
	}

	if err := v.ReadConfig(bytes.NewReader(stripLineComments(data))); err != nil {
		return Config{}, fmt.Errorf("parsing config file %s: %w\nTip: delete the file to regenerate defaults", path, err)
	}
	return decode(v)
}

func decode(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if cfg.Timezone != "" {
		if _, err := time.LoadLocation(cfg.Timezone); err != nil {
			return Config{}, fmt.Errorf("invalid timezone %q: %w", cfg.Timezone, err)
		}
	}
	return cfg, nil
}

// Location returns the configured timezone, or time.Local when unset.
func (c Config) Location() *time.Location {
	if c.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// writeDefault creates the config directory and writes the annotated default
// config template.
func writeDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(configTemplate), 0o600); err != nil {
		return fmt.Errorf("writing default config: %w", err)
	}
	return nil
}
