package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// DefaultTimezone is the school timezone used when neither the request nor the
// persisted settings name one.
const DefaultTimezone = "America/New_York"

// LogConfig controls the log facade in internal/log.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level" json:"level"`
	// File enables a rotated JSON log file in addition to stderr.
	File string `yaml:"file,omitempty" json:"file,omitempty"`
}

// Config is the top-level process configuration.
type Config struct {
	// Listen is the HTTP listen address for the site API.
	Listen string `yaml:"listen" json:"listen"`

	// DataDir holds the JSON documents (sportsData.json, settings.json,
	// pageOwners.json) and the feed cache.
	DataDir string `yaml:"data_dir" json:"data_dir"`

	// Timezone is the fallback IANA zone for feed imports when the persisted
	// settings carry none.
	Timezone string `yaml:"timezone" json:"timezone"`

	// FetchTimeoutSeconds bounds a single calendar feed download.
	FetchTimeoutSeconds int `yaml:"fetch_timeout_seconds" json:"fetch_timeout_seconds"`

	// ImportCron is a cron-style schedule (e.g. "0 5 * * *") for unattended
	// re-imports. Empty disables the scheduler; imports are then manual only.
	ImportCron string `yaml:"import_cron" json:"import_cron"`

	// CORSOrigins lists origins allowed to call the API from a browser. Empty
	// means same-origin only.
	CORSOrigins []string `yaml:"cors_origins" json:"cors_origins"`

	// StaticDir, when set, is served at "/" for every non-API path (the
	// exported site front end).
	StaticDir string `yaml:"static_dir,omitempty" json:"static_dir,omitempty"`

	Log LogConfig `yaml:"log" json:"log"`
}

// Secrets are read from the environment only, never from the YAML file.
type Secrets struct {
	// CookieSecret signs session tokens. Startup fails without it.
	CookieSecret string `envconfig:"COOKIE_SECRET" required:"true"`
	// AdminPassword enables system admin login when set.
	AdminPassword string `envconfig:"ADMIN_PASSWORD"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:              "127.0.0.1:8080",
		DataDir:             "./data",
		Timezone:            DefaultTimezone,
		FetchTimeoutSeconds: 15,
		ImportCron:          "",
		CORSOrigins:         []string{},
		Log:                 LogConfig{Level: "info"},
	}
}

// Normalize fills in missing/zero values with sensible defaults so that
// partially-filled configs still behave correctly.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = "127.0.0.1:8080"
	}
	if c.DataDir == "" {
		c.DataDir = "./data"
	}
	if c.Timezone == "" {
		c.Timezone = DefaultTimezone
	}
	if c.FetchTimeoutSeconds <= 0 {
		c.FetchTimeoutSeconds = 15
	}
	if c.CORSOrigins == nil {
		c.CORSOrigins = []string{}
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// FetchTimeout returns FetchTimeoutSeconds as a duration.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutSeconds) * time.Second
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist:
//   - create parent directory if needed
//   - write a default config with 0600 perms
//   - return the default config
//   - If the file exists:
//   - read YAML and unmarshal into Config
//   - normalize defaults
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// First run: create default config file.
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes the given configuration to the specified path atomically via a
// temp file + rename, with 0600 permissions.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return WriteFileAtomic(path, data, 0o600)
}

// Save is a convenience method on Config that delegates to the package-level
// Save function.
func (c *Config) Save(path string) error {
	return Save(path, c)
}

// LoadSecrets reads Secrets from the environment. A .env file in the working
// directory is loaded first if present; real environment variables win.
func LoadSecrets() (*Secrets, error) {
	// Missing .env is normal in production.
	_ = godotenv.Load()

	var s Secrets
	if err := envconfig.Process("", &s); err != nil {
		return nil, err
	}
	// required:"true" only checks presence; an empty secret is just as fatal.
	if strings.TrimSpace(s.CookieSecret) == "" {
		return nil, errors.New("COOKIE_SECRET is empty")
	}
	return &s, nil
}

// WriteFileAtomic writes data to a temp file in the target directory and
// renames it over path, so readers never observe a partially written file.
func WriteFileAtomic(path string, data []byte, perm fs.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	// Ensure we clean up temp file on error.
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}

	// Flush and close before chmod/rename.
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Chmod(tmpName, perm); err != nil {
		return err
	}

	return os.Rename(tmpName, path)
}
