package platform

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultDataDir is used when neither a config file nor the environment
// names a data directory.
const DefaultDataDir = "data"

// Config is the file and environment configuration of hdx.
type Config struct {
	DataDir         string `yaml:"data_dir"`
	Backups         *bool  `yaml:"backups,omitempty"`
	BackupRetention int    `yaml:"backup_retention"`
	StrictIDs       bool   `yaml:"strict_ids"`
	MustExist       bool   `yaml:"must_exist"`
	LogLevel        string `yaml:"log_level"`
}

// LoadConfig builds a Config from, in increasing precedence: defaults, the
// YAML file at path (optional), a .env file next to it or in the working
// directory (optional), and HDX_* environment variables.
//
// A relative data_dir in the YAML file is resolved against the file's
// directory.
func LoadConfig(path string) (Config, error) {
	cfg := Config{DataDir: DefaultDataDir}

	envFile := ".env"
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
		dir := filepath.Dir(path)
		if cfg.DataDir == "" {
			cfg.DataDir = DefaultDataDir
		}
		if !filepath.IsAbs(cfg.DataDir) {
			cfg.DataDir = filepath.Join(dir, cfg.DataDir)
		}
		envFile = filepath.Join(dir, ".env")
	}

	// godotenv never overrides variables already set in the environment.
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := firstEnv("HDX_DATA_DIR", "DATA_DIR"); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv("HDX_BACKUP_RETENTION"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return fmt.Errorf("invalid HDX_BACKUP_RETENTION %q: must be a non-negative integer", v)
		}
		c.BackupRetention = n
	}
	if v := os.Getenv("HDX_BACKUPS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid HDX_BACKUPS %q: %w", v, err)
		}
		c.Backups = &b
	}
	if v := os.Getenv("HDX_STRICT_IDS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid HDX_STRICT_IDS %q: %w", v, err)
		}
		c.StrictIDs = b
	}
	if v := os.Getenv("HDX_LOG_LEVEL"); v != "" {
		c.LogLevel = strings.ToLower(v)
	}
	return nil
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}

// BackupsEnabled reports whether pre-save backups are on. They are unless
// explicitly disabled.
func (c Config) BackupsEnabled() bool {
	return c.Backups == nil || *c.Backups
}

// Options converts the configuration into service options.
func (c Config) Options() []Option {
	return []Option{
		WithBackups(c.BackupsEnabled()),
		WithBackupRetention(c.BackupRetention),
		WithStrictIDs(c.StrictIDs),
		WithMustExist(c.MustExist),
	}
}
