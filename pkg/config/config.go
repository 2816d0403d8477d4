// Package config loads taxopick settings from a YAML file, .env files and
// the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/Dicklesworthstone/taxopick/pkg/api"
)

// Store kinds.
const (
	StoreFile   = "file"
	StoreSQLite = "sqlite"
	StoreMemory = "memory"
)

// EnvPrefix prefixes every environment override, e.g. TAXOPICK_API_API_KEY.
const EnvPrefix = "TAXOPICK"

// Config is the resolved configuration.
type Config struct {
	API      APIConfig      `mapstructure:"api" yaml:"api"`
	Store    StoreConfig    `mapstructure:"store" yaml:"store"`
	Log      LogConfig      `mapstructure:"log" yaml:"log"`
	Locale   string         `mapstructure:"locale" yaml:"locale"`
	Location map[string]any `mapstructure:"location" yaml:"location,omitempty"`

	// Source is the config file that was read, if any.
	Source string `mapstructure:"-" yaml:"-"`
}

type APIConfig struct {
	BaseURL         string        `mapstructure:"base_url" yaml:"base_url"`
	ManagementToken string        `mapstructure:"management_token" yaml:"management_token"`
	APIKey          string        `mapstructure:"api_key" yaml:"api_key"`
	Timeout         time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

type StoreConfig struct {
	Kind     string `mapstructure:"kind" yaml:"kind"`
	Path     string `mapstructure:"path" yaml:"path"`
	EntryUID string `mapstructure:"entry_uid" yaml:"entry_uid"`
	FieldUID string `mapstructure:"field_uid" yaml:"field_uid"`
}

type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
	File  string `mapstructure:"file" yaml:"file,omitempty"`
}

// Client returns the API client settings.
func (c *Config) Client() api.Config {
	return api.Config{
		BaseURL:         c.API.BaseURL,
		ManagementToken: c.API.ManagementToken,
		APIKey:          c.API.APIKey,
		Timeout:         c.API.Timeout,
	}
}

// Options controls Load.
type Options struct {
	// ConfigFile is an explicit config path. When empty the file is
	// discovered with FindConfigFile.
	ConfigFile string
	// EnvFiles are loaded before the environment is read. Missing files are
	// skipped. Defaults to ".env".
	EnvFiles []string
}

// Defaults returns the configuration used when nothing is set.
func Defaults() Config {
	return Config{
		API:    APIConfig{BaseURL: api.DefaultBaseURL},
		Store:  StoreConfig{Kind: StoreFile, Path: "taxopick-field.json", EntryUID: "local", FieldUID: "taxonomies"},
		Log:    LogConfig{Level: "info"},
		Locale: "und",
	}
}

// Load resolves the configuration. Precedence, highest first: environment
// (including .env files), config file, defaults.
func Load(opts Options) (*Config, error) {
	envFiles := opts.EnvFiles
	if envFiles == nil {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Names the embedded field app was configured with.
	_ = v.BindEnv("api.management_token", EnvPrefix+"_API_MANAGEMENT_TOKEN", "REACT_APP_MANAGEMENT_TOKEN")
	_ = v.BindEnv("api.api_key", EnvPrefix+"_API_API_KEY", "REACT_APP_API_KEY")

	path := opts.ConfigFile
	if path == "" {
		path = FindConfigFile()
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.Source = v.ConfigFileUsed()
	switch strings.ToLower(filepath.Ext(cfg.Source)) {
	case ".yaml", ".yml", ".json":
		loc, err := readLocation(cfg.Source)
		if err != nil {
			return nil, err
		}
		cfg.Location = loc
	}
	return &cfg, nil
}

// readLocation reads the location map straight from the YAML file. Viper
// lowercases keys, and location keys are case-sensitive surface names.
func readLocation(path string) (map[string]any, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc struct {
		Location map[string]any `yaml:"location"`
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("read location from %s: %w", path, err)
	}
	return doc.Location, nil
}

func setDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("api.base_url", d.API.BaseURL)
	v.SetDefault("api.management_token", "")
	v.SetDefault("api.api_key", "")
	v.SetDefault("api.timeout", d.API.Timeout)
	v.SetDefault("store.kind", d.Store.Kind)
	v.SetDefault("store.path", d.Store.Path)
	v.SetDefault("store.entry_uid", d.Store.EntryUID)
	v.SetDefault("store.field_uid", d.Store.FieldUID)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.file", "")
	v.SetDefault("locale", d.Locale)
}

// Validate checks the settings needed to run. Credentials are only
// required when terms come from the remote API.
func (c *Config) Validate(remote bool) error {
	var errs []error
	if remote {
		if c.API.ManagementToken == "" {
			errs = append(errs, errors.New("api.management_token is not set"))
		}
		if c.API.APIKey == "" {
			errs = append(errs, errors.New("api.api_key is not set"))
		}
	}
	if c.API.Timeout < 0 {
		errs = append(errs, errors.New("api.timeout must not be negative"))
	}
	switch c.Store.Kind {
	case StoreFile, StoreSQLite:
		if c.Store.Path == "" {
			errs = append(errs, fmt.Errorf("store.path is required for %s store", c.Store.Kind))
		}
	case StoreMemory:
	default:
		errs = append(errs, fmt.Errorf("store.kind %q is not one of file, sqlite, memory", c.Store.Kind))
	}
	return errors.Join(errs...)
}

// Write stores cfg as YAML at path, creating parent directories.
func Write(path string, cfg Config) error {
	raw, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o600)
}
