package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const EnvPrefix = "NEO"

// ErrMissingAPIToken is returned by ValidateServe when no bearer token is
// configured. There is no built-in token.
var ErrMissingAPIToken = errors.New("api token is required: set NEO_API_TOKEN or API_BEARER_TOKEN")

const (
	SourceFiles  = "files"
	SourceSQLite = "sqlite"
)

type HTTPConfig struct {
	Port int `mapstructure:"port" validate:"min=1,max=65535"`
}

type NATSConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port" validate:"min=-1,max=65535"`
	DataDir string `mapstructure:"data_dir" validate:"required_if=Enabled true"`
}

// Config holds runtime configuration. Values come from an optional config
// file, NEO_* environment variables (a .env file is loaded first) and CLI
// flags bound by the caller. Data file paths have no defaults.
type Config struct {
	Source     string     `mapstructure:"source" validate:"oneof=files sqlite"`
	NEOPath    string     `mapstructure:"neos_path" validate:"required_if=Source files"`
	CADPath    string     `mapstructure:"cad_path" validate:"required_if=Source files"`
	SQLitePath string     `mapstructure:"sqlite_path" validate:"required"`
	APIToken   string     `mapstructure:"api_token"`
	LogMode    string     `mapstructure:"log_mode" validate:"oneof=dev prod production"`
	HTTP       HTTPConfig `mapstructure:"http"`
	NATS       NATSConfig `mapstructure:"nats"`
}

// LoadDotEnv loads the given .env files (".env" when none are given) into
// the process environment. Missing files are not an error; the returned
// bool reports whether anything was loaded.
func LoadDotEnv(files ...string) (bool, error) {
	if err := godotenv.Load(files...); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("failed to load env file: %w", err)
	}
	return true, nil
}

// SetDefaults registers defaults and environment binding on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("source", SourceFiles)
	v.SetDefault("neos_path", "")
	v.SetDefault("cad_path", "")
	v.SetDefault("sqlite_path", "./db/neo.db")
	v.SetDefault("api_token", "")
	v.SetDefault("log_mode", "dev")
	v.SetDefault("http.port", 8080)
	v.SetDefault("nats.enabled", true)
	v.SetDefault("nats.port", 4222)
	v.SetDefault("nats.data_dir", "./data/nats")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("api_token", EnvPrefix+"_API_TOKEN", "API_BEARER_TOKEN")
}

// Load unmarshals and validates the configuration held by v.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ValidateServe checks the settings only the server needs.
func (c *Config) ValidateServe() error {
	if c.APIToken == "" {
		return ErrMissingAPIToken
	}
	return nil
}

func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
