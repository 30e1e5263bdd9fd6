// Package config loads the settings shared by the gosymint commands.
package config

import (
	"strings"

	"github.com/njchilds90/gosymint/risch"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. GOSYMINT_RISCH_MAX_DEPTH.
const EnvPrefix = "GOSYMINT"

// Config is the complete configuration.
type Config struct {
	Risch  RischConfig  `mapstructure:"risch"`
	Log    LogConfig    `mapstructure:"log"`
	Server ServerConfig `mapstructure:"server"`
}

type RischConfig struct {
	MaxDepth int  `mapstructure:"max_depth"`
	Verify   bool `mapstructure:"verify"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Risch:  RischConfig{MaxDepth: risch.DefaultMaxDepth, Verify: true},
		Log:    LogConfig{Level: "info", Format: "text"},
		Server: ServerConfig{Port: 8080},
	}
}

// New returns a viper instance with defaults and environment binding set.
func New() *viper.Viper {
	v := viper.New()
	d := Default()
	v.SetDefault("risch.max_depth", d.Risch.MaxDepth)
	v.SetDefault("risch.verify", d.Risch.Verify)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("server.port", d.Server.Port)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads path, or gosymint.yaml from the working directory when path
// is empty. A missing default file is not an error.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("gosymint")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, errors.Wrap(err, "reading config")
		}
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "decoding config")
	}
	if cfg.Risch.MaxDepth <= 0 {
		return nil, errors.Errorf("risch.max_depth must be positive, got %d", cfg.Risch.MaxDepth)
	}
	return &cfg, nil
}

// Options returns the integrator options with logger attached.
func (c *Config) Options(logger log.FieldLogger) risch.Options {
	return risch.Options{MaxDepth: c.Risch.MaxDepth, Verify: c.Risch.Verify, Logger: logger}
}

// Logger configures a logrus logger from the log section.
func (c *Config) Logger() (*log.Logger, error) {
	level, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return nil, errors.Wrap(err, "log.level")
	}
	l := log.New()
	l.SetLevel(level)
	switch c.Log.Format {
	case "json":
		l.SetFormatter(&log.JSONFormatter{})
	case "text", "":
		l.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	default:
		return nil, errors.Errorf("unknown log.format %q", c.Log.Format)
	}
	return l, nil
}
