// Package config holds the cgsynth settings. Values come from defaults set in
// code, an optional cgsynth.toml or cgsynth.yaml file, and CGSYNTH_*
// environment variables, in increasing precedence.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/stoutes/chapel/internal/errors"
)

// EnvPrefix prefixes every environment override, e.g. CGSYNTH_LOG_LEVEL.
const EnvPrefix = "CGSYNTH"

// FileNames are searched in the working directory when no file is given.
var FileNames = []string{"cgsynth.toml", "cgsynth.yaml", "cgsynth.yml"}

type Config struct {
	Log    LogConfig    `mapstructure:"log"`
	Survey SurveyConfig `mapstructure:"survey"`
	Repl   ReplConfig   `mapstructure:"repl"`

	// File is the configuration file that was read, if any.
	File string `mapstructure:"-"`
}

type LogConfig struct {
	JSON  bool   `mapstructure:"json"`
	Level string `mapstructure:"level"`
}

// SurveyConfig controls `cgsynth survey`.
type SurveyConfig struct {
	// Jobs bounds the number of concurrent queries.
	Jobs int `mapstructure:"jobs"`
	// Names are queried for every declared type.
	Names []string `mapstructure:"names"`
}

type ReplConfig struct {
	// History is the liner history file; empty disables history.
	History string `mapstructure:"history"`
}

var defaultSurveyNames = []string{
	"init", "init=", "deinit", "=", "==",
	"size", "eltType", "domain",
	"rank", "idxType", "stridable", "parSafe",
	"isRectangular", "isAssociative",
}

// SetDefaults configures the default value of every key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("log.json", false)
	v.SetDefault("log.level", "warn")

	v.SetDefault("survey.jobs", 4)
	v.SetDefault("survey.names", defaultSurveyNames)

	v.SetDefault("repl.history", defaultHistory())
}

func defaultHistory() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".cgsynth_history")
}

// New returns a viper instance with defaults and environment binding. When
// path is empty the working directory is searched for FileNames.
func New(path string) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)

	if path == "" {
		path = findConfigFile()
	}
	if path == "" {
		return v, nil
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, errors.WithHint(
			errors.Wrapf(err, "failed to read config file %s", path),
			"configuration files must be TOML or YAML")
	}
	return v, nil
}

func findConfigFile() string {
	for _, name := range FileNames {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// Load reads the configuration from path, or from the working directory
// when path is empty.
func Load(path string) (*Config, error) {
	v, err := New(path)
	if err != nil {
		return nil, err
	}
	return LoadWithViper(v)
}

// LoadWithViper decodes and validates the configuration held by v.
func LoadWithViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	cfg.File = v.ConfigFileUsed()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

var logLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

// Validate rejects settings the CLI cannot honor.
func (c *Config) Validate() error {
	if !logLevels[strings.ToLower(c.Log.Level)] {
		return errors.WithHint(
			errors.Newf("invalid log.level %q", c.Log.Level),
			"use one of debug, info, warn, error")
	}
	if c.Survey.Jobs < 1 {
		return errors.Newf("survey.jobs must be at least 1, got %d", c.Survey.Jobs)
	}
	if len(c.Survey.Names) == 0 {
		return errors.New("survey.names must name at least one routine")
	}
	return nil
}
