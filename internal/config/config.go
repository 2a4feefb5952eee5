// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package config loads the logsim command configuration from a YAML file
// and LOGSIM_* environment variables.
//
package config

import (
	"log/slog"
	"os"
	"strings"

	"github.com/db47h/logsim"
	"github.com/db47h/logsim/internal/logging"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config is the command configuration.
//
type Config struct {
	Listen           string   `mapstructure:"listen"`
	LogLevel         string   `mapstructure:"log_level"`
	MaxCompileInputs int      `mapstructure:"max_compile_inputs"`
	Workers          int      `mapstructure:"workers"`
	Library          []string `mapstructure:"library"` // HDL files loaded at startup
	Redis            Redis    `mapstructure:"redis"`
}

// Redis configures the preset store. An empty Addr selects an in-memory
// store.
//
type Redis struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

// Default returns the default configuration.
//
func Default() *Config {
	return &Config{
		Listen:           ":8080",
		LogLevel:         "info",
		MaxCompileInputs: logsim.DefaultMaxCompileInputs,
		Redis:            Redis{Prefix: "logsim"},
	}
}

// environment variables and the configuration keys they override.
var envKeys = []struct {
	env  string
	path []string
}{
	{"LOGSIM_LISTEN", []string{"listen"}},
	{"LOGSIM_LOG_LEVEL", []string{"log_level"}},
	{"LOGSIM_MAX_COMPILE_INPUTS", []string{"max_compile_inputs"}},
	{"LOGSIM_WORKERS", []string{"workers"}},
	{"LOGSIM_REDIS_ADDR", []string{"redis", "addr"}},
	{"LOGSIM_REDIS_PASSWORD", []string{"redis", "password"}},
	{"LOGSIM_REDIS_DB", []string{"redis", "db"}},
	{"LOGSIM_REDIS_PREFIX", []string{"redis", "prefix"}},
}

// Load reads the configuration file at path, if not empty, applies
// environment overrides on top of it and validates the result.
//
func Load(path string) (*Config, error) {
	var data []byte
	if path != "" {
		var err error
		if data, err = os.ReadFile(path); err != nil {
			return nil, errors.Wrap(err, "read config")
		}
	}
	return Parse(data, os.LookupEnv)
}

// Parse decodes a YAML configuration, applies the environment overrides found
// with lookup and validates the result. Keys missing from both keep their
// default value.
//
func Parse(data []byte, lookup func(string) (string, bool)) (*Config, error) {
	raw := make(map[string]interface{})
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, "parse config")
	}
	for _, k := range envKeys {
		v, ok := lookup(k.env)
		if !ok {
			continue
		}
		m := raw
		for _, p := range k.path[:len(k.path)-1] {
			sub, ok := m[p].(map[string]interface{})
			if !ok {
				sub = make(map[string]interface{})
				m[p] = sub
			}
			m = sub
		}
		m[k.path[len(k.path)-1]] = v
	}

	cfg := Default()
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           cfg,
	})
	if err != nil {
		return nil, errors.Wrap(err, "config decoder")
	}
	if err = dec.Decode(raw); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}
	if err = cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges.
//
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Listen) == "" {
		return errors.New("config: empty listen address")
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return errors.Wrap(err, "config")
	}
	if c.MaxCompileInputs < 0 || c.MaxCompileInputs > logsim.HardMaxCompileInputs {
		return errors.Errorf("config: max_compile_inputs %d out of range [0, %d]", c.MaxCompileInputs, logsim.HardMaxCompileInputs)
	}
	if c.Workers < 0 {
		return errors.Errorf("config: negative workers count %d", c.Workers)
	}
	if c.Redis.DB < 0 {
		return errors.Errorf("config: negative redis db %d", c.Redis.DB)
	}
	return nil
}

// Level returns the configured log level.
//
func (c *Config) Level() slog.Level {
	l, _ := logging.ParseLevel(c.LogLevel)
	return l
}

// Options returns the simulator options matching c.
//
func (c *Config) Options(log *slog.Logger, m *logsim.Metrics) []logsim.Option {
	return []logsim.Option{
		logsim.WithLogger(log),
		logsim.WithMetrics(m),
		logsim.WithMaxCompileInputs(c.MaxCompileInputs),
		logsim.WithWorkers(c.Workers),
	}
}
