package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Option customizes Load.
type Option func(*loadOptions)

type loadOptions struct {
	configPath string
	envLookup  EnvLookup
	readFile   func(string) ([]byte, error)
	homeDir    func() (string, error)
}

// WithPath loads from path instead of the resolved default location.
func WithPath(path string) Option {
	return func(o *loadOptions) { o.configPath = path }
}

// WithEnvLookup replaces the environment used for ${VAR} interpolation.
func WithEnvLookup(lookup EnvLookup) Option {
	return func(o *loadOptions) { o.envLookup = lookup }
}

// WithReadFile replaces the file reader, for tests.
func WithReadFile(read func(string) ([]byte, error)) Option {
	return func(o *loadOptions) { o.readFile = read }
}

// WithHomeDir replaces the home directory resolver, for tests.
func WithHomeDir(home func() (string, error)) Option {
	return func(o *loadOptions) { o.homeDir = home }
}

// Load reads the YAML config file over Default and returns the merged result
// and the path it came from. A missing file yields the defaults.
func Load(opts ...Option) (Config, string, error) {
	options := loadOptions{
		envLookup: DefaultEnvLookup,
		readFile:  os.ReadFile,
		homeDir:   os.UserHomeDir,
	}
	for _, opt := range opts {
		opt(&options)
	}

	cfg := Default()
	configPath := strings.TrimSpace(options.configPath)
	if configPath == "" {
		configPath, _ = ResolveConfigPath(options.envLookup, options.homeDir)
	}

	data, err := options.readFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, configPath, nil
		}
		return cfg, configPath, fmt.Errorf("read config file: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return cfg, configPath, nil
	}

	expanded := os.Expand(string(data), func(key string) string {
		if value, ok := options.envLookup(key); ok {
			return value
		}
		return ""
	})
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return Default(), configPath, fmt.Errorf("parse config file: %w", err)
	}
	cfg.Observability = cfg.Observability.Normalize()

	if err := cfg.Validate(); err != nil {
		return cfg, configPath, err
	}
	return cfg, configPath, nil
}
