// Copyright 2024 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/viper"
	"github.com/stratastor/logger"
	"github.com/stratastor/strata-csi/internal/constants"
	"github.com/stratastor/strata-csi/pkg/csiconfig"
	"github.com/stratastor/strata-csi/pkg/errors"
	"gopkg.in/yaml.v3"
)

var (
	instance   *Config
	once       sync.Once
	configPath string // Tracks where the config was loaded from
)

type Config struct {
	Server struct {
		Endpoint  string `mapstructure:"endpoint"  yaml:"endpoint"`
		HTTPPort  int    `mapstructure:"httpPort"  yaml:"httpPort"`
		LogLevel  string `mapstructure:"logLevel"  yaml:"logLevel"`
		Daemonize bool   `mapstructure:"daemonize" yaml:"daemonize"`
	} `mapstructure:"server" yaml:"server"`

	Driver struct {
		Name     string `mapstructure:"name"     yaml:"name"`
		SystemID string `mapstructure:"systemID" yaml:"systemID"` // embedded in object ids when set
	} `mapstructure:"driver" yaml:"driver"`

	Health struct {
		Interval string `mapstructure:"interval" yaml:"interval"`
		Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`
	} `mapstructure:"health" yaml:"health"`

	Logs struct {
		Path      string `mapstructure:"path"      yaml:"path"`
		Retention string `mapstructure:"retention" yaml:"retention"`
		Output    string `mapstructure:"output"    yaml:"output"` // stdout or file
	} `mapstructure:"logs" yaml:"logs"`

	Logger struct {
		LogLevel     string `mapstructure:"logLevel"     yaml:"logLevel"`
		EnableSentry bool   `mapstructure:"enableSentry" yaml:"enableSentry"`
		SentryDSN    string `mapstructure:"sentryDSN"    yaml:"sentryDSN"`
	} `mapstructure:"logger" yaml:"logger"`

	Environment string `mapstructure:"environment" yaml:"environment"`
}

// Validate checks the values the server cannot start without.
func (c *Config) Validate() error {
	if c.Server.Endpoint == "" {
		return errors.New(errors.ConfigValidationFailed, "server.endpoint is empty")
	}
	if c.Server.HTTPPort < 0 || c.Server.HTTPPort > 65535 {
		return errors.New(errors.ConfigValidationFailed, fmt.Sprintf("server.httpPort %d out of range", c.Server.HTTPPort))
	}
	if c.Driver.Name == "" {
		return errors.New(errors.ConfigValidationFailed, "driver.name is empty")
	}
	if id := c.Driver.SystemID; id != "" {
		if len(id) > csiconfig.SecretSystemIDMaxLength || !csiconfig.IsValidSecretValue(id) {
			return errors.New(errors.ConfigValidationFailed, "driver.systemID is not a valid identifier").
				WithMetadata("system_id", id)
		}
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "dev")
	v.SetDefault("server.endpoint", constants.DefaultCSIEndpoint)
	v.SetDefault("server.httpPort", constants.DefaultHTTPPort)
	v.SetDefault("server.logLevel", "debug")
	v.SetDefault("server.daemonize", false)
	v.SetDefault("driver.name", constants.DriverName)
	v.SetDefault("driver.systemID", "")
	v.SetDefault("health.interval", "30s")
	v.SetDefault("health.endpoint", constants.HealthPath)
	v.SetDefault("logs.path", "/var/log/strata-csi/strata-csi.log")
	v.SetDefault("logs.retention", "7d")
	v.SetDefault("logs.output", "stdout")
	v.SetDefault("logger.logLevel", "debug")
	v.SetDefault("logger.enableSentry", false)
	v.SetDefault("logger.sentryDSN", "")
}

// readConfig builds a Config from defaults, the file at path and the
// environment. A missing file is not an error; found reports whether it existed.
func readConfig(v *viper.Viper, path string) (cfg *Config, found bool, err error) {
	v.SetConfigType("yaml")
	v.SetConfigFile(path)
	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvPrefix(constants.ConfigEnvPref)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	found = true
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !stderrors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, false, errors.Wrap(err, errors.ConfigLoadFailed).WithMetadata("path", path)
		}
		found = false
	}

	cfg = &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, found, errors.Wrap(err, errors.ConfigInvalid).WithMetadata("path", path)
	}
	return cfg, found, nil
}

// LoadConfig loads the configuration with precedence rules.
func LoadConfig(configFilePath string) *Config {
	once.Do(func() {
		// Setup basic logger for initialization
		l, err := logger.NewTag(NewLoggerConfig(nil), "config")
		if err != nil {
			fmt.Printf("Failed to create logger: %v\n", err)
			os.Exit(1)
		}

		// Reset viper to avoid any potential carryover
		viper.Reset()

		systemConfigPath := filepath.Join(GetConfigDir(), constants.ConfigFileName)
		switch {
		case configFilePath != "":
			configPath = configFilePath
		case os.Getenv(constants.ConfigEnvVar) != "":
			configPath = os.Getenv(constants.ConfigEnvVar)
		default:
			configPath = systemConfigPath
		}
		if absPath, err := filepath.Abs(configPath); err == nil {
			configPath = absPath
		}
		l.Info("Using config file", "path", configPath)

		cfg, found, err := readConfig(viper.GetViper(), configPath)
		if err != nil {
			l.Error("Error reading config file, using defaults", "err", err)
			cfg = &Config{}
			_ = viper.Unmarshal(cfg)
		}
		instance = cfg

		if err == nil && !found {
			l.Info("Config file not found, creating default at system path", "path", systemConfigPath)
			if err := SaveConfig(systemConfigPath); err != nil {
				l.Error("Failed to save default configuration", "err", err)
			}
		}

		if err := instance.Validate(); err != nil {
			l.Warn("Configuration is not valid", "err", err)
		}
		l.Debug("Loaded configuration", "config", fmt.Sprintf("%+v", *instance))
	})

	return instance
}

// SaveConfig persists the current configuration to a specified path.
func SaveConfig(path string) error {
	if path == "" {
		path = filepath.Join(GetConfigDir(), constants.ConfigFileName)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(err, errors.ConfigWriteFailed).WithMetadata("path", path)
	}

	configYAML, err := yaml.Marshal(instance)
	if err != nil {
		return errors.Wrap(err, errors.ConfigWriteFailed)
	}

	if err := os.WriteFile(path, configYAML, 0644); err != nil {
		return errors.Wrap(err, errors.ConfigWriteFailed).WithMetadata("path", path)
	}

	configPath = path
	return nil
}

// GetLoadedConfigPath returns the path of the currently loaded configuration file.
func GetLoadedConfigPath() string {
	return configPath
}

// GetConfig returns the current configuration instance.
func GetConfig() *Config {
	if instance == nil {
		return LoadConfig("")
	}
	return instance
}

func NewLoggerConfig(cfg *Config) logger.Config {
	if cfg == nil {
		return logger.Config{
			LogLevel:     "info",
			EnableSentry: false,
			SentryDSN:    "",
		}
	}

	return logger.Config{
		LogLevel:     cfg.Logger.LogLevel,
		EnableSentry: cfg.Logger.EnableSentry,
		SentryDSN:    cfg.Logger.SentryDSN,
	}
}
