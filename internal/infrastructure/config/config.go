package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"nettune/internal/domain/constants"
	"nettune/internal/domain/entities"
	"nettune/internal/domain/errors"
)

// Config is an immutable value holding everything one invocation needs
type Config struct {
	Action    entities.Action
	Profile   entities.ProfileName
	Interface string
	// MTU is 0 when the caller did not request a change
	MTU     int
	Verbose bool
	Output  string
	Paths   PathConfig
	Runtime RuntimeConfig
}

// PathConfig holds the locations of files the tool owns
type PathConfig struct {
	// Root is prepended to every owned path (used for staging and tests)
	Root          string
	SysctlConfig  string
	ModulesConfig string
	UnitDir       string
	InstallPath   string
	BackupDir     string
	ProfileDir    string
	LogFile       string
}

// RuntimeConfig holds execution settings
type RuntimeConfig struct {
	LogLevel        string
	CommandTimeout  time.Duration
	MetricsTextfile string
}

// Output formats
const (
	OutputText = "text"
	OutputYAML = "yaml"
)

// ConfigLoader is an interface for loading configuration
type ConfigLoader interface {
	Load() (*Config, error)
}

func loadFromEnvironment() *Config {
	return &Config{
		Action:    entities.ActionDryRun,
		Profile:   entities.ProfileName(getEnvOrDefault("NETTUNE_PROFILE", constants.DefaultProfile)),
		Interface: getEnvOrDefault("NETTUNE_INTERFACE", ""),
		MTU:       getEnvIntOrDefault("NETTUNE_MTU", 0),
		Output:    getEnvOrDefault("NETTUNE_OUTPUT", OutputText),
		Paths: PathConfig{
			Root:          getEnvOrDefault("NETTUNE_ROOT", ""),
			SysctlConfig:  constants.SysctlConfigPath,
			ModulesConfig: constants.ModulesConfigPath,
			UnitDir:       constants.SystemdUnitDir,
			InstallPath:   getEnvOrDefault("NETTUNE_INSTALL_PATH", constants.DefaultInstallPath),
			BackupDir:     getEnvOrDefault("NETTUNE_BACKUP_DIR", constants.DefaultBackupDir),
			ProfileDir:    getEnvOrDefault("NETTUNE_PROFILE_DIR", constants.DefaultProfileDir),
			LogFile:       getEnvOrDefault("NETTUNE_LOG_FILE", constants.DefaultLogFile),
		},
		Runtime: RuntimeConfig{
			LogLevel:        getEnvOrDefault("LOG_LEVEL", constants.DefaultLogLevel),
			CommandTimeout:  getEnvDurationOrDefault("NETTUNE_COMMAND_TIMEOUT", constants.DefaultCommandTimeout*time.Second),
			MetricsTextfile: getEnvOrDefault("NETTUNE_METRICS_TEXTFILE", ""),
		},
	}
}

// Validate validates the configuration and normalizes the profile name
func Validate(config *Config) error {
	profile, err := entities.ParseProfileName(string(config.Profile))
	if err != nil {
		return errors.NewValidationError(fmt.Sprintf("unknown profile %q (latency, balanced, throughput)", config.Profile), err)
	}
	config.Profile = profile
	if config.Interface != "" {
		if _, err := entities.NewInterfaceName(config.Interface); err != nil {
			return errors.NewValidationError(fmt.Sprintf("invalid interface name %q", config.Interface), err)
		}
	}
	// MTU 범위는 여기서 거부하지 않고 프로파일 해석 단계에서 경고로 보고됩니다
	if config.Output != OutputText && config.Output != OutputYAML {
		return errors.NewValidationError(fmt.Sprintf("invalid output format %q", config.Output), nil)
	}
	if config.Runtime.CommandTimeout <= 0 {
		return errors.NewValidationError("invalid command timeout", nil)
	}
	if config.Paths.BackupDir == "" {
		return errors.NewValidationError("backup directory not configured", nil)
	}
	return nil
}

// Rooted returns path joined under Paths.Root
func (c *Config) Rooted(path string) string {
	if c.Paths.Root == "" || path == "" {
		return path
	}
	return filepath.Join(c.Paths.Root, path)
}

// Environment variable helper functions

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
