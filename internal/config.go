package internal

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/hbomb79/Siphon/internal/api/gateway"
	"github.com/hbomb79/Siphon/internal/database"
	"github.com/hbomb79/Siphon/internal/ffmpeg"
	"github.com/hbomb79/Siphon/internal/tools"
	"github.com/hbomb79/Siphon/internal/youtube"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/mitchellh/go-homedir"
)

// SiphonConfig is the struct used to contain the
// various user config supplied by file, or
// environment variables.
type SiphonConfig struct {
	// Environment selects the deployment mode. A development deployment
	// lowers the minimum logging level to DEBUG.
	Environment string `yaml:"environment" env:"SIPHON_ENV" env-default:"development" validate:"oneof=development production"`

	API      gateway.RestConfig      `yaml:"api"`
	Database database.DatabaseConfig `yaml:"database"`
	Download youtube.DownloadConfig  `yaml:"download"`
	Tools    tools.CheckConfig       `yaml:"tools"`
	Probe    ffmpeg.ProbeConfig      `yaml:"probe"`
}

func (config *SiphonConfig) IsDevelopment() bool {
	return config.Environment == "development"
}

// LoadFromFile reads the YAML configuration at the given path with any
// environment variables overlaid on top. A missing file is not an
// error; the environment alone is enough to configure Siphon.
func (config *SiphonConfig) LoadFromFile(configPath string) error {
	if err := cleanenv.ReadConfig(configPath, config); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load configuration file %s: %w", configPath, err)
		}

		if err := cleanenv.ReadEnv(config); err != nil {
			return fmt.Errorf("failed to load configuration from environment: %w", err)
		}
	}

	if err := config.applyDefaults(); err != nil {
		return err
	}

	return config.validate()
}

// applyDefaults fills the path-like settings that depend on the host
// environment: downloads land under the user's home directory and the
// database file sits alongside them unless configured otherwise.
func (config *SiphonConfig) applyDefaults() error {
	if config.Download.OutputDir == "" {
		home, err := homedir.Dir()
		if err != nil {
			return fmt.Errorf("failed to derive home directory for default download dir: %w", err)
		}

		config.Download.OutputDir = filepath.Join(home, "siphon", "downloads")
	}

	if config.Database.Path == "" {
		config.Database.Path = filepath.Join(config.Download.OutputDir, "siphon.db")
	}

	return nil
}

func (config *SiphonConfig) validate() error {
	if err := validator.New().Struct(config); err != nil {
		return fmt.Errorf("configuration invalid: %w", err)
	}

	return nil
}
