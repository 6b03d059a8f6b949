// Package config loads the settings shared by the conform CLI: geometric
// tolerances, logging and mesh output.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/chazu/conformal/pkg/geom"
	"github.com/chazu/conformal/pkg/logging"
)

// Environment variables that override the file.
const (
	EnvLogLevel  = "CONFORM_LOG_LEVEL"
	EnvLogFormat = "CONFORM_LOG_FORMAT"
)

// Config is the on-disk configuration.
type Config struct {
	Tolerances geom.Tolerances `yaml:"tolerances"`
	Log        Log             `yaml:"log"`
	Mesh       Mesh            `yaml:"mesh"`
}

// Log selects logger level and format.
type Log struct {
	Level  string `yaml:"level" validate:"omitempty,oneof=debug info warn warning error"`
	Format string `yaml:"format" validate:"omitempty,oneof=text json"`
}

// Mesh controls tessellation of conformed cuboids.
type Mesh struct {
	// Cells is the marching cubes resolution along the longest axis.
	Cells int `yaml:"cells" validate:"gte=8,lte=1024"`
}

// Default returns the stock configuration.
func Default() Config {
	return Config{
		Tolerances: geom.DefaultTolerances(),
		Log:        Log{Level: "info", Format: logging.FormatText},
		Mesh:       Mesh{Cells: 64},
	}
}

// Load reads path over the defaults and applies environment overrides.
// An empty path or a missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		}
	}
	cfg.Log.Level = getEnv(EnvLogLevel, cfg.Log.Level)
	cfg.Log.Format = getEnv(EnvLogFormat, cfg.Log.Format)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

var validate = validator.New()

// Validate checks every field against its constraints.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Logging converts the log section for logging.New.
func (c Config) Logging() logging.Config {
	return logging.Config{Level: c.Log.Level, Format: c.Log.Format, Service: "conform"}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
