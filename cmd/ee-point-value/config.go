package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/twpayne/go-earthengine"
)

// A Config is the configuration of a single query.
type Config struct {
	Project      string        `yaml:"project"`
	Token        string        `yaml:"token"`
	BaseURL      string        `yaml:"baseURL"`
	Collection   string        `yaml:"collection"`
	SortProperty string        `yaml:"sortProperty"`
	Scale        float64       `yaml:"scale"`
	MaxPixels    float64       `yaml:"maxPixels"`
	Bands        []string      `yaml:"bands"`
	CRS          string        `yaml:"crs"`
	Timeout      time.Duration `yaml:"timeout"`
	LogLevel     string        `yaml:"logLevel"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		BaseURL:      earthengine.DefaultBaseURL,
		Collection:   earthengine.TEMPONO2Collection,
		SortProperty: earthengine.DefaultSortProperty,
		Scale:        earthengine.DefaultScale,
		MaxPixels:    earthengine.DefaultMaxPixels,
		CRS:          "EPSG:4326",
		LogLevel:     "warn",
	}
}

// LoadConfig returns the default configuration overridden by the YAML file
// at path, if path is not empty, and then by the environment.
func LoadConfig(path string, getenv func(string) string) (Config, error) {
	config := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, err
		}
		if err := yaml.Unmarshal(data, &config); err != nil {
			return Config{}, fmt.Errorf("%s: %w", path, err)
		}
	}

	for _, env := range []struct {
		keys  []string
		value *string
	}{
		{keys: []string{"EARTHENGINE_PROJECT", "GOOGLE_CLOUD_PROJECT"}, value: &config.Project},
		{keys: []string{"EARTHENGINE_TOKEN"}, value: &config.Token},
		{keys: []string{"EARTHENGINE_BASE_URL"}, value: &config.BaseURL},
		{keys: []string{"EARTHENGINE_COLLECTION"}, value: &config.Collection},
		{keys: []string{"EARTHENGINE_LOG_LEVEL"}, value: &config.LogLevel},
	} {
		for _, key := range env.keys {
			if value := strings.TrimSpace(getenv(key)); value != "" {
				*env.value = value
				break
			}
		}
	}

	if _, err := parseLogLevel(config.LogLevel); err != nil {
		return Config{}, err
	}

	return config, nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log level %q (allowed: debug, info, warn, error)", s)
	}
}
