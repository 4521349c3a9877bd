package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"

	"github.com/twpayne/go-earthengine"
)

func TestLoadConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	assert.NoError(t, os.WriteFile(configPath, []byte(`
project: file-project
collection: NASA/TEMPO/HCHO_L3
scale: 2000
bands:
  - vertical_column
timeout: 45s
logLevel: info
`), 0o666))

	for _, tc := range []struct {
		name     string
		path     string
		env      map[string]string
		expected Config
	}{
		{
			name:     "defaults",
			expected: DefaultConfig(),
		},
		{
			name: "file",
			path: configPath,
			expected: Config{
				Project:      "file-project",
				BaseURL:      earthengine.DefaultBaseURL,
				Collection:   "NASA/TEMPO/HCHO_L3",
				SortProperty: earthengine.DefaultSortProperty,
				Scale:        2000,
				MaxPixels:    earthengine.DefaultMaxPixels,
				Bands:        []string{"vertical_column"},
				CRS:          "EPSG:4326",
				Timeout:      45 * time.Second,
				LogLevel:     "info",
			},
		},
		{
			name: "env_overrides_file",
			path: configPath,
			env: map[string]string{
				"EARTHENGINE_PROJECT":    "env-project",
				"GOOGLE_CLOUD_PROJECT":   "gcloud-project",
				"EARTHENGINE_COLLECTION": "NASA/TEMPO/NO2_L3",
				"EARTHENGINE_TOKEN":      "token",
				"EARTHENGINE_LOG_LEVEL":  "debug",
			},
			expected: Config{
				Project:      "env-project",
				Token:        "token",
				BaseURL:      earthengine.DefaultBaseURL,
				Collection:   "NASA/TEMPO/NO2_L3",
				SortProperty: earthengine.DefaultSortProperty,
				Scale:        2000,
				MaxPixels:    earthengine.DefaultMaxPixels,
				Bands:        []string{"vertical_column"},
				CRS:          "EPSG:4326",
				Timeout:      45 * time.Second,
				LogLevel:     "debug",
			},
		},
		{
			name: "google_cloud_project",
			env: map[string]string{
				"GOOGLE_CLOUD_PROJECT": "gcloud-project",
			},
			expected: func() Config {
				config := DefaultConfig()
				config.Project = "gcloud-project"
				return config
			}(),
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			actual, err := LoadConfig(tc.path, testGetenv(tc.env))
			assert.NoError(t, err)
			assert.Equal(t, tc.expected, actual)
		})
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	invalidYAMLPath := filepath.Join(t.TempDir(), "invalid.yaml")
	assert.NoError(t, os.WriteFile(invalidYAMLPath, []byte("scale: [\n"), 0o666))

	for _, tc := range []struct {
		name string
		path string
		env  map[string]string
	}{
		{
			name: "missing_file",
			path: filepath.Join(t.TempDir(), "missing.yaml"),
		},
		{
			name: "invalid_yaml",
			path: invalidYAMLPath,
		},
		{
			name: "invalid_log_level",
			env: map[string]string{
				"EARTHENGINE_LOG_LEVEL": "loud",
			},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadConfig(tc.path, testGetenv(tc.env))
			assert.Error(t, err)
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	for _, tc := range []struct {
		s           string
		expected    string
		expectedErr bool
	}{
		{s: "debug", expected: "DEBUG"},
		{s: "INFO", expected: "INFO"},
		{s: " warning ", expected: "WARN"},
		{s: "error", expected: "ERROR"},
		{s: "trace", expectedErr: true},
	} {
		t.Run(tc.s, func(t *testing.T) {
			actual, err := parseLogLevel(tc.s)
			if tc.expectedErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.expected, actual.String())
		})
	}
}
