package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Settings holds all configuration options.
type Settings struct {
	// DownloadsPath is the destination root; files land under
	// <DownloadsPath>/<item identifier>/.
	DownloadsPath string `yaml:"downloads_path"`

	// WantedTypes filters datasets by type or name, case-insensitively.
	WantedTypes []string `yaml:"wanted_types"`

	// MaxRelationDepth bounds the described-by-document relation walk.
	MaxRelationDepth int `yaml:"max_relation_depth"`

	// MaxConcurrentItems is the number of identifiers processed in
	// parallel. Values above 1 require one authenticated session per
	// worker.
	MaxConcurrentItems int `yaml:"max_concurrent_items"`

	// RevisionRule is the server-side rule that selects the latest
	// revision, e.g. "Latest Released". Empty uses the server default.
	RevisionRule string `yaml:"revision_rule"`

	// GatewayURL is the base URL of the repository gateway the binaries
	// connect through.
	GatewayURL string `yaml:"gateway_url"`

	// RequestTimeoutSeconds bounds each remote call made by the gateway
	// client.
	RequestTimeoutSeconds int `yaml:"request_timeout_seconds"`

	// LogFile, when set, mirrors every progress line to a file.
	LogFile string `yaml:"log_file"`

	// Verbose enables verbose progress output in the front ends.
	Verbose bool `yaml:"verbose"`
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	homeDir, _ := os.UserHomeDir()
	return &Settings{
		DownloadsPath:         filepath.Join(homeDir, "Downloads", "drawings"),
		WantedTypes:           []string{"pdf", "excel"},
		MaxRelationDepth:      3,
		MaxConcurrentItems:    1,
		RevisionRule:          "Latest Released",
		RequestTimeoutSeconds: 60,
	}
}

// DefaultPath returns the default settings file location.
func DefaultPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".config", "drawing-downloader", "config.yaml")
}

// Load reads settings from a YAML file. A missing file is not an error;
// defaults are returned instead.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSettings(), nil
		}
		return nil, err
	}

	settings := DefaultSettings()
	if err := yaml.Unmarshal(data, settings); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return settings, settings.Validate()
}

// Save writes settings to a YAML file, creating parent directories as
// needed.
func (s *Settings) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(s)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Validate checks the settings for values the pipeline cannot work with.
func (s *Settings) Validate() error {
	if s.DownloadsPath == "" {
		return fmt.Errorf("downloads_path must not be empty")
	}
	if s.MaxRelationDepth < 1 {
		return fmt.Errorf("max_relation_depth must be at least 1, got %d", s.MaxRelationDepth)
	}
	if s.MaxConcurrentItems < 1 {
		return fmt.Errorf("max_concurrent_items must be at least 1, got %d", s.MaxConcurrentItems)
	}
	return nil
}
