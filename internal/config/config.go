package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gobwas/glob"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const configFileName = "config.yaml"

// Config represents the classlens configuration.
type Config struct {
	DebounceMS int           `yaml:"debounce_ms" mapstructure:"debounce_ms"`
	Exclude    []string      `yaml:"exclude" mapstructure:"exclude"`
	GutterIcon string        `yaml:"gutter_icon" mapstructure:"gutter_icon"`
	History    HistoryConfig `yaml:"history" mapstructure:"history"`
	Lens       LensConfig    `yaml:"lens" mapstructure:"lens"`
	Panel      PanelConfig   `yaml:"panel" mapstructure:"panel"`
}

// HistoryConfig controls recording of "Show Testable Methods" runs.
type HistoryConfig struct {
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
}

// LensConfig holds the user-visible marker strings.
type LensConfig struct {
	Hover string `yaml:"hover" mapstructure:"hover"`
	Title string `yaml:"title" mapstructure:"title"`
}

// PanelConfig holds the results panel settings.
type PanelConfig struct {
	Title string `yaml:"title" mapstructure:"title"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		DebounceMS: 200,
		Exclude:    []string{"**/build/**", "**/target/**", "**/.git/**"},
		GutterIcon: "resources/logo.png",
		History:    HistoryConfig{Enabled: true},
		Lens: LensConfig{
			Hover: "Click to show options",
			Title: "Show Options",
		},
		Panel: PanelConfig{Title: "Testable Methods"},
	}
}

// Debounce returns the watch debounce as a duration.
func (c *Config) Debounce() time.Duration {
	return time.Duration(c.DebounceMS) * time.Millisecond
}

// ConfigPath returns the path to the config file in the classlens directory.
func ConfigPath(stateDir string) string {
	return filepath.Join(stateDir, configFileName)
}

// Save writes the configuration to disk.
func Save(cfg *Config, stateDir string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(stateDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(ConfigPath(stateDir), data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Load reads the configuration with the following priority (highest first):
// environment variables (CLASSLENS_*), the config file, built-in defaults.
// A missing config file is not an error.
func Load(stateDir string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(stateDir)

	v.SetEnvPrefix("CLASSLENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("debounce_ms", d.DebounceMS)
	v.SetDefault("exclude", d.Exclude)
	v.SetDefault("gutter_icon", d.GutterIcon)
	v.SetDefault("history.enabled", d.History.Enabled)
	v.SetDefault("lens.hover", d.Lens.Hover)
	v.SetDefault("lens.title", d.Lens.Title)
	v.SetDefault("panel.title", d.Panel.Title)
}

// Validate checks the configuration for values the tool cannot use.
func Validate(cfg *Config) error {
	if cfg.DebounceMS < 0 {
		return fmt.Errorf("debounce_ms must be >= 0, got %d", cfg.DebounceMS)
	}
	for _, pattern := range cfg.Exclude {
		if _, err := glob.Compile(pattern, '/'); err != nil {
			return fmt.Errorf("invalid exclude pattern %q: %w", pattern, err)
		}
	}
	return nil
}
