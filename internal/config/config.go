package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds the manager's settings. All fields have working
// defaults; a missing config file is not an error.
type Config struct {
	// BorderWidth is the border applied to every managed window, in
	// pixels. Frame extents are published from this value.
	BorderWidth int `yaml:"border_width"`

	// Name is published as _NET_WM_NAME on the supporting-check window.
	Name string `yaml:"name"`

	// Autostart is a script spawned once at startup, fire-and-forget.
	// An empty value or a missing script disables it.
	Autostart string `yaml:"autostart"`
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() *Config {
	return &Config{
		BorderWidth: 1,
		Name:        "stackwm",
		Autostart:   "",
	}
}

// DefaultConfigPath returns the standard config file location.
func DefaultConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "stackwm", "config.yaml"), nil
}

// Load reads the configuration from the standard location. A missing
// file yields the defaults; a malformed file is an error.
func Load() (*Config, error) {
	path, err := DefaultConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath reads the configuration from an explicit path.
func LoadFromPath(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			if cfg.Autostart == "" {
				cfg.Autostart = defaultAutostart(path)
			}
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if cfg.Autostart == "" {
		cfg.Autostart = defaultAutostart(path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the configuration for values the manager cannot run with.
func (c *Config) Validate() error {
	if c.BorderWidth < 0 {
		return fmt.Errorf("border_width must be >= 0, got %d", c.BorderWidth)
	}
	if c.Name == "" {
		return fmt.Errorf("name must not be empty")
	}
	return nil
}

// defaultAutostart places the autostart script next to the config file.
func defaultAutostart(configPath string) string {
	return filepath.Join(filepath.Dir(configPath), "autostart.sh")
}
