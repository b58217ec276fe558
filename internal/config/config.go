package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/skoglund/timegrid/internal/date"
)

type Config struct {
	Server        ServerConfig   `toml:"server"`
	Week          WeekConfig     `toml:"week"`
	Holidays      HolidaysConfig `toml:"holidays"`
	Notifications NotifyConfig   `toml:"notifications"`
}

type ServerConfig struct {
	BaseURL string `toml:"base_url"`
	APIKey  string `toml:"api_key"`
}

type WeekConfig struct {
	StartOfWeek    string  `toml:"start_of_week"` // "monday" or "sunday"
	SaturdayOff    bool    `toml:"saturday_off"`
	DailyGoalHours float64 `toml:"daily_goal_hours"`
}

type HolidaysConfig struct {
	Source string `toml:"source"` // ICS URL or file path
}

type NotifyConfig struct {
	Enabled bool `toml:"enabled"`
}

func DefaultConfig() Config {
	return Config{
		Week: WeekConfig{
			StartOfWeek:    "monday",
			SaturdayOff:    true,
			DailyGoalHours: 8,
		},
		Notifications: NotifyConfig{
			Enabled: true,
		},
	}
}

// StartOfWeek maps the configured week start to the date package's enum.
// Anything other than "sunday" means Monday.
func (c *Config) StartOfWeek() date.StartOfWeek {
	if c.Week.StartOfWeek == "sunday" {
		return date.StartSunday
	}
	return date.StartMonday
}

func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("finding home directory: %w", err)
	}
	return filepath.Join(home, ".config", "timegrid"), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	return loadFrom(path)
}

func loadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := DefaultConfig()
			applyEnvOverrides(&cfg)
			return &cfg, nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("TIMEGRID_API_KEY"); v != "" {
		cfg.Server.APIKey = v
	}
	if v := os.Getenv("TIMEGRID_BASE_URL"); v != "" {
		cfg.Server.BaseURL = v
	}
	if v := os.Getenv("TIMEGRID_HOLIDAYS"); v != "" {
		cfg.Holidays.Source = v
	}
}

func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// SaveHolidaySource persists the holiday calendar source to the config file
// using a read-modify-write approach to preserve other settings.
func SaveHolidaySource(source string) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}

	cfg := make(map[string]any)

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("reading config: %w", err)
	}
	if len(data) > 0 {
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return fmt.Errorf("parsing config: %w", err)
		}
	}

	hol, ok := cfg["holidays"].(map[string]any)
	if !ok {
		hol = make(map[string]any)
	}
	hol["source"] = source
	cfg["holidays"] = hol

	if err := EnsureConfigDir(); err != nil {
		return err
	}

	out, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, out, 0644)
}
