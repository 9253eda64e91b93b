package sensors

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ZamarianPatrick/lazypig-barometer/sensors/bmp180"
	"gopkg.in/yaml.v2"
)

type StationSettings struct {
	Bus  string `yaml:"bus"`
	Mode uint8  `yaml:"mode"`
	Fake bool   `yaml:"fake"`

	PollInterval     time.Duration `yaml:"pollInterval"`
	SeaLevelPressure float64       `yaml:"seaLevelPressure"`

	Listen   string `yaml:"listen"`
	Database string `yaml:"database"`
	LogLevel string `yaml:"logLevel"`
}

var (
	DefaultStationSettings = StationSettings{
		Bus:              "1",
		Mode:             uint8(DefaultMode),
		Fake:             false,
		PollInterval:     time.Second,
		SeaLevelPressure: SeaLevelPressure,
		Listen:           ":8080",
		Database:         "file::memory:?cache=shared",
		LogLevel:         "info",
	}
)

// LoadSettings reads the settings file at path. A missing file is created
// with DefaultStationSettings.
func LoadSettings(path string) (StationSettings, error) {
	var settings StationSettings

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		settings = DefaultStationSettings
		data, err := yaml.Marshal(settings)
		if err != nil {
			return settings, err
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return settings, err
		}
		return settings, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return settings, err
	}
	settings = DefaultStationSettings
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return settings, fmt.Errorf("parse %s: %w", path, err)
	}
	return settings, settings.Validate()
}

func (s StationSettings) Validate() error {
	if !bmp180.Mode(s.Mode).Valid() {
		return fmt.Errorf("%w: mode %d", bmp180.ErrInvalidParameter, s.Mode)
	}
	if s.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %s", s.PollInterval)
	}
	return nil
}
