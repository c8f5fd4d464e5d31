package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Serial    SerialConfig    `yaml:"serial"`
	Sampling  SamplingConfig  `yaml:"sampling"`
	Recording RecordingConfig `yaml:"recording"`
	Display   DisplayConfig   `yaml:"display"`
	Mock      MockConfig      `yaml:"mock"`
}

// SerialConfig contains serial port configuration.
type SerialConfig struct {
	Port       string `yaml:"port"`
	BaudRate   int    `yaml:"baud_rate"`
	BufferSize int    `yaml:"buffer_size"`
}

// SamplingConfig contains acquisition parameters.
type SamplingConfig struct {
	RateHz        float64       `yaml:"rate_hz"`        // Recording grid rate; incoming readings are averaged onto it
	FlushInterval time.Duration `yaml:"flush_interval"` // How often buffered readings are folded into the recording
	CaptureWindow int           `yaml:"capture_window"` // Readings averaged when capturing a calibration point
}

// RecordingConfig contains in-memory recording parameters.
type RecordingConfig struct {
	MaxSamples int `yaml:"max_samples"` // Oldest samples are dropped beyond this
}

// DisplayConfig contains presentation parameters.
type DisplayConfig struct {
	Unit      string `yaml:"unit"`       // "N", "kg" or "lbs"
	MaxPoints int    `yaml:"max_points"` // Plot decimation limit
}

// MockConfig contains mocked scale configuration.
type MockConfig struct {
	Baseline   float64       `yaml:"baseline"`    // Resting raw counts
	Noise      float64       `yaml:"noise"`       // Noise amplitude (raw counts)
	PullHeight float64       `yaml:"pull_height"` // Peak of the simulated pull (raw counts)
	PullPeriod time.Duration `yaml:"pull_period"` // Time between simulated pulls
	SampleRate time.Duration `yaml:"sample_rate"` // Interval between readings
}

// Default returns a default configuration with sensible values.
func Default() *Config {
	return &Config{
		Serial: SerialConfig{
			Port:       "COM3", // Default for Windows, should be "/dev/ttyACM0" on Linux/Mac
			BaudRate:   9600,
			BufferSize: 100,
		},
		Sampling: SamplingConfig{
			RateHz:        10,
			FlushInterval: 33 * time.Millisecond,
			CaptureWindow: 20,
		},
		Recording: RecordingConfig{
			MaxSamples: 100000,
		},
		Display: DisplayConfig{
			Unit:      "N",
			MaxPoints: 1000,
		},
		Mock: MockConfig{
			Baseline:   8400,
			Noise:      100,
			PullHeight: 52000,
			PullPeriod: 20 * time.Second,
			SampleRate: 12500 * time.Microsecond, // ~80 readings per second
		},
	}
}

// Load loads configuration from a YAML file. If the file doesn't exist or
// fields are missing, it uses default values.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			// File doesn't exist, return defaults
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Ensure minimum required fields are set (use defaults if missing)
	cfg.ensureDefaults()

	return cfg, nil
}

// Save saves the configuration to a YAML file.
func (c *Config) Save(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ensureDefaults ensures that all required fields have default values if missing.
func (c *Config) ensureDefaults() {
	def := Default()

	if c.Serial.Port == "" {
		c.Serial.Port = def.Serial.Port
	}
	if c.Serial.BaudRate == 0 {
		c.Serial.BaudRate = def.Serial.BaudRate
	}
	if c.Serial.BufferSize == 0 {
		c.Serial.BufferSize = def.Serial.BufferSize
	}

	if c.Sampling.RateHz == 0 {
		c.Sampling.RateHz = def.Sampling.RateHz
	}
	if c.Sampling.FlushInterval == 0 {
		c.Sampling.FlushInterval = def.Sampling.FlushInterval
	}
	if c.Sampling.CaptureWindow == 0 {
		c.Sampling.CaptureWindow = def.Sampling.CaptureWindow
	}

	if c.Recording.MaxSamples == 0 {
		c.Recording.MaxSamples = def.Recording.MaxSamples
	}

	if c.Display.Unit == "" {
		c.Display.Unit = def.Display.Unit
	}
	if c.Display.MaxPoints == 0 {
		c.Display.MaxPoints = def.Display.MaxPoints
	}

	if c.Mock.Baseline == 0 {
		c.Mock.Baseline = def.Mock.Baseline
	}
	if c.Mock.Noise == 0 {
		c.Mock.Noise = def.Mock.Noise
	}
	if c.Mock.PullHeight == 0 {
		c.Mock.PullHeight = def.Mock.PullHeight
	}
	if c.Mock.PullPeriod == 0 {
		c.Mock.PullPeriod = def.Mock.PullPeriod
	}
	if c.Mock.SampleRate == 0 {
		c.Mock.SampleRate = def.Mock.SampleRate
	}
}
