package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jgoulah/powerchart/pkg/models"
	"gopkg.in/yaml.v3"
)

// Display modes for the rendered chart
const (
	DisplayChrome = "chrome"
	DisplaySystem = "system"
	DisplayNone   = "none"
)

// Config holds the application configuration
type Config struct {
	InputDir      string     `yaml:"input_dir"`
	OutputDir     string     `yaml:"output_dir"`
	FileName      string     `yaml:"file_name"`
	DateGrouping  string     `yaml:"date_grouping"`          // D -> Day, M -> Month, Y -> Year
	LabelDecimals int        `yaml:"label_decimals"`         // Decimal places on bar labels
	ImageFormat   string     `yaml:"image_format,omitempty"` // png, svg, pdf, jpg
	ChartWidth    float64    `yaml:"chart_width,omitempty"`  // Inches
	ChartHeight   float64    `yaml:"chart_height,omitempty"` // Inches
	Display       string     `yaml:"display,omitempty"`      // chrome, system or none
	MQTT          MQTTConfig `yaml:"mqtt,omitempty"`
}

// MQTTConfig holds MQTT broker settings for publishing bucket totals
type MQTTConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Broker      string `yaml:"broker"`                 // host:port
	Username    string `yaml:"username,omitempty"`
	Password    string `yaml:"password,omitempty"`
	TopicPrefix string `yaml:"topic_prefix,omitempty"` // Default: power_usage
	ClientID    string `yaml:"client_id,omitempty"`    // Default: powerchart
}

// Default returns the compiled-in configuration
func Default() *Config {
	return &Config{
		InputDir:      "./input/",
		OutputDir:     "./output/",
		FileName:      "input.csv",
		DateGrouping:  "D",
		LabelDecimals: 1,
		ImageFormat:   "png",
		ChartWidth:    10,
		ChartHeight:   6,
		Display:       DisplayChrome,
	}
}

// Load reads the config file on top of the defaults
func Load(configPath string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			// Defaults apply when there is no file
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	return cfg, nil
}

// Save writes the config to file
func Save(configPath string, cfg *Config) error {
	// Ensure directory exists
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// DefaultConfigPath returns the default config file path (local directory)
func DefaultConfigPath() string {
	return "config.yaml"
}

// Granularity returns the configured default grouping
func (c *Config) Granularity() models.Granularity {
	return models.ParseGranularity(c.DateGrouping)
}

// GetLabelDecimals returns the number of decimals on bar labels, never negative
func (c *Config) GetLabelDecimals() int {
	if c.LabelDecimals < 0 {
		return 0
	}
	return c.LabelDecimals
}

// GetImageFormat returns the chart image extension without the dot, default png
func (c *Config) GetImageFormat() string {
	format := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(c.ImageFormat)), ".")
	switch format {
	case "png", "svg", "pdf", "jpg", "jpeg", "tif", "tiff", "eps":
		return format
	default:
		return "png"
	}
}

// GetChartSize returns the chart width and height in inches with a 10x6 fallback
func (c *Config) GetChartSize() (float64, float64) {
	w, h := c.ChartWidth, c.ChartHeight
	if w <= 0 {
		w = 10
	}
	if h <= 0 {
		h = 6
	}
	return w, h
}

// GetDisplay returns the display mode, default chrome
func (c *Config) GetDisplay() string {
	switch strings.ToLower(strings.TrimSpace(c.Display)) {
	case DisplaySystem:
		return DisplaySystem
	case DisplayNone:
		return DisplayNone
	default:
		return DisplayChrome
	}
}

// GetTopicPrefix returns the MQTT topic prefix, default power_usage
func (m MQTTConfig) GetTopicPrefix() string {
	if m.TopicPrefix == "" {
		return "power_usage"
	}
	return strings.TrimSuffix(m.TopicPrefix, "/")
}

// GetClientID returns the MQTT client id, default powerchart
func (m MQTTConfig) GetClientID() string {
	if m.ClientID == "" {
		return "powerchart"
	}
	return m.ClientID
}
