// Package config provides configuration loading and management for the
// tiling pipeline. It handles loading configuration from YAML files and
// provides default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"panoptes/pkg/enhance"
)

// Config represents the application configuration loaded from YAML
type Config struct {
	// Tiling parameters
	Tiling struct {
		// TileSize is the nominal tile edge length in pixels
		TileSize int `yaml:"tileSize"`

		// GlobalMin and GlobalMax are the fixed normalization bounds
		// applied to every tile of every image in a run. They are
		// configuration on purpose: deriving them per image or per
		// tile would make tiles incomparable across the dataset.
		GlobalMin float64 `yaml:"globalMin"`
		GlobalMax float64 `yaml:"globalMax"`
	} `yaml:"tiling"`

	// Enhancement parameters for the grayscale preprocessing path
	Enhancement struct {
		// ApplyLogScale enables logarithmic dynamic-range compression
		ApplyLogScale bool `yaml:"applyLogScale"`

		// LogScale is the multiplier applied before log compression
		LogScale float64 `yaml:"logScale"`

		// ApplyClipping enables percentile intensity clipping
		ApplyClipping bool `yaml:"applyClipping"`

		// LowerPercentile and UpperPercentile bound the clip window
		LowerPercentile float64 `yaml:"lowerPercentile"`
		UpperPercentile float64 `yaml:"upperPercentile"`

		// ApplyCLAHE enables local contrast equalization
		ApplyCLAHE bool `yaml:"applyClahe"`

		// CLAHEClipLimit is the normalized clip limit for CLAHE;
		// higher values give more contrast
		CLAHEClipLimit float64 `yaml:"claheClipLimit"`
	} `yaml:"enhancement"`

	// Output parameters
	Output struct {
		// TilesDir is where tile artifacts and metadata records go
		TilesDir string `yaml:"tilesDir"`

		// ReconstructedDir is where reconstructed images go
		ReconstructedDir string `yaml:"reconstructedDir"`

		// EnhancedDir is where enhanced grayscale images go
		EnhancedDir string `yaml:"enhancedDir"`

		// ReconstructionFormat selects the reconstructed image format,
		// "png" or "tiff"
		ReconstructionFormat string `yaml:"reconstructionFormat"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	// 500-pixel tiles over the full 16-bit camera range
	cfg.Tiling.TileSize = 500
	cfg.Tiling.GlobalMin = 0
	cfg.Tiling.GlobalMax = 65535

	opts := enhance.DefaultOptions()
	cfg.Enhancement.ApplyLogScale = opts.ApplyLogScale
	cfg.Enhancement.LogScale = opts.LogScale
	cfg.Enhancement.ApplyClipping = opts.ApplyClipping
	cfg.Enhancement.LowerPercentile = opts.LowerPercentile
	cfg.Enhancement.UpperPercentile = opts.UpperPercentile
	cfg.Enhancement.ApplyCLAHE = opts.ApplyCLAHE
	cfg.Enhancement.CLAHEClipLimit = opts.CLAHEClipLimit

	cfg.Output.TilesDir = "output_tiles"
	cfg.Output.ReconstructedDir = "reconstructed_images"
	cfg.Output.EnhancedDir = "processed_images"
	cfg.Output.ReconstructionFormat = "png"

	return cfg
}

// EnhanceOptions converts the enhancement section into pipeline options
func (c *Config) EnhanceOptions() enhance.Options {
	return enhance.Options{
		ApplyLogScale:   c.Enhancement.ApplyLogScale,
		LogScale:        c.Enhancement.LogScale,
		ApplyClipping:   c.Enhancement.ApplyClipping,
		LowerPercentile: c.Enhancement.LowerPercentile,
		UpperPercentile: c.Enhancement.UpperPercentile,
		ApplyCLAHE:      c.Enhancement.ApplyCLAHE,
		CLAHEClipLimit:  c.Enhancement.CLAHEClipLimit,
	}
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	// Read config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Parse YAML
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	// Marshal config to YAML
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	// Write to file
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	return SaveConfig(DefaultConfig(), configPath)
}
