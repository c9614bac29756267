// Package config provides configuration loading and validation for the
// resplit pipeline.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// DefaultFile is the config file picked up from the working directory
// when --config is not given.
const DefaultFile = "resplit.yaml"

// Config holds every knob of the pipeline. CLI flags override file
// values, which override the defaults.
type Config struct {
	// DataDir is the root holding the pre-existing
	// {train,valid,test}/{images,labels} folders.
	DataDir string `yaml:"data_dir"`
	// ImageDir is the flat image pool. Defaults to <data_dir>/all_images.
	ImageDir string `yaml:"image_dir"`
	// LabelDir is the flat label pool. Defaults to <data_dir>/all_labels.
	LabelDir string `yaml:"label_dir"`
	// OutputDir is where the new train/valid/test folders are created.
	OutputDir string `yaml:"output_dir"`

	// TrainRatio, ValRatio, and TestRatio must sum to 1.
	TrainRatio float64 `yaml:"train_ratio"`
	ValRatio   float64 `yaml:"val_ratio"`
	TestRatio  float64 `yaml:"test_ratio"`

	// Seed drives the shuffle; the same seed, pools, and ratios always
	// produce the same split.
	Seed int64 `yaml:"seed"`
	// CopyWorkers bounds concurrent file copies during combine.
	CopyWorkers int `yaml:"copy_workers"`
	// ImagePattern filters which files count as images, e.g.
	// "*.{jpg,jpeg,png}".
	ImagePattern string `yaml:"image_pattern"`
	// TarOutput archives the partitioned output tree after a split.
	TarOutput bool `yaml:"tar_output"`
}

// Default returns a Config with the pipeline defaults: the 0.6/0.2/0.2
// split and seed 42 the original dataset used.
func Default() *Config {
	return &Config{
		TrainRatio:   0.6,
		ValRatio:     0.2,
		TestRatio:    0.2,
		Seed:         42,
		CopyWorkers:  runtime.NumCPU(),
		ImagePattern: "*.{jpg,jpeg,png,gif,bmp}",
	}
}

// LoadFromFile reads a YAML config file over the defaults; keys absent
// from the file keep their default values.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyDefaults derives the pool directories from DataDir when they
// were not set explicitly.
func (c *Config) ApplyDefaults() {
	if c.DataDir != "" {
		if c.ImageDir == "" {
			c.ImageDir = filepath.Join(c.DataDir, "all_images")
		}
		if c.LabelDir == "" {
			c.LabelDir = filepath.Join(c.DataDir, "all_labels")
		}
	}
}

// Validate checks the non-ratio knobs; ratio validation belongs to the
// splitter, which must reject bad ratios before any I/O.
func (c *Config) Validate() error {
	if c.CopyWorkers < 1 {
		return fmt.Errorf("copy_workers must be at least 1, got %d", c.CopyWorkers)
	}
	if c.ImagePattern == "" {
		return fmt.Errorf("image_pattern must not be empty")
	}
	return nil
}
