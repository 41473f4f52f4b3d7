package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FilterConfig holds every toggle and threshold controlling a filtering run.
// It is built once before processing starts and is read-only afterwards.
type FilterConfig struct {
	CheckBlur     bool    `yaml:"check_blur"`
	BlurThreshold float64 `yaml:"blur_threshold"`

	CheckExposure   bool    `yaml:"check_exposure"`
	DarkThreshold   float64 `yaml:"dark_threshold"`
	BrightThreshold float64 `yaml:"bright_threshold"`

	CheckResolution bool `yaml:"check_resolution"`
	MinWidth        int  `yaml:"min_width"`
	MinHeight       int  `yaml:"min_height"`

	CheckNoise     bool    `yaml:"check_noise"`
	NoiseThreshold float64 `yaml:"noise_threshold"`

	CheckDuplicates     bool `yaml:"check_duplicates"`
	DuplicateSimilarity int  `yaml:"duplicate_similarity"`

	CheckClosedEyes bool `yaml:"check_closed_eyes"`
	FilterNoPeople  bool `yaml:"filter_no_people"`
}

// Default returns the stock configuration: all quality checks on, people
// filtering off.
func Default() FilterConfig {
	return FilterConfig{
		CheckBlur:           true,
		BlurThreshold:       100.0,
		CheckExposure:       true,
		DarkThreshold:       0.5,
		BrightThreshold:     0.5,
		CheckResolution:     true,
		MinWidth:            800,
		MinHeight:           600,
		CheckNoise:          true,
		NoiseThreshold:      1000.0,
		CheckDuplicates:     true,
		DuplicateSimilarity: 5,
		CheckClosedEyes:     true,
		FilterNoPeople:      false,
	}
}

// Load reads a YAML configuration file on top of the defaults. Options absent
// from the file keep their default values.
func Load(path string) (FilterConfig, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("cannot read config file %s: %v", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("cannot parse config file %s: %v", path, err)
	}

	return cfg, nil
}

// Validate rejects out-of-range thresholds before any image is touched.
func (c FilterConfig) Validate() error {
	if c.DuplicateSimilarity < 0 || c.DuplicateSimilarity > 64 {
		return fmt.Errorf("duplicate_similarity must be between 0 and 64, got %d", c.DuplicateSimilarity)
	}
	if c.DarkThreshold < 0 || c.DarkThreshold > 1 {
		return fmt.Errorf("dark_threshold must be between 0 and 1, got %g", c.DarkThreshold)
	}
	if c.BrightThreshold < 0 || c.BrightThreshold > 1 {
		return fmt.Errorf("bright_threshold must be between 0 and 1, got %g", c.BrightThreshold)
	}
	if c.MinWidth <= 0 || c.MinHeight <= 0 {
		return fmt.Errorf("minimum resolution must be positive, got %dx%d", c.MinWidth, c.MinHeight)
	}
	return nil
}

// NeedsFaceDetection reports whether the run requires the face cascades.
func (c FilterConfig) NeedsFaceDetection() bool {
	return c.CheckClosedEyes || c.FilterNoPeople
}

// ReportMap returns the configuration section serialized into the report.
func (c FilterConfig) ReportMap() map[string]interface{} {
	return map[string]interface{}{
		"check_blur":        c.CheckBlur,
		"blur_threshold":    c.BlurThreshold,
		"check_exposure":    c.CheckExposure,
		"check_resolution":  c.CheckResolution,
		"check_noise":       c.CheckNoise,
		"check_duplicates":  c.CheckDuplicates,
		"check_closed_eyes": c.CheckClosedEyes,
		"filter_no_people":  c.FilterNoPeople,
	}
}
