// Package config holds the run settings for marker detection.
//
// Settings come from four layers, later ones winning: built-in defaults, an
// optional YAML file, SLIDEMARKS_* environment variables, and command-line
// flags (applied by the caller).
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	yaml "gopkg.in/yaml.v3"

	"github.com/ironsheep/slidemarks/internal/detection"
	"github.com/ironsheep/slidemarks/internal/imaging"
	"github.com/ironsheep/slidemarks/internal/removal"
)

// Environment variable names.
const (
	EnvZoom      = "SLIDEMARKS_ZOOM"
	EnvThreshold = "SLIDEMARKS_THRESHOLD"
	EnvRemove    = "SLIDEMARKS_REMOVE"
	EnvLogLevel  = "SLIDEMARKS_LOG_LEVEL"
)

// Config is the file schema and the resolved run configuration.
type Config struct {
	Zoom             float64            `yaml:"zoom"`
	ClusterThreshold float64            `yaml:"clusterThreshold"`
	IDPrefix         string             `yaml:"idPrefix"`
	MinSize          int                `yaml:"minSize"`
	MaxSize          int                `yaml:"maxSize"`
	Remove           string             `yaml:"remove"`
	Ranges           []imaging.HSVRange `yaml:"ranges"`
	MaskDir          string             `yaml:"maskDir"`
}

// Default returns the reference configuration.
func Default() Config {
	filter := detection.DefaultSizeFilter()
	return Config{
		Zoom:             detection.DefaultZoom,
		ClusterThreshold: detection.DefaultClusterThreshold,
		IDPrefix:         detection.DefaultIDPrefix,
		MinSize:          filter.Min,
		MaxSize:          filter.Max,
		Remove:           removal.StrategyNone,
		Ranges:           imaging.MagentaRanges(),
	}
}

// Load reads a YAML file on top of Default. Keys missing from the file keep
// their default values; a ranges list in the file replaces the defaults
// entirely.
func Load(path string) (Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("parse yaml: %w", err)
	}
	return cfg, nil
}

// ApplyEnvOverrides overrides cfg fields with SLIDEMARKS_* variables that are
// set. Unparseable numbers are reported, not ignored.
func ApplyEnvOverrides(cfg *Config) error {
	if cfg == nil {
		return nil
	}
	if v := strings.TrimSpace(os.Getenv(EnvZoom)); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvZoom, err)
		}
		cfg.Zoom = f
	}
	if v := strings.TrimSpace(os.Getenv(EnvThreshold)); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvThreshold, err)
		}
		cfg.ClusterThreshold = f
	}
	if v := strings.TrimSpace(os.Getenv(EnvRemove)); v != "" {
		cfg.Remove = v
	}
	return nil
}

// Validate reports the first setting that cannot produce a meaningful run.
func (c Config) Validate() error {
	switch {
	case c.Zoom <= 0:
		return fmt.Errorf("zoom must be positive, got %v", c.Zoom)
	case c.ClusterThreshold < 0:
		return fmt.Errorf("clusterThreshold must not be negative, got %v", c.ClusterThreshold)
	case c.MinSize < 0:
		return fmt.Errorf("minSize must not be negative, got %d", c.MinSize)
	case c.MinSize > c.MaxSize:
		return fmt.Errorf("minSize %d exceeds maxSize %d", c.MinSize, c.MaxSize)
	case len(c.Ranges) == 0:
		return errors.New("at least one color range is required")
	}
	for i, r := range c.Ranges {
		if r.HMin > r.HMax || r.SMin > r.SMax || r.VMin > r.VMax {
			return fmt.Errorf("range %d has a lower bound above its upper bound", i)
		}
		if r.HMax > 180 {
			return fmt.Errorf("range %d: hue is limited to 0-180, got %d", i, r.HMax)
		}
	}
	if _, err := removal.New(c.Remove, nil); err != nil {
		return err
	}
	return nil
}

// SizeFilter returns the region size bounds.
func (c Config) SizeFilter() detection.SizeFilter {
	return detection.SizeFilter{Min: c.MinSize, Max: c.MaxSize}
}

// Segmenter returns a segmenter for the configured zoom and color ranges.
func (c Config) Segmenter() *detection.Segmenter {
	ranges := make([]imaging.HSVRange, len(c.Ranges))
	copy(ranges, c.Ranges)
	return &detection.Segmenter{Zoom: c.Zoom, Ranges: ranges}
}
