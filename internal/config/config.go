// Demo configuration with YAML overrides
package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"cvtools/internal/geometry"
	"cvtools/internal/imageio"
)

// Config holds all configuration for the demo runner.
type Config struct {
	DataDir   string       `yaml:"data_dir"`
	OutputDir string       `yaml:"output_dir"`
	Camera    CameraConfig `yaml:"camera"`
	Color     ColorConfig  `yaml:"color"`
	Filters   FilterConfig `yaml:"filters"`
}

// CameraConfig holds the parameters of the camera demo.
type CameraConfig struct {
	// GridSize is the number of points per side of the synthetic plane at GridDepth.
	GridSize  int     `yaml:"grid_size"`
	GridDepth float64 `yaml:"grid_depth"`
	// Focals are compared side by side; each replaces Intrinsics.Fx and Fy.
	Focals     []float64           `yaml:"focals"`
	Intrinsics geometry.Intrinsics `yaml:"intrinsics"`
	Distortion geometry.Distortion `yaml:"distortion"`
	// Sweep and Aspect drive ReprojectWithFocals.
	Sweep  []float64 `yaml:"sweep"`
	Aspect float64   `yaml:"aspect"`
}

// ColorConfig holds the parameters of the color demo.
type ColorConfig struct {
	HistogramBins int `yaml:"histogram_bins"`
	// Levels are the K values passed to QuantizeUniform.
	Levels []int `yaml:"levels"`
	// ReduceLevels is the K used for the encoded-size report.
	ReduceLevels int            `yaml:"reduce_levels"`
	Format       imageio.Format `yaml:"format"`
}

// FilterConfig holds the parameters of the filter demo.
type FilterConfig struct {
	BoxSize        int     `yaml:"box_size"`
	CannyLow       float64 `yaml:"canny_low"`
	CannyHigh      float64 `yaml:"canny_high"`
	LaplacianKSize int     `yaml:"laplacian_ksize"`
}

// Default returns the stock demo configuration.
func Default() Config {
	return Config{
		DataDir:   "data",
		OutputDir: "out",
		Camera: CameraConfig{
			GridSize:   5,
			GridDepth:  3.0,
			Focals:     []float64{400, 800},
			Intrinsics: geometry.Intrinsics{Fx: 800, Fy: 800, Cx: 320, Cy: 240},
			Distortion: geometry.Distortion{K1: 0.1, K2: -0.05},
			Sweep:      []float64{200, 400, 800},
			Aspect:     1.0,
		},
		Color: ColorConfig{
			HistogramBins: 32,
			Levels:        []int{16, 64},
			ReduceLevels:  64,
			Format:        imageio.FormatPNG,
		},
		Filters: FilterConfig{
			BoxSize:        3,
			CannyLow:       80,
			CannyHigh:      160,
			LaplacianKSize: 3,
		},
	}
}

// Load reads a YAML file over the defaults. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrapf(err, "reading config %s", path)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "parsing config %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, errors.Wrapf(err, "config %s", path)
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if c.Camera.GridSize < 1 {
		return errors.Errorf("camera.grid_size must be >= 1, got %d", c.Camera.GridSize)
	}
	if c.Camera.GridDepth <= 0 {
		return errors.Errorf("camera.grid_depth must be > 0, got %g", c.Camera.GridDepth)
	}
	if c.Camera.Intrinsics.Fx == 0 {
		return errors.New("camera.intrinsics.fx must be non-zero")
	}
	for _, f := range append(append([]float64(nil), c.Camera.Focals...), c.Camera.Sweep...) {
		if f == 0 {
			return errors.New("focal lengths must be non-zero")
		}
	}
	if c.Color.HistogramBins < 1 {
		return errors.Errorf("color.histogram_bins must be >= 1, got %d", c.Color.HistogramBins)
	}
	for _, k := range append([]int{c.Color.ReduceLevels}, c.Color.Levels...) {
		if k < 2 {
			return errors.Errorf("color levels must be >= 2, got %d", k)
		}
	}
	if _, err := imageio.ParseFormat(string(c.Color.Format)); err != nil {
		return err
	}
	if c.Filters.BoxSize < 1 || c.Filters.BoxSize%2 == 0 {
		return errors.Errorf("filters.box_size must be odd and positive, got %d", c.Filters.BoxSize)
	}
	if c.Filters.CannyLow < 0 || c.Filters.CannyHigh < 0 {
		return errors.Errorf("filters canny thresholds must be non-negative: %g, %g", c.Filters.CannyLow, c.Filters.CannyHigh)
	}
	if k := c.Filters.LaplacianKSize; k < 1 || k > 31 || k%2 == 0 {
		return errors.Errorf("filters.laplacian_ksize must be odd in 1..31, got %d", k)
	}
	return nil
}
