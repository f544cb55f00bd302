// Registry adapters exposing the filter kernel through the Algorithm interface
package algorithms

import (
	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

func floatParam(params map[string]interface{}, name string, def float64) float64 {
	if val, ok := params[name]; ok {
		switch v := val.(type) {
		case float64:
			return v
		case int:
			return float64(v)
		}
	}
	return def
}

func stringParam(params map[string]interface{}, name string, def string) string {
	if val, ok := params[name]; ok {
		if v, ok := val.(string); ok {
			return v
		}
	}
	return def
}

// checkParams validates params against the bounds and options in infos.
// Missing params take their declared default.
func checkParams(infos []ParameterInfo, params map[string]interface{}) error {
	for _, info := range infos {
		if info.Type == "enum" {
			def, _ := info.Default.(string)
			v := stringParam(params, info.Name, def)
			found := false
			for _, opt := range info.Options {
				if v == opt {
					found = true
					break
				}
			}
			if !found {
				return errors.Errorf("%s must be one of %v, got %q", info.Name, info.Options, v)
			}
			continue
		}

		lo, hasMin := info.Min.(float64)
		hi, hasMax := info.Max.(float64)
		if !hasMin || !hasMax {
			continue
		}
		def, _ := info.Default.(float64)
		if v := floatParam(params, info.Name, def); v < lo || v > hi {
			return errors.Errorf("%s must be between %g and %g, got %g", info.Name, lo, hi, v)
		}
	}
	return nil
}

// BoxFilter smooths with an n x n mean kernel through Convolve2D
type BoxFilter struct{}

// NewBoxFilter creates a new box filter algorithm
func NewBoxFilter() *BoxFilter {
	return &BoxFilter{}
}

func (b *BoxFilter) Apply(input gocv.Mat, params map[string]interface{}) (gocv.Mat, error) {
	if input.Empty() {
		return gocv.NewMat(), errors.New("input image is empty")
	}

	kernelSize := int(floatParam(params, "kernel_size", 3))
	padding := Padding(stringParam(params, "padding", string(PaddingSame)))

	return Convolve2D(input, BoxKernel(kernelSize), ConvolveOptions{Padding: padding, Stride: 1})
}

func (b *BoxFilter) GetDefaultParams() map[string]interface{} {
	return map[string]interface{}{
		"kernel_size": 3.0,
		"padding":     string(PaddingSame),
	}
}

func (b *BoxFilter) GetName() string {
	return "Box Convolution"
}

func (b *BoxFilter) GetDescription() string {
	return "Mean filter applied by true 2D convolution"
}

func (b *BoxFilter) Validate(params map[string]interface{}) error {
	if err := checkParams(b.GetParameterInfo(), params); err != nil {
		return err
	}
	if int(floatParam(params, "kernel_size", 3))%2 == 0 {
		return errors.Errorf("kernel_size must be odd")
	}
	return nil
}

func (b *BoxFilter) GetParameterInfo() []ParameterInfo {
	return []ParameterInfo{
		{
			Name:        "kernel_size",
			Type:        "int",
			Min:         1.0,
			Max:         31.0,
			Default:     3.0,
			Description: "Side of the mean kernel (must be odd)",
		},
		{
			Name:        "padding",
			Type:        "enum",
			Default:     string(PaddingSame),
			Description: "Boundary policy",
			Options:     []string{string(PaddingSame), string(PaddingValid)},
		},
	}
}

// Axis selects the derivative direction of a SobelFilter.
type Axis int

const (
	AxisX Axis = iota
	AxisY
)

// SobelFilter computes a first-derivative image along one axis
type SobelFilter struct {
	axis Axis
}

// NewSobelFilter creates a new Sobel gradient algorithm
func NewSobelFilter(axis Axis) *SobelFilter {
	return &SobelFilter{axis: axis}
}

func (s *SobelFilter) Apply(input gocv.Mat, params map[string]interface{}) (gocv.Mat, error) {
	if s.axis == AxisY {
		return SobelY(input)
	}
	return SobelX(input)
}

func (s *SobelFilter) GetDefaultParams() map[string]interface{} {
	return map[string]interface{}{}
}

func (s *SobelFilter) GetName() string {
	if s.axis == AxisY {
		return "Sobel Y"
	}
	return "Sobel X"
}

func (s *SobelFilter) GetDescription() string {
	return "3x3 Sobel derivative of the grayscale intensity (float output)"
}

func (s *SobelFilter) Validate(params map[string]interface{}) error {
	return checkParams(s.GetParameterInfo(), params)
}

func (s *SobelFilter) GetParameterInfo() []ParameterInfo {
	return nil
}

// LaplacianFilter computes a second-derivative image
type LaplacianFilter struct{}

// NewLaplacianFilter creates a new Laplacian algorithm
func NewLaplacianFilter() *LaplacianFilter {
	return &LaplacianFilter{}
}

func (l *LaplacianFilter) Apply(input gocv.Mat, params map[string]interface{}) (gocv.Mat, error) {
	return Laplacian(input, int(floatParam(params, "ksize", 3)))
}

func (l *LaplacianFilter) GetDefaultParams() map[string]interface{} {
	return map[string]interface{}{
		"ksize": 3.0,
	}
}

func (l *LaplacianFilter) GetName() string {
	return "Laplacian"
}

func (l *LaplacianFilter) GetDescription() string {
	return "Discrete Laplacian; sign changes mark edges"
}

func (l *LaplacianFilter) Validate(params map[string]interface{}) error {
	if err := checkParams(l.GetParameterInfo(), params); err != nil {
		return err
	}
	if int(floatParam(params, "ksize", 3))%2 == 0 {
		return errors.Errorf("ksize must be odd")
	}
	return nil
}

func (l *LaplacianFilter) GetParameterInfo() []ParameterInfo {
	return []ParameterInfo{
		{
			Name:        "ksize",
			Type:        "int",
			Min:         1.0,
			Max:         31.0,
			Default:     3.0,
			Description: "Aperture size (must be odd)",
		},
	}
}

// CannyDetector produces a binary edge mask
type CannyDetector struct{}

// NewCannyDetector creates a new Canny edge algorithm
func NewCannyDetector() *CannyDetector {
	return &CannyDetector{}
}

func (c *CannyDetector) Apply(input gocv.Mat, params map[string]interface{}) (gocv.Mat, error) {
	return Canny(input, floatParam(params, "low_threshold", 100), floatParam(params, "high_threshold", 200))
}

func (c *CannyDetector) GetDefaultParams() map[string]interface{} {
	return map[string]interface{}{
		"low_threshold":  100.0,
		"high_threshold": 200.0,
	}
}

func (c *CannyDetector) GetName() string {
	return "Canny"
}

func (c *CannyDetector) GetDescription() string {
	return "Two-threshold hysteresis edge detector"
}

// Validate only checks ranges; Canny itself orders the thresholds.
func (c *CannyDetector) Validate(params map[string]interface{}) error {
	return checkParams(c.GetParameterInfo(), params)
}

func (c *CannyDetector) GetParameterInfo() []ParameterInfo {
	return []ParameterInfo{
		{
			Name:        "low_threshold",
			Type:        "float",
			Min:         0.0,
			Max:         1020.0,
			Default:     100.0,
			Description: "Gradient magnitude below which pixels are never edges",
		},
		{
			Name:        "high_threshold",
			Type:        "float",
			Min:         0.0,
			Max:         1020.0,
			Default:     200.0,
			Description: "Gradient magnitude above which pixels are strong edges",
		},
	}
}
