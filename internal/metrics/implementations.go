// Concrete implementations of image metrics
package metrics

import (
	"math"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"

	"cvtools/internal/algorithms"
	"cvtools/internal/core"
)

func checkPair(original, processed gocv.Mat) error {
	if original.Empty() || processed.Empty() {
		return core.ErrEmptyImage
	}

	if original.Rows() != processed.Rows() || original.Cols() != processed.Cols() {
		return errors.New("image dimensions mismatch")
	}

	return nil
}

// meanSquaredError compares the 8-bit grayscale views of two images.
func meanSquaredError(original, processed gocv.Mat) (float64, error) {
	if err := checkPair(original, processed); err != nil {
		return 0, err
	}

	gray1, err := core.ToGray(original)
	if err != nil {
		return 0, err
	}
	defer gray1.Close()

	gray2, err := core.ToGray(processed)
	if err != nil {
		return 0, err
	}
	defer gray2.Close()

	if gray1.Type() != gocv.MatTypeCV8U || gray2.Type() != gocv.MatTypeCV8U {
		return 0, errors.New("mean squared error needs 8-bit images")
	}

	sumSquaredDiff := 0.0
	totalPixels := gray1.Rows() * gray1.Cols()

	for y := 0; y < gray1.Rows(); y++ {
		for x := 0; x < gray1.Cols(); x++ {
			diff := float64(gray1.GetUCharAt(y, x)) - float64(gray2.GetUCharAt(y, x))
			sumSquaredDiff += diff * diff
		}
	}

	return sumSquaredDiff / float64(totalPixels), nil
}

// PSNR implements Peak Signal-to-Noise Ratio metric
type PSNR struct{}

// NewPSNR creates a new PSNR metric
func NewPSNR() *PSNR {
	return &PSNR{}
}

func (p *PSNR) Calculate(original, processed gocv.Mat) (float64, error) {
	mse, err := meanSquaredError(original, processed)
	if err != nil {
		return 0, err
	}
	if mse == 0 {
		return math.Inf(1), nil // Perfect match
	}

	maxVal := 255.0
	return 20 * math.Log10(maxVal/math.Sqrt(mse)), nil
}

func (p *PSNR) GetName() string {
	return "PSNR"
}

func (p *PSNR) GetDescription() string {
	return "Peak Signal-to-Noise Ratio between input and output"
}

func (p *PSNR) GetRange() (float64, float64) {
	return 0, 100 // Practical range, can go higher
}

func (p *PSNR) IsHigherBetter() bool {
	return true
}

// MSE implements Mean Squared Error metric
type MSE struct{}

// NewMSE creates a new MSE metric
func NewMSE() *MSE {
	return &MSE{}
}

func (m *MSE) Calculate(original, processed gocv.Mat) (float64, error) {
	return meanSquaredError(original, processed)
}

func (m *MSE) GetName() string {
	return "MSE"
}

func (m *MSE) GetDescription() string {
	return "Mean Squared Error between images"
}

func (m *MSE) GetRange() (float64, float64) {
	return 0, 65025 // 255^2
}

func (m *MSE) IsHigherBetter() bool {
	return false
}

// Sharpness compares the Laplacian variance of output and input
type Sharpness struct{}

// NewSharpness creates a new sharpness metric
func NewSharpness() *Sharpness {
	return &Sharpness{}
}

func (s *Sharpness) Calculate(original, processed gocv.Mat) (float64, error) {
	if original.Empty() || processed.Empty() {
		return 0, core.ErrEmptyImage
	}

	origSharpness, err := laplacianVariance(original)
	if err != nil {
		return 0, err
	}
	procSharpness, err := laplacianVariance(processed)
	if err != nil {
		return 0, err
	}

	if origSharpness == 0 {
		return 1.0, nil
	}

	return procSharpness / origSharpness, nil
}

func laplacianVariance(input gocv.Mat) (float64, error) {
	lap, err := algorithms.Laplacian(input, 1)
	if err != nil {
		return 0, err
	}
	defer lap.Close()

	mean := gocv.NewMat()
	defer mean.Close()
	stddev := gocv.NewMat()
	defer stddev.Close()
	gocv.MeanStdDev(lap, &mean, &stddev)

	sd := stddev.GetDoubleAt(0, 0)
	return sd * sd, nil
}

func (s *Sharpness) GetName() string {
	return "Sharpness"
}

func (s *Sharpness) GetDescription() string {
	return "Ratio of Laplacian variance, output over input"
}

func (s *Sharpness) GetRange() (float64, float64) {
	return 0, 2
}

func (s *Sharpness) IsHigherBetter() bool {
	return true
}

// EdgeDensity is the fraction of edge pixels in a binary mask
type EdgeDensity struct{}

// NewEdgeDensity creates a new edge density metric
func NewEdgeDensity() *EdgeDensity {
	return &EdgeDensity{}
}

// Calculate ignores original; processed is an edge mask.
func (d *EdgeDensity) Calculate(original, processed gocv.Mat) (float64, error) {
	if processed.Empty() {
		return 0, core.ErrEmptyImage
	}
	if processed.Channels() != 1 {
		return 0, errors.Wrapf(core.ErrUnsupportedChannels, "edge mask has %d channels", processed.Channels())
	}

	total := processed.Rows() * processed.Cols()
	return float64(gocv.CountNonZero(processed)) / float64(total), nil
}

func (d *EdgeDensity) GetName() string {
	return "Edge Density"
}

func (d *EdgeDensity) GetDescription() string {
	return "Fraction of pixels marked as edges"
}

func (d *EdgeDensity) GetRange() (float64, float64) {
	return 0, 1
}

func (d *EdgeDensity) IsHigherBetter() bool {
	return false
}

// GradientEnergy is the mean Sobel gradient magnitude of the output
type GradientEnergy struct{}

// NewGradientEnergy creates a new gradient energy metric
func NewGradientEnergy() *GradientEnergy {
	return &GradientEnergy{}
}

// Calculate ignores original.
func (g *GradientEnergy) Calculate(original, processed gocv.Mat) (float64, error) {
	gx, err := algorithms.SobelX(processed)
	if err != nil {
		return 0, err
	}
	defer gx.Close()

	gy, err := algorithms.SobelY(processed)
	if err != nil {
		return 0, err
	}
	defer gy.Close()

	mag := gocv.NewMat()
	defer mag.Close()
	gocv.Magnitude(gx, gy, &mag)

	return mag.Mean().Val1, nil
}

func (g *GradientEnergy) GetName() string {
	return "Gradient Energy"
}

func (g *GradientEnergy) GetDescription() string {
	return "Mean Sobel gradient magnitude"
}

func (g *GradientEnergy) GetRange() (float64, float64) {
	return 0, 1443 // 255 * 4 * sqrt(2)
}

func (g *GradientEnergy) IsHigherBetter() bool {
	return true
}

// MeanResponse is the mean absolute value of a single-channel filter response
type MeanResponse struct{}

// NewMeanResponse creates a new mean response metric
func NewMeanResponse() *MeanResponse {
	return &MeanResponse{}
}

// Calculate ignores original.
func (m *MeanResponse) Calculate(original, processed gocv.Mat) (float64, error) {
	if processed.Empty() {
		return 0, core.ErrEmptyImage
	}
	if processed.Channels() != 1 {
		return 0, errors.Wrapf(core.ErrUnsupportedChannels, "response has %d channels", processed.Channels())
	}

	abs := gocv.NewMat()
	defer abs.Close()
	zero := gocv.Zeros(processed.Rows(), processed.Cols(), processed.Type())
	defer zero.Close()
	gocv.AbsDiff(processed, zero, &abs)

	return abs.Mean().Val1, nil
}

func (m *MeanResponse) GetName() string {
	return "Mean Response"
}

func (m *MeanResponse) GetDescription() string {
	return "Mean absolute filter response"
}

func (m *MeanResponse) GetRange() (float64, float64) {
	return 0, math.Inf(1)
}

func (m *MeanResponse) IsHigherBetter() bool {
	return true
}
