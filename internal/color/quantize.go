package color

import (
	"math"
	"os"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"
	"gocv.io/x/gocv"

	"cvtools/internal/core"
	"cvtools/internal/imageio"
)

// ErrInvalidLevels is returned when fewer than two colors are requested.
var ErrInvalidLevels = errors.New("K must be >= 2")

// LevelsPerChannel returns L = round(K^(1/3)) clamped to [2,256].
func LevelsPerChannel(k int) (int, error) {
	if k < 2 {
		return 0, errors.Wrapf(ErrInvalidLevels, "got %d", k)
	}
	l := int(math.RoundToEven(math.Cbrt(float64(k))))
	if l < 2 {
		l = 2
	}
	if l > 256 {
		l = 256
	}
	return l, nil
}

// quantizeTable maps every 8-bit value to its nearest of L evenly spaced levels
// on [0,255]. Level values are truncated to integers.
func quantizeTable(l int) [256]uint8 {
	var table [256]uint8
	step := 255.0 / float64(l-1)
	for v := range table {
		q := math.RoundToEven(float64(v)/step) * step
		table[v] = uint8(math.Max(0, math.Min(255, q)))
	}
	return table
}

// QuantizeUniform reduces each RGB channel independently to L = round(K^(1/3))
// levels, giving at most L^3 colors.
func QuantizeUniform(img gocv.Mat, k int) (gocv.Mat, error) {
	l, err := LevelsPerChannel(k)
	if err != nil {
		return gocv.NewMat(), err
	}
	if err := core.RequireRGB(img); err != nil {
		return gocv.NewMat(), err
	}

	table := quantizeTable(l)
	lut, err := gocv.NewMatFromBytes(1, 256, gocv.MatTypeCV8U, table[:])
	if err != nil {
		return gocv.NewMat(), errors.Wrap(err, "building lookup table")
	}
	defer lut.Close()

	out := gocv.NewMat()
	gocv.LUT(img, lut, &out)
	return out, nil
}

// Palette returns the colors QuantizeUniform can produce for k.
func Palette(k int) ([]colorful.Color, error) {
	l, err := LevelsPerChannel(k)
	if err != nil {
		return nil, err
	}
	table := quantizeTable(l)

	seen := make(map[uint8]bool, l)
	var levels []float64
	for _, v := range table {
		if !seen[v] {
			seen[v] = true
			levels = append(levels, float64(v)/255.0)
		}
	}

	palette := make([]colorful.Color, 0, len(levels)*len(levels)*len(levels))
	for _, r := range levels {
		for _, g := range levels {
			for _, b := range levels {
				palette = append(palette, colorful.Color{R: r, G: g, B: b})
			}
		}
	}
	return palette, nil
}

// ReduceOptions configures ReduceImageSizeByColor.
type ReduceOptions struct {
	// Format defaults to PNG.
	Format imageio.Format
	// OutputPath, when set, receives the encoded bytes.
	OutputPath string
}

// ReduceImageSizeByColor quantizes img to about k colors, encodes it and reports
// the encoded size in kilobytes. The only side effect is the optional file write.
func ReduceImageSizeByColor(img gocv.Mat, k int, opts ReduceOptions) (gocv.Mat, float64, error) {
	q, err := QuantizeUniform(img, k)
	if err != nil {
		return gocv.NewMat(), 0, err
	}

	format := opts.Format
	if format == "" {
		format = imageio.FormatPNG
	}
	data, err := imageio.Encode(q, format)
	if err != nil {
		q.Close()
		return gocv.NewMat(), 0, err
	}

	if opts.OutputPath != "" {
		if err := os.WriteFile(opts.OutputPath, data, 0o644); err != nil {
			q.Close()
			return gocv.NewMat(), 0, errors.Wrapf(err, "writing %s", opts.OutputPath)
		}
	}

	return q, float64(len(data)) / 1024.0, nil
}
