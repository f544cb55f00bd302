// Color-space conversion, histograms and uniform quantization over RGB images
package color

import (
	"image"
	"math"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"

	"cvtools/internal/core"
)

// OpenCV's 8-bit HSV encoding stores hue as degrees/2.
const (
	hueMax8U = 179.0
	satMax8U = 255.0
	valMax8U = 255.0
)

// ErrInvalidBins is returned for a histogram with fewer than one bin.
var ErrInvalidBins = errors.New("invalid bin count")

// RGBToHSV01 converts an 8-bit RGB image to HSV with each channel scaled to [0,1].
// The result is CV_32FC3.
func RGBToHSV01(img gocv.Mat) (gocv.Mat, error) {
	if err := core.RequireRGB(img); err != nil {
		return gocv.NewMat(), err
	}

	hsv := gocv.NewMat()
	defer hsv.Close()
	gocv.CvtColor(img, &hsv, gocv.ColorRGBToHSV)

	channels := gocv.Split(hsv)
	defer func() {
		for _, ch := range channels {
			ch.Close()
		}
	}()

	scales := [3]float32{1 / hueMax8U, 1 / satMax8U, 1 / valMax8U}
	scaled := make([]gocv.Mat, len(channels))
	for i, ch := range channels {
		scaled[i] = gocv.NewMat()
		ch.ConvertToWithParams(&scaled[i], gocv.MatTypeCV32F, scales[i], 0)
	}
	defer func() {
		for _, ch := range scaled {
			ch.Close()
		}
	}()

	out := gocv.NewMat()
	gocv.Merge(scaled, &out)
	return out, nil
}

// RGBToLab converts an 8-bit RGB image, scaled to [0,1], to CIE Lab (D65).
// L is in [0,100] and a, b roughly in [-128,127]. The result is CV_32FC3.
func RGBToLab(img gocv.Mat) (gocv.Mat, error) {
	if err := core.RequireRGB(img); err != nil {
		return gocv.NewMat(), err
	}

	unit := gocv.NewMat()
	defer unit.Close()
	img.ConvertToWithParams(&unit, gocv.MatTypeCV32F, 1.0/255.0, 0)

	lab := gocv.NewMat()
	gocv.CvtColor(unit, &lab, gocv.ColorRGBToLab)
	return lab, nil
}

// Histogram holds per-channel counts over uniform bins on [0,256).
type Histogram struct {
	R, G, B []int64
	// Edges has len(R)+1 entries.
	Edges []float64
}

// ColorHistogram counts each RGB channel into bins uniform bins on [0,256).
func ColorHistogram(img gocv.Mat, bins int) (Histogram, error) {
	if bins < 1 {
		return Histogram{}, errors.Wrapf(ErrInvalidBins, "%d", bins)
	}
	if err := core.RequireRGB(img); err != nil {
		return Histogram{}, err
	}

	channels := gocv.Split(img)
	defer func() {
		for _, ch := range channels {
			ch.Close()
		}
	}()

	var counts [3][256]int64
	for i, ch := range channels {
		c, err := valueCounts(ch)
		if err != nil {
			return Histogram{}, err
		}
		counts[i] = c
	}

	h := Histogram{
		R:     make([]int64, bins),
		G:     make([]int64, bins),
		B:     make([]int64, bins),
		Edges: make([]float64, bins+1),
	}
	width := 256.0 / float64(bins)
	for v := 0; v < 256; v++ {
		bin := int(math.Floor(float64(v) / width))
		if bin >= bins {
			bin = bins - 1
		}
		h.R[bin] += counts[0][v]
		h.G[bin] += counts[1][v]
		h.B[bin] += counts[2][v]
	}
	for i := range h.Edges {
		h.Edges[i] = float64(i) * width
	}
	return h, nil
}

// maxExactCount is the largest integer a float32 histogram bin holds exactly.
const maxExactCount = 1 << 24

// valueCounts returns the count of every 8-bit value in a single-channel Mat.
// CalcHist runs over row bands small enough that no float32 bin can overflow
// maxExactCount.
func valueCounts(ch gocv.Mat) ([256]int64, error) {
	var counts [256]int64

	bandRows := maxExactCount / ch.Cols()
	if bandRows < 1 {
		bandRows = 1
	}

	mask := gocv.NewMat()
	defer mask.Close()

	for y := 0; y < ch.Rows(); y += bandRows {
		band := ch.Region(image.Rect(0, y, ch.Cols(), min(y+bandRows, ch.Rows())))
		hist := gocv.NewMat()
		err := gocv.CalcHist([]gocv.Mat{band}, []int{0}, mask, &hist, []int{256}, []float64{0, 256}, false)
		band.Close()
		if err != nil {
			hist.Close()
			return counts, errors.Wrap(err, "computing histogram")
		}
		for v := 0; v < 256; v++ {
			counts[v] += int64(math.Round(float64(hist.GetFloatAt(v, 0))))
		}
		hist.Close()
	}

	return counts, nil
}
