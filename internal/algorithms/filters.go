// Gradient, edge and second-derivative filters
package algorithms

import (
	"github.com/pkg/errors"
	"gocv.io/x/gocv"

	"cvtools/internal/core"
)

// ErrInvalidThreshold is returned for negative Canny thresholds.
var ErrInvalidThreshold = errors.New("invalid threshold")

// Sentinel values of a Canny edge mask.
const (
	EdgeValue   uint8 = 255
	NoEdgeValue uint8 = 0
)

// grayFloat returns the grayscale view of img as CV_32F.
func grayFloat(img gocv.Mat) (gocv.Mat, error) {
	gray, err := core.ToGray(img)
	if err != nil {
		return gocv.NewMat(), err
	}
	defer gray.Close()

	f := gocv.NewMat()
	gray.ConvertTo(&f, gocv.MatTypeCV32F)
	return f, nil
}

func sobel(img gocv.Mat, dx, dy int) (gocv.Mat, error) {
	gray, err := grayFloat(img)
	if err != nil {
		return gocv.NewMat(), err
	}
	defer gray.Close()

	out := gocv.NewMat()
	gocv.Sobel(gray, &out, gocv.MatTypeCV32F, dx, dy, 3, 1, 0, gocv.BorderDefault)
	return out, nil
}

// SobelX approximates the horizontal intensity derivative. Output is CV_32F.
func SobelX(img gocv.Mat) (gocv.Mat, error) {
	return sobel(img, 1, 0)
}

// SobelY approximates the vertical intensity derivative. Output is CV_32F.
func SobelY(img gocv.Mat) (gocv.Mat, error) {
	return sobel(img, 0, 1)
}

// Laplacian applies the discrete Laplacian of aperture ksize to the grayscale
// view of img. Output is signed CV_32F without normalization or clamping.
func Laplacian(img gocv.Mat, ksize int) (gocv.Mat, error) {
	if ksize < 1 || ksize > 31 || ksize%2 == 0 {
		return gocv.NewMat(), errors.Wrapf(ErrNotSupported, "laplacian ksize %d (must be odd, 1..31)", ksize)
	}
	gray, err := grayFloat(img)
	if err != nil {
		return gocv.NewMat(), err
	}
	defer gray.Close()

	out := gocv.NewMat()
	gocv.Laplacian(gray, &out, gocv.MatTypeCV32F, ksize, 1, 0, gocv.BorderDefault)
	return out, nil
}

// Canny runs two-threshold hysteresis edge detection on the grayscale view of img.
// Thresholds given in the wrong order are swapped, as OpenCV does.
// Non 8-bit input is saturate-cast to [0,255] first. The result is CV_8U holding
// only EdgeValue and NoEdgeValue.
func Canny(img gocv.Mat, low, high float64) (gocv.Mat, error) {
	if low < 0 || high < 0 {
		return gocv.NewMat(), errors.Wrapf(ErrInvalidThreshold, "low=%g high=%g", low, high)
	}
	if low > high {
		low, high = high, low
	}
	gray, err := core.ToGray(img)
	if err != nil {
		return gocv.NewMat(), err
	}
	defer gray.Close()

	u8 := gocv.NewMat()
	defer u8.Close()
	if gray.Type() == gocv.MatTypeCV8U {
		gray.CopyTo(&u8)
	} else {
		gray.ConvertTo(&u8, gocv.MatTypeCV8U)
	}

	edges := gocv.NewMat()
	gocv.Canny(u8, &edges, float32(low), float32(high))
	return edges, nil
}
