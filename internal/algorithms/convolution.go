// Generic 2D convolution with explicit boundary policy
package algorithms

import (
	"image"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/mat"

	"cvtools/internal/core"
)

var (
	// ErrNotSupported is returned for parameter combinations this package does not implement.
	ErrNotSupported = errors.New("not supported")
	// ErrEvenKernel is returned for kernels with an even height or width.
	ErrEvenKernel = errors.New("kernel dimensions must be odd")
	// ErrInvalidShape is returned when an input is too small or malformed for the operation.
	ErrInvalidShape = errors.New("invalid shape")
)

// Padding selects the convolution boundary policy.
type Padding string

const (
	// PaddingSame replicates border samples outward and keeps the input size.
	PaddingSame Padding = "same"
	// PaddingValid crops kh/2 rows and kw/2 columns from each side.
	PaddingValid Padding = "valid"
)

// ConvolveOptions configures Convolve2D. The zero value means same padding, stride 1.
type ConvolveOptions struct {
	Padding Padding
	Stride  int
}

func (o ConvolveOptions) normalize() (ConvolveOptions, error) {
	if o.Padding == "" {
		o.Padding = PaddingSame
	}
	if o.Stride == 0 {
		o.Stride = 1
	}
	if o.Stride != 1 {
		return o, errors.Wrapf(ErrNotSupported, "stride %d (only stride 1 is implemented)", o.Stride)
	}
	if o.Padding != PaddingSame && o.Padding != PaddingValid {
		return o, errors.Wrapf(ErrNotSupported, "padding %q", o.Padding)
	}
	return o, nil
}

// Convolve2D convolves img with kernel. The kernel is rotated 180 degrees
// before correlation, so this is true convolution. The output has the same
// depth and channel count as img; 8-bit results saturate.
func Convolve2D(img gocv.Mat, kernel *mat.Dense, opts ConvolveOptions) (gocv.Mat, error) {
	opts, err := opts.normalize()
	if err != nil {
		return gocv.NewMat(), err
	}
	if err := core.ValidateImage(img); err != nil {
		return gocv.NewMat(), err
	}
	kh, kw, err := kernelSize(kernel)
	if err != nil {
		return gocv.NewMat(), err
	}
	ph, pw := kh/2, kw/2
	if opts.Padding == PaddingValid && (img.Rows() < kh || img.Cols() < kw) {
		return gocv.NewMat(), errors.Wrapf(ErrInvalidShape, "image %dx%d smaller than kernel %dx%d", img.Cols(), img.Rows(), kw, kh)
	}

	k := kernelToMat(kernel)
	defer k.Close()
	flipped := gocv.NewMat()
	defer flipped.Close()
	gocv.Flip(k, &flipped, -1)

	out := gocv.NewMat()
	gocv.Filter2D(img, &out, gocv.MatType(-1), flipped, image.Pt(-1, -1), 0, gocv.BorderReplicate)

	if opts.Padding == PaddingSame {
		return out, nil
	}

	// Interior samples never read the border, so the padding mode above does not affect them.
	region := out.Region(image.Rect(pw, ph, out.Cols()-pw, out.Rows()-ph))
	cropped := region.Clone()
	region.Close()
	out.Close()
	return cropped, nil
}

// Convolve2DDense applies the same convolution to a float64 grid without
// going through OpenCV. No clamping is applied.
func Convolve2DDense(grid *mat.Dense, kernel *mat.Dense, opts ConvolveOptions) (*mat.Dense, error) {
	opts, err := opts.normalize()
	if err != nil {
		return nil, err
	}
	if grid == nil || grid.IsEmpty() {
		return nil, errors.Wrap(ErrInvalidShape, "empty grid")
	}
	kh, kw, err := kernelSize(kernel)
	if err != nil {
		return nil, err
	}
	h, w := grid.Dims()
	ph, pw := kh/2, kw/2

	r0, c0, rows, cols := 0, 0, h, w
	if opts.Padding == PaddingValid {
		if h < kh || w < kw {
			return nil, errors.Wrapf(ErrInvalidShape, "grid %dx%d smaller than kernel %dx%d", w, h, kw, kh)
		}
		r0, c0, rows, cols = ph, pw, h-2*ph, w-2*pw
	}

	out := mat.NewDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			y, x := r0+i, c0+j
			sum := 0.0
			for a := 0; a < kh; a++ {
				for b := 0; b < kw; b++ {
					sum += kernel.At(a, b) * grid.At(replicate(y-a+ph, h), replicate(x-b+pw, w))
				}
			}
			out.Set(i, j, sum)
		}
	}
	return out, nil
}

// replicate clamps an index into [0, n), the edge-replicate border rule.
func replicate(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

func kernelSize(kernel *mat.Dense) (int, int, error) {
	if kernel == nil || kernel.IsEmpty() {
		return 0, 0, errors.Wrap(ErrInvalidShape, "empty kernel")
	}
	kh, kw := kernel.Dims()
	if kh%2 == 0 || kw%2 == 0 {
		return 0, 0, errors.Wrapf(ErrEvenKernel, "got %dx%d", kh, kw)
	}
	return kh, kw, nil
}

func kernelToMat(kernel *mat.Dense) gocv.Mat {
	kh, kw := kernel.Dims()
	k := gocv.NewMatWithSize(kh, kw, gocv.MatTypeCV32F)
	for r := 0; r < kh; r++ {
		for c := 0; c < kw; c++ {
			k.SetFloatAt(r, c, float32(kernel.At(r, c)))
		}
	}
	return k
}

// IdentityKernel returns the 3x3 kernel that leaves an image unchanged.
func IdentityKernel() *mat.Dense {
	return mat.NewDense(3, 3, []float64{
		0, 0, 0,
		0, 1, 0,
		0, 0, 0,
	})
}

// BoxKernel returns an n x n mean kernel.
func BoxKernel(n int) *mat.Dense {
	k := mat.NewDense(n, n, nil)
	w := 1.0 / float64(n*n)
	for r := 0; r < n; r++ {
		for c := 0; c < n; c++ {
			k.Set(r, c, w)
		}
	}
	return k
}

// SobelXKernel returns the 3x3 Sobel kernel for the x derivative, in correlation form.
func SobelXKernel() *mat.Dense {
	return mat.NewDense(3, 3, []float64{
		-1, 0, 1,
		-2, 0, 2,
		-1, 0, 1,
	})
}

// SobelYKernel returns the 3x3 Sobel kernel for the y derivative, in correlation form.
func SobelYKernel() *mat.Dense {
	return mat.NewDense(3, 3, []float64{
		-1, -2, -1,
		0, 0, 0,
		1, 2, 1,
	})
}
