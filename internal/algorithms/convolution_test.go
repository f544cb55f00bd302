package algorithms

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/mat"
)

func TestConvolve2DIdentitySame(t *testing.T) {
	img := checker(t, 32, 32, 4)
	defer img.Close()

	out, err := Convolve2D(img, IdentityKernel(), ConvolveOptions{Padding: PaddingSame})
	require.NoError(t, err)
	defer out.Close()

	assert.Equal(t, img.Type(), out.Type())
	assert.Equal(t, img.ToBytes(), out.ToBytes())
}

func TestConvolve2DFlipsKernel(t *testing.T) {
	// Weight left of center: correlation would shift right, convolution shifts left.
	k := mat.NewDense(3, 3, []float64{
		0, 0, 0,
		1, 0, 0,
		0, 0, 0,
	})
	img := floatGrid(4, 6, func(r, c int) float32 { return float32(c) })
	defer img.Close()

	out, err := Convolve2D(img, k, ConvolveOptions{})
	require.NoError(t, err)
	defer out.Close()

	for c := 0; c < 5; c++ {
		assert.Equal(t, float32(c+1), out.GetFloatAt(1, c), "col %d", c)
	}
	// Edge replication at the right border.
	assert.Equal(t, float32(5), out.GetFloatAt(1, 5))
}

func TestConvolve2DSameReplicatesBorder(t *testing.T) {
	img := floatGrid(5, 5, func(r, c int) float32 { return 7 })
	defer img.Close()

	out, err := Convolve2D(img, BoxKernel(3), ConvolveOptions{Padding: PaddingSame})
	require.NoError(t, err)
	defer out.Close()

	for _, p := range [][2]int{{0, 0}, {0, 4}, {4, 0}, {4, 4}, {2, 2}} {
		assert.InDelta(t, 7.0, out.GetFloatAt(p[0], p[1]), 1e-5)
	}
}

func TestConvolve2DValidCrop(t *testing.T) {
	img := checker(t, 32, 32, 4)
	defer img.Close()

	out, err := Convolve2D(img, BoxKernel(3), ConvolveOptions{Padding: PaddingValid})
	require.NoError(t, err)
	defer out.Close()
	assert.Equal(t, 30, out.Rows())
	assert.Equal(t, 30, out.Cols())

	tall := mat.NewDense(5, 3, nil)
	tall.Set(2, 1, 1)
	out2, err := Convolve2D(img, tall, ConvolveOptions{Padding: PaddingValid})
	require.NoError(t, err)
	defer out2.Close()
	assert.Equal(t, 28, out2.Rows())
	assert.Equal(t, 30, out2.Cols())
	assert.Equal(t, img.GetUCharAt(2, 1), out2.GetUCharAt(0, 0))
}

func TestConvolve2DKeepsChannels(t *testing.T) {
	gray := checker(t, 8, 8, 2)
	defer gray.Close()
	rgb := grayToRGB(t, gray)
	defer rgb.Close()

	out, err := Convolve2D(rgb, IdentityKernel(), ConvolveOptions{})
	require.NoError(t, err)
	defer out.Close()
	assert.Equal(t, gocv.MatTypeCV8UC3, out.Type())
	assert.Equal(t, rgb.ToBytes(), out.ToBytes())
}

func TestConvolve2DRejectsUnsupportedOptions(t *testing.T) {
	img := checker(t, 8, 8, 2)
	defer img.Close()

	cases := []struct {
		name   string
		kernel *mat.Dense
		opts   ConvolveOptions
		want   error
	}{
		{"stride 2", IdentityKernel(), ConvolveOptions{Stride: 2}, ErrNotSupported},
		{"unknown padding", IdentityKernel(), ConvolveOptions{Padding: "reflect"}, ErrNotSupported},
		{"even kernel", mat.NewDense(2, 2, []float64{1, 0, 0, 0}), ConvolveOptions{}, ErrEvenKernel},
		{"kernel larger than image", BoxKernel(9), ConvolveOptions{Padding: PaddingValid}, ErrInvalidShape},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := Convolve2D(img, tc.kernel, tc.opts)
			defer out.Close()
			assert.True(t, errors.Is(err, tc.want), "got %v", err)
		})
	}
}

func TestConvolve2DDenseMatchesMat(t *testing.T) {
	k := mat.NewDense(3, 3, []float64{
		1, 2, 0,
		-1, 0.5, 3,
		0, -2, 1,
	})
	f := func(r, c int) float32 { return float32((r*7+c*3)%11) - 4 }
	img := floatGrid(6, 7, f)
	defer img.Close()

	grid := mat.NewDense(6, 7, nil)
	for r := 0; r < 6; r++ {
		for c := 0; c < 7; c++ {
			grid.Set(r, c, float64(f(r, c)))
		}
	}

	for _, padding := range []Padding{PaddingSame, PaddingValid} {
		t.Run(string(padding), func(t *testing.T) {
			want, err := Convolve2D(img, k, ConvolveOptions{Padding: padding})
			require.NoError(t, err)
			defer want.Close()

			got, err := Convolve2DDense(grid, k, ConvolveOptions{Padding: padding})
			require.NoError(t, err)
			rows, cols := got.Dims()
			require.Equal(t, want.Rows(), rows)
			require.Equal(t, want.Cols(), cols)
			for r := 0; r < rows; r++ {
				for c := 0; c < cols; c++ {
					assert.InDelta(t, float64(want.GetFloatAt(r, c)), got.At(r, c), 1e-4)
				}
			}
		})
	}
}

func TestConvolve2DDenseIdentity(t *testing.T) {
	grid := mat.NewDense(3, 4, []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12})
	out, err := Convolve2DDense(grid, IdentityKernel(), ConvolveOptions{})
	require.NoError(t, err)
	assert.True(t, mat.Equal(grid, out))

	_, err = Convolve2DDense(grid, IdentityKernel(), ConvolveOptions{Stride: 3})
	assert.True(t, errors.Is(err, ErrNotSupported))
}
