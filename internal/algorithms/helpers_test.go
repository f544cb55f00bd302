package algorithms

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

// checker builds an 8-bit gray checkerboard with square cells of side sz.
func checker(t *testing.T, h, w, sz int) gocv.Mat {
	t.Helper()
	data := make([]byte, h*w)
	for r := 0; r < h; r++ {
		for c := 0; c < w; c++ {
			if ((r/sz)+(c/sz))%2 == 0 {
				data[r*w+c] = 255
			}
		}
	}
	m, err := gocv.NewMatFromBytes(h, w, gocv.MatTypeCV8UC1, data)
	require.NoError(t, err)
	return m
}

// floatGrid builds a CV_32F image with f(r, c) at each sample.
func floatGrid(h, w int, f func(r, c int) float32) gocv.Mat {
	m := gocv.NewMatWithSize(h, w, gocv.MatTypeCV32F)
	for r := 0; r < h; r++ {
		for c := 0; c < w; c++ {
			m.SetFloatAt(r, c, f(r, c))
		}
	}
	return m
}

// stepEdge builds an 8-bit gray image that is 0 left of column at and 255 from it on.
func stepEdge(t *testing.T, h, w, at int) gocv.Mat {
	t.Helper()
	data := make([]byte, h*w)
	for r := 0; r < h; r++ {
		for c := at; c < w; c++ {
			data[r*w+c] = 255
		}
	}
	m, err := gocv.NewMatFromBytes(h, w, gocv.MatTypeCV8UC1, data)
	require.NoError(t, err)
	return m
}

func grayToRGB(t *testing.T, gray gocv.Mat) gocv.Mat {
	t.Helper()
	rgb := gocv.NewMat()
	gocv.CvtColor(gray, &rgb, gocv.ColorGrayToBGR)
	return rgb
}

func distinctBytes(m gocv.Mat) map[uint8]int {
	seen := make(map[uint8]int)
	for _, b := range m.ToBytes() {
		seen[b]++
	}
	return seen
}
