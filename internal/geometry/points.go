package geometry

import (
	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Points3DFromRows converts N rows of (X, Y, Z) into a point set.
func Points3DFromRows(rows [][]float64) ([]r3.Vector, error) {
	out := make([]r3.Vector, len(rows))
	for i, row := range rows {
		if len(row) != 3 {
			return nil, errors.Wrapf(ErrInvalidShape, "row %d has %d values, want 3", i, len(row))
		}
		out[i] = r3.Vector{X: row[0], Y: row[1], Z: row[2]}
	}
	return out, nil
}

// Points2DFromRows converts N rows of (u, v) or (x, y) into a point set.
func Points2DFromRows(rows [][]float64) ([]r2.Point, error) {
	out := make([]r2.Point, len(rows))
	for i, row := range rows {
		if len(row) != 2 {
			return nil, errors.Wrapf(ErrInvalidShape, "row %d has %d values, want 2", i, len(row))
		}
		out[i] = r2.Point{X: row[0], Y: row[1]}
	}
	return out, nil
}

// Dense returns the points as an N x 2 matrix.
func Dense(points []r2.Point) *mat.Dense {
	if len(points) == 0 {
		return &mat.Dense{}
	}
	m := mat.NewDense(len(points), 2, nil)
	for i, p := range points {
		m.Set(i, 0, p.X)
		m.Set(i, 1, p.Y)
	}
	return m
}

// PlaneGrid returns an n x n grid of points spanning [lo, hi] in X and Y at depth z,
// row-major with Y varying slowest.
func PlaneGrid(n int, lo, hi, z float64) []r3.Vector {
	if n < 1 {
		return nil
	}
	coords := make([]float64, n)
	for i := range coords {
		if n == 1 {
			coords[i] = lo
			continue
		}
		coords[i] = lo + (hi-lo)*float64(i)/float64(n-1)
	}
	out := make([]r3.Vector, 0, n*n)
	for _, y := range coords {
		for _, x := range coords {
			out = append(out, r3.Vector{X: x, Y: y, Z: z})
		}
	}
	return out
}
