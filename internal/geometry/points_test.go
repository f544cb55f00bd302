package geometry

import (
	"testing"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPointsFromRowsRejectsWrongDimensionality(t *testing.T) {
	_, err := Points3DFromRows([][]float64{{1, 2, 3}, {1, 2}})
	assert.True(t, errors.Is(err, ErrInvalidShape))

	_, err = Points2DFromRows([][]float64{{1, 2, 3}})
	assert.True(t, errors.Is(err, ErrInvalidShape))
}

func TestPointsFromRows(t *testing.T) {
	p3, err := Points3DFromRows([][]float64{{1, 2, 4}})
	require.NoError(t, err)
	assert.Equal(t, 4.0, p3[0].Z)

	p2, err := Points2DFromRows([][]float64{{5, 6}})
	require.NoError(t, err)
	assert.Equal(t, r2.Point{X: 5, Y: 6}, p2[0])
}

func TestPlaneGrid(t *testing.T) {
	g := PlaneGrid(5, -1, 1, 3)
	require.Len(t, g, 25)
	assert.Equal(t, -1.0, g[0].X)
	assert.Equal(t, -1.0, g[0].Y)
	assert.Equal(t, -0.5, g[1].X)
	assert.Equal(t, 1.0, g[24].X)
	assert.Equal(t, 1.0, g[24].Y)
	for _, p := range g {
		assert.Equal(t, 3.0, p.Z)
	}
	assert.Nil(t, PlaneGrid(0, 0, 1, 1))
}

func TestDense(t *testing.T) {
	m := Dense([]r2.Point{{X: 1, Y: 2}, {X: 3, Y: 4}})
	r, c := m.Dims()
	assert.Equal(t, 2, r)
	assert.Equal(t, 2, c)
	assert.Equal(t, 4.0, m.At(1, 1))
}
