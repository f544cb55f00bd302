// Pinhole camera model: projection, normalization and radial distortion
package geometry

import (
	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

var (
	// ErrNonPositiveDepth is returned when a point to project has Z <= 0.
	ErrNonPositiveDepth = errors.New("non-positive depth")
	// ErrZeroFocal is returned when a focal length used as a divisor is zero.
	ErrZeroFocal = errors.New("zero focal length")
	// ErrInvalidShape is returned when raw point rows have the wrong dimensionality.
	ErrInvalidShape = errors.New("invalid point shape")
)

// Intrinsics holds the pinhole camera parameters in pixels.
//
// Fy == 0 means the focal length in y was not supplied and Fx is used
// (square pixels). Cx and Cy default to 0, i.e. no principal point offset.
type Intrinsics struct {
	Fx float64 `yaml:"fx"`
	Fy float64 `yaml:"fy"`
	Cx float64 `yaml:"cx"`
	Cy float64 `yaml:"cy"`
}

// FocalY returns the effective focal length in y.
func (k Intrinsics) FocalY() float64 {
	if k.Fy == 0 {
		return k.Fx
	}
	return k.Fy
}

// Matrix returns the 3x3 camera matrix K.
func (k Intrinsics) Matrix() *mat.Dense {
	return mat.NewDense(3, 3, []float64{
		k.Fx, 0, k.Cx,
		0, k.FocalY(), k.Cy,
		0, 0, 1,
	})
}

// Distortion holds the even-order radial distortion coefficients.
// The zero value applies no distortion.
type Distortion struct {
	K1 float64 `yaml:"k1"`
	K2 float64 `yaml:"k2"`
}

// Transform distorts a single normalized point.
func (d Distortion) Transform(x, y float64) (float64, float64) {
	r2 := x*x + y*y
	scale := 1. + d.K1*r2 + d.K2*r2*r2
	return x * scale, y * scale
}

// FocalSweep configures ReprojectWithFocals. Aspect == 0 means 1.0.
type FocalSweep struct {
	Cx     float64 `yaml:"cx"`
	Cy     float64 `yaml:"cy"`
	Aspect float64 `yaml:"aspect"`
}

func (s FocalSweep) aspect() float64 {
	if s.Aspect == 0 {
		return 1.0
	}
	return s.Aspect
}

// ProjectPinhole projects camera-space points to pixel coordinates.
// Every point must have Z > 0; otherwise no result is returned.
func ProjectPinhole(points []r3.Vector, k Intrinsics) ([]r2.Point, error) {
	fy := k.FocalY()
	out := make([]r2.Point, len(points))
	for i, p := range points {
		if p.Z <= 0 {
			return nil, errors.Wrapf(ErrNonPositiveDepth, "point %d has Z=%g", i, p.Z)
		}
		out[i] = r2.Point{
			X: k.Fx*(p.X/p.Z) + k.Cx,
			Y: fy*(p.Y/p.Z) + k.Cy,
		}
	}
	return out, nil
}

// NormalizePoints maps pixel coordinates to normalized camera coordinates.
func NormalizePoints(points []r2.Point, k Intrinsics) ([]r2.Point, error) {
	fy := k.FocalY()
	if k.Fx == 0 || fy == 0 {
		return nil, errors.Wrapf(ErrZeroFocal, "fx=%g fy=%g", k.Fx, fy)
	}
	out := make([]r2.Point, len(points))
	for i, p := range points {
		out[i] = r2.Point{
			X: (p.X - k.Cx) / k.Fx,
			Y: (p.Y - k.Cy) / fy,
		}
	}
	return out, nil
}

// DenormalizePoints maps normalized camera coordinates back to pixels.
// It is the inverse of NormalizePoints.
func DenormalizePoints(points []r2.Point, k Intrinsics) []r2.Point {
	fy := k.FocalY()
	out := make([]r2.Point, len(points))
	for i, p := range points {
		out[i] = r2.Point{
			X: p.X*k.Fx + k.Cx,
			Y: p.Y*fy + k.Cy,
		}
	}
	return out
}

// RadialDistortNormalized applies the k1/k2 radial model to normalized points.
// Coefficients that fold the image at large radius are not rejected.
func RadialDistortNormalized(points []r2.Point, d Distortion) []r2.Point {
	out := make([]r2.Point, len(points))
	for i, p := range points {
		x, y := d.Transform(p.X, p.Y)
		out[i] = r2.Point{X: x, Y: y}
	}
	return out
}

// ReprojectWithFocals projects the same points once per focal length, in order.
// For each f, fx = f and fy = aspect*f.
func ReprojectWithFocals(points []r3.Vector, focals []float64, sweep FocalSweep) ([][]r2.Point, error) {
	outs := make([][]r2.Point, 0, len(focals))
	for _, f := range focals {
		uv, err := ProjectPinhole(points, Intrinsics{
			Fx: f,
			Fy: sweep.aspect() * f,
			Cx: sweep.Cx,
			Cy: sweep.Cy,
		})
		if err != nil {
			return nil, errors.Wrapf(err, "focal %g", f)
		}
		outs = append(outs, uv)
	}
	return outs, nil
}
