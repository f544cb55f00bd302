package demo

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"cvtools/internal/geometry"
)

// Series is a labelled set of projected points.
type Series struct {
	Label  string
	Points []r2.Point
}

// CameraResult holds everything the camera demo computed.
type CameraResult struct {
	Grid []r3.Vector
	// Projections has one series per configured focal plus the distorted one.
	Projections []Series
	Sweep       []Series
}

// Camera projects a synthetic plane with each configured focal, applies radial
// distortion in normalized space, runs the focal sweep and writes both sets as CSV.
func (r *Runner) Camera() (*CameraResult, error) {
	cc := r.cfg.Camera
	grid := geometry.PlaneGrid(cc.GridSize, -1, 1, cc.GridDepth)
	result := &CameraResult{Grid: grid}

	for _, f := range cc.Focals {
		k := geometry.Intrinsics{Fx: f, Fy: f, Cx: cc.Intrinsics.Cx, Cy: cc.Intrinsics.Cy}
		uv, err := geometry.ProjectPinhole(grid, k)
		if err != nil {
			return nil, err
		}
		result.Projections = append(result.Projections, Series{Label: focalLabel(f), Points: uv})
	}

	uv, err := geometry.ProjectPinhole(grid, cc.Intrinsics)
	if err != nil {
		return nil, err
	}
	xy, err := geometry.NormalizePoints(uv, cc.Intrinsics)
	if err != nil {
		return nil, err
	}
	distorted := geometry.DenormalizePoints(geometry.RadialDistortNormalized(xy, cc.Distortion), cc.Intrinsics)
	result.Projections = append(result.Projections, Series{
		Label:  focalLabel(cc.Intrinsics.Fx) + "+dist",
		Points: distorted,
	})

	sweep, err := geometry.ReprojectWithFocals(grid, cc.Sweep, geometry.FocalSweep{
		Cx:     cc.Intrinsics.Cx,
		Cy:     cc.Intrinsics.Cy,
		Aspect: cc.Aspect,
	})
	if err != nil {
		return nil, err
	}
	for i, f := range cc.Sweep {
		result.Sweep = append(result.Sweep, Series{Label: focalLabel(f), Points: sweep[i]})
	}

	projPath := filepath.Join(r.cfg.OutputDir, "camera_projection.csv")
	if err := writeSeries(projPath, result.Projections); err != nil {
		return nil, err
	}
	sweepPath := filepath.Join(r.cfg.OutputDir, "camera_sweep.csv")
	if err := writeSeries(sweepPath, result.Sweep); err != nil {
		return nil, err
	}

	r.logger.WithFields(logrus.Fields{
		"points":     len(grid),
		"focals":     cc.Focals,
		"sweep":      cc.Sweep,
		"k1":         cc.Distortion.K1,
		"k2":         cc.Distortion.K2,
		"projection": projPath,
		"sweep_csv":  sweepPath,
	}).Info("Camera demo completed")

	return result, nil
}

func focalLabel(f float64) string {
	return fmt.Sprintf("f=%g", f)
}

func writeSeries(path string, series []Series) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating %s", path)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write([]string{"series", "index", "u", "v"}); err != nil {
		return errors.Wrapf(err, "writing %s", path)
	}
	for _, s := range series {
		for i, p := range s.Points {
			row := []string{
				s.Label,
				strconv.Itoa(i),
				strconv.FormatFloat(p.X, 'f', 6, 64),
				strconv.FormatFloat(p.Y, 'f', 6, 64),
			}
			if err := w.Write(row); err != nil {
				return errors.Wrapf(err, "writing %s", path)
			}
		}
	}
	w.Flush()
	return errors.Wrapf(w.Error(), "writing %s", path)
}
