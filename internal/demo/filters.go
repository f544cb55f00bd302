package demo

import (
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"cvtools/internal/algorithms"
)

// FilterStep is one registry call of the filter demo.
type FilterStep struct {
	Algorithm string
	Params    map[string]interface{}
}

// FilterSteps returns the filter demo sequence for the configuration.
func (r *Runner) FilterSteps() []FilterStep {
	fc := r.cfg.Filters
	return []FilterStep{
		{Algorithm: "convolve_box", Params: map[string]interface{}{
			"kernel_size": float64(fc.BoxSize),
			"padding":     string(algorithms.PaddingSame),
		}},
		{Algorithm: "sobel_x", Params: map[string]interface{}{}},
		{Algorithm: "sobel_y", Params: map[string]interface{}{}},
		{Algorithm: "canny", Params: map[string]interface{}{
			"low_threshold":  fc.CannyLow,
			"high_threshold": fc.CannyHigh,
		}},
		{Algorithm: "laplacian", Params: map[string]interface{}{
			"ksize": float64(fc.LaplacianKSize),
		}},
	}
}

// Filters runs every filter step on an RGB image and saves an 8-bit view of each output.
// The returned map goes from algorithm name to written file.
func (r *Runner) Filters(img gocv.Mat, name string) (map[string]string, error) {
	dir, err := r.imageDir(name)
	if err != nil {
		return nil, err
	}

	written := make(map[string]string)
	for _, step := range r.FilterSteps() {
		out, err := algorithms.Apply(step.Algorithm, img, step.Params)
		if err != nil {
			return nil, errors.Wrapf(err, "step %s", step.Algorithm)
		}

		report := r.evaluator.GenerateReport(img, out, step.Algorithm)

		view := displayable(out)
		out.Close()
		path := filepath.Join(dir, step.Algorithm+".png")
		err = r.loader.SaveRGB(view, path)
		view.Close()
		if err != nil {
			return nil, err
		}

		r.logReport(report, logrus.Fields{"image": name, "output": path})
		written[step.Algorithm] = path
	}

	return written, nil
}
