// Demo runner tying the geometry, color and filter kernels together
package demo

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"cvtools/internal/config"
	"cvtools/internal/imageio"
	"cvtools/internal/metrics"
)

// ErrNoImages is returned when no input image can be found.
var ErrNoImages = errors.New("no images found")

// Runner executes the camera, color and filter demos and writes their outputs.
type Runner struct {
	cfg       config.Config
	loader    *imageio.ImageLoader
	evaluator *metrics.Evaluator
	logger    logrus.FieldLogger
}

// NewRunner creates a runner for an already validated configuration.
func NewRunner(cfg config.Config, logger logrus.FieldLogger) *Runner {
	return &Runner{
		cfg:       cfg,
		loader:    imageio.NewImageLoader(logger),
		evaluator: metrics.NewEvaluator(),
		logger:    logger,
	}
}

// Run picks the inputs the same way the command line does: all images in the
// data directory, one explicit image, or the first image found.
func (r *Runner) Run(imgPath string, all bool) error {
	if err := os.MkdirAll(r.cfg.OutputDir, 0o755); err != nil {
		return errors.Wrapf(err, "creating %s", r.cfg.OutputDir)
	}

	var paths []string
	switch {
	case all:
		images, err := imageio.ListImages(r.cfg.DataDir)
		if err != nil {
			return err
		}
		if len(images) == 0 {
			return errors.Wrapf(ErrNoImages, "in %s", r.cfg.DataDir)
		}
		r.logger.WithFields(logrus.Fields{
			"count":    len(images),
			"data_dir": r.cfg.DataDir,
		}).Info("Processing all images")
		paths = images

	case imgPath != "":
		if _, err := os.Stat(imgPath); err != nil {
			return errors.Wrapf(err, "image %s", imgPath)
		}
		paths = []string{imgPath}

	default:
		images, err := imageio.ListImages(r.cfg.DataDir)
		if err != nil {
			return err
		}
		if len(images) == 0 {
			return errors.Wrapf(ErrNoImages, "put images in %s or pass --img / --all", r.cfg.DataDir)
		}
		r.logger.WithField("image", images[0]).Info("Using first image found")
		paths = images[:1]
	}

	if _, err := r.Camera(); err != nil {
		return errors.Wrap(err, "camera demo")
	}

	for _, path := range paths {
		if err := r.Image(path); err != nil {
			return err
		}
	}

	return nil
}

// Image loads one image and runs the color and filter demos on it.
func (r *Runner) Image(path string) error {
	img, err := r.loader.LoadRGB(path)
	if err != nil {
		return err
	}
	defer img.Close()

	name := stem(path)
	if _, err := r.Color(img, name); err != nil {
		return errors.Wrapf(err, "color demo on %s", path)
	}
	if _, err := r.Filters(img, name); err != nil {
		return errors.Wrapf(err, "filter demo on %s", path)
	}
	return nil
}

func (r *Runner) imageDir(name string) (string, error) {
	dir := filepath.Join(r.cfg.OutputDir, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrapf(err, "creating %s", dir)
	}
	return dir, nil
}

func (r *Runner) logReport(report metrics.Report, fields logrus.Fields) {
	entry := r.logger.WithFields(fields).WithField("step", report.Step)
	for name, value := range report.Metrics {
		entry = entry.WithField(name, value)
	}
	entry.Info("Step completed")
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// displayable converts a filter response to 8 bits for saving.
// Float responses are absolute-valued and saturated.
func displayable(m gocv.Mat) gocv.Mat {
	out := gocv.NewMat()
	if m.Type() == gocv.MatTypeCV8U || m.Type() == gocv.MatTypeCV8UC3 {
		m.CopyTo(&out)
		return out
	}
	gocv.ConvertScaleAbs(m, &out, 1, 0)
	return out
}
