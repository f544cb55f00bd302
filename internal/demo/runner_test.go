package demo

import (
	"encoding/csv"
	"image"
	stdcolor "image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cvtools/internal/algorithms"
	"cvtools/internal/config"
	"cvtools/internal/imageio"
)

func newTestRunner(t *testing.T) (*Runner, config.Config) {
	t.Helper()
	root := t.TempDir()
	cfg := config.Default()
	cfg.DataDir = filepath.Join(root, "data")
	cfg.OutputDir = filepath.Join(root, "out")
	require.NoError(t, os.MkdirAll(cfg.DataDir, 0o755))
	require.NoError(t, os.MkdirAll(cfg.OutputDir, 0o755))

	logger, _ := test.NewNullLogger()
	return NewRunner(cfg, logger), cfg
}

func writeTestImage(t *testing.T, path string) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 32, 24))
	for y := 0; y < 24; y++ {
		for x := 0; x < 32; x++ {
			v := uint8(0)
			if x >= 16 {
				v = 255
			}
			img.SetNRGBA(x, y, stdcolor.NRGBA{R: v, G: uint8(y * 10), B: uint8(x * 8), A: 255})
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestCamera(t *testing.T) {
	r, cfg := newTestRunner(t)

	res, err := r.Camera()
	require.NoError(t, err)
	require.Len(t, res.Grid, 25)

	require.Len(t, res.Projections, 3)
	assert.Equal(t, "f=400", res.Projections[0].Label)
	assert.Equal(t, "f=800", res.Projections[1].Label)
	assert.Equal(t, "f=800+dist", res.Projections[2].Label)

	// Last grid point is (1, 1, 3).
	last := res.Projections[1].Points[24]
	assert.InDelta(t, 800.0/3+320, last.X, 1e-9)
	assert.InDelta(t, 800.0/3+240, last.Y, 1e-9)

	// The grid center lies on the optical axis and is unaffected by distortion.
	center := res.Projections[2].Points[12]
	assert.InDelta(t, 320.0, center.X, 1e-9)
	assert.InDelta(t, 240.0, center.Y, 1e-9)

	require.Len(t, res.Sweep, 3)
	assert.Less(t, res.Sweep[0].Points[24].X, res.Sweep[2].Points[24].X)

	rows := readCSV(t, filepath.Join(cfg.OutputDir, "camera_projection.csv"))
	assert.Len(t, rows, 1+3*25)
	assert.Equal(t, []string{"series", "index", "u", "v"}, rows[0])

	rows = readCSV(t, filepath.Join(cfg.OutputDir, "camera_sweep.csv"))
	assert.Len(t, rows, 1+3*25)
}

func TestFilterStepsAreRegistered(t *testing.T) {
	r, _ := newTestRunner(t)
	for _, step := range r.FilterSteps() {
		assert.True(t, algorithms.IsValidAlgorithm(step.Algorithm), step.Algorithm)
		assert.NoError(t, algorithms.ValidateParameters(step.Algorithm, step.Params), step.Algorithm)
	}
}

func TestImageWritesOutputs(t *testing.T) {
	r, cfg := newTestRunner(t)
	path := filepath.Join(cfg.DataDir, "step.png")
	writeTestImage(t, path)

	img, err := imageio.NewImageLoader(r.logger).LoadRGB(path)
	require.NoError(t, err)
	defer img.Close()

	colorRes, err := r.Color(img, "step")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, colorRes.HSVMin, 0.0)
	assert.LessOrEqual(t, colorRes.HSVMax, 1.0)
	assert.Equal(t, [3]int{24, 32, 3}, colorRes.LabShape)
	assert.Len(t, colorRes.Histogram.R, 32)
	assert.Greater(t, colorRes.ReducedKB, 0.0)
	assert.Equal(t, 64, colorRes.PaletteSize)
	for _, k := range cfg.Color.Levels {
		assert.FileExists(t, colorRes.Quantized[k])
	}
	assert.FileExists(t, filepath.Join(cfg.OutputDir, "step", "histogram.csv"))
	assert.FileExists(t, filepath.Join(cfg.OutputDir, "step", "reduced_k64.png"))

	written, err := r.Filters(img, "step")
	require.NoError(t, err)
	assert.Len(t, written, 5)
	for _, out := range written {
		assert.FileExists(t, out)
	}
}

func TestRunSelection(t *testing.T) {
	t.Run("no images", func(t *testing.T) {
		r, _ := newTestRunner(t)
		err := r.Run("", false)
		assert.True(t, errors.Is(err, ErrNoImages))

		err = r.Run("", true)
		assert.True(t, errors.Is(err, ErrNoImages))
	})

	t.Run("missing explicit image", func(t *testing.T) {
		r, cfg := newTestRunner(t)
		assert.Error(t, r.Run(filepath.Join(cfg.DataDir, "nope.png"), false))
	})

	t.Run("all images", func(t *testing.T) {
		r, cfg := newTestRunner(t)
		writeTestImage(t, filepath.Join(cfg.DataDir, "a.png"))
		writeTestImage(t, filepath.Join(cfg.DataDir, "b.png"))

		require.NoError(t, r.Run("", true))
		assert.FileExists(t, filepath.Join(cfg.OutputDir, "camera_projection.csv"))
		assert.FileExists(t, filepath.Join(cfg.OutputDir, "a", "canny.png"))
		assert.FileExists(t, filepath.Join(cfg.OutputDir, "b", "laplacian.png"))
	})

	t.Run("first image", func(t *testing.T) {
		r, cfg := newTestRunner(t)
		writeTestImage(t, filepath.Join(cfg.DataDir, "a.png"))
		writeTestImage(t, filepath.Join(cfg.DataDir, "b.png"))

		require.NoError(t, r.Run("", false))
		assert.DirExists(t, filepath.Join(cfg.OutputDir, "a"))
		assert.NoDirExists(t, filepath.Join(cfg.OutputDir, "b"))
	})
}
