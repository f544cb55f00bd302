package demo

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"cvtools/internal/color"
	"cvtools/internal/imageio"
)

// ColorResult summarizes the color demo on one image.
type ColorResult struct {
	HSVMin, HSVMax float64
	// LabShape is rows, cols, channels.
	LabShape  [3]int
	Histogram color.Histogram
	// Quantized maps K to the written file.
	Quantized map[int]string
	ReducedKB float64
	// PaletteSize is the number of colors QuantizeUniform can emit at ReduceLevels.
	PaletteSize int
}

// Color runs the color conversions, histogram and quantization on an RGB image.
func (r *Runner) Color(img gocv.Mat, name string) (*ColorResult, error) {
	cc := r.cfg.Color
	dir, err := r.imageDir(name)
	if err != nil {
		return nil, err
	}
	format, err := imageio.ParseFormat(string(cc.Format))
	if err != nil {
		return nil, err
	}

	result := &ColorResult{Quantized: make(map[int]string)}

	hsv, err := color.RGBToHSV01(img)
	if err != nil {
		return nil, err
	}
	result.HSVMin, result.HSVMax = channelRange(hsv)
	hsv.Close()

	lab, err := color.RGBToLab(img)
	if err != nil {
		return nil, err
	}
	result.LabShape = [3]int{lab.Rows(), lab.Cols(), lab.Channels()}
	lab.Close()

	r.logger.WithFields(logrus.Fields{
		"image":     name,
		"hsv_min":   result.HSVMin,
		"hsv_max":   result.HSVMax,
		"lab_shape": result.LabShape,
	}).Info("Color conversions")

	result.Histogram, err = color.ColorHistogram(img, cc.HistogramBins)
	if err != nil {
		return nil, err
	}
	if err := writeHistogram(filepath.Join(dir, "histogram.csv"), result.Histogram); err != nil {
		return nil, err
	}

	for _, k := range cc.Levels {
		q, err := color.QuantizeUniform(img, k)
		if err != nil {
			return nil, err
		}
		path := filepath.Join(dir, fmt.Sprintf("quantized_k%d.png", k))
		err = r.loader.SaveRGB(q, path)
		if err == nil {
			r.logReport(r.evaluator.GenerateReport(img, q, "quantize"), logrus.Fields{"image": name, "k": k})
		}
		q.Close()
		if err != nil {
			return nil, err
		}
		result.Quantized[k] = path
	}

	reducedPath := filepath.Join(dir, fmt.Sprintf("reduced_k%d.%s", cc.ReduceLevels, format))
	reduced, kb, err := color.ReduceImageSizeByColor(img, cc.ReduceLevels, color.ReduceOptions{
		Format:     format,
		OutputPath: reducedPath,
	})
	if err != nil {
		return nil, err
	}
	reduced.Close()
	result.ReducedKB = kb

	palette, err := color.Palette(cc.ReduceLevels)
	if err != nil {
		return nil, err
	}
	result.PaletteSize = len(palette)

	r.logger.WithFields(logrus.Fields{
		"image":   name,
		"k":       cc.ReduceLevels,
		"format":  format,
		"size_kb": math.Round(kb*10) / 10,
		"palette": result.PaletteSize,
		"output":  reducedPath,
	}).Info("Color reduction")

	return result, nil
}

// channelRange returns the minimum and maximum over all channels.
func channelRange(m gocv.Mat) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	channels := gocv.Split(m)
	for _, ch := range channels {
		minVal, maxVal, _, _ := gocv.MinMaxLoc(ch)
		lo = math.Min(lo, float64(minVal))
		hi = math.Max(hi, float64(maxVal))
		ch.Close()
	}
	return lo, hi
}

func writeHistogram(path string, h color.Histogram) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating %s", path)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write([]string{"lo", "hi", "r", "g", "b"}); err != nil {
		return errors.Wrapf(err, "writing %s", path)
	}
	for i := range h.R {
		row := []string{
			strconv.FormatFloat(h.Edges[i], 'f', -1, 64),
			strconv.FormatFloat(h.Edges[i+1], 'f', -1, 64),
			strconv.FormatInt(h.R[i], 10),
			strconv.FormatInt(h.G[i], 10),
			strconv.FormatInt(h.B[i], 10),
		}
		if err := w.Write(row); err != nil {
			return errors.Wrapf(err, "writing %s", path)
		}
	}
	w.Flush()
	return errors.Wrapf(w.Error(), "writing %s", path)
}
