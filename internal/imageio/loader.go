// Image loading and saving with an explicit channel-order contract
package imageio

import (
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
	"gocv.io/x/gocv"

	"cvtools/internal/core"
)

// ErrUnsupportedFormat is returned for output formats the encoder does not handle.
var ErrUnsupportedFormat = errors.New("unsupported image format")

var supportedExtensions = []string{".jpg", ".jpeg", ".png", ".bmp", ".tif", ".tiff", ".webp"}

// ImageLoader handles image file operations. Every Mat it returns is RGB.
type ImageLoader struct {
	logger logrus.FieldLogger
}

func NewImageLoader(logger logrus.FieldLogger) *ImageLoader {
	return &ImageLoader{
		logger: logger,
	}
}

// LoadRGB decodes a file with OpenCV, which declares BGR order, and converts it to RGB.
// Any file OpenCV can decode is accepted; the extension is not checked.
func (il *ImageLoader) LoadRGB(path string) (gocv.Mat, error) {
	il.logger.WithField("filepath", path).Debug("Loading image")

	bgr := gocv.IMRead(path, gocv.IMReadColor)
	defer bgr.Close()
	if bgr.Empty() {
		return gocv.NewMat(), errors.Errorf("failed to load image: %s", path)
	}

	rgb, err := core.ToRGB(bgr, core.OrderBGR)
	if err != nil {
		return gocv.NewMat(), errors.Wrapf(err, "converting %s", path)
	}

	meta := core.MetadataOf(rgb, path)
	il.logger.WithFields(logrus.Fields{
		"filepath": path,
		"width":    meta.Width,
		"height":   meta.Height,
		"channels": meta.Channels,
		"type":     int(meta.Type),
		"format":   meta.Format,
	}).Info("Image loaded successfully")

	return rgb, nil
}

// DecodeRGB decodes a stream with the Go image decoders, which declare RGB order.
func (il *ImageLoader) DecodeRGB(r io.Reader) (gocv.Mat, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return gocv.NewMat(), errors.Wrap(err, "decoding image")
	}

	mat, err := MatFromImage(img)
	if err != nil {
		return gocv.NewMat(), err
	}

	il.logger.WithFields(logrus.Fields{
		"format": format,
		"width":  mat.Cols(),
		"height": mat.Rows(),
	}).Debug("Image decoded")

	return mat, nil
}

// MatFromImage copies img into a CV_8UC3 Mat in RGB order. Alpha is dropped
// after un-premultiplying.
func MatFromImage(img image.Image) (gocv.Mat, error) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 {
		return gocv.NewMat(), core.ErrEmptyImage
	}

	data := make([]byte, 0, w*h*3)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			data = append(data, c.R, c.G, c.B)
		}
	}
	return gocv.NewMatFromBytes(h, w, gocv.MatTypeCV8UC3, data)
}

// SaveRGB encodes an RGB or gray Mat according to the path extension and writes it.
func (il *ImageLoader) SaveRGB(mat gocv.Mat, path string) error {
	il.logger.WithField("filepath", path).Debug("Saving image")

	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}

	data, err := Encode(mat, format)
	if err != nil {
		return errors.Wrapf(err, "encoding %s", path)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "failed to save image: %s", path)
	}

	il.logger.WithFields(logrus.Fields{
		"filepath": path,
		"width":    mat.Cols(),
		"height":   mat.Rows(),
		"channels": mat.Channels(),
		"bytes":    len(data),
	}).Info("Image saved successfully")

	return nil
}

// IsSupported reports whether the path has a supported image extension.
func IsSupported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, format := range supportedExtensions {
		if ext == format {
			return true
		}
	}
	return false
}

// ListImages returns the supported image files directly under dir, sorted.
// A missing directory yields an empty list.
func ListImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "listing %s", dir)
	}

	var out []string
	for _, e := range entries {
		if e.Type().IsRegular() && IsSupported(e.Name()) {
			out = append(out, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(out)
	return out, nil
}
