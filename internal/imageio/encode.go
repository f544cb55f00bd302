package imageio

import (
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"

	"cvtools/internal/core"
)

// Format is an output encoding.
type Format string

const (
	// FormatPNG is lossless and the default.
	FormatPNG Format = "png"
	// FormatJPEG is lossy at JPEGQuality.
	FormatJPEG Format = "jpeg"
)

// JPEGQuality is the fixed quality used for JPEG output.
const JPEGQuality = 95

// ParseFormat maps a format name or extension (with or without the dot) to a Format.
// The empty string selects PNG.
func ParseFormat(s string) (Format, error) {
	switch strings.TrimPrefix(strings.ToLower(s), ".") {
	case "", "png":
		return FormatPNG, nil
	case "jpg", "jpeg":
		return FormatJPEG, nil
	default:
		return "", errors.Wrap(ErrUnsupportedFormat, s)
	}
}

// FormatFromPath picks the output format from a file extension.
func FormatFromPath(path string) (Format, error) {
	ext := filepath.Ext(path)
	if ext == "" {
		return "", errors.Wrapf(ErrUnsupportedFormat, "%s has no extension", path)
	}
	return ParseFormat(ext)
}

// Encode converts an RGB (or gray) 8-bit Mat to OpenCV's BGR order and encodes it.
func Encode(mat gocv.Mat, format Format) ([]byte, error) {
	if err := core.ValidateImage(mat); err != nil {
		return nil, err
	}

	src := mat
	if mat.Channels() == 3 {
		bgr := gocv.NewMat()
		defer bgr.Close()
		gocv.CvtColor(mat, &bgr, gocv.ColorRGBToBGR)
		src = bgr
	}

	var (
		buf *gocv.NativeByteBuffer
		err error
	)
	switch format {
	case FormatPNG, "":
		buf, err = gocv.IMEncode(gocv.PNGFileExt, src)
	case FormatJPEG:
		buf, err = gocv.IMEncodeWithParams(gocv.JPEGFileExt, src, []int{int(gocv.IMWriteJpegQuality), JPEGQuality})
	default:
		return nil, errors.Wrap(ErrUnsupportedFormat, string(format))
	}
	if err != nil {
		return nil, errors.Wrap(err, "could not encode image")
	}
	defer buf.Close()

	return append([]byte(nil), buf.GetBytes()...), nil
}
