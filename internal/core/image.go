// Image validation, channel order and grayscale derivation shared by the kernels
package core

import (
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

var (
	// ErrEmptyImage is returned for an empty Mat.
	ErrEmptyImage = errors.New("image is empty")
	// ErrUnsupportedChannels is returned when a Mat has a channel count the operation cannot handle.
	ErrUnsupportedChannels = errors.New("unsupported channel count")
)

// MaxDimension bounds image width and height.
const MaxDimension = 16384

// ChannelOrder is the channel layout a decoder declares for three-channel output.
type ChannelOrder int

const (
	// OrderRGB is the layout every kernel expects.
	OrderRGB ChannelOrder = iota
	// OrderBGR is OpenCV's native decode layout.
	OrderBGR
)

func (o ChannelOrder) String() string {
	switch o {
	case OrderRGB:
		return "RGB"
	case OrderBGR:
		return "BGR"
	default:
		return "unknown"
	}
}

// Metadata contains image information
type Metadata struct {
	Width    int
	Height   int
	Channels int
	Type     gocv.MatType
	Format   string
}

// MetadataOf describes mat, taking the format from the file extension of path.
func MetadataOf(mat gocv.Mat, path string) Metadata {
	return Metadata{
		Width:    mat.Cols(),
		Height:   mat.Rows(),
		Channels: mat.Channels(),
		Type:     mat.Type(),
		Format:   FormatFromPath(path),
	}
}

// FormatFromPath extracts the lower-case image format from a file path.
func FormatFromPath(path string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if ext == "" {
		return "unknown"
	}
	return ext
}

// ValidateImage validates an OpenCV Mat for basic requirements
func ValidateImage(mat gocv.Mat) error {
	if mat.Empty() {
		return ErrEmptyImage
	}

	if mat.Cols() <= 0 || mat.Rows() <= 0 {
		return errors.Errorf("invalid dimensions: %dx%d", mat.Cols(), mat.Rows())
	}

	channels := mat.Channels()
	if channels < 1 || channels > 4 {
		return errors.Wrapf(ErrUnsupportedChannels, "%d channels", channels)
	}

	if mat.Cols() > MaxDimension || mat.Rows() > MaxDimension {
		return errors.Errorf("image too large: %dx%d (max: %d)", mat.Cols(), mat.Rows(), MaxDimension)
	}

	return nil
}

// ToRGB returns an RGB copy of a three-channel mat decoded with the given order.
// Single-channel mats are cloned unchanged.
func ToRGB(mat gocv.Mat, order ChannelOrder) (gocv.Mat, error) {
	if err := ValidateImage(mat); err != nil {
		return gocv.NewMat(), err
	}

	switch mat.Channels() {
	case 1:
		return mat.Clone(), nil
	case 3:
	default:
		return gocv.NewMat(), errors.Wrapf(ErrUnsupportedChannels, "cannot convert %d channels to RGB", mat.Channels())
	}

	switch order {
	case OrderRGB:
		return mat.Clone(), nil
	case OrderBGR:
		rgb := gocv.NewMat()
		gocv.CvtColor(mat, &rgb, gocv.ColorBGRToRGB)
		return rgb, nil
	default:
		return gocv.NewMat(), errors.Errorf("unknown channel order %d", order)
	}
}

// ToGray returns a single-channel view of an RGB(A) or gray image as a new Mat.
func ToGray(mat gocv.Mat) (gocv.Mat, error) {
	if err := ValidateImage(mat); err != nil {
		return gocv.NewMat(), err
	}

	gray := gocv.NewMat()
	switch mat.Channels() {
	case 1:
		mat.CopyTo(&gray)
	case 3:
		gocv.CvtColor(mat, &gray, gocv.ColorRGBToGray)
	case 4:
		gocv.CvtColor(mat, &gray, gocv.ColorRGBAToGray)
	default:
		gray.Close()
		return gocv.NewMat(), errors.Wrapf(ErrUnsupportedChannels, "cannot derive grayscale from %d channels", mat.Channels())
	}
	return gray, nil
}

// RequireRGB checks that mat is a non-empty 8-bit three-channel image.
func RequireRGB(mat gocv.Mat) error {
	if err := ValidateImage(mat); err != nil {
		return err
	}
	if mat.Type() != gocv.MatTypeCV8UC3 {
		return errors.Wrapf(ErrUnsupportedChannels, "want 8-bit RGB, got type %v", mat.Type())
	}
	return nil
}
