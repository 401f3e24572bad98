// Package imageproc normalises uploaded menu photos into web-sized JPEGs.
package imageproc

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"net/http"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/rwcarlsen/goexif/exif"

	_ "image/gif"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

const (
	MenuPhotoMaxSide = 1200
	MenuPhotoQuality = 82
)

var (
	ErrEmptyImage       = errors.New("image is empty")
	ErrUnsupportedImage = errors.New("unsupported image type")
)

var allowedContentTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
	"image/bmp":  true,
	"image/tiff": true,
	"image/heic": true,
	"image/heif": true,
}

type SourceMeta struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Format string `json:"format"`
}

type TooLargeError struct {
	Size, Limit int64
}

func (e *TooLargeError) Error() string {
	return fmt.Sprintf("image is %d bytes, limit is %d", e.Size, e.Limit)
}

func AllowedContentType(contentType string) bool {
	ct := strings.TrimSpace(strings.ToLower(contentType))
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	return allowedContentTypes[ct]
}

func DetectContentType(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	if isHeifFamily(data) {
		return "image/heic"
	}
	sample := data
	if len(sample) > 512 {
		sample = sample[:512]
	}
	return http.DetectContentType(sample)
}

// PrepareMenuPhoto checks an upload and re-encodes it for the menu.
func PrepareMenuPhoto(data []byte, maxBytes int64) ([]byte, SourceMeta, error) {
	if len(data) == 0 {
		return nil, SourceMeta{}, ErrEmptyImage
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return nil, SourceMeta{}, &TooLargeError{Size: int64(len(data)), Limit: maxBytes}
	}
	if !AllowedContentType(DetectContentType(data)) {
		return nil, SourceMeta{}, ErrUnsupportedImage
	}
	return EncodeJpegFitInside(data, MenuPhotoMaxSide, MenuPhotoQuality)
}

func isHeifFamily(data []byte) bool {
	// ISO BMFF: [size:4][ftyp:4][brand:4]
	if len(data) < 12 || string(data[4:8]) != "ftyp" {
		return false
	}
	switch string(data[8:12]) {
	case "heic", "heix", "hevc", "hevx", "mif1", "msf1", "heif":
		return true
	}
	return false
}

func decodeAndAutoRotate(data []byte) (image.Image, string, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		if isHeifFamily(data) {
			if heicImg, heicErr := decodeHEIC(data); heicErr == nil {
				return heicImg, "heic", nil
			}
		}
		return nil, "", err
	}

	if strings.EqualFold(format, "jpeg") {
		img = applyOrientation(img, exifOrientation(data))
	}
	return img, format, nil
}

// exifOrientation returns 1 when the tag is missing or unreadable.
func exifOrientation(data []byte) int {
	ex, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return 1
	}
	tag, err := ex.Get(exif.Orientation)
	if err != nil {
		return 1
	}
	orient, err := tag.Int(0)
	if err != nil {
		return 1
	}
	return orient
}

func applyOrientation(img image.Image, orient int) image.Image {
	switch orient {
	case 2:
		return imaging.FlipH(img)
	case 3:
		return imaging.Rotate180(img)
	case 4:
		return imaging.FlipV(img)
	case 5:
		return imaging.Transpose(img)
	case 6:
		return imaging.Rotate270(img)
	case 7:
		return imaging.Transverse(img)
	case 8:
		return imaging.Rotate90(img)
	}
	return img
}

// EncodeJpegFitInside scales the image down so neither side exceeds
// maxSide. Smaller images keep their size.
func EncodeJpegFitInside(data []byte, maxSide int, quality int) ([]byte, SourceMeta, error) {
	if maxSide <= 0 {
		return nil, SourceMeta{}, errors.New("maxSide must be > 0")
	}
	img, format, err := decodeAndAutoRotate(data)
	if err != nil {
		return nil, SourceMeta{}, err
	}

	b := img.Bounds()
	meta := SourceMeta{Width: b.Dx(), Height: b.Dy(), Format: format}

	if b.Dx() > maxSide || b.Dy() > maxSide {
		img = imaging.Fit(img, maxSide, maxSide, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, SourceMeta{}, err
	}
	return buf.Bytes(), meta, nil
}
