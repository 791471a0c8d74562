// Package imageproc prepares identity document photographs for OCR.
package imageproc

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
)

var (
	// ErrEmptyImage is returned when an upload carries no bytes.
	ErrEmptyImage = errors.New("empty image")
	// ErrUndecodable wraps decoder failures for unsupported or corrupt uploads.
	ErrUndecodable = errors.New("undecodable image")
)

// Decode reads an uploaded image and applies its EXIF orientation.
func Decode(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, ErrEmptyImage
	}
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUndecodable, err)
	}
	return img, nil
}

// EncodePNG encodes img losslessly, the format handed to OCR engines.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// Crop returns the part of img inside r, clipped to the image bounds.
// The result's origin is (0, 0).
func Crop(img image.Image, r image.Rectangle) image.Image {
	return imaging.Crop(img, r)
}

// toGray copies any image into an 8-bit grey image anchored at (0, 0).
func toGray(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok && g.Rect.Min == (image.Point{}) && g.Stride == g.Rect.Dx() {
		return g
	}
	src := imaging.Clone(img)
	b := src.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			i := src.PixOffset(x, y)
			r, g, bl := int(src.Pix[i]), int(src.Pix[i+1]), int(src.Pix[i+2])
			// ITU-R 601 luma, matching imaging.Grayscale
			out.Pix[out.PixOffset(x, y)] = uint8((299*r + 587*g + 114*bl + 500) / 1000)
		}
	}
	return out
}
