package imageproc

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"
)

// Tuning for the OCR enhancement chain.
const (
	upscaleBelow  = 1200
	upscaleFactor = 1.6

	claheClip  = 3.0
	claheTiles = 8

	bilateralDiameter  = 9
	bilateralSigmaCol  = 75.0
	bilateralSigmaDist = 75.0

	unsharpKernel = 9
	unsharpSigma  = 10.0

	thresholdBlock = 31
	thresholdC     = 9
)

// Preprocessor turns a colour photograph into a clean binary image for OCR.
type Preprocessor struct {
	log *zap.Logger
}

// NewPreprocessor returns a Preprocessor that reports skipped steps to log.
func NewPreprocessor(log *zap.Logger) *Preprocessor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Preprocessor{log: log.Named("preprocess")}
}

// Preprocess runs the enhancement chain without logging.
func Preprocess(img image.Image) *image.Gray {
	return NewPreprocessor(nil).Run(img)
}

// Run upscales small images, converts to grey and applies contrast
// equalisation, denoising, sharpening, adaptive thresholding and closing.
// A step that fails is skipped and the previous image carries forward.
func (p *Preprocessor) Run(img image.Image) *image.Gray {
	if b := img.Bounds(); max(b.Dx(), b.Dy()) < upscaleBelow {
		w := int(float64(b.Dx()) * upscaleFactor)
		h := int(float64(b.Dy()) * upscaleFactor)
		if w > 0 && h > 0 {
			img = imaging.Resize(img, w, h, imaging.CatmullRom)
		}
	}

	gray := toGray(img)
	if gray.Rect.Empty() {
		return gray
	}

	steps := []struct {
		name string
		fn   func(*image.Gray) *image.Gray
	}{
		{"clahe", func(g *image.Gray) *image.Gray { return clahe(g, claheClip, claheTiles) }},
		{"bilateral", func(g *image.Gray) *image.Gray {
			return bilateral(g, bilateralDiameter, bilateralSigmaCol, bilateralSigmaDist)
		}},
		{"unsharp", func(g *image.Gray) *image.Gray { return unsharp(g, unsharpSigma) }},
		{"threshold", func(g *image.Gray) *image.Gray { return adaptiveThreshold(g, thresholdBlock, thresholdC) }},
		{"close", func(g *image.Gray) *image.Gray { return closing(g) }},
	}
	for _, s := range steps {
		out, err := guard(s.fn, gray)
		if err != nil {
			p.log.Warn("enhancement step skipped", zap.String("step", s.name), zap.Error(err))
			continue
		}
		gray = out
	}
	return gray
}

func guard(fn func(*image.Gray) *image.Gray, in *image.Gray) (out *image.Gray, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("panic: %v", r)
		}
	}()
	out = fn(in)
	if out == nil {
		return nil, fmt.Errorf("no output")
	}
	return out, nil
}
