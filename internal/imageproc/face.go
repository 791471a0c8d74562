package imageproc

import (
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"
)

const (
	faceSide         = 64
	faceMatchedScore = 70.0
)

// FaceMatch is the result of the placeholder likeness check. It compares
// coarse brightness profiles and is not biometric recognition.
type FaceMatch struct {
	Score   *float64 `json:"score"`
	Matched bool     `json:"matched"`
}

// CompareFaces scores two images by the cosine similarity of their
// normalised 64x64 row-mean profiles, scaled to 0..100.
func CompareFaces(a, b image.Image) (res FaceMatch, err error) {
	defer func() {
		if r := recover(); r != nil {
			res, err = FaceMatch{}, fmt.Errorf("face match: %v", r)
		}
	}()

	ea, eb := rowProfile(a), rowProfile(b)
	score := math.Round(cosine(ea, eb)*100*100) / 100
	return FaceMatch{Score: &score, Matched: score >= faceMatchedScore}, nil
}

func rowProfile(img image.Image) []float64 {
	g := toGray(imaging.Resize(img, faceSide, faceSide, imaging.Linear))
	v := make([]float64, faceSide)
	for y := 0; y < faceSide; y++ {
		sum := 0
		for x := 0; x < faceSide; x++ {
			sum += int(g.Pix[y*g.Stride+x])
		}
		v[y] = float64(sum) / faceSide
	}

	var mean float64
	for _, x := range v {
		mean += x
	}
	mean /= float64(len(v))
	var variance float64
	for _, x := range v {
		variance += (x - mean) * (x - mean)
	}
	std := math.Sqrt(variance / float64(len(v)))
	for i := range v {
		v[i] = (v[i] - mean) / (std + 1e-9)
	}
	return v
}

func cosine(a, b []float64) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	return dot / (math.Sqrt(na)*math.Sqrt(nb) + 1e-9)
}
