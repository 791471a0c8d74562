package imageproc

import (
	"image"
	"math"

	"github.com/disintegration/imaging"
)

// All filters take and return grey images anchored at (0, 0) and replicate
// edge pixels at the borders.

func clampIdx(v, n int) int {
	if v < 0 {
		return 0
	}
	if v >= n {
		return n - 1
	}
	return v
}

func clampByte(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	}
	return uint8(math.Round(v))
}

// clahe equalises contrast per tile with a clipped histogram and blends the
// tile mappings bilinearly.
func clahe(src *image.Gray, clip float64, tiles int) *image.Gray {
	w, h := src.Rect.Dx(), src.Rect.Dy()
	tw := (w + tiles - 1) / tiles
	th := (h + tiles - 1) / tiles
	nx := (w + tw - 1) / tw
	ny := (h + th - 1) / th

	luts := make([][256]uint8, nx*ny)
	for ty := 0; ty < ny; ty++ {
		for tx := 0; tx < nx; tx++ {
			x0, y0 := tx*tw, ty*th
			x1, y1 := min(x0+tw, w), min(y0+th, h)

			var hist [256]int
			for y := y0; y < y1; y++ {
				row := src.Pix[y*src.Stride:]
				for x := x0; x < x1; x++ {
					hist[row[x]]++
				}
			}

			area := (x1 - x0) * (y1 - y0)
			limit := max(1, int(clip*float64(area)/256))
			excess := 0
			for i := range hist {
				if hist[i] > limit {
					excess += hist[i] - limit
					hist[i] = limit
				}
			}
			bonus, rem := excess/256, excess%256
			for i := range hist {
				hist[i] += bonus
				if i < rem {
					hist[i]++
				}
			}

			lut := &luts[ty*nx+tx]
			scale := 255.0 / float64(area)
			sum := 0
			for i := range hist {
				sum += hist[i]
				lut[i] = clampByte(float64(sum) * scale)
			}
		}
	}

	out := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		fy := (float64(y)+0.5)/float64(th) - 0.5
		ty0 := int(math.Floor(fy))
		ay := fy - float64(ty0)
		ty1 := clampIdx(ty0+1, ny)
		ty0 = clampIdx(ty0, ny)
		for x := 0; x < w; x++ {
			fx := (float64(x)+0.5)/float64(tw) - 0.5
			tx0 := int(math.Floor(fx))
			ax := fx - float64(tx0)
			tx1 := clampIdx(tx0+1, nx)
			tx0 = clampIdx(tx0, nx)

			v := src.Pix[y*src.Stride+x]
			top := (1-ax)*float64(luts[ty0*nx+tx0][v]) + ax*float64(luts[ty0*nx+tx1][v])
			bot := (1-ax)*float64(luts[ty1*nx+tx0][v]) + ax*float64(luts[ty1*nx+tx1][v])
			out.Pix[y*out.Stride+x] = clampByte((1-ay)*top + ay*bot)
		}
	}
	return out
}

// bilateral smooths flat regions while keeping strong edges: neighbours are
// weighted by both distance and intensity difference.
func bilateral(src *image.Gray, diameter int, sigmaColor, sigmaSpace float64) *image.Gray {
	w, h := src.Rect.Dx(), src.Rect.Dy()
	r := diameter / 2

	var colorW [256]float64
	for i := range colorW {
		colorW[i] = math.Exp(-float64(i*i) / (2 * sigmaColor * sigmaColor))
	}

	type tap struct {
		dx, dy int
		w      float64
	}
	var taps []tap
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			d2 := dx*dx + dy*dy
			if d2 > r*r {
				continue
			}
			taps = append(taps, tap{dx, dy, math.Exp(-float64(d2) / (2 * sigmaSpace * sigmaSpace))})
		}
	}

	out := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := int(src.Pix[y*src.Stride+x])
			var sum, norm float64
			for _, t := range taps {
				v := int(src.Pix[clampIdx(y+t.dy, h)*src.Stride+clampIdx(x+t.dx, w)])
				diff := v - c
				if diff < 0 {
					diff = -diff
				}
				wt := t.w * colorW[diff]
				sum += wt * float64(v)
				norm += wt
			}
			out.Pix[y*out.Stride+x] = clampByte(sum / norm)
		}
	}
	return out
}

// unsharp sharpens as 1.5*src - 0.5*gaussian(src) using a fixed 9x9 kernel.
func unsharp(src *image.Gray, sigma float64) *image.Gray {
	blur := gaussianBlur(src, unsharpKernel, sigma)
	out := image.NewGray(src.Rect)
	for i, v := range src.Pix {
		out.Pix[i] = clampByte(1.5*float64(v) - 0.5*float64(blur.Pix[i]))
	}
	return out
}

// gaussianBlur convolves with a separable size x size Gaussian kernel of
// the given sigma. imaging.Blur ties the kernel size to sigma instead.
func gaussianBlur(src *image.Gray, size int, sigma float64) *image.Gray {
	w, h := src.Rect.Dx(), src.Rect.Dy()
	r := size / 2
	kernel := make([]float64, size)
	var total float64
	for i := range kernel {
		d := float64(i - r)
		kernel[i] = math.Exp(-d * d / (2 * sigma * sigma))
		total += kernel[i]
	}
	for i := range kernel {
		kernel[i] /= total
	}

	tmp := make([]float64, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var acc float64
			for k, kv := range kernel {
				acc += kv * float64(src.Pix[y*src.Stride+clampIdx(x+k-r, w)])
			}
			tmp[y*w+x] = acc
		}
	}

	out := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var acc float64
			for k, kv := range kernel {
				acc += kv * tmp[clampIdx(y+k-r, h)*w+x]
			}
			out.Pix[y*out.Stride+x] = clampByte(acc)
		}
	}
	return out
}

// adaptiveThreshold binarises against a Gaussian-weighted local mean over a
// block x block window minus c.
func adaptiveThreshold(src *image.Gray, block int, c int) *image.Gray {
	// sigma that gives a block-sized kernel for an odd block size
	sigma := 0.3*(float64(block-1)*0.5-1) + 0.8
	mean := toGray(imaging.Blur(src, sigma))
	out := image.NewGray(src.Rect)
	for i, v := range src.Pix {
		if int(v) > int(mean.Pix[i])-c {
			out.Pix[i] = 255
		}
	}
	return out
}

// closing is a 3x3 dilation followed by a 3x3 erosion; it reconnects strokes
// broken by thresholding.
func closing(src *image.Gray) *image.Gray {
	return morph(morph(src, true), false)
}

func morph(src *image.Gray, dilate bool) *image.Gray {
	w, h := src.Rect.Dx(), src.Rect.Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			best := src.Pix[y*src.Stride+x]
			for dy := -1; dy <= 1; dy++ {
				row := clampIdx(y+dy, h) * src.Stride
				for dx := -1; dx <= 1; dx++ {
					v := src.Pix[row+clampIdx(x+dx, w)]
					if (dilate && v > best) || (!dilate && v < best) {
						best = v
					}
				}
			}
			out.Pix[y*out.Stride+x] = best
		}
	}
	return out
}
