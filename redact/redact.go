// Package redact obscures selected regions of an image. The input
// image is never mutated; every call returns a fresh copy with the
// selected rectangles filled in the requested style.
package redact

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	xdraw "golang.org/x/image/draw"

	"github.com/screensanctum/screensanctum/regions"
)

// Style selects the fill algorithm for redacted rectangles.
type Style string

const (
	StyleBlur     Style = "blur"
	StyleSolid    Style = "solid"
	StylePixelate Style = "pixelate"
)

// ParseStyle converts a config string into a Style.
func ParseStyle(s string) (Style, error) {
	switch Style(s) {
	case StyleBlur, StyleSolid, StylePixelate:
		return Style(s), nil
	}
	return "", fmt.Errorf("unknown redaction style %q (want blur, solid or pixelate)", s)
}

const (
	// blur strength for the Gaussian fill
	blurRadius = 15
	// block edge length for the pixelate fill
	pixelSize = 10
)

// Apply returns a copy of src with every selected region obscured in
// the given style. Unselected regions, zero-size regions and regions
// entirely outside the image are left untouched; regions partially
// outside are clamped to the image bounds before filling.
func Apply(src image.Image, regs []regions.Region, style Style) image.Image {
	out := image.NewRGBA(src.Bounds())
	draw.Draw(out, out.Bounds(), src, src.Bounds().Min, draw.Src)

	for _, reg := range regs {
		if !reg.Selected {
			continue
		}
		if reg.W <= 0 || reg.H <= 0 {
			continue
		}
		rect := image.Rect(reg.X, reg.Y, reg.X+reg.W, reg.Y+reg.H).Intersect(out.Bounds())
		if rect.Empty() {
			continue
		}

		switch style {
		case StyleSolid:
			fillSolid(out, rect)
		case StyleBlur:
			blurRect(out, rect)
		case StylePixelate:
			pixelateRect(out, rect)
		default:
			// unknown style never reaches here through ParseStyle;
			// fall back to the strongest fill
			fillSolid(out, rect)
		}
	}
	return out
}

func fillSolid(img *image.RGBA, r image.Rectangle) {
	draw.Draw(img, r, image.NewUniform(color.Black), image.Point{}, draw.Src)
}

// pixelateRect downsamples the rectangle into pixelSize blocks and
// scales it back up with nearest-neighbor sampling, so no smoothed
// remnant of the original survives.
func pixelateRect(img *image.RGBA, r image.Rectangle) {
	sw := r.Dx() / pixelSize
	if sw < 1 {
		sw = 1
	}
	sh := r.Dy() / pixelSize
	if sh < 1 {
		sh = 1
	}

	small := image.NewRGBA(image.Rect(0, 0, sw, sh))
	xdraw.NearestNeighbor.Scale(small, small.Bounds(), img.SubImage(r), r, xdraw.Src, nil)
	xdraw.NearestNeighbor.Scale(img, r, small, small.Bounds(), xdraw.Src, nil)
}

// blurRect applies a separable Gaussian blur confined to the
// rectangle. Sampling clamps at the rectangle edge, so pixels outside
// the redaction area neither change nor leak into it.
func blurRect(img *image.RGBA, r image.Rectangle) {
	kernel := gaussianKernel(blurRadius)
	w, h := r.Dx(), r.Dy()

	src := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(src, src.Bounds(), img, r.Min, draw.Src)
	tmp := image.NewRGBA(src.Bounds())

	// horizontal pass
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var cr, cg, cb, ca float64
			for k, weight := range kernel {
				sx := clampInt(x+k-blurRadius, 0, w-1)
				o := src.PixOffset(sx, y)
				cr += weight * float64(src.Pix[o])
				cg += weight * float64(src.Pix[o+1])
				cb += weight * float64(src.Pix[o+2])
				ca += weight * float64(src.Pix[o+3])
			}
			o := tmp.PixOffset(x, y)
			tmp.Pix[o] = uint8(cr + 0.5)
			tmp.Pix[o+1] = uint8(cg + 0.5)
			tmp.Pix[o+2] = uint8(cb + 0.5)
			tmp.Pix[o+3] = uint8(ca + 0.5)
		}
	}

	// vertical pass, written straight back into the target rectangle
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var cr, cg, cb, ca float64
			for k, weight := range kernel {
				sy := clampInt(y+k-blurRadius, 0, h-1)
				o := tmp.PixOffset(x, sy)
				cr += weight * float64(tmp.Pix[o])
				cg += weight * float64(tmp.Pix[o+1])
				cb += weight * float64(tmp.Pix[o+2])
				ca += weight * float64(tmp.Pix[o+3])
			}
			o := img.PixOffset(r.Min.X+x, r.Min.Y+y)
			img.Pix[o] = uint8(cr + 0.5)
			img.Pix[o+1] = uint8(cg + 0.5)
			img.Pix[o+2] = uint8(cb + 0.5)
			img.Pix[o+3] = uint8(ca + 0.5)
		}
	}
}

func gaussianKernel(radius int) []float64 {
	sigma := float64(radius) / 2
	kernel := make([]float64, 2*radius+1)
	sum := 0.0
	for i := range kernel {
		d := float64(i - radius)
		kernel[i] = math.Exp(-d * d / (2 * sigma * sigma))
		sum += kernel[i]
	}
	for i := range kernel {
		kernel[i] /= sum
	}
	return kernel
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
