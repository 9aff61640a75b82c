package redact

import (
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/screensanctum/screensanctum/detect"
	"github.com/screensanctum/screensanctum/regions"
)

func whiteImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	return img
}

func pixelAt(img image.Image, x, y int) color.RGBA {
	r, g, b, a := img.At(x, y).RGBA()
	return color.RGBA{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8), uint8(a >> 8)}
}

var (
	white = color.RGBA{255, 255, 255, 255}
	black = color.RGBA{0, 0, 0, 255}
)

func TestParseStyle(t *testing.T) {
	testCases := []struct {
		input     string
		want      Style
		expectErr bool
	}{
		{input: "blur", want: StyleBlur},
		{input: "solid", want: StyleSolid},
		{input: "pixelate", want: StylePixelate},
		{input: "mosaic", expectErr: true},
		{input: "", expectErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			style, err := ParseStyle(tc.input)
			if tc.expectErr {
				if err == nil {
					t.Errorf("Expected error for %q", tc.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if style != tc.want {
				t.Errorf("Expected %q, got %q", tc.want, style)
			}
		})
	}
}

func TestApplySolid(t *testing.T) {
	img := whiteImage(100, 100)
	regs := []regions.Region{{Type: detect.PiiEmail, Text: "a@b.com", X: 25, Y: 25, W: 50, H: 50, Selected: true}}

	out := Apply(img, regs, StyleSolid)

	// Every pixel strictly inside the rectangle is the fill value.
	for y := 25; y < 75; y++ {
		for x := 25; x < 75; x++ {
			if pixelAt(out, x, y) != black {
				t.Fatalf("Expected black at (%d,%d), got %v", x, y, pixelAt(out, x, y))
			}
		}
	}
	// Pixels outside stay untouched.
	if pixelAt(out, 1, 1) != white {
		t.Errorf("Expected white outside region, got %v", pixelAt(out, 1, 1))
	}
	if pixelAt(out, 24, 50) != white || pixelAt(out, 75, 50) != white {
		t.Error("Expected region boundary to be exact")
	}
	// The source image is never mutated.
	if pixelAt(img, 50, 50) != white {
		t.Error("Source image was modified")
	}
}

func TestApplyUnselectedUntouched(t *testing.T) {
	img := whiteImage(100, 100)
	regs := []regions.Region{{X: 25, Y: 25, W: 50, H: 50, Selected: false}}

	for _, style := range []Style{StyleSolid, StyleBlur, StylePixelate} {
		out := Apply(img, regs, style)
		for y := 0; y < 100; y++ {
			for x := 0; x < 100; x++ {
				if pixelAt(out, x, y) != white {
					t.Fatalf("Style %s: unselected region changed pixel (%d,%d)", style, x, y)
				}
			}
		}
	}
}

func TestApplyZeroSizeRegion(t *testing.T) {
	img := whiteImage(100, 100)
	regs := []regions.Region{{X: 50, Y: 50, W: 0, H: 0, Selected: true}}

	out := Apply(img, regs, StyleSolid)
	if pixelAt(out, 50, 50) != white {
		t.Error("Zero-size region must be a no-op")
	}
}

func TestApplyOutOfBoundsRegion(t *testing.T) {
	img := whiteImage(100, 100)
	regs := []regions.Region{{X: 200, Y: 200, W: 50, H: 50, Selected: true}}

	out := Apply(img, regs, StyleSolid)
	for y := 0; y < 100; y += 10 {
		for x := 0; x < 100; x += 10 {
			if pixelAt(out, x, y) != white {
				t.Fatalf("Out-of-bounds region changed pixel (%d,%d)", x, y)
			}
		}
	}
}

func TestApplyPartialBoundsClamped(t *testing.T) {
	img := whiteImage(100, 100)
	regs := []regions.Region{{X: 75, Y: 75, W: 50, H: 50, Selected: true}}

	out := Apply(img, regs, StyleSolid)
	if pixelAt(out, 90, 90) != black {
		t.Error("Visible portion of a partially out-of-bounds region must be redacted")
	}
	if pixelAt(out, 1, 1) != white {
		t.Error("Pixels away from the region must stay untouched")
	}
}

func TestApplyBlurConfinedToRegion(t *testing.T) {
	img := whiteImage(100, 100)
	// black square centered in the redaction region
	draw.Draw(img, image.Rect(40, 40, 60, 60), image.NewUniform(color.Black), image.Point{}, draw.Src)

	regs := []regions.Region{{X: 25, Y: 25, W: 50, H: 50, Selected: true}}
	out := Apply(img, regs, StyleBlur)

	// The hard edge of the square is smeared.
	edge := pixelAt(out, 40, 50)
	if edge == black || edge == white {
		t.Errorf("Expected blurred edge, got %v", edge)
	}
	// Nothing outside the region changes, even right next to it.
	if pixelAt(out, 24, 50) != white {
		t.Errorf("Blur leaked outside the region: %v", pixelAt(out, 24, 50))
	}
	if pixelAt(out, 1, 1) != white {
		t.Error("Far pixels must stay untouched")
	}
}

func TestApplyPixelate(t *testing.T) {
	img := whiteImage(100, 100)
	draw.Draw(img, image.Rect(30, 30, 40, 40), image.NewUniform(color.RGBA{255, 0, 0, 255}), image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(50, 50, 60, 60), image.NewUniform(color.RGBA{0, 0, 255, 255}), image.Point{}, draw.Src)

	regs := []regions.Region{{X: 25, Y: 25, W: 50, H: 50, Selected: true}}
	out := Apply(img, regs, StylePixelate)

	// Outside the region nothing changes.
	if pixelAt(out, 1, 1) != white {
		t.Error("Pixelate leaked outside the region")
	}

	// Inside, every pixelSize block is uniform.
	base := pixelAt(out, 25, 25)
	uniform := true
	for y := 25; y < 35 && uniform; y++ {
		for x := 25; x < 35; x++ {
			if pixelAt(out, x, y) != base {
				uniform = false
				break
			}
		}
	}
	if !uniform {
		t.Error("Expected the first pixelate block to be uniform")
	}
}

func TestStylesDiffer(t *testing.T) {
	img := whiteImage(100, 100)
	draw.Draw(img, image.Rect(30, 30, 70, 70), image.NewUniform(color.RGBA{255, 0, 0, 255}), image.Point{}, draw.Src)

	regs := []regions.Region{{X: 25, Y: 25, W: 50, H: 50, Selected: true}}

	solid := Apply(img, regs, StyleSolid)
	blur := Apply(img, regs, StyleBlur)

	if pixelAt(solid, 50, 50) != black {
		t.Error("Solid fill must be black")
	}
	if pixelAt(blur, 50, 50) == black {
		t.Error("Blur of a red square must not be pure black")
	}
}

func TestApplyMultipleRegions(t *testing.T) {
	img := whiteImage(200, 100)
	regs := []regions.Region{
		{X: 10, Y: 10, W: 40, H: 40, Selected: true},
		{X: 150, Y: 10, W: 40, H: 40, Selected: true},
	}

	out := Apply(img, regs, StyleSolid)
	if pixelAt(out, 30, 30) != black || pixelAt(out, 170, 30) != black {
		t.Error("Both regions must be redacted")
	}
	if pixelAt(out, 100, 50) != white {
		t.Error("Area between regions must stay untouched")
	}
}
