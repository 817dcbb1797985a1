package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

var (
	lowConfidenceColor, _  = colorful.Hex("#FFB300") // amber
	highConfidenceColor, _ = colorful.Hex("#00C853") // green
	unmarkedColor, _       = colorful.Hex("#9E9E9E") // grey
)

// MarkBox is one scored region to draw on an overlay.
type MarkBox struct {
	Rect       image.Rectangle
	Marked     bool
	Confidence float64
}

// OverlayResult contains the annotated image encoded as base64 PNG.
type OverlayResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
	Boxes       int    `json:"boxes"`
}

// Annotate draws every mark region over the source image.
//
// Marked regions are outlined in a colour interpolated (in CIE Lab, so the
// midpoint does not turn muddy) from amber at confidence 0 to green at
// confidence 1. Unmarked regions are outlined in grey. Each box is labelled
// with its confidence as a percentage.
func Annotate(img image.Image, boxes []MarkBox) (*OverlayResult, error) {
	bounds := img.Bounds()

	result := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(result, result.Bounds(), img, bounds.Min, draw.Src)

	labelColor := color.RGBA{255, 255, 255, 255}
	for _, box := range boxes {
		c := BoxColor(box.Marked, box.Confidence)
		drawOutline(result, box.Rect, c, 2)

		label := fmt.Sprintf("%d%%", int(math.Round(box.Confidence*100)))
		drawLabel(result, box.Rect.Max.X+3, box.Rect.Min.Y, label, labelColor, c)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, result); err != nil {
		return nil, fmt.Errorf("failed to encode overlay: %w", err)
	}

	return &OverlayResult{
		Width:       bounds.Dx(),
		Height:      bounds.Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
		Boxes:       len(boxes),
	}, nil
}

// BoxColor returns the outline colour for a scored region.
func BoxColor(marked bool, confidence float64) color.RGBA {
	c := unmarkedColor
	if marked {
		t := math.Max(0, math.Min(1, confidence))
		c = lowConfidenceColor.BlendLab(highConfidenceColor, t).Clamped()
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

// drawOutline strokes the inside edge of r with the given thickness.
func drawOutline(img *image.RGBA, r image.Rectangle, c color.RGBA, thickness int) {
	r = r.Intersect(img.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if x < r.Min.X+thickness || x >= r.Max.X-thickness ||
				y < r.Min.Y+thickness || y >= r.Max.Y-thickness {
				img.SetRGBA(x, y, c)
			}
		}
	}
}

// drawLabel draws a simple text label at the given position
func drawLabel(img *image.RGBA, x, y int, text string, fg, bg color.RGBA) {
	// Simple 3x5 pixel font for digits and percent sign
	glyphs := map[rune][]string{
		'0': {"111", "101", "101", "101", "111"},
		'1': {"010", "110", "010", "010", "111"},
		'2': {"111", "001", "111", "100", "111"},
		'3': {"111", "001", "111", "001", "111"},
		'4': {"101", "101", "111", "001", "001"},
		'5': {"111", "100", "111", "001", "111"},
		'6': {"111", "100", "111", "101", "111"},
		'7': {"111", "001", "001", "001", "001"},
		'8': {"111", "101", "111", "101", "111"},
		'9': {"111", "101", "111", "001", "111"},
		'%': {"101", "001", "010", "100", "101"},
	}

	bounds := img.Bounds()
	charWidth := 4
	labelWidth := len(text) * charWidth
	labelHeight := 7

	// Draw background
	for dy := -1; dy < labelHeight; dy++ {
		for dx := -1; dx < labelWidth; dx++ {
			px, py := x+dx, y+dy
			if image.Pt(px, py).In(bounds) {
				img.SetRGBA(px, py, bg)
			}
		}
	}

	// Draw text
	cx := x
	for _, ch := range text {
		glyph, ok := glyphs[ch]
		if !ok {
			cx += charWidth
			continue
		}
		for row, line := range glyph {
			for col, pixel := range line {
				if pixel == '1' {
					px, py := cx+col, y+row
					if image.Pt(px, py).In(bounds) {
						img.SetRGBA(px, py, fg)
					}
				}
			}
		}
		cx += charWidth
	}
}
