package imaging

import (
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"math"

	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/effect"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/tiff" // Register TIFF format decoder
	_ "golang.org/x/image/webp" // Register WebP format decoder
)

// DefaultBlurRadius gives a 5x5 Gaussian kernel. It is the largest radius
// ScaledBlurRadius returns with the default settings.
const DefaultBlurRadius = 2.0

// DefaultBlurFraction scales the blur radius with the shorter image side:
// radius 1 from about 333 px, radius 2 from about 1000 px.
const DefaultBlurFraction = 0.0015

// ScaledBlurRadius returns the blur radius for an image of the given size.
//
// The radius is fraction × min(width, height), rounded to a whole pixel and
// capped at maxRadius. Whole radii keep the bild kernel symmetric. A fraction
// of zero returns maxRadius unchanged.
//
// Form boxes are a fixed fraction of the page, so a fixed pixel radius would
// smear their printed outlines across most of the box on small photos.
func ScaledBlurRadius(width, height int, fraction, maxRadius float64) float64 {
	if fraction <= 0 {
		return maxRadius
	}
	radius := math.Round(fraction * float64(min(width, height)))
	return math.Max(0, math.Min(radius, maxRadius))
}

// LoadImage reads and decodes an image file.
//
// Parameters:
//   - path: Absolute or relative file path to the image.
//   - maxDimension: If positive and the longer image side exceeds it, the
//     image is scaled down (Lanczos) to fit within maxDimension × maxDimension,
//     preserving aspect ratio. Zero disables downscaling.
//
// Returns:
//   - image.Image: The decoded, upright image.
//   - error: Non-nil if the file cannot be opened or decoded.
//
// # Orientation
//
// JPEGs from phone cameras often store the sensor image sideways with an EXIF
// orientation tag. The tag is applied on load so the form layout fractions
// line up with the printed sheet.
//
// # Errors
//
//   - Returns error if the file does not exist, is a directory, or cannot be read
//   - Returns error if the file is empty or not a supported raster format
func LoadImage(path string, maxDimension int) (image.Image, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", path, err)
	}

	bounds := img.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return nil, fmt.Errorf("image %s has no pixels", path)
	}

	if maxDimension > 0 && (bounds.Dx() > maxDimension || bounds.Dy() > maxDimension) {
		img = imaging.Fit(img, maxDimension, maxDimension, imaging.Lanczos)
	}
	return img, nil
}

// Normalize converts an image to a smoothed single-channel intensity image.
//
// Parameters:
//   - img: Source image (color or grayscale).
//   - blurRadius: Gaussian blur radius in pixels. The kernel side is
//     ceil(2×radius+1), so the default of 2 is a 5x5 kernel. Zero or negative
//     disables smoothing.
//
// Returns a *image.Gray with bounds (0,0)-(width,height), 0 = black ink and
// 255 = white paper.
//
// # Algorithm
//
//  1. Grayscale conversion with luminance weights (0.3R + 0.6G + 0.1B)
//  2. Gaussian blur with clamped (replicated) borders
func Normalize(img image.Image, blurRadius float64) *image.Gray {
	gray := effect.Grayscale(img)

	var smoothed image.Image = gray
	if blurRadius > 0 {
		smoothed = blur.Gaussian(gray, blurRadius)
	}

	bounds := smoothed.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	out := image.NewGray(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, _, _, _ := smoothed.At(x+bounds.Min.X, y+bounds.Min.Y).RGBA()
			out.Pix[y*out.Stride+x] = uint8(r >> 8)
		}
	}
	return out
}
