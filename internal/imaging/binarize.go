package imaging

import (
	"fmt"
	"image"

	"github.com/anthonynsimon/bild/segment"

	"github.com/ironsheep/form-omr/internal/detection"
)

// Method selects the binarization strategy.
type Method string

const (
	// MethodAdaptive compares each pixel with the mean of its neighborhood.
	MethodAdaptive Method = "adaptive"

	// MethodGlobal compares every pixel with one fixed cutoff. Only suitable
	// for evenly lit flatbed scans.
	MethodGlobal Method = "global"
)

// BinarizeOptions configures Binarize.
type BinarizeOptions struct {
	// Method is MethodAdaptive or MethodGlobal. Empty means adaptive.
	Method Method

	// WindowFraction is the adaptive neighborhood side as a fraction of the
	// shorter image side. It must comfortably exceed the mark box size,
	// otherwise the interior of a solidly filled bubble becomes its own
	// background and reads as paper.
	WindowFraction float64

	// Offset is subtracted from the local mean before comparison, in
	// intensity units (0-255). A pixel is ink when value < mean - Offset, so
	// flat paper and flat shadow both stay background.
	Offset float64

	// GlobalThreshold is the cutoff for MethodGlobal: values below it are ink.
	GlobalThreshold uint8
}

// DefaultBinarizeOptions returns the adaptive defaults used by the engine.
func DefaultBinarizeOptions() BinarizeOptions {
	return BinarizeOptions{
		Method:          MethodAdaptive,
		WindowFraction:  0.08,
		Offset:          10,
		GlobalThreshold: 127,
	}
}

// Binary is a two-level ink mask with the same dimensions as its source.
//
// Ink is indexed Ink[y][x]; true means the pixel was classified as a mark
// stroke rather than paper.
type Binary struct {
	Width  int
	Height int
	Ink    [][]bool
}

// NewBinary allocates an all-paper mask.
func NewBinary(width, height int) *Binary {
	ink := make([][]bool, height)
	for y := range ink {
		ink[y] = make([]bool, width)
	}
	return &Binary{Width: width, Height: height, Ink: ink}
}

// Binarize classifies every pixel of a normalized intensity image as ink or
// paper.
//
// Parameters:
//   - gray: Intensity image from Normalize (origin at 0,0).
//   - opts: Threshold method and parameters.
//
// Returns:
//   - *Binary: Ink mask of the same size as gray.
//   - error: Non-nil for an unknown method or a non-positive adaptive window.
//
// # Adaptive Algorithm
//
// The local mean over a square window centered on each pixel is read from a
// summed-area table, so the cost per pixel is constant regardless of window
// size. Windows are truncated at the image border and averaged over the
// pixels they actually cover.
//
//	ink(x,y) = I(x,y) < mean(window(x,y)) - Offset
//
// # Window Size
//
//	side = WindowFraction × min(width, height), forced odd and at least 3
//
// The form layout is fractional too, so the window keeps the same size
// relative to the mark boxes at every scan resolution.
func Binarize(gray *image.Gray, opts BinarizeOptions) (*Binary, error) {
	switch opts.Method {
	case MethodAdaptive, "":
		if opts.WindowFraction <= 0 {
			return nil, fmt.Errorf("adaptive window fraction must be positive, got %v", opts.WindowFraction)
		}
		return adaptiveThreshold(gray, windowSide(gray, opts.WindowFraction), opts.Offset), nil
	case MethodGlobal:
		return globalThreshold(gray, opts.GlobalThreshold), nil
	default:
		return nil, fmt.Errorf("unknown binarization method %q", opts.Method)
	}
}

// windowSide converts the window fraction to an odd pixel size >= 3.
func windowSide(gray *image.Gray, fraction float64) int {
	bounds := gray.Bounds()
	side := int(fraction * float64(min(bounds.Dx(), bounds.Dy())))
	if side < 3 {
		side = 3
	}
	if side%2 == 0 {
		side++
	}
	return side
}

// adaptiveThreshold applies a mean-C threshold using a summed-area table.
func adaptiveThreshold(gray *image.Gray, side int, offset float64) *Binary {
	bounds := gray.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	stride := width + 1

	// sat[(y+1)*stride+(x+1)] = sum of gray over [0,x] × [0,y]
	sat := make([]int64, (height+1)*stride)
	for y := 0; y < height; y++ {
		var row int64
		for x := 0; x < width; x++ {
			row += int64(gray.Pix[y*gray.Stride+x])
			sat[(y+1)*stride+x+1] = sat[y*stride+x+1] + row
		}
	}

	half := side / 2
	out := NewBinary(width, height)
	for y := 0; y < height; y++ {
		y1 := max(y-half, 0)
		y2 := min(y+half+1, height)
		for x := 0; x < width; x++ {
			x1 := max(x-half, 0)
			x2 := min(x+half+1, width)

			sum := sat[y2*stride+x2] - sat[y1*stride+x2] - sat[y2*stride+x1] + sat[y1*stride+x1]
			mean := float64(sum) / float64((x2-x1)*(y2-y1))

			if float64(gray.Pix[y*gray.Stride+x]) < mean-offset {
				out.Ink[y][x] = true
			}
		}
	}
	return out
}

// globalThreshold marks every pixel darker than level as ink.
func globalThreshold(gray *image.Gray, level uint8) *Binary {
	thresholded := segment.Threshold(gray, level)

	bounds := thresholded.Bounds()
	out := NewBinary(bounds.Dx(), bounds.Dy())
	for y := 0; y < out.Height; y++ {
		for x := 0; x < out.Width; x++ {
			// segment.Threshold paints values below level black
			if thresholded.GrayAt(x+bounds.Min.X, y+bounds.Min.Y).Y == 0 {
				out.Ink[y][x] = true
			}
		}
	}
	return out
}

// FilterNoise removes ink blobs whose area lies outside [minArea, maxArea].
// A maxArea of 0 disables the upper bound. Returns the number of ink pixels
// cleared.
func (b *Binary) FilterNoise(minArea, maxArea int) int {
	return detection.FilterBlobs(b.Ink, b.Width, b.Height, minArea, maxArea)
}

// Count returns the number of ink pixels inside r, clipped to the mask.
func (b *Binary) Count(r image.Rectangle) int {
	r = r.Intersect(image.Rect(0, 0, b.Width, b.Height))
	count := 0
	for y := r.Min.Y; y < r.Max.Y; y++ {
		row := b.Ink[y]
		for x := r.Min.X; x < r.Max.X; x++ {
			if row[x] {
				count++
			}
		}
	}
	return count
}

// LargestBlob returns the area of the largest ink blob confined to r.
func (b *Binary) LargestBlob(r image.Rectangle) int {
	r = r.Intersect(image.Rect(0, 0, b.Width, b.Height))
	if r.Empty() {
		return 0
	}
	return detection.LargestBlobArea(b.Ink, detection.Bounds{
		X1: r.Min.X, Y1: r.Min.Y, X2: r.Max.X, Y2: r.Max.Y,
	})
}

// ToImage renders the mask as a grayscale image: ink black, paper white.
func (b *Binary) ToImage() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, b.Width, b.Height))
	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			if !b.Ink[y][x] {
				img.Pix[y*img.Stride+x] = 255
			}
		}
	}
	return img
}
