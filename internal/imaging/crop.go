package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"

	"github.com/disintegration/imaging"
)

// CropResult contains the cropped image data
type CropResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// CropMark extracts a mark region, optionally padded and scaled, for close
// inspection of a borderline mark.
//
// The region is grown by padding pixels on every side and then clipped to the
// image, so a box touching the sheet edge still crops cleanly.
func CropMark(img image.Image, r image.Rectangle, padding int, scale float64) (*CropResult, error) {
	bounds := img.Bounds()

	r = r.Inset(-padding).Add(bounds.Min).Intersect(bounds)
	if r.Empty() {
		return nil, fmt.Errorf("crop region lies outside image bounds (%d,%d)-(%d,%d)",
			bounds.Min.X, bounds.Min.Y, bounds.Max.X, bounds.Max.Y)
	}

	cropped := imaging.Crop(img, r)

	if scale != 1.0 && scale > 0 {
		newWidth := max(int(float64(cropped.Bounds().Dx())*scale), 1)
		newHeight := max(int(float64(cropped.Bounds().Dy())*scale), 1)
		cropped = imaging.Resize(cropped, newWidth, newHeight, imaging.NearestNeighbor)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, cropped); err != nil {
		return nil, fmt.Errorf("failed to encode cropped image: %w", err)
	}

	return &CropResult{
		Width:       cropped.Bounds().Dx(),
		Height:      cropped.Bounds().Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}
