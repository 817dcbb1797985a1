package omr

import (
	"encoding/json"

	"github.com/ironsheep/form-omr/internal/layout"
)

// Dimensions is the processed image size in pixels.
type Dimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// ProcessingResult is the report for one engine run.
//
// A successful result carries every field. A failed result carries only
// Success=false and Error; callers must not read Marks when Success is false.
// When marshalled to JSON a failed result is exactly {"success":false,"error":"..."}.
type ProcessingResult struct {
	// Success is false when the run failed; Error then explains why.
	Success bool `json:"success"`

	// Marks holds one entry per form region, in layout order.
	Marks []Mark `json:"marks"`

	// Confidence is the mean mark confidence on a 0-100 scale. It covers
	// marked and unmarked regions alike, so it reflects overall scan
	// quality rather than the selected items.
	Confidence float64 `json:"confidence"`

	// ImageDimensions is the size of the image the marks were scored on.
	ImageDimensions Dimensions `json:"image_dimensions"`

	// TotalMarksDetected counts marked regions of both types.
	TotalMarksDetected int `json:"total_marks_detected"`

	// MarkedItems lists, in vocabulary order, every item whose selection
	// mark is filled.
	MarkedItems []string `json:"marked_items"`

	// Error is the human-readable failure message.
	Error string `json:"error,omitempty"`

	err error
}

// Failure builds the all-or-nothing failed result for err.
func Failure(err error) *ProcessingResult {
	return &ProcessingResult{Success: false, Error: err.Error(), err: err}
}

// Err returns the classified failure, or nil for a successful result.
// Use errors.Is with ErrImageLoad or ErrProcessing to tell classes apart.
func (r *ProcessingResult) Err() error {
	if r.Success {
		return nil
	}
	return r.err
}

// Aggregate combines scored marks into a successful ProcessingResult.
func Aggregate(marks []Mark, width, height int) *ProcessingResult {
	result := &ProcessingResult{
		Success:         true,
		Marks:           marks,
		ImageDimensions: Dimensions{Width: width, Height: height},
		MarkedItems:     make([]string, 0),
	}

	var total float64
	for _, m := range marks {
		total += m.Confidence
		if !m.IsMarked {
			continue
		}
		result.TotalMarksDetected++
		if m.Type == layout.Selection {
			result.MarkedItems = append(result.MarkedItems, m.Item)
		}
	}
	if len(marks) > 0 {
		result.Confidence = total / float64(len(marks)) * 100
	}
	return result
}

// MarshalJSON emits only success and error for failed results.
func (r ProcessingResult) MarshalJSON() ([]byte, error) {
	if !r.Success {
		return json.Marshal(struct {
			Success bool   `json:"success"`
			Error   string `json:"error"`
		}{Success: false, Error: r.Error})
	}

	type alias ProcessingResult
	a := alias(r)
	if a.Marks == nil {
		a.Marks = []Mark{}
	}
	if a.MarkedItems == nil {
		a.MarkedItems = []string{}
	}
	return json.Marshal(a)
}
