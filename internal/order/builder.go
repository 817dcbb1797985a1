package order

import (
	"fmt"

	"github.com/ironsheep/form-omr/internal/omr"
)

// Processor runs the mark detection pipeline on one image file.
// *omr.Engine satisfies it.
type Processor interface {
	Process(path string) *omr.ProcessingResult
}

// Result is the outcome of building an order from one form image.
type Result struct {
	Success bool `json:"success"`

	// OrderItems is empty, never nil, on failure.
	OrderItems []Line `json:"orderItems"`

	// OmrData is the engine report, or nil when processing failed.
	OmrData *omr.ProcessingResult `json:"omrData"`

	Error string `json:"error,omitempty"`

	err error
}

// Err returns the classified failure, or nil on success.
func (r *Result) Err() error {
	if r.Success {
		return nil
	}
	return r.err
}

// Builder turns form images into order lines.
type Builder struct {
	processor Processor
}

// NewBuilder returns a Builder backed by p.
func NewBuilder(p Processor) *Builder {
	return &Builder{processor: p}
}

// Build processes the image at path and extracts its order lines.
// The image file is left in place.
func (b *Builder) Build(path string) *Result {
	processed := b.processor.Process(path)
	if processed == nil {
		err := fmt.Errorf("%w: processor returned no result", omr.ErrProcessing)
		return failed(err, err.Error())
	}
	if !processed.Success {
		return failed(processed.Err(), processed.Error)
	}

	lines, err := Extract(processed)
	if err != nil {
		return failed(err, err.Error())
	}
	return &Result{
		Success:    true,
		OrderItems: lines,
		OmrData:    processed,
	}
}

func failed(err error, message string) *Result {
	return &Result{
		Success:    false,
		OrderItems: []Line{},
		Error:      message,
		err:        err,
	}
}
