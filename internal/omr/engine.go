package omr

import (
	"context"
	"fmt"
	"image"
	"runtime"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/form-omr/internal/imaging"
	"github.com/ironsheep/form-omr/internal/layout"
)

// Engine detects filled marks on images of one printed form.
type Engine struct {
	cfg    Config
	scorer Scorer
}

// NewEngine validates cfg and returns an engine bound to it.
//
// The vocabulary is copied, so later changes to cfg do not affect the engine.
func NewEngine(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.Form.Vocabulary = slices.Clone(cfg.Form.Vocabulary)
	return &Engine{
		cfg:    cfg,
		scorer: Scorer{Threshold: cfg.MarkThreshold, Inset: cfg.MarkInset},
	}, nil
}

// Config returns a copy of the engine configuration.
func (e *Engine) Config() Config {
	cfg := e.cfg
	cfg.Form.Vocabulary = slices.Clone(e.cfg.Form.Vocabulary)
	return cfg
}

// Vocabulary returns the form items in printed order.
func (e *Engine) Vocabulary() []string {
	return slices.Clone(e.cfg.Form.Vocabulary)
}

// Regions returns the expected mark regions for an image of the given size.
func (e *Engine) Regions(width, height int) ([]layout.Region, error) {
	return e.cfg.Form.RegionsFor(width, height)
}

// Process runs the full pipeline on the image at path.
//
// It never panics and never returns nil. Failures are reported through
// Success=false with Err() wrapping ErrImageLoad (missing, empty, or
// undecodable file) or ErrProcessing (anything after decoding).
func (e *Engine) Process(path string) *ProcessingResult {
	img, err := imaging.LoadImage(path, e.cfg.MaxDimension)
	if err != nil {
		return Failure(fmt.Errorf("%w: %w", ErrImageLoad, err))
	}
	return e.ProcessImage(img)
}

// ProcessImage runs the pipeline on an already decoded image. The image is
// not downscaled.
func (e *Engine) ProcessImage(img image.Image) (result *ProcessingResult) {
	defer func() {
		if r := recover(); r != nil {
			result = Failure(fmt.Errorf("%w: %v", ErrProcessing, r))
		}
	}()

	marks, dims, err := e.analyze(img)
	if err != nil {
		return Failure(fmt.Errorf("%w: %w", ErrProcessing, err))
	}
	return Aggregate(marks, dims.Width, dims.Height)
}

// analyze normalizes, binarizes and scores img.
func (e *Engine) analyze(img image.Image) ([]Mark, Dimensions, error) {
	bin, err := e.inkMask(img)
	if err != nil {
		return nil, Dimensions{}, err
	}

	regions, err := e.cfg.Form.RegionsFor(bin.Width, bin.Height)
	if err != nil {
		return nil, Dimensions{}, err
	}

	marks := make([]Mark, 0, len(regions))
	for _, region := range regions {
		marks = append(marks, e.scorer.Score(bin, region))
	}
	return marks, Dimensions{Width: bin.Width, Height: bin.Height}, nil
}

// inkMask returns the noise-filtered binary image that marks are scored on.
func (e *Engine) inkMask(img image.Image) (*imaging.Binary, error) {
	bounds := img.Bounds()
	radius := imaging.ScaledBlurRadius(bounds.Dx(), bounds.Dy(), e.cfg.BlurFraction, e.cfg.BlurRadius)
	gray := imaging.Normalize(img, radius)

	bin, err := imaging.Binarize(gray, e.cfg.Binarize)
	if err != nil {
		return nil, fmt.Errorf("failed to binarize: %w", err)
	}

	maxArea := 0
	if e.cfg.MaxMarkAreaFraction > 0 {
		maxArea = max(int(e.cfg.MaxMarkAreaFraction*float64(bin.Width*bin.Height)), 1)
	}
	bin.FilterNoise(e.cfg.MinMarkArea, maxArea)
	return bin, nil
}

// Annotate processes the image at path and draws the scored regions over it.
// The returned result is the same report Process would produce. When the
// run fails the overlay is nil and the error is result.Err().
//
// With showMask the boxes are drawn over the ink mask instead of the
// photo, showing exactly which pixels were counted as ink.
func (e *Engine) Annotate(path string, showMask bool) (*imaging.OverlayResult, *ProcessingResult, error) {
	img, err := imaging.LoadImage(path, e.cfg.MaxDimension)
	if err != nil {
		result := Failure(fmt.Errorf("%w: %w", ErrImageLoad, err))
		return nil, result, result.Err()
	}

	result := e.ProcessImage(img)
	if !result.Success {
		return nil, result, result.Err()
	}

	boxes := make([]imaging.MarkBox, 0, len(result.Marks))
	for _, m := range result.Marks {
		boxes = append(boxes, imaging.MarkBox{
			Rect:       toRectangle(m.Position),
			Marked:     m.IsMarked,
			Confidence: m.Confidence,
		})
	}

	var background image.Image = img
	if showMask {
		bin, err := e.inkMask(img)
		if err != nil {
			return nil, result, fmt.Errorf("%w: %w", ErrProcessing, err)
		}
		background = bin.ToImage()
	}

	overlay, err := imaging.Annotate(background, boxes)
	if err != nil {
		return nil, result, fmt.Errorf("%w: %w", ErrProcessing, err)
	}
	return overlay, result, nil
}

// CropMark extracts the region of one (item, type) mark from the image at
// path, grown by padding pixels and scaled by scale.
func (e *Engine) CropMark(path, item string, kind layout.MarkType, padding int, scale float64) (*imaging.CropResult, error) {
	if !e.cfg.Form.Contains(item) {
		return nil, fmt.Errorf("%w: unknown item %q", ErrProcessing, item)
	}

	img, err := imaging.LoadImage(path, e.cfg.MaxDimension)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrImageLoad, err)
	}

	bounds := img.Bounds()
	regions, err := e.Regions(bounds.Dx(), bounds.Dy())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProcessing, err)
	}
	for _, region := range regions {
		if region.Item == item && region.Type == kind {
			return imaging.CropMark(img, toRectangle(region.Position), padding, scale)
		}
	}
	return nil, fmt.Errorf("%w: no %s mark for %q", ErrProcessing, kind, item)
}

// ProcessBatch processes paths with at most concurrency runs in flight.
// A concurrency below 1 means GOMAXPROCS.
//
// The returned slice is index-aligned with paths. Items not yet started when
// ctx is cancelled fail with ErrProcessing wrapping ctx.Err(); runs already
// in flight complete normally.
func (e *Engine) ProcessBatch(ctx context.Context, paths []string, concurrency int) []*ProcessingResult {
	if concurrency < 1 {
		concurrency = runtime.GOMAXPROCS(0)
	}

	results := make([]*ProcessingResult, len(paths))

	var g errgroup.Group
	g.SetLimit(concurrency)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i] = Failure(fmt.Errorf("%w: %w", ErrProcessing, err))
				return nil
			}
			results[i] = e.Process(path)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func toRectangle(r layout.Rect) image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}
