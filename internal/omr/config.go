package omr

import (
	"fmt"

	"github.com/ironsheep/form-omr/internal/imaging"
	"github.com/ironsheep/form-omr/internal/layout"
)

// Config holds the engine constants. A Config is copied into the Engine on
// construction and never mutated afterwards, so it is safe to share across
// goroutines.
type Config struct {
	// Form is the printed form geometry and vocabulary.
	Form layout.Form `json:"form"`

	// BlurRadius is the largest Gaussian smoothing radius applied before
	// binarization. 2 gives a 5x5 kernel; 0 disables smoothing.
	BlurRadius float64 `json:"blur_radius"`

	// BlurFraction scales the radius with the shorter image side, capped at
	// BlurRadius. 0 always uses BlurRadius.
	BlurFraction float64 `json:"blur_fraction"`

	// Binarize selects and tunes the ink/paper threshold.
	Binarize imaging.BinarizeOptions `json:"binarize"`

	// MarkThreshold is the fill ratio at or above which a region counts as
	// marked. Checkbox strokes rarely fill a whole box, so it sits well
	// below one half.
	MarkThreshold float64 `json:"mark_threshold"`

	// MarkInset is the fraction of each box side left out of scoring on
	// every edge, so the printed box outline never counts as fill.
	MarkInset float64 `json:"mark_inset"`

	// MinMarkArea is the smallest ink blob, in pixels, kept as a possible
	// mark stroke. Smaller blobs are scan noise.
	MinMarkArea int `json:"min_mark_area"`

	// MaxMarkAreaFraction is the largest ink blob kept, as a fraction of the
	// image area. Larger blobs are printed rules or shadows. 0 disables it.
	MaxMarkAreaFraction float64 `json:"max_mark_area_fraction"`

	// MaxDimension downscales images whose longer side exceeds it.
	// 0 disables downscaling.
	MaxDimension int `json:"max_dimension"`
}

// DefaultConfig returns the configuration for the reference form.
func DefaultConfig() Config {
	return Config{
		Form:                layout.ReferenceForm(),
		BlurRadius:          imaging.DefaultBlurRadius,
		BlurFraction:        imaging.DefaultBlurFraction,
		Binarize:            imaging.DefaultBinarizeOptions(),
		MarkThreshold:       0.4,
		MarkInset:           0.15,
		MinMarkArea:         12,
		MaxMarkAreaFraction: 0.01,
		MaxDimension:        2400,
	}
}

// Validate reports the first unusable setting, wrapped in ErrInvalidConfig.
func (c Config) Validate() error {
	if err := c.Form.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if c.MarkThreshold <= 0 || c.MarkThreshold > 1 {
		return fmt.Errorf("%w: mark_threshold must be in (0,1], got %v", ErrInvalidConfig, c.MarkThreshold)
	}
	if c.BlurRadius < 0 {
		return fmt.Errorf("%w: blur_radius must not be negative", ErrInvalidConfig)
	}
	if c.BlurFraction < 0 || c.BlurFraction >= 1 {
		return fmt.Errorf("%w: blur_fraction must be in [0,1)", ErrInvalidConfig)
	}
	if c.MarkInset < 0 || c.MarkInset >= 0.5 {
		return fmt.Errorf("%w: mark_inset must be in [0,0.5)", ErrInvalidConfig)
	}
	if c.MinMarkArea < 0 {
		return fmt.Errorf("%w: min_mark_area must not be negative", ErrInvalidConfig)
	}
	if c.MaxMarkAreaFraction < 0 || c.MaxMarkAreaFraction > 1 {
		return fmt.Errorf("%w: max_mark_area_fraction must be in [0,1]", ErrInvalidConfig)
	}
	if c.MaxDimension < 0 {
		return fmt.Errorf("%w: max_dimension must not be negative", ErrInvalidConfig)
	}
	switch c.Binarize.Method {
	case imaging.MethodAdaptive, "":
		if c.Binarize.WindowFraction <= 0 || c.Binarize.WindowFraction > 1 {
			return fmt.Errorf("%w: adaptive window fraction must be in (0,1]", ErrInvalidConfig)
		}
	case imaging.MethodGlobal:
	default:
		return fmt.Errorf("%w: unknown binarization method %q", ErrInvalidConfig, c.Binarize.Method)
	}
	return nil
}
