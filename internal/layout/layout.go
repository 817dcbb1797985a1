package layout

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrInvalidDimensions is returned when regions are requested for an image
// with a non-positive width or height.
var ErrInvalidDimensions = errors.New("invalid image dimensions")

// ErrInvalidForm is returned by Form.Validate for layouts that cannot be
// mapped onto an image.
var ErrInvalidForm = errors.New("invalid form layout")

// pixelEpsilon absorbs float error such as 0.29*1000 = 289.99999999999994.
const pixelEpsilon = 1e-9

// MarkType identifies which column of the form a mark position belongs to.
type MarkType string

const (
	// Quantity is the checkbox in the quantity column.
	Quantity MarkType = "quantity"

	// Selection is the bubble in the menu column. An item is ordered only
	// when its selection mark is filled.
	Selection MarkType = "selection"
)

// Rect is an axis-aligned rectangle in pixel coordinates.
//
// The rectangle covers [X, X+Width) horizontally and [Y, Y+Height) vertically.
type Rect struct {
	X      int `json:"x"`      // Left edge (inclusive)
	Y      int `json:"y"`      // Top edge (inclusive)
	Width  int `json:"width"`  // Horizontal extent in pixels
	Height int `json:"height"` // Vertical extent in pixels
}

// Area returns Width × Height, or 0 for an empty rectangle.
func (r Rect) Area() int {
	if r.Empty() {
		return 0
	}
	return r.Width * r.Height
}

// Empty reports whether the rectangle covers no pixels.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Inset shrinks the rectangle by fraction of its width (and height) on each
// side, rounded up to whole pixels so a printed outline is always excluded.
// At least one pixel of each dimension is kept.
func (r Rect) Inset(fraction float64) Rect {
	if fraction <= 0 || r.Empty() {
		return r
	}
	dx := min(int(math.Ceil(fraction*float64(r.Width))), (r.Width-1)/2)
	dy := min(int(math.Ceil(fraction*float64(r.Height))), (r.Height-1)/2)
	return Rect{X: r.X + dx, Y: r.Y + dy, Width: r.Width - 2*dx, Height: r.Height - 2*dy}
}

// Clip intersects the rectangle with [0, width) × [0, height).
//
// A rectangle lying wholly outside the image clips to an empty Rect whose
// Area is 0.
func (r Rect) Clip(width, height int) Rect {
	x1 := max(r.X, 0)
	y1 := max(r.Y, 0)
	x2 := min(r.X+r.Width, width)
	y2 := min(r.Y+r.Height, height)
	if x2 <= x1 || y2 <= y1 {
		return Rect{X: x1, Y: y1}
	}
	return Rect{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}
}

// Region is the expected location of one physical mark on the form.
type Region struct {
	// Type is the column the mark belongs to.
	Type MarkType `json:"type"`

	// Item is the menu item name from the form vocabulary.
	Item string `json:"item"`

	// Position is the mark rectangle in pixel coordinates.
	Position Rect `json:"position"`
}

// Form is the printed form geometry expressed as fractions of the image size.
//
// All X offsets and widths are fractions of the image width; all Y offsets
// and heights are fractions of the image height. A Form value is treated as
// immutable once handed to the engine.
type Form struct {
	// Vocabulary is the ordered list of menu items printed on the form.
	// It must match the physical form exactly.
	Vocabulary []string `json:"vocabulary"`

	// QuantityX is the left edge of the quantity checkbox for the first
	// item column.
	QuantityX float64 `json:"quantity_x"`

	// SelectionX is the left edge of the selection bubble for the first
	// item column.
	SelectionX float64 `json:"selection_x"`

	// FirstRowY is the top edge of the first printed row.
	FirstRowY float64 `json:"first_row_y"`

	// RowSpacing is the vertical distance between consecutive printed rows.
	RowSpacing float64 `json:"row_spacing"`

	// BoxWidth and BoxHeight are the size of every mark box.
	BoxWidth  float64 `json:"box_width"`
	BoxHeight float64 `json:"box_height"`

	// ItemsPerRow is the number of items printed side by side on one row.
	ItemsPerRow int `json:"items_per_row"`

	// ItemColumnSpacing shifts each additional item column to the right.
	// Ignored when ItemsPerRow is 1.
	ItemColumnSpacing float64 `json:"item_column_spacing"`
}

// DefaultVocabulary returns the menu items of the reference deployment in
// printed order.
func DefaultVocabulary() []string {
	return []string{"isda", "egg", "water", "sinigang", "Chicken", "pusit", "gatas", "beef"}
}

// ReferenceForm returns the single-column reference layout: one printed row
// per item with the quantity checkbox on the left and the selection bubble to
// its right.
func ReferenceForm() Form {
	return Form{
		Vocabulary:  DefaultVocabulary(),
		QuantityX:   0.07,
		SelectionX:  0.24,
		FirstRowY:   0.09,
		RowSpacing:  0.04,
		BoxWidth:    0.03,
		BoxHeight:   0.03,
		ItemsPerRow: 1,
	}
}

// TwoUpForm returns the compact sheet that prints two items per row
// (isda/egg, water/sinigang, Chicken/pusit, gatas/beef).
func TwoUpForm() Form {
	f := ReferenceForm()
	f.ItemsPerRow = 2
	f.ItemColumnSpacing = 0.31
	return f
}

// Validate checks that the form can be mapped onto an image.
//
// # Errors
//
//   - Returns ErrInvalidForm if the vocabulary is empty, contains blank or
//     duplicate names, if any fraction is outside [0, 1], if box sizes are
//     not positive, or if the last row or column would extend past the
//     image edge.
func (f Form) Validate() error {
	if len(f.Vocabulary) == 0 {
		return fmt.Errorf("%w: empty vocabulary", ErrInvalidForm)
	}
	seen := make(map[string]bool, len(f.Vocabulary))
	for _, item := range f.Vocabulary {
		if strings.TrimSpace(item) == "" {
			return fmt.Errorf("%w: blank item name", ErrInvalidForm)
		}
		if seen[item] {
			return fmt.Errorf("%w: duplicate item %q", ErrInvalidForm, item)
		}
		seen[item] = true
	}
	if f.ItemsPerRow < 1 {
		return fmt.Errorf("%w: items_per_row must be at least 1", ErrInvalidForm)
	}
	if f.BoxWidth <= 0 || f.BoxHeight <= 0 {
		return fmt.Errorf("%w: box size must be positive", ErrInvalidForm)
	}
	for name, v := range map[string]float64{
		"quantity_x":          f.QuantityX,
		"selection_x":         f.SelectionX,
		"first_row_y":         f.FirstRowY,
		"row_spacing":         f.RowSpacing,
		"item_column_spacing": f.ItemColumnSpacing,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("%w: %s=%v outside [0,1]", ErrInvalidForm, name, v)
		}
	}

	rows := (len(f.Vocabulary) + f.ItemsPerRow - 1) / f.ItemsPerRow
	cols := min(f.ItemsPerRow, len(f.Vocabulary))
	bottom := f.FirstRowY + float64(rows-1)*f.RowSpacing + f.BoxHeight
	right := max(f.QuantityX, f.SelectionX) + float64(cols-1)*f.ItemColumnSpacing + f.BoxWidth
	if bottom > 1+pixelEpsilon {
		return fmt.Errorf("%w: last row ends at %.3f of the image height", ErrInvalidForm, bottom)
	}
	if right > 1+pixelEpsilon {
		return fmt.Errorf("%w: last column ends at %.3f of the image width", ErrInvalidForm, right)
	}
	return nil
}

// RegionsFor computes the expected mark rectangle for every (item, mark type)
// pair on an image of the given size.
//
// Parameters:
//   - width, height: image dimensions in pixels. Both must be positive.
//
// Returns:
//   - []Region: exactly 2 × len(Vocabulary) regions, in vocabulary order,
//     quantity before selection for each item.
//   - error: ErrInvalidDimensions for non-positive dimensions.
//
// # Pixel Mapping
//
// Fractions are converted by truncation (int(fraction × size)). Every box is
// at least one pixel wide and tall and is shifted inward when it would cross
// the right or bottom edge, so all regions lie within [0, width) × [0, height).
func (f Form) RegionsFor(width, height int) ([]Region, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}

	perRow := max(f.ItemsPerRow, 1)
	boxW := min(max(toPixels(f.BoxWidth, width), 1), width)
	boxH := min(max(toPixels(f.BoxHeight, height), 1), height)

	regions := make([]Region, 0, 2*len(f.Vocabulary))
	for i, item := range f.Vocabulary {
		row := i / perRow
		col := i % perRow

		y := toPixels(f.FirstRowY+float64(row)*f.RowSpacing, height)
		shift := float64(col) * f.ItemColumnSpacing

		for _, box := range []struct {
			kind MarkType
			x    float64
		}{
			{Quantity, f.QuantityX + shift},
			{Selection, f.SelectionX + shift},
		} {
			x := toPixels(box.x, width)
			regions = append(regions, Region{
				Type: box.kind,
				Item: item,
				Position: Rect{
					X:      clamp(x, 0, width-boxW),
					Y:      clamp(y, 0, height-boxH),
					Width:  boxW,
					Height: boxH,
				},
			})
		}
	}
	return regions, nil
}

// RegionsFor computes regions for the reference form.
func RegionsFor(width, height int) ([]Region, error) {
	return ReferenceForm().RegionsFor(width, height)
}

// Contains reports whether item is part of the form vocabulary.
func (f Form) Contains(item string) bool {
	for _, v := range f.Vocabulary {
		if v == item {
			return true
		}
	}
	return false
}

func toPixels(fraction float64, size int) int {
	return int(fraction*float64(size) + pixelEpsilon)
}

// clamp constrains val to [lo, hi].
func clamp(val, lo, hi int) int {
	if val < lo {
		return lo
	}
	if val > hi {
		return hi
	}
	return val
}
