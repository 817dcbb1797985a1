// Package layout describes the geometry of the printed order form.
//
// The form is never measured from pixels. Every checkbox position is stored as
// a fraction of the image width and height, so the same logical layout maps
// onto a 600 pixel phone photo or a 3000 pixel flatbed scan without any
// calibration step.
//
// # Form Structure
//
// Each menu item in the vocabulary owns two mark positions:
//   - quantity: the checkbox in the quantity column
//   - selection: the bubble in the menu (selection) column
//
// Items are laid out row by row in vocabulary order. A Form may place several
// items side by side on one printed row (ItemsPerRow > 1); each additional
// item column is shifted right by ItemColumnSpacing.
//
// # Coordinate System
//
// Pixel coordinates follow the image convention used throughout the module:
// origin at the top-left corner, X increases rightward, Y increases downward.
// A Rect covers [X, X+Width) × [Y, Y+Height).
//
// # Determinism
//
// RegionsFor is a pure function of (width, height) and the Form value. It
// reads no pixels and keeps no state, so it is safe for concurrent use and
// always returns the same ordered slice for the same inputs.
package layout
