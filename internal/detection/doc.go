// Package detection finds connected ink blobs in binary mark images.
//
// A blob is an 8-connected group of foreground pixels. The OMR pipeline uses
// blobs for two jobs:
//
//   - Noise filtering: specks smaller than the minimum plausible mark area and
//     sprawling components larger than the maximum (printed table rules,
//     shadows along a fold) are removed before marks are scored.
//   - Mark coverage: the largest blob inside a mark region, relative to all
//     ink in that region, tells a solid filled bubble apart from scattered
//     dirt that happens to reach the same pixel count.
//
// # Coordinate System
//
// Masks are indexed mask[y][x] with (0, 0) at the top-left corner. Bounds use
// an inclusive top-left (X1, Y1) and exclusive bottom-right (X2, Y2).
//
// # Performance Considerations
//
// Labelling is a single pass with an explicit stack (no recursion), so large
// components such as a border line spanning the whole page cannot overflow
// the goroutine stack. Each pixel is visited once per call.
package detection
