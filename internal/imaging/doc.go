// Package imaging loads scanned order forms and turns them into binary ink
// masks for mark scoring.
//
// The package implements the first half of the OMR pipeline:
//
//  1. Load: decode PNG, JPEG, GIF, TIFF, BMP or WebP from disk, honour EXIF
//     orientation, and downscale oversized phone photos.
//  2. Normalize: convert to a single-channel intensity image and apply a
//     Gaussian low-pass filter (5x5 at the default radius) to suppress scan
//     grain before thresholding.
//  3. Binarize: classify every pixel as ink or paper with a locally adaptive
//     threshold, so a shadow across one corner of the sheet does not swallow
//     the marks beneath it.
//  4. Filter: drop ink blobs that are too small or too large to be a mark.
//
// It also renders annotated overlays and zoomed crops of individual marks for
// visual inspection.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based with (0,0) at the top-left
// corner, X increasing rightward and Y increasing downward. Intensity images
// returned by Normalize always have their origin at (0,0).
//
// # Thread Safety
//
// Every function is stateless and allocates its own buffers. Different images
// may be processed concurrently without coordination; the option structs are
// passed by value and never mutated.
//
// # Error Handling
//
// Functions return errors for:
//   - File I/O errors during image loading (missing, unreadable, directory)
//   - Decode errors for empty, truncated or unsupported files
//   - Encoding errors during image output
package imaging
