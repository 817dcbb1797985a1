// Package omr implements the mark detection engine for scanned order forms.
//
// An Engine takes the path of a photographed or scanned form and returns a
// ProcessingResult listing, for every (item, mark type) position on the form,
// whether it was filled in and how confident the decision is.
//
// # Pipeline
//
//  1. Load and normalize the image (imaging.LoadImage, imaging.Normalize)
//  2. Binarize with a locally adaptive threshold (imaging.Binarize)
//  3. Drop ink blobs outside the plausible mark area range
//  4. Compute the expected regions from the image size (layout.Form)
//  5. Score each region: fill ratio, marked decision, confidence
//  6. Aggregate into one report
//
// # Confidence Scales
//
// Mark.Confidence is on a 0-1 scale. ProcessingResult.Confidence is the mean
// of all mark confidences on a 0-100 (percentage) scale. Do not mix them.
//
// # Error Handling
//
// Process never panics and never returns partial data. On failure the result
// has Success=false, a human-readable Error, and no other fields. The failure
// class is available through Err() and can be tested with errors.Is against
// ErrImageLoad or ErrProcessing.
//
// # Thread Safety
//
// An Engine holds only immutable configuration. Process may be called from
// many goroutines at once; each call owns its image buffers exclusively and
// discards them on return. The engine never deletes the input file.
package omr
