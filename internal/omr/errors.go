package omr

import "errors"

var (
	// ErrImageLoad means the input file is missing, unreadable or not a
	// decodable raster image. Fatal for the run; retrying the same file is
	// pointless.
	ErrImageLoad = errors.New("image load error")

	// ErrProcessing means binarization or scoring failed unexpectedly.
	ErrProcessing = errors.New("processing error")

	// ErrInvalidConfig is returned by NewEngine for unusable configuration.
	ErrInvalidConfig = errors.New("invalid engine configuration")
)
