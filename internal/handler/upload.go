package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

var (
	// ErrMissingFile means the multipart image field was absent.
	ErrMissingFile = errors.New("missing image file")

	// ErrUnsupportedFileType means the upload extension is not a raster format.
	ErrUnsupportedFileType = errors.New("unsupported file type")

	// ErrFileTooLarge means the upload exceeded the configured size limit.
	ErrFileTooLarge = errors.New("file too large")

	// ErrInvalidQuery means a query parameter could not be parsed.
	ErrInvalidQuery = errors.New("invalid query parameter")

	// ErrProcessTimeout means the engine run was abandoned after the
	// configured timeout.
	ErrProcessTimeout = errors.New("processing timeout")
)

// ImageField is the multipart field carrying the form image.
const ImageField = "image"

// multipartOverhead allows for boundaries and headers around the file part.
const multipartOverhead = 1 << 20

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".bmp":  true,
	".tif":  true,
	".tiff": true,
	".webp": true,
}

// Uploads stores multipart image uploads in temporary files.
type Uploads struct {
	maxBytes int64
	tempDir  string
}

// NewUploads returns an upload store limited to maxFileSizeMB per file.
// An empty tempDir uses the system temp directory.
func NewUploads(maxFileSizeMB int64, tempDir string) *Uploads {
	return &Uploads{maxBytes: maxFileSizeMB << 20, tempDir: tempDir}
}

// Save writes the image field of the request to a new temp file.
//
// The caller owns the file and must call cleanup once the engine run is
// over, whether it succeeded or not.
func (u *Uploads) Save(c *gin.Context) (path string, cleanup func(), err error) {
	limit := u.maxBytes + multipartOverhead
	if c.Request.ContentLength > limit {
		return "", nil, ErrFileTooLarge
	}
	if c.Request.Body != nil {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
	}

	file, header, err := c.Request.FormFile(ImageField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return "", nil, ErrFileTooLarge
		}
		return "", nil, ErrMissingFile
	}
	defer func() { _ = file.Close() }()

	if header.Size > u.maxBytes {
		return "", nil, ErrFileTooLarge
	}
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedExtensions[ext] {
		return "", nil, fmt.Errorf("%w: %q", ErrUnsupportedFileType, ext)
	}

	dir := u.tempDir
	if dir == "" {
		dir = os.TempDir()
	}
	path = filepath.Join(dir, "omr-"+uuid.New().String()+ext)

	out, err := os.Create(path)
	if err != nil {
		return "", nil, fmt.Errorf("failed to create upload file: %w", err)
	}
	cleanup = func() { _ = os.Remove(path) }

	if _, err := io.Copy(out, file); err != nil {
		_ = out.Close()
		cleanup()
		return "", nil, fmt.Errorf("failed to store upload: %w", err)
	}
	if err := out.Close(); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("failed to store upload: %w", err)
	}
	return path, cleanup, nil
}

// runAbandonable runs fn in its own goroutine and waits for it until timeout
// elapses or ctx is done. The engine has no cancellation protocol, so a run
// that outlives the wait keeps going and its result is discarded. A timeout
// of zero waits indefinitely.
func runAbandonable[T any](ctx context.Context, timeout time.Duration, fn func() T) (T, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	done := make(chan T, 1)
	go func() { done <- fn() }()

	select {
	case v := <-done:
		return v, nil
	case <-ctx.Done():
		var zero T
		return zero, fmt.Errorf("%w: %w", ErrProcessTimeout, ctx.Err())
	}
}
