package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ironsheep/form-omr/internal/layout"
	"github.com/ironsheep/form-omr/internal/omr"
	"github.com/ironsheep/form-omr/internal/order"
)

// APIResponse is the standard envelope for all API responses.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
}

// APIError holds error details in the response.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// RespondOK sends a 200 success response.
func RespondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

// RespondError sends an error response with the given status code.
func RespondError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: msg},
	})
}

// MapError translates engine and upload errors to HTTP status codes and
// error codes. Client-side failures keep the error text so the caller can
// act on it, for example by retaking a blurry photo.
func MapError(err error) (status int, code, msg string) {
	switch {
	case errors.Is(err, ErrMissingFile):
		return http.StatusBadRequest, "MISSING_FILE", "image field is required"
	case errors.Is(err, ErrUnsupportedFileType):
		return http.StatusBadRequest, "UNSUPPORTED_FILE_TYPE", "unsupported file type; allowed: jpg, png, gif, bmp, tiff, webp"
	case errors.Is(err, ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "file exceeds maximum allowed size"
	case errors.Is(err, ErrInvalidQuery):
		return http.StatusBadRequest, "INVALID_QUERY", err.Error()
	case errors.Is(err, layout.ErrInvalidDimensions):
		return http.StatusBadRequest, "INVALID_DIMENSIONS", "width and height must be positive integers"
	case errors.Is(err, omr.ErrImageLoad):
		return http.StatusUnprocessableEntity, "IMAGE_UNREADABLE", err.Error()
	case errors.Is(err, ErrProcessTimeout):
		return http.StatusGatewayTimeout, "PROCESSING_TIMEOUT", "form processing took too long; try a smaller image"
	case errors.Is(err, omr.ErrProcessing):
		return http.StatusInternalServerError, "PROCESSING_FAILED", "the form could not be processed"
	case errors.Is(err, order.ErrExtraction):
		return http.StatusInternalServerError, "EXTRACTION_FAILED", "order lines could not be extracted"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred"
	}
}

// HandleError maps an error and sends the appropriate error response.
func HandleError(c *gin.Context, err error) {
	status, code, msg := MapError(err)
	if status >= 500 {
		requestID, _ := c.Get("request_id")
		log.Printf("[%s] internal error: %v", requestID, err)
	}
	RespondError(c, status, code, msg)
}
