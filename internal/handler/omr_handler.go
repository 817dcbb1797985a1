package handler

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ironsheep/form-omr/internal/layout"
	"github.com/ironsheep/form-omr/internal/omr"
)

// FormProcessor is the engine surface used by the HTTP boundary.
// *omr.Engine satisfies it.
type FormProcessor interface {
	Process(path string) *omr.ProcessingResult
	Regions(width, height int) ([]layout.Region, error)
	Vocabulary() []string
}

// LayoutResponse is the data of GET /api/v1/omr/layout.
type LayoutResponse struct {
	Width      int             `json:"width"`
	Height     int             `json:"height"`
	Vocabulary []string        `json:"vocabulary"`
	Regions    []layout.Region `json:"regions"`
}

// OMRHandler handles mark detection endpoints.
type OMRHandler struct {
	engine  FormProcessor
	uploads *Uploads
	timeout time.Duration
}

// NewOMRHandler creates a new OMRHandler.
func NewOMRHandler(engine FormProcessor, uploads *Uploads, timeout time.Duration) *OMRHandler {
	return &OMRHandler{engine: engine, uploads: uploads, timeout: timeout}
}

// Process handles POST /api/v1/omr/process
//
// Expects a multipart upload in the "image" field. Responds with the
// processing result as data on success.
func (h *OMRHandler) Process(c *gin.Context) {
	path, cleanup, err := h.uploads.Save(c)
	if err != nil {
		HandleError(c, err)
		return
	}

	result, err := runAbandonable(c.Request.Context(), h.timeout, func() *omr.ProcessingResult {
		defer cleanup()
		return h.engine.Process(path)
	})
	if err != nil {
		HandleError(c, err)
		return
	}
	if !result.Success {
		HandleError(c, result.Err())
		return
	}

	RespondOK(c, result)
}

// Layout handles GET /api/v1/omr/layout?width=&height=
func (h *OMRHandler) Layout(c *gin.Context) {
	width, err := queryInt(c, "width")
	if err != nil {
		HandleError(c, err)
		return
	}
	height, err := queryInt(c, "height")
	if err != nil {
		HandleError(c, err)
		return
	}

	regions, err := h.engine.Regions(width, height)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, LayoutResponse{
		Width:      width,
		Height:     height,
		Vocabulary: h.engine.Vocabulary(),
		Regions:    regions,
	})
}

func queryInt(c *gin.Context, name string) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, fmt.Errorf("%w: %s is required", ErrInvalidQuery, name)
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", ErrInvalidQuery, name)
	}
	return v, nil
}
