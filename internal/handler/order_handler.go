package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ironsheep/form-omr/internal/order"
)

// OrderBuilder turns a form image into order lines.
// *order.Builder satisfies it.
type OrderBuilder interface {
	Build(path string) *order.Result
}

// OrderHandler handles order creation from form images.
type OrderHandler struct {
	builder OrderBuilder
	uploads *Uploads
	timeout time.Duration
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(builder OrderBuilder, uploads *Uploads, timeout time.Duration) *OrderHandler {
	return &OrderHandler{builder: builder, uploads: uploads, timeout: timeout}
}

// FromForm handles POST /api/v1/orders/from-form
//
// The data is always an order.Result, including on engine failure, so
// callers can rely on orderItems being an array.
func (h *OrderHandler) FromForm(c *gin.Context) {
	path, cleanup, err := h.uploads.Save(c)
	if err != nil {
		HandleError(c, err)
		return
	}

	result, err := runAbandonable(c.Request.Context(), h.timeout, func() *order.Result {
		defer cleanup()
		return h.builder.Build(path)
	})
	if err != nil {
		HandleError(c, err)
		return
	}
	if !result.Success {
		status, code, msg := MapError(result.Err())
		c.JSON(status, APIResponse{
			Success: false,
			Data:    result,
			Error:   &APIError{Code: code, Message: msg},
		})
		return
	}

	RespondOK(c, result)
}
