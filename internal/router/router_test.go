package router_test

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/form-omr/internal/handler"
	"github.com/ironsheep/form-omr/internal/omr"
	"github.com/ironsheep/form-omr/internal/order"
	"github.com/ironsheep/form-omr/internal/router"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// setupRouter wires the real engine; uploads land in the returned directory
func setupRouter(t *testing.T) (*gin.Engine, string) {
	t.Helper()

	engine, err := omr.NewEngine(omr.DefaultConfig())
	require.NoError(t, err)

	uploadDir := t.TempDir()
	uploads := handler.NewUploads(5, uploadDir)
	r := router.Setup(
		handler.NewOMRHandler(engine, uploads, 30*time.Second),
		handler.NewOrderHandler(order.NewBuilder(engine), uploads, 30*time.Second),
		handler.NewHealthHandler("test"),
	)
	return r, uploadDir
}

// formPNG encodes a white 1000x1000 form with the egg selection bubble filled
func formPNG(t *testing.T, fillEgg bool) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 1000, 1000))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	if fillEgg {
		for y := 130; y < 160; y++ {
			for x := 240; x < 270; x++ {
				img.Set(x, y, color.Black)
			}
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// uploadRequest builds a multipart POST with data in the image field
func uploadRequest(t *testing.T, url, filename string, data []byte) *http.Request {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile(handler.ImageField, filename)
	require.NoError(t, err)
	_, _ = part.Write(data)
	require.NoError(t, writer.Close())

	req, err := http.NewRequest(http.MethodPost, url, body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

func assertUploadsRemoved(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "temporary uploads should be removed")
}

func TestHealth(t *testing.T) {
	r, _ := setupRouter(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/health", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode(t, w)["status"])
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestProcess_SingleSelection(t *testing.T) {
	r, dir := setupRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, uploadRequest(t, "/api/v1/omr/process", "form.png", formPNG(t, true)))

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode(t, w)
	assert.Equal(t, true, resp["success"])

	data := resp["data"].(map[string]interface{})
	assert.Equal(t, []interface{}{"egg"}, data["marked_items"])
	assert.Equal(t, float64(1), data["total_marks_detected"])
	assert.Len(t, data["marks"], 16)
	assertUploadsRemoved(t, dir)
}

func TestProcess_UnreadableImage(t *testing.T) {
	r, dir := setupRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, uploadRequest(t, "/api/v1/omr/process", "form.png", []byte("not really a png")))

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	resp := decode(t, w)
	assert.Equal(t, false, resp["success"])
	errBody := resp["error"].(map[string]interface{})
	assert.Equal(t, "IMAGE_UNREADABLE", errBody["code"])
	assertUploadsRemoved(t, dir)
}

func TestProcess_UploadErrors(t *testing.T) {
	r, _ := setupRouter(t)

	tests := []struct {
		name     string
		req      func() *http.Request
		wantCode string
	}{
		{
			"missing file",
			func() *http.Request {
				req, _ := http.NewRequest(http.MethodPost, "/api/v1/omr/process", nil)
				return req
			},
			"MISSING_FILE",
		},
		{
			"unsupported type",
			func() *http.Request {
				return uploadRequest(t, "/api/v1/omr/process", "form.pdf", []byte("%PDF-1.4"))
			},
			"UNSUPPORTED_FILE_TYPE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, tt.req())

			assert.Equal(t, http.StatusBadRequest, w.Code)
			errBody := decode(t, w)["error"].(map[string]interface{})
			assert.Equal(t, tt.wantCode, errBody["code"])
		})
	}
}

func TestLayout(t *testing.T) {
	r, _ := setupRouter(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/omr/layout?width=1000&height=1000", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w)["data"].(map[string]interface{})
	regions := data["regions"].([]interface{})
	require.Len(t, regions, 16)

	first := regions[0].(map[string]interface{})
	assert.Equal(t, "quantity", first["type"])
	assert.Equal(t, "isda", first["item"])
	assert.Equal(t, map[string]interface{}{"x": float64(70), "y": float64(90), "width": float64(30), "height": float64(30)}, first["position"])
}

func TestLayout_InvalidQuery(t *testing.T) {
	r, _ := setupRouter(t)

	for _, query := range []string{"", "?width=abc&height=10", "?width=0&height=10"} {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/api/v1/omr/layout"+query, nil)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code, "query %q", query)
	}
}

func TestOrdersFromForm(t *testing.T) {
	r, dir := setupRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, uploadRequest(t, "/api/v1/orders/from-form", "form.jpg.png", formPNG(t, true)))

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data := decode(t, w)["data"].(map[string]interface{})
	assert.Equal(t, true, data["success"])

	items := data["orderItems"].([]interface{})
	require.Len(t, items, 1)
	line := items[0].(map[string]interface{})
	assert.Equal(t, "egg", line["item_name"])
	assert.Equal(t, float64(1), line["quantity"])
	assert.NotNil(t, data["omrData"])
	assertUploadsRemoved(t, dir)
}

func TestOrdersFromForm_BlankForm(t *testing.T) {
	r, _ := setupRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, uploadRequest(t, "/api/v1/orders/from-form", "form.png", formPNG(t, false)))

	require.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w)["data"].(map[string]interface{})
	assert.Equal(t, []interface{}{}, data["orderItems"])
}

func TestOrdersFromForm_UnreadableImage(t *testing.T) {
	r, _ := setupRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, uploadRequest(t, "/api/v1/orders/from-form", "form.png", nil))

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	resp := decode(t, w)
	assert.Equal(t, false, resp["success"])

	data := resp["data"].(map[string]interface{})
	assert.Equal(t, []interface{}{}, data["orderItems"])
	assert.Nil(t, data["omrData"])
	assert.NotEmpty(t, data["error"])
}
