package server

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ironsheep/form-omr/internal/layout"
	"github.com/ironsheep/form-omr/internal/omr"
)

// defaultCropPadding is the context added around a cropped mark.
const defaultCropPadding = 10

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "omr_process_form").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
// A form that could not be processed is not a tool error: the processing
// result itself carries success=false and the message.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
//
// Each tool handler:
//  1. Unmarshals arguments from JSON
//  2. Applies default values for optional parameters
//  3. Calls the engine or order builder
//  4. Returns the result or error
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Mark Detection
	case "omr_process_form":
		return s.handleProcessForm(args)
	case "omr_process_batch":
		return s.handleProcessBatch(args)

	// Order Building
	case "omr_build_order":
		return s.handleBuildOrder(args)

	// Layout Inspection
	case "omr_layout_regions":
		return s.handleLayoutRegions(args)
	case "omr_annotate_form":
		return s.handleAnnotateForm(args)
	case "omr_crop_mark":
		return s.handleCropMark(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// === Mark Detection Handlers ===

type formPathArgs struct {
	Path string `json:"path"`
}

func parsePathArgs(args json.RawMessage) (string, error) {
	var a formPathArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return "", err
	}
	if a.Path == "" {
		return "", fmt.Errorf("path is required")
	}
	return a.Path, nil
}

func (s *Server) handleProcessForm(args json.RawMessage) (interface{}, error) {
	path, err := parsePathArgs(args)
	if err != nil {
		return nil, err
	}
	return s.engine.Process(path), nil
}

type processBatchArgs struct {
	Paths       []string `json:"paths"`
	Concurrency int      `json:"concurrency"`
}

// BatchResult is the omr_process_batch response.
type BatchResult struct {
	Processed int                     `json:"processed"`
	Succeeded int                     `json:"succeeded"`
	Results   []*omr.ProcessingResult `json:"results"`
}

func (s *Server) handleProcessBatch(args json.RawMessage) (interface{}, error) {
	var a processBatchArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if len(a.Paths) == 0 {
		return nil, fmt.Errorf("paths must contain at least one image")
	}
	if a.Concurrency <= 0 {
		a.Concurrency = s.batchConcurrency
	}

	results := s.engine.ProcessBatch(context.Background(), a.Paths, a.Concurrency)

	batch := &BatchResult{Processed: len(results), Results: results}
	for _, r := range results {
		if r.Success {
			batch.Succeeded++
		}
	}
	return batch, nil
}

// === Order Building Handlers ===

func (s *Server) handleBuildOrder(args json.RawMessage) (interface{}, error) {
	path, err := parsePathArgs(args)
	if err != nil {
		return nil, err
	}
	return s.orders.Build(path), nil
}

// === Layout Inspection Handlers ===

type layoutRegionsArgs struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// LayoutResult is the omr_layout_regions response.
type LayoutResult struct {
	Width      int             `json:"width"`
	Height     int             `json:"height"`
	Vocabulary []string        `json:"vocabulary"`
	Regions    []layout.Region `json:"regions"`
}

func (s *Server) handleLayoutRegions(args json.RawMessage) (interface{}, error) {
	var a layoutRegionsArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	regions, err := s.engine.Regions(a.Width, a.Height)
	if err != nil {
		return nil, err
	}
	return &LayoutResult{
		Width:      a.Width,
		Height:     a.Height,
		Vocabulary: s.engine.Vocabulary(),
		Regions:    regions,
	}, nil
}

// AnnotateResult is the omr_annotate_form response.
type AnnotateResult struct {
	Width       int      `json:"width"`
	Height      int      `json:"height"`
	ImageBase64 string   `json:"image_base64"`
	MimeType    string   `json:"mime_type"`
	Boxes       int      `json:"boxes"`
	Confidence  float64  `json:"confidence"`
	MarkedItems []string `json:"marked_items"`
}

type annotateArgs struct {
	Path string `json:"path"`
	Mask bool   `json:"mask"`
}

func (s *Server) handleAnnotateForm(args json.RawMessage) (interface{}, error) {
	var a annotateArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, fmt.Errorf("path is required")
	}
	overlay, result, err := s.engine.Annotate(a.Path, a.Mask)
	if err != nil {
		return nil, err
	}
	return &AnnotateResult{
		Width:       overlay.Width,
		Height:      overlay.Height,
		ImageBase64: overlay.ImageBase64,
		MimeType:    overlay.MimeType,
		Boxes:       overlay.Boxes,
		Confidence:  result.Confidence,
		MarkedItems: result.MarkedItems,
	}, nil
}

type cropMarkArgs struct {
	Path    string  `json:"path"`
	Item    string  `json:"item"`
	Type    string  `json:"type"`
	Padding *int    `json:"padding"`
	Scale   float64 `json:"scale"`
}

func (s *Server) handleCropMark(args json.RawMessage) (interface{}, error) {
	var a cropMarkArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Scale == 0 {
		a.Scale = 1.0
	}
	padding := defaultCropPadding
	if a.Padding != nil {
		padding = *a.Padding
	}

	kind := layout.Selection
	switch a.Type {
	case "", string(layout.Selection):
	case string(layout.Quantity):
		kind = layout.Quantity
	default:
		return nil, fmt.Errorf("type must be quantity or selection, got %q", a.Type)
	}

	return s.engine.CropMark(a.Path, a.Item, kind, padding, a.Scale)
}
