package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// pathProperty is the schema of the image path argument shared by most tools.
var pathProperty = map[string]interface{}{
	"type":        "string",
	"description": "Absolute path to the scanned or photographed form image",
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Mark Detection
		{
			Name:        "omr_process_form",
			Description: "Detect filled marks on an order form image. Returns every quantity and selection mark with fill ratio and confidence (0-1), the overall scan confidence (0-100), and the list of selected items.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "omr_process_batch",
			Description: "Detect marks on several form images in parallel. Results are returned in the same order as the paths; a failed image does not affect the others.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"paths": map[string]interface{}{
						"type":        "array",
						"items":       map[string]interface{}{"type": "string"},
						"description": "Absolute paths to form images",
					},
					"concurrency": map[string]interface{}{
						"type":        "integer",
						"description": "Maximum images processed at once. Default is the server setting",
					},
				},
				"required": []string{"paths"},
			},
		},

		// Order Building
		{
			Name:        "omr_build_order",
			Description: "Build order lines from a form image. Each selected item becomes a line with quantity 1 and the weaker of its selection and quantity mark confidences.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
				},
				"required": []string{"path"},
			},
		},

		// Layout Inspection
		{
			Name:        "omr_layout_regions",
			Description: "List the expected pixel rectangle of every mark on a form image of the given size. Useful for checking that a scan lines up with the printed layout.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"width": map[string]interface{}{
						"type":        "integer",
						"description": "Image width in pixels",
					},
					"height": map[string]interface{}{
						"type":        "integer",
						"description": "Image height in pixels",
					},
				},
				"required": []string{"width", "height"},
			},
		},
		{
			Name:        "omr_annotate_form",
			Description: "Draw every mark region over the form image: marked regions from amber (low confidence) to green (high), unmarked in grey, each labelled with its confidence. Returns a base64 PNG.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
					"mask": map[string]interface{}{
						"type":        "boolean",
						"description": "Draw over the black-and-white ink mask the marks were scored on instead of the photo (default: false)",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "omr_crop_mark",
			Description: "Crop the region of one mark for close inspection of a borderline decision. Returns a base64 PNG.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
					"item": map[string]interface{}{
						"type":        "string",
						"description": "Menu item name exactly as printed on the form",
					},
					"type": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"quantity", "selection"},
						"description": "Which mark of the item to crop. Default selection",
						"default":     "selection",
					},
					"padding": map[string]interface{}{
						"type":        "integer",
						"description": "Pixels of context added around the region. Default 10",
						"default":     10,
					},
					"scale": map[string]interface{}{
						"type":        "number",
						"description": "Optional scale factor (e.g., 4.0 to enlarge a small box). Default 1.0",
						"default":     1.0,
					},
				},
				"required": []string{"path", "item"},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
