package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func pathProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to the image file",
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Basic Image Information
		{
			Name:        "image_load",
			Description: "Load an image file and return its dimensions and format. The image is cached for subsequent operations.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_dimensions",
			Description: "Get the width and height of an image file.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_edge_map",
			Description: "Compute the binary edge map the square detector works on (Canny edges closed with a square kernel) and return it as base64-encoded PNG. Use it to see why a square was or was not found.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"threshold_low": map[string]interface{}{
						"type":        "integer",
						"description": "Hysteresis low threshold (0-255). Defaults to the detector setting.",
					},
					"threshold_high": map[string]interface{}{
						"type":        "integer",
						"description": "Strong edge threshold (0-255). Defaults to the detector setting.",
					},
					"close_kernel": map[string]interface{}{
						"type":        "integer",
						"description": "Side of the closing kernel in pixels; 0 or 1 disables closing. Defaults to the detector setting.",
					},
				},
				"required": []string{"path"},
			},
		},

		// Square Detection
		{
			Name:        "squares_detect",
			Description: "Find colored, possibly rotated squares and classify each by nearest palette color. Returns centroid, size, angle and color per square plus per-color counts.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"candidates": map[string]interface{}{
						"type":        "boolean",
						"description": "Also report every contour considered and why it was rejected. Default false",
						"default":     false,
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "squares_annotate",
			Description: "Detect squares and return the image with each fitted rectangle, centroid and color name drawn on it, as base64-encoded PNG, together with the detections.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
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
