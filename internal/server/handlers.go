package server

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/ironsheep/colorsquares/internal/detection"
	"github.com/ironsheep/colorsquares/internal/imaging"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_load", "squares_detect").
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
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, codeInvalidParams, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		s.log.Debug().Err(err).Str("tool", params.Name).Msg("tool failed")
		return s.errorResponse(req.ID, codeToolFailed, "Tool execution failed", err.Error())
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
//  3. Loads images from cache as needed
//  4. Calls the appropriate imaging/detection function
//  5. Returns the result or error
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Basic Image Information
	case "image_load":
		return s.handleImageLoad(args)
	case "image_dimensions":
		return s.handleImageDimensions(args)
	case "image_edge_map":
		return s.handleImageEdgeMap(args)

	// Square Detection
	case "squares_detect":
		return s.handleSquaresDetect(args)
	case "squares_annotate":
		return s.handleSquaresAnnotate(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
// An empty data string is left out of the response.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	e := &MCPError{Code: code, Message: message}
	if data != "" {
		e.Data = data
	}
	return &MCPResponse{JSONRPC: "2.0", ID: id, Error: e}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// === Basic Image Information Handlers ===

type imageLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

func (s *Server) handleImageDimensions(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.GetDimensions(s.cache, a.Path)
}

// imageEdgeMapArgs holds the image_edge_map arguments. Omitted overrides
// keep the detector's configured value; an explicit 0 is honored.
type imageEdgeMapArgs struct {
	Path          string `json:"path"`
	ThresholdLow  *int   `json:"threshold_low"`
	ThresholdHigh *int   `json:"threshold_high"`
	CloseKernel   *int   `json:"close_kernel"`
}

func (s *Server) handleImageEdgeMap(args json.RawMessage) (interface{}, error) {
	var a imageEdgeMapArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	p := s.detector.Config().Edge
	if a.ThresholdLow != nil {
		p.LowThreshold = *a.ThresholdLow
	}
	if a.ThresholdHigh != nil {
		p.HighThreshold = *a.ThresholdHigh
	}
	if a.CloseKernel != nil {
		p.CloseKernel = *a.CloseKernel
	}
	if p.LowThreshold < 0 {
		return nil, fmt.Errorf("threshold_low %d is negative", p.LowThreshold)
	}
	if p.LowThreshold > p.HighThreshold {
		return nil, fmt.Errorf("threshold_low %d exceeds threshold_high %d", p.LowThreshold, p.HighThreshold)
	}

	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	return imaging.EdgeMap(img, p)
}

// === Square Detection Handlers ===

type squaresDetectArgs struct {
	Path       string `json:"path"`
	Candidates bool   `json:"candidates"`
}

// squaresDetectResult is the detection set, optionally followed by the fate
// of every contour.
type squaresDetectResult struct {
	*detection.DetectionSet
	Candidates []detection.Candidate `json:"candidates,omitempty"`
}

func (s *Server) handleSquaresDetect(args json.RawMessage) (interface{}, error) {
	var a squaresDetectArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	if !a.Candidates {
		return s.detector.Detect(img, filepath.Base(a.Path))
	}

	set, cands, err := s.detector.DetectWithCandidates(img, filepath.Base(a.Path))
	if err != nil {
		return nil, err
	}
	return squaresDetectResult{DetectionSet: set, Candidates: cands}, nil
}

// SquaresAnnotateResult carries the annotated image and the detections drawn on it.
type SquaresAnnotateResult struct {
	ImageBase64 string                  `json:"image_base64"`
	MimeType    string                  `json:"mime_type"`
	Width       int                     `json:"width"`
	Height      int                     `json:"height"`
	Detections  *detection.DetectionSet `json:"detections"`
}

func (s *Server) handleSquaresAnnotate(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	set, err := s.detector.Detect(img, filepath.Base(a.Path))
	if err != nil {
		return nil, err
	}
	annotated := detection.Annotate(img, set)

	encoded, err := imaging.EncodePNGBase64(annotated)
	if err != nil {
		return nil, fmt.Errorf("failed to encode annotated image: %w", err)
	}

	b := annotated.Bounds()
	return &SquaresAnnotateResult{
		ImageBase64: encoded,
		MimeType:    "image/png",
		Width:       b.Dx(),
		Height:      b.Dy(),
		Detections:  set,
	}, nil
}
