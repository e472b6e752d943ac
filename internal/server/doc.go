// Package server exposes the square detector as an MCP (Model Context Protocol)
// server.
//
// The server speaks JSON-RPC 2.0 over stdio so that MCP clients can ask for
// colored squares in an image file without shelling out to the batch CLI.
//
// # Protocol
//
// One request per line is read from stdin and one response per line is
// written to stdout. Malformed lines are logged and skipped.
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Basic Image Information:
//   - image_load: Load image and get metadata
//   - image_dimensions: Get width and height
//   - image_edge_map: The closed Canny edge map detection runs on
//
// Square Detection:
//   - squares_detect: Detections and per-color counts, optionally with the
//     fate of every contour
//   - squares_annotate: Annotated PNG plus the detections drawn on it
//
// All tools take an absolute "path". The detector and its palette are fixed
// when the server is constructed; tool calls cannot change them, though
// image_edge_map accepts per-call threshold overrides.
//
// # Image Caching
//
// Decoded images are cached by path for the lifetime of the process, so
// calling squares_detect and then squares_annotate on one file decodes it once.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: The Go error string
//
// # Usage
//
//	det, err := detection.NewDetector(cfg)
//	if err != nil {
//	    return err
//	}
//	srv := server.New(det, logger)
//	return srv.Run()
package server
