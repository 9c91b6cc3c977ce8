package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/ironsheep/slidemarks/internal/bundle"
	"github.com/ironsheep/slidemarks/internal/detection"
	"github.com/ironsheep/slidemarks/internal/pipeline"
)

// errMissingPath is returned by every tool when the path argument is empty.
var errMissingPath = errors.New("path is required")

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "markers_detect").
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
// Malformed arguments return -32602; tool execution errors return -32000.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		var argErr *argumentError
		if errors.As(err, &argErr) {
			return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
		}
		log.Warn().Err(err).Str("tool", params.Name).Msg("tool failed")
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
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	case "markers_detect":
		return s.handleMarkersDetect(ctx, args)
	case "markers_bundle":
		return s.handleMarkersBundle(ctx, args)
	case "markers_inspect":
		return s.handleMarkersInspect(args)
	default:
		return nil, &argumentError{fmt.Errorf("unknown tool: %s", name)}
	}
}

// argumentError marks failures caused by the caller's arguments.
type argumentError struct {
	err error
}

func (e *argumentError) Error() string { return e.err.Error() }

func (e *argumentError) Unwrap() error { return e.err }

func decodeArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}
	if err := json.Unmarshal(args, v); err != nil {
		return &argumentError{err}
	}
	return nil
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
// On marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

type markersDetectArgs struct {
	Path      string   `json:"path"`
	Zoom      *float64 `json:"zoom"`
	Threshold *float64 `json:"threshold"`
}

// DetectResult is the markers_detect response.
type DetectResult struct {
	Pages       int                    `json:"pages"`
	Count       int                    `json:"count"`
	Annotations []detection.Annotation `json:"annotations"`
}

func (s *Server) handleMarkersDetect(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a markersDetectArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, &argumentError{errMissingPath}
	}

	cfg := s.cfg
	if a.Zoom != nil {
		cfg.Zoom = *a.Zoom
	}
	if a.Threshold != nil {
		cfg.ClusterThreshold = *a.Threshold
	}
	if err := cfg.Validate(); err != nil {
		return nil, &argumentError{err}
	}

	result, err := pipeline.Detect(ctx, s.open, a.Path, cfg)
	if err != nil {
		return nil, err
	}
	return &DetectResult{
		Pages:       result.Pages,
		Count:       len(result.Annotations),
		Annotations: result.Annotations,
	}, nil
}

type markersBundleArgs struct {
	Path   string `json:"path"`
	Output string `json:"output"`
	Clean  string `json:"clean"`
	Remove string `json:"remove"`
}

// BundleResult is the markers_bundle response.
type BundleResult struct {
	Output string `json:"output"`
	Pages  int    `json:"pages"`
	Count  int    `json:"count"`
}

func (s *Server) handleMarkersBundle(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a markersBundleArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, &argumentError{errMissingPath}
	}

	cfg := s.cfg
	if a.Remove != "" {
		cfg.Remove = a.Remove
	}
	if err := cfg.Validate(); err != nil {
		return nil, &argumentError{err}
	}

	result, err := pipeline.Extract(ctx, pipeline.ExtractRequest{
		Input:  a.Path,
		Clean:  a.Clean,
		Output: a.Output,
		Config: cfg,
		Open:   s.open,
	})
	if err != nil {
		return nil, err
	}
	return &BundleResult{
		Output: result.Output,
		Pages:  result.Pages,
		Count:  len(result.Annotations),
	}, nil
}

type markersInspectArgs struct {
	Path string `json:"path"`
}

// InspectResult is the markers_inspect response.
type InspectResult struct {
	Version     int                    `json:"version"`
	Count       int                    `json:"count"`
	Pages       []int                  `json:"pages"`
	PDFBytes    int                    `json:"pdfBytes"`
	Annotations []detection.Annotation `json:"annotations"`
}

func (s *Server) handleMarkersInspect(args json.RawMessage) (interface{}, error) {
	var a markersInspectArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, &argumentError{errMissingPath}
	}

	b, err := bundle.ReadFile(a.Path)
	if err != nil {
		return nil, err
	}
	doc, err := b.Document()
	if err != nil {
		return nil, err
	}
	return &InspectResult{
		Version:     b.Version,
		Count:       len(b.Annotations),
		Pages:       b.Pages(),
		PDFBytes:    len(doc),
		Annotations: b.Annotations,
	}, nil
}
