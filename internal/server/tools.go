package server

import "github.com/ironsheep/slidemarks/internal/removal"

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		{
			Name:        "markers_detect",
			Description: "Find the colored slide markers in a PDF and return their sequenced identifiers and normalized page positions. Nothing is written.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the PDF file",
					},
					"zoom": map[string]interface{}{
						"type":        "number",
						"description": "Optional render magnification. Default 2.0",
						"default":     2.0,
					},
					"threshold": map[string]interface{}{
						"type":        "number",
						"description": "Optional cluster merge distance in page fractions. Default 0.05",
						"default":     0.05,
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "markers_bundle",
			Description: "Detect the markers in a PDF, optionally remove them, and write an annotation bundle next to it (or to output).",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the PDF file",
					},
					"output": map[string]interface{}{
						"type":        "string",
						"description": "Optional bundle path. Defaults to the input path with a .pdfannotations extension",
					},
					"clean": map[string]interface{}{
						"type":        "string",
						"description": "Optional marker-free PDF to embed instead of the input",
					},
					"remove": map[string]interface{}{
						"type":        "string",
						"enum":        removal.Strategies(),
						"description": "Optional marker removal strategy. Default none",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "markers_inspect",
			Description: "Read an annotation bundle and list its annotations and annotated pages.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the bundle file",
					},
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
