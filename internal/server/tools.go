package server

// Tool names.
const (
	ToolSegmentPage   = "registry_segment_page"
	ToolExtractBlocks = "registry_extract_blocks"
	ToolBlockImage    = "registry_block_image"
	ToolConfig        = "registry_config"
)

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

var pathProperty = map[string]interface{}{
	"type":        "string",
	"description": "Absolute path to the scanned page image",
}

var settingsProperty = map[string]interface{}{
	"type":                 "object",
	"description":          "Optional setting overrides for this call, keyed by settings file name (e.g. thresh_value, columns_per_page, split_indents)",
	"additionalProperties": true,
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		{
			Name:        ToolSegmentPage,
			Description: "Segment a scanned registry page into columns of text blocks. Returns the page geometry, the block boxes of every column in reading order and the blobs rejected as outliers.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":     pathProperty,
					"settings": settingsProperty,
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        ToolExtractBlocks,
			Description: "Segment a page, run OCR on every block and optionally parse the text into business records. Blocks that fail are reported in block_errors and do not fail the call.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
					"format": map[string]interface{}{
						"type":        "string",
						"description": "Record format used to parse block text; omit to return text only",
						"enum":        []string{"lines", "tx1975", "tx2005"},
					},
					"settings": settingsProperty,
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        ToolBlockImage,
			Description: "Return one segmented block as a base64-encoded PNG. Use this to inspect a block whose OCR text looks wrong.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
					"column": map[string]interface{}{
						"type":        "integer",
						"description": "Column index, left to right (0-based)",
					},
					"index": map[string]interface{}{
						"type":        "integer",
						"description": "Block index within the column, top to bottom (0-based)",
					},
					"source": map[string]interface{}{
						"type":        "boolean",
						"description": "Crop the grayscale scan instead of the binarized mask",
						"default":     false,
					},
					"settings": settingsProperty,
				},
				"required": []string{"path", "column", "index"},
			},
		},
		{
			Name:        ToolConfig,
			Description: "Show the effective segmentation settings, with optional overrides applied, and the supported record formats.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"settings": settingsProperty,
				},
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
