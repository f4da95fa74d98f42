package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strconv"

	imgenc "github.com/disintegration/imaging"

	"github.com/ironsheep/registry-segmenter/internal/config"
	"github.com/ironsheep/registry-segmenter/internal/geometry"
	"github.com/ironsheep/registry-segmenter/internal/imaging"
	"github.com/ironsheep/registry-segmenter/internal/registry"
	"github.com/ironsheep/registry-segmenter/internal/segment"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "registry_segment_page").
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
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
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
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	case ToolSegmentPage:
		return s.handleSegmentPage(ctx, args)
	case ToolExtractBlocks:
		return s.handleExtractBlocks(ctx, args)
	case ToolBlockImage:
		return s.handleBlockImage(ctx, args)
	case ToolConfig:
		return s.handleConfig(args)
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
// On marshal failure it returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// settingsFor applies per-call overrides on top of the server settings.
// Values may be any JSON scalar.
func (s *Server) settingsFor(overrides map[string]interface{}) (config.Config, error) {
	if len(overrides) == 0 {
		return s.cfg, nil
	}
	values := make(map[string]string, len(overrides))
	for k, v := range overrides {
		values[k] = settingValue(v)
	}
	return s.cfg.With(values)
}

// settingValue renders a decoded JSON scalar as the settings file would
// spell it. Numbers never use exponent form, so large integers such as a
// seed stay parseable.
func settingValue(v interface{}) string {
	if f, ok := v.(float64); ok {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return fmt.Sprint(v)
}

func (s *Server) pipeline(overrides map[string]interface{}, opts ...segment.Option) (*segment.Pipeline, error) {
	cfg, err := s.settingsFor(overrides)
	if err != nil {
		return nil, err
	}
	opts = append([]segment.Option{segment.WithLoader(s.cache.Load)}, opts...)
	return segment.New(cfg, s.recognizer, opts...)
}

// === Segmentation Handlers ===

type segmentPageArgs struct {
	Path     string                 `json:"path"`
	Settings map[string]interface{} `json:"settings"`
}

// ColumnSummary describes one column of a segmented page.
type ColumnSummary struct {
	Index  int                    `json:"index"`
	Left   float64                `json:"left"`
	Right  float64                `json:"right"`
	Blocks []geometry.BoundingBox `json:"blocks"`
}

// LayoutSummary is the result of registry_segment_page.
type LayoutSummary struct {
	Page          string                 `json:"page"`
	Width         int                    `json:"width"`
	Height        int                    `json:"height"`
	Origin        geometry.Point         `json:"origin"`
	Detected      int                    `json:"detected"`
	Columns       []ColumnSummary        `json:"columns"`
	Blocks        int                    `json:"blocks"`
	Rejects       []geometry.BoundingBox `json:"rejects"`
	BorderRejects int                    `json:"border_rejects"`
}

func summarize(lay *segment.Layout) LayoutSummary {
	sum := LayoutSummary{
		Page:          lay.Page,
		Width:         lay.Width,
		Height:        lay.Height,
		Origin:        lay.Origin,
		Detected:      lay.Detected,
		Columns:       make([]ColumnSummary, 0, len(lay.Columns)),
		Rejects:       make([]geometry.BoundingBox, 0, len(lay.Rejects)),
		BorderRejects: len(lay.BorderRejects),
	}
	for i, col := range lay.Columns {
		cs := ColumnSummary{Index: i, Left: col.Left, Right: col.Right, Blocks: make([]geometry.BoundingBox, 0, len(col.Contours))}
		for _, c := range col.Contours {
			cs.Blocks = append(cs.Blocks, c.Box)
		}
		sum.Blocks += len(cs.Blocks)
		sum.Columns = append(sum.Columns, cs)
	}
	for _, c := range lay.Rejects {
		sum.Rejects = append(sum.Rejects, c.Box)
	}
	return sum
}

func (s *Server) handleSegmentPage(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a segmentPageArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, fmt.Errorf("path is required")
	}
	p, err := s.pipeline(a.Settings)
	if err != nil {
		return nil, err
	}
	lay, err := p.Segment(ctx, a.Path)
	if err != nil {
		return nil, err
	}
	return summarize(lay), nil
}

type extractBlocksArgs struct {
	Path     string                 `json:"path"`
	Format   string                 `json:"format"`
	Settings map[string]interface{} `json:"settings"`
}

// BlockFailure is a block that was skipped during extraction.
type BlockFailure struct {
	Box   geometry.BoundingBox `json:"box"`
	Stage string               `json:"stage"`
	Error string               `json:"error"`
}

// ExtractResult is the result of registry_extract_blocks.
type ExtractResult struct {
	Page        string              `json:"page"`
	RunID       string              `json:"run_id"`
	Blocks      []segment.TextBlock `json:"blocks"`
	Records     []registry.Business `json:"records"`
	BlockErrors []BlockFailure      `json:"block_errors"`
	Rejects     int                 `json:"rejects"`
}

func (s *Server) handleExtractBlocks(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a extractBlocksArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, fmt.Errorf("path is required")
	}

	var opts []segment.Option
	if a.Format != "" {
		factory, err := registry.FactoryFor(a.Format)
		if err != nil {
			return nil, err
		}
		opts = append(opts, segment.WithParser(factory))
	}
	p, err := s.pipeline(a.Settings, opts...)
	if err != nil {
		return nil, err
	}

	res, err := p.Process(ctx, a.Path)
	if err != nil {
		return nil, err
	}

	out := ExtractResult{
		Page:        res.Page,
		RunID:       res.RunID,
		Blocks:      res.Blocks,
		Records:     res.Records,
		BlockErrors: make([]BlockFailure, 0, len(res.BlockErrors)),
		Rejects:     res.Rejects,
	}
	if out.Blocks == nil {
		out.Blocks = []segment.TextBlock{}
	}
	if out.Records == nil {
		out.Records = []registry.Business{}
	}
	for _, be := range res.BlockErrors {
		f := BlockFailure{Stage: string(be.Stage), Error: be.Cause.Error()}
		if be.Box != nil {
			f.Box = *be.Box
		}
		out.BlockErrors = append(out.BlockErrors, f)
	}
	return out, nil
}

type blockImageArgs struct {
	Path     string                 `json:"path"`
	Column   int                    `json:"column"`
	Index    int                    `json:"index"`
	Source   bool                   `json:"source"`
	Settings map[string]interface{} `json:"settings"`
}

// BlockImage is the result of registry_block_image.
type BlockImage struct {
	Column      int                  `json:"column"`
	Index       int                  `json:"index"`
	Box         geometry.BoundingBox `json:"box"`
	Region      geometry.BoundingBox `json:"region"`
	Width       int                  `json:"width"`
	Height      int                  `json:"height"`
	ImageBase64 string               `json:"image_base64"`
}

func (s *Server) handleBlockImage(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a blockImageArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, fmt.Errorf("path is required")
	}
	p, err := s.pipeline(a.Settings)
	if err != nil {
		return nil, err
	}
	lay, err := p.Segment(ctx, a.Path)
	if err != nil {
		return nil, err
	}

	if a.Column < 0 || a.Column >= len(lay.Columns) {
		return nil, fmt.Errorf("column %d out of range: page has %d columns", a.Column, len(lay.Columns))
	}
	col := lay.Columns[a.Column]
	if a.Index < 0 || a.Index >= len(col.Contours) {
		return nil, fmt.Errorf("block %d out of range: column %d has %d blocks", a.Index, a.Column, len(col.Contours))
	}

	box := col.Contours[a.Index].Box
	region := p.BlockRegion(lay, box)
	src := lay.Mask
	if a.Source {
		src = lay.Source
	}
	img, err := imaging.Region(src, region)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := imgenc.Encode(&buf, img, imgenc.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode block image: %w", err)
	}
	return BlockImage{
		Column:      a.Column,
		Index:       a.Index,
		Box:         box,
		Region:      region,
		Width:       region.W,
		Height:      region.H,
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
	}, nil
}

// === Configuration Handlers ===

type configArgs struct {
	Settings map[string]interface{} `json:"settings"`
}

// Setting is one effective configuration value.
type Setting struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

func (s *Server) handleConfig(args json.RawMessage) (interface{}, error) {
	var a configArgs
	if len(args) > 0 {
		if err := json.Unmarshal(args, &a); err != nil {
			return nil, err
		}
	}
	cfg, err := s.settingsFor(a.Settings)
	if err != nil {
		return nil, err
	}
	values := cfg.Values()
	out := make([]Setting, 0, len(values))
	for _, k := range config.Keys() {
		out = append(out, Setting{Key: k, Value: values[k]})
	}
	return map[string]interface{}{
		"settings": out,
		"formats":  registry.Formats(),
	}, nil
}
