// Package server implements the MCP (Model Context Protocol) server for the
// registry segmenter.
//
// The server speaks JSON-RPC 2.0 and lets an MCP client segment scanned
// registry pages, read their blocks and inspect individual block images.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
//   - registry_segment_page: column layout and block boxes of a page
//   - registry_extract_blocks: OCR text of every block, optionally parsed into records
//   - registry_block_image: one block as a base64 PNG
//   - registry_config: effective settings and supported record formats
//
// Every tool except registry_config takes a page path. All tools accept a
// "settings" object whose keys are settings file names; the overrides apply
// to that call only.
//
// # Page Caching
//
// Decoded grayscale pages are cached by path and reused across tool calls,
// so inspecting several blocks of one page decodes it once. The cache
// persists for the lifetime of the server process.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: Additional error details (typically the Go error string)
//
// A page that cannot be segmented fails the call. Blocks that fail OCR or
// parsing are listed in the result's block_errors instead.
package server
