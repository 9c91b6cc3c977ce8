// Package server implements the MCP (Model Context Protocol) server for slide
// marker extraction.
//
// This package provides a JSON-RPC 2.0 server that exposes the detection
// pipeline to MCP-compatible clients, so an assistant can find the markers in
// a slide deck and produce annotation bundles without a shell.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Logs are written to stderr and never interleave with responses.
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
//   - markers_detect: Detect and sequence markers, write nothing
//   - markers_bundle: Detect, optionally remove, and write a bundle file
//   - markers_inspect: Summarize an existing bundle file
//
// # Error Handling
//
// Errors are returned as JSON-RPC error responses with:
//   - code: -32602 for malformed or invalid arguments, -32000 for tool
//     execution failures, -32601 for unknown methods
//   - message: Human-readable error description
//   - data: The Go error string
package server
