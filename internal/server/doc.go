// Package server implements the MCP (Model Context Protocol) server for order form OMR.
//
// This package provides a JSON-RPC 2.0 server that exposes the mark detection
// engine and order builder through the MCP protocol, so MCP-compatible clients
// can read paper order forms and inspect borderline marks.
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
// Mark Detection:
//   - omr_process_form: Detect marks on one form image
//   - omr_process_batch: Detect marks on several images in parallel
//
// Order Building:
//   - omr_build_order: Turn selected items into order lines
//
// Layout Inspection:
//   - omr_layout_regions: Expected mark rectangles for an image size
//   - omr_annotate_form: Overlay of scored regions (optionally on the ink mask) as base64 PNG
//   - omr_crop_mark: Close-up of one mark region
//
// # Error Handling
//
// Invalid arguments and annotate/crop failures are returned as JSON-RPC error
// responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: Additional error details (typically the Go error string)
//
// A form that cannot be read is not a protocol error: omr_process_form and
// omr_build_order return their normal result with success=false.
//
// # Usage
//
//	engine, _ := omr.NewEngine(omr.DefaultConfig())
//	srv := server.New(engine, 4)
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
