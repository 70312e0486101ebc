// Package server implements the MCP (Model Context Protocol) server for the
// edit-session engine.
//
// This package provides a JSON-RPC 2.0 server that exposes interactive image
// editing sessions through the MCP protocol. It's designed to work with Claude
// and other MCP-compatible clients, letting an AI system drive a stateful
// edit-preview-apply workflow over a single image.
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
// The server provides 14 tools organized into categories:
//
// Session Lifecycle:
//   - session_open: Open an editing session on an image blob
//   - session_state: Report the current session state
//
// Live Preview And Commit:
//   - session_preview_tone: Adjust brightness/contrast without recording
//   - session_commit_tone: Record the previewed tone values in history
//
// Discrete Edits:
//   - session_rotate: Rotate 90 degrees clockwise
//   - session_set_crop_ratio: Select the crop aspect ratio
//
// History:
//   - session_undo: Step back in edit history
//   - session_redo: Step forward in edit history
//   - session_reset: Return to default parameters
//
// Autosave:
//   - session_restore: Adopt the offered autosave snapshot
//
// Output:
//   - session_apply: Compose the final image and end the session
//   - session_cancel: Discard the session
//
// Analysis:
//   - image_analyze: AI-assisted image description (Gemini)
//   - image_palette: Extract the dominant color palette
//
// # Session Registry
//
// The server maintains an in-memory registry of open sessions keyed by a
// server-assigned id. session_open returns the id; every other session tool
// takes it back. session_apply and session_cancel remove the session from the
// registry, and Run closes any sessions still open when stdin is exhausted.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: Additional error details (typically the Go error string)
//
// # Usage
//
// The server is typically started by an MCP client:
//
//	srv := server.New(server.WithAutosaveStore(store))
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
