// Package mcp provides a Model Context Protocol interface to the board.
//
// It is a thin proxy: every tool call becomes a request to the REST API,
// so the MCP surface and the HTTP surface can never disagree about
// behavior.
//
// MCP Tools:
//   - list_sessions: List all active drawing sessions
//   - get_history: Get the stroke history of a session
//   - clear_session: Wipe a session's canvas
//   - delete_session: Remove a session and its stored history
//   - board_instructions: Overview of session and stroke semantics
//
// Transport Modes:
//
// The server supports two transport modes:
//   - Stdio: Direct stdio communication for local MCP clients
//   - HTTP: the /mcp endpoint on the main server
package mcp
