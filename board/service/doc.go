// Package service defines the board use cases behind the BoardService
// interface: joining a session, recording strokes, clearing, per-user undo,
// and history reads, plus the session listing and deletion operations used
// by the REST and MCP surfaces.
//
// Every use case follows the same shape: resolve the session through the
// repository, apply at most one domain mutation, persist only when domain
// state actually changed, and return the resulting history. Transports own
// message parsing and broadcast; this layer is the only writer of session
// state.
package service
