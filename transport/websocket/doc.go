// Package websocket carries the realtime drawing protocol.
//
// The Hub owns the liveness registry (session id -> connected clients) and
// processes every inbound frame, registration, and broadcast on a single
// Run goroutine, so session state is never mutated concurrently. Each
// Client gets a process-unique user id at upgrade time, used to attribute
// strokes and scope undo; it is never surfaced to other participants
// beyond being embedded in action records.
//
// Wire protocol: one JSON object per text frame.
//
//	inbound:  {"type": ..., "sessionId": ..., "data": ...}
//	outbound: {"type": "history"|"draw"|"clear", "data": ...}
//
// A connection joins at most one session; frames of any other type are
// silently dropped unless their session id matches the joined one.
// Malformed frames and use-case failures are logged and dropped without
// closing the connection.
package websocket
