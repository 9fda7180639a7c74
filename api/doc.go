// Package api exposes the HTTP surface: the websocket endpoint, a small
// REST API over sessions, and the session-id assignment flow (cookie plus
// /session/{id} path convention) that gets a browser a stable session id
// before it ever opens a socket.
package api
