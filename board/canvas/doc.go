// Package canvas implements the drawing session entity.
//
// A Session owns the ordered stroke history for one shared drawing surface.
// It is pure in-memory state with mutation rules and performs no I/O; the
// board/session package owns storage and lifetime.
//
// Core Types:
//
// Action is one persisted drawing unit: an opaque segment payload plus the
// stroke id that groups it into a gesture and the user id of its author.
// Session holds a bounded history of actions and enforces the retention
// policy on every mutation.
//
// History Bounding:
//
// The stroke limit bounds the number of distinct stroke ids retained, not
// the number of action records. A single stroke may span many segment
// actions; they are always kept or evicted together. A limit of zero or
// less disables eviction entirely.
//
// Undo:
//
// UndoByUser removes the calling user's most recent stroke as a unit: every
// action sharing the stroke id of the newest matching action is dropped.
//
// All accessors return deep copies, so callers can never mutate a session
// through a returned value.
package canvas
