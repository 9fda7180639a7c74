// Package session owns the authoritative mapping from session id to live
// canvas.Session and its durable persistence.
//
// The Repository keeps every session in memory and is the sole creation
// path (get-or-create). Mutations are persisted through a pluggable Store
// with debounced whole-table writes: rapid saves inside the debounce window
// coalesce into one flush, and at most one flush is pending or in flight at
// any time. Durability is best-effort eventual; the in-memory copy is the
// source of truth and a failed write never rolls it back.
//
// Two stores are provided: FileStore, a single JSON file mapping session id
// to its snapshot (the default), and SQLiteStore for deployments that
// prefer a database file.
package session
