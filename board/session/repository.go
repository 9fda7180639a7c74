package session

import (
	"log"
	"sync"
	"time"

	"github.com/sketchsync/sketchboard/board/canvas"
)

// DefaultDebounce is the persistence coalescing window.
const DefaultDebounce = 100 * time.Millisecond

// Repository owns the live session table. Sessions are created lazily via
// GetOrCreate and live for the process lifetime unless deleted. Callers
// mutate the live instance returned by GetOrCreate and then call Save;
// Get and List hand out independent copies only.
//
// Persistence works off snapshots captured at mutation time: Save (and the
// other mutators) record an immutable Snapshot under the lock, and the
// flush goroutine serializes those, never the live sessions. The flush can
// therefore run while callers keep mutating the instances they hold.
type Repository struct {
	store       Store
	strokeLimit int
	debounce    time.Duration

	mu        sync.Mutex
	sessions  map[string]*canvas.Session
	snapshots map[string]canvas.Snapshot
	pending   *flush
	dirty     bool
}

// flush is the shared completion handle for one debounced write.
type flush struct {
	done chan struct{}
	err  error
}

// Option configures a Repository.
type Option func(*Repository)

// WithStrokeLimit sets the per-session stroke retention bound.
func WithStrokeLimit(limit int) Option {
	return func(r *Repository) { r.strokeLimit = limit }
}

// WithDebounce sets the persistence coalescing window.
func WithDebounce(d time.Duration) Option {
	return func(r *Repository) { r.debounce = d }
}

// NewRepository creates a repository over the given store and hydrates all
// previously persisted sessions before returning. A store that fails to
// load is logged and treated as empty; startup never fails on bad data.
func NewRepository(store Store, opts ...Option) *Repository {
	r := &Repository{
		store:       store,
		strokeLimit: canvas.DefaultStrokeLimit,
		debounce:    DefaultDebounce,
		sessions:    make(map[string]*canvas.Session),
		snapshots:   make(map[string]canvas.Snapshot),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.hydrate()
	return r
}

// hydrate loads persisted sessions into memory, reapplying the current
// stroke limit to each.
func (r *Repository) hydrate() {
	table, err := r.store.Load()
	if err != nil {
		log.Printf("Warning: failed to hydrate sessions, starting empty: %v", err)
		return
	}

	for id, snap := range table {
		sess, err := canvas.NewSession(id, snap.History, r.strokeLimit)
		if err != nil {
			log.Printf("Warning: skipping persisted session %q: %v", id, err)
			continue
		}
		r.sessions[id] = sess
		// Snapshot after construction so the durable copy reflects the
		// stroke limit applied on load.
		r.snapshots[id] = sess.Snapshot()
	}
	if len(r.sessions) > 0 {
		log.Printf("Loaded %d persisted sessions", len(r.sessions))
	}
}

// Get returns an independent copy of the session, or false if unknown. It
// never creates.
func (r *Repository) Get(id string) (*canvas.Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sess, ok := r.sessions[id]
	if !ok {
		return nil, false
	}
	return sess.Clone(), true
}

// GetOrCreate returns the live session for id, creating and registering an
// empty one if none exists. This is the sole creation path; creation
// schedules persistence.
func (r *Repository) GetOrCreate(id string) (*canvas.Session, error) {
	if id == "" {
		return nil, canvas.ErrEmptySessionID
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if sess, ok := r.sessions[id]; ok {
		return sess, nil
	}

	sess, err := canvas.NewSession(id, nil, r.strokeLimit)
	if err != nil {
		return nil, err
	}
	r.sessions[id] = sess
	r.snapshots[id] = sess.Snapshot()
	r.schedulePersist()
	return sess, nil
}

// Save registers (or overwrites) the session in the table, captures the
// snapshot that will be persisted, and schedules persistence. The snapshot
// is taken here, not at flush time, so later mutations of the live session
// are invisible to an in-flight write until their own Save.
func (r *Repository) Save(sess *canvas.Session) error {
	if sess == nil {
		return ErrNilSession
	}
	if sess.ID() == "" {
		return canvas.ErrEmptySessionID
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions[sess.ID()] = sess
	r.snapshots[sess.ID()] = sess.Snapshot()
	r.schedulePersist()
	return nil
}

// Delete removes the session if present and schedules persistence. Unknown
// ids are a no-op.
func (r *Repository) Delete(id string) {
	if id == "" {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[id]; !ok {
		return
	}
	delete(r.sessions, id)
	delete(r.snapshots, id)
	r.schedulePersist()
}

// List returns independent copies of all sessions.
func (r *Repository) List() []*canvas.Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*canvas.Session, 0, len(r.sessions))
	for _, sess := range r.sessions {
		out = append(out, sess.Clone())
	}
	return out
}

// Count returns the number of live sessions.
func (r *Repository) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Flush waits for every pending debounced write to complete and returns the
// error of the last one. With nothing pending it returns immediately. This
// is the surface through which persistence failures reach a caller that
// cares (shutdown, tests); fire-and-forget mutators ignore them.
func (r *Repository) Flush() error {
	var lastErr error
	for {
		r.mu.Lock()
		f := r.pending
		r.mu.Unlock()
		if f == nil {
			return lastErr
		}
		<-f.done
		lastErr = f.err
	}
}

// schedulePersist coalesces mutations into a single pending flush. Callers
// inside the debounce window share one completion handle, so at most one
// write is pending or in flight at any time. Caller must hold r.mu.
func (r *Repository) schedulePersist() *flush {
	r.dirty = true
	if r.pending != nil {
		return r.pending
	}

	f := &flush{done: make(chan struct{})}
	r.pending = f
	time.AfterFunc(r.debounce, func() { r.runFlush(f) })
	return f
}

// runFlush writes the snapshot table as captured by the mutators. Live
// sessions are never read here: callers may be mutating them while the
// write is in flight. Mutations that land during the write schedule a
// follow-up flush so the durable copy catches up; the in-memory state is
// never touched on failure.
func (r *Repository) runFlush(f *flush) {
	r.mu.Lock()
	r.dirty = false
	table := make(map[string]canvas.Snapshot, len(r.snapshots))
	for id, snap := range r.snapshots {
		table[id] = snap
	}
	r.mu.Unlock()

	err := r.store.Write(table)

	r.mu.Lock()
	r.pending = nil
	if r.dirty {
		r.schedulePersist()
	}
	r.mu.Unlock()

	f.err = err
	if err != nil {
		log.Printf("Warning: failed to persist %d sessions: %v", len(table), err)
	}
	close(f.done)
}

// Close flushes outstanding writes and closes the store.
func (r *Repository) Close() error {
	flushErr := r.Flush()
	if err := r.store.Close(); err != nil {
		return err
	}
	return flushErr
}
