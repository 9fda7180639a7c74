package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/sketchsync/sketchboard/board/canvas"
)

// countingStore records every write for debounce assertions.
type countingStore struct {
	mu     sync.Mutex
	writes []map[string]canvas.Snapshot
	err    error
}

func (cs *countingStore) Load() (map[string]canvas.Snapshot, error) { return nil, nil }

func (cs *countingStore) Write(sessions map[string]canvas.Snapshot) error {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.writes = append(cs.writes, sessions)
	return cs.err
}

func (cs *countingStore) Close() error { return nil }

func (cs *countingStore) writeCount() int {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return len(cs.writes)
}

func (cs *countingStore) lastWrite() map[string]canvas.Snapshot {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	if len(cs.writes) == 0 {
		return nil
	}
	return cs.writes[len(cs.writes)-1]
}

func repoAction(strokeID, userID string) canvas.Action {
	return canvas.Action{
		Segment:  json.RawMessage(`{"x0":1,"y0":2,"x1":3,"y1":4}`),
		StrokeID: strokeID,
		UserID:   userID,
	}
}

func TestRepositoryGetOrCreate(t *testing.T) {
	store := &countingStore{}
	repo := NewRepository(store, WithDebounce(5*time.Millisecond))

	t.Run("requires id", func(t *testing.T) {
		if _, err := repo.GetOrCreate(""); err == nil {
			t.Fatal("expected error for empty id")
		}
	})

	t.Run("creates lazily and returns live instance", func(t *testing.T) {
		first, err := repo.GetOrCreate("room")
		if err != nil {
			t.Fatalf("GetOrCreate failed: %v", err)
		}
		second, err := repo.GetOrCreate("room")
		if err != nil {
			t.Fatalf("GetOrCreate failed: %v", err)
		}
		if first != second {
			t.Error("expected the same live instance for one id")
		}
	})

	t.Run("creation schedules persistence", func(t *testing.T) {
		if err := repo.Flush(); err != nil {
			t.Fatalf("Flush failed: %v", err)
		}
		if store.writeCount() == 0 {
			t.Error("expected at least one durable write after creation")
		}
		if _, ok := store.lastWrite()["room"]; !ok {
			t.Error("created session missing from durable write")
		}
	})
}

func TestRepositoryGetReturnsCopy(t *testing.T) {
	repo := NewRepository(&countingStore{}, WithDebounce(5*time.Millisecond))

	live, err := repo.GetOrCreate("room")
	if err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}
	if _, err := live.AddStroke(repoAction("s1", "u1")); err != nil {
		t.Fatalf("AddStroke failed: %v", err)
	}

	copy1, ok := repo.Get("room")
	if !ok {
		t.Fatal("expected session to exist")
	}
	copy1.Clear()

	copy2, _ := repo.Get("room")
	if copy2.Len() != 1 {
		t.Error("mutating a Get copy changed the stored session")
	}

	if _, ok := repo.Get("unknown"); ok {
		t.Error("Get must not create sessions")
	}
}

func TestRepositoryDebounce(t *testing.T) {
	t.Run("rapid saves coalesce into one write", func(t *testing.T) {
		store := &countingStore{}
		repo := NewRepository(store, WithDebounce(30*time.Millisecond))

		sess, err := repo.GetOrCreate("room")
		if err != nil {
			t.Fatalf("GetOrCreate failed: %v", err)
		}
		for i := 0; i < 5; i++ {
			sess.AddStroke(repoAction("s1", "u1"))
			if err := repo.Save(sess); err != nil {
				t.Fatalf("Save failed: %v", err)
			}
		}

		if err := repo.Flush(); err != nil {
			t.Fatalf("Flush failed: %v", err)
		}
		if got := store.writeCount(); got != 1 {
			t.Errorf("expected exactly 1 write, got %d", got)
		}

		// The single write reflects the last saved state.
		snap := store.lastWrite()["room"]
		if len(snap.History) != 5 {
			t.Errorf("expected 5 actions in durable copy, got %d", len(snap.History))
		}
	})

	t.Run("mutation after flush triggers a new write", func(t *testing.T) {
		store := &countingStore{}
		repo := NewRepository(store, WithDebounce(5*time.Millisecond))

		sess, _ := repo.GetOrCreate("room")
		repo.Flush()
		before := store.writeCount()

		sess.AddStroke(repoAction("s2", "u1"))
		repo.Save(sess)
		repo.Flush()

		if store.writeCount() != before+1 {
			t.Errorf("expected one additional write, got %d total", store.writeCount())
		}
	})

	t.Run("write failure surfaces through Flush only", func(t *testing.T) {
		store := &countingStore{err: errors.New("disk full")}
		repo := NewRepository(store, WithDebounce(5*time.Millisecond))

		if _, err := repo.GetOrCreate("room"); err != nil {
			t.Fatalf("GetOrCreate must not fail on persistence: %v", err)
		}
		if err := repo.Flush(); err == nil {
			t.Error("expected Flush to report the write failure")
		}

		// In-memory state is unaffected by the failed write.
		if _, ok := repo.Get("room"); !ok {
			t.Error("session lost after failed write")
		}
	})
}

func TestRepositoryFlushDuringMutation(t *testing.T) {
	store := &countingStore{}
	repo := NewRepository(store, WithDebounce(time.Millisecond))

	sess, err := repo.GetOrCreate("room")
	if err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}

	// With a 1ms window, flushes fire while this loop is still mutating the
	// live session. Each flush must serialize only the snapshots the saves
	// captured, never read the instance being mutated here.
	for i := 0; i < 200; i++ {
		if _, err := sess.AddStroke(repoAction(fmt.Sprintf("s%d", i), "u1")); err != nil {
			t.Fatalf("AddStroke failed: %v", err)
		}
		if err := repo.Save(sess); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}

	if err := repo.Flush(); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
	snap := store.lastWrite()["room"]
	if len(snap.History) != 200 {
		t.Errorf("expected 200 actions in final durable copy, got %d", len(snap.History))
	}
}

func TestRepositoryDelete(t *testing.T) {
	store := &countingStore{}
	repo := NewRepository(store, WithDebounce(5*time.Millisecond))

	repo.GetOrCreate("room")
	repo.Flush()

	repo.Delete("room")
	if err := repo.Flush(); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}

	if _, ok := repo.Get("room"); ok {
		t.Error("expected session to be deleted")
	}
	if _, ok := store.lastWrite()["room"]; ok {
		t.Error("deleted session still present in durable write")
	}

	t.Run("unknown id is a no-op", func(t *testing.T) {
		before := store.writeCount()
		repo.Delete("never-existed")
		repo.Flush()
		if store.writeCount() != before {
			t.Error("deleting an unknown session must not schedule a write")
		}
	})
}

func TestRepositoryRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir + "/sessions.json")
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}

	repo := NewRepository(store, WithDebounce(5*time.Millisecond), WithStrokeLimit(10))
	for _, id := range []string{"alpha", "beta"} {
		sess, err := repo.GetOrCreate(id)
		if err != nil {
			t.Fatalf("GetOrCreate failed: %v", err)
		}
		sess.AddStroke(repoAction("s1", "u1"))
		sess.AddStroke(repoAction("s2", "u2"))
		if err := repo.Save(sess); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}
	if err := repo.Flush(); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}

	rehydrated := NewRepository(store, WithStrokeLimit(10))
	if rehydrated.Count() != 2 {
		t.Fatalf("expected 2 sessions after rehydration, got %d", rehydrated.Count())
	}
	for _, id := range []string{"alpha", "beta"} {
		orig, _ := repo.Get(id)
		loaded, ok := rehydrated.Get(id)
		if !ok {
			t.Fatalf("session %s missing after rehydration", id)
		}
		origHist, loadedHist := orig.History(), loaded.History()
		if len(loadedHist) != len(origHist) {
			t.Fatalf("session %s: expected %d actions, got %d", id, len(origHist), len(loadedHist))
		}
		for i := range origHist {
			if origHist[i].StrokeID != loadedHist[i].StrokeID ||
				origHist[i].UserID != loadedHist[i].UserID ||
				string(origHist[i].Segment) != string(loadedHist[i].Segment) {
				t.Errorf("session %s action %d differs after round trip", id, i)
			}
		}
	}
}

func TestRepositoryHydrateTolerance(t *testing.T) {
	t.Run("corrupt file starts empty", func(t *testing.T) {
		dir := t.TempDir()
		path := dir + "/sessions.json"
		if err := writeTestFile(path, "{not json"); err != nil {
			t.Fatalf("setup failed: %v", err)
		}

		store, err := NewFileStore(path)
		if err != nil {
			t.Fatalf("NewFileStore failed: %v", err)
		}
		repo := NewRepository(store)
		if repo.Count() != 0 {
			t.Errorf("expected empty repository, got %d sessions", repo.Count())
		}
	})

	t.Run("hydration reapplies current stroke limit", func(t *testing.T) {
		dir := t.TempDir()
		store, _ := NewFileStore(dir + "/sessions.json")

		repo := NewRepository(store, WithDebounce(5*time.Millisecond), WithStrokeLimit(0))
		sess, _ := repo.GetOrCreate("room")
		for _, id := range []string{"s1", "s2", "s3"} {
			sess.AddStroke(repoAction(id, "u1"))
		}
		repo.Save(sess)
		repo.Flush()

		tightened := NewRepository(store, WithStrokeLimit(2))
		loaded, _ := tightened.Get("room")
		if loaded.Len() != 2 {
			t.Errorf("expected stroke limit applied on load, got %d actions", loaded.Len())
		}
	})
}
