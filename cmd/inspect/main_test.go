package main

import (
	"encoding/json"
	"testing"

	"github.com/sketchsync/sketchboard/board/canvas"
)

func statsAction(strokeID, userID string) canvas.Action {
	return canvas.Action{
		Segment:  json.RawMessage(`{"x0":0,"y0":0,"x1":1,"y1":1}`),
		StrokeID: strokeID,
		UserID:   userID,
	}
}

func TestSummarize(t *testing.T) {
	snapshot := canvas.Snapshot{
		ID: "room",
		History: []canvas.Action{
			statsAction("s1", "alice"),
			statsAction("s1", "alice"), // second segment of the same stroke
			statsAction("s2", "alice"),
			statsAction("s3", "bob"),
		},
	}

	stats := summarize(snapshot)

	if stats.Actions != 4 {
		t.Errorf("Expected 4 actions, got %d", stats.Actions)
	}
	if stats.Strokes != 3 {
		t.Errorf("Expected 3 distinct strokes, got %d", stats.Strokes)
	}
	if len(stats.UserStrokes) != 2 {
		t.Errorf("Expected 2 users, got %d", len(stats.UserStrokes))
	}
	if stats.UserStrokes["alice"] != 2 {
		t.Errorf("Expected 2 strokes for alice, got %d", stats.UserStrokes["alice"])
	}
	if stats.UserStrokes["bob"] != 1 {
		t.Errorf("Expected 1 stroke for bob, got %d", stats.UserStrokes["bob"])
	}
}

func TestSummarizeEmpty(t *testing.T) {
	stats := summarize(canvas.Snapshot{ID: "empty"})

	if stats.Actions != 0 || stats.Strokes != 0 || len(stats.UserStrokes) != 0 {
		t.Errorf("Expected zero stats for empty snapshot, got %+v", stats)
	}
}
