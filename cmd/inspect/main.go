// Command inspect prints quick, human-readable statistics about a sessions
// file written by the server. For every session it summarizes action count,
// distinct strokes, distinct users, and per-user stroke totals, plus a
// whole-file rollup. Useful for eyeballing what a deployment has accumulated
// without starting the server.
package main

import (
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/sketchsync/sketchboard/board/canvas"
	"github.com/sketchsync/sketchboard/board/session"
)

// sessionStats summarizes one stored session.
type sessionStats struct {
	Actions     int
	Strokes     int
	UserStrokes map[string]int
}

// summarize counts actions, distinct strokes, and per-user distinct strokes
// in a snapshot.
func summarize(snapshot canvas.Snapshot) sessionStats {
	strokes := make(map[string]bool)
	userStrokes := make(map[string]map[string]bool)
	for _, action := range snapshot.History {
		strokes[action.StrokeID] = true
		if userStrokes[action.UserID] == nil {
			userStrokes[action.UserID] = make(map[string]bool)
		}
		userStrokes[action.UserID][action.StrokeID] = true
	}

	stats := sessionStats{
		Actions:     len(snapshot.History),
		Strokes:     len(strokes),
		UserStrokes: make(map[string]int, len(userStrokes)),
	}
	for user, set := range userStrokes {
		stats.UserStrokes[user] = len(set)
	}
	return stats
}

func main() {
	path := flag.String("file", "data/sessions.json", "Sessions file to inspect")
	flag.Parse()

	store, err := session.NewFileStore(*path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening %s: %v\n", *path, err)
		os.Exit(1)
	}

	table, err := store.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading %s: %v\n", *path, err)
		os.Exit(1)
	}

	if len(table) == 0 {
		fmt.Printf("%s: no sessions\n", *path)
		return
	}

	ids := make([]string, 0, len(table))
	for id := range table {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	totalActions := 0
	totalStrokes := 0

	for _, id := range ids {
		stats := summarize(table[id])
		fmt.Printf("\n=== Session %s ===\n", id)
		fmt.Printf("Actions: %d\n", stats.Actions)
		fmt.Printf("Distinct Strokes: %d\n", stats.Strokes)
		fmt.Printf("Users: %d\n", len(stats.UserStrokes))

		users := make([]string, 0, len(stats.UserStrokes))
		for user := range stats.UserStrokes {
			users = append(users, user)
		}
		sort.Strings(users)
		for _, user := range users {
			fmt.Printf("  %s: %d strokes\n", user, stats.UserStrokes[user])
		}

		totalActions += stats.Actions
		totalStrokes += stats.Strokes
	}

	fmt.Printf("\n=== Totals ===\n")
	fmt.Printf("Sessions: %d\n", len(table))
	fmt.Printf("Actions: %d\n", totalActions)
	fmt.Printf("Strokes: %d\n", totalStrokes)
}
