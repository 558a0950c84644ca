package feed

import (
	"testing"
	"time"

	"github.com/example/meetsync/internal/persistence"
)

func meetingAt(id string, createdAt time.Time) persistence.Meeting {
	return persistence.Meeting{ID: id, Title: "Meeting " + id, CreatedAt: createdAt}
}

func ids(meetings []persistence.Meeting) []string {
	out := make([]string, len(meetings))
	for i, m := range meetings {
		out[i] = m.ID
	}
	return out
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestMerge_DeduplicatesAndOrdersNewestFirst(t *testing.T) {
	t.Parallel()

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	a := meetingAt("a", base.Add(2*time.Hour))
	b := meetingAt("b", base.Add(1*time.Hour))
	c := meetingAt("c", base.Add(3*time.Hour))

	merged := Merge([]persistence.Meeting{a, b}, []persistence.Meeting{b, c})

	want := []string{"c", "a", "b"}
	if !equalIDs(ids(merged), want) {
		t.Fatalf("unexpected merge order: %v, want %v", ids(merged), want)
	}
}

func TestMerge_OwnedSideWinsForDuplicateIDs(t *testing.T) {
	t.Parallel()

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	ownedCopy := meetingAt("m", base)
	ownedCopy.Title = "owned view"
	staleCopy := meetingAt("m", base)
	staleCopy.Title = "stale participant view"

	merged := Merge([]persistence.Meeting{ownedCopy}, []persistence.Meeting{staleCopy})
	if len(merged) != 1 {
		t.Fatalf("expected one entry, got %d", len(merged))
	}
	if merged[0].Title != "owned view" {
		t.Fatalf("first-seen copy should win, got %q", merged[0].Title)
	}
}

func TestMerge_TiesKeepArrivalOrder(t *testing.T) {
	t.Parallel()

	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	merged := Merge(
		[]persistence.Meeting{meetingAt("x", at), meetingAt("y", at)},
		[]persistence.Meeting{meetingAt("z", at)},
	)
	if !equalIDs(ids(merged), []string{"x", "y", "z"}) {
		t.Fatalf("unexpected tie order: %v", ids(merged))
	}
}

func TestAggregator_MergesIndependentPushes(t *testing.T) {
	t.Parallel()

	owned := make(chan []persistence.Meeting, 1)
	participating := make(chan []persistence.Meeting, 1)
	agg := New(owned, participating, func() { close(owned) }, func() { close(participating) })

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	a := meetingAt("a", base.Add(2*time.Hour))
	b := meetingAt("b", base.Add(1*time.Hour))
	c := meetingAt("c", base.Add(3*time.Hour))

	owned <- []persistence.Meeting{a, b}
	waitForSnapshot(t, agg, []string{"a", "b"})

	participating <- []persistence.Meeting{b, c}
	waitForSnapshot(t, agg, []string{"c", "a", "b"})

	agg.Close()
	for range agg.Snapshots() {
	}
}

func TestAggregator_FullPushReplacesOneSideOnly(t *testing.T) {
	t.Parallel()

	owned := make(chan []persistence.Meeting, 1)
	participating := make(chan []persistence.Meeting, 1)
	agg := New(owned, participating, func() { close(owned) }, func() { close(participating) })

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	a := meetingAt("a", base.Add(time.Hour))
	b := meetingAt("b", base.Add(2*time.Hour))
	c := meetingAt("c", base.Add(3*time.Hour))

	owned <- []persistence.Meeting{a}
	waitForSnapshot(t, agg, []string{"a"})
	participating <- []persistence.Meeting{b}
	waitForSnapshot(t, agg, []string{"b", "a"})

	// The owned feed pushes its entire new result set; the participant slot
	// must survive untouched.
	owned <- []persistence.Meeting{c}
	waitForSnapshot(t, agg, []string{"c", "b"})

	agg.Close()
	for range agg.Snapshots() {
	}
}

func TestAggregator_IndependentTeardown(t *testing.T) {
	t.Parallel()

	owned := make(chan []persistence.Meeting, 1)
	participating := make(chan []persistence.Meeting, 1)

	ownedCancelled := false
	participatingCancelled := false
	agg := New(owned, participating,
		func() { ownedCancelled = true; close(owned) },
		func() { participatingCancelled = true; close(participating) })

	agg.CancelOwned()
	if !ownedCancelled || participatingCancelled {
		t.Fatalf("expected only the owned subscription to be released")
	}

	// The participant feed still flows after the owned side is gone.
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	participating <- []persistence.Meeting{meetingAt("p", at)}
	waitForSnapshot(t, agg, []string{"p"})

	agg.Close()
	if !participatingCancelled {
		t.Fatalf("Close must release the remaining subscription")
	}
	for range agg.Snapshots() {
	}
}

func waitForSnapshot(t *testing.T, agg *Aggregator, want []string) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case snapshot, ok := <-agg.Snapshots():
			if !ok {
				t.Fatalf("snapshot channel closed while waiting for %v", want)
			}
			if equalIDs(ids(snapshot), want) {
				return
			}
			// Coalesced intermediate state; keep waiting.
		case <-deadline:
			t.Fatalf("timed out waiting for snapshot %v", want)
		}
	}
}
