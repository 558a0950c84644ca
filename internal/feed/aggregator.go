// Package feed merges the two live meeting queries relevant to one user,
// meetings they own and meetings they participate in, into a single
// deduplicated, ordered view.
package feed

import (
	"sort"
	"sync"

	"github.com/example/meetsync/internal/persistence"
)

// Merge recomputes the combined view from the latest full snapshot of each
// side. Meetings are keyed by id with the owned side seen first, ordered by
// creation time descending; ties keep the order in which ids were first
// encountered. Either side may be stale relative to the other, so the union
// is recomputed wholesale on every call rather than diffed.
func Merge(owned, participating []persistence.Meeting) []persistence.Meeting {
	seen := make(map[string]struct{}, len(owned)+len(participating))
	merged := make([]persistence.Meeting, 0, len(owned)+len(participating))
	arrival := make(map[string]int, len(owned)+len(participating))

	for _, meeting := range owned {
		if _, ok := seen[meeting.ID]; ok {
			continue
		}
		seen[meeting.ID] = struct{}{}
		arrival[meeting.ID] = len(merged)
		merged = append(merged, meeting)
	}
	for _, meeting := range participating {
		if _, ok := seen[meeting.ID]; ok {
			continue
		}
		seen[meeting.ID] = struct{}{}
		arrival[meeting.ID] = len(merged)
		merged = append(merged, meeting)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		if merged[i].CreatedAt.Equal(merged[j].CreatedAt) {
			return arrival[merged[i].ID] < arrival[merged[j].ID]
		}
		return merged[i].CreatedAt.After(merged[j].CreatedAt)
	})
	return merged
}

// Aggregator consumes two independently pushed snapshot feeds and emits the
// merged view after every push from either side. It runs a single goroutine;
// there is no other source of concurrency.
type Aggregator struct {
	out chan []persistence.Meeting

	mu                  sync.Mutex
	cancelOwned         func()
	cancelParticipating func()
}

// New starts an aggregator over the two snapshot channels. The cancel
// functions release the corresponding subscriptions; either may be nil when
// the caller manages teardown elsewhere. The merged channel carries the
// latest view with a buffer of one, coalescing when the consumer lags, and
// is closed once both inputs are closed.
func New(owned, participating <-chan []persistence.Meeting, cancelOwned, cancelParticipating func()) *Aggregator {
	a := &Aggregator{
		out:                 make(chan []persistence.Meeting, 1),
		cancelOwned:         cancelOwned,
		cancelParticipating: cancelParticipating,
	}
	go a.loop(owned, participating)
	return a
}

// Snapshots returns the merged view channel.
func (a *Aggregator) Snapshots() <-chan []persistence.Meeting {
	return a.out
}

// CancelOwned releases only the owned-meetings subscription. The merged view
// keeps serving the participant side.
func (a *Aggregator) CancelOwned() {
	a.cancelSide(&a.cancelOwned)
}

// CancelParticipating releases only the participant-meetings subscription.
func (a *Aggregator) CancelParticipating() {
	a.cancelSide(&a.cancelParticipating)
}

// Close releases both subscriptions. The merged channel closes once the
// underlying feeds stop.
func (a *Aggregator) Close() {
	a.CancelOwned()
	a.CancelParticipating()
}

func (a *Aggregator) cancelSide(fn *func()) {
	a.mu.Lock()
	cancel := *fn
	*fn = nil
	a.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

func (a *Aggregator) loop(owned, participating <-chan []persistence.Meeting) {
	var ownedSlot, participatingSlot []persistence.Meeting
	for owned != nil || participating != nil {
		select {
		case snapshot, ok := <-owned:
			if !ok {
				owned = nil
				continue
			}
			ownedSlot = snapshot
		case snapshot, ok := <-participating:
			if !ok {
				participating = nil
				continue
			}
			participatingSlot = snapshot
		}
		a.push(Merge(ownedSlot, participatingSlot))
	}
	close(a.out)
}

func (a *Aggregator) push(merged []persistence.Meeting) {
	select {
	case <-a.out:
	default:
	}
	a.out <- merged
}
