package sqlite

import (
	"context"
	"sync"
	"time"

	"github.com/example/meetsync/internal/persistence"
)

// watchKind selects which meeting query a subscription observes.
type watchKind int

const (
	watchOwned watchKind = iota
	watchParticipant
)

// subscription is one live query. Its channel carries full result-set
// snapshots with a buffer of one; when a consumer lags, intermediate
// snapshots are coalesced and only the latest is retained.
type subscription struct {
	id     uint64
	kind   watchKind
	userID string
	ch     chan []persistence.Meeting
	closed bool
}

// hub re-runs registered live queries after every meeting mutation and pushes
// the full matching result set to each subscriber, mirroring a document
// store's snapshot listeners.
type hub struct {
	store *Store

	mu     sync.Mutex
	nextID uint64
	subs   map[uint64]*subscription
}

func newHub(store *Store) *hub {
	return &hub{store: store, subs: make(map[uint64]*subscription)}
}

// WatchMeetingsOwnedBy subscribes to the full set of meetings owned by the
// user. The current snapshot is delivered before this call returns.
func (s *Store) WatchMeetingsOwnedBy(ctx context.Context, userID string) (<-chan []persistence.Meeting, func(), error) {
	return s.hub.subscribe(ctx, watchOwned, userID)
}

// WatchMeetingsWithParticipant subscribes to the full set of meetings whose
// participant list references the user. The current snapshot is delivered
// before this call returns.
func (s *Store) WatchMeetingsWithParticipant(ctx context.Context, userID string) (<-chan []persistence.Meeting, func(), error) {
	return s.hub.subscribe(ctx, watchParticipant, userID)
}

func (h *hub) subscribe(ctx context.Context, kind watchKind, userID string) (<-chan []persistence.Meeting, func(), error) {
	initial, err := h.run(ctx, kind, userID)
	if err != nil {
		return nil, nil, err
	}

	h.mu.Lock()
	h.nextID++
	sub := &subscription{
		id:     h.nextID,
		kind:   kind,
		userID: userID,
		ch:     make(chan []persistence.Meeting, 1),
	}
	h.subs[sub.id] = sub
	sub.ch <- initial
	h.mu.Unlock()

	cancel := func() { h.cancel(sub.id) }
	return sub.ch, cancel, nil
}

func (h *hub) cancel(id uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	sub, ok := h.subs[id]
	if !ok || sub.closed {
		return
	}
	sub.closed = true
	delete(h.subs, id)
	close(sub.ch)
}

func (h *hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, sub := range h.subs {
		sub.closed = true
		delete(h.subs, id)
		close(sub.ch)
	}
}

// notify refreshes every subscription after a committed mutation. Queries run
// outside the hub lock; the push itself holds the lock so a concurrent cancel
// cannot race a send on a closed channel.
func (h *hub) notify(ctx context.Context) {
	h.mu.Lock()
	targets := make([]*subscription, 0, len(h.subs))
	for _, sub := range h.subs {
		targets = append(targets, sub)
	}
	h.mu.Unlock()

	if len(targets) == 0 {
		return
	}

	// Mutating call sites may carry request-scoped contexts that are already
	// close to their deadline; snapshot refresh gets its own budget.
	refreshCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	for _, sub := range targets {
		snapshot, err := h.run(refreshCtx, sub.kind, sub.userID)
		if err != nil {
			// A failed refresh keeps the previous snapshot; the next
			// mutation will retry.
			continue
		}
		h.push(sub, snapshot)
	}
}

func (h *hub) run(ctx context.Context, kind watchKind, userID string) ([]persistence.Meeting, error) {
	switch kind {
	case watchParticipant:
		return h.store.ListMeetingsWithParticipant(ctx, userID)
	default:
		return h.store.ListMeetingsOwnedBy(ctx, userID)
	}
}

func (h *hub) push(sub *subscription, snapshot []persistence.Meeting) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if sub.closed {
		return
	}
	// Coalesce: drop an unconsumed snapshot so the channel always holds the
	// latest result set.
	select {
	case <-sub.ch:
	default:
	}
	sub.ch <- snapshot
}
