package tui

import (
	"context"
	"sync"

	"github.com/gauthierbraillon/redditview/internal/feed"
)

// Updates hands controller snapshots to the UI loop. Only the newest
// snapshot is kept, so a slow reader skips intermediate states.
type Updates struct {
	mu      sync.Mutex
	latest  feed.Snapshot
	pending bool
	notify  chan struct{}
}

func NewUpdates() *Updates {
	return &Updates{notify: make(chan struct{}, 1)}
}

// Publish records s unless a newer snapshot was already published, even
// one that has since been read. Its signature matches feed.WithObserver.
func (u *Updates) Publish(s feed.Snapshot) {
	u.mu.Lock()
	if s.Version < u.latest.Version {
		u.mu.Unlock()
		return
	}
	u.latest = s
	u.pending = true
	u.mu.Unlock()

	select {
	case u.notify <- struct{}{}:
	default:
	}
}

// Next blocks until a snapshot is pending or ctx is done.
func (u *Updates) Next(ctx context.Context) (feed.Snapshot, bool) {
	for {
		u.mu.Lock()
		if u.pending {
			s := u.latest
			u.pending = false
			u.mu.Unlock()
			return s, true
		}
		u.mu.Unlock()

		select {
		case <-ctx.Done():
			return feed.Snapshot{}, false
		case <-u.notify:
		}
	}
}
