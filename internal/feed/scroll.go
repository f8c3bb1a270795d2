package feed

import (
	"context"
	"errors"
	"sync"
)

// Loader is the part of the Controller a ScrollSignal drives.
type Loader interface {
	Snapshot() Snapshot
	LoadMore(ctx context.Context) error
}

// ScrollSignal turns sentinel visibility into load-more requests. It fires
// at most once per visible period; a period that starts while the feed is
// busy fires as soon as the feed becomes Ready again, if still visible.
type ScrollSignal struct {
	loader Loader

	mu      sync.Mutex
	visible bool
	armed   bool
}

// NewScrollSignal creates a signal for loader with the sentinel hidden.
func NewScrollSignal(loader Loader) *ScrollSignal {
	return &ScrollSignal{loader: loader}
}

// Update records the sentinel's visibility and reports whether a load-more
// should be issued now.
func (s *ScrollSignal) Update(visible bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !visible {
		s.visible = false
		return false
	}
	if !s.visible {
		s.visible = true
		s.armed = true
	}
	if !s.armed || !s.loader.Snapshot().CanLoadMore() {
		return false
	}
	s.armed = false
	return true
}

// Rearm allows one more firing within the current visible period. Call it
// after the post list changes, since the sentinel may still be on screen.
func (s *ScrollSignal) Rearm() {
	s.mu.Lock()
	s.armed = true
	s.mu.Unlock()
}

// Run feeds visibility changes to the signal and calls LoadMore whenever it
// fires, until ctx is done or visibility is closed. Load errors other than
// ErrClosed are left to the feed's own state.
func (s *ScrollSignal) Run(ctx context.Context, visibility <-chan bool) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case v, ok := <-visibility:
			if !ok {
				return nil
			}
			if !s.Update(v) {
				continue
			}
			if err := s.loader.LoadMore(ctx); errors.Is(err, ErrClosed) {
				return err
			}
		}
	}
}
