// Package feed owns the incremental subreddit media feed.
//
// This package enables redditview to:
// - Drive one feed per view through Idle, loading, Ready and Error states
// - Merge successive listing pages into a deduplicated, ordered post list
// - Cancel superseded fetches so late responses never overwrite newer results
// - Turn sentinel visibility changes into load-more requests
package feed

import (
	"github.com/gauthierbraillon/redditview/internal/media"
	"github.com/gauthierbraillon/redditview/internal/reddit"
)

// Status is the controller's lifecycle state.
type Status int

const (
	StatusIdle Status = iota
	StatusLoadingInitial
	StatusReady
	StatusLoadingMore
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoadingInitial:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusLoadingMore:
		return "loading_more"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Loading reports whether a fetch is in flight.
func (s Status) Loading() bool {
	return s == StatusLoadingInitial || s == StatusLoadingMore
}

// Snapshot is an immutable view of the feed for the render layer.
type Snapshot struct {
	Query   reddit.Query
	Posts   []media.Post
	Status  Status
	Err     error
	HasMore bool
	Cursor  string
	// Version increases with every transition.
	Version uint64
}

// CanLoadMore reports whether a load-more request would start a fetch.
func (s Snapshot) CanLoadMore() bool {
	return s.Status == StatusReady && s.HasMore
}

// MergeStats summarizes how one page was merged.
type MergeStats struct {
	Raw         int
	Accepted    int
	Unsupported int
	Duplicates  int
}
