package feed

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/gauthierbraillon/redditview/internal/media"
	"github.com/gauthierbraillon/redditview/internal/reddit"
)

var (
	// ErrNoQuery is returned when an operation needs a subreddit and none is set.
	ErrNoQuery = errors.New("enter a subreddit first")
	// ErrClosed is returned by operations on a closed controller.
	ErrClosed = errors.New("feed controller closed")
)

// Fetcher retrieves one listing page. *reddit.Client implements it.
type Fetcher interface {
	FetchPage(ctx context.Context, q reddit.Query, after string, limit int) (*reddit.Page, error)
}

// Option configures the Controller.
type Option func(*Controller)

// WithPageSize sets the number of posts requested per page.
func WithPageSize(n int) Option {
	return func(c *Controller) {
		if n > 0 && n <= reddit.MaxPageSize {
			c.pageSize = n
		}
	}
}

// WithLogger sets the logger used for merge and fetch tracing.
func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.log = l
		}
	}
}

// WithObserver registers fn to receive a snapshot after every transition.
// fn runs on the goroutine that caused the transition, outside the lock.
func WithObserver(fn func(Snapshot)) Option {
	return func(c *Controller) {
		c.observer = fn
	}
}

// Controller owns the state of one feed. All methods are safe for concurrent
// use; at most one fetch is in flight at any time.
type Controller struct {
	fetcher  Fetcher
	pageSize int
	log      *zap.Logger
	observer func(Snapshot)

	mu      sync.Mutex
	query   reddit.Query
	posts   []media.Post
	seen    map[string]struct{}
	cursor  string
	hasMore bool
	status  Status
	lastErr error
	version uint64
	gen     uint64
	cancel  context.CancelFunc
	closed  bool
}

// fetchRun carries what a single fetch needs once the lock is released.
type fetchRun struct {
	ctx     context.Context
	cancel  context.CancelFunc
	gen     uint64
	query   reddit.Query
	cursor  string
	limit   int
	initial bool
	prev    Status
}

// New creates a Controller in the Idle state.
func New(fetcher Fetcher, opts ...Option) *Controller {
	c := &Controller{
		fetcher:  fetcher,
		pageSize: reddit.DefaultPageSize,
		log:      zap.NewNop(),
		seen:     make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SubmitQuery starts q from its first page, cancelling any fetch in flight.
// Submitting the current query again only restarts it from Idle or Error.
// It blocks until the fetch settles and returns the error it recorded, or nil
// when the fetch succeeded or was superseded.
func (c *Controller) SubmitQuery(ctx context.Context, q reddit.Query) error {
	return c.submit(ctx, func(reddit.Query) (reddit.Query, error) {
		return q, nil
	})
}

// ChangeCategory restarts the current subreddit ranked by category.
func (c *Controller) ChangeCategory(ctx context.Context, category reddit.Category) error {
	return c.submit(ctx, func(current reddit.Query) (reddit.Query, error) {
		if current.IsZero() {
			return reddit.Query{}, ErrNoQuery
		}
		return current.WithCategory(category), nil
	})
}

func (c *Controller) submit(ctx context.Context, next func(reddit.Query) (reddit.Query, error)) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}

	q, err := next(c.query)
	if err == nil && q.IsZero() {
		err = ErrNoQuery
	}
	if err != nil {
		c.mu.Unlock()
		return err
	}

	if q == c.query && (c.status.Loading() || c.status == StatusReady) {
		c.mu.Unlock()
		return nil
	}

	c.clearLocked()
	c.query = q
	c.hasMore = true
	run := c.beginLocked(ctx, StatusLoadingInitial, StatusIdle)
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.log.Debug("feed query submitted", zap.String("query", q.String()))
	c.notify(snap)
	return c.execute(run)
}

// LoadMore fetches the page after the current cursor. It does nothing unless
// the feed is Ready and has more pages.
func (c *Controller) LoadMore(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.status != StatusReady || !c.hasMore {
		c.mu.Unlock()
		return nil
	}

	run := c.beginLocked(ctx, StatusLoadingMore, StatusReady)
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.notify(snap)
	return c.execute(run)
}

// Reset cancels any fetch in flight and empties the feed.
func (c *Controller) Reset() {
	c.mu.Lock()
	c.clearLocked()
	c.version++
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.notify(snap)
}

// Close resets the feed and rejects further operations.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	c.clearLocked()
	c.version++
	c.mu.Unlock()
}

// Snapshot returns a copy of the current feed state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// clearLocked invalidates the in-flight fetch, if any, and empties the feed.
func (c *Controller) clearLocked() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.gen++
	c.query = reddit.Query{}
	c.posts = nil
	c.seen = make(map[string]struct{})
	c.cursor = ""
	c.hasMore = false
	c.status = StatusIdle
	c.lastErr = nil
}

func (c *Controller) beginLocked(ctx context.Context, status, prev Status) fetchRun {
	c.gen++
	fetchCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.status = status
	c.version++

	return fetchRun{
		ctx:     fetchCtx,
		cancel:  cancel,
		gen:     c.gen,
		query:   c.query,
		cursor:  c.cursor,
		limit:   c.pageSize,
		initial: status == StatusLoadingInitial,
		prev:    prev,
	}
}

func (c *Controller) execute(run fetchRun) error {
	page, err := c.fetcher.FetchPage(run.ctx, run.query, run.cursor, run.limit)
	run.cancel()

	c.mu.Lock()
	if run.gen != c.gen {
		c.mu.Unlock()
		c.log.Debug("discarding superseded fetch", zap.String("query", run.query.String()), zap.Error(err))
		return nil
	}
	c.cancel = nil

	if err != nil {
		if isCancellation(err) {
			c.status = run.prev
			c.version++
			snap := c.snapshotLocked()
			c.mu.Unlock()
			c.notify(snap)
			return nil
		}

		c.lastErr = err
		c.hasMore = false
		c.status = StatusError
		c.version++
		snap := c.snapshotLocked()
		c.mu.Unlock()

		c.log.Warn("feed fetch failed",
			zap.String("query", run.query.String()),
			zap.String("kind", string(reddit.KindOf(err))),
			zap.Error(err),
		)
		c.notify(snap)
		return err
	}

	if page == nil {
		page = &reddit.Page{}
	}
	stats := c.mergeLocked(page)
	c.cursor = page.After
	c.hasMore = page.RawCount() == run.limit && page.After != ""

	var result error
	if run.initial && stats.Accepted == 0 {
		result = reddit.NoMediaFound(run.query.Subreddit)
		c.lastErr = result
		c.hasMore = false
		c.status = StatusError
	} else {
		c.lastErr = nil
		c.status = StatusReady
	}
	c.version++
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.log.Debug("page merged",
		zap.String("query", run.query.String()),
		zap.Int("raw", stats.Raw),
		zap.Int("accepted", stats.Accepted),
		zap.Int("unsupported", stats.Unsupported),
		zap.Int("duplicates", stats.Duplicates),
		zap.Bool("has_more", snap.HasMore),
	)
	c.notify(snap)
	return result
}

// mergeLocked appends the media posts of page whose ids are not yet present.
func (c *Controller) mergeLocked(page *reddit.Page) MergeStats {
	stats := MergeStats{Raw: page.RawCount()}
	for _, raw := range page.Posts {
		post, ok := media.Classify(raw)
		if !ok {
			stats.Unsupported++
			c.log.Debug("filtered out post",
				zap.String("id", raw.ID),
				zap.String("url", raw.URL),
				zap.String("post_hint", raw.PostHint),
				zap.Bool("is_video", raw.IsVideo),
				zap.Bool("is_gallery", raw.IsGallery),
				zap.Bool("has_preview", raw.Preview != nil),
			)
			continue
		}
		if _, dup := c.seen[post.ID]; dup {
			stats.Duplicates++
			continue
		}
		c.seen[post.ID] = struct{}{}
		c.posts = append(c.posts, post)
		stats.Accepted++
	}
	return stats
}

func (c *Controller) snapshotLocked() Snapshot {
	posts := make([]media.Post, len(c.posts))
	copy(posts, c.posts)
	return Snapshot{
		Query:   c.query,
		Posts:   posts,
		Status:  c.status,
		Err:     c.lastErr,
		HasMore: c.hasMore,
		Cursor:  c.cursor,
		Version: c.version,
	}
}

func (c *Controller) notify(snap Snapshot) {
	if c.observer != nil {
		c.observer(snap)
	}
}

func isCancellation(err error) bool {
	return reddit.IsCancelled(err) || errors.Is(err, context.Canceled)
}
