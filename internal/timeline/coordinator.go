// Package timeline caches the text items of the editor's active timeline and
// coordinates background rebuilds with the searches that arrive meanwhile.
package timeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mgpai22/momentnav/internal/editor"
	"github.com/mgpai22/momentnav/internal/logging"
	"github.com/mgpai22/momentnav/internal/search"
)

type State int

const (
	Empty State = iota
	Building
	Ready
	// the editor reports a different timeline than the cached one
	Stale
)

func (s State) String() string {
	switch s {
	case Empty:
		return "empty"
	case Building:
		return "building"
	case Ready:
		return "ready"
	case Stale:
		return "stale"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// cached entries of one timeline; replaced wholesale by the next build
type Snapshot struct {
	TimelineID string         `json:"timeline_id"`
	Items      []editor.Entry `json:"items"`
	BuiltAt    time.Time      `json:"built_at"`
}

var errEmptyTimeline = errors.New("timeline has no text items")

type query struct {
	keyword       string
	caseSensitive bool
}

// one background fetch and the searches waiting on it
type build struct {
	done chan struct{}

	origin *query
	// single slot; a later search replaces an earlier one
	queued *query
	// timeline reported by a focus change while the build ran
	focusID string

	snap *Snapshot
	err  error
	// pending searches moved to a follow-up build
	handedOff bool
}

// Coordinator owns the timeline cache. At most one build runs at a time and
// every editor call goes through a single worker.
type Coordinator struct {
	client  editor.Client
	worker  *editor.Worker
	logger  *logging.Logger
	notify  func(Event)
	timeout time.Duration
	now     func() time.Time

	mu       sync.RWMutex
	state    State
	cache    map[string]*Snapshot
	current  string
	building *build
	closed   bool

	wg sync.WaitGroup
}

type Option func(*Coordinator)

func WithLogger(l *logging.Logger) Option {
	return func(c *Coordinator) { c.logger = logging.OrNop(l) }
}

// receives status and deferred result events; called from background goroutines
func WithNotify(fn func(Event)) Option {
	return func(c *Coordinator) { c.notify = fn }
}

// bounds a whole build; 0 waits for the editor indefinitely
func WithFetchTimeout(d time.Duration) Option {
	return func(c *Coordinator) { c.timeout = d }
}

func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) { c.now = now }
}

// New wraps client in an editor.Worker unless it already is one.
func New(client editor.Client, opts ...Option) *Coordinator {
	c := &Coordinator{
		logger: logging.NewNop(),
		notify: func(Event) {},
		now:    time.Now,
		cache:  make(map[string]*Snapshot),
	}
	if w, ok := client.(*editor.Worker); ok {
		c.client = w
	} else {
		c.worker = editor.NewWorker(client)
		c.client = c.worker
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Coordinator) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Snapshot returns the cached entries for timelineID
func (c *Coordinator) Snapshot(timelineID string) (Snapshot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	snap, ok := c.cache[timelineID]
	if !ok {
		return Snapshot{}, false
	}
	return *snap, true
}

// Search answers from the cache when it is ready. Otherwise it starts a
// build (or queues behind the running one) and the result arrives later as
// an EventResults. It never waits on the editor.
func (c *Coordinator) Search(keyword string, caseSensitive bool) Outcome {
	q := &query{keyword: keyword, caseSensitive: caseSensitive}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return Outcome{Status: FailedStatus(errClosed)}
	}

	switch c.state {
	case Ready:
		snap := c.cache[c.current]
		c.mu.Unlock()
		return Outcome{
			Status:     ReadyStatus(len(snap.Items)),
			TimelineID: snap.TimelineID,
			Matches:    search.Cached(snap.Items, keyword, caseSensitive),
		}

	case Building:
		if prev := c.building.queued; prev != nil {
			c.logger.Debugw("Replacing queued timeline search", "previous", prev.keyword, "keyword", keyword)
		}
		c.building.queued = q
		c.mu.Unlock()

		status := QueuedStatus(keyword)
		c.emit(Event{Kind: EventStatus, Status: status, Keyword: keyword})
		return Outcome{Status: status, Deferred: true}

	default:
		c.startBuildLocked(q)
		c.mu.Unlock()

		c.emit(Event{Kind: EventStatus, Status: StatusBuilding, Keyword: keyword})
		return Outcome{Status: StatusBuilding, Deferred: true}
	}
}

// Refresh rebuilds the cache. It reports false and does nothing while a
// build is already running.
func (c *Coordinator) Refresh() bool {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return false
	}
	if c.state == Building {
		c.mu.Unlock()
		c.logger.Infow("Timeline refresh ignored: build already in flight")
		return false
	}
	c.startBuildLocked(nil)
	c.mu.Unlock()

	c.emit(Event{Kind: EventStatus, Status: StatusBuilding})
	return true
}

// FocusGained checks the editor's active timeline after the application
// regains focus. A timeline other than the cached one marks the cache stale
// and starts a rebuild; during a build the arriving result is marked stale.
func (c *Coordinator) FocusGained(ctx context.Context) error {
	id, err := c.client.ActiveTimelineID(ctx)
	if err != nil {
		return err
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return errClosed
	}

	switch c.state {
	case Building:
		c.building.focusID = id
		c.mu.Unlock()
		return nil

	case Ready:
		if id == c.current {
			c.mu.Unlock()
			return nil
		}
		c.logger.Infow("Active timeline changed", "cached", c.current, "active", id)
		c.markStaleLocked()
		c.startBuildLocked(nil)
		c.mu.Unlock()

		c.emit(Event{Kind: EventStatus, Status: StatusStale, TimelineID: id})
		c.emit(Event{Kind: EventStatus, Status: StatusBuilding})
		return nil

	case Stale:
		c.startBuildLocked(nil)
		c.mu.Unlock()

		c.emit(Event{Kind: EventStatus, Status: StatusBuilding})
		return nil

	default:
		c.mu.Unlock()
		return nil
	}
}

// Invalidate evicts every cached timeline. A build in flight still installs
// its result.
func (c *Coordinator) Invalidate() {
	c.mu.Lock()
	c.cache = make(map[string]*Snapshot)
	c.current = ""
	if c.state != Building {
		c.state = Empty
	}
	c.mu.Unlock()
}

// Close waits for the running build and its searches, then stops the worker.
func (c *Coordinator) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()

	c.wg.Wait()
	if c.worker != nil {
		c.worker.Close()
	}
}

var errClosed = errors.New("timeline coordinator closed")

func (c *Coordinator) markStaleLocked() {
	delete(c.cache, c.current)
	c.state = Stale
}

// caller holds mu and has checked that no build is running
func (c *Coordinator) startBuildLocked(origin *query) *build {
	b := &build{
		done:   make(chan struct{}),
		origin: origin,
	}
	c.building = b
	c.state = Building

	c.wg.Add(2)
	go c.runBuild(b)
	go c.awaitBuild(b)
	return b
}

func (c *Coordinator) runBuild(b *build) {
	defer c.wg.Done()

	ctx := context.Background()
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	c.logger.Infow("Building timeline cache")
	start := time.Now()
	snap, err := c.fetch(ctx)
	if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		err = fmt.Errorf("%w: timeline fetch timed out after %s", editor.ErrUnavailable, c.timeout)
	}

	c.finish(b, snap, err, time.Since(start))
}

func (c *Coordinator) fetch(ctx context.Context) (*Snapshot, error) {
	id, err := c.client.ActiveTimelineID(ctx)
	if err != nil {
		return nil, err
	}
	if id == "" {
		return nil, editor.ErrNoTimeline
	}

	items, err := c.client.TimelineEntries(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: %s", errEmptyTimeline, id)
	}

	return &Snapshot{TimelineID: id, Items: items, BuiltAt: c.now()}, nil
}

func (c *Coordinator) finish(b *build, snap *Snapshot, err error, took time.Duration) {
	c.mu.Lock()
	defer close(b.done)
	defer c.mu.Unlock()

	c.building = nil
	b.snap, b.err = snap, err

	if err != nil {
		c.logger.Warnw("Timeline cache build failed", "error", err, "duration", took)
		c.state = Empty
		return
	}

	c.logger.Infow("Timeline cache ready",
		"timeline", snap.TimelineID,
		"items", len(snap.Items),
		"duration", took,
	)

	// focus moved to another timeline while fetching
	if b.focusID != "" && b.focusID != snap.TimelineID && !c.closed {
		c.logger.Infow("Timeline changed during build", "fetched", snap.TimelineID, "active", b.focusID)
		c.state = Stale
		b.handedOff = true
		next := c.startBuildLocked(b.origin)
		next.queued = b.queued
		return
	}

	c.cache[snap.TimelineID] = snap
	c.current = snap.TimelineID
	c.state = Ready
}

// runs the searches that waited on b once it resolves
func (c *Coordinator) awaitBuild(b *build) {
	defer c.wg.Done()
	<-b.done

	c.mu.RLock()
	pending := make([]*query, 0, 2)
	if b.origin != nil {
		pending = append(pending, b.origin)
	}
	if b.queued != nil {
		pending = append(pending, b.queued)
	}
	c.mu.RUnlock()

	if b.handedOff {
		c.emit(Event{Kind: EventStatus, Status: StatusStale, TimelineID: b.snap.TimelineID})
		c.emit(Event{Kind: EventStatus, Status: StatusBuilding})
		return
	}

	if b.err != nil {
		status := FailedStatus(b.err)
		if len(pending) == 0 {
			c.emit(Event{Kind: EventStatus, Status: status})
		}
		for _, q := range pending {
			c.emit(Event{Kind: EventStatus, Status: status, Keyword: q.keyword})
		}
		return
	}

	c.emit(Event{Kind: EventStatus, Status: ReadyStatus(len(b.snap.Items)), TimelineID: b.snap.TimelineID})
	for _, q := range pending {
		c.emit(Event{
			Kind:       EventResults,
			Status:     ReadyStatus(len(b.snap.Items)),
			Keyword:    q.keyword,
			TimelineID: b.snap.TimelineID,
			Matches:    search.Cached(b.snap.Items, q.keyword, q.caseSensitive),
		})
	}
}

func (c *Coordinator) emit(ev Event) {
	c.notify(ev)
}
