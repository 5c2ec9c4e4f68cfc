package timeline

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/mgpai22/momentnav/internal/editor"
	"github.com/mgpai22/momentnav/internal/logging"
	"github.com/mgpai22/momentnav/internal/timecode"
)

// fakeEditor serves a configurable timeline; fetches block on gate when set
type fakeEditor struct {
	mu       sync.Mutex
	id       string
	items    map[string][]editor.Entry
	idErr    error
	gate     chan struct{}
	fetches  atomic.Int32
	inFlight atomic.Int32
	overlaps atomic.Int32
}

func newFakeEditor(id string) *fakeEditor {
	return &fakeEditor{
		id: id,
		items: map[string][]editor.Entry{
			"tl-1": {
				{Text: "hello world", StartFrame: 0, EndFrame: 48, Handle: "a"},
				{Text: "goodbye world", StartFrame: 48, EndFrame: 96, Handle: "b"},
				{Text: "Hello again", StartFrame: 96, EndFrame: 120, Handle: "c"},
			},
			"tl-2": {
				{Text: "another timeline", StartFrame: 0, EndFrame: 10, Handle: "z"},
			},
		},
	}
}

func (f *fakeEditor) setID(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.id = id
}

func (f *fakeEditor) enter() func() {
	if f.inFlight.Add(1) > 1 {
		f.overlaps.Add(1)
	}
	return func() { f.inFlight.Add(-1) }
}

func (f *fakeEditor) EnsureReady(context.Context) error { return nil }

func (f *fakeEditor) ActiveTimelineID(context.Context) (string, error) {
	defer f.enter()()
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.id, f.idErr
}

func (f *fakeEditor) TimelineEntries(ctx context.Context, id string) ([]editor.Entry, error) {
	defer f.enter()()
	f.fetches.Add(1)
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.items[id], nil
}

func (f *fakeEditor) ProbeFrameRate(context.Context, string) (float64, error) { return 24, nil }
func (f *fakeEditor) ImportMedia(context.Context, string) error             { return nil }
func (f *fakeEditor) ImportClip(context.Context, string, timecode.Range) error {
	return nil
}

type recorder struct {
	ch chan Event
}

func newRecorder() *recorder { return &recorder{ch: make(chan Event, 64)} }

func (r *recorder) notify(ev Event) { r.ch <- ev }

// next event matching pred, failing after a timeout
func (r *recorder) waitFor(t *testing.T, pred func(Event) bool) Event {
	t.Helper()
	timeout := time.After(3 * time.Second)
	for {
		select {
		case ev := <-r.ch:
			if pred(ev) {
				return ev
			}
		case <-timeout:
			t.Fatal("timed out waiting for event")
			return Event{}
		}
	}
}

func isResults(ev Event) bool { return ev.Kind == EventResults }

func newTestCoordinator(t *testing.T, f *fakeEditor, opts ...Option) (*Coordinator, *recorder) {
	t.Helper()
	rec := newRecorder()
	opts = append([]Option{
		WithLogger(logging.New(zaptest.NewLogger(t))),
		WithNotify(rec.notify),
	}, opts...)
	c := New(f, opts...)
	t.Cleanup(c.Close)
	return c, rec
}

func TestConcurrentSearchesShareOneBuild(t *testing.T) {
	f := newFakeEditor("tl-1")
	f.gate = make(chan struct{})
	c, rec := newTestCoordinator(t, f)

	outcomes := make(chan Outcome, 2)
	var wg sync.WaitGroup
	for _, kw := range []string{"hello", "world"} {
		wg.Add(1)
		go func(kw string) {
			defer wg.Done()
			outcomes <- c.Search(kw, false)
		}(kw)
	}
	wg.Wait()
	close(outcomes)

	var statuses []string
	for o := range outcomes {
		assert.True(t, o.Deferred)
		assert.Empty(t, o.Matches)
		statuses = append(statuses, o.Status)
	}
	assert.Contains(t, statuses, StatusBuilding)
	assert.Equal(t, Building, c.State())

	close(f.gate)

	got := map[string]int{}
	for i := 0; i < 2; i++ {
		ev := rec.waitFor(t, isResults)
		assert.Equal(t, "tl-1", ev.TimelineID)
		got[ev.Keyword] = len(ev.Matches)
	}
	assert.Equal(t, map[string]int{"hello": 2, "world": 2}, got)
	assert.Equal(t, int32(1), f.fetches.Load(), "expected exactly one editor fetch")

	require.Eventually(t, func() bool { return c.State() == Ready }, time.Second, 5*time.Millisecond)

	ready := c.Search("goodbye", false)
	assert.False(t, ready.Deferred)
	assert.Equal(t, ReadyStatus(3), ready.Status)
	require.Len(t, ready.Matches, 1)
	assert.Equal(t, "b", ready.Matches[0].Handle)
	assert.Equal(t, int32(1), f.fetches.Load(), "ready cache must not refetch")
	assert.Zero(t, f.overlaps.Load())
}

func TestQueuedSearchLatestWins(t *testing.T) {
	f := newFakeEditor("tl-1")
	f.gate = make(chan struct{})
	c, rec := newTestCoordinator(t, f)

	assert.Equal(t, StatusBuilding, c.Search("hello", false).Status)
	assert.Equal(t, QueuedStatus("goodbye"), c.Search("goodbye", false).Status)
	assert.Equal(t, QueuedStatus("Hello"), c.Search("Hello", true).Status)

	close(f.gate)

	first := rec.waitFor(t, isResults)
	second := rec.waitFor(t, isResults)
	assert.Equal(t, "hello", first.Keyword)
	assert.Len(t, first.Matches, 2)
	assert.Equal(t, "Hello", second.Keyword)
	require.Len(t, second.Matches, 1)
	assert.Equal(t, "c", second.Matches[0].Handle)

	c.Close()
	close(rec.ch)
	for ev := range rec.ch {
		assert.NotEqual(t, "goodbye", ev.Keyword, "replaced queued search must not run")
	}
}

func TestFailedBuildDropsQueuedSearch(t *testing.T) {
	f := newFakeEditor("")
	c, rec := newTestCoordinator(t, f)

	c.Search("hello", false)

	ev := rec.waitFor(t, func(ev Event) bool {
		return ev.Kind == EventStatus && ev.Keyword == "hello" && ev.Status != StatusBuilding
	})
	assert.Equal(t, FailedStatus(editor.ErrNoTimeline), ev.Status)

	require.Eventually(t, func() bool { return c.State() == Empty }, time.Second, 5*time.Millisecond)
	assert.Zero(t, f.fetches.Load())

	// a later search retries with a fresh build
	f.setID("tl-1")
	assert.Equal(t, StatusBuilding, c.Search("world", false).Status)
	res := rec.waitFor(t, isResults)
	assert.Equal(t, "world", res.Keyword)
	assert.Len(t, res.Matches, 2)
}

func TestEmptyTimelineFails(t *testing.T) {
	f := newFakeEditor("tl-empty")
	c, rec := newTestCoordinator(t, f)

	require.True(t, c.Refresh())
	ev := rec.waitFor(t, func(ev Event) bool {
		return ev.Kind == EventStatus && ev.Status != StatusBuilding
	})
	assert.Contains(t, ev.Status, "failed:")
	assert.Empty(t, ev.Keyword)

	require.Eventually(t, func() bool { return c.State() == Empty }, time.Second, 5*time.Millisecond)
	_, ok := c.Snapshot("tl-empty")
	assert.False(t, ok)
}

func TestRefreshIgnoredWhileBuilding(t *testing.T) {
	f := newFakeEditor("tl-1")
	f.gate = make(chan struct{})
	c, rec := newTestCoordinator(t, f)

	assert.True(t, c.Refresh())
	assert.False(t, c.Refresh())
	close(f.gate)

	ev := rec.waitFor(t, func(ev Event) bool { return ev.Status == ReadyStatus(3) })
	assert.Equal(t, "tl-1", ev.TimelineID)
	require.Eventually(t, func() bool { return c.State() == Ready }, time.Second, 5*time.Millisecond)
	assert.Equal(t, int32(1), f.fetches.Load())

	snap, ok := c.Snapshot("tl-1")
	require.True(t, ok)
	assert.Len(t, snap.Items, 3)
}

func TestFocusGainedDetectsTimelineChange(t *testing.T) {
	f := newFakeEditor("tl-1")
	built := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	c, rec := newTestCoordinator(t, f, WithClock(func() time.Time { return built }))

	require.True(t, c.Refresh())
	rec.waitFor(t, func(ev Event) bool { return ev.Status == ReadyStatus(3) })
	require.Eventually(t, func() bool { return c.State() == Ready }, time.Second, 5*time.Millisecond)

	// same timeline: nothing to do
	require.NoError(t, c.FocusGained(context.Background()))
	assert.Equal(t, Ready, c.State())
	assert.Equal(t, int32(1), f.fetches.Load())

	f.setID("tl-2")
	require.NoError(t, c.FocusGained(context.Background()))

	stale := rec.waitFor(t, func(ev Event) bool { return ev.Status == StatusStale })
	assert.Equal(t, "tl-2", stale.TimelineID)
	rec.waitFor(t, func(ev Event) bool { return ev.Status == ReadyStatus(1) })
	require.Eventually(t, func() bool { return c.State() == Ready }, time.Second, 5*time.Millisecond)

	_, ok := c.Snapshot("tl-1")
	assert.False(t, ok, "stale timeline should be evicted")
	snap, ok := c.Snapshot("tl-2")
	require.True(t, ok)
	assert.Equal(t, built, snap.BuiltAt)
	assert.Equal(t, int32(2), f.fetches.Load())
}

func TestFocusChangeDuringBuild(t *testing.T) {
	f := newFakeEditor("tl-1")
	f.gate = make(chan struct{})
	c, rec := newTestCoordinator(t, f)

	c.Search("timeline", false)
	require.Eventually(t, func() bool { return f.fetches.Load() == 1 }, time.Second, 5*time.Millisecond)

	f.setID("tl-2")
	focusDone := make(chan error, 1)
	go func() { focusDone <- c.FocusGained(context.Background()) }()

	close(f.gate)
	require.NoError(t, <-focusDone)

	// however the focus call and the build interleave, the cache settles on
	// the new timeline
	rec.waitFor(t, func(ev Event) bool {
		return ev.Status == ReadyStatus(1) && ev.TimelineID == "tl-2"
	})
	require.Eventually(t, func() bool { return c.State() == Ready }, time.Second, 5*time.Millisecond)

	out := c.Search("timeline", false)
	assert.Equal(t, "tl-2", out.TimelineID)
	assert.Len(t, out.Matches, 1)

	_, ok := c.Snapshot("tl-1")
	assert.False(t, ok)
	assert.Equal(t, int32(2), f.fetches.Load())
	assert.Zero(t, f.overlaps.Load())
}

func TestFetchTimeout(t *testing.T) {
	f := newFakeEditor("tl-1")
	f.gate = make(chan struct{})
	defer close(f.gate)
	c, rec := newTestCoordinator(t, f, WithFetchTimeout(20*time.Millisecond))

	c.Search("hello", false)
	ev := rec.waitFor(t, func(ev Event) bool {
		return ev.Keyword == "hello" && ev.Status != StatusBuilding
	})
	assert.Contains(t, ev.Status, "timed out")
	require.Eventually(t, func() bool { return c.State() == Empty }, time.Second, 5*time.Millisecond)
}

func TestFocusGainedError(t *testing.T) {
	f := newFakeEditor("tl-1")
	f.idErr = errors.New("editor went away")
	c, _ := newTestCoordinator(t, f)

	assert.Error(t, c.FocusGained(context.Background()))
	assert.Equal(t, Empty, c.State())
}

func TestInvalidate(t *testing.T) {
	f := newFakeEditor("tl-1")
	c, rec := newTestCoordinator(t, f)

	c.Refresh()
	rec.waitFor(t, func(ev Event) bool { return ev.Status == ReadyStatus(3) })
	require.Eventually(t, func() bool { return c.State() == Ready }, time.Second, 5*time.Millisecond)

	c.Invalidate()
	assert.Equal(t, Empty, c.State())
	_, ok := c.Snapshot("tl-1")
	assert.False(t, ok)

	assert.Equal(t, StatusBuilding, c.Search("hello", false).Status)
	rec.waitFor(t, isResults)
	assert.Equal(t, int32(2), f.fetches.Load())
}

func TestSearchAfterClose(t *testing.T) {
	f := newFakeEditor("tl-1")
	c := New(f)
	c.Close()

	out := c.Search("hello", false)
	assert.Contains(t, out.Status, "failed:")
	assert.False(t, c.Refresh())
}
