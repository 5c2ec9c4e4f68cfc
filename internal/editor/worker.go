package editor

import (
	"context"
	"fmt"
	"sync"

	"github.com/mgpai22/momentnav/internal/timecode"
)

// Worker runs every call to the wrapped Client on a single goroutine, so two
// calls never reach the editor at the same time. It implements Client.
type Worker struct {
	client Client

	jobs      chan func()
	quit      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

var _ Client = (*Worker)(nil)

func NewWorker(client Client) *Worker {
	w := &Worker{
		client: client,
		jobs:   make(chan func()),
		quit:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	go w.run()
	return w
}

func (w *Worker) run() {
	defer close(w.done)
	for {
		select {
		case job := <-w.jobs:
			job()
		case <-w.quit:
			return
		}
	}
}

// stops the worker once the running call (if any) returns
func (w *Worker) Close() {
	w.closeOnce.Do(func() { close(w.quit) })
	<-w.done
}

// call queues fn on the worker and waits for it to finish. A job that has
// started always runs to completion; fn is expected to honour ctx itself.
func call[T any](ctx context.Context, w *Worker, fn func() (T, error)) (T, error) {
	var (
		result T
		err    error
	)
	finished := make(chan struct{})
	job := func() {
		defer close(finished)
		result, err = fn()
	}

	select {
	case w.jobs <- job:
	case <-ctx.Done():
		return result, ctx.Err()
	case <-w.quit:
		return result, fmt.Errorf("%w: editor worker stopped", ErrUnavailable)
	}

	<-finished
	return result, err
}

func (w *Worker) EnsureReady(ctx context.Context) error {
	_, err := call(ctx, w, func() (struct{}, error) {
		return struct{}{}, w.client.EnsureReady(ctx)
	})
	return err
}

func (w *Worker) ActiveTimelineID(ctx context.Context) (string, error) {
	return call(ctx, w, func() (string, error) {
		return w.client.ActiveTimelineID(ctx)
	})
}

func (w *Worker) TimelineEntries(ctx context.Context, timelineID string) ([]Entry, error) {
	return call(ctx, w, func() ([]Entry, error) {
		return w.client.TimelineEntries(ctx, timelineID)
	})
}

func (w *Worker) ProbeFrameRate(ctx context.Context, mediaPath string) (float64, error) {
	return call(ctx, w, func() (float64, error) {
		return w.client.ProbeFrameRate(ctx, mediaPath)
	})
}

func (w *Worker) ImportMedia(ctx context.Context, mediaPath string) error {
	_, err := call(ctx, w, func() (struct{}, error) {
		return struct{}{}, w.client.ImportMedia(ctx, mediaPath)
	})
	return err
}

func (w *Worker) ImportClip(ctx context.Context, mediaPath string, r timecode.Range) error {
	_, err := call(ctx, w, func() (struct{}, error) {
		return struct{}{}, w.client.ImportClip(ctx, mediaPath, r)
	})
	return err
}
