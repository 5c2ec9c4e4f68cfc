// Package editor models the scripting surface of an external nonlinear
// editor: reading the active timeline's text items, probing frame rates and
// placing media ranges on the timeline.
package editor

import (
	"context"
	"errors"

	"github.com/mgpai22/momentnav/internal/timecode"
)

var (
	// the editor could not be reached or a call into it failed
	ErrUnavailable = errors.New("editor unavailable")
	// no project or timeline is open
	ErrNoTimeline = errors.New("no active timeline: open a project first")
	// the selected editor cannot perform the operation
	ErrUnsupported = errors.New("operation not supported by editor")
)

// searchable text item read from the editor's timeline
type Entry struct {
	Text       string `json:"text"`
	StartFrame int    `json:"start_frame"`
	EndFrame   int    `json:"end_frame"`
	// opaque editor-side reference to the item
	Handle string `json:"handle"`
}

// Client is the editor's scripting surface. Calls block and are not
// reentrant; wrap a Client in a Worker before sharing it.
type Client interface {
	// prepares the editor (launch, attach, open project) ahead of other calls
	EnsureReady(ctx context.Context) error
	// identity of the active timeline, "" when none is open
	ActiveTimelineID(ctx context.Context) (string, error)
	TimelineEntries(ctx context.Context, timelineID string) ([]Entry, error)
	ProbeFrameRate(ctx context.Context, mediaPath string) (float64, error)
	// adds a media file to the editor's media pool
	ImportMedia(ctx context.Context, mediaPath string) error
	// places [StartFrame, EndFrame] of mediaPath on the active timeline
	ImportClip(ctx context.Context, mediaPath string, r timecode.Range) error
}
