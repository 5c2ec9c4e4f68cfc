package timeline

import (
	"fmt"

	"github.com/mgpai22/momentnav/internal/editor"
)

const (
	StatusBuilding = "building"
	StatusStale    = "stale"
)

func ReadyStatus(n int) string { return fmt.Sprintf("ready:%d", n) }

func QueuedStatus(keyword string) string { return "queued:" + keyword }

func FailedStatus(err error) string { return "failed:" + err.Error() }

type EventKind string

const (
	EventStatus  EventKind = "status"
	EventResults EventKind = "results"
)

// pushed to the presentation layer as the cache changes
type Event struct {
	Kind       EventKind      `json:"kind"`
	Status     string         `json:"status"`
	Keyword    string         `json:"keyword,omitempty"`
	TimelineID string         `json:"timeline_id,omitempty"`
	Matches    []editor.Entry `json:"matches,omitempty"`
}

// immediate answer to a Search. Deferred searches deliver their matches
// later through an EventResults carrying the same keyword.
type Outcome struct {
	Status     string         `json:"status"`
	TimelineID string         `json:"timeline_id,omitempty"`
	Matches    []editor.Entry `json:"matches"`
	Deferred   bool           `json:"deferred"`
}
