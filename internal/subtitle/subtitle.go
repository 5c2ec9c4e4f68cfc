package subtitle

import (
	"github.com/mgpai22/momentnav/internal/timecode"
)

// represents single timed-text entry; immutable once parsed
type Entry struct {
	Index     int
	Start     timecode.Timecode
	End       timecode.Timecode
	RawText   string
	CleanText string
}

// represents a parsed transcript file
type Document struct {
	Path    string
	Entries []Entry
	// malformed or partial blocks skipped while parsing
	Dropped int
}

// represents supported transcript formats
type Format string

const (
	FormatSRT Format = "srt"
	FormatTXT Format = "txt"
)

// number of cleaned lines kept per entry
const MaxCleanLines = 2
