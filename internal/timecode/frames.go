package timecode

import (
	"math"
	"regexp"
	"strconv"

	"github.com/mgpai22/momentnav/internal/logging"
)

// HH:MM:SS followed by ":FF" (frames), ",mmm"/".mmm" (milliseconds) or
// a 1-2 digit ",F"/",FF" field (legacy frame offset)
var framesRegex = regexp.MustCompile(
	`^\s*(\d{1,2}):(\d{2}):(\d{2})(?:([,.:])(\d{1,3}))?\s*$`,
)

// ToFrames converts a timecode string to a frame index at fps.
//
// The sub-second field is read in one of three encodings:
//   - "HH:MM:SS:FF" carries frames, taken verbatim
//   - "HH:MM:SS,mmm" carries milliseconds, scaled by fps
//   - "HH:MM:SS,FF" with a 1-2 digit field (value under 100) is a legacy
//     encoding where the field is already a frame offset
//
// Malformed input yields frame 0 and a warning.
func ToFrames(s string, fps float64, logger *logging.Logger) int {
	m := framesRegex.FindStringSubmatch(s)
	if m == nil || fps <= 0 {
		logging.OrNop(logger).Warnw("invalid timecode, using frame 0",
			"timecode", s,
			"fps", fps,
		)
		return 0
	}

	h, _ := strconv.Atoi(m[1])
	mins, _ := strconv.Atoi(m[2])
	sec, _ := strconv.Atoi(m[3])
	base := float64(h*3600+mins*60+sec) * fps

	sep, field := m[4], m[5]
	if field == "" {
		return floorFrames(base)
	}
	n, _ := strconv.Atoi(field)

	switch {
	case sep == ":":
		return floorFrames(base) + n
	case len(field) < 3:
		return floorFrames(base) + n
	default:
		return floorFrames(base + float64(n)/1000*fps)
	}
}

// frame range pushed to an editor or exporter; EndFrame < 0 means open-ended
type Range struct {
	StartFrame int `json:"start_frame"`
	EndFrame   int `json:"end_frame"`
}

func (r Range) Open() bool {
	return r.EndFrame < 0
}

// ApplyMinimumDuration pads [start, end] so it lasts at least minSeconds.
//
// The shortfall is split evenly between both sides, each half rounded up to
// a whole frame when fps is positive. When the start would go negative it
// is clamped to zero and the unmet part of the shortfall moves to the end.
// Clamping against the media length is left to the caller.
func ApplyMinimumDuration(
	start, end Timecode,
	fps, minSeconds float64,
) (Timecode, Timecode) {
	s, e := start.ToSeconds(), end.ToSeconds()
	if e < s {
		e = s
	}
	if minSeconds <= 0 || e-s >= minSeconds {
		return start, end
	}

	half := (minSeconds - (e - s)) / 2
	if fps > 0 {
		half = math.Ceil(half*fps-1e-9) / fps
	}

	newStart := s - half
	newEnd := e + half
	if newStart < 0 {
		newEnd = e + 2*half - s
		newStart = 0
	}

	return floorSeconds(newStart), ceilSeconds(newEnd)
}

// padded frame range for [start, end] at fps
func PaddedRange(start, end Timecode, fps, minSeconds float64) Range {
	s, e := ApplyMinimumDuration(start, end, fps, minSeconds)
	return Range{StartFrame: s.Frames(fps), EndFrame: e.Frames(fps)}
}

func floorSeconds(sec float64) Timecode {
	return fromMillis(int64(math.Floor(sec*1000 + 1e-6)))
}

func ceilSeconds(sec float64) Timecode {
	return fromMillis(int64(math.Ceil(sec*1000 - 1e-6)))
}
