package timecode

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"time"
)

// human timecode, always normalized and non-negative
type Timecode struct {
	Hours        int
	Minutes      int
	Seconds      int
	Milliseconds int
}

var clockRegex = regexp.MustCompile(
	`^\s*(\d{1,2}):(\d{2}):(\d{2})(?:[,.](\d{3}))?\s*$`,
)

// parses HH:MM:SS,mmm, HH:MM:SS.mmm or HH:MM:SS
func Parse(s string) (Timecode, error) {
	m := clockRegex.FindStringSubmatch(s)
	if m == nil {
		return Timecode{}, fmt.Errorf("invalid timecode %q", s)
	}

	h, _ := strconv.Atoi(m[1])
	mins, _ := strconv.Atoi(m[2])
	sec, _ := strconv.Atoi(m[3])
	if mins > 59 || sec > 59 {
		return Timecode{}, fmt.Errorf("invalid timecode %q: field out of range", s)
	}

	ms := 0
	if m[4] != "" {
		ms, _ = strconv.Atoi(m[4])
	}

	return Timecode{Hours: h, Minutes: mins, Seconds: sec, Milliseconds: ms}, nil
}

// like Parse but panics; for literals in tests and defaults
func MustParse(s string) Timecode {
	tc, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return tc
}

// converts a second count into a normalized timecode, rounding to the millisecond
func FromSeconds(seconds float64) Timecode {
	if seconds <= 0 || math.IsNaN(seconds) {
		return Timecode{}
	}
	total := int64(math.Round(seconds * 1000))
	return fromMillis(total)
}

func FromDuration(d time.Duration) Timecode {
	if d <= 0 {
		return Timecode{}
	}
	return fromMillis(d.Milliseconds())
}

func fromMillis(total int64) Timecode {
	return Timecode{
		Hours:        int(total / 3_600_000),
		Minutes:      int(total / 60_000 % 60),
		Seconds:      int(total / 1000 % 60),
		Milliseconds: int(total % 1000),
	}
}

func ToSeconds(tc Timecode) float64 {
	return tc.ToSeconds()
}

func (t Timecode) ToSeconds() float64 {
	return float64(t.wholeSeconds()) + float64(t.Milliseconds)/1000
}

func (t Timecode) Duration() time.Duration {
	return time.Duration(t.wholeSeconds())*time.Second +
		time.Duration(t.Milliseconds)*time.Millisecond
}

func (t Timecode) wholeSeconds() int {
	return t.Hours*3600 + t.Minutes*60 + t.Seconds
}

// frame index at fps; floored and never negative
func (t Timecode) Frames(fps float64) int {
	if fps <= 0 {
		return 0
	}
	return floorFrames(t.ToSeconds() * fps)
}

func (t Timecode) Before(o Timecode) bool {
	return t.Duration() < o.Duration()
}

// HH:MM:SS,mmm
func (t Timecode) String() string {
	return fmt.Sprintf(
		"%02d:%02d:%02d,%03d",
		t.Hours, t.Minutes, t.Seconds, t.Milliseconds,
	)
}

func (t Timecode) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *Timecode) UnmarshalText(text []byte) error {
	tc, err := Parse(string(text))
	if err != nil {
		return err
	}
	*t = tc
	return nil
}

// HH:MM:SS without the sub-second part, as media players expect it
func (t Timecode) Clock() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hours, t.Minutes, t.Seconds)
}

func floorFrames(f float64) int {
	// absorbs float noise such as 10.5*24 = 251.99999
	n := int(math.Floor(f + 1e-9))
	if n < 0 {
		return 0
	}
	return n
}
