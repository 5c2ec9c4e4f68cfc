package subtitle

import (
	"bufio"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/mgpai22/momentnav/internal/timecode"
)

var (
	timestampRegex = regexp.MustCompile(
		`^\s*(\d{1,2}:\d{2}:\d{2}[,.]\d{3})\s*-->\s*(\d{1,2}:\d{2}:\d{2}[,.]\d{3})`,
	)
	markupRegex = regexp.MustCompile(`<[^>]*>`)
)

// Parse reads timed-text blocks from data. It never fails: blocks without
// an index line, a timing line or any text are skipped and counted in
// Document.Dropped.
func Parse(data []byte) Document {
	var doc Document

	scanner := bufio.NewScanner(strings.NewReader(decode(data)))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var block []string
	flush := func() {
		if len(block) == 0 {
			return
		}
		if entry, ok := parseBlock(block); ok {
			doc.Entries = append(doc.Entries, entry)
		} else {
			doc.Dropped++
		}
		block = block[:0]
	}

	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		block = append(block, line)
	}
	// a read error midway keeps what was parsed so far
	flush()

	return doc
}

func parseBlock(lines []string) (Entry, bool) {
	if len(lines) < 3 {
		return Entry{}, false
	}

	index, err := strconv.Atoi(strings.TrimSpace(lines[0]))
	if err != nil {
		return Entry{}, false
	}

	matches := timestampRegex.FindStringSubmatch(lines[1])
	if len(matches) != 3 {
		return Entry{}, false
	}
	start, err := timecode.Parse(matches[1])
	if err != nil {
		return Entry{}, false
	}
	end, err := timecode.Parse(matches[2])
	if err != nil {
		return Entry{}, false
	}

	raw := strings.Join(lines[2:], "\n")
	return Entry{
		Index:     index,
		Start:     start,
		End:       end,
		RawText:   raw,
		CleanText: CleanText(raw),
	}, true
}

// strips <...> markup and keeps at most MaxCleanLines non-empty lines
func CleanText(raw string) string {
	stripped := markupRegex.ReplaceAllString(raw, "")

	var lines []string
	for _, line := range strings.Split(stripped, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lines = append(lines, line)
		if len(lines) == MaxCleanLines {
			break
		}
	}
	return strings.Join(lines, "\n")
}

// best-effort decode: honours UTF-8/UTF-16 BOMs, replaces invalid bytes
func decode(data []byte) string {
	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	out, _, err := transform.Bytes(decoder, data)
	if err != nil {
		return strings.ToValidUTF8(string(data), "\uFFFD")
	}
	return strings.TrimPrefix(string(out), "\ufeff")
}
