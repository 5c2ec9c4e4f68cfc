package media

import (
	"path/filepath"
	"regexp"
	"strings"
)

// episode and disc markers dropped before fuzzy comparison
var markerTokens = []string{"disc", "season", "title", "episode", "s0", "e0", "x0"}

var (
	separatorReplacer = strings.NewReplacer("_", " ", "-", " ", ".", " ")
	shortNumberRegex  = regexp.MustCompile(`\b\d{1,2}\b`)
	spaceRegex        = regexp.MustCompile(`\s+`)
)

// Match links each transcript to a media file. Exact base-name matches are
// tried for every transcript first; only transcripts still unlinked go
// through the fuzzy pass. The first candidate in media order wins.
// Transcripts without a match are absent from the result.
func Match(transcripts, media []string) map[string]string {
	links := make(map[string]string, len(transcripts))

	mediaBases := make([]string, len(media))
	for i, m := range media {
		mediaBases[i] = stripExt(filepath.Base(m))
	}

	for _, t := range transcripts {
		base := transcriptBase(t)
		for i, mb := range mediaBases {
			if base == mb {
				links[t] = media[i]
				break
			}
		}
	}

	mediaNorms := make([]string, len(media))
	for i, mb := range mediaBases {
		mediaNorms[i] = Normalize(mb)
	}

	for _, t := range transcripts {
		if _, ok := links[t]; ok {
			continue
		}
		norm := Normalize(transcriptBase(t))
		if norm == "" {
			continue
		}
		for i, mn := range mediaNorms {
			if fuzzyEqual(norm, mn) {
				links[t] = media[i]
				break
			}
		}
	}

	return links
}

func fuzzyEqual(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return a == b || strings.Contains(a, b) || strings.Contains(b, a)
}

// transcript base name: extension stripped, then a trailing media extension
// ("foo.mp4.srt" -> "foo")
func transcriptBase(path string) string {
	base := stripExt(filepath.Base(path))
	if IsMediaFile(base) {
		base = stripExt(base)
	}
	return base
}

func stripExt(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// Normalize reduces a file name to the words used for fuzzy matching:
// lowercased, separators turned into spaces, episode markers and short
// standalone numbers removed, whitespace collapsed.
func Normalize(name string) string {
	s := strings.ToLower(name)
	s = separatorReplacer.Replace(s)
	for _, tok := range markerTokens {
		s = strings.ReplaceAll(s, tok, "")
	}
	s = shortNumberRegex.ReplaceAllString(s, " ")
	s = spaceRegex.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
