// Package search runs plain substring queries over parsed transcripts and
// over text items read from the editor's timeline.
package search

import (
	"path/filepath"
	"strings"

	"github.com/mgpai22/momentnav/internal/editor"
	"github.com/mgpai22/momentnav/internal/subtitle"
	"github.com/mgpai22/momentnav/internal/timecode"
)

// one matching transcript entry
type Result struct {
	SourcePath string            `json:"source_path"`
	Index      int               `json:"index"`
	Start      timecode.Timecode `json:"start"`
	End        timecode.Timecode `json:"end"`
	Text       string            `json:"text"`
}

// Transcripts returns every entry whose cleaned text contains keyword,
// ignoring case, in document order and then entry order.
func Transcripts(docs []subtitle.Document, keyword string) []Result {
	needle := strings.ToLower(keyword)
	if needle == "" {
		return nil
	}

	var results []Result
	for _, doc := range docs {
		for _, e := range doc.Entries {
			if !strings.Contains(strings.ToLower(e.CleanText), needle) {
				continue
			}
			results = append(results, Result{
				SourcePath: doc.Path,
				Index:      e.Index,
				Start:      e.Start,
				End:        e.End,
				Text:       e.CleanText,
			})
		}
	}
	return results
}

// Cached filters editor entries by substring, case-folded unless
// caseSensitive is set. Order is preserved.
func Cached(items []editor.Entry, keyword string, caseSensitive bool) []editor.Entry {
	if keyword == "" {
		return nil
	}
	if !caseSensitive {
		keyword = strings.ToLower(keyword)
	}

	var matches []editor.Entry
	for _, item := range items {
		text := item.Text
		if !caseSensitive {
			text = strings.ToLower(text)
		}
		if strings.Contains(text, keyword) {
			matches = append(matches, item)
		}
	}
	return matches
}

// results from a single transcript file
type FileResults struct {
	SourcePath string   `json:"source_path"`
	Name       string   `json:"name"`
	Results    []Result `json:"results"`
}

// Group batches consecutive results by source file, keeping their order
func Group(results []Result) []FileResults {
	var groups []FileResults
	for _, r := range results {
		if n := len(groups); n > 0 && groups[n-1].SourcePath == r.SourcePath {
			groups[n-1].Results = append(groups[n-1].Results, r)
			continue
		}
		groups = append(groups, FileResults{
			SourcePath: r.SourcePath,
			Name:       filepath.Base(r.SourcePath),
			Results:    []Result{r},
		})
	}
	return groups
}
