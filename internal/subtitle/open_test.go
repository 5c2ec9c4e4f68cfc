package subtitle

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/mgpai22/momentnav/internal/timecode"
)

const sample = `1
00:01:02,500 --> 00:01:05,000
hello world

2
00:01:06,000 --> 00:01:08,200
<i>This is a test.</i>
With multiple lines.
And a third one.

3
00:01:10,000 --> 00:01:12,500
Final subtitle.
`

func TestParseSRT(t *testing.T) {
	doc := Parse([]byte(sample))

	if len(doc.Entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(doc.Entries))
	}
	if doc.Dropped != 0 {
		t.Errorf("expected no dropped blocks, got %d", doc.Dropped)
	}

	first := doc.Entries[0]
	if first.Index != 1 {
		t.Errorf("entry 0: expected index 1, got %d", first.Index)
	}
	if first.Start != timecode.MustParse("00:01:02,500") {
		t.Errorf("entry 0: unexpected start %v", first.Start)
	}
	if first.End != timecode.MustParse("00:01:05,000") {
		t.Errorf("entry 0: unexpected end %v", first.End)
	}
	if first.CleanText != "hello world" {
		t.Errorf("entry 0: expected 'hello world', got %q", first.CleanText)
	}

	second := doc.Entries[1]
	wantRaw := "<i>This is a test.</i>\nWith multiple lines.\nAnd a third one."
	if second.RawText != wantRaw {
		t.Errorf("entry 1: expected raw %q, got %q", wantRaw, second.RawText)
	}
	wantClean := "This is a test.\nWith multiple lines."
	if second.CleanText != wantClean {
		t.Errorf("entry 1: expected clean %q, got %q", wantClean, second.CleanText)
	}
}

func TestParseLenient(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantEntries int
		wantDropped int
	}{
		{
			name:        "empty input",
			input:       "",
			wantEntries: 0,
		},
		{
			name:        "not a transcript at all",
			input:       "just some notes\nabout nothing\n",
			wantEntries: 0,
			wantDropped: 1,
		},
		{
			name:        "partial trailing block",
			input:       "1\n00:00:01,000 --> 00:00:02,000\nok\n\n2\n00:00:03,000 --> 00:00:04,000\n",
			wantEntries: 1,
			wantDropped: 1,
		},
		{
			name:        "bad timing line in the middle",
			input:       "1\n00:00:01,000 --> 00:00:02,000\na\n\n2\n00:00:xx,000 -> 00:00:04\nb\n\n3\n00:00:05,000 --> 00:00:06,000\nc\n",
			wantEntries: 2,
			wantDropped: 1,
		},
		{
			name:        "CRLF and BOM",
			input:       "\ufeff1\r\n00:00:01,000 --> 00:00:02,000\r\nwindows\r\n\r\n",
			wantEntries: 1,
		},
		{
			name:        "dot separator and no trailing newline",
			input:       "7\n00:00:01.000 --> 00:00:02.000\ndots",
			wantEntries: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := Parse([]byte(tt.input))
			if len(doc.Entries) != tt.wantEntries {
				t.Errorf("entries: got %d, want %d", len(doc.Entries), tt.wantEntries)
			}
			if doc.Dropped != tt.wantDropped {
				t.Errorf("dropped: got %d, want %d", doc.Dropped, tt.wantDropped)
			}
		})
	}
}

func TestParseInvalidBytes(t *testing.T) {
	input := []byte("1\n00:00:01,000 --> 00:00:02,000\ncaf\xe9 au lait\n")
	doc := Parse(input)
	if len(doc.Entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(doc.Entries))
	}
	if !strings.Contains(doc.Entries[0].CleanText, "\uFFFD") {
		t.Errorf("expected replacement character, got %q", doc.Entries[0].CleanText)
	}
}

func TestParseUTF16(t *testing.T) {
	text := "1\n00:00:01,000 --> 00:00:02,000\nwide\n"
	data := []byte{0xFF, 0xFE}
	for _, r := range text {
		data = append(data, byte(r), 0)
	}

	doc := Parse(data)
	if len(doc.Entries) != 1 || doc.Entries[0].CleanText != "wide" {
		t.Fatalf("unexpected UTF-16 parse result: %+v", doc)
	}
}

func TestParseIdempotent(t *testing.T) {
	first := Parse([]byte(sample))
	second := Parse(Encode(first))

	if !reflect.DeepEqual(first.Entries, second.Entries) {
		t.Errorf("re-parse differs:\nfirst:  %+v\nsecond: %+v", first.Entries, second.Entries)
	}
}

func TestOpenAndWrite(t *testing.T) {
	tmpDir := t.TempDir()
	srtPath := filepath.Join(tmpDir, "Episode01.srt")
	if err := os.WriteFile(srtPath, []byte(sample), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	doc, err := Open(srtPath)
	if err != nil {
		t.Fatalf("failed to open SRT file: %v", err)
	}
	if doc.Path != srtPath {
		t.Errorf("expected path %q, got %q", srtPath, doc.Path)
	}

	outPath := filepath.Join(tmpDir, "out", "copy.srt")
	if err := Write(doc, outPath); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	copied, err := Open(outPath)
	if err != nil {
		t.Fatalf("failed to reopen written file: %v", err)
	}
	if len(copied.Entries) != len(doc.Entries) {
		t.Errorf("expected %d entries after write, got %d", len(doc.Entries), len(copied.Entries))
	}
}

func TestOpenUnsupportedFormat(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "movie.mkv"))
	if err == nil {
		t.Fatal("expected error for unsupported format")
	}
	if !strings.Contains(err.Error(), "unsupported") {
		t.Errorf("expected 'unsupported' in error, got: %v", err)
	}
}

func TestOpenAllKeepsOrder(t *testing.T) {
	tmpDir := t.TempDir()

	var paths []string
	for _, name := range []string{"c.srt", "a.srt", "missing.srt", "b.txt"} {
		path := filepath.Join(tmpDir, name)
		paths = append(paths, path)
		if name == "missing.srt" {
			continue
		}
		if err := os.WriteFile(path, []byte(sample), 0644); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}

	docs, err := OpenAll(context.Background(), paths, 2, nil)
	if err != nil {
		t.Fatalf("OpenAll failed: %v", err)
	}

	var got []string
	for _, doc := range docs {
		got = append(got, filepath.Base(doc.Path))
	}
	want := []string{"c.srt", "a.srt", "b.txt"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected order %v, got %v", want, got)
	}
}

func TestFormatOf(t *testing.T) {
	tests := []struct {
		path   string
		want   Format
		wantOK bool
	}{
		{"/a/Episode01.srt", FormatSRT, true},
		{"/a/Episode01.SRT", FormatSRT, true},
		{"/a/notes.txt", FormatTXT, true},
		{"/a/Episode01.vtt", "", false},
		{"/a/noext", "", false},
	}
	for _, tt := range tests {
		got, ok := FormatOf(tt.path)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("FormatOf(%q) = %q, %v; want %q, %v", tt.path, got, ok, tt.want, tt.wantOK)
		}
	}
}
