package media

import (
	"reflect"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Show.S01E02", "show"},
		{"Show - 1x02 - Title", "show"},
		{"The_Big-Movie.Disc 2", "the big movie"},
		{"Season 3 Episode 12", ""},
		{"Documentary 2019", "documentary 2019"},
		{"  lots   of   space  ", "lots of space"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := Normalize(tt.input); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestMatch(t *testing.T) {
	tests := []struct {
		name        string
		transcripts []string
		media       []string
		want        map[string]string
	}{
		{
			name:        "exact base name",
			transcripts: []string{"/lib/Subtitles/Episode01.srt"},
			media:       []string{"/lib/Season 1/Episode01.mp4"},
			want: map[string]string{
				"/lib/Subtitles/Episode01.srt": "/lib/Season 1/Episode01.mp4",
			},
		},
		{
			name:        "media extension before transcript extension",
			transcripts: []string{"/lib/foo.mp4.srt"},
			media:       []string{"/lib/foo.mp4"},
			want:        map[string]string{"/lib/foo.mp4.srt": "/lib/foo.mp4"},
		},
		{
			name:        "fuzzy episode markers",
			transcripts: []string{"/lib/subs/Show.S01E02.srt"},
			media:       []string{"/lib/video/Show - 1x02 - Title.mp4"},
			want: map[string]string{
				"/lib/subs/Show.S01E02.srt": "/lib/video/Show - 1x02 - Title.mp4",
			},
		},
		{
			name:        "fuzzy substring",
			transcripts: []string{"/lib/Nature Documentary.srt"},
			media:       []string{"/lib/Nature Documentary Extended Cut.mkv"},
			want: map[string]string{
				"/lib/Nature Documentary.srt": "/lib/Nature Documentary Extended Cut.mkv",
			},
		},
		{
			name:        "exact match beats earlier fuzzy candidate",
			transcripts: []string{"/lib/pilot.srt"},
			media:       []string{"/lib/pilot extended.mp4", "/lib/pilot.mp4"},
			want:        map[string]string{"/lib/pilot.srt": "/lib/pilot.mp4"},
		},
		{
			name:        "unmatched transcript is absent",
			transcripts: []string{"/lib/a.srt", "/lib/zzz.srt"},
			media:       []string{"/lib/a.mp4", "/lib/b.mp4"},
			want:        map[string]string{"/lib/a.srt": "/lib/a.mp4"},
		},
		{
			name:        "names that normalize to nothing never fuzzy match",
			transcripts: []string{"/lib/Episode 01.srt"},
			media:       []string{"/lib/Episode 02.mp4"},
			want:        map[string]string{},
		},
		{
			name:        "many transcripts may share one media file",
			transcripts: []string{"/lib/movie.en.srt", "/lib/movie.srt"},
			media:       []string{"/lib/movie.mkv"},
			want: map[string]string{
				"/lib/movie.en.srt": "/lib/movie.mkv",
				"/lib/movie.srt":    "/lib/movie.mkv",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Match(tt.transcripts, tt.media)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Match() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMatchIdempotent(t *testing.T) {
	transcripts := []string{"/x/Show.S01E02.srt", "/x/Other.srt", "/x/foo.mkv.srt"}
	media := []string{"/x/Show - 1x02 - Title.mp4", "/x/foo.mkv"}

	first := Match(transcripts, media)
	second := Match(transcripts, media)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Match is not deterministic: %v vs %v", first, second)
	}
}
