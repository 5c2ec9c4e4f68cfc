package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mgpai22/momentnav/internal/timecode"
)

var playCmd = &cobra.Command{
	Use:   "play [transcript] [timecode]",
	Short: "Open a transcript's media at a timecode",
	Long: `Open the media linked to a transcript in the configured player, seeking to
the given timecode (HH:MM:SS,mmm or HH:MM:SS).

Examples:
  momentnav play "Alpha/Subtitles/Episode01.srt" 00:01:02,500 -r ~/shows`,
	Args: cobra.ExactArgs(2),
	RunE: runPlay,
}

var pushCmd = &cobra.Command{
	Use:   "push [transcript] [start] [end]",
	Short: "Place a padded clip of a transcript's media on the editor timeline",
	Long: `Convert the start and end timecodes to frames at the media's frame rate,
pad the range to timecode.min_clip_seconds and push it to the configured
editor. With --editor ffmpeg the clip is exported to editor.export_dir.

Examples:
  momentnav push Episode01.srt 00:01:02,500 00:01:05,000 --editor ffmpeg`,
	Args: cobra.ExactArgs(3),
	RunE: runPush,
}

func init() {
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(pushCmd)
}

func absTranscript(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}

func runPlay(cmd *cobra.Command, args []string) error {
	at, err := timecode.Parse(args[1])
	if err != nil {
		return err
	}

	a, err := newApp(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.nav.Play(cmd.Context(), absTranscript(args[0]), at); err != nil {
		return err
	}
	fmt.Printf("Playing %s at %s\n", filepath.Base(args[0]), at.Clock())
	return nil
}

func runPush(cmd *cobra.Command, args []string) error {
	start, err := timecode.Parse(args[1])
	if err != nil {
		return err
	}
	end, err := timecode.Parse(args[2])
	if err != nil {
		return err
	}

	a, err := newApp(cmd.Context(), true)
	if err != nil {
		return err
	}
	defer a.Close()

	r, err := a.nav.Push(cmd.Context(), absTranscript(args[0]), start, end)
	if err != nil {
		return fmt.Errorf("push failed: %w", err)
	}
	fmt.Printf("Pushed frames %d-%d to %s\n", r.StartFrame, r.EndFrame, cfg.Editor.Name)
	return nil
}
