package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mgpai22/momentnav/internal/timecode"
)

var framesCmd = &cobra.Command{
	Use:   "frames [timecode] [end]",
	Short: "Convert timecodes to frame numbers",
	Long: `Convert a timecode to a frame number at the given frame rate.

Accepted forms: HH:MM:SS,mmm (milliseconds), HH:MM:SS:FF (frames) and the
legacy HH:MM:SS,F / HH:MM:SS,FF where the short field is a frame offset.
With an end timecode the padded clip range is printed as well.

Examples:
  momentnav frames 00:00:10,500 --fps 24
  momentnav frames 00:01:02,500 00:01:05,000 --fps 23.976 --min-seconds 10`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runFrames,
}

func init() {
	rootCmd.AddCommand(framesCmd)

	framesCmd.Flags().
		Float64("fps", 0, "Frame rate (default: timecode.default_fps)")
	framesCmd.Flags().
		Float64("min-seconds", -1, "Minimum clip length (default: timecode.min_clip_seconds)")
}

func runFrames(cmd *cobra.Command, args []string) error {
	fps, _ := cmd.Flags().GetFloat64("fps")
	if fps <= 0 {
		fps = cfg.Timecode.DefaultFPS
	}
	minSeconds, _ := cmd.Flags().GetFloat64("min-seconds")
	if minSeconds < 0 {
		minSeconds = cfg.Timecode.MinClipSeconds
	}

	fmt.Printf("%s @ %g fps = frame %d\n", args[0], fps, timecode.ToFrames(args[0], fps, logger))
	if len(args) == 1 {
		return nil
	}

	start, err := timecode.Parse(args[0])
	if err != nil {
		return err
	}
	end, err := timecode.Parse(args[1])
	if err != nil {
		return err
	}

	ps, pe := timecode.ApplyMinimumDuration(start, end, fps, minSeconds)
	r := timecode.PaddedRange(start, end, fps, minSeconds)
	fmt.Printf("padded %s --> %s (frames %d-%d, min %gs)\n", ps, pe, r.StartFrame, r.EndFrame, minSeconds)
	return nil
}
